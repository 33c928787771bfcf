package session

import (
	"github.com/nyaruka/phonenumbers"
)

// User is the resolved identity the session manager owns. Profile fields
// other than ID and Role are opaque to this package; anything the backend
// sends that we do not model explicitly lands in Metadata so the record
// round-trips through storage.
type User struct {
	ID       string         `json:"id,omitempty"`
	Role     UserRole       `json:"role,omitempty"`
	Name     string         `json:"name,omitempty"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone_number,omitempty"`
	Bypass   bool           `json:"isBypassUser,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HasID reports whether the record carries a usable identity.
func (u *User) HasID() bool {
	return u != nil && u.ID != ""
}

// Clone returns a copy safe to hand out to read-only consumers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	clone := *u
	if u.Metadata != nil {
		clone.Metadata = make(map[string]any, len(u.Metadata))
		for k, v := range u.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

// DefaultPhoneRegion is the region used to parse phone numbers that arrive
// without a country prefix.
var DefaultPhoneRegion = "PY"

// NormalizePhone rewrites the phone field into E.164. Numbers that do not
// parse are left untouched; profile data is opaque and never fatal.
func (u *User) NormalizePhone() {
	if u == nil || u.Phone == "" {
		return
	}

	num, err := phonenumbers.Parse(u.Phone, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return
	}
	u.Phone = phonenumbers.Format(num, phonenumbers.E164)
}
