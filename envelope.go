package session

import (
	"encoding/json"
	"math"
	"strconv"
)

// extractor pulls a candidate user document out of a decoded payload.
type extractor func(doc map[string]any) (map[string]any, bool)

// userExtractors is the ordered fallback chain for the envelope shapes the
// backend and legacy storage are known to produce: the raw record, {user},
// {data}, {data:{user}} and {data:{data}}. The first candidate that carries
// an identity wins; shapes are tried in order, never merged.
var userExtractors = []extractor{
	extractSelf,
	extractPath("user"),
	extractPath("data"),
	extractPath("data", "user"),
	extractPath("data", "data"),
}

func extractSelf(doc map[string]any) (map[string]any, bool) {
	return doc, doc != nil
}

func extractPath(path ...string) extractor {
	return func(doc map[string]any) (map[string]any, bool) {
		current := doc
		for _, key := range path {
			next, ok := current[key].(map[string]any)
			if !ok {
				return nil, false
			}
			current = next
		}
		return current, true
	}
}

// UnwrapUser walks the extractor chain over a decoded document and returns
// the first candidate carrying an identity-bearing id field.
func UnwrapUser(doc map[string]any) (map[string]any, bool) {
	for _, extract := range userExtractors {
		candidate, ok := extract(doc)
		if !ok {
			continue
		}
		if hasIdentity(candidate) {
			return candidate, true
		}
	}
	return nil, false
}

// DecodeUser parses a JSON payload in any of the accepted envelope shapes
// into a User. It returns ErrNoIdentity when no shape yields a record with
// an id, and the decode error when the payload is not JSON at all.
func DecodeUser(data []byte) (*User, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	candidate, ok := UnwrapUser(doc)
	if !ok {
		return nil, ErrNoIdentity
	}

	return userFromDoc(candidate), nil
}

// userFromDoc maps a raw document onto a User. Fields we do not model are
// preserved in Metadata so the record round-trips through storage.
func userFromDoc(doc map[string]any) *User {
	u := &User{}

	for key, val := range doc {
		switch key {
		case "id", "_id":
			if u.ID == "" {
				u.ID = coerceID(val)
			}
		case "role":
			if s, ok := val.(string); ok {
				u.Role = UserRole(s)
			}
		case "name":
			if s, ok := val.(string); ok {
				u.Name = s
			}
		case "email":
			if s, ok := val.(string); ok {
				u.Email = s
			}
		case "phone_number":
			if s, ok := val.(string); ok {
				u.Phone = s
			}
		case "isBypassUser":
			if b, ok := val.(bool); ok {
				u.Bypass = b
			}
		case "metadata":
			if m, ok := val.(map[string]any); ok {
				for k, v := range m {
					u.setMetadata(k, v)
				}
			}
		default:
			u.setMetadata(key, val)
		}
	}

	return u
}

func (u *User) setMetadata(key string, val any) {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
}

func hasIdentity(doc map[string]any) bool {
	if doc == nil {
		return false
	}
	if id, ok := doc["id"]; ok && coerceID(id) != "" {
		return true
	}
	if id, ok := doc["_id"]; ok && coerceID(id) != "" {
		return true
	}
	return false
}

// coerceID normalizes backend ids, which arrive as strings or JSON numbers
// depending on the endpoint, into a stable string form.
func coerceID(val any) string {
	switch id := val.(type) {
	case string:
		return id
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}
