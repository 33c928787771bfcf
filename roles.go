package session

// UserRole is the closed role enum the routing layer keys on. Roles come
// from the back-office domain and new values are a data change in the
// RouteTable, not a code change here.
type UserRole = string

const (
	// RoleAdmin manages branches, users and system configuration
	RoleAdmin UserRole = "ADMIN"
	// RoleOwner is the business owner (reporting and oversight)
	RoleOwner UserRole = "DUENO"
	// RoleSeller operates the sales screens
	RoleSeller UserRole = "VENDEDOR"
	// RoleCashier operates the payments screens
	RoleCashier UserRole = "CAJERO"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleSeller, RoleCashier:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// AllRoles returns all predefined roles
func AllRoles() []UserRole {
	return []UserRole{
		RoleAdmin,
		RoleOwner,
		RoleSeller,
		RoleCashier,
	}
}
