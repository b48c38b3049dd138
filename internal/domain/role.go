package domain

// User roles. Every account holds RoleUser; RoleAdmin is granted in addition.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRoles returns all known roles.
func ValidRoles() []string {
	return []string{RoleUser, RoleAdmin}
}

// IsValidRole reports whether the given string names a known role.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// DefaultRoles returns the role set assigned to newly registered users.
func DefaultRoles() []string {
	return []string{RoleUser}
}
