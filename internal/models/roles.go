package models

const (
	RoleInvestor = "investor"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// ValidRole reports whether role is one of the assignable user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleInvestor, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// RegistrationRole reports whether role may be chosen at sign-up. Admins are
// promoted through the admin API, never self-registered.
func RegistrationRole(role string) bool {
	return role == RoleInvestor || role == RoleSeller
}
