package identity

import (
	"backoffice/domain/shared"
)

// Gate declares which roles may invoke an operation.
// Unauthenticated principals are outside every gate.
type Gate struct {
	name    string
	allowed map[Role]bool
}

// Allow builds a gate for the given roles. RoleUnauthenticated is ignored.
func Allow(name string, roles ...Role) Gate {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		if r != RoleUnauthenticated {
			allowed[r] = true
		}
	}
	return Gate{name: name, allowed: allowed}
}

var (
	// AnyRole admits every authenticated principal
	AnyRole = Allow("any", RoleCustomer, RoleStaff, RoleAdmin)

	// CustomerOnly deleting a sale
	CustomerOnly = Allow("customer-only", RoleCustomer)

	// StaffOrAdmin delivering an order
	StaffOrAdmin = Allow("staff-or-admin", RoleStaff, RoleAdmin)

	// AdminOnly staff assignment
	AdminOnly = Allow("admin-only", RoleAdmin)
)

func (g Gate) Name() string { return g.name }

// Allows reports whether the role is in the allow-set.
func (g Gate) Allows(role Role) bool {
	return g.allowed[role]
}

// Check rejects the principal as soon as its tag is outside the allow-set.
func (g Gate) Check(p Principal) error {
	if !p.IsAuthenticated() {
		return shared.NewUnauthenticatedError("Authentication credentials were not provided")
	}
	if g.allowed[p.Role()] {
		return nil
	}
	return shared.NewForbiddenError("principal", deniedMessage(p.Role()))
}

func deniedMessage(role Role) string {
	switch role {
	case RoleCustomer:
		return "Customers are not allowed to perform this operation"
	case RoleStaff:
		return "Staffs are not allowed to perform this operation"
	case RoleAdmin:
		return "Admins are not allowed to perform this operation"
	default:
		return "You are not allowed to perform this operation"
	}
}
