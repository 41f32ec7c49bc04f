/*
Package identity models the actor invoking a workflow operation.

A Principal is a tagged variant: exactly one of Customer, Staff, Admin or
Unauthenticated. Role checks match on the tag instead of probing optional
identifiers.
*/
package identity

import "fmt"

// Role is the tag of a Principal
type Role int

const (
	RoleUnauthenticated Role = iota
	RoleCustomer
	RoleStaff
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleStaff:
		return "staff"
	case RoleAdmin:
		return "admin"
	default:
		return "unauthenticated"
	}
}

// ParseUserType maps the user_type claim carried in access tokens.
func ParseUserType(userType string) (Role, error) {
	switch userType {
	case "Customer":
		return RoleCustomer, nil
	case "Staff":
		return RoleStaff, nil
	case "Administrator":
		return RoleAdmin, nil
	default:
		return RoleUnauthenticated, fmt.Errorf("unknown user type %q", userType)
	}
}

// UserType is the inverse of ParseUserType.
func (r Role) UserType() string {
	switch r {
	case RoleCustomer:
		return "Customer"
	case RoleStaff:
		return "Staff"
	case RoleAdmin:
		return "Administrator"
	default:
		return ""
	}
}

// Principal is immutable once built.
// userID identifies the account, roleID the customer/staff/admin record.
type Principal struct {
	role   Role
	userID int64
	roleID int64
	email  string
}

func Customer(userID, customerID int64) Principal {
	return Principal{role: RoleCustomer, userID: userID, roleID: customerID}
}

func Staff(userID, staffID int64) Principal {
	return Principal{role: RoleStaff, userID: userID, roleID: staffID}
}

func Admin(userID, adminID int64) Principal {
	return Principal{role: RoleAdmin, userID: userID, roleID: adminID}
}

func Unauthenticated() Principal {
	return Principal{}
}

// New builds a principal for an arbitrary role, used by token resolvers.
func New(role Role, userID, roleID int64) Principal {
	if role == RoleUnauthenticated {
		return Unauthenticated()
	}
	return Principal{role: role, userID: userID, roleID: roleID}
}

// WithEmail returns a copy carrying the account email.
func (p Principal) WithEmail(email string) Principal {
	p.email = email
	return p
}

func (p Principal) Role() Role                { return p.role }
func (p Principal) UserID() int64             { return p.userID }
func (p Principal) Email() string             { return p.email }
func (p Principal) IsAuthenticated() bool     { return p.role != RoleUnauthenticated }
func (p Principal) Is(role Role) bool         { return p.role == role }
func (p Principal) CustomerID() (int64, bool) { return p.idFor(RoleCustomer) }
func (p Principal) StaffID() (int64, bool)    { return p.idFor(RoleStaff) }
func (p Principal) AdminID() (int64, bool)    { return p.idFor(RoleAdmin) }

func (p Principal) idFor(role Role) (int64, bool) {
	if p.role != role {
		return 0, false
	}
	return p.roleID, true
}

func (p Principal) String() string {
	if !p.IsAuthenticated() {
		return "unauthenticated"
	}
	return fmt.Sprintf("%s:%d", p.role, p.roleID)
}
