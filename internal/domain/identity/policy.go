package identity

import "github.com/google/uuid"

// Resource names guarded by the authorization policy
const (
	ResourceProducts = "products"
	ResourceOrders   = "orders"
	ResourceSettings = "settings"
	ResourceStats    = "stats"
	ResourceUploads  = "uploads"
	ResourceAccount  = "account"
)

// Actions that can be performed on a resource
const (
	ActionRead    = "read"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionFulfill = "fulfill"
	ActionCancel  = "cancel"
)

// Principal is the authenticated caller as seen by the policy
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// CanAccess decides whether principal may perform action on resource.
// Admins may do anything; customers may only read their own account data.
func CanAccess(principal *Principal, resource, action string) bool {
	if principal == nil || principal.UserID == uuid.Nil {
		return false
	}
	switch principal.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return resource == ResourceAccount && action == ActionRead
	}
	return false
}
