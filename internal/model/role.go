package model

// Role is the account capability set. Accounts hold exactly one.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability is a single permission checked at the HTTP boundary.
type Capability string

const (
	CapCatalogManage  Capability = "catalog:manage"
	CapDashboardView  Capability = "dashboard:view"
	CapCartManage     Capability = "cart:manage"
	CapOrderPlace     Capability = "order:place"
	CapAccountProfile Capability = "account:profile"
)

// roleCapabilities keeps the two sets disjoint apart from profile access:
// admins manage the catalog, users manage carts and orders.
var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {CapCatalogManage, CapDashboardView, CapAccountProfile},
	RoleUser:  {CapCartManage, CapOrderPlace, CapAccountProfile},
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Capabilities returns a copy of the role's capability list
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Can reports whether the role grants the capability
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}
