package model

type Role string

const (
	RoleRetail    Role = "retail"
	RoleWholesale Role = "wholesale"
	RoleAdmin     Role = "admin"
)

type BuyerClass string

const (
	BuyerRetail    BuyerClass = "retail"
	BuyerWholesale BuyerClass = "wholesale"
)

// BuyerClassFor maps an actor role to the price column it buys at. Anything
// other than wholesale, including anonymous and admin, buys at retail.
func BuyerClassFor(role Role) BuyerClass {
	if role == RoleWholesale {
		return BuyerWholesale
	}
	return BuyerRetail
}
