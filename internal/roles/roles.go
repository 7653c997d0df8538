// Package roles implements the static role gate: user ID set membership
// loaded from configuration at process start, immutable at runtime.
package roles

// Role identifies what a Telegram user is allowed to do.
type Role string

const (
	// Manager users see the management menu and manager-only operations.
	Manager Role = "manager"
	// Seller users see the seller menu and project/lead operations.
	Seller Role = "seller"
	// None marks users absent from both configured lists.
	None Role = "none"
)

// Gate resolves user IDs to roles via set membership.
type Gate struct {
	managers map[int64]struct{}
	sellers  map[int64]struct{}
}

// NewGate builds a Gate from the two configured ID lists.
// The lists are assumed disjoint (validated by config normalization).
func NewGate(managers, sellers []int64) *Gate {
	g := &Gate{
		managers: make(map[int64]struct{}, len(managers)),
		sellers:  make(map[int64]struct{}, len(sellers)),
	}
	for _, id := range managers {
		g.managers[id] = struct{}{}
	}
	for _, id := range sellers {
		g.sellers[id] = struct{}{}
	}
	return g
}

// Resolve returns the role for a user ID. Deterministic and side-effect free.
func (g *Gate) Resolve(userID int64) Role {
	if _, ok := g.managers[userID]; ok {
		return Manager
	}
	if _, ok := g.sellers[userID]; ok {
		return Seller
	}
	return None
}

// IsManager reports whether the user is in the manager list.
func (g *Gate) IsManager(userID int64) bool { return g.Resolve(userID) == Manager }

// IsSeller reports whether the user is in the seller list.
func (g *Gate) IsSeller(userID int64) bool { return g.Resolve(userID) == Seller }

// Known reports whether the user belongs to either list.
func (g *Gate) Known(userID int64) bool { return g.Resolve(userID) != None }
