package game

import "time"

// ID identifies a participant. Identifiers are opaque and compared only
// for equality; the empty string means absent.
type ID string

// MaxPlayers is the hard cap on players in a room.
const MaxPlayers = 6

// Player represents a participant in a room
type Player struct {
	ID          ID
	Secret      int   // hidden value in [SecretMin, SecretMax], dealt at join
	Serial      int   // 1-based join ordinal, unique within the room
	TotalStaked int64 // sum of stakes across the player's accepted bids
	Revealed    bool
	Active      bool
	JoinedAt    time.Time
}

// Registry holds the players of a room in join order. Join order is
// turn order: rotation walks the registry front to back and wraps.
type Registry struct {
	players []*Player
	byID    map[ID]*Player
}

// NewRegistry creates an empty player registry
func NewRegistry() *Registry {
	return &Registry{byID: make(map[ID]*Player)}
}

// Add appends a player. The caller enforces capacity and uniqueness.
func (reg *Registry) Add(p *Player) {
	reg.players = append(reg.players, p)
	reg.byID[p.ID] = p
}

// Get returns the player with the given identity
func (reg *Registry) Get(id ID) (*Player, bool) {
	p, ok := reg.byID[id]
	return p, ok
}

// Has returns true if the identity already holds a player record
func (reg *Registry) Has(id ID) bool {
	_, ok := reg.byID[id]
	return ok
}

// Len returns the number of joined players
func (reg *Registry) Len() int {
	return len(reg.players)
}

// Players returns the players in join order
func (reg *Registry) Players() []*Player {
	return reg.players
}

// AllActiveRevealed returns true once every active player has revealed
func (reg *Registry) AllActiveRevealed() bool {
	for _, p := range reg.players {
		if p.Active && !p.Revealed {
			return false
		}
	}
	return true
}

// PendingReveals returns how many active players have yet to reveal
func (reg *Registry) PendingReveals() int {
	n := 0
	for _, p := range reg.players {
		if p.Active && !p.Revealed {
			n++
		}
	}
	return n
}
