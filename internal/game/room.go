package game

import "time"

// Room is the aggregate state of a single liar's poker game. All
// mutation goes through Manager operations, and a room must not be
// shared across goroutines without external serialization.
type Room struct {
	ID              string
	Creator         ID
	Phase           Phase
	MinBid          int64
	RequiredPlayers int
	Seed            int64

	CreatedAt time.Time
	StartedAt time.Time // zero until the game starts

	CurrentBid  *Bid // nil until the first accepted bid
	LastBidder  ID   // empty until the first accepted bid
	CurrentTurn ID   // empty outside InProgress and Revealing
	Challenger  ID   // empty until a challenge is called
	Winner      ID   // empty until completion

	registry *Registry
	ledger   *Ledger
}

// Players returns the room's players in join order
func (r *Room) Players() []*Player {
	return r.registry.Players()
}

// Player returns the player with the given identity
func (r *Room) Player(id ID) (*Player, bool) {
	return r.registry.Get(id)
}

// PlayerCount returns the number of joined players
func (r *Room) PlayerCount() int {
	return r.registry.Len()
}

// PrizePool returns the currently escrowed pool
func (r *Room) PrizePool() int64 {
	return r.ledger.Pool()
}

// Ledger returns the room's prize pool ledger
func (r *Room) Ledger() *Ledger {
	return r.ledger
}

// RoomSnapshot is a complete serializable copy of a room. The
// persistence layer uses it to save and restore rooms across processes.
type RoomSnapshot struct {
	ID              string
	Creator         ID
	Phase           Phase
	MinBid          int64
	RequiredPlayers int
	Seed            int64
	CreatedAt       time.Time
	StartedAt       time.Time
	CurrentBid      *Bid
	LastBidder      ID
	CurrentTurn     ID
	Challenger      ID
	Winner          ID
	Players         []Player
	PrizePool       int64
	PoolAdded       int64
	PoolPaid        int64
	Settled         bool
}

// Snapshot returns a deep copy of the room state.
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]Player, r.registry.Len())
	for i, p := range r.registry.Players() {
		players[i] = *p
	}
	var bid *Bid
	if r.CurrentBid != nil {
		b := *r.CurrentBid
		bid = &b
	}
	return RoomSnapshot{
		ID:              r.ID,
		Creator:         r.Creator,
		Phase:           r.Phase,
		MinBid:          r.MinBid,
		RequiredPlayers: r.RequiredPlayers,
		Seed:            r.Seed,
		CreatedAt:       r.CreatedAt,
		StartedAt:       r.StartedAt,
		CurrentBid:      bid,
		LastBidder:      r.LastBidder,
		CurrentTurn:     r.CurrentTurn,
		Challenger:      r.Challenger,
		Winner:          r.Winner,
		Players:         players,
		PrizePool:       r.ledger.Pool(),
		PoolAdded:       r.ledger.Added(),
		PoolPaid:        r.ledger.Paid(),
		Settled:         r.ledger.Settled(),
	}
}

// RestoreRoom rebuilds a room from a snapshot.
func RestoreRoom(s RoomSnapshot) *Room {
	registry := NewRegistry()
	for i := range s.Players {
		p := s.Players[i]
		registry.Add(&p)
	}
	var bid *Bid
	if s.CurrentBid != nil {
		b := *s.CurrentBid
		bid = &b
	}
	return &Room{
		ID:              s.ID,
		Creator:         s.Creator,
		Phase:           s.Phase,
		MinBid:          s.MinBid,
		RequiredPlayers: s.RequiredPlayers,
		Seed:            s.Seed,
		CreatedAt:       s.CreatedAt,
		StartedAt:       s.StartedAt,
		CurrentBid:      bid,
		LastBidder:      s.LastBidder,
		CurrentTurn:     s.CurrentTurn,
		Challenger:      s.Challenger,
		Winner:          s.Winner,
		registry:        registry,
		ledger: &Ledger{
			pool:    s.PrizePool,
			added:   s.PoolAdded,
			paid:    s.PoolPaid,
			settled: s.Settled,
		},
	}
}
