package game

import (
	"github.com/coder/quartz"

	"github.com/lox/liarspoker/internal/randutil"
)

// Manager executes room operations. Every operation validates fully
// before mutating, so a returned error guarantees the room is exactly
// as it was. The manager holds no room registry of its own; callers
// keep rooms and must serialize operations on each one.
type Manager struct {
	clock       quartz.Clock
	secrets     SecretSource
	generateID  func() string
	bus         EventBus
	seed        int64
	roomCounter int64
}

// CreateRoom creates a room owned by creator. The creator does not
// occupy a seat until they join like any other player.
func (m *Manager) CreateRoom(creator ID, minBid int64, requiredPlayers int) (*Room, error) {
	if requiredPlayers < 2 || requiredPlayers > MaxPlayers {
		return nil, ErrInvalidPlayerCount
	}
	if minBid <= 0 {
		return nil, ErrInvalidBidAmount
	}

	m.roomCounter++
	now := m.clock.Now()
	room := &Room{
		ID:              m.generateID(),
		Creator:         creator,
		Phase:           PhaseCreated,
		MinBid:          minBid,
		RequiredPlayers: requiredPlayers,
		Seed:            randutil.Derive(m.seed, m.roomCounter),
		CreatedAt:       now,
		registry:        NewRegistry(),
		ledger:          NewLedger(),
	}

	m.publish(NewRoomCreatedEvent(room.ID, creator, minBid, requiredPlayers, now))
	return room, nil
}

// JoinRoom seats a player and deals their hidden secret. It returns the
// player's serial number, the 1-based join ordinal that doubles as the
// public handle for the seat. The secret seed derives from the room
// seed and the serial, so rejoining sequences reproduce exactly.
func (m *Manager) JoinRoom(room *Room, player ID) (int, error) {
	if !room.Phase.Joinable() {
		return 0, ErrRoomNotJoinable
	}
	if room.registry.Len() >= MaxPlayers {
		return 0, ErrRoomFull
	}
	if room.registry.Has(player) {
		return 0, ErrAlreadyJoined
	}

	serial := room.registry.Len() + 1
	now := m.clock.Now()
	room.registry.Add(&Player{
		ID:       player,
		Secret:   m.secrets.GenerateSecret(randutil.Derive(room.Seed, int64(serial))),
		Serial:   serial,
		Active:   true,
		JoinedAt: now,
	})
	if room.Phase == PhaseCreated && room.registry.Len() >= room.RequiredPlayers {
		room.Phase = PhaseWaiting
	}

	m.publish(NewPlayerJoinedEvent(room.ID, player, serial, room.registry.Len(), now))
	return serial, nil
}

// StartGame moves the room into the bidding phase. Only the creator may
// start, and the first turn goes to the first active player in join
// order.
func (m *Manager) StartGame(room *Room, caller ID) error {
	if room.Phase != PhaseWaiting {
		return ErrInvalidGameState
	}
	if caller != room.Creator {
		return ErrNotAuthorized
	}
	if room.registry.Len() < room.RequiredPlayers {
		return ErrNotEnoughPlayers
	}

	now := m.clock.Now()
	room.Phase = PhaseInProgress
	room.StartedAt = now
	room.CurrentTurn = room.firstActive()

	m.publish(NewGameStartedEvent(room.ID, room.CurrentTurn, room.registry.Len(), now))
	return nil
}

// PlaceBid escalates the standing bid and escrows the stake. The stake
// joins the prize pool and the turn advances to the next active player.
func (m *Manager) PlaceBid(room *Room, player ID, digit, quantity int, stake int64) error {
	if room.Phase != PhaseInProgress {
		return ErrInvalidGameState
	}
	if room.CurrentTurn != player {
		return ErrNotYourTurn
	}
	if digit < 0 || digit > 9 {
		return ErrInvalidDigit
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if stake < room.MinBid {
		return ErrBidTooLow
	}
	now := m.clock.Now()
	bid := Bid{Bidder: player, Digit: digit, Quantity: quantity, Stake: stake, PlacedAt: now}
	if room.CurrentBid != nil && !bid.Beats(*room.CurrentBid) {
		return ErrInvalidBid
	}
	p, ok := room.registry.Get(player)
	if !ok {
		return ErrNotYourTurn
	}
	newTotal, err := addChecked(p.TotalStaked, stake)
	if err != nil {
		return err
	}
	if err := room.ledger.Add(stake); err != nil {
		return err
	}

	p.TotalStaked = newTotal
	room.CurrentBid = &bid
	room.LastBidder = player
	room.CurrentTurn = room.nextActive(player)

	m.publish(NewBidPlacedEvent(room.ID, bid, room.CurrentTurn, room.ledger.Pool(), now))
	return nil
}

// Challenge calls the standing bid a lie. The turn freezes at the
// challenger while the room waits for every active player to reveal.
func (m *Manager) Challenge(room *Room, player ID) error {
	if room.Phase != PhaseInProgress {
		return ErrInvalidGameState
	}
	if room.CurrentTurn != player {
		return ErrNotYourTurn
	}
	if room.LastBidder == "" {
		return ErrNoBidToChallenge
	}

	now := m.clock.Now()
	room.Phase = PhaseRevealing
	room.Challenger = player

	m.publish(NewLiarCalledEvent(room.ID, player, room.LastBidder, now))
	return nil
}

// Reveal discloses the caller's secret. The final active reveal scores
// the standing bid against the true digit count, settles the pool to
// the winner, and completes the game.
func (m *Manager) Reveal(room *Room, player ID) error {
	if room.Phase != PhaseRevealing {
		return ErrInvalidGameState
	}
	p, ok := room.registry.Get(player)
	if !ok {
		return ErrNotAuthorized
	}
	if p.Revealed {
		return ErrAlreadyRevealed
	}

	now := m.clock.Now()
	p.Revealed = true
	m.publish(NewPlayerRevealedEvent(room.ID, player, p.Secret, room.registry.PendingReveals(), now))

	if !room.registry.AllActiveRevealed() {
		return nil
	}

	winner, count := room.resolve()
	payout, _ := room.ledger.Settle(winner)
	room.Winner = winner
	room.Phase = PhaseCompleted
	room.CurrentTurn = ""

	m.publish(NewGameEndedEvent(room.ID, winner, payout.Amount, count, now))
	return nil
}

// CancelRoom abandons a room that has not reached a terminal phase and
// refunds every player's total stake. Only the creator may cancel.
func (m *Manager) CancelRoom(room *Room, caller ID) error {
	if room.Phase.Terminal() {
		return ErrInvalidGameState
	}
	if caller != room.Creator {
		return ErrNotAuthorized
	}

	now := m.clock.Now()
	refunds, _ := room.ledger.RefundAll(room.registry.Players())
	for _, t := range refunds {
		if p, ok := room.registry.Get(t.To); ok {
			p.TotalStaked = 0
		}
	}
	room.Phase = PhaseCanceled
	room.CurrentTurn = ""

	m.publish(NewRoomCanceledEvent(room.ID, caller, refunds, now))
	return nil
}

// Events returns the bus room events are published on.
func (m *Manager) Events() EventBus {
	return m.bus
}

// Clock returns the manager's time source.
func (m *Manager) Clock() quartz.Clock {
	return m.clock
}

func (m *Manager) publish(event GameEvent) {
	if m.bus != nil {
		m.bus.Publish(event)
	}
}
