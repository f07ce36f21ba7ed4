package game

import "time"

// EventType represents a room event type with type safety
type EventType string

// EventType constants for room domain events
// These represent events that occur within the bidding game logic
const (
	EventTypeRoomCreated    EventType = "room_created"
	EventTypePlayerJoined   EventType = "player_joined"
	EventTypeGameStarted    EventType = "game_started"
	EventTypeBidPlaced      EventType = "bid_placed"
	EventTypeLiarCalled     EventType = "liar_called"
	EventTypePlayerRevealed EventType = "player_revealed"
	EventTypeGameEnded      EventType = "game_ended"
	EventTypeRoomCanceled   EventType = "room_canceled"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a game. Timestamps
// come from the manager's clock, so identical operation sequences
// produce identical event streams.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoomCreatedEvent is published when a room is created
type RoomCreatedEvent struct {
	RoomID          string
	Creator         ID
	MinBid          int64
	RequiredPlayers int
	timestamp       time.Time
}

func (e RoomCreatedEvent) EventType() EventType { return EventTypeRoomCreated }
func (e RoomCreatedEvent) Timestamp() time.Time { return e.timestamp }

// NewRoomCreatedEvent creates a new room created event
func NewRoomCreatedEvent(roomID string, creator ID, minBid int64, requiredPlayers int, at time.Time) RoomCreatedEvent {
	return RoomCreatedEvent{
		RoomID:          roomID,
		Creator:         creator,
		MinBid:          minBid,
		RequiredPlayers: requiredPlayers,
		timestamp:       at,
	}
}

// PlayerJoinedEvent is published when a player joins a room
type PlayerJoinedEvent struct {
	RoomID      string
	Player      ID
	Serial      int
	PlayerCount int
	timestamp   time.Time
}

func (e PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerJoinedEvent creates a new player joined event
func NewPlayerJoinedEvent(roomID string, player ID, serial, playerCount int, at time.Time) PlayerJoinedEvent {
	return PlayerJoinedEvent{
		RoomID:      roomID,
		Player:      player,
		Serial:      serial,
		PlayerCount: playerCount,
		timestamp:   at,
	}
}

// GameStartedEvent is published when bidding begins
type GameStartedEvent struct {
	RoomID      string
	FirstTurn   ID
	PlayerCount int
	timestamp   time.Time
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }
func (e GameStartedEvent) Timestamp() time.Time { return e.timestamp }

// NewGameStartedEvent creates a new game started event
func NewGameStartedEvent(roomID string, firstTurn ID, playerCount int, at time.Time) GameStartedEvent {
	return GameStartedEvent{
		RoomID:      roomID,
		FirstTurn:   firstTurn,
		PlayerCount: playerCount,
		timestamp:   at,
	}
}

// BidPlacedEvent is published when a bid is accepted
type BidPlacedEvent struct {
	RoomID    string
	Bid       Bid
	NextTurn  ID
	PrizePool int64
	timestamp time.Time
}

func (e BidPlacedEvent) EventType() EventType { return EventTypeBidPlaced }
func (e BidPlacedEvent) Timestamp() time.Time { return e.timestamp }

// NewBidPlacedEvent creates a new bid placed event
func NewBidPlacedEvent(roomID string, bid Bid, nextTurn ID, prizePool int64, at time.Time) BidPlacedEvent {
	return BidPlacedEvent{
		RoomID:    roomID,
		Bid:       bid,
		NextTurn:  nextTurn,
		PrizePool: prizePool,
		timestamp: at,
	}
}

// LiarCalledEvent is published when the standing bid is challenged
type LiarCalledEvent struct {
	RoomID     string
	Caller     ID
	LastBidder ID
	timestamp  time.Time
}

func (e LiarCalledEvent) EventType() EventType { return EventTypeLiarCalled }
func (e LiarCalledEvent) Timestamp() time.Time { return e.timestamp }

// NewLiarCalledEvent creates a new liar called event
func NewLiarCalledEvent(roomID string, caller, lastBidder ID, at time.Time) LiarCalledEvent {
	return LiarCalledEvent{
		RoomID:     roomID,
		Caller:     caller,
		LastBidder: lastBidder,
		timestamp:  at,
	}
}

// PlayerRevealedEvent is published when a player discloses their secret
type PlayerRevealedEvent struct {
	RoomID    string
	Player    ID
	Secret    int
	Remaining int // active players yet to reveal
	timestamp time.Time
}

func (e PlayerRevealedEvent) EventType() EventType { return EventTypePlayerRevealed }
func (e PlayerRevealedEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerRevealedEvent creates a new player revealed event
func NewPlayerRevealedEvent(roomID string, player ID, secret, remaining int, at time.Time) PlayerRevealedEvent {
	return PlayerRevealedEvent{
		RoomID:    roomID,
		Player:    player,
		Secret:    secret,
		Remaining: remaining,
		timestamp: at,
	}
}

// GameEndedEvent is published on the final reveal, once the standing
// bid has been scored and the pool settled
type GameEndedEvent struct {
	RoomID     string
	Winner     ID
	PrizePool  int64
	DigitCount int // true occurrences of the challenged digit
	timestamp  time.Time
}

func (e GameEndedEvent) EventType() EventType { return EventTypeGameEnded }
func (e GameEndedEvent) Timestamp() time.Time { return e.timestamp }

// NewGameEndedEvent creates a new game ended event
func NewGameEndedEvent(roomID string, winner ID, prizePool int64, digitCount int, at time.Time) GameEndedEvent {
	return GameEndedEvent{
		RoomID:     roomID,
		Winner:     winner,
		PrizePool:  prizePool,
		DigitCount: digitCount,
		timestamp:  at,
	}
}

// RoomCanceledEvent is published when a room is administratively
// canceled and stakes are refunded
type RoomCanceledEvent struct {
	RoomID    string
	Canceler  ID
	Refunds   []Transfer
	timestamp time.Time
}

func (e RoomCanceledEvent) EventType() EventType { return EventTypeRoomCanceled }
func (e RoomCanceledEvent) Timestamp() time.Time { return e.timestamp }

// NewRoomCanceledEvent creates a new room canceled event
func NewRoomCanceledEvent(roomID string, canceler ID, refunds []Transfer, at time.Time) RoomCanceledEvent {
	return RoomCanceledEvent{
		RoomID:    roomID,
		Canceler:  canceler,
		Refunds:   refunds,
		timestamp: at,
	}
}

// EventSubscriber can subscribe to room events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation.
// Delivery is synchronous and in subscription order; callers that need
// isolation between rooms hold their own bus per room.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
