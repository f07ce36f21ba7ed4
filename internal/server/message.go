package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/liarspoker/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type CreateRoomData struct {
	MinBid          int64 `json:"minBid"`
	RequiredPlayers int   `json:"requiredPlayers"`
}

type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

type StartGameData struct {
	RoomID string `json:"roomId"`
}

type PlaceBidData struct {
	RoomID   string `json:"roomId"`
	Digit    int    `json:"digit"`
	Quantity int    `json:"quantity"`
	Stake    int64  `json:"stake"`
}

type ChallengeData struct {
	RoomID string `json:"roomId"`
}

type RevealData struct {
	RoomID string `json:"roomId"`
}

type CancelRoomData struct {
	RoomID string `json:"roomId"`
}

type RoomStateRequestData struct {
	RoomID string `json:"roomId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomInfo struct {
	ID              string `json:"id"`
	Phase           string `json:"phase"`
	PlayerCount     int    `json:"playerCount"`
	RequiredPlayers int    `json:"requiredPlayers"`
	MinBid          int64  `json:"minBid"`
	PrizePool       int64  `json:"prizePool"`
}

type RoomListData struct {
	Rooms []RoomInfo `json:"rooms"`
}

// PlayerState is a player as seen over the wire. Secret is only
// populated for the viewing player themselves, or once the player has
// revealed.
type PlayerState struct {
	ID          string `json:"id"`
	Serial      int    `json:"serial"`
	TotalStaked int64  `json:"totalStaked"`
	Revealed    bool   `json:"revealed"`
	Active      bool   `json:"active"`
	Secret      int    `json:"secret,omitempty"`
}

type BidState struct {
	Bidder   string `json:"bidder"`
	Digit    int    `json:"digit"`
	Quantity int    `json:"quantity"`
	Stake    int64  `json:"stake"`
}

type RoomStateData struct {
	RoomID          string        `json:"roomId"`
	Phase           string        `json:"phase"`
	Creator         string        `json:"creator"`
	MinBid          int64         `json:"minBid"`
	RequiredPlayers int           `json:"requiredPlayers"`
	PrizePool       int64         `json:"prizePool"`
	CurrentBid      *BidState     `json:"currentBid,omitempty"`
	CurrentTurn     string        `json:"currentTurn,omitempty"`
	LastBidder      string        `json:"lastBidder,omitempty"`
	Challenger      string        `json:"challenger,omitempty"`
	Winner          string        `json:"winner,omitempty"`
	Players         []PlayerState `json:"players"`
}

type RoomJoinedData struct {
	RoomID       string        `json:"roomId"`
	SerialNumber int           `json:"serialNumber"`
	Secret       int           `json:"secret"`
	State        RoomStateData `json:"state"`
}

// EventData wraps an engine event for broadcast. Event names the engine
// event type and Payload holds the matching *Data struct below.
type EventData struct {
	Event   string          `json:"event"`
	RoomID  string          `json:"roomId"`
	Payload json.RawMessage `json:"payload"`
}

// Engine event payloads

type RoomCreatedData struct {
	RoomID          string `json:"roomId"`
	Creator         string `json:"creator"`
	MinBid          int64  `json:"minBid"`
	RequiredPlayers int    `json:"requiredPlayers"`
}

type PlayerJoinedData struct {
	RoomID       string `json:"roomId"`
	Player       string `json:"player"`
	SerialNumber int    `json:"serialNumber"`
	PlayerCount  int    `json:"playerCount"`
}

type GameStartedData struct {
	RoomID      string `json:"roomId"`
	FirstTurn   string `json:"firstTurn"`
	PlayerCount int    `json:"playerCount"`
}

type BidPlacedData struct {
	RoomID    string `json:"roomId"`
	Bidder    string `json:"bidder"`
	Digit     int    `json:"digit"`
	Quantity  int    `json:"quantity"`
	Stake     int64  `json:"stake"`
	NextTurn  string `json:"nextTurn"`
	PrizePool int64  `json:"prizePool"`
}

type LiarCalledData struct {
	RoomID     string `json:"roomId"`
	Caller     string `json:"caller"`
	LastBidder string `json:"lastBidder"`
}

type PlayerRevealedData struct {
	RoomID    string `json:"roomId"`
	Player    string `json:"player"`
	Secret    int    `json:"secret"`
	Remaining int    `json:"remaining"`
}

type GameEndedData struct {
	RoomID     string `json:"roomId"`
	Winner     string `json:"winner"`
	PrizePool  int64  `json:"prizePool"`
	DigitCount int    `json:"digitCount"`
}

type RefundState struct {
	Player string `json:"player"`
	Amount int64  `json:"amount"`
}

type RoomCanceledData struct {
	RoomID   string        `json:"roomId"`
	Canceler string        `json:"canceler"`
	Refunds  []RefundState `json:"refunds"`
}

// Helper functions to convert between internal types and message types

func PlayerStateFromGame(p game.Player, includeSecret bool) PlayerState {
	state := PlayerState{
		ID:          string(p.ID),
		Serial:      p.Serial,
		TotalStaked: p.TotalStaked,
		Revealed:    p.Revealed,
		Active:      p.Active,
	}
	if includeSecret || p.Revealed {
		state.Secret = p.Secret
	}
	return state
}

// RoomStateFromSnapshot renders a snapshot from one player's
// perspective: only the viewer's own secret and revealed secrets are
// included.
func RoomStateFromSnapshot(s game.RoomSnapshot, viewer game.ID) RoomStateData {
	players := make([]PlayerState, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerStateFromGame(p, p.ID == viewer)
	}

	var bid *BidState
	if s.CurrentBid != nil {
		bid = &BidState{
			Bidder:   string(s.CurrentBid.Bidder),
			Digit:    s.CurrentBid.Digit,
			Quantity: s.CurrentBid.Quantity,
			Stake:    s.CurrentBid.Stake,
		}
	}

	return RoomStateData{
		RoomID:          s.ID,
		Phase:           s.Phase.String(),
		Creator:         string(s.Creator),
		MinBid:          s.MinBid,
		RequiredPlayers: s.RequiredPlayers,
		PrizePool:       s.PrizePool,
		CurrentBid:      bid,
		CurrentTurn:     string(s.CurrentTurn),
		LastBidder:      string(s.LastBidder),
		Challenger:      string(s.Challenger),
		Winner:          string(s.Winner),
		Players:         players,
	}
}

func RoomInfoFromSnapshot(s game.RoomSnapshot) RoomInfo {
	return RoomInfo{
		ID:              s.ID,
		Phase:           s.Phase.String(),
		PlayerCount:     len(s.Players),
		RequiredPlayers: s.RequiredPlayers,
		MinBid:          s.MinBid,
		PrizePool:       s.PrizePool,
	}
}

// EventDataFromGame converts an engine event into its broadcast form.
func EventDataFromGame(event game.GameEvent) (*EventData, error) {
	var roomID string
	var payload interface{}

	switch e := event.(type) {
	case game.RoomCreatedEvent:
		roomID = e.RoomID
		payload = RoomCreatedData{
			RoomID:          e.RoomID,
			Creator:         string(e.Creator),
			MinBid:          e.MinBid,
			RequiredPlayers: e.RequiredPlayers,
		}
	case game.PlayerJoinedEvent:
		roomID = e.RoomID
		payload = PlayerJoinedData{
			RoomID:       e.RoomID,
			Player:       string(e.Player),
			SerialNumber: e.Serial,
			PlayerCount:  e.PlayerCount,
		}
	case game.GameStartedEvent:
		roomID = e.RoomID
		payload = GameStartedData{
			RoomID:      e.RoomID,
			FirstTurn:   string(e.FirstTurn),
			PlayerCount: e.PlayerCount,
		}
	case game.BidPlacedEvent:
		roomID = e.RoomID
		payload = BidPlacedData{
			RoomID:    e.RoomID,
			Bidder:    string(e.Bid.Bidder),
			Digit:     e.Bid.Digit,
			Quantity:  e.Bid.Quantity,
			Stake:     e.Bid.Stake,
			NextTurn:  string(e.NextTurn),
			PrizePool: e.PrizePool,
		}
	case game.LiarCalledEvent:
		roomID = e.RoomID
		payload = LiarCalledData{
			RoomID:     e.RoomID,
			Caller:     string(e.Caller),
			LastBidder: string(e.LastBidder),
		}
	case game.PlayerRevealedEvent:
		roomID = e.RoomID
		payload = PlayerRevealedData{
			RoomID:    e.RoomID,
			Player:    string(e.Player),
			Secret:    e.Secret,
			Remaining: e.Remaining,
		}
	case game.GameEndedEvent:
		roomID = e.RoomID
		payload = GameEndedData{
			RoomID:     e.RoomID,
			Winner:     string(e.Winner),
			PrizePool:  e.PrizePool,
			DigitCount: e.DigitCount,
		}
	case game.RoomCanceledEvent:
		roomID = e.RoomID
		refunds := make([]RefundState, len(e.Refunds))
		for i, r := range e.Refunds {
			refunds[i] = RefundState{Player: string(r.To), Amount: r.Amount}
		}
		payload = RoomCanceledData{
			RoomID:   e.RoomID,
			Canceler: string(e.Canceler),
			Refunds:  refunds,
		}
	default:
		return nil, fmt.Errorf("unsupported event type: %s", event.EventType())
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &EventData{
		Event:   event.EventType().String(),
		RoomID:  roomID,
		Payload: raw,
	}, nil
}

// GameEventFromData reverses EventDataFromGame. Clients rebuild engine
// events from broadcasts so they can reuse the engine's event
// formatter; the timestamp comes from the message envelope.
func GameEventFromData(data EventData, at time.Time) (game.GameEvent, error) {
	switch game.EventType(data.Event) {
	case game.EventTypeRoomCreated:
		var p RoomCreatedData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		return game.NewRoomCreatedEvent(p.RoomID, game.ID(p.Creator), p.MinBid, p.RequiredPlayers, at), nil

	case game.EventTypePlayerJoined:
		var p PlayerJoinedData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		return game.NewPlayerJoinedEvent(p.RoomID, game.ID(p.Player), p.SerialNumber, p.PlayerCount, at), nil

	case game.EventTypeGameStarted:
		var p GameStartedData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		return game.NewGameStartedEvent(p.RoomID, game.ID(p.FirstTurn), p.PlayerCount, at), nil

	case game.EventTypeBidPlaced:
		var p BidPlacedData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		bid := game.Bid{
			Bidder:   game.ID(p.Bidder),
			Digit:    p.Digit,
			Quantity: p.Quantity,
			Stake:    p.Stake,
			PlacedAt: at,
		}
		return game.NewBidPlacedEvent(p.RoomID, bid, game.ID(p.NextTurn), p.PrizePool, at), nil

	case game.EventTypeLiarCalled:
		var p LiarCalledData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		return game.NewLiarCalledEvent(p.RoomID, game.ID(p.Caller), game.ID(p.LastBidder), at), nil

	case game.EventTypePlayerRevealed:
		var p PlayerRevealedData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		return game.NewPlayerRevealedEvent(p.RoomID, game.ID(p.Player), p.Secret, p.Remaining, at), nil

	case game.EventTypeGameEnded:
		var p GameEndedData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		return game.NewGameEndedEvent(p.RoomID, game.ID(p.Winner), p.PrizePool, p.DigitCount, at), nil

	case game.EventTypeRoomCanceled:
		var p RoomCanceledData
		if err := json.Unmarshal(data.Payload, &p); err != nil {
			return nil, err
		}
		refunds := make([]game.Transfer, len(p.Refunds))
		for i, r := range p.Refunds {
			refunds[i] = game.Transfer{To: game.ID(r.Player), Amount: r.Amount}
		}
		return game.NewRoomCanceledEvent(p.RoomID, game.ID(p.Canceler), refunds, at), nil

	default:
		return nil, fmt.Errorf("unknown event type: %s", data.Event)
	}
}
