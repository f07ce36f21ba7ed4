package server

// Note: engine events (bid_placed, game_ended, etc.) are defined in
// internal/game/events.go and travel to clients inside "event" messages

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeCreateRoom MessageType = "create_room"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypePlaceBid   MessageType = "place_bid"
	MessageTypeChallenge  MessageType = "challenge"
	MessageTypeReveal     MessageType = "reveal"
	MessageTypeCancelRoom MessageType = "cancel_room"
	MessageTypeListRooms  MessageType = "list_rooms"

	// Both directions: the request carries a room id, the response the state
	MessageTypeRoomState MessageType = "room_state"

	// Server to client messages
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeRoomCreated  MessageType = "room_created"
	MessageTypeRoomJoined   MessageType = "room_joined"
	MessageTypeRoomList     MessageType = "room_list"
	MessageTypeEvent        MessageType = "event"
	MessageTypeError        MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
