package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/liarspoker/internal/auth"
	"github.com/lox/liarspoker/internal/game"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	roomID      string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	roomService *RoomService
	verifier    auth.Verifier
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, roomService *RoomService, verifier auth.Verifier) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		roomService: roomService,
		verifier:    verifier,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom returns the associated room ID
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypePlaceBid:
		var data PlaceBidData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse place bid data")
			return
		}
		c.handlePlaceBid(data)

	case MessageTypeChallenge:
		var data ChallengeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse challenge data")
			return
		}
		c.handleChallenge(data)

	case MessageTypeReveal:
		var data RevealData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse reveal data")
			return
		}
		c.handleReveal(data)

	case MessageTypeCancelRoom:
		var data CancelRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse cancel room data")
			return
		}
		c.handleCancelRoom(data)

	case MessageTypeListRooms:
		c.handleListRooms()

	case MessageTypeRoomState:
		var data RoomStateRequestData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse room state data")
			return
		}
		c.handleRoomState(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

// sendOpError maps an engine error onto the wire by its typed code.
func (c *Connection) sendOpError(err error) {
	if errors.Is(err, errRoomNotFound) {
		c.sendError("room_not_found", err.Error())
		return
	}
	c.sendError(game.ErrorCode(err), err.Error())
}

// requirePlayer returns the authenticated player, sending an error and
// reporting false when the connection has not authenticated yet.
func (c *Connection) requirePlayer() (game.ID, bool) {
	if c.roomService == nil {
		c.sendError("service_unavailable", "Room service not available")
		return "", false
	}

	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return "", false
	}
	return game.ID(playerID), true
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	identity, err := c.verifier.Verify(c.ctx, data.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.sendError("invalid_auth", "Invalid token")
		} else {
			c.sendError("auth_unavailable", "Identity verification unavailable")
		}
		return
	}

	name := data.PlayerName
	if identity != nil && identity.PlayerName != "" {
		name = identity.PlayerName
	}
	if name == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	c.SetPlayer(name)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: name,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	c.logger.Info("Create room request", "player", player,
		"minBid", data.MinBid, "requiredPlayers", data.RequiredPlayers)

	snapshot, err := c.roomService.CreateRoom(c.ctx, player, data.MinBid, data.RequiredPlayers)
	if err != nil {
		c.sendOpError(err)
		return
	}

	// Creators follow their room's events from creation onward
	c.SetRoom(snapshot.ID)

	response, _ := NewMessage(MessageTypeRoomCreated, RoomStateFromSnapshot(snapshot, player))
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	c.logger.Info("Join room request", "roomId", data.RoomID, "player", player)

	serial, secret, snapshot, err := c.roomService.JoinRoom(c.ctx, data.RoomID, player)
	if err != nil {
		c.sendOpError(err)
		return
	}

	c.SetRoom(data.RoomID)

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		RoomID:       data.RoomID,
		SerialNumber: serial,
		Secret:       secret,
		State:        RoomStateFromSnapshot(snapshot, player),
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleStartGame(data StartGameData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	c.logger.Info("Start game request", "roomId", data.RoomID, "player", player)

	if _, err := c.roomService.StartGame(c.ctx, data.RoomID, player); err != nil {
		c.sendOpError(err)
		return
	}
	// No direct response: the game_started event reaches the room
}

func (c *Connection) handlePlaceBid(data PlaceBidData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	c.logger.Info("Place bid request", "roomId", data.RoomID, "player", player,
		"digit", data.Digit, "quantity", data.Quantity, "stake", data.Stake)

	if _, err := c.roomService.PlaceBid(c.ctx, data.RoomID, player, data.Digit, data.Quantity, data.Stake); err != nil {
		c.sendOpError(err)
		return
	}
	// No direct response: the bid_placed event reaches the room
}

func (c *Connection) handleChallenge(data ChallengeData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	c.logger.Info("Challenge request", "roomId", data.RoomID, "player", player)

	if _, err := c.roomService.Challenge(c.ctx, data.RoomID, player); err != nil {
		c.sendOpError(err)
		return
	}
}

func (c *Connection) handleReveal(data RevealData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	c.logger.Info("Reveal request", "roomId", data.RoomID, "player", player)

	if _, err := c.roomService.Reveal(c.ctx, data.RoomID, player); err != nil {
		c.sendOpError(err)
		return
	}
}

func (c *Connection) handleCancelRoom(data CancelRoomData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	c.logger.Info("Cancel room request", "roomId", data.RoomID, "player", player)

	if _, err := c.roomService.CancelRoom(c.ctx, data.RoomID, player); err != nil {
		c.sendOpError(err)
		return
	}
}

func (c *Connection) handleListRooms() {
	if c.roomService == nil {
		c.sendError("service_unavailable", "Room service not available")
		return
	}

	c.logger.Info("List rooms request", "player", c.GetPlayer())

	response, _ := NewMessage(MessageTypeRoomList, RoomListData{
		Rooms: c.roomService.ListRooms(),
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleRoomState(data RoomStateRequestData) {
	player, ok := c.requirePlayer()
	if !ok {
		return
	}

	snapshot, err := c.roomService.RoomState(data.RoomID)
	if err != nil {
		c.sendOpError(err)
		return
	}

	response, _ := NewMessage(MessageTypeRoomState, RoomStateFromSnapshot(snapshot, player))
	_ = c.SendMessage(response) // Ignore send errors
}
