package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarspoker/internal/game"
	"github.com/lox/liarspoker/internal/store"
)

// newWSServer wires a full server behind an httptest listener. The
// registry loop runs as in production; only the HTTP listener is
// swapped out.
func newWSServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv := NewServer("127.0.0.1:0", testLogger())
	manager := game.NewManager(game.WithSeed(42))
	svc := NewRoomService(srv, manager, store.NewMemory(), "", testLogger())
	srv.SetRoomService(svc)

	go srv.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWebSocket)
	mux.HandleFunc("/health", srv.handleHealth)
	ts := httptest.NewServer(mux)

	t.Cleanup(func() {
		_ = srv.Stop()
		ts.Close()
	})

	return srv, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, messageType MessageType, data interface{}) {
	t.Helper()

	msg, err := NewMessage(messageType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func readWS(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

// readEventWS reads the next message and requires it to be the named
// room event.
func readEventWS(t *testing.T, conn *websocket.Conn, want game.EventType) EventData {
	t.Helper()

	msg := readWS(t, conn)
	require.Equal(t, MessageTypeEvent, msg.Type)
	var data EventData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	require.Equal(t, string(want), data.Event)
	return data
}

func readErrorWS(t *testing.T, conn *websocket.Conn) ErrorData {
	t.Helper()

	msg := readWS(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func authWS(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()

	sendWS(t, conn, MessageTypeAuth, AuthData{PlayerName: name})
	msg := readWS(t, conn)
	require.Equal(t, MessageTypeAuthResponse, msg.Type)
	var resp AuthResponseData
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	require.True(t, resp.Success)
	require.Equal(t, name, resp.PlayerID)
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newWSServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestWebSocketRequiresAuth(t *testing.T) {
	_, ts := newWSServer(t)
	conn := dialWS(t, ts)

	sendWS(t, conn, MessageTypeCreateRoom, CreateRoomData{MinBid: 10, RequiredPlayers: 2})
	errData := readErrorWS(t, conn)
	assert.Equal(t, "not_authenticated", errData.Code)
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	_, ts := newWSServer(t)
	conn := dialWS(t, ts)
	authWS(t, conn, "alice")

	require.NoError(t, conn.WriteJSON(&Message{Type: "shuffle", Timestamp: time.Now()}))
	errData := readErrorWS(t, conn)
	assert.Equal(t, "unknown_message_type", errData.Code)
}

func TestWebSocketJoinUnknownRoom(t *testing.T) {
	_, ts := newWSServer(t)
	conn := dialWS(t, ts)
	authWS(t, conn, "alice")

	sendWS(t, conn, MessageTypeJoinRoom, JoinRoomData{RoomID: "no-such-room"})
	errData := readErrorWS(t, conn)
	assert.Equal(t, "room_not_found", errData.Code)
}

func TestWebSocketListRooms(t *testing.T) {
	_, ts := newWSServer(t)
	conn := dialWS(t, ts)
	authWS(t, conn, "carol")

	sendWS(t, conn, MessageTypeListRooms, struct{}{})
	msg := readWS(t, conn)
	require.Equal(t, MessageTypeRoomList, msg.Type)
	var empty RoomListData
	require.NoError(t, json.Unmarshal(msg.Data, &empty))
	assert.Empty(t, empty.Rooms)

	sendWS(t, conn, MessageTypeCreateRoom, CreateRoomData{MinBid: 25, RequiredPlayers: 3})
	created := readWS(t, conn)
	require.Equal(t, MessageTypeRoomCreated, created.Type)

	sendWS(t, conn, MessageTypeListRooms, struct{}{})
	msg = readWS(t, conn)
	require.Equal(t, MessageTypeRoomList, msg.Type)
	var listed RoomListData
	require.NoError(t, json.Unmarshal(msg.Data, &listed))
	require.Len(t, listed.Rooms, 1)
	assert.Equal(t, game.PhaseCreated.String(), listed.Rooms[0].Phase)
	assert.Equal(t, int64(25), listed.Rooms[0].MinBid)
	assert.Equal(t, 3, listed.Rooms[0].RequiredPlayers)
}

// TestWebSocketFullGame drives a two player game end to end over the
// wire and checks the exact message order each connection observes.
// Events are broadcast to the room while an operation runs, so a
// joiner's own seat event lands before the direct response when the
// connection already follows the room.
func TestWebSocketFullGame(t *testing.T) {
	srv, ts := newWSServer(t)

	alice := dialWS(t, ts)
	bob := dialWS(t, ts)
	authWS(t, alice, "alice")
	authWS(t, bob, "bob")

	// Creating a room does not take a seat. The creator starts
	// following the room only after the create returns, so the
	// room_created event is not echoed back.
	sendWS(t, alice, MessageTypeCreateRoom, CreateRoomData{MinBid: 10, RequiredPlayers: 2})
	created := readWS(t, alice)
	require.Equal(t, MessageTypeRoomCreated, created.Type)
	var createdState RoomStateData
	require.NoError(t, json.Unmarshal(created.Data, &createdState))
	roomID := createdState.RoomID
	require.NotEmpty(t, roomID)
	assert.Equal(t, game.PhaseCreated.String(), createdState.Phase)
	assert.Equal(t, "alice", createdState.Creator)
	assert.Empty(t, createdState.Players)

	// The creator takes seat one. Her own player_joined event is
	// queued during the join, ahead of the room_joined response.
	sendWS(t, alice, MessageTypeJoinRoom, JoinRoomData{RoomID: roomID})
	readEventWS(t, alice, game.EventTypePlayerJoined)
	joined := readWS(t, alice)
	require.Equal(t, MessageTypeRoomJoined, joined.Type)
	var aliceSeat RoomJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &aliceSeat))
	assert.Equal(t, 1, aliceSeat.SerialNumber)
	assert.GreaterOrEqual(t, aliceSeat.Secret, game.SecretMin)
	assert.LessOrEqual(t, aliceSeat.Secret, game.SecretMax)

	// Bob was not following the room when his seat event fired, so he
	// sees only the direct response. Alice sees the event.
	sendWS(t, bob, MessageTypeJoinRoom, JoinRoomData{RoomID: roomID})
	bobJoined := readWS(t, bob)
	require.Equal(t, MessageTypeRoomJoined, bobJoined.Type)
	var bobSeat RoomJoinedData
	require.NoError(t, json.Unmarshal(bobJoined.Data, &bobSeat))
	assert.Equal(t, 2, bobSeat.SerialNumber)
	assert.Equal(t, game.PhaseWaiting.String(), bobSeat.State.Phase)
	readEventWS(t, alice, game.EventTypePlayerJoined)

	assert.ElementsMatch(t, []string{"alice", "bob"}, srv.GetRoomPlayers(roomID))
	assert.ElementsMatch(t, []string{"alice", "bob"}, srv.GetConnectedPlayers())

	// Only the creator may start.
	sendWS(t, bob, MessageTypeStartGame, StartGameData{RoomID: roomID})
	rejection := readErrorWS(t, bob)
	assert.Equal(t, "not_authorized", rejection.Code)

	sendWS(t, alice, MessageTypeStartGame, StartGameData{RoomID: roomID})
	started := readEventWS(t, alice, game.EventTypeGameStarted)
	readEventWS(t, bob, game.EventTypeGameStarted)

	var startPayload GameStartedData
	require.NoError(t, json.Unmarshal(started.Payload, &startPayload))
	assert.Equal(t, "alice", startPayload.FirstTurn)
	assert.Equal(t, 2, startPayload.PlayerCount)

	// Bidding out of turn is refused before any money moves.
	sendWS(t, bob, MessageTypePlaceBid, PlaceBidData{RoomID: roomID, Digit: 3, Quantity: 1, Stake: 10})
	outOfTurn := readErrorWS(t, bob)
	assert.Equal(t, "not_your_turn", outOfTurn.Code)

	sendWS(t, alice, MessageTypePlaceBid, PlaceBidData{RoomID: roomID, Digit: 5, Quantity: 2, Stake: 10})
	bid := readEventWS(t, alice, game.EventTypeBidPlaced)
	readEventWS(t, bob, game.EventTypeBidPlaced)

	var bidPayload BidPlacedData
	require.NoError(t, json.Unmarshal(bid.Payload, &bidPayload))
	assert.Equal(t, "alice", bidPayload.Bidder)
	assert.Equal(t, 5, bidPayload.Digit)
	assert.Equal(t, 2, bidPayload.Quantity)
	assert.Equal(t, "bob", bidPayload.NextTurn)
	assert.Equal(t, int64(10), bidPayload.PrizePool)

	sendWS(t, bob, MessageTypeChallenge, ChallengeData{RoomID: roomID})
	called := readEventWS(t, alice, game.EventTypeLiarCalled)
	readEventWS(t, bob, game.EventTypeLiarCalled)

	var callPayload LiarCalledData
	require.NoError(t, json.Unmarshal(called.Payload, &callPayload))
	assert.Equal(t, "bob", callPayload.Caller)
	assert.Equal(t, "alice", callPayload.LastBidder)

	// Both reveal. The final reveal scores the bid and settles the
	// pool, so it is followed by game_ended.
	sendWS(t, alice, MessageTypeReveal, RevealData{RoomID: roomID})
	aliceReveal := readEventWS(t, alice, game.EventTypePlayerRevealed)
	readEventWS(t, bob, game.EventTypePlayerRevealed)

	var revealPayload PlayerRevealedData
	require.NoError(t, json.Unmarshal(aliceReveal.Payload, &revealPayload))
	assert.Equal(t, "alice", revealPayload.Player)
	assert.Equal(t, aliceSeat.Secret, revealPayload.Secret)
	assert.Equal(t, 1, revealPayload.Remaining)

	sendWS(t, bob, MessageTypeReveal, RevealData{RoomID: roomID})
	readEventWS(t, alice, game.EventTypePlayerRevealed)
	ended := readEventWS(t, alice, game.EventTypeGameEnded)
	readEventWS(t, bob, game.EventTypePlayerRevealed)
	readEventWS(t, bob, game.EventTypeGameEnded)

	var endPayload GameEndedData
	require.NoError(t, json.Unmarshal(ended.Payload, &endPayload))
	assert.Equal(t, int64(10), endPayload.PrizePool)
	assert.Contains(t, []string{"alice", "bob"}, endPayload.Winner)
	assert.GreaterOrEqual(t, endPayload.DigitCount, 0)

	// Completed rooms disclose every secret in the state view.
	sendWS(t, bob, MessageTypeRoomState, RoomStateRequestData{RoomID: roomID})
	stateMsg := readWS(t, bob)
	require.Equal(t, MessageTypeRoomState, stateMsg.Type)
	var state RoomStateData
	require.NoError(t, json.Unmarshal(stateMsg.Data, &state))
	assert.Equal(t, game.PhaseCompleted.String(), state.Phase)
	assert.Equal(t, endPayload.Winner, state.Winner)
	assert.Equal(t, int64(10), state.PrizePool)
	assert.Empty(t, state.CurrentTurn)
	require.Len(t, state.Players, 2)
	for _, p := range state.Players {
		assert.True(t, p.Revealed)
		assert.GreaterOrEqual(t, p.Secret, game.SecretMin)
		assert.LessOrEqual(t, p.Secret, game.SecretMax)
	}
}

func TestWebSocketCancelRefunds(t *testing.T) {
	_, ts := newWSServer(t)

	alice := dialWS(t, ts)
	bob := dialWS(t, ts)
	authWS(t, alice, "alice")
	authWS(t, bob, "bob")

	sendWS(t, alice, MessageTypeCreateRoom, CreateRoomData{MinBid: 10, RequiredPlayers: 2})
	created := readWS(t, alice)
	require.Equal(t, MessageTypeRoomCreated, created.Type)
	var createdState RoomStateData
	require.NoError(t, json.Unmarshal(created.Data, &createdState))
	roomID := createdState.RoomID

	sendWS(t, alice, MessageTypeJoinRoom, JoinRoomData{RoomID: roomID})
	readEventWS(t, alice, game.EventTypePlayerJoined)
	require.Equal(t, MessageTypeRoomJoined, readWS(t, alice).Type)

	sendWS(t, bob, MessageTypeJoinRoom, JoinRoomData{RoomID: roomID})
	require.Equal(t, MessageTypeRoomJoined, readWS(t, bob).Type)
	readEventWS(t, alice, game.EventTypePlayerJoined)

	sendWS(t, alice, MessageTypeStartGame, StartGameData{RoomID: roomID})
	readEventWS(t, alice, game.EventTypeGameStarted)
	readEventWS(t, bob, game.EventTypeGameStarted)

	sendWS(t, alice, MessageTypePlaceBid, PlaceBidData{RoomID: roomID, Digit: 7, Quantity: 1, Stake: 10})
	readEventWS(t, alice, game.EventTypeBidPlaced)
	readEventWS(t, bob, game.EventTypeBidPlaced)

	// Only the creator may cancel.
	sendWS(t, bob, MessageTypeCancelRoom, CancelRoomData{RoomID: roomID})
	rejection := readErrorWS(t, bob)
	assert.Equal(t, "not_authorized", rejection.Code)

	sendWS(t, alice, MessageTypeCancelRoom, CancelRoomData{RoomID: roomID})
	canceled := readEventWS(t, alice, game.EventTypeRoomCanceled)
	readEventWS(t, bob, game.EventTypeRoomCanceled)

	// Only alice staked anything, so hers is the only refund.
	var cancelPayload RoomCanceledData
	require.NoError(t, json.Unmarshal(canceled.Payload, &cancelPayload))
	assert.Equal(t, "alice", cancelPayload.Canceler)
	require.Len(t, cancelPayload.Refunds, 1)
	assert.Equal(t, "alice", cancelPayload.Refunds[0].Player)
	assert.Equal(t, int64(10), cancelPayload.Refunds[0].Amount)

	sendWS(t, bob, MessageTypeRoomState, RoomStateRequestData{RoomID: roomID})
	stateMsg := readWS(t, bob)
	require.Equal(t, MessageTypeRoomState, stateMsg.Type)
	var state RoomStateData
	require.NoError(t, json.Unmarshal(stateMsg.Data, &state))
	assert.Equal(t, game.PhaseCanceled.String(), state.Phase)
	assert.Zero(t, state.PrizePool)
	for _, p := range state.Players {
		assert.Zero(t, p.TotalStaked)
	}
}
