package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/liarspoker/internal/fileutil"
	"github.com/lox/liarspoker/internal/game"
	"github.com/lox/liarspoker/internal/store"
)

// errRoomNotFound maps to the wire code "room_not_found".
var errRoomNotFound = errors.New("room not found")

// roomEntry pairs a room with the mutex serializing its operations.
// Distinct rooms proceed concurrently; one room's operations are
// strictly ordered, which is the isolation the engine assumes.
type roomEntry struct {
	mu   sync.Mutex
	room *game.Room
}

// RoomService owns the rooms served by this process. It drives the
// engine, persists snapshots and the event log through the store, and
// relays engine events to connected clients as broadcasts.
type RoomService struct {
	server    *Server
	manager   *game.Manager
	store     store.Store
	formatter *game.EventFormatter
	logger    *log.Logger

	// transcriptDir, when set, receives a plain-text game transcript
	// per room once the room reaches a terminal phase.
	transcriptDir string

	mu    sync.RWMutex
	rooms map[string]*roomEntry

	tmu         sync.Mutex
	transcripts map[string][]string
}

// NewRoomService creates a room service wired to the given engine and
// store. server may be nil when no broadcasting is wanted (tests, the
// simulator).
func NewRoomService(server *Server, manager *game.Manager, st store.Store, transcriptDir string, logger *log.Logger) *RoomService {
	svc := &RoomService{
		server:        server,
		manager:       manager,
		store:         st,
		formatter:     game.NewEventFormatter(game.FormattingOptions{}),
		logger:        logger.WithPrefix("room-service"),
		transcriptDir: transcriptDir,
		rooms:         make(map[string]*roomEntry),
		transcripts:   make(map[string][]string),
	}

	// Engine events arrive synchronously on the goroutine running the
	// operation, so relay work is ordered per room.
	manager.Events().Subscribe(svc)

	return svc
}

// OnEvent implements game.EventSubscriber. Every engine event is
// appended to the store's event log, added to the room transcript, and
// broadcast to the room's connections.
func (s *RoomService) OnEvent(event game.GameEvent) {
	data, err := EventDataFromGame(event)
	if err != nil {
		s.logger.Error("Failed to convert engine event", "error", err)
		return
	}

	if err := s.store.AppendEvent(context.Background(), data.RoomID, event); err != nil {
		s.logger.Error("Failed to persist event", "error", err, "room", data.RoomID, "event", data.Event)
	}

	s.appendTranscript(data.RoomID, s.formatter.Format(event))

	if s.server != nil {
		msg, err := NewMessage(MessageTypeEvent, data)
		if err != nil {
			s.logger.Error("Failed to create event message", "error", err)
			return
		}
		s.server.BroadcastToRoom(data.RoomID, msg)
	}

	switch event.(type) {
	case game.GameEndedEvent, game.RoomCanceledEvent:
		s.exportTranscript(data.RoomID)
	}
}

// CreateRoom creates a room and registers it with the service.
func (s *RoomService) CreateRoom(ctx context.Context, creator game.ID, minBid int64, requiredPlayers int) (game.RoomSnapshot, error) {
	room, err := s.manager.CreateRoom(creator, minBid, requiredPlayers)
	if err != nil {
		return game.RoomSnapshot{}, err
	}

	s.mu.Lock()
	s.rooms[room.ID] = &roomEntry{room: room}
	s.mu.Unlock()

	snapshot := room.Snapshot()
	s.saveRoom(ctx, snapshot)

	s.logger.Info("Room created", "room", room.ID, "creator", creator,
		"minBid", minBid, "requiredPlayers", requiredPlayers)

	return snapshot, nil
}

// JoinRoom joins a player and returns their serial number and secret
// along with the updated snapshot.
func (s *RoomService) JoinRoom(ctx context.Context, roomID string, player game.ID) (int, int, game.RoomSnapshot, error) {
	var serial, secret int
	snapshot, err := s.withRoom(roomID, func(room *game.Room) error {
		n, err := s.manager.JoinRoom(room, player)
		if err != nil {
			return err
		}
		serial = n
		p, _ := room.Player(player)
		secret = p.Secret
		return nil
	})
	if err != nil {
		return 0, 0, game.RoomSnapshot{}, err
	}

	s.saveRoom(ctx, snapshot)
	return serial, secret, snapshot, nil
}

func (s *RoomService) StartGame(ctx context.Context, roomID string, caller game.ID) (game.RoomSnapshot, error) {
	snapshot, err := s.withRoom(roomID, func(room *game.Room) error {
		return s.manager.StartGame(room, caller)
	})
	if err != nil {
		return game.RoomSnapshot{}, err
	}

	s.saveRoom(ctx, snapshot)
	return snapshot, nil
}

func (s *RoomService) PlaceBid(ctx context.Context, roomID string, player game.ID, digit, quantity int, stake int64) (game.RoomSnapshot, error) {
	snapshot, err := s.withRoom(roomID, func(room *game.Room) error {
		return s.manager.PlaceBid(room, player, digit, quantity, stake)
	})
	if err != nil {
		return game.RoomSnapshot{}, err
	}

	s.saveRoom(ctx, snapshot)
	return snapshot, nil
}

func (s *RoomService) Challenge(ctx context.Context, roomID string, player game.ID) (game.RoomSnapshot, error) {
	snapshot, err := s.withRoom(roomID, func(room *game.Room) error {
		return s.manager.Challenge(room, player)
	})
	if err != nil {
		return game.RoomSnapshot{}, err
	}

	s.saveRoom(ctx, snapshot)
	return snapshot, nil
}

func (s *RoomService) Reveal(ctx context.Context, roomID string, player game.ID) (game.RoomSnapshot, error) {
	snapshot, err := s.withRoom(roomID, func(room *game.Room) error {
		return s.manager.Reveal(room, player)
	})
	if err != nil {
		return game.RoomSnapshot{}, err
	}

	s.saveRoom(ctx, snapshot)
	return snapshot, nil
}

func (s *RoomService) CancelRoom(ctx context.Context, roomID string, caller game.ID) (game.RoomSnapshot, error) {
	snapshot, err := s.withRoom(roomID, func(room *game.Room) error {
		return s.manager.CancelRoom(room, caller)
	})
	if err != nil {
		return game.RoomSnapshot{}, err
	}

	s.saveRoom(ctx, snapshot)
	return snapshot, nil
}

// RoomState returns the current snapshot of a room.
func (s *RoomService) RoomState(roomID string) (game.RoomSnapshot, error) {
	return s.withRoom(roomID, func(*game.Room) error { return nil })
}

// ListRooms returns summaries of all rooms, oldest first.
func (s *RoomService) ListRooms() []RoomInfo {
	s.mu.RLock()
	entries := make([]*roomEntry, 0, len(s.rooms))
	for _, entry := range s.rooms {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	rooms := make([]RoomInfo, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		rooms = append(rooms, RoomInfoFromSnapshot(entry.room.Snapshot()))
		entry.mu.Unlock()
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// Restore loads non-terminal rooms from the store, so a restarted
// server resumes serving games in flight. Returns the number restored.
func (s *RoomService) Restore(ctx context.Context) (int, error) {
	snapshots, err := s.store.ListRooms(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, snapshot := range snapshots {
		if snapshot.Phase.Terminal() {
			continue
		}
		if _, ok := s.rooms[snapshot.ID]; ok {
			continue
		}
		s.rooms[snapshot.ID] = &roomEntry{room: game.RestoreRoom(snapshot)}
		restored++
	}

	if restored > 0 {
		s.logger.Info("Restored rooms from store", "count", restored)
	}
	return restored, nil
}

// Provision creates the rooms declared in the server config.
func (s *RoomService) Provision(ctx context.Context, rooms []RoomConfig) error {
	for _, rc := range rooms {
		snapshot, err := s.CreateRoom(ctx, game.ID(rc.Creator), rc.MinBid, rc.RequiredPlayers)
		if err != nil {
			return fmt.Errorf("provision room %q: %w", rc.Name, err)
		}
		s.logger.Info("Provisioned room", "name", rc.Name, "room", snapshot.ID)
	}
	return nil
}

// withRoom runs fn with the room locked and returns the resulting
// snapshot. A nil-op fn makes this a plain snapshot read.
func (s *RoomService) withRoom(roomID string, fn func(*game.Room) error) (game.RoomSnapshot, error) {
	s.mu.RLock()
	entry, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return game.RoomSnapshot{}, errRoomNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(entry.room); err != nil {
		return game.RoomSnapshot{}, err
	}
	return entry.room.Snapshot(), nil
}

// saveRoom persists a snapshot. The engine remains the source of truth,
// so persistence failures are logged rather than failing the operation.
func (s *RoomService) saveRoom(ctx context.Context, snapshot game.RoomSnapshot) {
	if err := s.store.SaveRoom(ctx, snapshot); err != nil {
		s.logger.Error("Failed to persist room", "error", err, "room", snapshot.ID)
	}
}

func (s *RoomService) appendTranscript(roomID, line string) {
	s.tmu.Lock()
	defer s.tmu.Unlock()
	s.transcripts[roomID] = append(s.transcripts[roomID], line)
}

// exportTranscript writes the room's transcript to transcriptDir once
// the room is finished. The write is atomic so readers never observe a
// partial transcript.
func (s *RoomService) exportTranscript(roomID string) {
	if s.transcriptDir == "" {
		return
	}

	s.tmu.Lock()
	lines := s.transcripts[roomID]
	delete(s.transcripts, roomID)
	s.tmu.Unlock()

	if len(lines) == 0 {
		return
	}

	path := filepath.Join(s.transcriptDir, roomID+".log")
	data := []byte(strings.Join(lines, "\n") + "\n")
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		s.logger.Error("Failed to write transcript", "error", err, "room", roomID)
		return
	}

	s.logger.Info("Wrote game transcript", "room", roomID, "path", path)
}
