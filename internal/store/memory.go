package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/lox/liarspoker/internal/game"
)

// Memory is an in-memory Store. It serves single-process deployments
// and tests; contents are lost on shutdown.
type Memory struct {
	mu     sync.RWMutex
	rooms  map[string]game.RoomSnapshot
	events map[string][]EventRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms:  make(map[string]game.RoomSnapshot),
		events: make(map[string][]EventRecord),
	}
}

func (m *Memory) SaveRoom(_ context.Context, snapshot game.RoomSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[snapshot.ID] = snapshot
	return nil
}

func (m *Memory) LoadRoom(_ context.Context, roomID string) (game.RoomSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.rooms[roomID]
	if !ok {
		return game.RoomSnapshot{}, ErrNotFound
	}
	return snapshot, nil
}

// ListRooms returns all rooms ordered by creation time, oldest first.
func (m *Memory) ListRooms(_ context.Context) ([]game.RoomSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rooms := make([]game.RoomSnapshot, 0, len(m.rooms))
	for _, snapshot := range m.rooms {
		rooms = append(rooms, snapshot)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (m *Memory) AppendEvent(_ context.Context, roomID string, event game.GameEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	log := m.events[roomID]
	m.events[roomID] = append(log, EventRecord{
		Seq:       len(log) + 1,
		RoomID:    roomID,
		Type:      string(event.EventType()),
		Payload:   payload,
		Timestamp: event.Timestamp(),
	})
	return nil
}

func (m *Memory) Events(_ context.Context, roomID string) ([]EventRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log := m.events[roomID]
	out := make([]EventRecord, len(log))
	copy(out, log)
	return out, nil
}

func (m *Memory) Close() error { return nil }
