// Package store persists rooms and their event logs. The engine treats
// persistence as a key-value capability with read-before-write and
// atomic commit per room; implementations cover in-memory serving and
// PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/liarspoker/internal/game"
)

// ErrNotFound is returned when no room exists under the requested id.
var ErrNotFound = errors.New("store: room not found")

// EventRecord is one entry in a room's append-only event log. Seq is
// the 1-based position within that room's log.
type EventRecord struct {
	Seq       int
	RoomID    string
	Type      string
	Payload   json.RawMessage
	Timestamp time.Time
}

// Store persists room snapshots keyed by room id, plus an append-only
// event log per room.
type Store interface {
	SaveRoom(ctx context.Context, snapshot game.RoomSnapshot) error
	LoadRoom(ctx context.Context, roomID string) (game.RoomSnapshot, error)
	ListRooms(ctx context.Context) ([]game.RoomSnapshot, error)
	AppendEvent(ctx context.Context, roomID string, event game.GameEvent) error
	Events(ctx context.Context, roomID string) ([]EventRecord, error)
	Close() error
}
