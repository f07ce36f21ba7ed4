package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lox/liarspoker/internal/game"
)

// roomRow holds one room snapshot. The full aggregate lives in the
// jsonb column; phase is lifted out so operators can filter rooms
// without unpacking payloads.
type roomRow struct {
	RoomID    string         `gorm:"primaryKey;size:32"`
	Phase     string         `gorm:"size:32;not null;index"`
	Snapshot  datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (roomRow) TableName() string { return "rooms" }

// eventRow is one append-only event log entry.
type eventRow struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    string         `gorm:"size:32;not null;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (eventRow) TableName() string { return "room_events" }

// Postgres is a Store backed by PostgreSQL.
type Postgres struct {
	conn *gorm.DB
}

// OpenPostgres connects using the DATABASE_URL environment variable
// and migrates the schema.
func OpenPostgres() (*Postgres, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("store: DATABASE_URL environment variable not set")
	}
	return OpenPostgresDSN(dsn)
}

// OpenPostgresDSN connects to the given DSN and migrates the schema.
func OpenPostgresDSN(dsn string) (*Postgres, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := conn.AutoMigrate(&roomRow{}, &eventRow{}); err != nil {
		return nil, err
	}
	return &Postgres{conn: conn}, nil
}

func (s *Postgres) SaveRoom(ctx context.Context, snapshot game.RoomSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	row := roomRow{
		RoomID:   snapshot.ID,
		Phase:    snapshot.Phase.String(),
		Snapshot: datatypes.JSON(payload),
	}
	return s.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phase", "snapshot", "updated_at"}),
	}).Create(&row).Error
}

func (s *Postgres) LoadRoom(ctx context.Context, roomID string) (game.RoomSnapshot, error) {
	var row roomRow
	err := s.conn.WithContext(ctx).First(&row, "room_id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.RoomSnapshot{}, ErrNotFound
	}
	if err != nil {
		return game.RoomSnapshot{}, err
	}
	return decodeSnapshot(row.Snapshot)
}

func (s *Postgres) ListRooms(ctx context.Context) ([]game.RoomSnapshot, error) {
	var rows []roomRow
	if err := s.conn.WithContext(ctx).Order("created_at, room_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	rooms := make([]game.RoomSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := decodeSnapshot(row.Snapshot)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, snapshot)
	}
	return rooms, nil
}

func (s *Postgres) AppendEvent(ctx context.Context, roomID string, event game.GameEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := eventRow{
		RoomID:    roomID,
		Type:      string(event.EventType()),
		Payload:   datatypes.JSON(payload),
		CreatedAt: event.Timestamp(),
	}
	return s.conn.WithContext(ctx).Create(&row).Error
}

func (s *Postgres) Events(ctx context.Context, roomID string) ([]EventRecord, error) {
	var rows []eventRow
	if err := s.conn.WithContext(ctx).Where("room_id = ?", roomID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]EventRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, EventRecord{
			Seq:       i + 1,
			RoomID:    row.RoomID,
			Type:      row.Type,
			Payload:   json.RawMessage(row.Payload),
			Timestamp: row.CreatedAt,
		})
	}
	return records, nil
}

func (s *Postgres) Close() error {
	db, err := s.conn.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func decodeSnapshot(payload datatypes.JSON) (game.RoomSnapshot, error) {
	var snapshot game.RoomSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return game.RoomSnapshot{}, err
	}
	return snapshot, nil
}
