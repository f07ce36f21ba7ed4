package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarspoker/internal/game"
)

func snapshotFixture(id string, createdAt time.Time) game.RoomSnapshot {
	return game.RoomSnapshot{
		ID:              id,
		Creator:         "alice",
		Phase:           game.PhaseWaiting,
		MinBid:          10,
		RequiredPlayers: 2,
		Seed:            42,
		CreatedAt:       createdAt,
		Players: []game.Player{
			{ID: "alice", Secret: 15253, Serial: 1, TotalStaked: 10, Active: true, JoinedAt: createdAt},
			{ID: "bob", Secret: 46788, Serial: 2, TotalStaked: 10, Active: true, JoinedAt: createdAt},
		},
		PrizePool: 20,
		PoolAdded: 20,
	}
}

func TestMemorySaveLoadRoom(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()
	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	snapshot := snapshotFixture("room-0001", createdAt)
	require.NoError(t, s.SaveRoom(ctx, snapshot))

	loaded, err := s.LoadRoom(ctx, "room-0001")
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)

	// Saving again under the same id replaces the stored snapshot.
	snapshot.Phase = game.PhaseInProgress
	snapshot.CurrentTurn = "alice"
	require.NoError(t, s.SaveRoom(ctx, snapshot))

	loaded, err = s.LoadRoom(ctx, "room-0001")
	require.NoError(t, err)
	assert.Equal(t, game.PhaseInProgress, loaded.Phase)
	assert.Equal(t, game.ID("alice"), loaded.CurrentTurn)
}

func TestMemoryLoadMissingRoom(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	_, err := s.LoadRoom(context.Background(), "room-9999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListRoomsOrderedByCreation(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRoom(ctx, snapshotFixture("room-0003", base.Add(2*time.Minute))))
	require.NoError(t, s.SaveRoom(ctx, snapshotFixture("room-0001", base)))
	require.NoError(t, s.SaveRoom(ctx, snapshotFixture("room-0002", base.Add(time.Minute))))

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "room-0001", rooms[0].ID)
	assert.Equal(t, "room-0002", rooms[1].ID)
	assert.Equal(t, "room-0003", rooms[2].ID)
}

func TestMemoryEventLogAppendsInOrder(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendEvent(ctx, "room-0001", game.NewRoomCreatedEvent("room-0001", "alice", 10, 2, base)))
	require.NoError(t, s.AppendEvent(ctx, "room-0001", game.NewPlayerJoinedEvent("room-0001", "alice", 1, 1, base.Add(time.Second))))
	require.NoError(t, s.AppendEvent(ctx, "room-0001", game.NewPlayerJoinedEvent("room-0001", "bob", 2, 2, base.Add(2*time.Second))))

	// Events for another room stay in their own log.
	require.NoError(t, s.AppendEvent(ctx, "room-0002", game.NewRoomCreatedEvent("room-0002", "carol", 5, 3, base)))

	records, err := s.Events(ctx, "room-0001")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 1, records[0].Seq)
	assert.Equal(t, "room_created", records[0].Type)
	assert.Equal(t, base, records[0].Timestamp)

	assert.Equal(t, 2, records[1].Seq)
	assert.Equal(t, "player_joined", records[1].Type)

	assert.Equal(t, 3, records[2].Seq)
	assert.Equal(t, "player_joined", records[2].Type)
	assert.JSONEq(t, `{"RoomID":"room-0001","Player":"bob","Serial":2,"PlayerCount":2}`, string(records[2].Payload))
}

func TestMemoryEventsForUnknownRoom(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	records, err := s.Events(context.Background(), "room-0404")
	require.NoError(t, err)
	assert.Empty(t, records)
}
