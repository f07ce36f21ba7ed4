package game

import (
	"testing"
	"time"
)

func TestEventBusPublishOrder(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	first := &eventCollector{}
	second := &eventCollector{}
	bus.Subscribe(first)
	bus.Subscribe(second)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bus.Publish(NewRoomCreatedEvent("room-1", "alice", 10, 2, at))
	bus.Publish(NewPlayerJoinedEvent("room-1", "alice", 1, 1, at))

	for _, c := range []*eventCollector{first, second} {
		if len(c.events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(c.events))
		}
		if c.events[0].EventType() != EventTypeRoomCreated {
			t.Errorf("Expected room_created first, got %s", c.events[0].EventType())
		}
		if c.events[1].EventType() != EventTypePlayerJoined {
			t.Errorf("Expected player_joined second, got %s", c.events[1].EventType())
		}
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	collector := &eventCollector{}
	bus.Subscribe(collector)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bus.Publish(NewGameStartedEvent("room-1", "alice", 2, at))
	bus.Unsubscribe(collector)
	bus.Publish(NewGameStartedEvent("room-1", "alice", 2, at))

	if len(collector.events) != 1 {
		t.Errorf("Expected 1 event after unsubscribe, got %d", len(collector.events))
	}
}

func TestEventFormatterFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		opts     FormattingOptions
		event    GameEvent
		expected string
	}{
		{
			name:     "room created",
			opts:     FormattingOptions{},
			event:    NewRoomCreatedEvent("room-1", "alice", 10, 2, at),
			expected: "room room-1 created by alice ($10 min bid, 2 players to start)",
		},
		{
			name:     "player joined",
			opts:     FormattingOptions{},
			event:    NewPlayerJoinedEvent("room-1", "bob", 2, 2, at),
			expected: "bob joined as player #2 (2 seated)",
		},
		{
			name:     "bid placed from own perspective",
			opts:     FormattingOptions{Perspective: "alice"},
			event:    NewBidPlacedEvent("room-1", Bid{Bidder: "alice", Digit: 5, Quantity: 3, Stake: 10}, "bob", 30, at),
			expected: "alice (you): claims at least 3 fives for $10 (pool now: $30), bob to act",
		},
		{
			name:     "singular claim",
			opts:     FormattingOptions{},
			event:    NewBidPlacedEvent("room-1", Bid{Bidder: "alice", Digit: 6, Quantity: 1, Stake: 10}, "bob", 10, at),
			expected: "alice: claims at least 1 six for $10 (pool now: $10), bob to act",
		},
		{
			name:     "liar called",
			opts:     FormattingOptions{},
			event:    NewLiarCalledEvent("room-1", "bob", "alice", at),
			expected: "bob: calls alice a liar, secrets must be revealed",
		},
		{
			name:     "reveal with players remaining",
			opts:     FormattingOptions{},
			event:    NewPlayerRevealedEvent("room-1", "alice", 55555, 1, at),
			expected: "alice: reveals 55555 (1 left to reveal)",
		},
		{
			name:     "final reveal",
			opts:     FormattingOptions{},
			event:    NewPlayerRevealedEvent("room-1", "bob", 51234, 0, at),
			expected: "bob: reveals 51234",
		},
		{
			name:     "game ended",
			opts:     FormattingOptions{Perspective: "alice"},
			event:    NewGameEndedEvent("room-1", "alice", 20, 6, at),
			expected: "game over: alice (you) wins $20 (true count was 6)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewEventFormatter(tt.opts)
			if got := formatter.Format(tt.event); got != tt.expected {
				t.Errorf("Format() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestEventTimestampsFlowThrough(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	events := []GameEvent{
		NewRoomCreatedEvent("room-1", "alice", 10, 2, at),
		NewPlayerJoinedEvent("room-1", "bob", 2, 2, at),
		NewGameStartedEvent("room-1", "alice", 2, at),
		NewBidPlacedEvent("room-1", Bid{Bidder: "alice", Digit: 5, Quantity: 1, Stake: 10}, "bob", 10, at),
		NewLiarCalledEvent("room-1", "bob", "alice", at),
		NewPlayerRevealedEvent("room-1", "alice", 55555, 1, at),
		NewGameEndedEvent("room-1", "alice", 20, 6, at),
		NewRoomCanceledEvent("room-1", "alice", nil, at),
	}

	wantTypes := []EventType{
		EventTypeRoomCreated,
		EventTypePlayerJoined,
		EventTypeGameStarted,
		EventTypeBidPlaced,
		EventTypeLiarCalled,
		EventTypePlayerRevealed,
		EventTypeGameEnded,
		EventTypeRoomCanceled,
	}

	for i, ev := range events {
		if ev.EventType() != wantTypes[i] {
			t.Errorf("Expected event type %s, got %s", wantTypes[i], ev.EventType())
		}
		if !ev.Timestamp().Equal(at) {
			t.Errorf("Expected timestamp %v for %s, got %v", at, ev.EventType(), ev.Timestamp())
		}
	}
}
