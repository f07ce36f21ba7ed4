package game

import "fmt"

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	Perspective ID // identity tagged with "(you)" when set
}

// EventFormatter provides centralized formatting for all room events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders an event as a single human-readable line. Unknown
// event types fall back to their type name.
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case RoomCreatedEvent:
		return fmt.Sprintf("room %s created by %s ($%d min bid, %d players to start)",
			e.RoomID, ef.name(e.Creator), e.MinBid, e.RequiredPlayers)
	case PlayerJoinedEvent:
		return fmt.Sprintf("%s joined as player #%d (%d seated)",
			ef.name(e.Player), e.Serial, e.PlayerCount)
	case GameStartedEvent:
		return fmt.Sprintf("game started with %d players, %s to act",
			e.PlayerCount, ef.name(e.FirstTurn))
	case BidPlacedEvent:
		return fmt.Sprintf("%s: claims %s for $%d (pool now: $%d), %s to act",
			ef.name(e.Bid.Bidder), claim(e.Bid), e.Bid.Stake, e.PrizePool, ef.name(e.NextTurn))
	case LiarCalledEvent:
		return fmt.Sprintf("%s: calls %s a liar, secrets must be revealed",
			ef.name(e.Caller), ef.name(e.LastBidder))
	case PlayerRevealedEvent:
		if e.Remaining > 0 {
			return fmt.Sprintf("%s: reveals %d (%d left to reveal)",
				ef.name(e.Player), e.Secret, e.Remaining)
		}
		return fmt.Sprintf("%s: reveals %d", ef.name(e.Player), e.Secret)
	case GameEndedEvent:
		return fmt.Sprintf("game over: %s wins $%d (true count was %d)",
			ef.name(e.Winner), e.PrizePool, e.DigitCount)
	case RoomCanceledEvent:
		return fmt.Sprintf("room canceled by %s, %d stakes refunded",
			ef.name(e.Canceler), len(e.Refunds))
	default:
		return event.EventType().String()
	}
}

// claim renders a bid's assertion, e.g. "at least 3 fives".
func claim(b Bid) string {
	nouns := [...]string{
		"zeros", "ones", "twos", "threes", "fours",
		"fives", "sixes", "sevens", "eights", "nines",
	}
	noun := nouns[b.Digit]
	if b.Quantity == 1 {
		noun = noun[:len(noun)-1]
		if b.Digit == 6 {
			noun = "six"
		}
	}
	return fmt.Sprintf("at least %d %s", b.Quantity, noun)
}

func (ef *EventFormatter) name(id ID) string {
	if ef.opts.Perspective != "" && id == ef.opts.Perspective {
		return string(id) + " (you)"
	}
	return string(id)
}
