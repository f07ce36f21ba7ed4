package game

import "time"

// Bid is a claim that at least Quantity occurrences of Digit exist
// across the decimal digits of all secrets in the room, backed by
// Stake. Bids are value objects: an accepted bid replaces the standing
// bid wholesale.
type Bid struct {
	Bidder   ID
	Digit    int
	Quantity int
	Stake    int64
	PlacedAt time.Time
}

// Beats reports whether b escalates prev. A bid escalates when its
// quantity strictly increases, when its digit strictly increases at
// equal quantity, or when its stake strictly increases. The three arms
// are independent: a bid with a higher stake escalates even if it names
// a lower digit and quantity.
func (b Bid) Beats(prev Bid) bool {
	if b.Quantity > prev.Quantity {
		return true
	}
	if b.Quantity == prev.Quantity && b.Digit > prev.Digit {
		return true
	}
	return b.Stake > prev.Stake
}
