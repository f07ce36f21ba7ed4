package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoomResult represents the outcome of a single simulated game
type RoomResult struct {
	Seed          int64 // RNG seed for this room (for replay)
	Players       int   // players seated
	Bids          int   // accepted bids before the challenge
	PrizePool     int64 // pool settled to the winner
	WinnerSerial  int   // winner's seat serial (1-based join ordinal)
	ChallengerWon bool  // true digit count fell short of the claim
	Canceled      bool  // room canceled before completion
	Refunded      int64 // stakes returned on cancelation
}

// SeatStats tracks wins credited to a specific seat serial
type SeatStats struct {
	Wins int
}

// Statistics tracks aggregate outcomes across simulated games. The
// distribution helpers (mean, median, percentiles) all describe
// auction length: accepted bids per completed game.
type Statistics struct {
	Rooms    int
	Canceled int
	Bids     int       // total accepted bids across completed games
	SumBids  float64
	SumBids2 float64   // Sum of squares for variance calculation
	Values   []float64 // bids per completed game, for median/percentiles

	ChallengerWins int // challenger took the pool
	BidderWins     int // the final claim held up

	PoolTotal   int64 // stakes settled across completed games
	PoolMax     int64 // largest settled pool
	BidsMax     int   // longest auction observed
	RefundTotal int64 // stakes returned by canceled rooms

	// Seat analytics: does join order bias who wins?
	SeatResults [7]SeatStats // Index 0 unused, 1-6 for seat serials
}

// Completed returns the number of games that reached settlement
func (s *Statistics) Completed() int {
	return s.Rooms - s.Canceled
}

// Mean returns the arithmetic mean auction length in bids per game
func (s *Statistics) Mean() float64 {
	n := s.Completed()
	if n == 0 {
		return 0
	}
	return s.SumBids / float64(n)
}

// Variance returns the sample variance of auction length
func (s *Statistics) Variance() float64 {
	n := s.Completed()
	if n < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBids2 - float64(n)*mean*mean) / float64(n-1)
}

// StdDev returns the sample standard deviation of auction length
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	n := s.Completed()
	if n == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(n))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	se := s.StdError()
	margin := 1.96 * se // 95% confidence
	return mean - margin, mean + margin
}

// Add incorporates a new room result into the statistics
func (s *Statistics) Add(result RoomResult) {
	s.Rooms++

	if result.Canceled {
		s.Canceled++
		s.RefundTotal += result.Refunded
		return
	}

	bids := float64(result.Bids)
	s.Bids += result.Bids
	s.SumBids += bids
	s.SumBids2 += bids * bids
	s.Values = append(s.Values, bids)

	if result.ChallengerWon {
		s.ChallengerWins++
	} else {
		s.BidderWins++
	}

	s.PoolTotal += result.PrizePool
	if result.PrizePool > s.PoolMax {
		s.PoolMax = result.PrizePool
	}
	if result.Bids > s.BidsMax {
		s.BidsMax = result.Bids
	}

	serial := result.WinnerSerial
	if serial >= 1 && serial <= 6 {
		s.SeatResults[serial].Wins++
	}
}

// Median returns the median auction length
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the auction length at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SeatWinRate returns the share of completed games won from a seat (1-6)
func (s *Statistics) SeatWinRate(serial int) float64 {
	if serial < 1 || serial > 6 {
		return 0
	}
	completed := s.Completed()
	if completed == 0 {
		return 0
	}
	return float64(s.SeatResults[serial].Wins) / float64(completed)
}

// IsLedgerBalanced checks if the bid accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumBids-float64(s.Bids)) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if s.Rooms <= 0 {
		return fmt.Errorf("invalid room count: %d", s.Rooms)
	}

	completed := s.Completed()
	if len(s.Values) != completed {
		return fmt.Errorf("values array length (%d) does not match completed count (%d)",
			len(s.Values), completed)
	}

	if !s.IsLedgerBalanced() {
		return fmt.Errorf("bid ledger mismatch: SumBids=%.6f, Bids=%d", s.SumBids, s.Bids)
	}

	outcomes := s.ChallengerWins + s.BidderWins
	if outcomes != completed {
		return fmt.Errorf("outcome split (%d challenger + %d bidder) does not match completed count (%d)",
			s.ChallengerWins, s.BidderWins, completed)
	}

	seatWins := 0
	for serial := 1; serial <= 6; serial++ {
		seatWins += s.SeatResults[serial].Wins
	}
	if seatWins != completed {
		return fmt.Errorf("seat wins total (%d) does not match completed count (%d)",
			seatWins, completed)
	}

	return nil
}
