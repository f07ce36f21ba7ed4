// Package simulator plays complete scripted games against the engine
// to shake out accounting drift and nontermination under concurrent
// load. Every decision draws from a per-room RNG, so a run replays
// exactly from its master seed.
package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/liarspoker/internal/game"
	"github.com/lox/liarspoker/internal/randutil"
	"github.com/lox/liarspoker/internal/statistics"
)

// maxAuctionBids forces a challenge once an auction runs this long, so
// every scripted game terminates.
const maxAuctionBids = 24

// Config holds configuration for running simulations
type Config struct {
	Rooms   int           // rooms to play to completion
	Players int           // players seated per room, 2 to game.MaxPlayers
	MinBid  int64         // minimum stake per bid
	Seed    int64         // master seed; per-room seeds derive from it
	Workers int           // concurrent rooms; 0 means NumCPU capped at 8
	Timeout time.Duration // per-room watchdog; 0 means 30s
	Logger  *log.Logger
}

// Simulator plays scripted games through the engine
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	return &Simulator{config: config}
}

// Run executes the simulation and returns aggregate results. Results
// are identical for a given seed regardless of worker count: each room
// derives its own seed from the master seed, plays on its own manager,
// and lands in a fixed slot of the result set.
func (s *Simulator) Run() (*statistics.Statistics, error) {
	if s.config.Rooms <= 0 {
		return nil, fmt.Errorf("room count must be positive, got %d", s.config.Rooms)
	}
	if s.config.Players < 2 || s.config.Players > game.MaxPlayers {
		return nil, fmt.Errorf("players per room must be 2 to %d, got %d", game.MaxPlayers, s.config.Players)
	}
	if s.config.MinBid <= 0 {
		return nil, fmt.Errorf("minimum bid must be positive, got %d", s.config.MinBid)
	}

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}

	results := make([]statistics.RoomResult, s.config.Rooms)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for i := range results {
		roomSeed := randutil.Derive(s.config.Seed, int64(i))
		g.Go(func() error {
			result, err := s.playRoomWithTimeout(ctx, roomSeed)
			if err != nil {
				return fmt.Errorf("room %d (seed %d): %w", i, roomSeed, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, result := range results {
		stats.Add(result)
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	return stats, nil
}

// playRoomWithTimeout runs a single room with hang protection
func (s *Simulator) playRoomWithTimeout(ctx context.Context, seed int64) (statistics.RoomResult, error) {
	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan statistics.RoomResult, 1)
	errorCh := make(chan error, 1)

	go func() {
		result, err := s.playRoom(seed)
		if err != nil {
			errorCh <- err
			return
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result, nil
	case err := <-errorCh:
		return statistics.RoomResult{}, err
	case <-ctx.Done():
		return statistics.RoomResult{}, fmt.Errorf("room hung after %v: %w", timeout, ctx.Err())
	}
}

// playRoom scripts one complete game: create, seat everyone, start,
// escalate until somebody calls liar, reveal, settle. The pool audit
// runs after every operation.
func (s *Simulator) playRoom(seed int64) (statistics.RoomResult, error) {
	rng := randutil.New(seed)
	manager := game.NewManager(game.WithSeed(seed))

	players := make([]game.ID, s.config.Players)
	for i := range players {
		players[i] = game.ID(fmt.Sprintf("sim-%d", i+1))
	}
	creator := players[0]

	room, err := manager.CreateRoom(creator, s.config.MinBid, s.config.Players)
	if err != nil {
		return statistics.RoomResult{}, err
	}

	for _, player := range players {
		if _, err := manager.JoinRoom(room, player); err != nil {
			return statistics.RoomResult{}, fmt.Errorf("join %s: %w", player, err)
		}
		if err := auditPool(room); err != nil {
			return statistics.RoomResult{}, err
		}
	}

	if err := manager.StartGame(room, creator); err != nil {
		return statistics.RoomResult{}, err
	}

	result := statistics.RoomResult{Seed: seed, Players: s.config.Players}

	for !room.Phase.Terminal() {
		if err := s.stepRoom(room, manager, rng, &result); err != nil {
			return statistics.RoomResult{}, err
		}
		if err := auditPool(room); err != nil {
			return statistics.RoomResult{}, err
		}
	}

	if result.Canceled {
		return result, nil
	}

	snapshot := room.Snapshot()
	result.PrizePool = snapshot.PrizePool
	result.ChallengerWon = snapshot.Winner == snapshot.Challenger
	for _, p := range snapshot.Players {
		if p.ID == snapshot.Winner {
			result.WinnerSerial = p.Serial
		}
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("room complete",
			"room", room.ID, "seed", seed, "bids", result.Bids,
			"winner", snapshot.Winner, "pool", result.PrizePool)
	}
	return result, nil
}

// stepRoom advances the room by one scripted action
func (s *Simulator) stepRoom(room *game.Room, manager *game.Manager, rng *rand.Rand, result *statistics.RoomResult) error {
	switch room.Phase {
	case game.PhaseInProgress:
		// An occasional mid-auction cancelation exercises refunds
		if result.Bids > 0 && rng.IntN(16) == 0 {
			result.Canceled = true
			result.Refunded = room.PrizePool()
			return manager.CancelRoom(room, room.Creator)
		}

		actor := room.CurrentTurn
		if room.CurrentBid != nil && (result.Bids >= maxAuctionBids || rng.IntN(4) == 0) {
			return manager.Challenge(room, actor)
		}

		digit, quantity, stake := nextBid(room, rng, s.config.MinBid)
		if err := manager.PlaceBid(room, actor, digit, quantity, stake); err != nil {
			return fmt.Errorf("bid %d x %d for $%d by %s: %w", quantity, digit, stake, actor, err)
		}
		result.Bids++
		return nil

	case game.PhaseRevealing:
		for _, p := range room.Players() {
			if p.Active && !p.Revealed {
				return manager.Reveal(room, p.ID)
			}
		}
		return fmt.Errorf("room %s revealing with nobody left to reveal", room.ID)

	default:
		return fmt.Errorf("room %s stuck in phase %s", room.ID, room.Phase)
	}
}

// nextBid picks a raise that beats the standing bid. Two raises in
// three go up in quantity; the rest go up in digit at equal quantity.
func nextBid(room *game.Room, rng *rand.Rand, minBid int64) (digit, quantity int, stake int64) {
	prev := room.CurrentBid
	if prev == nil {
		return rng.IntN(10), 1 + rng.IntN(2), minBid
	}

	stake = minBid + rng.Int64N(minBid)
	if prev.Digit < 9 && rng.IntN(3) == 0 {
		return prev.Digit + 1 + rng.IntN(9-prev.Digit), prev.Quantity, stake
	}
	return rng.IntN(10), prev.Quantity + 1, stake
}

// auditPool confirms the prize pool equals the sum of player stakes.
// The books balance in every phase: settlement credits the winner
// without draining stakes, and cancelation zeroes both sides.
func auditPool(room *game.Room) error {
	var staked int64
	for _, p := range room.Players() {
		staked += p.TotalStaked
	}
	if pool := room.PrizePool(); pool != staked {
		return fmt.Errorf("room %s: prize pool $%d does not match total staked $%d", room.ID, pool, staked)
	}
	return nil
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(rooms, players int, minBid, seed int64, logger *log.Logger) (*statistics.Statistics, error) {
	config := Config{
		Rooms:   rooms,
		Players: players,
		MinBid:  minBid,
		Seed:    seed,
		Logger:  logger,
	}

	simulator := New(config)
	return simulator.Run()
}

// PrintSummary prints a comprehensive summary of simulation results
func PrintSummary(stats *statistics.Statistics) {
	fmt.Printf("\n=== FINAL RESULTS ===\n")
	fmt.Printf("Rooms played: %d (%d completed, %d canceled)\n",
		stats.Rooms, stats.Completed(), stats.Canceled)
	fmt.Printf("Stakes settled: $%d (largest pool $%d)\n", stats.PoolTotal, stats.PoolMax)
	if stats.Canceled > 0 {
		fmt.Printf("Stakes refunded: $%d across canceled rooms\n", stats.RefundTotal)
	}

	fmt.Printf("\n=== AUCTION LENGTH ===\n")
	fmt.Printf("Mean: %.2f bids/game\n", stats.Mean())
	fmt.Printf("Median: %.1f bids/game\n", stats.Median())
	fmt.Printf("Std Dev: %.2f bids\n", stats.StdDev())
	low, high := stats.ConfidenceInterval95()
	fmt.Printf("95%% CI: [%.2f, %.2f] bids/game\n", low, high)
	fmt.Printf("Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f (longest %d)\n",
		stats.Percentile(0.05), stats.Percentile(0.25),
		stats.Percentile(0.75), stats.Percentile(0.95), stats.BidsMax)

	fmt.Printf("\n=== CHALLENGE OUTCOMES ===\n")
	if completed := stats.Completed(); completed > 0 {
		fmt.Printf("Challenger wins: %d (%.1f%%)\n",
			stats.ChallengerWins, float64(stats.ChallengerWins)/float64(completed)*100)
		fmt.Printf("Bidder wins: %d (%.1f%%)\n",
			stats.BidderWins, float64(stats.BidderWins)/float64(completed)*100)
	}

	fmt.Printf("\n=== SEAT ANALYSIS ===\n")
	for serial := 1; serial <= 6; serial++ {
		if wins := stats.SeatResults[serial].Wins; wins > 0 {
			fmt.Printf("Seat %d: %d wins (%.1f%%)\n", serial, wins, stats.SeatWinRate(serial)*100)
		}
	}
}
