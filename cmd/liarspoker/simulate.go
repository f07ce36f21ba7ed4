package main

import (
	"fmt"
	"time"

	"github.com/lox/liarspoker/cmd/liarspoker/shared"
	"github.com/lox/liarspoker/internal/simulator"
)

// SimulateCmd plays scripted games against the engine and reports
// aggregate results
type SimulateCmd struct {
	Rooms   int   `default:"1000" help:"Number of rooms to play"`
	Players int   `default:"3" help:"Players seated per room (2-6)"`
	MinBid  int64 `default:"10" help:"Minimum stake per bid"`
	Seed    int64 `default:"0" help:"RNG seed (0 for random)"`
	Workers int   `default:"0" help:"Concurrent rooms (0 for NumCPU, capped at 8)"`
	Verbose bool  `help:"Verbose logging"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Verbose)

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	fmt.Printf("Starting simulation: %d rooms of %d players, min bid $%d (seed: %d)\n",
		c.Rooms, c.Players, c.MinBid, seed)

	startTime := time.Now()
	stats, err := simulator.New(simulator.Config{
		Rooms:   c.Rooms,
		Players: c.Players,
		MinBid:  c.MinBid,
		Seed:    seed,
		Workers: c.Workers,
		Logger:  logger,
	}).Run()
	if err != nil {
		return err
	}
	duration := time.Since(startTime)

	fmt.Printf("Completed %d rooms in %v (%.0f rooms/sec)\n",
		stats.Rooms, duration.Round(time.Millisecond),
		float64(stats.Rooms)/duration.Seconds())

	simulator.PrintSummary(stats)
	return nil
}
