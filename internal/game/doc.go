// Package game implements the core liar's poker room logic.
//
// The main type is Room, which holds the state of a single bidding game:
// the players in join order, the standing bid, the prize pool escrow and
// the lifecycle phase. All mutation goes through Manager operations, each
// of which validates fully before committing, so a rejected call leaves
// the room untouched.
//
// # Deterministic Execution
//
// The package never reads wall clocks or global randomness. Time comes
// from an injected quartz.Clock and secrets from a SecretSource seeded
// per join, so identical operation sequences produce identical rooms:
//
//	mgr := game.NewManager(
//	    game.WithClock(quartz.NewMock(t)),
//	    game.WithSeed(42),
//	)
//	room, _ := mgr.CreateRoom("alice", 10, 2)
//
// # Architecture
//
// Room delegates responsibilities to specialized components:
//   - Registry: players in join order with identity lookup
//   - Ledger: overflow-checked prize pool escrow and settlement
//   - Bid: escalation comparison between standing and proposed bids
//
// Turn rotation walks the registry in join order, skipping inactive
// players and wrapping after the last. Each room is independent; the
// service layer serializes operations per room and runs distinct rooms
// concurrently.
package game
