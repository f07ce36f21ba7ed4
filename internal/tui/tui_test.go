package tui

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUITestMode(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests

	t.Run("test mode captures log entries", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		assert.True(t, tui.IsTestMode())
		assert.Empty(t, tui.GetCapturedLog())

		// Add some log entries
		tui.AddLogEntry("alice joined as player #1 (1 seated)")
		tui.AddLogEntry("game started with 2 players, alice to act")
		tui.AddBoldLogEntry("Joined room room-0001 as player #1")

		// Check captured log
		captured := tui.GetCapturedLog()
		require.Len(t, captured, 3)

		// Bold entries get inserted at the beginning
		assert.Equal(t, "Joined room room-0001 as player #1", captured[0])
		assert.Equal(t, "alice joined as player #1 (1 seated)", captured[1])
		assert.Equal(t, "game started with 2 players, alice to act", captured[2])
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		tui := NewTUIModel(logger) // Default is production mode

		assert.False(t, tui.IsTestMode())

		tui.AddLogEntry("Some log entry")

		// Should return nil in production mode
		assert.Nil(t, tui.GetCapturedLog())
	})

	t.Run("action injection works in test mode", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		// Inject an action
		err := tui.InjectAction("liar", nil)
		require.NoError(t, err)

		// Wait for the action
		action, args, cont, err := tui.WaitForAction()
		require.NoError(t, err)

		assert.Equal(t, "liar", action)
		assert.Empty(t, args)
		assert.True(t, cont)
	})

	t.Run("action injection fails in production mode", func(t *testing.T) {
		tui := NewTUIModel(logger) // Production mode

		err := tui.InjectAction("liar", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "test mode")
	})

	t.Run("action injection with arguments", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		// Inject action with arguments
		err := tui.InjectAction("bid", []string{"6", "3"})
		require.NoError(t, err)

		// Wait for the action
		action, args, cont, err := tui.WaitForAction()
		require.NoError(t, err)

		assert.Equal(t, "bid", action)
		assert.Equal(t, []string{"6", "3"}, args)
		assert.True(t, cont)
	})
}

func TestSidebarPlayers(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	t.Run("add player is idempotent", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		tui.AddPlayer("alice")
		tui.AddPlayer("bob")
		tui.AddPlayer("alice")

		require.Len(t, tui.players, 2)
		assert.Equal(t, "alice", tui.players[0].Name)
		assert.Equal(t, "bob", tui.players[1].Name)
	})

	t.Run("stakes accumulate per player", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		tui.AddPlayer("alice")
		tui.AddPlayer("bob")
		tui.AddPlayerStake("alice", 10)
		tui.AddPlayerStake("alice", 25)
		tui.AddPlayerStake("bob", 10)

		assert.Equal(t, int64(35), tui.players[0].Staked)
		assert.Equal(t, int64(10), tui.players[1].Staked)
	})

	t.Run("reveal marks only the named player", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		tui.AddPlayer("alice")
		tui.AddPlayer("bob")
		tui.SetPlayerRevealed("bob")

		assert.False(t, tui.players[0].Revealed)
		assert.True(t, tui.players[1].Revealed)
	})

	t.Run("reset zeroes stakes after a refund", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		tui.AddPlayer("alice")
		tui.AddPlayerStake("alice", 40)
		tui.ResetPlayerStakes()

		assert.Equal(t, int64(0), tui.players[0].Staked)
	})
}
