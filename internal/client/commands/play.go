package commands

import (
	"fmt"

	"github.com/lox/liarspoker/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

// PlayCommand starts the interactive TUI, optionally joining a room straight away
type PlayCommand struct {
	Room string `arg:"" optional:"" help:"Room ID to join immediately"`
}

func (cmd *PlayCommand) Run(flags *GlobalFlags) error {
	// Create client with file logging (handles config loading and log file creation)
	wsClient, cfg, logger, cleanup, err := SetupClientWithFileLogging(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting Liar's Poker TUI",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"room", cmd.Room)

	// Create TUI model
	tui.ApplyTheme(cfg.UI.Theme)
	tuiModel := tui.NewTUIModel(logger)
	tuiModel.SetShowSecret(cfg.UI.ShowSecret)

	// Set up bridge between client and TUI
	tui.SetupNetworkHandlers(wsClient, tuiModel)

	tuiModel.AddLogEntry("=== Liar's Poker Client ===")
	tuiModel.AddLogEntry("Connected to server: " + cfg.Server.URL)
	tuiModel.AddLogEntry("Player: " + cfg.Player.Name)
	tuiModel.AddLogEntry("")
	tuiModel.AddLogEntry("Commands:")
	tuiModel.AddLogEntry("  \033[1m/rooms\033[0m - List open rooms")
	tuiModel.AddLogEntry("  \033[1m/create <min_bid> [players]\033[0m - Create a room")
	tuiModel.AddLogEntry("  \033[1m/join <room_id>\033[0m - Join a room")
	tuiModel.AddLogEntry("  \033[1m/start\033[0m - Start the game once everyone is seated")
	tuiModel.AddLogEntry("  \033[1m/cancel\033[0m - Cancel the room and refund stakes")
	tuiModel.AddLogEntry("  \033[1m/state\033[0m - Show the current room state")
	tuiModel.AddLogEntry("  \033[1mbid <digit> <quantity> [stake]\033[0m - Raise the claim")
	tuiModel.AddLogEntry("  \033[1mliar\033[0m - Challenge the last bid")
	tuiModel.AddLogEntry("  \033[1mreveal\033[0m - Reveal your secret after a challenge")
	tuiModel.AddLogEntry("  \033[1m/quit\033[0m - Quit the game")
	tuiModel.AddLogEntry("")

	// Join the requested room before handing the terminal to the TUI
	if cmd.Room != "" {
		if err := wsClient.JoinRoom(cmd.Room); err != nil {
			return fmt.Errorf("failed to join room %s: %w", cmd.Room, err)
		}
	}

	// Start TUI
	program := tea.NewProgram(tuiModel, tea.WithAltScreen())

	// Start command handler in TUI package
	tui.StartCommandHandler(wsClient, tuiModel, cfg.Player.DefaultStake)

	// Run TUI
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
