package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/liarspoker/internal/client"
	"github.com/lox/liarspoker/internal/game"
	"github.com/lox/liarspoker/internal/server"
)

// SetupNetworkHandlers sets up direct event handlers between client and TUI
func SetupNetworkHandlers(client *client.Client, tui *TUIModel) {
	client.AddEventHandler(server.MessageTypeAuthResponse, func(msg *server.Message) {
		var data server.AuthResponseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		if !data.Success {
			tui.AddLogEntry(fmt.Sprintf("Authentication failed: %s", data.Error))
		}
	})

	client.AddEventHandler(server.MessageTypeRoomCreated, func(msg *server.Message) {
		var data server.RoomStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		client.SetRoomID(data.RoomID)

		// Add bold room created message at the top
		tui.AddBoldLogEntry(fmt.Sprintf("Created room %s ($%d min bid, %d players to start)",
			data.RoomID, data.MinBid, data.RequiredPlayers))
		tui.AddLogEntry(fmt.Sprintf("Share the room ID so others can /join %s", data.RoomID))

		applyRoomState(client, tui, data)

		// Notify test callback if in test mode
		tui.notifyEventCallback(string(server.MessageTypeRoomCreated))
	})

	client.AddEventHandler(server.MessageTypeRoomJoined, func(msg *server.Message) {
		var data server.RoomJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		client.SetRoomID(data.RoomID)
		tui.SetSecret(data.Secret)

		// Add bold room joined message at the top
		tui.AddBoldLogEntry(fmt.Sprintf("Joined room %s as player #%d", data.RoomID, data.SerialNumber))
		if tui.showSecret {
			tui.AddLogEntry(fmt.Sprintf("Your secret: %d", data.Secret))
		}

		applyRoomState(client, tui, data.State)

		// Notify test callback if in test mode
		tui.notifyEventCallback(string(server.MessageTypeRoomJoined))
	})

	client.AddEventHandler(server.MessageTypeRoomList, func(msg *server.Message) {
		var data server.RoomListData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		tui.AddLogEntry("")
		if len(data.Rooms) == 0 {
			tui.AddLogEntry("No rooms open - /create one")
			return
		}
		tui.AddLogEntry("Rooms:")
		for _, room := range data.Rooms {
			tui.AddLogEntry(fmt.Sprintf("  %s: %s (%d/%d players, min bid $%d, pool $%d)",
				room.ID, room.Phase, room.PlayerCount, room.RequiredPlayers,
				room.MinBid, room.PrizePool))
		}
	})

	client.AddEventHandler(server.MessageTypeRoomState, func(msg *server.Message) {
		var data server.RoomStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		applyRoomState(client, tui, data)

		tui.AddLogEntry("")
		tui.AddLogEntry(fmt.Sprintf("Room %s (%s): pool $%d, min bid $%d",
			data.RoomID, data.Phase, data.PrizePool, data.MinBid))
		for _, p := range data.Players {
			line := fmt.Sprintf("  #%d %s: staked $%d", p.Serial, p.ID, p.TotalStaked)
			if p.Secret != 0 {
				line += fmt.Sprintf(", secret %d", p.Secret)
			}
			if p.Revealed {
				line += " (revealed)"
			}
			tui.AddLogEntry(line)
		}
		if data.CurrentBid != nil {
			tui.AddLogEntry(fmt.Sprintf("  claim: %d x %d by %s",
				data.CurrentBid.Quantity, data.CurrentBid.Digit, data.CurrentBid.Bidder))
		}
		if data.CurrentTurn != "" {
			tui.AddLogEntry(fmt.Sprintf("  waiting on %s", data.CurrentTurn))
		}
		if data.Winner != "" {
			tui.AddLogEntry(fmt.Sprintf("  winner: %s", data.Winner))
		}

		// Notify test callback if in test mode
		tui.notifyEventCallback(string(server.MessageTypeRoomState))
	})

	client.AddEventHandler(server.MessageTypeEvent, func(msg *server.Message) {
		var data server.EventData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		// Rebuild the engine event so the log reads exactly like the
		// server's transcript, from this player's perspective
		event, err := server.GameEventFromData(data, msg.Timestamp)
		if err != nil {
			tui.logger.Warn("Unknown event broadcast", "event", data.Event)
			return
		}

		formatter := game.NewEventFormatter(game.FormattingOptions{
			Perspective: game.ID(client.GetPlayerName()),
		})
		tui.AddLogEntry(formatter.Format(event))

		// Keep the sidebar and turn state in step with the event stream
		you := client.GetPlayerName()
		switch e := event.(type) {
		case game.PlayerJoinedEvent:
			tui.AddPlayer(string(e.Player))

		case game.GameStartedEvent:
			tui.ClearClaim()
			tui.SetPendingReveal(false)
			tui.SetMyTurn(string(e.FirstTurn) == you)

		case game.BidPlacedEvent:
			tui.UpdatePool(e.PrizePool)
			tui.UpdateClaim(string(e.Bid.Bidder), e.Bid.Digit, e.Bid.Quantity)
			tui.AddPlayerStake(string(e.Bid.Bidder), e.Bid.Stake)
			tui.SetMyTurn(string(e.NextTurn) == you)

		case game.LiarCalledEvent:
			// Everyone seated owes a reveal once the challenge lands
			tui.SetMyTurn(false)
			tui.SetPendingReveal(tui.serialNumber > 0)

		case game.PlayerRevealedEvent:
			tui.SetPlayerRevealed(string(e.Player))
			if string(e.Player) == you {
				tui.SetPendingReveal(false)
			}

		case game.GameEndedEvent:
			tui.UpdatePool(e.PrizePool)
			tui.SetMyTurn(false)
			tui.SetPendingReveal(false)
			tui.AddLogEntry("")

		case game.RoomCanceledEvent:
			tui.ClearClaim()
			tui.UpdatePool(0)
			tui.ResetPlayerStakes()
			tui.SetMyTurn(false)
			tui.SetPendingReveal(false)
		}

		// Notify test callback if in test mode
		tui.notifyEventCallback(data.Event)
	})

	client.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		tui.AddLogEntry(fmt.Sprintf("Server error [%s]: %s", data.Code, data.Message))
	})
}

// applyRoomState refreshes the sidebar and turn state from a full room state
func applyRoomState(client *client.Client, tui *TUIModel, state server.RoomStateData) {
	you := client.GetPlayerName()

	serial := tui.serialNumber
	var players []PlayerInfo
	for _, p := range state.Players {
		players = append(players, PlayerInfo{
			Name:     p.ID,
			Staked:   p.TotalStaked,
			Revealed: p.Revealed,
		})
		if p.ID == you {
			serial = p.Serial
			if p.Secret != 0 {
				tui.SetSecret(p.Secret)
			}
		}
	}
	tui.SetRoomInfo(state.RoomID, serial, players)

	tui.UpdatePool(state.PrizePool)
	tui.UpdateMinBid(state.MinBid)
	if state.CurrentBid != nil {
		tui.UpdateClaim(state.CurrentBid.Bidder, state.CurrentBid.Digit, state.CurrentBid.Quantity)
	} else {
		tui.ClearClaim()
	}

	tui.SetMyTurn(state.Phase == game.PhaseInProgress.String() && state.CurrentTurn == you)

	pending := false
	if state.Phase == game.PhaseRevealing.String() {
		for _, p := range state.Players {
			if p.ID == you && p.Active && !p.Revealed {
				pending = true
			}
		}
	}
	tui.SetPendingReveal(pending)
}

// StartCommandHandler starts the command handling loop for the TUI
func StartCommandHandler(client *client.Client, tui *TUIModel, defaultStake int64) {
	go func() {
		for {
			action, args, shouldContinue, err := tui.WaitForAction()
			if err != nil {
				continue
			}

			if !shouldContinue {
				break
			}

			// Handle special commands
			if strings.HasPrefix(action, "/") || action == "quit" {
				handleCommand(client, tui, action, args)
			} else {
				// Handle game actions (when it's the player's turn)
				handleGameAction(client, tui, action, args, defaultStake)
			}
		}
	}()
}

// handleCommand processes lobby commands like /rooms, /join, /quit
func handleCommand(client *client.Client, tui *TUIModel, action string, args []string) {
	switch action {
	case "/rooms", "/list":
		if err := client.ListRooms(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error requesting rooms: %v", err))
		}

	case "/create":
		if len(args) == 0 {
			tui.AddLogEntry("Usage: /create <min_bid> [players]")
			return
		}
		minBid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error: Invalid minimum bid: %s", args[0]))
			return
		}
		players := 2
		if len(args) > 1 {
			players, err = strconv.Atoi(args[1])
			if err != nil {
				tui.AddLogEntry(fmt.Sprintf("Error: Invalid player count: %s", args[1]))
				return
			}
		}
		if err := client.CreateRoom(minBid, players); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error creating room: %v", err))
		}

	case "/join":
		if len(args) == 0 {
			tui.AddLogEntry("Usage: /join <room_id>")
			return
		}
		if err := client.JoinRoom(args[0]); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error joining room: %v", err))
		}

	case "/start":
		if client.GetRoomID() == "" {
			tui.AddLogEntry("You're not in a room")
			return
		}
		if err := client.StartGame(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error starting game: %v", err))
		}

	case "/cancel":
		if client.GetRoomID() == "" {
			tui.AddLogEntry("You're not in a room")
			return
		}
		if err := client.CancelRoom(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error canceling room: %v", err))
		}

	case "/state":
		roomID := client.GetRoomID()
		if len(args) > 0 {
			roomID = args[0]
		}
		if roomID == "" {
			tui.AddLogEntry("You're not in a room")
			return
		}
		if err := client.RoomState(roomID); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error requesting room state: %v", err))
		}

	case "/quit", "quit":
		tui.SendQuitSignal()

	default:
		tui.AddLogEntry(fmt.Sprintf("Unknown command: %s", action))
		tui.AddLogEntry("Available commands: /rooms, /create, /join, /start, /cancel, /state, /quit")
	}
}

// handleGameAction processes game actions when it's the player's turn.
// Turn state is not cleared here: the confirming event broadcast does
// that, so a rejected action leaves the prompt in place.
func handleGameAction(client *client.Client, tui *TUIModel, action string, args []string, defaultStake int64) {
	switch action {
	case "":
		// Enter on an empty line

	case "b", "bid":
		bid, err := parseBidArgs(args, defaultStake)
		if err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error: %s", err.Error()))
			return
		}
		if err := client.PlaceBid(bid.digit, bid.quantity, bid.stake); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error sending bid: %s", err.Error()))
		}

	case "l", "liar", "challenge":
		if err := client.Challenge(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error sending challenge: %s", err.Error()))
		}

	case "r", "reveal":
		if err := client.Reveal(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error sending reveal: %s", err.Error()))
		}

	default:
		tui.AddLogEntry(fmt.Sprintf("Unknown action: %s", action))
	}
}

// bidArgs holds a parsed bid action
type bidArgs struct {
	digit    int
	quantity int
	stake    int64
}

// parseBidArgs converts bid arguments to their numeric form, falling
// back to the default stake when none is given
func parseBidArgs(args []string, defaultStake int64) (bidArgs, error) {
	if len(args) < 2 {
		return bidArgs{}, fmt.Errorf("specify digit and quantity: 'bid <digit> <quantity> [stake]'")
	}

	digit, err := strconv.Atoi(args[0])
	if err != nil {
		return bidArgs{}, fmt.Errorf("invalid digit: %s", args[0])
	}

	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return bidArgs{}, fmt.Errorf("invalid quantity: %s", args[1])
	}

	stake := defaultStake
	if len(args) > 2 {
		stake, err = strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return bidArgs{}, fmt.Errorf("invalid stake: %s", args[2])
		}
	}

	return bidArgs{digit: digit, quantity: quantity, stake: stake}, nil
}
