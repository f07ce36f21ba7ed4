package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/liarspoker/internal/server"
)

// CreateRoomCommand creates a room and prints its ID
type CreateRoomCommand struct {
	MinBid  int64 `long:"min-bid" default:"10" help:"Minimum stake per bid"`
	Players int   `long:"players" default:"2" help:"Players required before the game can start"`
}

func (cmd *CreateRoomCommand) Run(flags *GlobalFlags) error {
	wsClient, _, _, err := SetupClient(flags)
	if err != nil {
		return err
	}
	defer func() { _ = wsClient.Disconnect() }()

	responseChan := make(chan bool, 1)

	wsClient.AddEventHandler(server.MessageTypeRoomCreated, func(msg *server.Message) {
		var data server.RoomStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			fmt.Printf("Error parsing room state: %v\n", err)
			responseChan <- false
			return
		}

		fmt.Printf("Created room %s (min bid $%d, %d players to start)\n",
			data.RoomID, data.MinBid, data.RequiredPlayers)
		responseChan <- true
	})

	// Surface rejections (bad min bid, bad player count) instead of timing out
	wsClient.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			fmt.Printf("Error parsing server error: %v\n", err)
			responseChan <- false
			return
		}

		fmt.Printf("Server rejected room: %s\n", data.Message)
		responseChan <- false
	})

	err = wsClient.CreateRoom(cmd.MinBid, cmd.Players)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	// Wait for response with timeout
	select {
	case <-responseChan:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for room creation response")
	}
}
