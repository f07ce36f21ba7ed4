package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/liarspoker/internal/server"
)

// ListRoomsCommand lists all rooms on the server
type ListRoomsCommand struct {
}

func (cmd *ListRoomsCommand) Run(flags *GlobalFlags) error {
	wsClient, _, _, err := SetupClient(flags)
	if err != nil {
		return err
	}
	defer func() { _ = wsClient.Disconnect() }()

	// Set up a channel to capture room list responses
	responseChan := make(chan bool, 1)

	wsClient.AddEventHandler(server.MessageTypeRoomList, func(msg *server.Message) {
		var data server.RoomListData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			fmt.Printf("Error parsing room list: %v\n", err)
			responseChan <- false
			return
		}

		// Print room information
		if len(data.Rooms) == 0 {
			fmt.Println("No rooms available")
		} else {
			fmt.Printf("Rooms:\n")
			for _, room := range data.Rooms {
				fmt.Printf("  %s: %s, %d/%d players, min bid $%d, pool $%d\n",
					room.ID, room.Phase, room.PlayerCount, room.RequiredPlayers,
					room.MinBid, room.PrizePool)
			}
		}
		responseChan <- true
	})

	// Request room list
	err = wsClient.ListRooms()
	if err != nil {
		return fmt.Errorf("failed to request room list: %w", err)
	}

	// Wait for response with timeout
	select {
	case <-responseChan:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for room list response")
	}
}
