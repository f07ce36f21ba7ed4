package main

import (
	"github.com/lox/liarspoker/internal/client/commands"
)

// PlayCmd launches the interactive terminal client
type PlayCmd struct {
	commands.GlobalFlags
	Room string `arg:"" optional:"" help:"Room ID to join on startup"`
}

func (c *PlayCmd) Run() error {
	cmd := commands.PlayCommand{Room: c.Room}
	return cmd.Run(&c.GlobalFlags)
}

// RoomsCmd lists open rooms without starting the TUI
type RoomsCmd struct {
	commands.GlobalFlags
}

func (c *RoomsCmd) Run() error {
	var cmd commands.ListRoomsCommand
	return cmd.Run(&c.GlobalFlags)
}

// CreateCmd creates a room and prints its ID
type CreateCmd struct {
	commands.GlobalFlags
	MinBid  int64 `default:"10" help:"Minimum stake per bid"`
	Players int   `default:"2" help:"Players required before the game can start"`
}

func (c *CreateCmd) Run() error {
	cmd := commands.CreateRoomCommand{MinBid: c.MinBid, Players: c.Players}
	return cmd.Run(&c.GlobalFlags)
}
