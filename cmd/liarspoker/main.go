package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the liar's poker server"`
	Play     PlayCmd          `cmd:"" help:"Connect and play in the terminal UI"`
	Rooms    RoomsCmd         `cmd:"" help:"List open rooms on a server"`
	Create   CreateCmd        `cmd:"" help:"Create a room on a server"`
	Simulate SimulateCmd      `cmd:"" help:"Play scripted games against the engine"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("liarspoker"),
		kong.Description("Multiplayer liar's poker over WebSockets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
