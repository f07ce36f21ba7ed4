package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/liarspoker/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  []RoomConfig   `hcl:"room,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	DatabaseURL   string `hcl:"database_url,optional"`
	TranscriptDir string `hcl:"transcript_dir,optional"`
	AuthURL       string `hcl:"auth_url,optional"`
	AuthSecret    string `hcl:"auth_secret,optional"`
	Seed          int64  `hcl:"seed,optional"`
}

// RoomConfig defines a room provisioned at startup. The named creator
// owns the room: only they may start or cancel it.
type RoomConfig struct {
	Name            string `hcl:"name,label"`
	Creator         string `hcl:"creator"`
	MinBid          int64  `hcl:"min_bid"`
	RequiredPlayers int    `hcl:"required_players,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
	}
}

// LoadDotEnv loads environment variables from the given file if it
// exists. A missing file is not an error; variables already set in the
// environment are never overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	// Apply defaults to rooms
	for i := range config.Rooms {
		if config.Rooms[i].RequiredPlayers == 0 {
			config.Rooms[i].RequiredPlayers = 2
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	for _, room := range c.Rooms {
		if room.Creator == "" {
			return fmt.Errorf("room %s: creator must be set", room.Name)
		}
		if room.MinBid <= 0 {
			return fmt.Errorf("room %s: minimum bid must be positive", room.Name)
		}
		if room.RequiredPlayers < 2 || room.RequiredPlayers > game.MaxPlayers {
			return fmt.Errorf("room %s: required players must be between 2 and %d", room.Name, game.MaxPlayers)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetRoomByName returns a room configuration by name
func (c *ServerConfig) GetRoomByName(name string) *RoomConfig {
	for _, room := range c.Rooms {
		if room.Name == name {
			return &room
		}
	}
	return nil
}
