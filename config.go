// config.go - loads fpgrars.toml defaults from the current directory
// (spec.md §6's config file), merged with CLI flags which always win.

package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	File              string `toml:"file"`
	Width             int    `toml:"width"`
	Height            int    `toml:"height"`
	Scale             int    `toml:"scale"`
	Port              int    `toml:"port"`
	NoVideo           bool   `toml:"no_video"`
	PrintInstructions bool   `toml:"print_instructions"`
	PrintState        bool   `toml:"print_state"`
	RawKeyboard       bool   `toml:"raw_keyboard"`
}

func defaultConfig() Config {
	return Config{Width: 320, Height: 240, Scale: 2, Port: 0}
}

// LoadConfig reads fpgrars.toml from the working directory if present;
// a missing file is not an error, just leaves the defaults in place.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
