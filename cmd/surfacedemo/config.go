package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Cache modes, one per compatibility kind.
const (
	modeDefault = "default"
	modeWidget  = "widget"
	modeSurface = "surface"
	modeContext = "context"
	modeAll     = "all"
)

var allModes = []string{modeDefault, modeWidget, modeSurface, modeContext}

// config is the demo configuration. It is read from an optional TOML file
// and overridden by flags.
type config struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	Scale     float64 `toml:"scale"`
	Mode      string  `toml:"mode"`
	DrawCalls int     `toml:"draw_calls"`
	Backend   string  `toml:"backend"`
	Output    string  `toml:"output"`
	Verbose   bool    `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Width:     400,
		Height:    300,
		Scale:     1,
		Mode:      modeContext,
		DrawCalls: 1000,
		Output:    "surfacedemo.png",
	}
}

// loadConfig decodes the TOML file at path over cfg.
func loadConfig(path string, cfg *config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (c config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas size %vx%v", c.Width, c.Height)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("invalid scale %v", c.Scale)
	}
	if c.DrawCalls < 0 {
		return errors.New("draw_calls must not be negative")
	}
	if _, err := c.modes(); err != nil {
		return err
	}
	return nil
}

// modes expands Mode into the cache modes to run.
func (c config) modes() ([]string, error) {
	switch c.Mode {
	case modeAll:
		return allModes, nil
	case modeDefault, modeWidget, modeSurface, modeContext:
		return []string{c.Mode}, nil
	}
	return nil, fmt.Errorf("unknown mode %q (want default, widget, surface, context or all)", c.Mode)
}
