// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"

	"drawpoker/game"
)

// Config holds the server's tunables. Defaults reproduce the reference
// deployment: port 31415, three seats, ante 5, 1000 starting credit and
// a 100ms pacing delay before each outbound write.
type Config struct {
	Addr           string        `env:"POKER_ADDR,default=:31415"`
	StatusAddr     string        `env:"POKER_STATUS_ADDR"` // empty disables the status endpoint
	Seats          int           `env:"POKER_SEATS,default=3"`
	Ante           int           `env:"POKER_ANTE,default=5"`
	StartingCredit int           `env:"POKER_STARTING_CREDIT,default=1000"`
	SendDelay      time.Duration `env:"POKER_SEND_DELAY,default=100ms"`
	TurnTimeout    time.Duration `env:"POKER_TURN_TIMEOUT,default=0s"` // 0 disables the auto-fold
}

// Load reads the environment into a Config and validates it.
func Load() (Config, error) {
	var c Config
	if err := envdecode.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the table bounds.
func (c Config) Validate() error {
	if c.Seats < 2 {
		return game.ErrTooFewPlayers
	}
	if c.Seats > 4 {
		return game.ErrTooManyPlayers
	}
	if c.Ante < 0 {
		return fmt.Errorf("ante must not be negative, got %d", c.Ante)
	}
	if c.StartingCredit < c.Ante {
		return fmt.Errorf("starting credit %d cannot cover the ante %d", c.StartingCredit, c.Ante)
	}
	return nil
}
