package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DuelConfig carries the recognized duel options. Durations are whole seconds
// in the environment.
type DuelConfig struct {
	MaxDuelsPerPlayer    int     `env:"DUEL_MAX_PER_PLAYER" envDefault:"1"`
	CountdownSeconds     int     `env:"DUEL_COUNTDOWN_SECONDS" envDefault:"3"`
	ProximityRadius      float64 `env:"DUEL_PROXIMITY_RADIUS" envDefault:"10"`
	RequestTimeoutSecs   int     `env:"DUEL_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	MinBet               int64   `env:"DUEL_MIN_BET" envDefault:"10"`
	MaxBet               int64   `env:"DUEL_MAX_BET" envDefault:"10000"`
	AllowNegativeBalance bool    `env:"DUEL_ALLOW_NEGATIVE_BALANCE" envDefault:"false"`
	Debug                bool    `env:"DUEL_DEBUG" envDefault:"false"`
}

func DefaultDuel() DuelConfig {
	return DuelConfig{
		MaxDuelsPerPlayer:  1,
		CountdownSeconds:   3,
		ProximityRadius:    10,
		RequestTimeoutSecs: 30,
		MinBet:             10,
		MaxBet:             10000,
	}
}

func LoadDuel() (DuelConfig, error) {
	var cfg DuelConfig
	if err := env.Parse(&cfg); err != nil {
		return DuelConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return DuelConfig{}, err
	}
	return cfg, nil
}

func (c DuelConfig) Validate() error {
	var errs []error
	if c.MaxDuelsPerPlayer != 1 {
		errs = append(errs, fmt.Errorf("DUEL_MAX_PER_PLAYER must be 1, got %d", c.MaxDuelsPerPlayer))
	}
	if c.CountdownSeconds < 0 {
		errs = append(errs, fmt.Errorf("DUEL_COUNTDOWN_SECONDS must be >= 0, got %d", c.CountdownSeconds))
	}
	if c.RequestTimeoutSecs <= 0 {
		errs = append(errs, fmt.Errorf("DUEL_REQUEST_TIMEOUT_SECONDS must be > 0, got %d", c.RequestTimeoutSecs))
	}
	if c.ProximityRadius < 0 {
		errs = append(errs, fmt.Errorf("DUEL_PROXIMITY_RADIUS must be >= 0, got %v", c.ProximityRadius))
	}
	if c.MinBet < 0 || c.MaxBet < c.MinBet {
		errs = append(errs, fmt.Errorf("bet range [%d,%d] is invalid", c.MinBet, c.MaxBet))
	}
	return errors.Join(errs...)
}

func (c DuelConfig) CountdownDuration() time.Duration {
	return time.Duration(c.CountdownSeconds) * time.Second
}

func (c DuelConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// BetInRange applies only to wagered duels; zero is always a friendly duel.
func (c DuelConfig) BetInRange(amount int64) bool {
	if amount == 0 {
		return true
	}
	return amount >= c.MinBet && amount <= c.MaxBet
}
