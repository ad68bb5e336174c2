// Package config holds the tunable constants that parameterize the
// simulator: hash width, mining difficulty, block capacity, registry
// size, proof-of-work backoff cadence, and the consensus threshold.
//
// Callers construct one Config value once and pass it down to every
// component that needs it, rather than relying on compile-time constants.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config parameterizes one simulated network. The zero value is not
// usable; construct one with Default and override fields as needed.
//
// The struct tags below are the config sanity checks run by Validate:
// they catch an operator typo (a zero hash length, a negative node cap)
// before the network spins up, rather than letting it surface later as a
// confusing mining or registry failure.
type Config struct {
	// HashLength is the fixed hex-character width (L) that H must produce.
	HashLength int `validate:"required,gt=0"`

	// Difficulty is the minimum number of leading '0' hex characters (D)
	// a committed block's hash must have.
	Difficulty int `validate:"gte=0,ltefield=HashLength"`

	// MaxEventsPerBlock is the hard cap (C) on events in a single block.
	MaxEventsPerBlock int `validate:"required,gt=0"`

	// InitialEventCapacity is the starting capacity of a fresh block's
	// event slice, doubled on growth up to MaxEventsPerBlock.
	InitialEventCapacity int `validate:"required,gt=0,ltefield=MaxEventsPerBlock"`

	// MaxNodes is the hard cap (N_max) on the network registry size.
	MaxNodes int `validate:"required,gt=0"`

	// ProofOfWorkYieldEvery is the nonce-trial interval (K) at which the
	// miner cooperatively yields and re-checks the shutdown flag.
	ProofOfWorkYieldEvery int `validate:"required,gt=0"`

	// MiningBackoff is how long the miner sleeps on each cooperative yield.
	MiningBackoff time.Duration `validate:"gte=0"`

	// MinerLoopInterval is the sleep between miner-loop iterations.
	MinerLoopInterval time.Duration `validate:"gt=0"`

	// ConsensusThreshold is the fraction of active nodes (0.51 by
	// default) whose replicas must contain a block for HasConsensus to
	// report it as network-accepted.
	ConsensusThreshold float64 `validate:"gt=0,lte=1"`
}

// Validate runs the struct-tag sanity checks above, returning a wrapped
// error describing every field that failed.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Default returns the reference configuration: D=2, L=64, C=100, N_max=10,
// K=10, 10ms mining backoff, 50ms loop interval, 0.51 consensus threshold.
func Default() Config {
	return Config{
		HashLength:            64,
		Difficulty:            2,
		MaxEventsPerBlock:     100,
		InitialEventCapacity:  10,
		MaxNodes:              10,
		ProofOfWorkYieldEvery: 10,
		MiningBackoff:         10 * time.Millisecond,
		MinerLoopInterval:     50 * time.Millisecond,
		ConsensusThreshold:    0.51,
	}
}

// ZeroHash returns the genesis previous-hash constant: L zero characters.
func (c Config) ZeroHash() string {
	zeros := make([]byte, c.HashLength)
	for i := range zeros {
		zeros[i] = '0'
	}
	return string(zeros)
}
