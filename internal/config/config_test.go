package config_test

import (
	"testing"

	"github.com/empower1/powsim/internal/config"
)

func TestDefault_PassesValidate(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Errorf("Default() config should validate cleanly, got: %v", err)
	}
}

func TestValidate_RejectsZeroHashLength(t *testing.T) {
	cfg := config.Default()
	cfg.HashLength = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a zero HashLength")
	}
}

func TestValidate_RejectsDifficultyAboveHashLength(t *testing.T) {
	cfg := config.Default()
	cfg.Difficulty = cfg.HashLength + 1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a difficulty longer than the hash itself")
	}
}

func TestValidate_RejectsOutOfRangeConsensusThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.ConsensusThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a consensus threshold above 1")
	}
}

func TestZeroHash_WidthMatchesHashLength(t *testing.T) {
	cfg := config.Default()
	zh := cfg.ZeroHash()
	if len(zh) != cfg.HashLength {
		t.Fatalf("ZeroHash() length = %d, want %d", len(zh), cfg.HashLength)
	}
	for i, c := range zh {
		if c != '0' {
			t.Fatalf("ZeroHash()[%d] = %q, want '0'", i, c)
		}
	}
}
