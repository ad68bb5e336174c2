package chainmodel_test

import (
	"errors"
	"testing"

	"github.com/empower1/powsim/internal/chainmodel"
	"github.com/empower1/powsim/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MaxEventsPerBlock = 4
	cfg.InitialEventCapacity = 2
	return cfg
}

func TestNew_GenesisLinkage(t *testing.T) {
	cfg := testConfig()
	c := chainmodel.New(cfg)

	if c.BlockCount() != 1 {
		t.Fatalf("BlockCount() = %d, want 1", c.BlockCount())
	}
	if c.Genesis().PreviousHash != cfg.ZeroHash() {
		t.Errorf("genesis PreviousHash = %q, want %d zeros", c.Genesis().PreviousHash, cfg.HashLength)
	}
	if c.LastBlock() != c.Genesis() {
		t.Error("a fresh chain's LastBlock should be its genesis block")
	}
}

func TestAppendEvent_SealsOnOverflow(t *testing.T) {
	cfg := testConfig()
	c := chainmodel.New(cfg)

	for i := 0; i < cfg.MaxEventsPerBlock; i++ {
		if err := c.AppendEvent(1, []byte("e")); err != nil {
			t.Fatalf("AppendEvent(%d) failed: %v", i, err)
		}
	}
	if c.BlockCount() != 1 {
		t.Fatalf("BlockCount() after filling the scratchpad = %d, want 1 (not yet sealed)", c.BlockCount())
	}

	// One more event overflows the scratchpad, sealing it as block 1 and
	// landing this event in a fresh scratchpad for block 2.
	if err := c.AppendEvent(1, []byte("overflow")); err != nil {
		t.Fatalf("AppendEvent(overflow) failed: %v", err)
	}
	if c.BlockCount() != 2 {
		t.Fatalf("BlockCount() after overflow = %d, want 2", c.BlockCount())
	}
	sealed := c.BlockAt(1)
	if sealed == nil {
		t.Fatal("BlockAt(1) returned nil after seal")
	}
	if len(sealed.Events) != cfg.MaxEventsPerBlock {
		t.Errorf("sealed block has %d events, want %d", len(sealed.Events), cfg.MaxEventsPerBlock)
	}
	if sealed.PreviousHash != c.Genesis().Hash {
		t.Error("sealed block does not link to genesis")
	}
}

func TestTryCommitMined_RejectsStaleCandidate(t *testing.T) {
	cfg := testConfig()
	c := chainmodel.New(cfg)

	candidate := c.ScratchpadSnapshot()
	candidate.SetNonce(1)

	if !c.TryCommitMined(candidate) {
		t.Fatal("first TryCommitMined should succeed against a fresh tip")
	}
	if c.BlockCount() != 2 {
		t.Fatalf("BlockCount() after commit = %d, want 2", c.BlockCount())
	}

	stale := c.ScratchpadSnapshot()
	stale.PreviousHash = c.Genesis().Hash // pretend we mined against the old tip
	stale.SetNonce(2)
	if c.TryCommitMined(stale) {
		t.Error("TryCommitMined should reject a candidate whose PreviousHash no longer matches the tip")
	}
}

func TestTryAcceptBroadcast_StrictAppendOnly(t *testing.T) {
	cfg := testConfig()
	c := chainmodel.New(cfg)

	next := chainmodel.NewBlock(1, c.Genesis().Hash, cfg)
	if err := c.TryAcceptBroadcast(next); err != nil {
		t.Fatalf("TryAcceptBroadcast(valid next block) failed: %v", err)
	}
	if c.BlockCount() != 2 {
		t.Fatalf("BlockCount() after accept = %d, want 2", c.BlockCount())
	}

	stale := chainmodel.NewBlock(1, c.Genesis().Hash, cfg)
	err := c.TryAcceptBroadcast(stale)
	if !errors.Is(err, chainmodel.ErrNoLinkage) {
		t.Errorf("TryAcceptBroadcast(stale block) error = %v, want ErrNoLinkage", err)
	}
}

func TestReplaceWith_AdoptsLongerChain(t *testing.T) {
	cfg := testConfig()
	winner := chainmodel.New(cfg)
	loser := chainmodel.New(cfg)

	for i := 0; i < 2; i++ {
		candidate := winner.ScratchpadSnapshot()
		candidate.SetNonce(uint64(i + 1))
		if !winner.TryCommitMined(candidate) {
			t.Fatalf("failed to commit block %d onto winner", i)
		}
	}

	if loser.BlockCount() >= winner.BlockCount() {
		t.Fatalf("test setup invalid: loser has %d blocks, winner has %d", loser.BlockCount(), winner.BlockCount())
	}

	loser.ReplaceWith(winner.SnapshotBlocks())
	if loser.BlockCount() != winner.BlockCount() {
		t.Fatalf("loser.BlockCount() after ReplaceWith = %d, want %d", loser.BlockCount(), winner.BlockCount())
	}
	if loser.LastBlock().Hash != winner.LastBlock().Hash {
		t.Error("loser's tip hash does not match winner's after ReplaceWith")
	}
}

func TestTamperBlock_LeavesMerkleRootStale(t *testing.T) {
	cfg := testConfig()
	c := chainmodel.New(cfg)

	if err := c.AppendEvent(chainmodelTestFraudType, []byte("original")); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	for i := 0; i < cfg.MaxEventsPerBlock; i++ {
		if err := c.AppendEvent(0, []byte("filler")); err != nil {
			t.Fatalf("AppendEvent(filler %d) failed: %v", i, err)
		}
	}
	sealed := c.BlockAt(1)
	if sealed == nil {
		t.Fatal("expected block 1 to be sealed after filling the scratchpad")
	}
	merkleBefore := sealed.MerkleRoot
	hashBefore := sealed.Hash

	if !c.TamperBlock(chainmodelTestFraudType, []byte("tampered")) {
		t.Fatal("TamperBlock should find the seeded fraudulent event")
	}

	tampered := c.BlockAt(1)
	if tampered.MerkleRoot != merkleBefore || tampered.Hash != hashBefore {
		t.Error("TamperBlock must leave MerkleRoot and Hash stale, not recompute them")
	}
	if string(tampered.Events[0].Payload[:len("tampered")]) != "tampered" {
		t.Error("TamperBlock did not rewrite the target event's payload")
	}
}

const chainmodelTestFraudType = 1
