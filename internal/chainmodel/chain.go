package chainmodel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/empower1/powsim/internal/config"
)

var (
	// ErrNoLinkage is returned when a candidate block's PreviousHash does
	// not match the hash of the chain's current tip.
	ErrNoLinkage = errors.New("no block in chain matches previous hash")

	// ErrNotLonger is returned when a candidate block would not strictly
	// extend the chain's current tip.
	ErrNotLonger = errors.New("candidate block does not extend the chain tip")

	// ErrBadProofOfWork is returned when a candidate block's hash does
	// not satisfy the configured difficulty.
	ErrBadProofOfWork = errors.New("block hash does not satisfy difficulty")

	// ErrInvalidEvent is returned when a candidate block contains an
	// event that fails the validation hook.
	ErrInvalidEvent = errors.New("block contains an invalid event")
)

// Chain is a singly-linked sequence of blocks starting at a genesis
// block, plus a scratchpad block accumulating events for the next,
// not-yet-committed block. One lock protects the genesis/last-block/
// block-count/scratchpad pointers and the contents of every block
// reachable through them.
type Chain struct {
	mu                 sync.Mutex
	cfg                config.Config
	genesis            *Block
	lastBlock          *Block
	blockCount         int64
	currentMiningBlock *Block
}

// New creates a chain with a genesis block (index 0, previous_hash =
// L zero characters, fixed timestamp) and an empty scratchpad for index 1.
// Every chain built from the same config therefore has the same genesis
// hash, so blocks broadcast between replicas can link to it.
func New(cfg config.Config) *Chain {
	genesis := NewBlock(0, cfg.ZeroHash(), cfg)
	genesis.Timestamp = "1970-01-01T00:00:00Z"
	genesis.recompute()
	c := &Chain{
		cfg:       cfg,
		genesis:   genesis,
		lastBlock: genesis,
	}
	c.blockCount = 1
	c.currentMiningBlock = NewBlock(1, genesis.Hash, cfg)
	return c
}

// Config returns the chain's configuration.
func (c *Chain) Config() config.Config { return c.cfg }

// Genesis returns the chain's genesis block under the chain lock
// (ReplaceWith swaps it).
func (c *Chain) Genesis() *Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.genesis
}

// LastBlock returns the chain's current tip under the chain lock.
func (c *Chain) LastBlock() *Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastBlock
}

// BlockCount returns the number of committed blocks (including genesis).
func (c *Chain) BlockCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockCount
}

// ScratchpadSnapshot returns a deep clone of the current scratchpad, for
// callers (the miner loop) that need to work on a candidate without
// holding the chain lock while they do so.
func (c *Chain) ScratchpadSnapshot() *Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentMiningBlock.Clone()
}

// AppendEvent forwards the event to the scratchpad. If the scratchpad is
// full, it is sealed and committed (no proof-of-work required for a
// locally sealed block) and the event is retried once against a fresh
// scratchpad.
func (c *Chain) AppendEvent(eventType int, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.currentMiningBlock.AppendEvent(eventType, payload)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrBlockFull) {
		return err
	}

	c.sealAndCommitLocked(c.currentMiningBlock)
	return c.currentMiningBlock.AppendEvent(eventType, payload)
}

// sealAndCommitLocked recomputes the scratchpad's Merkle root and hash,
// links it after last_block, advances last_block/block_count, and
// allocates a fresh scratchpad for the new tip. Callers must hold c.mu.
func (c *Chain) sealAndCommitLocked(b *Block) {
	b.recompute()
	b.next = nil
	c.lastBlock.next = b
	c.lastBlock = b
	c.blockCount++
	c.currentMiningBlock = NewBlock(c.blockCount, b.Hash, c.cfg)
}

// TryCommitMined performs the miner's post-proof-of-work race check: if
// the chain's current tip hash still equals candidate.PreviousHash,
// candidate is linked as the new tip, block_count is incremented, and a
// fresh scratchpad is installed for the new tip. Returns true if the
// candidate was committed; false means another block won the race and
// candidate must be discarded by the caller.
func (c *Chain) TryCommitMined(candidate *Block) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastBlock.Hash != candidate.PreviousHash {
		return false
	}
	candidate.next = nil
	c.lastBlock.next = candidate
	c.lastBlock = candidate
	c.blockCount++
	c.currentMiningBlock = NewBlock(c.blockCount, candidate.Hash, c.cfg)
	return true
}

// TryAcceptBroadcast implements the peer-side acceptance rule for a
// broadcast block under strict append: a candidate is accepted only when
// its PreviousHash equals the chain's current tip hash, so acceptance
// never orphans a suffix (see DESIGN.md for why strict append was chosen
// over extending from an arbitrary earlier block).
//
// The caller is responsible for the proof-of-work and event-validity
// checks; this method performs the linkage and length checks and, on
// acceptance, the append.
func (c *Chain) TryAcceptBroadcast(candidate *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if candidate.PreviousHash != c.lastBlock.Hash {
		return fmt.Errorf("%w: want tip hash %s, got previous hash %s", ErrNoLinkage, c.lastBlock.Hash, candidate.PreviousHash)
	}
	if candidate.Index+1 <= c.blockCount {
		return ErrNotLonger
	}

	clone := candidate.Clone()
	clone.next = nil
	c.lastBlock.next = clone
	c.lastBlock = clone
	c.blockCount = candidate.Index + 1
	c.currentMiningBlock = NewBlock(c.blockCount, clone.Hash, c.cfg)
	return nil
}

// BlockAt returns the block at the given index by walking from genesis
// under the chain lock, or nil if the index is out of range. The result
// is the chain's own block, not a clone.
func (c *Chain) BlockAt(index int64) *Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockAtLocked(index)
}

func (c *Chain) blockAtLocked(index int64) *Block {
	if index < 0 || index >= c.blockCount {
		return nil
	}
	b := c.genesis
	for i := int64(0); i < index; i++ {
		b = b.next
	}
	return b
}

// ContainsHash reports whether any committed block (genesis through
// last_block) has the given hash. Used by the consensus oracle.
func (c *Chain) ContainsHash(hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for b := c.genesis; b != nil; b = b.next {
		if b.Hash == hash {
			return true
		}
	}
	return false
}

// ReplaceWith overwrites this chain's contents by cloning the given
// blocks, preserving order, then rebuilds this chain's scratchpad to
// extend the new tip. This is the destination half of synchronize: the
// caller takes the source chain's lock first by calling its
// SnapshotBlocks before acquiring this chain's lock via ReplaceWith.
func (c *Chain) ReplaceWith(blocks []*Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(blocks) == 0 {
		return
	}
	cloned := make([]*Block, len(blocks))
	for i, b := range blocks {
		cloned[i] = b.Clone()
	}
	for i := 0; i+1 < len(cloned); i++ {
		cloned[i].next = cloned[i+1]
	}
	cloned[len(cloned)-1].next = nil

	c.genesis = cloned[0]
	c.lastBlock = cloned[len(cloned)-1]
	c.blockCount = int64(len(cloned))
	c.currentMiningBlock = NewBlock(c.blockCount, c.lastBlock.Hash, c.cfg)
}

// SnapshotBlocks returns clones of every committed block from genesis to
// last_block, in order, taken under the chain lock. Used as the source
// side of synchronize: the winner's chain lock is held for the duration
// of the copy.
func (c *Chain) SnapshotBlocks() []*Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Block, 0, c.blockCount)
	for b := c.genesis; b != nil; b = b.next {
		out = append(out, b.Clone())
	}
	return out
}

// TamperBlock implements the malicious-node payload rewrite: it rewrites
// the payload (and only the payload's own hash) of the first event of
// the given type found in the first non-genesis block, and deliberately
// leaves the block's MerkleRoot and Hash untouched, producing a locally
// inconsistent block on purpose. Returns false if there is no
// non-genesis block or no event of the requested type to tamper with.
func (c *Chain) TamperBlock(eventType int, fraudulentPayload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.genesis.next
	if target == nil {
		return false
	}
	for i := range target.Events {
		if target.Events[i].Type != eventType {
			continue
		}
		e := &target.Events[i]
		e.Payload = append([]byte(nil), fraudulentPayload...)
		e.Hash = recomputeEventHash(*e, c.cfg)
		// MerkleRoot and Hash are intentionally NOT recomputed: the
		// inconsistency between the event's new hash and the block's
		// stale MerkleRoot/Hash is the point of the tamper procedure.
		return true
	}
	return false
}
