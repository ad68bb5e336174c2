package chainmodel

import (
	"fmt"
	"strconv"
	"time"

	"github.com/empower1/powsim/internal/config"
	"github.com/empower1/powsim/internal/hashutil"
)

// Block is an ordered container of events plus header metadata. It owns
// its event slice; the chain that threads blocks together owns the
// blocks reachable from its genesis.
type Block struct {
	Index         int64
	Timestamp     string
	PreviousHash  string
	MerkleRoot    string
	Nonce         uint64
	Hash          string
	Events        []Event
	capacity      int
	next          *Block
	cfg           config.Config
}

// NewBlock creates an empty block at the given index, linked to
// previousHash. Its event slice starts at the configured initial
// capacity and its Hash/MerkleRoot fields are computed for the empty
// event set.
func NewBlock(index int64, previousHash string, cfg config.Config) *Block {
	b := &Block{
		Index:        index,
		Timestamp:    time.Now().Format(time.RFC3339Nano),
		PreviousHash: previousHash,
		MerkleRoot:   cfg.ZeroHash(),
		capacity:     cfg.InitialEventCapacity,
		cfg:          cfg,
		Events:       make([]Event, 0, cfg.InitialEventCapacity),
	}
	b.Hash = b.computeHash()
	return b
}

// AppendEvent adds one event to the block. It fails with ErrBlockFull
// once the block holds cfg.MaxEventsPerBlock events. On success, the
// event slice is grown (doubled, capped at MaxEventsPerBlock) as needed,
// the event is timestamped and hashed, and the block's MerkleRoot and
// Hash are recomputed so they stay consistent with the block's contents.
func (b *Block) AppendEvent(eventType int, payload []byte) error {
	if len(b.Events) >= b.cfg.MaxEventsPerBlock {
		return ErrBlockFull
	}
	if len(b.Events) == b.capacity && b.capacity < b.cfg.MaxEventsPerBlock {
		b.capacity = minInt(b.capacity*2, b.cfg.MaxEventsPerBlock)
	}
	e := newEvent(eventType, payload, time.Now(), b.cfg)
	b.Events = append(b.Events, e)
	b.recompute()
	return nil
}

// recompute refreshes MerkleRoot and Hash from the block's current
// contents. Every successful AppendEvent calls this so the two fields
// are always consistent with Events. The tamper procedure is the one
// deliberate exception, and it calls neither.
func (b *Block) recompute() {
	b.MerkleRoot = b.computeMerkleRoot()
	b.Hash = b.computeHash()
}

func (b *Block) computeMerkleRoot() string {
	hashes := make([]string, len(b.Events))
	for i, e := range b.Events {
		hashes[i] = e.Hash
	}
	return hashutil.MerkleRoot(hashes, b.cfg.HashLength)
}

// computeHash returns H(Index, Timestamp, PreviousHash, MerkleRoot, Nonce).
func (b *Block) computeHash() string {
	var buf []byte
	buf = append(buf, []byte(strconv.FormatInt(b.Index, 10))...)
	buf = append(buf, []byte(b.Timestamp)...)
	buf = append(buf, []byte(b.PreviousHash)...)
	buf = append(buf, []byte(b.MerkleRoot)...)
	buf = append(buf, []byte(strconv.FormatUint(b.Nonce, 10))...)
	return hashutil.H(buf, b.cfg.HashLength)
}

// HasRequiredWork reports whether the block's current Hash has at least
// difficulty leading '0' characters.
func (b *Block) HasRequiredWork(difficulty int) bool {
	return hasLeadingZeros(b.Hash, difficulty)
}

func hasLeadingZeros(hash string, difficulty int) bool {
	if difficulty > len(hash) {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

// SetNonce sets the block's nonce and recomputes Hash. Used by the
// proof-of-work search, which owns the candidate block exclusively while
// mining (it is a clone, never a block reachable from a chain).
func (b *Block) SetNonce(n uint64) {
	b.Nonce = n
	b.Hash = b.computeHash()
}

// Clone deep-copies the block's header and events. The returned block's
// successor link is always nil: clones are not threaded into any chain
// until the receiver explicitly links them.
func (b *Block) Clone() *Block {
	events := make([]Event, len(b.Events))
	for i, e := range b.Events {
		events[i] = e.Clone()
	}
	return &Block{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		PreviousHash: b.PreviousHash,
		MerkleRoot:   b.MerkleRoot,
		Nonce:        b.Nonce,
		Hash:         b.Hash,
		Events:       events,
		capacity:     b.capacity,
		cfg:          b.cfg,
	}
}

// Next returns the block's successor in its owning chain, or nil if it
// is currently the tip or the scratchpad.
func (b *Block) Next() *Block { return b.next }

func (b *Block) String() string {
	return fmt.Sprintf("Block{Index:%d Hash:%s PrevHash:%s Events:%d}", b.Index, b.Hash, b.PreviousHash, len(b.Events))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
