// Package chainmodel implements the simulator's replicated data model:
// events, blocks, and the chain that threads them together. It is the
// part of the system every node owns one independent copy of.
package chainmodel

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/empower1/powsim/internal/config"
	"github.com/empower1/powsim/internal/hashutil"
)

// MaxPayloadBytes is the hard cap on an event's opaque payload. Payloads
// longer than this are truncated and null-terminated rather than rejected.
const MaxPayloadBytes = 255

var (
	// ErrBlockFull is returned by Block.AppendEvent when the block has
	// already reached its configured event capacity.
	ErrBlockFull = errors.New("block is full")
)

// Event is a single opaque record carried by a block. The core treats
// Payload as an uninterpreted byte string; parsing it (as JSON or
// otherwise) is an external collaborator's job, not the core's.
type Event struct {
	// ID is a correlation identifier independent of the content hash,
	// useful for tracing a single logical event across node replicas
	// even after a malicious tamper changes its Hash.
	ID uuid.UUID

	// Type is a small integer tag describing what kind of event this is.
	Type int

	// Payload is an opaque byte string, capped at MaxPayloadBytes.
	Payload []byte

	// Timestamp is the wall-clock string recorded when the event was
	// appended to a block.
	Timestamp string

	// Hash is H(Type, Payload, Timestamp), computed once when the event
	// is sealed into a block and never recomputed afterward, except by
	// the tamper procedure, which violates that rule on purpose.
	Hash string

	// IsValid records the outcome of the validation hook at append time.
	IsValid bool
}

// ValidateEvent is the core's validation extension point. It must be a
// pure function of the event; this simulator always returns true, but the
// signature is kept so a caller can swap in real transaction-validation
// semantics (balances, signatures, replay protection) without touching
// the rest of the core.
func ValidateEvent(e Event) bool {
	return true
}

// newEvent constructs a sealed Event: payload truncation, timestamping,
// hashing, and validation all happen here, in that order.
func newEvent(eventType int, payload []byte, now time.Time, cfg config.Config) Event {
	p := truncatePayload(payload)
	ts := now.Format(time.RFC3339Nano)
	e := Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   p,
		Timestamp: ts,
	}
	e.Hash = hashutil.H(e.signingBytes(), cfg.HashLength)
	e.IsValid = ValidateEvent(e)
	return e
}

// recomputeEventHash recomputes an event's content hash in isolation,
// without touching any block-level field. The tamper procedure is the
// only caller: it is the one place an event's hash changes without the
// owning block's MerkleRoot/Hash following along.
func recomputeEventHash(e Event, cfg config.Config) string {
	return hashutil.H(e.signingBytes(), cfg.HashLength)
}

// signingBytes returns the canonical byte representation hashed to
// produce Event.Hash: Type || Payload || Timestamp.
func (e Event) signingBytes() []byte {
	buf := make([]byte, 0, len(e.Payload)+len(e.Timestamp)+8)
	buf = append(buf, byte(e.Type))
	buf = append(buf, e.Payload...)
	buf = append(buf, e.Timestamp...)
	return buf
}

// Clone returns a deep copy of e; mutating the clone never affects e.
func (e Event) Clone() Event {
	payload := make([]byte, len(e.Payload))
	copy(payload, e.Payload)
	clone := e
	clone.Payload = payload
	return clone
}

// truncatePayload enforces MaxPayloadBytes, null-terminating on overflow.
func truncatePayload(payload []byte) []byte {
	if len(payload) <= MaxPayloadBytes {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out
	}
	out := make([]byte, MaxPayloadBytes)
	copy(out, payload[:MaxPayloadBytes-1])
	out[MaxPayloadBytes-1] = 0
	return out
}
