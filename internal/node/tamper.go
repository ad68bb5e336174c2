package node

// FraudulentEventType is the event type the tamper procedure looks for.
const FraudulentEventType = 1

// fraudulentPayload is the literal the tamper procedure rewrites a
// targeted event's payload to.
var fraudulentPayload = []byte("TAMPERED: this payload was rewritten by a malicious node")

// tamperProbability is the per-iteration chance a malicious node's
// miner loop invokes the tamper procedure.
const tamperProbability = 0.05

// maybeTamper invokes Tamper with small probability, so a malicious
// node's tampering is occasional rather than constant.
func (n *Node) maybeTamper() {
	if n.rng.float64() < tamperProbability {
		n.Tamper()
	}
}

// Tamper rewrites the first type-1 event's payload in the first
// non-genesis block and recomputes only that event's hash under the
// chain lock, deliberately leaving the block's MerkleRoot and Hash
// stale. Returns true if a target event was found and tampered with.
func (n *Node) Tamper() bool {
	tampered := n.Chain.TamperBlock(FraudulentEventType, fraudulentPayload)
	if tampered {
		n.log.Warnw("malicious node tampered with a committed block",
			"node_id", n.ID)
	}
	return tampered
}
