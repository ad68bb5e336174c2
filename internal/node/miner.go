package node

import (
	"time"

	"github.com/empower1/powsim/internal/chainmodel"
)

// minerLoop is the per-node worker body: while neither the node's own
// stop signal nor the network's shutdown signal is set, and the node is
// active, it clones the scratchpad, mines it, races to commit it,
// optionally tampers if malicious, then sleeps.
func (n *Node) minerLoop() {
	defer n.wg.Done()

	for {
		if n.stopRequested() || n.network.ShuttingDown() {
			return
		}
		if !n.IsActive() {
			time.Sleep(n.cfg.MinerLoopInterval)
			continue
		}
		if !n.IsMining() {
			time.Sleep(n.cfg.MinerLoopInterval)
			continue
		}

		candidate := n.Chain.ScratchpadSnapshot()

		ok := n.mine(candidate)
		if ok && n.IsActive() {
			if n.Chain.TryCommitMined(candidate) {
				n.log.Infow("mined block accepted locally",
					"node_id", n.ID, "index", candidate.Index, "hash", candidate.Hash)
				n.broadcaster.Broadcast(candidate, n.ID)
			} else {
				n.log.Debugw("mined block lost the commit race",
					"node_id", n.ID, "index", candidate.Index)
			}
		}

		if n.IsMalicious() {
			n.maybeTamper()
		}

		time.Sleep(n.cfg.MinerLoopInterval)
	}
}

// mine runs proof-of-work on candidate at the node's configured
// difficulty. It searches nonces from a randomized starting point,
// yielding cooperatively every K trials so a single miner cannot starve
// the process. Mining aborts and returns false if either shutdown signal
// fires mid-search.
func (n *Node) mine(candidate *chainmodel.Block) bool {
	difficulty := n.cfg.Difficulty
	every := n.cfg.ProofOfWorkYieldEvery
	if every <= 0 {
		every = 1
	}

	// The nonce search starts from a random point, rather than always at
	// 0, purely so concurrently-racing nodes don't walk the same nonce
	// sequence in lockstep. The only correctness contract is
	// HasRequiredWork below.
	nonce := n.rng.uint64()
	for {
		candidate.SetNonce(nonce)
		n.attempts.Add(1)
		if candidate.HasRequiredWork(difficulty) {
			return true
		}

		nonce++
		if nonce%uint64(every) == 0 {
			if n.stopRequested() || n.network.ShuttingDown() || !n.IsActive() {
				return false
			}
			time.Sleep(n.cfg.MiningBackoff)
		}
	}
}
