package network

import (
	"github.com/empower1/powsim/internal/chainmodel"
)

// Broadcast delivers an accepted block to every other active node. The
// registry lock is taken only to snapshot the current peer list; each
// peer's chain lock is then taken independently for that peer's own
// accept/reject decision, so one peer rejecting a block never blocks
// delivery to the others.
func (r *Registry) Broadcast(block *chainmodel.Block, senderID int) {
	r.mu.Lock()
	peers := make([]*chainmodel.Chain, 0, len(r.nodes))
	ids := make([]int, 0, len(r.nodes))
	actives := make([]bool, 0, len(r.nodes))
	for _, n := range r.nodes {
		if n.ID == senderID {
			continue
		}
		peers = append(peers, n.Chain)
		ids = append(ids, n.ID)
		actives = append(actives, n.IsActive())
	}
	r.mu.Unlock()

	for i, chain := range peers {
		if !actives[i] {
			continue
		}
		r.deliver(chain, ids[i], block)
	}
}

// deliver runs the four acceptance checks against one peer's chain:
// proof-of-work, event validity, linkage, and length. Rejection at any
// step is silent and local to that peer.
func (r *Registry) deliver(chain *chainmodel.Chain, peerID int, block *chainmodel.Block) {
	if !block.HasRequiredWork(r.cfg.Difficulty) {
		r.log.Debugw("broadcast rejected: insufficient proof of work", "peer_id", peerID, "hash", block.Hash)
		return
	}
	for _, e := range block.Events {
		if !chainmodel.ValidateEvent(e) {
			r.log.Debugw("broadcast rejected: invalid event", "peer_id", peerID)
			return
		}
	}

	if err := chain.TryAcceptBroadcast(block); err != nil {
		r.log.Debugw("broadcast rejected", "peer_id", peerID, "reason", err.Error())
		return
	}
	r.log.Infow("broadcast accepted", "peer_id", peerID, "index", block.Index, "hash", block.Hash)
}
