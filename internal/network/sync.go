package network

import "github.com/empower1/powsim/internal/node"

// Synchronize scans every other active node for the longest chain and,
// if one strictly exceeds n's own block count, replaces n's chain with a
// clone of the winner's. The registry lock is held for the duration of
// the scan so two nodes cannot resynchronize against each other
// concurrently and race; the winner's chain lock is then taken via
// SnapshotBlocks (source) before n's own chain lock is taken via
// ReplaceWith (destination), source-then-destination, to avoid deadlock
// against a concurrent synchronize running the opposite direction.
func (r *Registry) Synchronize(n *node.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var winner *node.Node
	var winnerCount int64
	for _, peer := range r.nodes {
		if peer == n || !peer.IsActive() {
			continue
		}
		if c := peer.Chain.BlockCount(); c > winnerCount {
			winner = peer
			winnerCount = c
		}
	}

	if winner == nil || winnerCount <= n.Chain.BlockCount() {
		return
	}

	blocks := winner.Chain.SnapshotBlocks()
	n.Chain.ReplaceWith(blocks)
	r.log.Infow("node resynchronized", "node_id", n.ID, "from_node_id", winner.ID, "block_count", winnerCount)
}
