// Package node implements the per-node participant: a chain replica, a
// worker goroutine running the mining loop, and the {mining, malicious,
// active} flags that control its behavior.
package node

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empower1/powsim/internal/chainmodel"
	"github.com/empower1/powsim/internal/config"
)

// Broadcaster is implemented by the network registry. A node does not
// know about its peers directly; it only knows how to hand a newly
// mined block to the broadcaster once it has committed locally.
type Broadcaster interface {
	Broadcast(block *chainmodel.Block, senderID int)
}

// ShutdownSignal is a read-only view of the network-wide shutdown flag.
// It is owned by the network registry, not by any one node, so a node's
// worker can observe it without reaching into a process-wide global.
type ShutdownSignal interface {
	ShuttingDown() bool
}

// Node is a participant owning one chain replica and one worker. Its
// is_active flag is independent of the network-wide shutdown signal:
// is_active is toggled per-node by Stop/Start (node failure/recovery),
// while the shutdown signal tears down the whole simulated network at
// once.
type Node struct {
	ID    int
	UUID  uuid.UUID
	Chain *chainmodel.Chain

	cfg         config.Config
	log         *zap.SugaredLogger
	broadcaster Broadcaster
	network     ShutdownSignal

	mu          sync.Mutex
	isMining    bool
	isMalicious bool
	isActive    bool

	stopChan chan struct{}
	wg       sync.WaitGroup

	rng      *rng
	attempts atomic.Uint64
}

// New creates a node with the given registry id, owning a fresh chain.
// It does not start the worker; call Start for that.
func New(id int, cfg config.Config, broadcaster Broadcaster, network ShutdownSignal, mining, malicious bool, log *zap.SugaredLogger) *Node {
	return &Node{
		ID:          id,
		UUID:        uuid.New(),
		Chain:       chainmodel.New(cfg),
		cfg:         cfg,
		log:         log,
		broadcaster: broadcaster,
		network:     network,
		isMining:    mining,
		isMalicious: malicious,
		isActive:    true,
		rng:         newRNG(uint64(id) + 1),
	}
}

// IsMining, IsMalicious, and IsActive report the node's current flags.
func (n *Node) IsMining() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isMining
}

func (n *Node) IsMalicious() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isMalicious
}

func (n *Node) IsActive() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isActive
}

// Attempts returns the number of proof-of-work nonce trials this node has
// run across its lifetime, exposed so tests and the demo driver can
// observe mining throughput without hooking the miner loop directly.
func (n *Node) Attempts() uint64 {
	return n.attempts.Load()
}

// setActive sets the active flag under the node's own lock. Stop/Start
// serialize concurrent toggles this way rather than via the registry
// lock; a concurrent Synchronize only reads IsActive, so this is
// race-free without requiring the registry lock to be held here too.
func (n *Node) setActive(active bool) {
	n.mu.Lock()
	n.isActive = active
	n.mu.Unlock()
}

// Start spawns the node's worker goroutine running the mining loop
// (node/miner.go). If the worker is already running, Start is a no-op.
func (n *Node) Start() {
	if n.stopChan != nil {
		select {
		case <-n.stopChan:
			// previously stopped; fall through to respawn
		default:
			return // already running
		}
	}
	n.stopChan = make(chan struct{})
	n.setActive(true)
	n.wg.Add(1)
	go n.minerLoop()
	n.log.Infow("node started", "node_id", n.ID)
}

// Stop sets is_active false, signals the worker to exit, and joins it.
// Stopping an already-stopped node is a no-op.
func (n *Node) Stop() {
	n.setActive(false)
	if n.stopChan != nil && !n.stopRequested() {
		close(n.stopChan)
	}
	n.wg.Wait()
	n.log.Infow("node stopped", "node_id", n.ID)
}

// stopRequested reports whether this node's worker has individually been
// asked to stop (as opposed to the network-wide shutdown signal), polled
// at the top of every miner-loop iteration.
func (n *Node) stopRequested() bool {
	select {
	case <-n.stopChan:
		return true
	default:
		return false
	}
}
