// Package network implements the process-wide node registry: broadcast
// and fork resolution between peers, the consensus oracle, and
// stop/restart/resynchronize node lifecycle management. Broadcast is
// synchronous and lock-protected: the registry lock guards the peer
// list and is released before each peer's own chain lock decides that
// peer's accept/reject outcome independently.
package network

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/empower1/powsim/internal/config"
	"github.com/empower1/powsim/internal/node"
)

var (
	// ErrRegistryFull is returned by Registry.AddNode once MaxNodes
	// participants have been registered.
	ErrRegistryFull = errors.New("node registry is full")
)

// Registry is the process-wide network: an ordered array of nodes and
// the coordination lock protecting it. It satisfies node.ShutdownSignal,
// so each node's worker can observe the network-wide shutdown flag
// through this one explicit value rather than a package-level global.
type Registry struct {
	cfg config.Config
	log *zap.SugaredLogger

	mu       sync.Mutex
	nodes    []*node.Node
	shutdown atomic.Bool
}

// NewRegistry creates an empty registry for the given configuration.
func NewRegistry(cfg config.Config, log *zap.SugaredLogger) *Registry {
	return &Registry{cfg: cfg, log: log}
}

// ShuttingDown reports whether the network-wide shutdown flag is set.
// Implements node.ShutdownSignal.
func (r *Registry) ShuttingDown() bool {
	return r.shutdown.Load()
}

// Shutdown sets the global shutdown flag and stops every node, joining
// each worker. Exit is clean (no process termination call) on return.
func (r *Registry) Shutdown() {
	r.shutdown.Store(true)

	r.mu.Lock()
	nodes := append([]*node.Node(nil), r.nodes...)
	r.mu.Unlock()

	for _, n := range nodes {
		n.Stop()
	}
	r.log.Infow("network shut down")
}

// AddNode registers a new node, mining and/or malicious as requested,
// and starts its worker. The node's id is its index in the registry.
// Fails with ErrRegistryFull once MaxNodes nodes are registered.
func (r *Registry) AddNode(mining, malicious bool) (*node.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.nodes) >= r.cfg.MaxNodes {
		return nil, ErrRegistryFull
	}
	id := len(r.nodes)
	n := node.New(id, r.cfg, r, r, mining, malicious, r.log)
	r.nodes = append(r.nodes, n)
	n.Start()
	r.log.Infow("node registered", "node_id", id, "mining", mining, "malicious", malicious)
	return n, nil
}

// Node returns the node at the given registry id, or an error if the id
// is out of range. Node itself reports the error so callers that need it
// can distinguish; the driver-facing StopNode/StartNode below instead
// silently ignore an invalid id.
func (r *Registry) Node(id int) (*node.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodeLocked(id)
}

func (r *Registry) nodeLocked(id int) (*node.Node, error) {
	if id < 0 || id >= len(r.nodes) {
		return nil, fmt.Errorf("no node with id %d", id)
	}
	return r.nodes[id], nil
}

// Nodes returns a snapshot slice of every registered node.
func (r *Registry) Nodes() []*node.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*node.Node(nil), r.nodes...)
}

// StopNode stops the node with the given id. An invalid id is silently
// ignored.
func (r *Registry) StopNode(id int) {
	n, err := r.Node(id)
	if err != nil {
		return
	}
	n.Stop()
}

// StartNode restarts the node with the given id and resynchronizes it
// against the network's longest chain. An invalid id is silently
// ignored.
func (r *Registry) StartNode(id int) {
	n, err := r.Node(id)
	if err != nil {
		return
	}
	n.Start()
	r.Synchronize(n)
}
