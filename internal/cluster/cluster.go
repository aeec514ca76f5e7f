// Package cluster holds the one piece of process-wide state this module
// needs: the fixed peer list and the handle to whichever proposer was most
// recently elected leader, threaded explicitly through a single *Context
// built once at process start and passed into every role.
package cluster

import (
	"fmt"
	"sync"
	"time"
)

// Role identifies one of the addresses a peer publishes under its base
// address: the four named remote objects plus the admin HTTP surface.
type Role int

const (
	RoleKVService Role = iota
	RoleProposer
	RoleAcceptor
	RoleLearner
	RoleAdmin
)

// roleOffset maps a role to the port offset from a peer's base port. Each
// peer therefore uses five ports spaced 1000 apart rather than a single
// port, which lets the failure injector unexport the acceptor
// listener alone without disturbing the other three role objects or the
// admin surface.
var roleOffset = map[Role]int{
	RoleKVService: 0,
	RoleProposer:  1000,
	RoleAcceptor:  2000,
	RoleLearner:   3000,
	RoleAdmin:     4000,
}

// PeerAddr is a peer's base address: <host>:<basePort> is the KV service
// endpoint; ForRole derives the other three named bindings plus the admin
// surface from it.
type PeerAddr struct {
	Host string
	Port int
}

func (p PeerAddr) String() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// ForRole derives the address a given role is bound at for this peer.
func (p PeerAddr) ForRole(r Role) PeerAddr {
	return PeerAddr{Host: p.Host, Port: p.Port + roleOffset[r]}
}

// Context holds the fixed peer list, derived role URL lists, and the
// current leader-proposer handle shared by every KV service instance in
// this process.
type Context struct {
	Peers []PeerAddr

	mu             sync.RWMutex
	leaderProposer *PeerAddr

	proposerElectMu sync.Mutex
	lastProposerAt  time.Time

	acceptorElectMu sync.Mutex
	lastAcceptorAt  time.Time
}

// NewContext builds the shared cluster state from the fixed peer list. The
// list is never mutated after construction.
func NewContext(peers []PeerAddr) *Context {
	cp := make([]PeerAddr, len(peers))
	copy(cp, peers)
	return &Context{Peers: cp}
}

func (c *Context) urlsForRole(r Role) []PeerAddr {
	out := make([]PeerAddr, len(c.Peers))
	for i, p := range c.Peers {
		out[i] = p.ForRole(r)
	}
	return out
}

// ProposerURLs returns the proposer addresses, one per peer.
func (c *Context) ProposerURLs() []PeerAddr { return c.urlsForRole(RoleProposer) }

// AcceptorURLs returns the acceptor addresses, one per peer.
func (c *Context) AcceptorURLs() []PeerAddr { return c.urlsForRole(RoleAcceptor) }

// LearnerURLs returns the learner addresses, one per peer.
func (c *Context) LearnerURLs() []PeerAddr { return c.urlsForRole(RoleLearner) }

// SetLeaderProposer records the address most recently elected leader
// proposer.
func (c *Context) SetLeaderProposer(addr PeerAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := addr
	c.leaderProposer = &a
}

// LeaderProposer returns the current leader proposer address, if any has
// been elected yet.
func (c *Context) LeaderProposer() (PeerAddr, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.leaderProposer == nil {
		return PeerAddr{}, false
	}
	return *c.leaderProposer, true
}

// TryBeginProposerElection enforces the 1s debounce against the
// proposer-election routine specifically; it serializes against itself only,
// never against the acceptor routine.
func (c *Context) TryBeginProposerElection(now time.Time, minInterval time.Duration) bool {
	c.proposerElectMu.Lock()
	defer c.proposerElectMu.Unlock()
	if !c.lastProposerAt.IsZero() && now.Sub(c.lastProposerAt) < minInterval {
		return false
	}
	c.lastProposerAt = now
	return true
}

// TryBeginAcceptorElection is the acceptor-routine counterpart of
// TryBeginProposerElection.
func (c *Context) TryBeginAcceptorElection(now time.Time, minInterval time.Duration) bool {
	c.acceptorElectMu.Lock()
	defer c.acceptorElectMu.Unlock()
	if !c.lastAcceptorAt.IsZero() && now.Sub(c.lastAcceptorAt) < minInterval {
		return false
	}
	c.lastAcceptorAt = now
	return true
}
