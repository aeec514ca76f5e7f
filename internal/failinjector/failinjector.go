// Package failinjector implements the single background scheduler that
// periodically force-unexports a random acceptor and rebinds a fresh one
// at the same address after a delay.
package failinjector

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/rpchost"
)

// RebindFunc constructs and binds a fresh acceptor at addr, returning the
// host now serving it. Supplied by internal/peer, since building an
// Acceptor requires wiring the onLeaderLost callback into the election
// package - a dependency this package has no reason to take on.
type RebindFunc func(addr cluster.PeerAddr) (*rpchost.Host, error)

// Injector owns the live acceptor hosts for every peer in the cluster and
// cycles exactly one of them through unexport-then-restart at a time.
type Injector struct {
	mu     sync.Mutex
	hosts  []*rpchost.Host
	addrs  []cluster.PeerAddr
	rebind RebindFunc
	log    *logrus.Logger
}

// New builds an injector over the cluster's acceptor hosts, one pair of
// (host, address) per peer, in the same order as cluster.Context.Peers.
func New(hosts []*rpchost.Host, addrs []cluster.PeerAddr, rebind RebindFunc, log *logrus.Logger) *Injector {
	return &Injector{
		hosts:  append([]*rpchost.Host(nil), hosts...),
		addrs:  append([]cluster.PeerAddr(nil), addrs...),
		rebind: rebind,
		log:    log,
	}
}

// Start schedules the first failure cycle in the background. Every cycle
// reschedules its own successor recursively until stop is closed; a cycle
// whose rebind fails ends the chain without scheduling a successor.
func (in *Injector) Start(stop <-chan struct{}) {
	go in.scheduleFailure(stop)
}

// randomDelay returns a uniform [10s, 20s] delay.
func randomDelay() time.Duration {
	return time.Duration(10+rand.Intn(11)) * time.Second
}

func (in *Injector) scheduleFailure(stop <-chan struct{}) {
	in.mu.Lock()
	n := len(in.hosts)
	in.mu.Unlock()
	if n == 0 {
		return
	}
	slot := rand.Intn(n)

	select {
	case <-stop:
		return
	case <-time.After(randomDelay()):
	}

	in.mu.Lock()
	host := in.hosts[slot]
	addr := in.addrs[slot]
	in.mu.Unlock()

	if host == nil {
		// Null reference: retry selection immediately.
		go in.scheduleFailure(stop)
		return
	}

	if err := host.Close(); err != nil {
		in.log.WithError(err).WithField("peer", addr.String()).Warn("failure injector: close failed")
	} else {
		in.log.WithField("peer", addr.String()).Warn("failure injector: acceptor unexported")
	}

	go in.scheduleRestart(stop, slot, addr)
}

func (in *Injector) scheduleRestart(stop <-chan struct{}, slot int, addr cluster.PeerAddr) {
	select {
	case <-stop:
		return
	case <-time.After(randomDelay()):
	}

	fresh, err := in.rebind(addr)
	if err != nil {
		in.log.WithError(err).WithField("peer", addr.String()).Error("failure injector: rebind failed")
		return
	}

	in.mu.Lock()
	in.hosts[slot] = fresh
	in.mu.Unlock()

	in.log.WithField("peer", addr.String()).Info("failure injector: acceptor restarted")
	go in.scheduleFailure(stop)
}
