// Package peer bootstraps a full cluster of co-located peers in one
// process: for each base address it builds the KV service, Proposer,
// Acceptor and Learner, binds all four plus the admin HTTP surface, and
// wires the failure injector and initial leader election across the
// whole set.
package peer

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rverma-dev/paxkv/internal/adminhttp"
	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/election"
	"github.com/rverma-dev/paxkv/internal/failinjector"
	"github.com/rverma-dev/paxkv/internal/kvstore"
	"github.com/rverma-dev/paxkv/internal/paxos"
	"github.com/rverma-dev/paxkv/internal/rpchost"
	"github.com/rverma-dev/paxkv/internal/storage"
)

// Peer is one co-located node: one KV service, one Proposer, one
// Acceptor, one Learner, and an admin listener, each on its own derived
// port.
type Peer struct {
	Addr     cluster.PeerAddr
	Store    *storage.Map
	Service  *kvstore.Service
	Proposer *paxos.Proposer

	acceptorMu sync.RWMutex
	acceptor   *paxos.Acceptor

	Learner *paxos.Learner

	kvHost       *rpchost.Host
	proposerHost *rpchost.Host
	acceptorHost *rpchost.Host
	learnerHost  *rpchost.Host
	adminLn      net.Listener
}

func (p *Peer) currentAcceptor() *paxos.Acceptor {
	p.acceptorMu.RLock()
	defer p.acceptorMu.RUnlock()
	return p.acceptor
}

func (p *Peer) proposerSnapshot() (bool, int64) {
	return p.Proposer.Snapshot()
}

func (p *Peer) acceptorSnapshot() (bool, paxos.ProposalNumber) {
	return p.currentAcceptor().Snapshot()
}

// Cluster is every peer co-located in this process, plus the shared
// cluster state and the failure injector that cycles acceptors.
type Cluster struct {
	Ctx   *cluster.Context
	Peers []*Peer

	log      *logrus.Logger
	injector *failinjector.Injector
	stop     chan struct{}
}

// Build constructs and binds every peer named by addrs. The net/rpc and
// admin HTTP listeners are already serving when Build returns; call Start
// to run the initial leader election and the failure injector.
func Build(addrs []cluster.PeerAddr, log *logrus.Logger) (*Cluster, error) {
	c := &Cluster{Ctx: cluster.NewContext(addrs), log: log, stop: make(chan struct{})}

	for _, base := range addrs {
		p, err := c.buildPeer(base)
		if err != nil {
			return nil, fmt.Errorf("build peer %s: %w", base.String(), err)
		}
		c.Peers = append(c.Peers, p)
	}

	acceptorHosts := make([]*rpchost.Host, len(c.Peers))
	acceptorAddrs := make([]cluster.PeerAddr, len(c.Peers))
	for i, p := range c.Peers {
		acceptorHosts[i] = p.acceptorHost
		acceptorAddrs[i] = p.Addr.ForRole(cluster.RoleAcceptor)
	}
	c.injector = failinjector.New(acceptorHosts, acceptorAddrs, c.rebindAcceptor, log)
	return c, nil
}

func (c *Cluster) buildPeer(base cluster.PeerAddr) (*Peer, error) {
	store := storage.NewMap()
	proposer := paxos.NewProposer(base.String(), c.Ctx, c.log)
	learner := paxos.NewLearner(store, c.log)
	svc := kvstore.NewService(store, c.Ctx, c.log)
	acceptor := paxos.NewAcceptor(c.Ctx, c.log, c.onAcceptorLeaderLost)

	p := &Peer{Addr: base, Store: store, Service: svc, Proposer: proposer, acceptor: acceptor, Learner: learner}

	var err error
	if p.kvHost, err = rpchost.Listen(base.ForRole(cluster.RoleKVService).String(), svc); err != nil {
		return nil, err
	}
	if p.proposerHost, err = rpchost.Listen(base.ForRole(cluster.RoleProposer).String(), proposer); err != nil {
		return nil, err
	}
	if p.acceptorHost, err = rpchost.Listen(base.ForRole(cluster.RoleAcceptor).String(), acceptor); err != nil {
		return nil, err
	}
	if p.learnerHost, err = rpchost.Listen(base.ForRole(cluster.RoleLearner).String(), learner); err != nil {
		return nil, err
	}

	adminAddr := base.ForRole(cluster.RoleAdmin)
	ln, err := net.Listen("tcp", adminAddr.String())
	if err != nil {
		return nil, fmt.Errorf("listen admin %s: %w", adminAddr.String(), err)
	}
	p.adminLn = ln
	srv := adminhttp.NewServer(base, svc, p.proposerSnapshot, p.acceptorSnapshot)
	go func() {
		if err := http.Serve(ln, srv); err != nil {
			c.log.WithError(err).WithField("peer", adminAddr.String()).Debug("admin http server stopped")
		}
	}()

	return p, nil
}

// onAcceptorLeaderLost is the callback every Acceptor's monitor loop
// invokes on leader silence. It is a method value, not a closure over any
// one peer, since the trigger is cluster-wide.
func (c *Cluster) onAcceptorLeaderLost() {
	election.AssignLeadershipAcceptor(c.Ctx, c.log, time.Now())
}

// rebindAcceptor satisfies failinjector.RebindFunc: it builds a fresh
// Acceptor at addr, replaces the owning peer's live reference, and
// returns the new host.
func (c *Cluster) rebindAcceptor(addr cluster.PeerAddr) (*rpchost.Host, error) {
	for _, p := range c.Peers {
		if p.Addr.ForRole(cluster.RoleAcceptor) != addr {
			continue
		}
		fresh := paxos.NewAcceptor(c.Ctx, c.log, c.onAcceptorLeaderLost)
		host, err := rpchost.Listen(addr.String(), fresh)
		if err != nil {
			return nil, err
		}
		p.acceptorMu.Lock()
		p.acceptor = fresh
		p.acceptorHost = host
		p.acceptorMu.Unlock()
		return host, nil
	}
	return nil, fmt.Errorf("rebindAcceptor: no peer bound at %s", addr.String())
}

// Start runs the initial leader election for both proposer and acceptor,
// then starts the failure injector. Blocking net/rpc/HTTP serve loops are
// already running in background goroutines since Build.
func (c *Cluster) Start() {
	now := time.Now()
	election.AssignLeadershipProposer(c.Ctx, c.log, now)
	election.AssignLeadershipAcceptor(c.Ctx, c.log, now)
	c.injector.Start(c.stop)
}

// Stop closes every listener in the cluster and halts the failure
// injector's scheduling chain.
func (c *Cluster) Stop() {
	close(c.stop)
	for _, p := range c.Peers {
		p.kvHost.Close()
		p.proposerHost.Close()
		p.acceptorHost.Close()
		p.learnerHost.Close()
		p.adminLn.Close()
	}
}
