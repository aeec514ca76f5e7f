package paxos

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/rpcutil"
)

// heartbeatInterval is the leader-acceptor's emit cadence.
const heartbeatInterval = 5 * time.Second

// monitorInterval is the non-leader-acceptor's liveness check cadence.
const monitorInterval = 7 * time.Second

// Acceptor is the Paxos voter role. highestProposal never decreases
// (invariant 1); once it PROMISEs n, every subsequent prepare for m <= n is
// rejected (invariant 2).
type Acceptor struct {
	mu            sync.Mutex
	highest       ProposalNumber
	hasAccepted   bool
	acceptedValue string
	isLeader      bool

	leaderAlive int32 // atomic bool, reset each monitor tick

	ctx *cluster.Context
	log *logrus.Logger

	// onLeaderLost is invoked by the monitor loop when the leader has gone
	// silent past monitorInterval. It is injected rather than imported so
	// this package never depends on the election package, which itself
	// depends on paxos for wire types.
	onLeaderLost func()

	loopMu sync.Mutex
	cancel context.CancelFunc
}

// NewAcceptor builds an unelected acceptor. onLeaderLost is called, at most
// once per SetLeader(false) window, when the monitor loop decides the
// leader has gone silent.
func NewAcceptor(ctx *cluster.Context, log *logrus.Logger, onLeaderLost func()) *Acceptor {
	return &Acceptor{ctx: ctx, log: log, onLeaderLost: onLeaderLost}
}

// Prepare is the Phase 1 vote: PROMISE iff n is strictly greater than
// anything previously promised or accepted.
func (a *Acceptor) Prepare(args *PrepareArgs, reply *PrepareReply) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if Compare(args.N, a.highest) > 0 {
		a.highest = args.N
		reply.Promise = true
	} else {
		reply.Promise = false
	}
	return nil
}

// Accept is the Phase 2 vote: ACCEPT iff n >= highest. Since highest
// records both promises and accepts, an accept for the number just
// promised succeeds, an accept below a later, higher promise is rejected,
// and an accept above highest succeeds even without a prior prepare for it.
func (a *Acceptor) Accept(args *AcceptArgs, reply *AcceptReply) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if Compare(args.N, a.highest) >= 0 {
		a.highest = args.N
		a.acceptedValue = args.Value
		a.hasAccepted = true
		reply.Accepted = true
	} else {
		reply.Accepted = false
	}
	return nil
}

// HandlePrepareRequest is the leader-acceptor's Phase 1 coordinator: fan out
// Prepare to every acceptor, treating an unreachable peer as REJECT, and
// report PROMISE iff a strict majority promised.
func (a *Acceptor) HandlePrepareRequest(args *PrepareArgs, reply *PrepareReply) error {
	urls := a.ctx.AcceptorURLs()
	promises := 0
	for _, u := range urls {
		var r PrepareReply
		if err := rpcutil.Call(u.String(), "Acceptor.Prepare", args, &r); err != nil {
			a.log.WithError(err).WithField("peer", u.String()).Warn("prepare fan-out: peer unreachable, counted as reject")
			continue
		}
		if r.Promise {
			promises++
		}
	}
	reply.Promise = promises*2 > len(urls)
	return nil
}

// HandleAcceptRequest is the leader-acceptor's Phase 2 coordinator,
// symmetric to HandlePrepareRequest.
func (a *Acceptor) HandleAcceptRequest(args *AcceptArgs, reply *AcceptReply) error {
	urls := a.ctx.AcceptorURLs()
	accepts := 0
	for _, u := range urls {
		var r AcceptReply
		if err := rpcutil.Call(u.String(), "Acceptor.Accept", args, &r); err != nil {
			a.log.WithError(err).WithField("peer", u.String()).Warn("accept fan-out: peer unreachable, counted as reject")
			continue
		}
		if r.Accepted {
			accepts++
		}
	}
	reply.Accepted = accepts*2 > len(urls)
	return nil
}

// Learn broadcasts the decided value to every learner. Unlike the vote
// fan-outs, a learner failure here propagates as an error rather than
// being swallowed.
func (a *Acceptor) Learn(args *LearnArgs, reply *LearnReply) error {
	for _, u := range a.ctx.LearnerURLs() {
		var r Empty
		if err := rpcutil.Call(u.String(), "Learner.Learn", args, &r); err != nil {
			return err
		}
	}
	reply.Result = "Learned: " + args.Value
	return nil
}

// IsLeader reports whether this acceptor is currently the driver. Proposers
// scan the acceptor list calling this to find the driver.
func (a *Acceptor) IsLeader(args *Empty, reply *BoolReply) error {
	a.mu.Lock()
	reply.Value = a.isLeader
	a.mu.Unlock()
	return nil
}

// SetLeader flips leadership and (re)starts the corresponding background
// loop: heartbeat emitter when becoming leader, silence monitor otherwise.
func (a *Acceptor) SetLeader(args *SetLeaderArgs, reply *Empty) error {
	a.mu.Lock()
	a.isLeader = args.Leader
	a.mu.Unlock()
	a.restartLoop(args.Leader)
	return nil
}

// ReceiveHeartbeat marks the leader as alive for the current monitor
// window.
func (a *Acceptor) ReceiveHeartbeat(args *Empty, reply *Empty) error {
	atomic.StoreInt32(&a.leaderAlive, 1)
	return nil
}

// Snapshot returns read-only leadership/highest-proposal state for the
// admin HTTP surface.
func (a *Acceptor) Snapshot() (isLeader bool, highest ProposalNumber) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isLeader, a.highest
}

func (a *Acceptor) restartLoop(leader bool) {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if leader {
		go a.heartbeatLoop(ctx)
	} else {
		atomic.StoreInt32(&a.leaderAlive, 0)
		go a.monitorLoop(ctx)
	}
}

// heartbeatLoop pings every peer acceptor's ReceiveHeartbeat every
// heartbeatInterval while this acceptor remains the leader.
func (a *Acceptor) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, u := range a.ctx.AcceptorURLs() {
				if err := rpcutil.Call(u.String(), "Acceptor.ReceiveHeartbeat", &Empty{}, &Empty{}); err != nil {
					a.log.WithError(err).WithField("peer", u.String()).Debug("heartbeat: peer unreachable")
				}
			}
		}
	}
}

// monitorLoop checks every monitorInterval whether a heartbeat has arrived
// since the last tick; if not, it triggers re-election once and cancels
// itself.
func (a *Acceptor) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if atomic.SwapInt32(&a.leaderAlive, 0) == 0 {
				if a.onLeaderLost != nil {
					a.onLeaderLost()
				}
				return
			}
		}
	}
}
