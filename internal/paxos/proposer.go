package paxos

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/rpcutil"
)

// Proposer is the Paxos driver role. Only the leader proposer ever runs a
// round; followers silently no-op on Propose.
type Proposer struct {
	mu             sync.Mutex
	proposalNumber int64
	value          string
	isLeader       bool

	nodeID string
	ctx    *cluster.Context
	log    *logrus.Logger
}

// NewProposer builds an unelected proposer identified by nodeID, used as
// the tiebreak component of every ProposalNumber it mints.
func NewProposer(nodeID string, ctx *cluster.Context, log *logrus.Logger) *Proposer {
	return &Proposer{nodeID: nodeID, ctx: ctx, log: log}
}

// SetValue records the next value this proposer will drive through
// consensus.
func (p *Proposer) SetValue(args *SetValueArgs, reply *Empty) error {
	p.mu.Lock()
	p.value = args.Value
	p.mu.Unlock()
	return nil
}

// SetLeader updates leadership. Leadership carries no background loop on
// the proposer side (unlike the acceptor); it is read at the top of
// Propose.
func (p *Proposer) SetLeader(args *SetLeaderArgs, reply *Empty) error {
	p.mu.Lock()
	p.isLeader = args.Leader
	p.mu.Unlock()
	return nil
}

// ReceiveHeartbeat is accepted for symmetry with the acceptor role but is
// currently a no-op: the proposer side has no silence monitor in this
// design (only acceptors run the monitor loop).
func (p *Proposer) ReceiveHeartbeat(args *Empty, reply *Empty) error {
	return nil
}

// Propose drives one full Paxos round for the previously-set value if, and
// only if, this proposer is currently the leader. Any other state (not
// leader, no leader-acceptor found, a fan-out error) ends the round; it is
// never retried automatically. The proposer's mutex is held for the whole
// round, so rounds on one proposer never overlap.
func (p *Proposer) Propose(args *ProposeArgs, reply *Empty) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.isLeader {
		p.log.WithField("client", args.ClientID).Debug("propose called on non-leader proposer, ignoring")
		return nil
	}
	p.proposalNumber++
	n := ProposalNumber{Counter: p.proposalNumber, NodeID: p.nodeID}
	value := p.value

	driver, ok := p.findLeaderAcceptor()
	if !ok {
		return fmt.Errorf("propose: no leader acceptor found")
	}

	var prepareReply PrepareReply
	if err := rpcutil.Call(driver.String(), "Acceptor.HandlePrepareRequest", &PrepareArgs{N: n}, &prepareReply); err != nil {
		return fmt.Errorf("propose: prepare phase: %w", err)
	}
	if !prepareReply.Promise {
		p.log.WithField("proposal", n).Info("propose: prepare phase rejected, round ends")
		return nil
	}

	var acceptReply AcceptReply
	if err := rpcutil.Call(driver.String(), "Acceptor.HandleAcceptRequest", &AcceptArgs{N: n, Value: value}, &acceptReply); err != nil {
		return fmt.Errorf("propose: accept phase: %w", err)
	}
	if !acceptReply.Accepted {
		p.log.WithField("proposal", n).Info("propose: accept phase rejected, round ends")
		return nil
	}

	var learnReply LearnReply
	if err := rpcutil.Call(driver.String(), "Acceptor.Learn", &LearnArgs{Value: value}, &learnReply); err != nil {
		return fmt.Errorf("propose: learn phase: %w", err)
	}
	return nil
}

// findLeaderAcceptor scans the acceptor URL list for the first one
// reporting isLeader == true, rather than consulting any cached hint.
func (p *Proposer) findLeaderAcceptor() (cluster.PeerAddr, bool) {
	for _, u := range p.ctx.AcceptorURLs() {
		var r BoolReply
		if err := rpcutil.Call(u.String(), "Acceptor.IsLeader", &Empty{}, &r); err != nil {
			continue
		}
		if r.Value {
			return u, true
		}
	}
	return cluster.PeerAddr{}, false
}

// Snapshot returns read-only leadership/proposal-counter state for the
// admin HTTP surface.
func (p *Proposer) Snapshot() (isLeader bool, proposalNumber int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isLeader, p.proposalNumber
}
