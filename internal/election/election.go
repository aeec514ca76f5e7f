// Package election implements the cluster's two independent leader
// selection routines: one for proposers, one for acceptors. Neither
// routine imports the paxos package's concrete role types; both speak to
// peers purely over net/rpc, so there is no import cycle with paxos (which
// needs a callback into this package's effect, not its types).
package election

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/paxos"
	"github.com/rverma-dev/paxkv/internal/rpcutil"
)

// MinInterval is the debounce window shared by both routines.
const MinInterval = 1 * time.Second

// AssignLeadershipProposer picks a leader uniformly at random from the
// proposer URL list and tells every proposer its new leadership status.
// Returns the chosen address and true, or the zero value and false if the
// call was debounced.
func AssignLeadershipProposer(ctx *cluster.Context, log *logrus.Logger, now time.Time) (cluster.PeerAddr, bool) {
	if !ctx.TryBeginProposerElection(now, MinInterval) {
		return cluster.PeerAddr{}, false
	}

	urls := ctx.ProposerURLs()
	if len(urls) == 0 {
		return cluster.PeerAddr{}, false
	}
	chosen := urls[rand.Intn(len(urls))]

	for _, u := range urls {
		args := &paxos.SetLeaderArgs{Leader: u == chosen}
		if err := rpcutil.Call(u.String(), "Proposer.SetLeader", args, &paxos.Empty{}); err != nil {
			log.WithError(err).WithField("peer", u.String()).Warn("assignLeadershipProposer: peer unreachable, skipped")
		}
	}

	ctx.SetLeaderProposer(chosen)
	log.WithField("leader", chosen.String()).Info("elected leader proposer")
	return chosen, true
}

// AssignLeadershipAcceptor is the acceptor-side counterpart of
// AssignLeadershipProposer. It serializes only against itself.
func AssignLeadershipAcceptor(ctx *cluster.Context, log *logrus.Logger, now time.Time) bool {
	if !ctx.TryBeginAcceptorElection(now, MinInterval) {
		return false
	}

	urls := ctx.AcceptorURLs()
	if len(urls) == 0 {
		return false
	}
	chosen := urls[rand.Intn(len(urls))]

	for _, u := range urls {
		args := &paxos.SetLeaderArgs{Leader: u == chosen}
		if err := rpcutil.Call(u.String(), "Acceptor.SetLeader", args, &paxos.Empty{}); err != nil {
			log.WithError(err).WithField("peer", u.String()).Warn("assignLeadershipAcceptor: peer unreachable, skipped")
		}
	}

	log.WithField("leader", chosen.String()).Info("elected leader acceptor")
	return true
}
