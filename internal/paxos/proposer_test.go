package paxos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/rpchost"
	"github.com/rverma-dev/paxkv/internal/rpcutil"
	"github.com/rverma-dev/paxkv/internal/storage"
)

func TestProposeEndToEndAppliesValueOnEveryLearner(t *testing.T) {
	log := silentLogger()

	peers := make([]cluster.PeerAddr, 3)
	for i := range peers {
		peers[i] = cluster.PeerAddr{Host: "127.0.0.1", Port: freePort(t)}
	}
	ctx := cluster.NewContext(peers)

	stores := make([]*storage.Map, len(peers))
	for i, addr := range peers {
		acc := NewAcceptor(ctx, log, nil)
		accHost, err := rpchost.Listen(addr.ForRole(cluster.RoleAcceptor).String(), acc)
		require.NoError(t, err)
		t.Cleanup(func() { accHost.Close() })

		stores[i] = storage.NewMap()
		learner := NewLearner(stores[i], log)
		learnHost, err := rpchost.Listen(addr.ForRole(cluster.RoleLearner).String(), learner)
		require.NoError(t, err)
		t.Cleanup(func() { learnHost.Close() })
	}

	leaderAcceptorAddr := peers[0].ForRole(cluster.RoleAcceptor)
	var empty Empty
	require.NoError(t, rpcutil.Call(leaderAcceptorAddr.String(), "Acceptor.SetLeader", &SetLeaderArgs{Leader: true}, &empty))

	proposer := NewProposer("p0", ctx, log)
	require.NoError(t, proposer.SetLeader(&SetLeaderArgs{Leader: true}, &empty))
	require.NoError(t, proposer.SetValue(&SetValueArgs{Value: "PUT player Kohli"}, &empty))

	require.NoError(t, proposer.Propose(&ProposeArgs{ClientID: "c1"}, &empty))

	for i, s := range stores {
		v, ok := s.Get("player")
		assert.True(t, ok, "learner %d should have applied the learned value", i)
		assert.Equal(t, "Kohli", v)
	}
}

func TestProposeNoOpsWhenNotLeader(t *testing.T) {
	ctx := cluster.NewContext(nil)
	proposer := NewProposer("p0", ctx, silentLogger())

	var empty Empty
	require.NoError(t, proposer.Propose(&ProposeArgs{ClientID: "c1"}, &empty))
}

func TestProposeErrorsWhenNoLeaderAcceptor(t *testing.T) {
	peers := []cluster.PeerAddr{{Host: "127.0.0.1", Port: freePort(t)}}
	ctx := cluster.NewContext(peers)
	log := silentLogger()

	acc := NewAcceptor(ctx, log, nil)
	host, err := rpchost.Listen(peers[0].ForRole(cluster.RoleAcceptor).String(), acc)
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })

	proposer := NewProposer("p0", ctx, log)
	var empty Empty
	require.NoError(t, proposer.SetLeader(&SetLeaderArgs{Leader: true}, &empty))

	err = proposer.Propose(&ProposeArgs{ClientID: "c1"}, &empty)
	assert.Error(t, err, "no acceptor has isLeader set, so propose must fail")
}
