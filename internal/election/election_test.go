package election

import (
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/paxos"
	"github.com/rverma-dev/paxkv/internal/rpchost"
)

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestAssignLeadershipProposerElectsExactlyOne(t *testing.T) {
	log := silentLogger()
	peers := make([]cluster.PeerAddr, 3)
	for i := range peers {
		peers[i] = cluster.PeerAddr{Host: "127.0.0.1", Port: freePort(t)}
	}
	ctx := cluster.NewContext(peers)

	proposers := make([]*paxos.Proposer, len(peers))
	for i, addr := range peers {
		p := paxos.NewProposer(addr.String(), ctx, log)
		proposers[i] = p
		host, err := rpchost.Listen(addr.ForRole(cluster.RoleProposer).String(), p)
		require.NoError(t, err)
		t.Cleanup(func() { host.Close() })
	}

	chosen, ok := AssignLeadershipProposer(ctx, log, time.Now())
	require.True(t, ok)

	leaders := 0
	for _, p := range proposers {
		isLeader, _ := p.Snapshot()
		if isLeader {
			leaders++
		}
	}
	assert.Equal(t, 1, leaders)

	known, ok := ctx.LeaderProposer()
	require.True(t, ok)
	assert.Equal(t, chosen, known)
}

func TestAssignLeadershipProposerDebounces(t *testing.T) {
	peers := []cluster.PeerAddr{{Host: "127.0.0.1", Port: freePort(t)}}
	ctx := cluster.NewContext(peers)
	log := silentLogger()

	now := time.Now()
	_, ok := AssignLeadershipProposer(ctx, log, now)
	assert.True(t, ok, "peer unreachability is swallowed per-peer; the election itself still proceeds")

	_, ok = AssignLeadershipProposer(ctx, log, now.Add(100*time.Millisecond))
	assert.False(t, ok, "second call within 1s must be debounced regardless of listener state")
}
