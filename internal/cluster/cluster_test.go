package cluster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeerAddrForRoleDerivesOffsetPorts(t *testing.T) {
	base := PeerAddr{Host: "localhost", Port: 12345}

	assert.Equal(t, "localhost:12345", base.ForRole(RoleKVService).String())
	assert.Equal(t, "localhost:13345", base.ForRole(RoleProposer).String())
	assert.Equal(t, "localhost:14345", base.ForRole(RoleAcceptor).String())
	assert.Equal(t, "localhost:15345", base.ForRole(RoleLearner).String())
	assert.Equal(t, "localhost:16345", base.ForRole(RoleAdmin).String())
}

func TestURLListsOnePerPeer(t *testing.T) {
	peers := []PeerAddr{{Host: "h", Port: 1}, {Host: "h", Port: 2}, {Host: "h", Port: 3}}
	c := NewContext(peers)

	assert.Len(t, c.ProposerURLs(), 3)
	assert.Len(t, c.AcceptorURLs(), 3)
	assert.Len(t, c.LearnerURLs(), 3)
	assert.Equal(t, "h:2001", c.AcceptorURLs()[0].String())
}

func TestLeaderProposerRoundTrip(t *testing.T) {
	c := NewContext([]PeerAddr{{Host: "h", Port: 1}})

	_, ok := c.LeaderProposer()
	assert.False(t, ok)

	c.SetLeaderProposer(PeerAddr{Host: "h", Port: 1001})
	addr, ok := c.LeaderProposer()
	assert.True(t, ok)
	assert.Equal(t, "h:1001", addr.String())
}

func TestElectionDebounceSerializesIndependently(t *testing.T) {
	c := NewContext([]PeerAddr{{Host: "h", Port: 1}})
	now := time.Now()

	assert.True(t, c.TryBeginProposerElection(now, time.Second))
	assert.False(t, c.TryBeginProposerElection(now.Add(500*time.Millisecond), time.Second))
	assert.True(t, c.TryBeginProposerElection(now.Add(2*time.Second), time.Second))

	// Acceptor debounce is independent of the proposer debounce.
	assert.True(t, c.TryBeginAcceptorElection(now, time.Second))
}
