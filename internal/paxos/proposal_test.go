package paxos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareOrdersByCounterThenNodeID(t *testing.T) {
	assert.Equal(t, -1, Compare(ProposalNumber{Counter: 1, NodeID: "b"}, ProposalNumber{Counter: 2, NodeID: "a"}))
	assert.Equal(t, 1, Compare(ProposalNumber{Counter: 2, NodeID: "a"}, ProposalNumber{Counter: 1, NodeID: "b"}))
	assert.Equal(t, -1, Compare(ProposalNumber{Counter: 1, NodeID: "a"}, ProposalNumber{Counter: 1, NodeID: "b"}))
	assert.Equal(t, 0, Compare(ProposalNumber{Counter: 1, NodeID: "a"}, ProposalNumber{Counter: 1, NodeID: "a"}))
}
