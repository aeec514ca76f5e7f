// Package kvstore implements the client-facing KV Service role: the
// single net/rpc entry point clients call, which routes writes through
// consensus and serves reads from the local replica.
package kvstore

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/command"
	"github.com/rverma-dev/paxkv/internal/paxos"
	"github.com/rverma-dev/paxkv/internal/rpcutil"
	"github.com/rverma-dev/paxkv/internal/storage"
)

// ExecuteArgs carries one client command.
type ExecuteArgs struct {
	ClientID string
	Command  string
}

// ExecuteReply carries the literal response string the client prints.
type ExecuteReply struct {
	Result string
}

// Service is the co-located KV Service + Learner's shared map owner.
type Service struct {
	store *storage.Map
	ctx   *cluster.Context
	log   *logrus.Logger
}

// NewService builds a KV service reading and writing store, routing writes
// through the leader proposer recorded in ctx.
func NewService(store *storage.Map, ctx *cluster.Context, log *logrus.Logger) *Service {
	return &Service{store: store, ctx: ctx, log: log}
}

// Execute implements the wire-level command grammar: GET/PUT/DELETE,
// operation case-insensitive.
func (s *Service) Execute(args *ExecuteArgs, reply *ExecuteReply) error {
	parts := command.Tokenize(args.Command)
	if len(parts) == 0 {
		reply.Result = "NULL"
		return nil
	}
	parts[0] = strings.ToUpper(parts[0])

	switch parts[0] {
	case "GET":
		reply.Result = s.get(parts)
	case "PUT":
		reply.Result = s.write(args.ClientID, parts, 3)
	case "DELETE":
		reply.Result = s.write(args.ClientID, parts, 2)
	default:
		reply.Result = "Invalid command"
	}
	return nil
}

func (s *Service) get(parts []string) string {
	if len(parts) < 2 || parts[1] == "" {
		return "NULL"
	}
	v, ok := s.store.Get(parts[1])
	if !ok {
		return "NULL"
	}
	return v
}

// write submits a PUT (minTokens 3: op, key, value) or DELETE (minTokens 2:
// op, key) through consensus. Propose is a synchronous call, so the reply
// is sent only after the round has ended. The key is returned whenever
// the round ran without an RPC error, whether or not it was accepted;
// "ERROR" is returned when SetValue or Propose fails.
func (s *Service) write(clientID string, parts []string, minTokens int) string {
	if len(parts) < minTokens {
		return "Invalid command"
	}
	for _, p := range parts[1:minTokens] {
		if p == "" {
			return "Invalid command"
		}
	}

	leader, ok := s.ctx.LeaderProposer()
	if !ok {
		return "ERROR: No leader Here"
	}

	value := strings.Join(parts, " ")
	if err := rpcutil.Call(leader.String(), "Proposer.SetValue", &paxos.SetValueArgs{Value: value}, &paxos.Empty{}); err != nil {
		s.log.WithError(err).Error("kvstore: setValue failed")
		return "ERROR"
	}
	if err := rpcutil.Call(leader.String(), "Proposer.Propose", &paxos.ProposeArgs{ClientID: clientID}, &paxos.Empty{}); err != nil {
		s.log.WithError(err).Error("kvstore: propose failed")
		return "ERROR"
	}
	return parts[1]
}

// Snapshot returns a read-only copy of the local map.
func (s *Service) Snapshot() map[string]string {
	return s.store.Snapshot()
}

// LeaderHint exposes the locally-known leader proposer address, for
// operational visibility only - never used to route consensus traffic.
func (s *Service) LeaderHint() (cluster.PeerAddr, bool) {
	return s.ctx.LeaderProposer()
}
