// Package adminhttp implements the read-only per-peer introspection
// surface: GET /status and GET /keys, served over a separate gorilla/mux
// router from the net/rpc listener, never participating in consensus.
package adminhttp

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/kvstore"
	"github.com/rverma-dev/paxkv/internal/paxos"
)

// ProposerSnapshot and AcceptorSnapshot are indirections rather than raw
// role pointers so a rebind by the failure injector (which swaps in a
// brand new *paxos.Acceptor at the same address) is reflected here without
// this package needing to know about restarts.
type ProposerSnapshot func() (isLeader bool, proposalNumber int64)
type AcceptorSnapshot func() (isLeader bool, highest paxos.ProposalNumber)

type statusResponse struct {
	PeerAddr            string               `json:"peerAddr"`
	IsLeaderProposer    bool                 `json:"isLeaderProposer"`
	IsLeaderAcceptor    bool                 `json:"isLeaderAcceptor"`
	KnownLeaderProposer string               `json:"knownLeaderProposer,omitempty"`
	MapSize             int                  `json:"mapSize"`
	HighestProposal     paxos.ProposalNumber `json:"highestProposal"`
}

// Server wires a peer's service/proposer/acceptor snapshots into an HTTP
// router.
type Server struct {
	router   *mux.Router
	self     cluster.PeerAddr
	svc      *kvstore.Service
	proposer ProposerSnapshot
	acceptor AcceptorSnapshot
}

// NewServer builds the admin router for one peer.
func NewServer(self cluster.PeerAddr, svc *kvstore.Service, proposer ProposerSnapshot, acceptor AcceptorSnapshot) *Server {
	s := &Server{self: self, svc: svc, proposer: proposer, acceptor: acceptor}
	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/keys", s.handleKeys).Methods(http.MethodGet)
	s.router = r
	return s
}

// ServeHTTP lets Server be passed directly to http.Serve/http.ListenAndServe.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	proposerIsLeader, _ := s.proposer()
	acceptorIsLeader, highest := s.acceptor()

	known := ""
	if addr, ok := s.svc.LeaderHint(); ok {
		known = addr.String()
	}

	resp := statusResponse{
		PeerAddr:            s.self.String(),
		IsLeaderProposer:    proposerIsLeader,
		IsLeaderAcceptor:    acceptorIsLeader,
		KnownLeaderProposer: known,
		MapSize:             len(s.svc.Snapshot()),
		HighestProposal:     highest,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.svc.Snapshot())
}
