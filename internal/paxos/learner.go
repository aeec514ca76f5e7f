package paxos

import (
	"github.com/sirupsen/logrus"

	"github.com/rverma-dev/paxkv/internal/command"
	"github.com/rverma-dev/paxkv/internal/storage"
)

// Learner applies decided values into the co-located KV service's map. It
// holds a mutator handle rather than a back-reference to the service
// itself, so there is no cyclic dependency between the two.
type Learner struct {
	store *storage.Map
	log   *logrus.Logger
}

// NewLearner builds a learner that mutates store.
func NewLearner(store *storage.Map, log *logrus.Logger) *Learner {
	return &Learner{store: store, log: log}
}

// Learn tokenises a decided value string and applies it to the local map.
// PUT requires three non-empty tokens; DELETE requires two. Anything else,
// or a DELETE of an absent key, is logged but never fails the call.
func (l *Learner) Learn(args *LearnArgs, reply *Empty) error {
	parts := command.Tokenize(args.Value)
	if len(parts) == 0 {
		l.log.WithField("value", args.Value).Error("learn: empty command")
		return nil
	}

	switch parts[0] {
	case "PUT":
		if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
			l.log.WithField("value", args.Value).Error("learn: malformed PUT")
			return nil
		}
		l.store.Put(parts[1], parts[2])
	case "DELETE":
		if len(parts) < 2 || parts[1] == "" {
			l.log.WithField("value", args.Value).Error("learn: malformed DELETE")
			return nil
		}
		if !l.store.Delete(parts[1]) {
			l.log.WithField("key", parts[1]).Error("learn: delete of absent key")
		}
	default:
		l.log.WithField("value", args.Value).Error("learn: unrecognised operation")
	}
	return nil
}
