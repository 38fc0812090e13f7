package moderation

import (
	"context"

	"go.uber.org/zap"
)

// ApprovedCounter counts an actor's approved ledger entries.
type ApprovedCounter interface {
	CountApproved(ctx context.Context, actorID string) (int, error)
}

// TrustCache memoizes approved counts. Implementations must drop an actor's
// entry on Invalidate; a miss is reported with ok == false.
type TrustCache interface {
	Get(ctx context.Context, actorID string) (count int, ok bool, err error)
	Set(ctx context.Context, actorID string, count int) error
	Invalidate(ctx context.Context, actorID string) error
}

type TrustEvaluator struct {
	counter ApprovedCounter
	cache   TrustCache
	rules   Rules
	log     *zap.Logger
}

// NewTrustEvaluator builds an evaluator; cache may be nil.
func NewTrustEvaluator(counter ApprovedCounter, cache TrustCache, rules Rules, log *zap.Logger) *TrustEvaluator {
	return &TrustEvaluator{counter: counter, cache: cache, rules: rules, log: log}
}

func (e *TrustEvaluator) Threshold() int {
	return e.rules.threshold()
}

// ApprovedCount returns the actor's approved edit count, from cache when possible.
// Cache failures fall back to the ledger.
func (e *TrustEvaluator) ApprovedCount(ctx context.Context, actorID string) (int, error) {
	if e.cache != nil {
		count, ok, err := e.cache.Get(ctx, actorID)
		if err != nil {
			e.log.Warn("trust cache read failed", zap.String("actor_id", actorID), zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := e.counter.CountApproved(ctx, actorID)
	if err != nil {
		return 0, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, actorID, count); err != nil {
			e.log.Warn("trust cache write failed", zap.String("actor_id", actorID), zap.Error(err))
		}
	}
	return count, nil
}

// IsTrusted reports whether the actor has at least the threshold of approved edits.
func (e *TrustEvaluator) IsTrusted(ctx context.Context, actorID string) (bool, error) {
	count, err := e.ApprovedCount(ctx, actorID)
	if err != nil {
		return false, err
	}
	return count >= e.Threshold(), nil
}

// Invalidate must be called after every new approved ledger entry for actorID.
func (e *TrustEvaluator) Invalidate(ctx context.Context, actorID string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, actorID); err != nil {
		e.log.Warn("trust cache invalidation failed", zap.String("actor_id", actorID), zap.Error(err))
	}
}
