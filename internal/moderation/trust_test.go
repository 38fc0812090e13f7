package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCounter struct {
	counts map[string]int
	calls  int
	err    error
}

func (f *fakeCounter) CountApproved(_ context.Context, actorID string) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[actorID], nil
}

type memCache struct {
	entries map[string]int
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]int{}}
}

func (m *memCache) Get(_ context.Context, actorID string) (int, bool, error) {
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.entries[actorID]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, actorID string, count int) error {
	m.entries[actorID] = count
	return nil
}

func (m *memCache) Invalidate(_ context.Context, actorID string) error {
	delete(m.entries, actorID)
	return nil
}

func TestIsTrusted_Threshold(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"zero": 0, "two": 2, "three": 3, "many": 250}}
	eval := NewTrustEvaluator(counter, nil, DefaultRules(), zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		actor    string
		expected bool
	}{
		{"zero", false},
		{"two", false},
		{"three", true},
		{"many", true},
		{"unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.actor, func(t *testing.T) {
			got, err := eval.IsTrusted(ctx, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsTrusted_CustomThreshold(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"u": 4}}
	rules := DefaultRules()
	rules.TrustThreshold = 5
	eval := NewTrustEvaluator(counter, nil, rules, zap.NewNop())

	trusted, err := eval.IsTrusted(context.Background(), "u")
	require.NoError(t, err)
	assert.False(t, trusted)
	assert.Equal(t, 5, eval.Threshold())
}

func TestIsTrusted_ZeroThresholdFallsBackToDefault(t *testing.T) {
	eval := NewTrustEvaluator(&fakeCounter{}, nil, Rules{}, zap.NewNop())
	assert.Equal(t, DefaultTrustThreshold, eval.Threshold())
}

func TestIsTrusted_PropagatesLedgerError(t *testing.T) {
	boom := errors.New("ledger down")
	eval := NewTrustEvaluator(&fakeCounter{err: boom}, nil, DefaultRules(), zap.NewNop())

	_, err := eval.IsTrusted(context.Background(), "u")
	assert.ErrorIs(t, err, boom)
}

func TestApprovedCount_UsesCacheUntilInvalidated(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"u": 2}}
	cache := newMemCache()
	eval := NewTrustEvaluator(counter, cache, DefaultRules(), zap.NewNop())
	ctx := context.Background()

	count, err := eval.ApprovedCount(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	counter.counts["u"] = 3
	count, err = eval.ApprovedCount(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "second read is served from cache")
	assert.Equal(t, 1, counter.calls)

	eval.Invalidate(ctx, "u")
	trusted, err := eval.IsTrusted(ctx, "u")
	require.NoError(t, err)
	assert.True(t, trusted)
	assert.Equal(t, 2, counter.calls)
}

func TestApprovedCount_CacheErrorFallsBackToLedger(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"u": 7}}
	cache := newMemCache()
	cache.getErr = errors.New("redis unavailable")
	eval := NewTrustEvaluator(counter, cache, DefaultRules(), zap.NewNop())

	count, err := eval.ApprovedCount(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
