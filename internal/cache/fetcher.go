package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/rink-sequences/internal/dataapi"
	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

// TTL constants
const (
	GamesTTL     = 1 * time.Hour
	SequencesTTL = 30 * time.Minute
	PlaysTTL     = 30 * time.Minute
)

// Key families.
const (
	gamesKey        = "games"
	sequencesPrefix = "sequences:"
	playsPrefix     = "plays:"
)

// CachedFetcher is a read-through cache in front of a dataapi.Fetcher.
// Failed fetches are never stored; empty results are.
type CachedFetcher struct {
	next   dataapi.Fetcher
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFetcher wraps next. A positive ttl overrides the per-family TTLs.
func NewCachedFetcher(next dataapi.Fetcher, store Store, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.Named("cache"),
	}
}

var _ dataapi.Fetcher = (*CachedFetcher)(nil)

func (c *CachedFetcher) GetGames(ctx context.Context) ([]types.Game, error) {
	return readThrough(ctx, c, gamesKey, GamesTTL, func() ([]types.Game, error) {
		return c.next.GetGames(ctx)
	})
}

func (c *CachedFetcher) GetSequences(ctx context.Context, gameDate string) ([]types.Sequence, error) {
	return readThrough(ctx, c, sequencesPrefix+gameDate, SequencesTTL, func() ([]types.Sequence, error) {
		return c.next.GetSequences(ctx, gameDate)
	})
}

func (c *CachedFetcher) GetPlays(ctx context.Context, sequenceID string) ([]types.Play, error) {
	return readThrough(ctx, c, playsPrefix+sequenceID, PlaysTTL, func() ([]types.Play, error) {
		return c.next.GetPlays(ctx, sequenceID)
	})
}

func readThrough[T any](ctx context.Context, c *CachedFetcher, key string, ttl time.Duration, load func() ([]T, error)) ([]T, error) {
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			c.logger.Debug("hit", zap.String("key", key))
			if out == nil {
				out = []T{}
			}
			return out, nil
		}
		c.logger.Warn("dropping undecodable entry", zap.String("key", key))
	case !errors.Is(err, ErrMiss):
		// store outage falls through to the API
		c.logger.Warn("store get failed", zap.String("key", key), zap.Error(err))
	}

	out, err := load()
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		ttl = c.ttl
	}
	if data, err := json.Marshal(out); err == nil {
		if err := c.store.Set(ctx, key, data, ttl); err != nil {
			c.logger.Warn("store set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}
