package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/rink-sequences/internal/dataapi"
	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

type countingFetcher struct {
	games     int
	sequences int
	plays     int
	err       error
}

func (f *countingFetcher) GetGames(ctx context.Context) ([]types.Game, error) {
	f.games++
	if f.err != nil {
		return nil, f.err
	}
	return []types.Game{{Date: "2023-01-10", HomeTeam: "BOS", AwayTeam: "TOR"}}, nil
}

func (f *countingFetcher) GetSequences(ctx context.Context, gameDate string) ([]types.Sequence, error) {
	f.sequences++
	if f.err != nil {
		return nil, f.err
	}
	return []types.Sequence{}, nil
}

func (f *countingFetcher) GetPlays(ctx context.Context, sequenceID string) ([]types.Play, error) {
	f.plays++
	if f.err != nil {
		return nil, f.err
	}
	return []types.Play{{Event: "Shot", Player: sequenceID}}, nil
}

func TestCachedFetcher_ReadThrough(t *testing.T) {
	ctx := context.Background()
	next := &countingFetcher{}
	c := NewCachedFetcher(next, NewMemoryStore(), 0, nil)

	for i := 0; i < 3; i++ {
		games, err := c.GetGames(ctx)
		require.NoError(t, err)
		assert.Equal(t, "BOS", games[0].HomeTeam)
	}
	assert.Equal(t, 1, next.games)
}

func TestCachedFetcher_EmptyResultsAreCached(t *testing.T) {
	ctx := context.Background()
	next := &countingFetcher{}
	c := NewCachedFetcher(next, NewMemoryStore(), 0, nil)

	for i := 0; i < 2; i++ {
		seqs, err := c.GetSequences(ctx, "2023-01-10")
		require.NoError(t, err)
		assert.NotNil(t, seqs)
		assert.Empty(t, seqs)
	}
	assert.Equal(t, 1, next.sequences)
}

func TestCachedFetcher_KeysPerID(t *testing.T) {
	ctx := context.Background()
	next := &countingFetcher{}
	c := NewCachedFetcher(next, NewMemoryStore(), 0, nil)

	a, err := c.GetPlays(ctx, "a")
	require.NoError(t, err)
	b, err := c.GetPlays(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, "a", a[0].Player)
	assert.Equal(t, "b", b[0].Player)
	assert.Equal(t, 2, next.plays)
}

func TestCachedFetcher_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingFetcher{err: dataapi.ErrTransport}
	c := NewCachedFetcher(next, NewMemoryStore(), 0, nil)

	_, err := c.GetGames(ctx)
	assert.ErrorIs(t, err, dataapi.ErrTransport)

	next.err = nil
	games, err := c.GetGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.Equal(t, 2, next.games)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestCachedFetcher_StoreOutageFallsThrough(t *testing.T) {
	next := &countingFetcher{}
	c := NewCachedFetcher(next, brokenStore{}, 0, nil)

	games, err := c.GetGames(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2023, 1, 10, 19, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_NoTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

	_, err := s.Get(ctx, "k")
	assert.NoError(t, err)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_ExpiryKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2023, 1, 10, 19, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Set(ctx, "k", []byte("old"), time.Minute))
	now = now.Add(time.Minute)

	// Refresh the entry between the expired read and the delete.
	refreshed := false
	s.now = func() time.Time {
		if !refreshed {
			refreshed = true
			require.NoError(t, s.Set(ctx, "k", []byte("new"), time.Hour))
		}
		return now
	}

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
