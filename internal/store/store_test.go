package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/rink-sequences/internal/engine"
	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(" ")
	assert.ErrorIs(t, err, ErrNoDSN)
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	require.NoError(t, s.Record(ctx, "a", 2, engine.Msg{Type: engine.MsgSelectPeriod, Period: 2}))
	require.NoError(t, s.Record(ctx, "a", 1, engine.Msg{Type: engine.MsgLoadGames}))
	require.NoError(t, s.Record(ctx, "b", 1, engine.Msg{Type: engine.MsgNextPlay}))

	recs, err := s.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(1), recs[0].Seq)
	assert.Equal(t, "LoadGames", recs[0].Kind)
	assert.Equal(t, "SelectPeriod", recs[1].Kind)

	none, err := s.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMessagesReplay(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	log := []engine.Msg{
		{Type: engine.MsgLoadGames},
		{Type: engine.MsgGamesLoaded, Gen: 1, Games: []types.Game{{Date: "2023-01-10", HomeTeam: "BOS", AwayTeam: "TOR"}}},
		{Type: engine.MsgSelectPeriod, Period: 3},
	}
	for i, m := range log {
		require.NoError(t, s.Record(ctx, "a", uint64(i+1), m))
	}

	msgs, err := s.Messages(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	st := engine.Replay(engine.Rules{}, msgs)
	assert.Equal(t, "2023-01-10", st.SelectedGame)
	assert.Equal(t, 3, st.Period)
	assert.True(t, st.Loading.Sequences)
}
