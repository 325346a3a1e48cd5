package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/DoyleJ11/rink-sequences/internal/engine"
)

func TestToMsg(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want engine.Msg
	}{
		{
			name: "select game",
			in:   `{"type":"SelectGame","game_date":"2023-01-10"}`,
			want: engine.Msg{Type: engine.MsgSelectGame, GameDate: "2023-01-10"},
		},
		{
			name: "commit mark",
			in:   `{"type":"CommitMark","value":95}`,
			want: engine.Msg{Type: engine.MsgCommitMark, Value: 95},
		},
		{
			name: "resize",
			in:   `{"type":"Resize","width":800,"height":340}`,
			want: engine.Msg{Type: engine.MsgResize, Width: 800, Height: 340},
		},
		{
			name: "reload",
			in:   `{"type":"Reload"}`,
			want: engine.Msg{Type: engine.MsgLoadGames},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var cm ClientMessage
			if err := json.Unmarshal([]byte(tc.in), &cm); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := ToMsg(cm)
			if err != nil {
				t.Fatalf("ToMsg: %v", err)
			}
			if got.Type != tc.want.Type || got.GameDate != tc.want.GameDate || got.Value != tc.want.Value ||
				got.Width != tc.want.Width || got.Height != tc.want.Height {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestToMsg_SetEventsKeepsList(t *testing.T) {
	got, err := ToMsg(ClientMessage{Type: "SetEvents", Events: []string{"Goal", "Shot"}})
	if err != nil {
		t.Fatalf("ToMsg: %v", err)
	}
	if len(got.Events) != 2 || got.Events[0] != "Goal" {
		t.Fatalf("unexpected events %v", got.Events)
	}
}

func TestToMsg_RejectsLoadResults(t *testing.T) {
	for _, typ := range []string{"GamesLoaded", "PlaysLoaded", "SequencesFailed", ""} {
		_, err := ToMsg(ClientMessage{Type: typ})
		if !errors.Is(err, ErrUnknownType) {
			t.Fatalf("%q: want ErrUnknownType, got %v", typ, err)
		}
	}
}
