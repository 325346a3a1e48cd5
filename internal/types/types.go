package types

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/rink-sequences/internal/engine"
)

var ErrUnknownType = errors.New("unknown message type")

// ClientMessage is a viewer action, shared by the websocket and
// POST /sessions/{id}/actions.
type ClientMessage struct {
	Type       string   `json:"type"`
	GameDate   string   `json:"game_date,omitempty"`
	Period     int      `json:"period,omitempty"`
	Events     []string `json:"events,omitempty"`
	Value      int      `json:"value,omitempty"`
	SequenceID string   `json:"sequence_id,omitempty"`
	PlayIndex  int      `json:"play_index,omitempty"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
}

type ServerMessage struct {
	Type    string       `json:"type"` // "StateSnapshot" | "Error"
	Version int          `json:"version,omitempty"`
	View    *engine.View `json:"view,omitempty"`
	Error   string       `json:"error,omitempty"`
}

const (
	ServerSnapshot = "StateSnapshot"
	ServerError    = "Error"
)

// Viewer actions. Load results are produced by the session itself and are
// not accepted from clients.
var clientTypes = map[string]engine.MsgType{
	"Reload":         engine.MsgLoadGames,
	"SelectGame":     engine.MsgSelectGame,
	"SelectPeriod":   engine.MsgSelectPeriod,
	"SetEvents":      engine.MsgSetEvents,
	"SlideMark":      engine.MsgSlideMark,
	"CommitMark":     engine.MsgCommitMark,
	"SelectSequence": engine.MsgSelectSequence,
	"SelectPlay":     engine.MsgSelectPlay,
	"PrevPlay":       engine.MsgPrevPlay,
	"NextPlay":       engine.MsgNextPlay,
	"Resize":         engine.MsgResize,
}

// ToMsg translates a client action into a reducer message.
func ToMsg(m ClientMessage) (engine.Msg, error) {
	t, ok := clientTypes[m.Type]
	if !ok {
		return engine.Msg{}, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	return engine.Msg{
		Type:       t,
		GameDate:   m.GameDate,
		Period:     m.Period,
		Events:     m.Events,
		Value:      m.Value,
		SequenceID: m.SequenceID,
		PlayIndex:  m.PlayIndex,
		Width:      m.Width,
		Height:     m.Height,
	}, nil
}

func Snapshot(version int, view engine.View) ServerMessage {
	return ServerMessage{Type: ServerSnapshot, Version: version, View: &view}
}

func Error(err error) ServerMessage {
	return ServerMessage{Type: ServerError, Error: err.Error()}
}
