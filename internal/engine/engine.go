package engine

import (
	"errors"
	"slices"

	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

var ErrInvalidPeriod = errors.New("invalid period")
var ErrUnknownGame = errors.New("unknown game")
var ErrUnknownSequence = errors.New("unknown sequence")
var ErrPlayOutOfRange = errors.New("play index out of range")
var ErrNavigationDisabled = errors.New("no play in that direction")
var ErrEmptyFilter = errors.New("event filter must not be empty")
var ErrStaleResult = errors.New("stale load result")
var ErrUnsupportedMsg = errors.New("unsupported message")

// EmptyFilterPolicy decides what an empty event filter means.
type EmptyFilterPolicy string

const (
	// EmptyFilterKeep leaves the filtered list as it was (no recompute).
	EmptyFilterKeep EmptyFilterPolicy = "keep"
	// EmptyFilterAll matches every sequence in the selected period.
	EmptyFilterAll EmptyFilterPolicy = "all"
	// EmptyFilterReject refuses to apply an empty filter.
	EmptyFilterReject EmptyFilterPolicy = "reject"
)

func ParseEmptyFilterPolicy(s string) (EmptyFilterPolicy, bool) {
	switch p := EmptyFilterPolicy(s); p {
	case EmptyFilterKeep, EmptyFilterAll, EmptyFilterReject:
		return p, true
	default:
		return "", false
	}
}

type Rules struct {
	EmptyFilter EmptyFilterPolicy `json:"empty_filter"`
	Viewport    Viewport          `json:"viewport"`
}

type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Loading struct {
	Games     bool `json:"games"`
	Sequences bool `json:"sequences"`
	Plays     bool `json:"plays"`
}

// LoadErrors holds the last failure per loader; "" means no error.
type LoadErrors struct {
	Games     string `json:"games,omitempty"`
	Sequences string `json:"sequences,omitempty"`
	Plays     string `json:"plays,omitempty"`
}

func (e LoadErrors) Any() bool {
	return e.Games != "" || e.Sequences != "" || e.Plays != ""
}

// Generations tag in-flight loads. A result is applied only when its
// generation equals the current one for its loader.
type Generations struct {
	Games     uint64 `json:"games"`
	Sequences uint64 `json:"sequences"`
	Plays     uint64 `json:"plays"`
}

type State struct {
	Games            []types.Game     `json:"games"`
	SelectedGame     string           `json:"selected_game"` // game date, "" when none
	Sequences        []types.Sequence `json:"sequences"`
	Period           int              `json:"period"`
	Events           []string         `json:"events"`
	Filtered         []types.Sequence `json:"filtered"`
	SelectedSequence string           `json:"selected_sequence"` // "" when none
	Plays            []types.Play     `json:"plays"`
	SelectedPlay     int              `json:"selected_play"` // -1 when none
	Mark             *int             `json:"mark"`
	Viewport         Viewport         `json:"viewport"`
	Gen              Generations      `json:"gen"`
	Loading          Loading          `json:"loading"`
	Errors           LoadErrors       `json:"errors"`
	Rules            Rules            `json:"rules"`
}

type MsgType string

const (
	MsgLoadGames       MsgType = "LoadGames"
	MsgGamesLoaded     MsgType = "GamesLoaded"
	MsgGamesFailed     MsgType = "GamesFailed"
	MsgSelectGame      MsgType = "SelectGame"
	MsgSequencesLoaded MsgType = "SequencesLoaded"
	MsgSequencesFailed MsgType = "SequencesFailed"
	MsgSelectPeriod    MsgType = "SelectPeriod"
	MsgSetEvents       MsgType = "SetEvents"
	MsgSlideMark       MsgType = "SlideMark"
	MsgCommitMark      MsgType = "CommitMark"
	MsgSelectSequence  MsgType = "SelectSequence"
	MsgPlaysLoaded     MsgType = "PlaysLoaded"
	MsgPlaysFailed     MsgType = "PlaysFailed"
	MsgSelectPlay      MsgType = "SelectPlay"
	MsgPrevPlay        MsgType = "PrevPlay"
	MsgNextPlay        MsgType = "NextPlay"
	MsgResize          MsgType = "Resize"
)

/*
	User input:
	SelectGame       -> FetchSequences
	SelectPeriod     -> (refilter) -> FetchPlays when the first filtered sequence changes
	SetEvents        -> (refilter) -> FetchPlays when the first filtered sequence changes
	CommitMark       -> FetchPlays when a sequence starts exactly at the mark
	SelectSequence   -> FetchPlays
	SlideMark, SelectPlay, PrevPlay, NextPlay, Resize -> no effects

	Load results (dropped with ErrStaleResult when Gen is not current):
	GamesLoaded      -> keep the selected date if still listed, else select the first game -> FetchSequences
	SequencesLoaded  -> (refilter)
	PlaysLoaded      -> auto-select the first play
*/

type Msg struct {
	Type       MsgType          `json:"type"`
	Gen        uint64           `json:"gen,omitempty"`
	GameDate   string           `json:"game_date,omitempty"`
	Period     int              `json:"period,omitempty"`
	Events     []string         `json:"events,omitempty"`
	Value      int              `json:"value,omitempty"`
	SequenceID string           `json:"sequence_id,omitempty"`
	PlayIndex  int              `json:"play_index,omitempty"`
	Width      float64          `json:"width,omitempty"`
	Height     float64          `json:"height,omitempty"`
	Games      []types.Game     `json:"games,omitempty"`
	Sequences  []types.Sequence `json:"sequences,omitempty"`
	Plays      []types.Play     `json:"plays,omitempty"`
	Err        string           `json:"err,omitempty"`
}

type EffectType string

const (
	EffFetchGames     EffectType = "FetchGames"
	EffFetchSequences EffectType = "FetchSequences"
	EffFetchPlays     EffectType = "FetchPlays"
)

// Effect is a load the caller must perform and report back with the same Gen.
type Effect struct {
	Type       EffectType
	Gen        uint64
	GameDate   string
	SequenceID string
}

// Apply is the single transition function. It never mutates s; on error the
// returned state is s unchanged.
func Apply(s State, msg Msg) ([]Effect, State, error) {
	newState := s

	switch msg.Type {
	case MsgLoadGames:
		newState.Gen.Games++
		newState.Loading.Games = true
		return []Effect{{Type: EffFetchGames, Gen: newState.Gen.Games}}, newState, nil

	case MsgGamesLoaded:
		if msg.Gen != s.Gen.Games {
			return nil, s, ErrStaleResult
		}
		newState.Games = msg.Games
		newState.Loading.Games = false
		newState.Errors.Games = ""

		// A reload keeps the selected game when its date is still listed.
		if s.SelectedGame != "" && slices.ContainsFunc(newState.Games, func(g types.Game) bool { return g.Date == s.SelectedGame }) {
			return nil, newState, nil
		}
		if len(newState.Games) == 0 {
			if s.SelectedGame != "" {
				newState = clearGame(newState)
			}
			return nil, newState, nil
		}
		return selectGame(newState, newState.Games[0].Date)

	case MsgGamesFailed:
		if msg.Gen != s.Gen.Games {
			return nil, s, ErrStaleResult
		}
		newState.Loading.Games = false
		newState.Errors.Games = msg.Err
		return nil, newState, nil

	case MsgSelectGame:
		if msg.GameDate == "" {
			// Clearing the picker abandons any sequence load in flight.
			newState.SelectedGame = ""
			newState.Gen.Sequences++
			newState.Loading.Sequences = false
			return nil, newState, nil
		}
		if !slices.ContainsFunc(s.Games, func(g types.Game) bool { return g.Date == msg.GameDate }) {
			return nil, s, ErrUnknownGame
		}
		if msg.GameDate == s.SelectedGame {
			return nil, s, nil
		}
		return selectGame(newState, msg.GameDate)

	case MsgSequencesLoaded:
		if msg.Gen != s.Gen.Sequences {
			return nil, s, ErrStaleResult
		}
		newState.Sequences = msg.Sequences
		newState.Loading.Sequences = false
		newState.Errors.Sequences = ""
		effects, next := refilter(newState)
		return effects, next, nil

	case MsgSequencesFailed:
		if msg.Gen != s.Gen.Sequences {
			return nil, s, ErrStaleResult
		}
		newState.Loading.Sequences = false
		newState.Errors.Sequences = msg.Err
		return nil, newState, nil

	case MsgSelectPeriod:
		if !ValidPeriod(msg.Period) {
			return nil, s, ErrInvalidPeriod
		}
		if msg.Period == s.Period {
			return nil, s, nil
		}
		newState.Period = msg.Period
		effects, next := refilter(newState)
		return effects, next, nil

	case MsgSetEvents:
		if len(msg.Events) == 0 && s.Rules.EmptyFilter == EmptyFilterReject {
			return nil, s, ErrEmptyFilter
		}
		newState.Events = dedupe(msg.Events)
		effects, next := refilter(newState)
		return effects, next, nil

	case MsgSlideMark:
		v := msg.Value
		newState.Mark = &v
		return nil, newState, nil

	case MsgCommitMark:
		v := msg.Value
		newState.Mark = &v
		idx := slices.IndexFunc(s.Filtered, func(q types.Sequence) bool { return q.StartTime == v })
		if idx < 0 {
			return nil, newState, nil
		}
		effects, next := selectSequence(newState, s.Filtered[idx].ID)
		return effects, next, nil

	case MsgSelectSequence:
		if !slices.ContainsFunc(s.Sequences, func(q types.Sequence) bool { return q.ID == msg.SequenceID }) {
			return nil, s, ErrUnknownSequence
		}
		effects, next := selectSequence(newState, msg.SequenceID)
		return effects, next, nil

	case MsgPlaysLoaded:
		if msg.Gen != s.Gen.Plays {
			return nil, s, ErrStaleResult
		}
		newState.Plays = msg.Plays
		newState.SelectedPlay = -1
		if len(msg.Plays) > 0 {
			newState.SelectedPlay = 0
		}
		newState.Loading.Plays = false
		newState.Errors.Plays = ""
		return nil, newState, nil

	case MsgPlaysFailed:
		if msg.Gen != s.Gen.Plays {
			return nil, s, ErrStaleResult
		}
		newState.Loading.Plays = false
		newState.Errors.Plays = msg.Err
		return nil, newState, nil

	case MsgSelectPlay:
		if msg.PlayIndex < 0 || msg.PlayIndex >= len(s.Plays) {
			return nil, s, ErrPlayOutOfRange
		}
		newState.SelectedPlay = msg.PlayIndex
		return nil, newState, nil

	case MsgPrevPlay:
		if !CanPrev(s) {
			return nil, s, ErrNavigationDisabled
		}
		newState.SelectedPlay--
		return nil, newState, nil

	case MsgNextPlay:
		if !CanNext(s) {
			return nil, s, ErrNavigationDisabled
		}
		newState.SelectedPlay++
		return nil, newState, nil

	case MsgResize:
		newState.Viewport = Viewport{Width: max(msg.Width, 0), Height: max(msg.Height, 0)}
		return nil, newState, nil

	default:
		return nil, s, ErrUnsupportedMsg
	}
}

func selectGame(s State, date string) ([]Effect, State, error) {
	s.SelectedGame = date
	s.Gen.Sequences++
	s.Loading.Sequences = true
	s.Errors.Sequences = ""
	return []Effect{{Type: EffFetchSequences, Gen: s.Gen.Sequences, GameDate: date}}, s, nil
}

// clearGame drops the game selection with everything loaded for it.
func clearGame(s State) State {
	s.SelectedGame = ""
	s.Sequences = nil
	s.Filtered = nil
	s.Gen.Sequences++
	s.Loading.Sequences = false
	return clearSequence(s)
}

// selectSequence starts a plays load unless id is already selected. The old
// plays stay visible until the new ones arrive.
func selectSequence(s State, id string) ([]Effect, State) {
	if id == s.SelectedSequence {
		return nil, s
	}
	s.SelectedSequence = id
	s.Gen.Plays++
	s.Loading.Plays = true
	s.Errors.Plays = ""
	return []Effect{{Type: EffFetchPlays, Gen: s.Gen.Plays, SequenceID: id}}, s
}

// clearSequence drops the selection and any plays load in flight.
func clearSequence(s State) State {
	s.SelectedSequence = ""
	s.Plays = nil
	s.SelectedPlay = -1
	s.Gen.Plays++
	s.Loading.Plays = false
	return s
}

func CanPrev(s State) bool {
	return s.SelectedPlay > 0 && s.SelectedPlay < len(s.Plays)
}

func CanNext(s State) bool {
	return s.SelectedPlay >= 0 && s.SelectedPlay < len(s.Plays)-1
}

func dedupe(events []string) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}
