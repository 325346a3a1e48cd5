package engine

import "github.com/DoyleJ11/rink-sequences/pkg/types"

// EventOptions are the labels offered by the event filter.
var EventOptions = []string{"Faceoff Win", "Shot", "Goal", "Zone Entry", "Takeaway", "Puck Recovery", "Incomplete Play"}

var DefaultEvents = []string{"Shot", "Faceoff Win"}

// FilterSequences keeps sequences in period that contain every required
// event label.
func FilterSequences(sequences []types.Sequence, period int, required []string) []types.Sequence {
	out := []types.Sequence{}
	for _, q := range sequences {
		if q.Period != period {
			continue
		}
		if hasAll(q.Events, required) {
			out = append(out, q)
		}
	}
	return out
}

func hasAll(events types.EventList, required []string) bool {
	for _, r := range required {
		if !events.Has(r) {
			return false
		}
	}
	return true
}

// refilter recomputes the filtered list and selects its first sequence. An
// empty result clears the sequence selection so no stale diagram remains.
func refilter(s State) ([]Effect, State) {
	if len(s.Events) == 0 && s.Rules.EmptyFilter != EmptyFilterAll {
		return nil, s
	}

	s.Filtered = FilterSequences(s.Sequences, s.Period, s.Events)
	if len(s.Filtered) == 0 {
		return nil, clearSequence(s)
	}
	return selectSequence(s, s.Filtered[0].ID)
}
