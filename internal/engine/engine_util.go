package engine

import "slices"

func NewState(rules Rules) State {
	if rules.EmptyFilter == "" {
		rules.EmptyFilter = EmptyFilterKeep
	}
	return State{
		Period:       FirstPeriod,
		Events:       slices.Clone(DefaultEvents),
		Filtered:     nil,
		SelectedPlay: -1,
		Viewport:     rules.Viewport,
		Rules:        rules,
	}
}

func ContainsEffect(effects []Effect, effectType EffectType) bool {
	for _, effect := range effects {
		if effect.Type == effectType {
			return true
		}
	}
	return false
}

// Replay rebuilds a state from a recorded message log. Messages that were
// rejected when first applied are rejected again and skipped.
func Replay(rules Rules, msgs []Msg) State {
	s := NewState(rules)
	for _, msg := range msgs {
		_, next, err := Apply(s, msg)
		if err != nil {
			continue
		}
		s = next
	}
	return s
}
