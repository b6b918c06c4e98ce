// Package weather models battlefield conditions and their effect on unit
// senses: rain dampens sound, fog shortens sight.
package weather

import (
	"log/slog"

	"github.com/talgya/skirmish/internal/entropy"
)

// Condition is the current battlefield weather.
type Condition uint8

const (
	Clear Condition = iota
	Fog
	Rain
	Storm
)

// String returns the condition's display name.
func (c Condition) String() string {
	switch c {
	case Clear:
		return "clear"
	case Fog:
		return "fog"
	case Rain:
		return "rain"
	case Storm:
		return "storm"
	default:
		return "unknown"
	}
}

// HearingModifier scales hearing ranges under this condition.
func (c Condition) HearingModifier() float64 {
	switch c {
	case Rain:
		return 0.75
	case Storm:
		return 0.5
	default:
		return 1.0
	}
}

// VisionModifier scales vision ranges under this condition.
func (c Condition) VisionModifier() float64 {
	switch c {
	case Fog:
		return 0.5
	case Storm:
		return 0.75
	default:
		return 1.0
	}
}

// transitions is the per-turn weather change table: from each condition,
// the cumulative probability of moving to each other condition. Weather is
// sticky; most turns it holds.
var transitions = map[Condition][]struct {
	to Condition
	p  float64
}{
	Clear: {{Fog, 0.05}, {Rain, 0.10}},
	Fog:   {{Clear, 0.25}, {Rain, 0.10}},
	Rain:  {{Clear, 0.15}, {Storm, 0.10}, {Fog, 0.05}},
	Storm: {{Rain, 0.30}, {Clear, 0.10}},
}

// System tracks the current condition and advances it once per turn.
type System struct {
	current Condition
	rolls   entropy.Source
}

// NewSystem starts a weather system in the given condition. A nil roll
// source freezes the weather, which tests rely on.
func NewSystem(start Condition, rolls entropy.Source) *System {
	return &System{current: start, rolls: rolls}
}

// Current returns the active condition.
func (s *System) Current() Condition { return s.current }

// Advance rolls one weather transition, typically once per turn cycle.
// Returns true when the condition changed.
func (s *System) Advance() bool {
	if s.rolls == nil {
		return false
	}
	roll := s.rolls.Float()
	acc := 0.0
	for _, t := range transitions[s.current] {
		acc += t.p
		if roll < acc {
			slog.Info("weather changed", "from", s.current.String(), "to", t.to.String())
			s.current = t.to
			return true
		}
	}
	return false
}

// ScaleRange applies a modifier to a range in hex cells, never shrinking a
// positive range below one cell.
func ScaleRange(cells int, modifier float64) int {
	if cells <= 0 {
		return 0
	}
	scaled := int(float64(cells) * modifier)
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}
