// Package marquee types and deletes a list of strings one character at a
// time, looping forever. It is driven by frame deltas, not timers.
package marquee

import "time"

// Timing is the per-step pacing.
type Timing struct {
	Type   time.Duration // per character typed
	Delete time.Duration // per character deleted
	Hold   time.Duration // full string shown
	Gap    time.Duration // empty before the next string
}

// DefaultTiming types at 75 ms per character.
func DefaultTiming() Timing {
	return Timing{
		Type:   75 * time.Millisecond,
		Delete: 25 * time.Millisecond,
		Hold:   1500 * time.Millisecond,
		Gap:    750 * time.Millisecond,
	}
}

type phase int

const (
	phaseTyping phase = iota
	phaseHolding
	phaseDeleting
	phaseGap
)

const minStep = time.Millisecond

type Marquee struct {
	strings [][]rune
	timing  Timing

	index int
	shown int
	phase phase
	acc   time.Duration
}

func New(strs []string, timing Timing) *Marquee {
	m := &Marquee{timing: timing}
	for _, s := range strs {
		m.strings = append(m.strings, []rune(s))
	}
	for _, d := range []*time.Duration{&m.timing.Type, &m.timing.Delete, &m.timing.Hold, &m.timing.Gap} {
		if *d < minStep {
			*d = minStep
		}
	}
	return m
}

// Text is the currently visible prefix.
func (m *Marquee) Text() string {
	if len(m.strings) == 0 {
		return ""
	}
	return string(m.strings[m.index][:m.shown])
}

// Index is the string currently being typed or deleted.
func (m *Marquee) Index() int {
	return m.index
}

// Advance moves the marquee forward by dt and reports whether the visible
// text changed.
func (m *Marquee) Advance(dt time.Duration) (text string, changed bool) {
	if len(m.strings) == 0 || dt <= 0 {
		return m.Text(), false
	}

	m.acc += dt
	for {
		d := m.stepDuration()
		if m.acc < d {
			break
		}
		m.acc -= d
		if m.step() {
			changed = true
		}
	}
	return m.Text(), changed
}

func (m *Marquee) stepDuration() time.Duration {
	switch m.phase {
	case phaseHolding:
		return m.timing.Hold
	case phaseDeleting:
		return m.timing.Delete
	case phaseGap:
		return m.timing.Gap
	}
	return m.timing.Type
}

func (m *Marquee) step() bool {
	cur := m.strings[m.index]
	switch m.phase {
	case phaseTyping:
		if m.shown >= len(cur) {
			m.phase = phaseHolding
			return false
		}
		m.shown++
		if m.shown == len(cur) {
			m.phase = phaseHolding
		}
		return true
	case phaseHolding:
		m.phase = phaseDeleting
		return false
	case phaseDeleting:
		if m.shown == 0 {
			m.phase = phaseGap
			return false
		}
		m.shown--
		if m.shown == 0 {
			m.phase = phaseGap
		}
		return true
	default:
		m.index = (m.index + 1) % len(m.strings)
		m.phase = phaseTyping
		return false
	}
}
