package marquee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const ms = time.Millisecond

func TestMarquee_TypesOneCharacterPerStep(t *testing.T) {
	m := New([]string{"Go", "Hi"}, DefaultTiming())

	text, changed := m.Advance(74 * ms)
	assert.Equal(t, "", text)
	assert.False(t, changed)

	text, changed = m.Advance(1 * ms)
	assert.Equal(t, "G", text)
	assert.True(t, changed)

	text, _ = m.Advance(75 * ms)
	assert.Equal(t, "Go", text)
}

func TestMarquee_FullCycle(t *testing.T) {
	m := New([]string{"Go", "Hi"}, DefaultTiming())

	m.Advance(2 * 75 * ms)
	assert.Equal(t, "Go", m.Text())

	m.Advance(1499 * ms)
	assert.Equal(t, "Go", m.Text(), "held")

	m.Advance(1*ms + 25*ms)
	assert.Equal(t, "G", m.Text())

	m.Advance(25 * ms)
	assert.Equal(t, "", m.Text())
	assert.Equal(t, 0, m.Index())

	m.Advance(750 * ms)
	assert.Equal(t, 1, m.Index())

	m.Advance(75 * ms)
	assert.Equal(t, "H", m.Text())
}

func TestMarquee_LoopsBackToFirst(t *testing.T) {
	m := New([]string{"A", "B"}, DefaultTiming())

	// type, hold, delete, gap for one string
	cycle := 75*ms + 1500*ms + 25*ms + 750*ms
	m.Advance(2 * cycle)
	assert.Equal(t, 0, m.Index())

	m.Advance(75 * ms)
	assert.Equal(t, "A", m.Text())
}

func TestMarquee_LargeDeltaCatchesUp(t *testing.T) {
	m := New([]string{"Full Stack Developer"}, DefaultTiming())

	text, changed := m.Advance(20 * 75 * ms)
	assert.Equal(t, "Full Stack Developer", text)
	assert.True(t, changed)
}

func TestMarquee_Unicode(t *testing.T) {
	m := New([]string{"héllo"}, DefaultTiming())
	m.Advance(2 * 75 * ms)
	assert.Equal(t, "hé", m.Text())
}

func TestMarquee_Empty(t *testing.T) {
	m := New(nil, DefaultTiming())
	text, changed := m.Advance(time.Second)
	assert.Equal(t, "", text)
	assert.False(t, changed)

	z := New([]string{"", "x"}, Timing{})
	assert.NotPanics(t, func() { z.Advance(time.Second) })
}
