package tween

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(s *Scheduler, seconds, dt float32) {
	for t := float32(0); t < seconds-1e-6; t += dt {
		s.Advance(dt)
	}
}

func TestEaseEndpoints(t *testing.T) {
	for name, e := range eases {
		assert.InDelta(t, 0, Progress(e, 0), 1e-6, name)
		assert.InDelta(t, 1, Progress(e, 1), 1e-6, name)
	}
	assert.Greater(t, Progress(Power2Out, 0.5), float32(0.5), "power2.out should decelerate")
	assert.InDelta(t, 0.5, Progress(SineInOut, 0.5), 1e-6)
	assert.InDelta(t, 0.5, Progress(Power1InOut, 0.5), 1e-6)
	assert.InDelta(t, 0.25, Progress(nil, 0.25), 1e-6)

	e, ok := EaseByName("sine.inOut")
	require.True(t, ok)
	assert.InDelta(t, Progress(SineInOut, 0.25), Progress(e, 0.25), 1e-9)
	_, ok = EaseByName("bounce")
	assert.False(t, ok)
}

func TestTrack_EasedMidpoint(t *testing.T) {
	s := NewScheduler()
	var v float32
	s.Play(NewTimeline("eased", 0, false).To(&v, 2, Spec{Duration: 1, Ease: Power2Out}))

	s.Advance(0.5)
	assert.InDelta(t, 2*Progress(Power2Out, 0.5), v, 1e-5)
}

func TestTrack_ZeroDurationSnapsAfterDelay(t *testing.T) {
	s := NewScheduler()
	var v float32
	tl := s.Play(NewTimeline("snap", 0, false).
		To(&v, 5, Spec{Delay: 0.5}).
		To(new(float32), 1, Spec{Duration: 1}))

	s.Advance(0.25)
	assert.Zero(t, v)
	s.Advance(0.5)
	assert.Equal(t, float32(5), v)
	assert.True(t, tl.Active())
}

func TestTimelineTo_ReachesTarget(t *testing.T) {
	s := NewScheduler()
	var v float32 = 1
	done := false
	tl := NewTimeline("to", 0, false).
		To(&v, 3, Spec{Duration: 1, Ease: Linear}).
		OnComplete(func() { done = true })
	s.Play(tl)

	s.Advance(0.5)
	assert.InDelta(t, 2, v, 1e-5)
	assert.Equal(t, StateTweening, tl.State())

	s.Advance(0.6)
	assert.Equal(t, float32(3), v)
	assert.Equal(t, StateDone, tl.State())
	assert.True(t, done)
	assert.Zero(t, s.Len())
}

func TestTimelineYoyo_OscillatesAroundRest(t *testing.T) {
	s := NewScheduler()
	var v float32 = 0.5
	tl := NewTimeline("yoyo", -1, true).By(&v, 0.1, Spec{Duration: 2, Ease: Linear})
	s.Play(tl)

	s.Advance(2)
	assert.InDelta(t, 0.6, v, 1e-5, "peak after one iteration")

	s.Advance(2)
	assert.InDelta(t, 0.5, v, 1e-5, "back at rest after the reverse leg")

	min, max := v, v
	for i := 0; i < 2000; i++ {
		s.Advance(0.05)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	assert.GreaterOrEqual(t, min, float32(0.5)-1e-4, "never drifts below rest")
	assert.LessOrEqual(t, max, float32(0.6)+1e-4, "never overshoots the delta")
	assert.True(t, tl.Active())
}

func TestTimelineStagger_DelaysEachTrack(t *testing.T) {
	s := NewScheduler()
	var a, b float32
	tl := NewTimeline("stagger", -1, true).
		By(&a, 1, Spec{Duration: 1, Ease: Linear}).
		By(&b, 1, Spec{Duration: 1, Delay: 0.5, Ease: Linear})
	assert.InDelta(t, 1.5, tl.Span(), 1e-6)
	s.Play(tl)

	s.Advance(0.5)
	assert.InDelta(t, 0.5, a, 1e-5)
	assert.InDelta(t, 0, b, 1e-5)

	s.Advance(0.5)
	assert.InDelta(t, 1, a, 1e-5)
	assert.InDelta(t, 0.5, b, 1e-5)
}

func TestByVec3(t *testing.T) {
	s := NewScheduler()
	rot := mgl32.Vec3{1, 2, 3}
	tl := NewTimeline("vec", 0, false).ByVec3(&rot, mgl32.Vec3{0.1, 0.2, 0.3}, Spec{Duration: 1})
	assert.Equal(t, 3, tl.Len())
	s.Play(tl)
	step(s, 1.1, 0.1)

	assert.InDelta(t, 1.1, rot[0], 1e-5)
	assert.InDelta(t, 2.2, rot[1], 1e-5)
	assert.InDelta(t, 3.3, rot[2], 1e-5)
}

func TestSchedulerCancel_FreezesTarget(t *testing.T) {
	s := NewScheduler()
	var v float32
	tl := s.Play(NewTimeline("c", -1, true).To(&v, 1, Spec{Duration: 1, Ease: Linear}))
	s.Advance(0.25)
	s.Cancel(tl)
	s.Advance(0.5)

	assert.InDelta(t, 0.25, v, 1e-5)
	assert.Equal(t, StateCancelled, tl.State())
	assert.Zero(t, s.Len())
}

func TestSchedulerCancelAll(t *testing.T) {
	s := NewScheduler()
	var a, b float32
	t1 := s.Play(NewTimeline("a", -1, true).To(&a, 1, Spec{Duration: 1}))
	t2 := s.Play(NewTimeline("b", -1, false).To(&b, 1, Spec{Duration: 1}))
	require.Equal(t, 2, s.Len())

	s.CancelAll()
	s.Advance(1)

	assert.Zero(t, s.Len())
	assert.False(t, t1.Active())
	assert.False(t, t2.Active())
	assert.Zero(t, a)
	assert.Zero(t, b)
}

func TestSchedulerPlay_FromCallback(t *testing.T) {
	s := NewScheduler()
	var v float32
	second := NewTimeline("second", 0, false).To(&v, 2, Spec{Duration: 1, Ease: Linear})
	first := NewTimeline("first", 0, false).
		To(&v, 1, Spec{Duration: 1, Ease: Linear}).
		OnComplete(func() { s.Play(second) })
	s.Play(first)

	s.Advance(1)
	assert.Equal(t, 1, s.Len())
	assert.True(t, second.Active())

	s.Advance(1)
	assert.Equal(t, float32(2), v)
}

func TestPlay_IgnoresStartedTimeline(t *testing.T) {
	s := NewScheduler()
	var v float32
	tl := NewTimeline("once", 0, false).To(&v, 1, Spec{Duration: 1})
	s.Play(tl)
	s.Play(tl)
	assert.Equal(t, 1, s.Len())
}
