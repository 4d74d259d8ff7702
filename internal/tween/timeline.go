package tween

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
)

// State is a timeline's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateTweening
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTweening:
		return "tweening"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Spec times one track inside a timeline.
type Spec struct {
	Duration float32
	Delay    float32
	Ease     Ease
}

type track struct {
	target   *float32
	relative bool
	value    float32
	spec     Spec

	from, to float32
	tw       *gween.Tween // nil for zero-duration tracks
}

func (tr *track) capture() {
	tr.from = *tr.target
	if tr.relative {
		tr.to = tr.from + tr.value
	} else {
		tr.to = tr.value
	}

	tr.tw = nil
	if tr.spec.Duration > 0 {
		e := tr.spec.Ease
		if e == nil {
			e = Linear
		}
		tr.tw = gween.New(tr.from, tr.to, tr.spec.Duration, e)
	}
}

// apply places the track at playhead t, measured from the timeline start.
func (tr *track) apply(t float32) {
	local := t - tr.spec.Delay
	if tr.tw == nil {
		if local < 0 {
			*tr.target = tr.from
		} else {
			*tr.target = tr.to
		}
		return
	}
	*tr.target, _ = tr.tw.Set(mgl32.Clamp(local, 0, tr.spec.Duration))
}

// Timeline groups tracks that share one playhead, repeat count and yoyo.
// Start values are captured when the timeline is added to a Scheduler.
type Timeline struct {
	Name string

	tracks  []*track
	repeat  int // -1 repeats forever
	yoyo    bool
	span    float32
	elapsed float32
	state   State

	onComplete func()
}

// NewTimeline creates a timeline that plays once plus repeat times.
// A negative repeat loops until cancelled.
func NewTimeline(name string, repeat int, yoyo bool) *Timeline {
	if repeat < 0 {
		repeat = -1
	}
	return &Timeline{Name: name, repeat: repeat, yoyo: yoyo}
}

// By adds a track moving target by delta from its captured start.
func (tl *Timeline) By(target *float32, delta float32, spec Spec) *Timeline {
	return tl.add(&track{target: target, relative: true, value: delta, spec: spec})
}

// To adds a track moving target to an absolute value.
func (tl *Timeline) To(target *float32, value float32, spec Spec) *Timeline {
	return tl.add(&track{target: target, value: value, spec: spec})
}

// ByVec3 adds one relative track per component.
func (tl *Timeline) ByVec3(target *mgl32.Vec3, delta mgl32.Vec3, spec Spec) *Timeline {
	for i := range delta {
		tl.By(&target[i], delta[i], spec)
	}
	return tl
}

// OnComplete registers fn to run once the final repeat ends.
func (tl *Timeline) OnComplete(fn func()) *Timeline {
	tl.onComplete = fn
	return tl
}

func (tl *Timeline) add(tr *track) *Timeline {
	if tr.target == nil {
		return tl
	}
	tl.tracks = append(tl.tracks, tr)
	if end := tr.spec.Delay + tr.spec.Duration; end > tl.span {
		tl.span = end
	}
	return tl
}

// State reports where the timeline is in its lifecycle.
func (tl *Timeline) State() State {
	return tl.state
}

// Active reports whether the timeline is still advancing.
func (tl *Timeline) Active() bool {
	return tl.state == StateTweening
}

// Span is the duration of one iteration including delays.
func (tl *Timeline) Span() float32 {
	return tl.span
}

// Len returns the number of tracks.
func (tl *Timeline) Len() int {
	return len(tl.tracks)
}

// Cancel stops the timeline where it is. Targets keep their current values.
func (tl *Timeline) Cancel() {
	if tl.state == StateIdle || tl.state == StateTweening {
		tl.state = StateCancelled
	}
}

func (tl *Timeline) start() {
	for _, tr := range tl.tracks {
		tr.capture()
	}
	tl.elapsed = 0
	tl.state = StateTweening
	tl.render(0)
}

// advance moves the playhead and reports whether the timeline finished.
func (tl *Timeline) advance(dt float32) bool {
	if tl.state != StateTweening {
		return tl.state != StateIdle
	}

	if tl.span <= 0 {
		tl.render(0)
		tl.finish()
		return true
	}

	tl.elapsed += dt
	cycle := int(math.Floor(float64(tl.elapsed / tl.span)))

	if tl.repeat >= 0 && cycle > tl.repeat {
		// land on the end of the last iteration
		if tl.yoyo && tl.repeat%2 == 1 {
			tl.render(0)
		} else {
			tl.render(tl.span)
		}
		tl.finish()
		return true
	}

	local := tl.elapsed - float32(cycle)*tl.span
	if tl.yoyo && cycle%2 == 1 {
		local = tl.span - local
	}
	tl.render(local)

	if tl.repeat < 0 {
		// keep the playhead small so float32 precision holds on long runs
		period := tl.span
		if tl.yoyo {
			period *= 2
		}
		if tl.elapsed >= period {
			tl.elapsed = float32(math.Mod(float64(tl.elapsed), float64(period)))
		}
	}
	return false
}

func (tl *Timeline) render(t float32) {
	for _, tr := range tl.tracks {
		tr.apply(t)
	}
}

func (tl *Timeline) finish() {
	tl.state = StateDone
	if tl.onComplete != nil {
		tl.onComplete()
	}
}
