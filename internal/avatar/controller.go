package avatar

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/normanking/heroavatar/internal/scene"
	"github.com/normanking/heroavatar/internal/tween"
	"github.com/rs/zerolog"
)

// Params tunes the idle motion.
type Params struct {
	HeadYaw      float32
	HeadPitch    float32
	HeadDuration float32
	HeadEase     tween.Ease

	BreathDelta    mgl32.Vec3
	BreathDuration float32
	BreathStagger  float32
	BreathEase     tween.Ease

	HandDelta    mgl32.Vec3
	HandDuration float32
	HandEase     tween.Ease
}

// DefaultParams returns the tuning of the portfolio character.
func DefaultParams() Params {
	return Params{
		HeadYaw:      0.3,
		HeadPitch:    0.2,
		HeadDuration: 0.8,
		HeadEase:     tween.Power2Out,

		BreathDelta:    mgl32.Vec3{0.05, 0.03, 0.02},
		BreathDuration: 3,
		BreathStagger:  0.1,
		BreathEase:     tween.Power1Out,

		HandDelta:    mgl32.Vec3{0.1, 0.05, 0.05},
		HandDuration: 2,
		HandEase:     tween.SineInOut,
	}
}

// Region is a body area with its own timeline.
type Region int

const (
	RegionHead Region = iota
	RegionBreathing
	RegionHands
)

func (r Region) String() string {
	switch r {
	case RegionHead:
		return "head"
	case RegionBreathing:
		return "breathing"
	case RegionHands:
		return "hands"
	}
	return "unknown"
}

// Started reports which idle loops Start was able to run.
type Started struct {
	Breathing bool
	Hands     bool
}

// Controller drives the idle loops and head tracking of one skeleton.
// Like the scheduler it belongs to the frame thread.
type Controller struct {
	skel   Skeleton
	sched  *tween.Scheduler
	params Params
	log    zerolog.Logger

	head      *tween.Timeline
	breathing *tween.Timeline
	hands     *tween.Timeline

	yaw, pitch float32
	stopped    bool
}

// NewController binds a controller to skel. Timelines run on sched.
func NewController(skel Skeleton, sched *tween.Scheduler, params Params, log zerolog.Logger) *Controller {
	return &Controller{
		skel:   skel,
		sched:  sched,
		params: params,
		log:    log,
	}
}

// Skeleton returns the bones the controller resolved against.
func (c *Controller) Skeleton() Skeleton {
	return c.skel
}

// Start runs every idle loop the skeleton supports. Loops already running
// are left alone.
func (c *Controller) Start() Started {
	if c.stopped {
		return Started{}
	}
	p := c.params

	if c.breathing == nil || !c.breathing.Active() {
		if c.skel.Has(BreathingRoles...) {
			tl := tween.NewTimeline("breathing", -1, true)
			for i, n := range c.skel.Nodes(BreathingRoles...) {
				tl.ByVec3(&n.Rotation, p.BreathDelta, tween.Spec{
					Duration: p.BreathDuration,
					Delay:    float32(i) * p.BreathStagger,
					Ease:     p.BreathEase,
				})
			}
			c.breathing = c.sched.Play(tl)
		} else {
			c.log.Debug().Str("region", RegionBreathing.String()).Msg("arm bones missing, loop skipped")
		}
	}

	if c.hands == nil || !c.hands.Active() {
		if c.skel.Has(HandRoles...) {
			tl := tween.NewTimeline("hands", -1, true)
			for _, n := range c.skel.Nodes(HandRoles...) {
				tl.ByVec3(&n.Rotation, p.HandDelta, tween.Spec{
					Duration: p.HandDuration,
					Ease:     p.HandEase,
				})
			}
			c.hands = c.sched.Play(tl)
		} else {
			c.log.Debug().Str("region", RegionHands.String()).Msg("hand bones missing, loop skipped")
		}
	}

	return Started{
		Breathing: c.breathing != nil && c.breathing.Active(),
		Hands:     c.hands != nil && c.hands.Active(),
	}
}

// HeadTarget maps a pointer position inside a width x height viewport to
// yaw and pitch targets. Positions outside the viewport (a drag past the
// window edge) clamp to the edge. ok is false for an empty viewport.
func HeadTarget(x, y, width, height, yawScale, pitchScale float32) (yaw, pitch float32, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	nx := mgl32.Clamp((x/width)*2-1, -1, 1)
	ny := mgl32.Clamp((y/height)*2-1, -1, 1)
	return nx * yawScale, ny * pitchScale, true
}

// PointerMove retargets the head toward the pointer, replacing any head
// tween still in flight. It reports whether a tween was started.
func (c *Controller) PointerMove(x, y, width, height float32) bool {
	head := c.skel.Bone(RoleHead)
	if c.stopped || head == nil {
		return false
	}
	yaw, pitch, ok := HeadTarget(x, y, width, height, c.params.HeadYaw, c.params.HeadPitch)
	if !ok {
		return false
	}

	c.sched.Cancel(c.head)

	spec := tween.Spec{Duration: c.params.HeadDuration, Ease: c.params.HeadEase}
	c.head = c.sched.Play(tween.NewTimeline("head", 0, false).
		To(&head.Rotation[0], pitch, spec).
		To(&head.Rotation[1], yaw, spec))
	c.yaw, c.pitch = yaw, pitch
	return true
}

// LastTarget returns the most recent head yaw and pitch targets.
func (c *Controller) LastTarget() (yaw, pitch float32) {
	return c.yaw, c.pitch
}

// State reports whether region currently has a running timeline.
func (c *Controller) State(r Region) tween.State {
	var tl *tween.Timeline
	switch r {
	case RegionHead:
		tl = c.head
	case RegionBreathing:
		tl = c.breathing
	case RegionHands:
		tl = c.hands
	}
	if tl != nil && tl.Active() {
		return tween.StateTweening
	}
	return tween.StateIdle
}

// Driven returns the nodes the controller may write to.
func (c *Controller) Driven() []*scene.Node {
	roles := append([]Role{RoleHead}, HandRoles...)
	roles = append(roles, BreathingRoles...)
	return c.skel.Nodes(roles...)
}

// Stop cancels every timeline the controller owns. Later calls to Start and
// PointerMove do nothing.
func (c *Controller) Stop() {
	c.stopped = true
	for _, tl := range []*tween.Timeline{c.head, c.breathing, c.hands} {
		c.sched.Cancel(tl)
	}
	c.head, c.breathing, c.hands = nil, nil, nil
}
