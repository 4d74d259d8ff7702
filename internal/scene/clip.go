package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Path selects which transform component a channel drives.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

// Interpolation selects how a channel blends between keys.
type Interpolation int

const (
	InterpLinear Interpolation = iota
	InterpStep
)

// Channel animates one transform component of one node. Rotation values are
// quaternions (x, y, z, w); translation and scale use the first three lanes.
type Channel struct {
	Node          *Node
	Path          Path
	Interpolation Interpolation
	Times         []float32
	Values        [][4]float32
}

// Clip is a named keyframe animation embedded in the asset.
type Clip struct {
	Name     string
	Duration float32
	Channels []Channel
}

// sample returns the channel value at time t.
func (ch *Channel) sample(t float32) [4]float32 {
	n := len(ch.Times)
	if n == 0 || len(ch.Values) == 0 {
		return [4]float32{}
	}
	if n > len(ch.Values) {
		n = len(ch.Values)
	}
	if t <= ch.Times[0] || n == 1 {
		return ch.Values[0]
	}
	if t >= ch.Times[n-1] {
		return ch.Values[n-1]
	}

	// first key strictly after t
	i := sort.Search(n, func(i int) bool { return ch.Times[i] > t })
	a, b := ch.Values[i-1], ch.Values[i]
	if ch.Interpolation == InterpStep {
		return a
	}

	span := ch.Times[i] - ch.Times[i-1]
	alpha := float32(0)
	if span > 0 {
		alpha = (t - ch.Times[i-1]) / span
	}

	if ch.Path == PathRotation {
		qa := mgl32.Quat{W: a[3], V: mgl32.Vec3{a[0], a[1], a[2]}}
		qb := mgl32.Quat{W: b[3], V: mgl32.Vec3{b[0], b[1], b[2]}}
		if qa.Dot(qb) < 0 {
			qb = qb.Scale(-1)
		}
		q := mgl32.QuatSlerp(qa, qb, alpha)
		return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
	}

	var out [4]float32
	for k := range out {
		out[k] = a[k] + (b[k]-a[k])*alpha
	}
	return out
}

// Mixer loops one clip over the graph, leaving excluded nodes alone.
type Mixer struct {
	clip    *Clip
	time    float32
	exclude map[*Node]bool
}

// NewMixer starts clip at time zero. Nodes in exclude are never written.
func NewMixer(clip *Clip, exclude []*Node) *Mixer {
	m := &Mixer{clip: clip, exclude: make(map[*Node]bool, len(exclude))}
	for _, n := range exclude {
		if n != nil {
			m.exclude[n] = true
		}
	}
	return m
}

// Clip returns the clip being played.
func (m *Mixer) Clip() *Clip {
	return m.clip
}

// Time returns the playhead in seconds, wrapped to the clip duration.
func (m *Mixer) Time() float32 {
	return m.time
}

// Advance moves the playhead by dt and applies every channel.
func (m *Mixer) Advance(dt float32) {
	if m.clip == nil {
		return
	}
	m.time += dt
	if d := m.clip.Duration; d > 0 {
		m.time = float32(math.Mod(float64(m.time), float64(d)))
	} else {
		m.time = 0
	}

	for i := range m.clip.Channels {
		ch := &m.clip.Channels[i]
		if ch.Node == nil || m.exclude[ch.Node] {
			continue
		}
		v := ch.sample(m.time)
		switch ch.Path {
		case PathTranslation:
			ch.Node.Translation = mgl32.Vec3{v[0], v[1], v[2]}
		case PathScale:
			ch.Node.Scale = mgl32.Vec3{v[0], v[1], v[2]}
		case PathRotation:
			ch.Node.SetQuat(mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}})
		}
	}
}
