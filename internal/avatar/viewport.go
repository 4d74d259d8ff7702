package avatar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/normanking/heroavatar/internal/loader"
	"github.com/normanking/heroavatar/internal/scene"
	"github.com/normanking/heroavatar/internal/tween"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyMounted = errors.New("viewport already mounted")
	ErrNotMounted     = errors.New("viewport not mounted")
	ErrUnmounted      = errors.New("viewport unmounted")
	ErrLoadStarted    = errors.New("character load already started")
)

// Surface is the display region the viewport renders into. Callbacks are
// delivered on the frame thread.
type Surface interface {
	FramebufferSize() (width, height int)
	WindowSize() (width, height int)
	ContentScale() float32
	// OnResize reports framebuffer size changes.
	OnResize(fn func(width, height int)) (detach func())
	// OnPointerMove reports the cursor in window coordinates.
	OnPointerMove(fn func(x, y float64)) (detach func())
	ShouldClose() bool
	// Present shows the frame and pumps input events.
	Present()
}

// Status is what the backend should advertise besides the character.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// View is everything the backend needs to draw one frame.
type View struct {
	Camera *scene.Camera
	Lights *scene.LightingRig
	Scene  *scene.Graph
	Status Status
	Time   float32
}

// Backend rasterizes the scene. Every method runs on the frame thread.
type Backend interface {
	Attach(width, height int, scale float32) error
	Resize(width, height int)
	Upload(asset *loader.Asset) error
	SetStatus(status Status)
	Draw(view *View)
	Release()
}

// State is the viewport lifecycle.
type State int

const (
	StateIdle State = iota
	StateMounted
	StateLoading
	StateReady
	StateFailed
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMounted:
		return "mounted"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateUnmounted:
		return "unmounted"
	}
	return "unknown"
}

// Options configure a Viewport.
type Options struct {
	// Camera builds the camera for an aspect ratio. Defaults to the hero camera.
	Camera   func(aspect float32) *scene.Camera
	Lighting *scene.LightingRig

	AssetScale  float32
	AssetOffset mgl32.Vec3

	LoadTimeout  time.Duration
	StallTimeout time.Duration
	Open         loader.OpenFunc

	AutoplayClip bool
	Params       Params
}

// DefaultOptions returns the portfolio art direction.
func DefaultOptions() Options {
	return Options{
		Camera:       scene.NewHeroCamera,
		Lighting:     scene.NewPortfolioLighting(),
		AssetScale:   2,
		AssetOffset:  mgl32.Vec3{0, -2.3, -1},
		LoadTimeout:  30 * time.Second,
		StallTimeout: 10 * time.Second,
		Params:       DefaultParams(),
	}
}

// Viewport binds a character scene to a surface and a backend. It is not
// safe for concurrent use; only the asset load runs off the frame thread.
type Viewport struct {
	opts    Options
	backend Backend
	log     zerolog.Logger

	surface  Surface
	attached bool
	detach   []func()

	state State
	err   error

	camera    *scene.Camera
	lights    *scene.LightingRig
	world     *scene.Graph
	character *scene.Node
	asset     *loader.Asset

	sched *tween.Scheduler
	ctrl  *Controller
	mixer *scene.Mixer
	job   *loader.Job

	elapsed  float32
	onChange func(State, error)
	onFrame  func(dt float32)
}

// NewViewport creates an unmounted viewport.
func NewViewport(backend Backend, opts Options, log zerolog.Logger) *Viewport {
	if opts.Camera == nil {
		opts.Camera = scene.NewHeroCamera
	}
	if opts.Lighting == nil {
		opts.Lighting = scene.NewPortfolioLighting()
	}
	if opts.AssetScale == 0 {
		opts.AssetScale = 1
	}
	return &Viewport{
		opts:    opts,
		backend: backend,
		log:     log,
		sched:   tween.NewScheduler(),
		world:   scene.NewGraph("scene"),
	}
}

// OnStateChange registers fn to run after every state transition.
func (v *Viewport) OnStateChange(fn func(State, error)) {
	v.onChange = fn
}

// OnFrame registers fn to run after every drawn frame.
func (v *Viewport) OnFrame(fn func(dt float32)) {
	v.onFrame = fn
}

// Mount sets up the camera, lights and backend for surface and starts
// observing its size.
func (v *Viewport) Mount(s Surface) error {
	switch v.state {
	case StateIdle:
	case StateUnmounted:
		return ErrUnmounted
	default:
		return ErrAlreadyMounted
	}

	w, h := s.FramebufferSize()
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}
	v.camera = v.opts.Camera(aspect)
	v.lights = v.opts.Lighting

	if err := v.backend.Attach(w, h, s.ContentScale()); err != nil {
		return fmt.Errorf("attach backend: %w", err)
	}
	v.attached = true
	v.surface = s

	v.detach = append(v.detach,
		s.OnResize(v.resize),
		s.OnPointerMove(v.pointerMove),
	)

	v.log.Info().Int("width", w).Int("height", h).Float32("scale", s.ContentScale()).Msg("viewport mounted")
	v.setState(StateMounted, nil)
	return nil
}

func (v *Viewport) resize(width, height int) {
	if v.state == StateUnmounted {
		return
	}
	if !v.camera.SetViewport(width, height) {
		return
	}
	v.backend.Resize(width, height)
	v.log.Debug().Int("width", width).Int("height", height).Msg("viewport resized")
}

func (v *Viewport) pointerMove(x, y float64) {
	if v.ctrl == nil || v.surface == nil {
		return
	}
	w, h := v.surface.WindowSize()
	v.ctrl.PointerMove(float32(x), float32(y), float32(w), float32(h))
}

// LoadCharacter starts loading the asset at path and returns at once. The
// result is applied by a later Frame.
func (v *Viewport) LoadCharacter(ctx context.Context, path string) error {
	switch v.state {
	case StateMounted:
	case StateIdle:
		return ErrNotMounted
	case StateUnmounted:
		return ErrUnmounted
	default:
		return ErrLoadStarted
	}

	v.job = loader.Start(ctx, path, loader.Options{
		Timeout:      v.opts.LoadTimeout,
		StallTimeout: v.opts.StallTimeout,
		Open:         v.opts.Open,
	})
	v.backend.SetStatus(StatusLoading)
	v.log.Info().Str("path", path).Msg("loading character")
	v.setState(StateLoading, nil)
	return nil
}

// Frame advances the viewport by dt seconds and draws it.
func (v *Viewport) Frame(dt float32) {
	if v.state == StateIdle || v.state == StateUnmounted {
		return
	}
	v.elapsed += dt

	if v.job != nil {
		if res, ok := v.job.Poll(); ok {
			v.job = nil
			v.applyLoad(res)
			if v.state == StateUnmounted {
				return
			}
		}
	}

	v.sched.Advance(dt)
	if v.mixer != nil {
		v.mixer.Advance(dt)
	}
	v.world.Update()

	v.backend.Draw(&View{
		Camera: v.camera,
		Lights: v.lights,
		Scene:  v.world,
		Status: v.status(),
		Time:   v.elapsed,
	})
	if v.onFrame != nil {
		v.onFrame(dt)
	}
}

func (v *Viewport) applyLoad(res loader.Result) {
	if res.Err != nil {
		v.fail(res.Err)
		return
	}
	asset := res.Asset
	if err := v.backend.Upload(asset); err != nil {
		v.fail(fmt.Errorf("upload character: %w", err))
		return
	}

	v.asset = asset
	v.character = scene.NewNode("character")
	v.character.Scale = mgl32.Vec3{v.opts.AssetScale, v.opts.AssetScale, v.opts.AssetScale}
	v.character.Translation = v.opts.AssetOffset
	v.character.Add(asset.Graph.Root)
	v.world.Root.Add(v.character)

	skel := ResolveSkeleton(asset.Graph)
	if missing := skel.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, r := range missing {
			names[i] = r.String()
		}
		v.log.Debug().Strs("roles", names).Msg("bones not found")
	}

	v.ctrl = NewController(skel, v.sched, v.opts.Params, v.log)
	started := v.ctrl.Start()

	if v.opts.AutoplayClip && len(asset.Clips) > 0 {
		v.mixer = scene.NewMixer(asset.Clips[0], v.ctrl.Driven())
	}

	v.log.Info().
		Int("nodes", asset.Graph.Count()).
		Int("vertices", asset.VertexCount()).
		Int("clips", len(asset.Clips)).
		Bool("breathing", started.Breathing).
		Bool("hands", started.Hands).
		Bool("head", skel.Has(RoleHead)).
		Msg("character ready")

	v.backend.SetStatus(StatusReady)
	v.setState(StateReady, nil)
}

func (v *Viewport) fail(err error) {
	v.log.Error().Err(err).Msg("failed to load 3D model")
	v.backend.SetStatus(StatusFailed)
	v.setState(StateFailed, err)
}

func (v *Viewport) status() Status {
	switch v.state {
	case StateLoading:
		return StatusLoading
	case StateReady:
		return StatusReady
	case StateFailed:
		return StatusFailed
	}
	return StatusIdle
}

// Run drives frames until ctx ends, the surface closes or the viewport is
// unmounted. clock returns seconds; frame deltas are capped at 100 ms.
func (v *Viewport) Run(ctx context.Context, clock func() float64) error {
	if v.state == StateIdle {
		return ErrNotMounted
	}
	surface := v.surface
	last := clock()
	for v.state != StateUnmounted && !surface.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := clock()
		dt := float32(now - last)
		last = now
		if dt > 0.1 {
			dt = 0.1
		} else if dt < 0 {
			dt = 0
		}

		v.Frame(dt)
		// a hook may have unmounted the viewport mid-frame
		if v.state == StateUnmounted {
			return nil
		}
		surface.Present()
	}
	return nil
}

// Unmount stops animation, detaches listeners, abandons any load in flight
// and releases the backend. It is safe to call more than once.
func (v *Viewport) Unmount() {
	if v.state == StateUnmounted {
		return
	}

	if v.ctrl != nil {
		v.ctrl.Stop()
	}
	v.sched.CancelAll()
	v.mixer = nil

	for _, fn := range v.detach {
		if fn != nil {
			fn()
		}
	}
	v.detach = nil

	if v.job != nil {
		v.job.Cancel()
		v.job = nil
	}

	if v.attached {
		v.backend.Release()
		v.attached = false
	}
	v.surface = nil

	v.log.Info().Msg("viewport unmounted")
	v.setState(StateUnmounted, nil)
}

func (v *Viewport) setState(s State, err error) {
	v.state = s
	v.err = err
	if v.onChange != nil {
		v.onChange(s, err)
	}
}

// State returns the lifecycle state.
func (v *Viewport) State() State {
	return v.state
}

// Err returns the load error once the viewport failed.
func (v *Viewport) Err() error {
	return v.err
}

// Camera returns the viewport camera, nil before Mount.
func (v *Viewport) Camera() *scene.Camera {
	return v.camera
}

// Controller returns the animation controller, nil until the character is ready.
func (v *Viewport) Controller() *Controller {
	return v.ctrl
}

// Scene returns the main scene graph.
func (v *Viewport) Scene() *scene.Graph {
	return v.world
}

// Asset returns the loaded character, nil until ready.
func (v *Viewport) Asset() *loader.Asset {
	return v.asset
}
