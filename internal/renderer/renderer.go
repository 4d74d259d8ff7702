// Package renderer is the OpenGL 4.1 backend that draws the skinned
// character for an avatar.Viewport.
package renderer

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/normanking/heroavatar/internal/avatar"
	"github.com/normanking/heroavatar/internal/bus"
	"github.com/normanking/heroavatar/internal/loader"
	"github.com/normanking/heroavatar/internal/scene"
	"github.com/rs/zerolog"
)

var _ avatar.Backend = (*Renderer)(nil)

type Config struct {
	MSAA        int
	Transparent bool
	ClearColor  mgl32.Vec3
	ErrorColor  mgl32.Vec3

	// ShaderDir overrides the built-in shaders with skinned.vert and
	// skinned.frag when both exist.
	ShaderDir string
	HotReload bool

	// Events, when set, receives renderer.shader_reloaded.
	Events *bus.EventBus
}

func DefaultConfig() Config {
	return Config{
		MSAA:       4,
		ClearColor: mgl32.Vec3{0x0f / 255.0, 0x0a / 255.0, 0x1a / 255.0},
		ErrorColor: mgl32.Vec3{0x3a / 255.0, 0x0d / 255.0, 0x14 / 255.0},
	}
}

// CaptureFunc receives a copy of the finished frame.
type CaptureFunc func(img *image.RGBA)

type Renderer struct {
	config Config
	log    zerolog.Logger

	attached bool
	shader   *Shader
	watcher  *ShaderWatcher

	meshes   []*Mesh
	textures []uint32
	joints   []mgl32.Mat4

	status avatar.Status

	fbWidth  int
	fbHeight int

	drawCalls int
	triangles int

	captures []CaptureFunc
}

func New(cfg Config, log zerolog.Logger) *Renderer {
	return &Renderer{config: cfg, log: log}
}

// Attach initializes GL on the current context.
func (r *Renderer) Attach(width, height int, scale float32) error {
	if r.attached {
		return fmt.Errorf("renderer already attached")
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	shader, fromFiles, err := r.loadShader()
	if err != nil {
		return fmt.Errorf("init shaders: %w", err)
	}
	r.shader = shader

	if r.config.HotReload && fromFiles {
		watcher, err := NewShaderWatcher(r.log)
		if err != nil {
			r.log.Warn().Err(err).Msg("shader hot reload unavailable")
		} else if err := watcher.Watch(shader); err != nil {
			r.log.Warn().Err(err).Msg("shader hot reload unavailable")
			_ = watcher.Close()
		} else {
			r.watcher = watcher
		}
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if r.config.MSAA > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}

	r.attached = true
	r.Resize(width, height)

	r.log.Info().
		Str("gl_version", gl.GoStr(gl.GetString(gl.VERSION))).
		Int("width", width).
		Int("height", height).
		Float32("content_scale", scale).
		Bool("custom_shaders", fromFiles).
		Msg("renderer attached")
	return nil
}

func (r *Renderer) loadShader() (*Shader, bool, error) {
	if dir := r.config.ShaderDir; dir != "" {
		vert := filepath.Join(dir, skinnedVertFile)
		frag := filepath.Join(dir, skinnedFragFile)
		if fileExists(vert) && fileExists(frag) {
			s, err := NewShaderFromFiles(vert, frag)
			return s, true, err
		}
		r.log.Warn().Str("dir", dir).Msg("shader files not found, using built-in shaders")
	}
	s, err := NewShaderFromSource(skinnedVertSrc, skinnedFragSrc)
	return s, false, err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resize updates the GL viewport. Zero sizes (minimized windows) are ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.fbWidth = width
	r.fbHeight = height
	if r.attached {
		gl.Viewport(0, 0, int32(width), int32(height))
	}
}

// Upload replaces the GPU copy of the character. Texture decode failures
// leave the primitive untextured.
func (r *Renderer) Upload(asset *loader.Asset) error {
	if !r.attached {
		return fmt.Errorf("renderer not attached")
	}
	r.releaseAsset()

	cache := make(map[*byte]uint32)
	for _, mesh := range asset.Meshes {
		for i := range mesh.Primitives {
			p := &mesh.Primitives[i]
			if len(p.Positions) == 0 {
				continue
			}
			tex := r.texture(p, cache, mesh.Name)
			r.meshes = append(r.meshes, newMesh(p, mesh.Node, mesh.Skin, tex))
		}
	}

	if err := glError(); err != nil {
		r.releaseAsset()
		return fmt.Errorf("upload %s: %w", asset.Path, err)
	}

	r.log.Debug().
		Int("meshes", len(r.meshes)).
		Int("textures", len(r.textures)).
		Msg("asset uploaded")
	return nil
}

func (r *Renderer) texture(p *loader.Primitive, cache map[*byte]uint32, mesh string) uint32 {
	if len(p.Texture) == 0 {
		return 0
	}
	key := &p.Texture[0]
	if tex, ok := cache[key]; ok {
		return tex
	}
	tex, err := CreateTextureFromBytes(p.Texture)
	if err != nil {
		r.log.Warn().Err(err).Str("mesh", mesh).Str("mime", p.TextureMIME).Msg("texture skipped")
		tex = 0
	} else {
		r.textures = append(r.textures, tex)
	}
	cache[key] = tex
	return tex
}

func glError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

func (r *Renderer) SetStatus(status avatar.Status) {
	r.status = status
}

// Capture queues fn to receive the next drawn frame.
func (r *Renderer) Capture(fn CaptureFunc) {
	r.captures = append(r.captures, fn)
}

func (r *Renderer) Draw(view *avatar.View) {
	if !r.attached {
		return
	}
	if r.watcher != nil {
		if n := r.watcher.Apply(); n > 0 && r.config.Events != nil {
			r.config.Events.Publish(bus.Event{
				Type: bus.EventTypeShaderReloaded,
				Data: map[string]any{"count": n},
			})
		}
	}

	r.drawCalls = 0
	r.triangles = 0

	c := statusClearColor(r.status, view.Time, r.config.ClearColor, r.config.ErrorColor)
	alpha := float32(1)
	if r.config.Transparent && r.status != avatar.StatusFailed {
		alpha = 0
	}
	gl.ClearColor(c[0], c[1], c[2], alpha)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if r.status == avatar.StatusReady && view.Camera != nil {
		r.drawMeshes(view)
	}

	if len(r.captures) > 0 {
		img := r.ReadPixels()
		for _, fn := range r.captures {
			fn(img)
		}
		r.captures = r.captures[:0]
	}
}

func (r *Renderer) drawMeshes(view *avatar.View) {
	s := r.shader
	s.Use()
	s.SetMat4("uView", view.Camera.ViewMatrix())
	s.SetMat4("uProjection", view.Camera.ProjectionMatrix())
	SetLightUniforms(s, view.Lights)
	s.SetInt("uAlbedo", 0)

	for _, m := range r.meshes {
		if m.Skin != nil {
			r.joints = m.Skin.JointMatrices(r.joints)
			joints := r.joints
			if len(joints) > scene.MaxJoints {
				joints = joints[:scene.MaxJoints]
			}
			s.SetBool("uSkinned", true)
			s.SetMat4Array("uJoints", joints)
			s.SetMat4("uModel", mgl32.Ident4())
		} else {
			s.SetBool("uSkinned", false)
			model := mgl32.Ident4()
			if m.Node != nil {
				model = m.Node.World()
			}
			s.SetMat4("uModel", model)
		}

		s.SetVec4("uBaseColor", m.BaseColor)
		s.SetBool("uHasTexture", m.Texture != 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, m.Texture)

		m.Draw()

		r.drawCalls++
		if m.HasIndices {
			r.triangles += int(m.IndexCount) / 3
		} else {
			r.triangles += int(m.VertexCount) / 3
		}
	}
}

// statusClearColor pulses the background once per second while loading and
// switches to the error tint on failure.
func statusClearColor(status avatar.Status, t float32, base, failed mgl32.Vec3) mgl32.Vec3 {
	switch status {
	case avatar.StatusLoading:
		k := float32(0.5 - 0.5*math.Cos(2*math.Pi*float64(t)))
		lift := mgl32.Vec3{1, 1, 1}.Sub(base).Mul(0.15 * k)
		return base.Add(lift)
	case avatar.StatusFailed:
		return failed
	}
	return base
}

// ReadPixels returns the current back buffer as a top-down RGBA image.
func (r *Renderer) ReadPixels() *image.RGBA {
	w, h := r.fbWidth, r.fbHeight
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return img
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	flipRows(img.Pix, img.Stride, h)
	return img
}

// flipRows reverses row order in place; GL reads bottom-up.
func flipRows(pix []byte, stride, rows int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// Stats reports the previous frame's draw calls and triangles.
func (r *Renderer) Stats() (drawCalls, triangles int) {
	return r.drawCalls, r.triangles
}

func (r *Renderer) releaseAsset() {
	for _, m := range r.meshes {
		m.Delete()
	}
	r.meshes = nil
	if len(r.textures) > 0 {
		gl.DeleteTextures(int32(len(r.textures)), &r.textures[0])
	}
	r.textures = nil
}

// Release frees every GPU resource. Safe to call more than once.
func (r *Renderer) Release() {
	if !r.attached {
		return
	}
	r.releaseAsset()
	if r.watcher != nil {
		_ = r.watcher.Close()
		r.watcher = nil
	}
	if r.shader != nil {
		r.shader.Delete()
		r.shader = nil
	}
	r.captures = nil
	r.attached = false
	r.log.Debug().Msg("renderer released")
}
