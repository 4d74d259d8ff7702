// internal/renderer/shader.go
//
// Shader compilation, management, and hot-reload support
package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// Shader represents a compiled OpenGL shader program
type Shader struct {
	ID uint32

	// Source paths for hot-reload
	vertPath string
	fragPath string

	// Uniform location cache. Only the GL thread touches it.
	uniformCache map[string]int32
}

// NewShaderFromFiles loads and compiles shaders from files
func NewShaderFromFiles(vertPath, fragPath string) (*Shader, error) {
	vertSrc, err := os.ReadFile(vertPath)
	if err != nil {
		return nil, fmt.Errorf("read vertex shader %s: %w", vertPath, err)
	}

	fragSrc, err := os.ReadFile(fragPath)
	if err != nil {
		return nil, fmt.Errorf("read fragment shader %s: %w", fragPath, err)
	}

	shader, err := NewShaderFromSource(cString(string(vertSrc)), cString(string(fragSrc)))
	if err != nil {
		return nil, err
	}

	shader.vertPath = vertPath
	shader.fragPath = fragPath

	return shader, nil
}

// cString appends the terminator the GL bindings expect.
func cString(src string) string {
	if strings.HasSuffix(src, "\x00") {
		return src
	}
	return src + "\x00"
}

// NewShaderFromSource compiles shaders from source strings
func NewShaderFromSource(vertSrc, fragSrc string) (*Shader, error) {
	vertShader, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return nil, fmt.Errorf("link failed: %s", strings.TrimRight(log, "\x00"))
	}

	return &Shader{
		ID:           program,
		uniformCache: make(map[string]int32),
	}, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		typeName := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			typeName = "fragment"
		}

		return 0, fmt.Errorf("%s compile error: %s", typeName, strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

// Use activates this shader program
func (s *Shader) Use() {
	gl.UseProgram(s.ID)
}

// Delete releases shader resources
func (s *Shader) Delete() {
	gl.DeleteProgram(s.ID)
}

// Reload recompiles the shader from its source files. On failure the old
// program stays in use.
func (s *Shader) Reload() error {
	if s.vertPath == "" || s.fragPath == "" {
		return fmt.Errorf("shader was not loaded from files")
	}

	newShader, err := NewShaderFromFiles(s.vertPath, s.fragPath)
	if err != nil {
		return err
	}

	oldID := s.ID
	s.ID = newShader.ID
	s.uniformCache = make(map[string]int32)
	gl.DeleteProgram(oldID)

	return nil
}

func (s *Shader) getUniformLocation(name string) int32 {
	if loc, ok := s.uniformCache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
	s.uniformCache[name] = loc
	return loc
}

// SetBool sets a boolean uniform
func (s *Shader) SetBool(name string, value bool) {
	var v int32
	if value {
		v = 1
	}
	gl.Uniform1i(s.getUniformLocation(name), v)
}

// SetInt sets an integer uniform
func (s *Shader) SetInt(name string, value int32) {
	gl.Uniform1i(s.getUniformLocation(name), value)
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, value float32) {
	gl.Uniform1f(s.getUniformLocation(name), value)
}

// SetVec3 sets a vec3 uniform
func (s *Shader) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3fv(s.getUniformLocation(name), 1, &v[0])
}

// SetVec4 sets a vec4 uniform
func (s *Shader) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4fv(s.getUniformLocation(name), 1, &v[0])
}

// SetMat4 sets a mat4 uniform
func (s *Shader) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(s.getUniformLocation(name), 1, false, &m[0])
}

// SetMat4Array uploads a matrix array, e.g. a joint palette.
func (s *Shader) SetMat4Array(name string, ms []mgl32.Mat4) {
	if len(ms) > 0 {
		gl.UniformMatrix4fv(s.getUniformLocation(name), int32(len(ms)), false, &ms[0][0])
	}
}

// =============================================================================
// SHADER HOT-RELOAD WATCHER
// =============================================================================

// ShaderWatcher watches shader files for changes. Changes are queued and
// applied by Apply on the GL thread.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	log     zerolog.Logger

	mu      sync.RWMutex
	shaders map[string]*Shader // path -> shader
	pending chan *Shader
	done    chan struct{}
}

// NewShaderWatcher creates a new shader watcher
func NewShaderWatcher(log zerolog.Logger) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &ShaderWatcher{
		watcher: watcher,
		log:     log,
		shaders: make(map[string]*Shader),
		pending: make(chan *Shader, 8),
		done:    make(chan struct{}),
	}

	go sw.watchLoop()

	return sw, nil
}

// Watch adds a shader to be watched for changes
func (sw *ShaderWatcher) Watch(shader *Shader) error {
	if shader.vertPath == "" || shader.fragPath == "" {
		return fmt.Errorf("shader was not loaded from files")
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	vertDir := filepath.Dir(shader.vertPath)
	if err := sw.watcher.Add(vertDir); err != nil {
		return err
	}

	fragDir := filepath.Dir(shader.fragPath)
	if fragDir != vertDir {
		if err := sw.watcher.Add(fragDir); err != nil {
			return err
		}
	}

	sw.shaders[filepath.Clean(shader.vertPath)] = shader
	sw.shaders[filepath.Clean(shader.fragPath)] = shader

	return nil
}

func (sw *ShaderWatcher) watchLoop() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			sw.mu.RLock()
			shader, ok := sw.shaders[filepath.Clean(event.Name)]
			sw.mu.RUnlock()
			if !ok {
				continue
			}
			select {
			case sw.pending <- shader:
			default:
				// a reload for this frame is already queued
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn().Err(err).Msg("shader watcher error")
		}
	}
}

// Apply reloads every shader whose files changed since the last call and
// returns how many were reloaded. Call it from the GL thread.
func (sw *ShaderWatcher) Apply() int {
	reloaded := 0
	seen := map[*Shader]bool{}
	for {
		select {
		case s := <-sw.pending:
			if seen[s] {
				continue
			}
			seen[s] = true
			if err := s.Reload(); err != nil {
				sw.log.Error().Err(err).Str("shader", s.fragPath).Msg("shader reload failed")
				continue
			}
			sw.log.Info().Str("shader", s.fragPath).Msg("shader reloaded")
			reloaded++
		default:
			return reloaded
		}
	}
}

// Close stops the shader watcher
func (sw *ShaderWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
