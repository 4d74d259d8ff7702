// Package config provides configuration management for heroavatar
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `mapstructure:"window"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Lighting  LightingConfig  `mapstructure:"lighting"`
	Asset     AssetConfig     `mapstructure:"asset"`
	Animation AnimationConfig `mapstructure:"animation"`
	Renderer  RendererConfig  `mapstructure:"renderer"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Log       LogConfig       `mapstructure:"log"`
}

// WindowConfig configures the window
type WindowConfig struct {
	Title       string `mapstructure:"title"`
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	VSync       bool   `mapstructure:"vsync"`
	MSAA        int    `mapstructure:"msaa"`
	Transparent bool   `mapstructure:"transparent"`
	Marquee     bool   `mapstructure:"marquee"` // cycle the role strings in the title
}

// CameraConfig configures the perspective camera
type CameraConfig struct {
	FOV      float64   `mapstructure:"fov"` // vertical, degrees
	Near     float64   `mapstructure:"near"`
	Far      float64   `mapstructure:"far"`
	Position []float64 `mapstructure:"position"`
	Target   []float64 `mapstructure:"target"`
}

// LightingConfig configures the light rig
type LightingConfig struct {
	AmbientColor         string    `mapstructure:"ambient_color"`
	AmbientIntensity     float64   `mapstructure:"ambient_intensity"`
	DirectionalColor     string    `mapstructure:"directional_color"`
	DirectionalIntensity float64   `mapstructure:"directional_intensity"`
	DirectionalPosition  []float64 `mapstructure:"directional_position"`
	PointEnabled         bool      `mapstructure:"point_enabled"`
	PointColor           string    `mapstructure:"point_color"`
	PointIntensity       float64   `mapstructure:"point_intensity"`
	PointRange           float64   `mapstructure:"point_range"`
	PointPosition        []float64 `mapstructure:"point_position"`
}

// AssetConfig configures the character model
type AssetConfig struct {
	Path         string        `mapstructure:"path"`
	LoadTimeout  time.Duration `mapstructure:"load_timeout"`
	StallTimeout time.Duration `mapstructure:"stall_timeout"`
	Scale        float64       `mapstructure:"scale"`
	Offset       []float64     `mapstructure:"offset"`
}

// AnimationConfig tunes the idle motion
type AnimationConfig struct {
	HeadYaw      float64 `mapstructure:"head_yaw"`
	HeadPitch    float64 `mapstructure:"head_pitch"`
	HeadDuration float64 `mapstructure:"head_duration"`
	HeadEase     string  `mapstructure:"head_ease"`

	BreathDelta    []float64 `mapstructure:"breath_delta"`
	BreathDuration float64   `mapstructure:"breath_duration"`
	BreathStagger  float64   `mapstructure:"breath_stagger"`
	BreathEase     string    `mapstructure:"breath_ease"`

	HandDelta    []float64 `mapstructure:"hand_delta"`
	HandDuration float64   `mapstructure:"hand_duration"`
	HandEase     string    `mapstructure:"hand_ease"`

	AutoplayClip bool `mapstructure:"autoplay_clip"`
}

// RendererConfig configures the GL backend
type RendererConfig struct {
	ShaderDir  string `mapstructure:"shader_dir"` // empty uses the built-in shaders
	HotReload  bool   `mapstructure:"hot_reload"`
	ClearColor string `mapstructure:"clear_color"`
	ErrorColor string `mapstructure:"error_color"`
}

// SnapshotConfig configures frame export
type SnapshotConfig struct {
	Dir      string `mapstructure:"dir"`
	Key      string `mapstructure:"key"`
	MaxWidth int    `mapstructure:"max_width"` // 0 keeps the framebuffer size
}

// LogConfig configures logging
type LogConfig struct {
	Dir     string `mapstructure:"dir"`
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	dir, _ := GetConfigDir()
	return &Config{
		Window: WindowConfig{
			Title:   "Hero Avatar",
			Width:   960,
			Height:  720,
			VSync:   true,
			MSAA:    4,
			Marquee: true,
		},
		Camera: CameraConfig{
			FOV:      50,
			Near:     0.1,
			Far:      100,
			Position: []float64{0, 1, 3},
			Target:   []float64{0, 1, 0},
		},
		Lighting: LightingConfig{
			AmbientColor:         "#ffffff",
			AmbientIntensity:     1.5,
			DirectionalColor:     "#a855f7",
			DirectionalIntensity: 2,
			DirectionalPosition:  []float64{5, 5, 3},
			PointColor:           "#ffffff",
			PointIntensity:       1,
			PointRange:           10,
			PointPosition:        []float64{-2, 2, 2},
		},
		Asset: AssetConfig{
			Path:         filepath.Join("assets", "models", "character.glb"),
			LoadTimeout:  30 * time.Second,
			StallTimeout: 10 * time.Second,
			Scale:        2,
			Offset:       []float64{0, -2.3, -1},
		},
		Animation: AnimationConfig{
			HeadYaw:        0.3,
			HeadPitch:      0.2,
			HeadDuration:   0.8,
			HeadEase:       "power2.out",
			BreathDelta:    []float64{0.05, 0.03, 0.02},
			BreathDuration: 3,
			BreathStagger:  0.1,
			BreathEase:     "power1.out",
			HandDelta:      []float64{0.1, 0.05, 0.05},
			HandDuration:   2,
			HandEase:       "sine.inOut",
		},
		Renderer: RendererConfig{
			ClearColor: "#0f0a1a",
			ErrorColor: "#3a0d14",
		},
		Snapshot: SnapshotConfig{
			Dir: filepath.Join(dir, "snapshots"),
			Key: "S",
		},
		Log: LogConfig{
			Dir:     filepath.Join(dir, "logs"),
			Level:   "info",
			Console: true,
		},
	}
}

// Flags declares the command-line overrides. Parse it before Load.
func Flags(name string) *pflag.FlagSet {
	d := DefaultConfig()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a config file")
	fs.String("asset", d.Asset.Path, "character model (.glb or .gltf)")
	fs.Int("width", d.Window.Width, "window width")
	fs.Int("height", d.Window.Height, "window height")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.Bool("hot-reload", d.Renderer.HotReload, "reload shaders from --shader-dir on change")
	fs.String("shader-dir", d.Renderer.ShaderDir, "directory with skinned.vert and skinned.frag")
	fs.Bool("autoplay", d.Animation.AutoplayClip, "loop the first animation clip in the asset")
	fs.Bool("write-config", false, "write the effective config to the config directory and exit")
	return fs
}

// flag name -> config key
var flagKeys = map[string]string{
	"asset":      "asset.path",
	"width":      "window.width",
	"height":     "window.height",
	"log-level":  "log.level",
	"hot-reload": "renderer.hot_reload",
	"shader-dir": "renderer.shader_dir",
	"autoplay":   "animation.autoplay_clip",
}

// Load reads defaults, the config file, HEROAVATAR_* environment variables
// and flags, in increasing priority. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	var paths []string
	if dir, err := GetConfigDir(); err == nil {
		paths = append(paths, dir)
	}
	paths = append(paths, ".")
	return load(viper.New(), flags, paths)
}

func load(v *viper.Viper, flags *pflag.FlagSet, searchPaths []string) (*Config, error) {
	if err := setDefaults(v, DefaultConfig()); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("HEROAVATAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", explicit, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// decode into a zero value so lists from the file replace the defaults
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// setDefaults registers every default key so env variables can override
// keys the config file does not mention.
func setDefaults(v *viper.Viper, cfg *Config) error {
	sections, err := cfg.sections()
	if err != nil {
		return err
	}
	for name, values := range sections {
		for k, val := range values {
			v.SetDefault(name+"."+k, val)
		}
	}
	return nil
}

func (c *Config) sections() (map[string]map[string]interface{}, error) {
	raw := []struct {
		name string
		v    interface{}
	}{
		{"window", c.Window},
		{"camera", c.Camera},
		{"lighting", c.Lighting},
		{"asset", c.Asset},
		{"animation", c.Animation},
		{"renderer", c.Renderer},
		{"snapshot", c.Snapshot},
		{"log", c.Log},
	}
	out := make(map[string]map[string]interface{}, len(raw))
	for _, s := range raw {
		m := map[string]interface{}{}
		if err := mapstructure.Decode(s.v, &m); err != nil {
			return nil, fmt.Errorf("encode %s section: %w", s.name, err)
		}
		out[s.name] = m
	}
	return out, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera planes near=%v far=%v are invalid", c.Camera.Near, c.Camera.Far))
	}
	vecs := map[string][]float64{
		"camera.position":               c.Camera.Position,
		"camera.target":                 c.Camera.Target,
		"lighting.directional_position": c.Lighting.DirectionalPosition,
		"lighting.point_position":       c.Lighting.PointPosition,
		"asset.offset":                  c.Asset.Offset,
		"animation.breath_delta":        c.Animation.BreathDelta,
		"animation.hand_delta":          c.Animation.HandDelta,
	}
	for key, vec := range vecs {
		if len(vec) != 3 {
			errs = append(errs, fmt.Errorf("%s needs 3 components, got %d", key, len(vec)))
		}
	}
	if c.Asset.Path == "" {
		errs = append(errs, errors.New("asset.path is empty"))
	}
	if c.Asset.Scale <= 0 {
		errs = append(errs, fmt.Errorf("asset.scale %v must be positive", c.Asset.Scale))
	}
	durations := []struct {
		key string
		v   float64
	}{
		{"animation.head_duration", c.Animation.HeadDuration},
		{"animation.breath_duration", c.Animation.BreathDuration},
		{"animation.hand_duration", c.Animation.HandDuration},
	}
	for _, d := range durations {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%s %v must be positive", d.key, d.v))
		}
	}
	return errors.Join(errs...)
}

// Save writes the configuration as YAML to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	sections, err := cfg.sections()
	if err != nil {
		return err
	}

	v := viper.New()
	for name, values := range sections {
		v.Set(name, values)
	}
	return v.WriteConfigAs(path)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".heroavatar"), nil
}

// Vec3 converts a three-component list. Missing components are zero.
func Vec3(s []float64) mgl32.Vec3 {
	var v mgl32.Vec3
	for i := 0; i < len(s) && i < 3; i++ {
		v[i] = float32(s[i])
	}
	return v
}
