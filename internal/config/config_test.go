package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := load(viper.New(), nil, []string{t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("assets", "models", "character.glb"), cfg.Asset.Path)
	assert.Equal(t, 30*time.Second, cfg.Asset.LoadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Asset.StallTimeout)
	assert.Equal(t, 50.0, cfg.Camera.FOV)
	assert.Equal(t, []float64{0, 1, 3}, cfg.Camera.Position)
	assert.Equal(t, "#a855f7", cfg.Lighting.DirectionalColor)
	assert.Equal(t, 1.5, cfg.Lighting.AmbientIntensity)
	assert.Equal(t, "power2.out", cfg.Animation.HeadEase)
	assert.Equal(t, "power1.out", cfg.Animation.BreathEase)
	assert.False(t, cfg.Animation.AutoplayClip)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
window:
  width: 1280
asset:
  path: models/me.glb
  stall_timeout: 3s
  offset: [0, -1, 0]
animation:
  autoplay_clip: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := load(viper.New(), nil, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "untouched keys keep defaults")
	assert.Equal(t, "models/me.glb", cfg.Asset.Path)
	assert.Equal(t, 3*time.Second, cfg.Asset.StallTimeout)
	assert.Equal(t, []float64{0, -1, 0}, cfg.Asset.Offset)
	assert.True(t, cfg.Animation.AutoplayClip)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HEROAVATAR_ASSET_PATH", "/tmp/env.glb")
	t.Setenv("HEROAVATAR_LOG_LEVEL", "debug")

	cfg, err := load(viper.New(), nil, []string{t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.glb", cfg.Asset.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_FlagsWin(t *testing.T) {
	t.Setenv("HEROAVATAR_ASSET_PATH", "/tmp/env.glb")
	fs := Flags("test")
	require.NoError(t, fs.Parse([]string{"--asset", "flag.glb", "--width", "640", "--autoplay"}))

	cfg, err := load(viper.New(), fs, []string{t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "flag.glb", cfg.Asset.Path)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.True(t, cfg.Animation.AutoplayClip)
	assert.Equal(t, 720, cfg.Window.Height, "unset flags do not shadow defaults")
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	fs := Flags("test")
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))
	_, err := load(viper.New(), fs, nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Window.Height = 0
	cfg.Asset.Offset = []float64{1}
	cfg.Camera.Far = 0.01
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "asset.offset")
	assert.Contains(t, err.Error(), "camera planes")
}

func TestValidate_AnimationDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Animation.BreathDuration = 0
	cfg.Animation.HandDuration = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "animation.breath_duration")
	assert.Contains(t, err.Error(), "animation.hand_duration")
	assert.NotContains(t, err.Error(), "animation.head_duration")
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Asset.Path = "saved.glb"
	cfg.Asset.LoadTimeout = 12 * time.Second
	require.NoError(t, Save(cfg, filepath.Join(dir, "config.yaml")))

	got, err := load(viper.New(), nil, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, "saved.glb", got.Asset.Path)
	assert.Equal(t, 12*time.Second, got.Asset.LoadTimeout)
	assert.Equal(t, cfg.Animation, got.Animation)
}

func TestVec3(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, Vec3([]float64{1, 2, 3, 4}))
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, Vec3([]float64{1}))
}
