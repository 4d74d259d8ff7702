package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/normanking/heroavatar/internal/bus"
	"github.com/normanking/heroavatar/internal/config"
	"github.com/normanking/heroavatar/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportOptions_Defaults(t *testing.T) {
	opts, err := viewportOptions(config.DefaultConfig())
	require.NoError(t, err)

	cam := opts.Camera(2)
	assert.Equal(t, float32(50), cam.FOV)
	assert.Equal(t, float32(2), cam.AspectRatio)
	assert.Equal(t, mgl32.Vec3{0, 1, 3}, cam.Position)

	require.Len(t, opts.Lighting.Lights, 1, "point fill is off by default")
	key := opts.Lighting.Lights[0]
	assert.Equal(t, scene.LightTypeDirectional, key.Type)
	assert.Equal(t, mgl32.Vec3{5, 5, 3}, key.Position)
	assert.Equal(t, float32(1.5), opts.Lighting.AmbientIntensity)

	assert.Equal(t, float32(2), opts.AssetScale)
	assert.Equal(t, mgl32.Vec3{0, -2.3, -1}, opts.AssetOffset)
	assert.Equal(t, float32(0.3), opts.Params.HeadYaw)
	assert.NotNil(t, opts.Params.BreathEase)
	assert.False(t, opts.AutoplayClip)
}

func TestViewportOptions_PointLight(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Lighting.PointEnabled = true

	opts, err := viewportOptions(cfg)
	require.NoError(t, err)
	require.Len(t, opts.Lighting.Lights, 2)
	assert.Equal(t, scene.LightTypePoint, opts.Lighting.Lights[1].Type)
	assert.Equal(t, float32(10), opts.Lighting.Lights[1].Range)
}

func TestViewportOptions_BadValues(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Animation.HeadEase = "bounce"
	_, err := viewportOptions(cfg)
	assert.ErrorContains(t, err, "animation.head_ease")

	cfg = config.DefaultConfig()
	cfg.Lighting.DirectionalColor = "purple"
	_, err = viewportOptions(cfg)
	assert.ErrorContains(t, err, "lighting.directional_color")
}

func TestRendererConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Renderer.HotReload = true
	events := bus.NewEventBus()

	rc, err := rendererConfig(cfg, events)
	require.NoError(t, err)
	assert.True(t, rc.HotReload)
	assert.Same(t, events, rc.Events)
	assert.InDelta(t, 0x0f/255.0, rc.ClearColor[0], 1e-6)

	cfg.Renderer.ErrorColor = "#zz"
	_, err = rendererConfig(cfg, nil)
	assert.ErrorContains(t, err, "renderer.error_color")
}

func TestMarqueeTitle(t *testing.T) {
	assert.Equal(t, "Hero Avatar", marqueeTitle("Hero Avatar", ""))
	assert.Equal(t, "Hero Avatar | React", marqueeTitle("Hero Avatar", "React"))
}
