package main

import (
	"errors"
	"fmt"

	"github.com/normanking/heroavatar/internal/avatar"
	"github.com/normanking/heroavatar/internal/bus"
	"github.com/normanking/heroavatar/internal/config"
	"github.com/normanking/heroavatar/internal/renderer"
	"github.com/normanking/heroavatar/internal/scene"
	"github.com/normanking/heroavatar/internal/tween"
	"github.com/normanking/heroavatar/internal/window"
)

func windowConfig(cfg *config.Config) window.Config {
	return window.Config{
		Title:       cfg.Window.Title,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		VSync:       cfg.Window.VSync,
		MSAA:        cfg.Window.MSAA,
		Transparent: cfg.Window.Transparent,
	}
}

func rendererConfig(cfg *config.Config, events *bus.EventBus) (renderer.Config, error) {
	rc := renderer.DefaultConfig()
	rc.MSAA = cfg.Window.MSAA
	rc.Transparent = cfg.Window.Transparent
	rc.ShaderDir = cfg.Renderer.ShaderDir
	rc.HotReload = cfg.Renderer.HotReload
	rc.Events = events

	var errs []error
	if c, err := scene.ParseHexColor(cfg.Renderer.ClearColor); err != nil {
		errs = append(errs, fmt.Errorf("renderer.clear_color: %w", err))
	} else {
		rc.ClearColor = c
	}
	if c, err := scene.ParseHexColor(cfg.Renderer.ErrorColor); err != nil {
		errs = append(errs, fmt.Errorf("renderer.error_color: %w", err))
	} else {
		rc.ErrorColor = c
	}
	return rc, errors.Join(errs...)
}

func lightingRig(lc config.LightingConfig) (*scene.LightingRig, error) {
	ambient, err := scene.ParseHexColor(lc.AmbientColor)
	if err != nil {
		return nil, fmt.Errorf("lighting.ambient_color: %w", err)
	}
	key, err := scene.ParseHexColor(lc.DirectionalColor)
	if err != nil {
		return nil, fmt.Errorf("lighting.directional_color: %w", err)
	}

	rig := &scene.LightingRig{
		Lights: []scene.Light{{
			Type:      scene.LightTypeDirectional,
			Position:  config.Vec3(lc.DirectionalPosition),
			Color:     key,
			Intensity: float32(lc.DirectionalIntensity),
		}},
		AmbientColor:     ambient,
		AmbientIntensity: float32(lc.AmbientIntensity),
	}

	if lc.PointEnabled {
		fill, err := scene.ParseHexColor(lc.PointColor)
		if err != nil {
			return nil, fmt.Errorf("lighting.point_color: %w", err)
		}
		rig.AddPoint(config.Vec3(lc.PointPosition), fill, float32(lc.PointIntensity), float32(lc.PointRange))
	}
	return rig, nil
}

func ease(name, key string) (tween.Ease, error) {
	e, ok := tween.EaseByName(name)
	if !ok {
		return nil, fmt.Errorf("%s: unknown ease %q", key, name)
	}
	return e, nil
}

func animationParams(ac config.AnimationConfig) (avatar.Params, error) {
	p := avatar.Params{
		HeadYaw:        float32(ac.HeadYaw),
		HeadPitch:      float32(ac.HeadPitch),
		HeadDuration:   float32(ac.HeadDuration),
		BreathDelta:    config.Vec3(ac.BreathDelta),
		BreathDuration: float32(ac.BreathDuration),
		BreathStagger:  float32(ac.BreathStagger),
		HandDelta:      config.Vec3(ac.HandDelta),
		HandDuration:   float32(ac.HandDuration),
	}

	var errs []error
	var err error
	if p.HeadEase, err = ease(ac.HeadEase, "animation.head_ease"); err != nil {
		errs = append(errs, err)
	}
	if p.BreathEase, err = ease(ac.BreathEase, "animation.breath_ease"); err != nil {
		errs = append(errs, err)
	}
	if p.HandEase, err = ease(ac.HandEase, "animation.hand_ease"); err != nil {
		errs = append(errs, err)
	}
	return p, errors.Join(errs...)
}

func viewportOptions(cfg *config.Config) (avatar.Options, error) {
	opts := avatar.DefaultOptions()

	cam := cfg.Camera
	opts.Camera = func(aspect float32) *scene.Camera {
		return scene.NewCamera(
			config.Vec3(cam.Position),
			config.Vec3(cam.Target),
			float32(cam.FOV),
			aspect,
			float32(cam.Near), float32(cam.Far),
		)
	}

	rig, err := lightingRig(cfg.Lighting)
	if err != nil {
		return opts, err
	}
	opts.Lighting = rig

	params, err := animationParams(cfg.Animation)
	if err != nil {
		return opts, err
	}
	opts.Params = params

	opts.AssetScale = float32(cfg.Asset.Scale)
	opts.AssetOffset = config.Vec3(cfg.Asset.Offset)
	opts.LoadTimeout = cfg.Asset.LoadTimeout
	opts.StallTimeout = cfg.Asset.StallTimeout
	opts.AutoplayClip = cfg.Animation.AutoplayClip
	return opts, nil
}

// marqueeTitle joins the configured title and the visible marquee text.
func marqueeTitle(base, text string) string {
	if text == "" {
		return base
	}
	return base + " | " + text
}
