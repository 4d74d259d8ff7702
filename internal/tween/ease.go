// Package tween interpolates float targets over time on a single-threaded
// frame scheduler.
package tween

import (
	"strings"

	"github.com/tanema/gween/ease"
)

// Ease is a Penner easing function: elapsed t, begin b, change c, duration d.
type Ease = ease.TweenFunc

// gsap names mapped onto the Penner curves they match.
var (
	Linear      Ease = ease.Linear
	Power1Out   Ease = ease.OutQuad
	Power1InOut Ease = ease.InOutQuad
	Power2Out   Ease = ease.OutCubic
	Power2InOut Ease = ease.InOutCubic
	SineInOut   Ease = ease.InOutSine
)

var eases = map[string]Ease{
	"linear":       Linear,
	"none":         Linear,
	"power1.out":   Power1Out,
	"power1.inout": Power1InOut,
	"power2.out":   Power2Out,
	"power2.inout": Power2InOut,
	"sine.inout":   SineInOut,
}

// EaseByName resolves names such as "power2.out" or "sine.inOut".
func EaseByName(name string) (Ease, bool) {
	e, ok := eases[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// Progress maps linear progress in [0, 1] through e.
func Progress(e Ease, p float32) float32 {
	if e == nil {
		e = Linear
	}
	return e(p, 0, 1, 1)
}
