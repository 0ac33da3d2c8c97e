package timeline

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// easings maps interpolation names to gween tween functions. The short
// easeIn/easeOut/easeInOut aliases are the quadratic curves; the full
// Penner set is addressable by explicit name.
var easings = map[Interpolation]ease.TweenFunc{
	InterpEaseIn:    ease.InQuad,
	InterpEaseOut:   ease.OutQuad,
	InterpEaseInOut: ease.InOutQuad,

	"inQuad":    ease.InQuad,
	"outQuad":   ease.OutQuad,
	"inOutQuad": ease.InOutQuad,

	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,

	"inQuart":    ease.InQuart,
	"outQuart":   ease.OutQuart,
	"inOutQuart": ease.InOutQuart,

	"inQuint":    ease.InQuint,
	"outQuint":   ease.OutQuint,
	"inOutQuint": ease.InOutQuint,

	"inSine":    ease.InSine,
	"outSine":   ease.OutSine,
	"inOutSine": ease.InOutSine,

	"inExpo":    ease.InExpo,
	"outExpo":   ease.OutExpo,
	"inOutExpo": ease.InOutExpo,

	"inCirc":    ease.InCirc,
	"outCirc":   ease.OutCirc,
	"inOutCirc": ease.InOutCirc,

	"inBack":    ease.InBack,
	"outBack":   ease.OutBack,
	"inOutBack": ease.InOutBack,

	"inBounce":    ease.InBounce,
	"outBounce":   ease.OutBounce,
	"inOutBounce": ease.InOutBounce,

	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
}

// easingCurve returns the easing function for an interpolation name.
func easingCurve(name Interpolation) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

// applyEase remaps normalized time t through a gween easing function.
// Every curve satisfies f(0)=0 and f(1)=1; back/bounce/elastic legitimately
// overshoot outside [0,1] in between.
func applyEase(fn ease.TweenFunc, t float64) float64 {
	return float64(fn(float32(t), 0, 1, 1))
}

// IsEasing reports whether name is a registered easing preset.
func IsEasing(name Interpolation) bool {
	_, ok := easings[name]
	return ok
}

// EasingNames returns all registered easing preset names, sorted. Intended
// for UI pickers; "linear", "hold", and "bezier" are interpolation modes,
// not easing presets, and are not listed.
func EasingNames() []Interpolation {
	names := make([]Interpolation, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
