package timeline

import "math"

// Evaluate returns the property's value at the given frame from its
// keyframes alone (expressions are layered on by Project.ValueAt).
//
// Pure and deterministic: no mutation, safe to call arbitrarily often and
// in any frame order. Sub-frame sampling is allowed; NaN frames are treated
// as 0. Outside the keyframe span the value clamps to the first/last
// keyframe (no extrapolation).
func Evaluate(p *AnimatableProperty, frame float64) Value {
	if p == nil {
		return Value{}
	}
	// A broken Animated flag with no keyframes falls back to the static
	// value rather than failing the render loop.
	if !p.Animated || len(p.Keyframes) == 0 {
		return p.Value
	}
	if math.IsNaN(frame) || frame < 0 {
		frame = 0
	}

	kfs := p.Keyframes
	if frame <= float64(kfs[0].Frame) {
		return kfs[0].Value
	}
	last := kfs[len(kfs)-1]
	if frame >= float64(last.Frame) {
		return last.Value
	}

	// The outgoing keyframe's mode governs the segment.
	k0, k1 := p.bracket(frame)
	switch k0.Interpolation {
	case InterpHold:
		return k0.Value
	case InterpBezier:
		return bezierSegment(k0, k1, frame)
	}

	t := (frame - float64(k0.Frame)) / float64(k1.Frame-k0.Frame)
	if fn, ok := easingCurve(k0.Interpolation); ok {
		t = applyEase(fn, t)
	}
	return lerpValue(k0.Value, k1.Value, t)
}
