package timeline

import (
	"math"

	"honnef.co/go/curve"
)

// bezierEpsilon is the frame-coordinate tolerance for the parametric root
// find. Well under one timebase tick at any plausible zoom.
const bezierEpsilon = 1e-7

// maxBisectIterations bounds the root find; 64 halvings exhaust float64
// precision on any segment length.
const maxBisectIterations = 64

// bezierSegment evaluates the value of the cubic bezier segment between k0
// and k1 at the given frame (k0.Frame <= frame <= k1.Frame).
//
// The curve lives in (frame, value) space: the control points are
// k0 + k0.OutHandle and k1 + k1.InHandle in absolute coordinates. Handles
// are not normalized to unit time — the frame coordinate is solved exactly
// by bisecting the curve's parametric time. Control frames are clamped into
// the segment so the frame coordinate stays monotonic and the bisection
// converges.
func bezierSegment(k0, k1 *Keyframe, frame float64) Value {
	if k0.Value.Kind == KindEnum {
		return k0.Value
	}

	x0 := float64(k0.Frame)
	x3 := float64(k1.Frame)
	x1 := clampFloat(x0+k0.OutHandle.Frame, x0, x3)
	x2 := clampFloat(x3+k1.InHandle.Frame, x0, x3)

	out := Value{Kind: k0.Value.Kind}
	n := channelCount(k0.Value.Kind)

	// The frame coordinate is shared by every channel, so solve the
	// parametric time once on the first channel's curve, then evaluate the
	// remaining channels at that time.
	var t float64
	for c := 0; c < n; c++ {
		y0 := k0.Value.Ch[c]
		y3 := k1.Value.Ch[c]
		cb := curve.CubicBez{
			P0: curve.Pt(x0, y0),
			P1: curve.Pt(x1, y0+k0.OutHandle.Value),
			P2: curve.Pt(x2, y3+k1.InHandle.Value),
			P3: curve.Pt(x3, y3),
		}
		if c == 0 {
			t = solveBezierTime(cb, frame)
		}
		out.Ch[c] = cb.Eval(t).Y
	}
	return out
}

// solveBezierTime bisects the curve's parametric time until the frame (X)
// coordinate matches the target. Assumes X is monotonically non-decreasing
// over t, which the caller establishes by clamping control frames.
func solveBezierTime(cb curve.CubicBez, target float64) float64 {
	lo, hi := 0.0, 1.0
	for i := 0; i < maxBisectIterations; i++ {
		mid := (lo + hi) / 2
		x := cb.Eval(mid).X
		if math.Abs(x-target) < bezierEpsilon {
			return mid
		}
		if x < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
