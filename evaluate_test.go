package timeline

import (
	"math"
	"math/rand/v2"
	"testing"
)

func approxEqual(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", msg, got, want, tol)
	}
}

// numberRamp builds an animated scalar property from (frame, value) pairs.
func numberRamp(pairs ...[2]float64) *AnimatableProperty {
	p := NewProperty("test", Number(0))
	for _, pair := range pairs {
		p.AddKeyframe(int(pair[0]), Number(pair[1]))
	}
	return p
}

// --- Static fallback ---

func TestEvaluateStatic(t *testing.T) {
	p := NewProperty("opacity", Number(42))
	if got := Evaluate(p, 10).Float(); got != 42 {
		t.Errorf("static evaluate = %v, want 42", got)
	}
}

func TestEvaluateBrokenAnimatedFlag(t *testing.T) {
	// Animated with zero keyframes is a broken invariant; fall back to the
	// static value instead of failing the render loop.
	p := NewProperty("x", Number(7))
	p.Animated = true
	if got := Evaluate(p, 5).Float(); got != 7 {
		t.Errorf("evaluate = %v, want static fallback 7", got)
	}
}

func TestEvaluateNilProperty(t *testing.T) {
	if got := Evaluate(nil, 0); got != (Value{}) {
		t.Errorf("nil property = %v, want zero value", got)
	}
}

// --- Linear exactness ---

func TestLinearExactness(t *testing.T) {
	p := numberRamp([2]float64{0, 0}, [2]float64{80, 100})
	if got := Evaluate(p, 40).Float(); got != 50 {
		t.Errorf("evaluate(40) = %v, want 50", got)
	}
	if got := Evaluate(p, 0).Float(); got != 0 {
		t.Errorf("evaluate(0) = %v, want 0", got)
	}
	if got := Evaluate(p, 80).Float(); got != 100 {
		t.Errorf("evaluate(80) = %v, want 100", got)
	}
}

// --- Clamping ---

func TestEvaluateClampsOutsideSpan(t *testing.T) {
	p := numberRamp([2]float64{10, 5}, [2]float64{20, 15})
	if got := Evaluate(p, 0).Float(); got != 5 {
		t.Errorf("before first keyframe = %v, want 5", got)
	}
	if got := Evaluate(p, 999).Float(); got != 15 {
		t.Errorf("after last keyframe = %v, want 15", got)
	}
	if got := Evaluate(p, math.NaN()).Float(); got != 5 {
		t.Errorf("NaN frame = %v, want 5 (treated as 0)", got)
	}
	if got := Evaluate(p, -3).Float(); got != 5 {
		t.Errorf("negative frame = %v, want 5", got)
	}
}

// --- Hold semantics ---

func TestHoldSemantics(t *testing.T) {
	p := numberRamp([2]float64{0, 0}, [2]float64{80, 100})
	p.Keyframes[0].Interpolation = InterpHold

	if got := Evaluate(p, 40).Float(); got != 0 {
		t.Errorf("evaluate(40) = %v, want 0", got)
	}
	if got := Evaluate(p, 79).Float(); got != 0 {
		t.Errorf("evaluate(79) = %v, want 0", got)
	}
	if got := Evaluate(p, 80).Float(); got != 100 {
		t.Errorf("evaluate(80) = %v, want 100", got)
	}
}

// --- Easing segments ---

func TestEasedSegmentEndpoints(t *testing.T) {
	p := numberRamp([2]float64{0, 0}, [2]float64{100, 200})
	p.Keyframes[0].Interpolation = "inOutCubic"

	approxEqual(t, Evaluate(p, 0).Float(), 0, 1e-9, "evaluate(0)")
	approxEqual(t, Evaluate(p, 100).Float(), 200, 1e-9, "evaluate(100)")
	approxEqual(t, Evaluate(p, 50).Float(), 100, 1e-3, "evaluate(50)")

	// inQuad at t=0.5 remaps to 0.25.
	p.Keyframes[0].Interpolation = InterpEaseIn
	approxEqual(t, Evaluate(p, 50).Float(), 50, 1e-3, "easeIn evaluate(50)")
}

func TestUnknownInterpolationFallsBackToLinear(t *testing.T) {
	p := numberRamp([2]float64{0, 0}, [2]float64{80, 100})
	p.Keyframes[0].Interpolation = "notARealCurve"
	if got := Evaluate(p, 40).Float(); got != 50 {
		t.Errorf("unknown interpolation evaluate(40) = %v, want linear 50", got)
	}
}

// --- Vector and enum channels ---

func TestEvaluateVectorPerChannel(t *testing.T) {
	p := NewProperty("position", Vec2(0, 0))
	p.AddKeyframe(0, Vec2(0, 100))
	p.AddKeyframe(10, Vec2(50, 200))

	got := Evaluate(p, 5)
	approxEqual(t, got.Ch[0], 25, 1e-9, "x at frame 5")
	approxEqual(t, got.Ch[1], 150, 1e-9, "y at frame 5")
}

func TestEvaluateEnumSteps(t *testing.T) {
	p := NewProperty("blendMode", Enum(0))
	p.AddKeyframe(0, Enum(0))
	p.AddKeyframe(10, Enum(4))
	if got := Evaluate(p, 9).Int(); got != 0 {
		t.Errorf("enum at frame 9 = %d, want 0", got)
	}
	if got := Evaluate(p, 10).Int(); got != 4 {
		t.Errorf("enum at frame 10 = %d, want 4", got)
	}
}

// --- Determinism ---

func TestEvaluateDeterministicAnyOrder(t *testing.T) {
	p := numberRamp([2]float64{0, 0}, [2]float64{30, 50}, [2]float64{60, -20}, [2]float64{90, 80})
	p.Keyframes[1].Interpolation = "outBounce"
	p.Keyframes[2].Interpolation = InterpHold

	want := make(map[float64]float64)
	for f := 0.0; f <= 90; f += 1.5 {
		want[f] = Evaluate(p, f).Float()
	}

	// Scrub the same frames in random order, repeatedly.
	r := rand.New(rand.NewPCG(1, 2))
	frames := make([]float64, 0, len(want))
	for f := range want {
		frames = append(frames, f)
	}
	for pass := 0; pass < 3; pass++ {
		r.Shuffle(len(frames), func(i, j int) { frames[i], frames[j] = frames[j], frames[i] })
		for _, f := range frames {
			if got := Evaluate(p, f).Float(); got != want[f] {
				t.Fatalf("pass %d frame %v = %v, want %v", pass, f, got, want[f])
			}
		}
	}
}

// --- Fade scenario ---

func TestFadeScenario(t *testing.T) {
	p := numberRamp(
		[2]float64{0, 100}, [2]float64{15, 0},
		[2]float64{65, 100}, [2]float64{80, 0},
	)

	if got := Evaluate(p, 0).Float(); got != 100 {
		t.Errorf("frame 0 = %v, want 100", got)
	}
	if got := Evaluate(p, 15).Float(); got != 0 {
		t.Errorf("frame 15 = %v, want 0", got)
	}
	// Default segments are linear, so frame 40 sits halfway up the 0→100
	// ramp between frames 15 and 65.
	if got := Evaluate(p, 40).Float(); got != 50 {
		t.Errorf("frame 40 (linear default) = %v, want 50", got)
	}
	if got := Evaluate(p, 80).Float(); got != 0 {
		t.Errorf("frame 80 = %v, want 0", got)
	}

	// Holding at the second keyframe pins the gap between fades at 0.
	p.Keyframes[1].Interpolation = InterpHold
	if got := Evaluate(p, 40).Float(); got != 0 {
		t.Errorf("frame 40 (hold) = %v, want 0", got)
	}
}
