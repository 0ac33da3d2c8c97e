package timeline

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
)

// ExpressionType separates the built-in presets from custom references.
type ExpressionType string

const (
	ExpressionPreset ExpressionType = "preset"
	ExpressionCustom ExpressionType = "custom"
)

// Built-in expression names.
const (
	ExprWiggle      = "wiggle"      // params: frequency (Hz), amplitude
	ExprTime        = "time"        // params: multiplier
	ExprRepeatAfter = "repeatAfter" // params: mode (cycle|pingpong|offset)
	ExprLink        = "link"        // params: layer, property, offset
)

// Repeat modes for the repeatAfter expression.
const (
	RepeatCycle    = "cycle"
	RepeatPingpong = "pingpong"
	RepeatOffset   = "offset"
)

// Expression is a procedural override of a property's evaluated value. It
// coexists with the property's keyframes and, when enabled, supersedes
// them for every frame (it never blends with the keyframed value).
type Expression struct {
	Enabled bool           `json:"enabled"`
	Type    ExpressionType `json:"type"`
	Name    string         `json:"name"`
	Params  map[string]any `json:"params,omitempty"`
}

// NewExpression creates an enabled preset expression.
func NewExpression(name string, params map[string]any) *Expression {
	typ := ExpressionPreset
	if name == ExprLink {
		typ = ExpressionCustom
	}
	return &Expression{Enabled: true, Type: typ, Name: name, Params: params}
}

func (e *Expression) clone() *Expression {
	c := *e
	if e.Params != nil {
		c.Params = make(map[string]any, len(e.Params))
		for k, v := range e.Params {
			c.Params[k] = v
		}
	}
	return &c
}

// ExprContext is the read accessor an expression uses to reach outside its
// own property: composition timing and other layers' properties.
type ExprContext interface {
	// FrameRate returns the composition frame rate in frames per second.
	FrameRate() float64
	// ResolveProperty resolves a layer reference (id or name) and a
	// property name to the target property.
	ResolveProperty(layer, property string) (*AnimatableProperty, bool)
}

// EvaluateExpression computes the expression override for the property at
// frame. ok is false when there is no enabled expression; a non-nil error
// means the expression failed and the caller should fall back to the
// keyframe value (the engine never lets an expression break evaluation).
func EvaluateExpression(p *AnimatableProperty, frame float64, ctx ExprContext) (v Value, ok bool, err error) {
	if p == nil || p.Expression == nil || !p.Expression.Enabled {
		return Value{}, false, nil
	}
	if math.IsNaN(frame) || frame < 0 {
		frame = 0
	}

	e := p.Expression
	switch e.Name {
	case ExprWiggle:
		return evalWiggle(p, frame, ctx, e.Params), true, nil
	case ExprTime:
		return evalTime(p, frame, ctx, e.Params), true, nil
	case ExprRepeatAfter:
		return evalRepeatAfter(p, frame, e.Params), true, nil
	case ExprLink:
		return evalLink(p, frame, ctx, e.Params)
	default:
		return Value{}, false, fmt.Errorf("expression %q: unknown name", e.Name)
	}
}

// evalWiggle oscillates around the keyframed base value with deterministic
// value noise: the same (property, frame) pair always produces the same
// output, so scrubbing and re-rendering are stable.
func evalWiggle(p *AnimatableProperty, frame float64, ctx ExprContext, params map[string]any) Value {
	freq := floatParam(params, "frequency", 1)
	amp := floatParam(params, "amplitude", 0)

	fps := DefaultFrameRate
	if ctx != nil && ctx.FrameRate() > 0 {
		fps = ctx.FrameRate()
	}
	x := frame / fps * freq

	base := Evaluate(p, frame)
	if base.Kind == KindEnum {
		return base
	}
	i := math.Floor(x)
	f := x - i
	// Smoothstep between lattice samples keeps the wiggle continuous
	// across frames instead of jumping per sample.
	f = f * f * (3 - 2*f)

	out := base
	n := channelCount(base.Kind)
	for c := 0; c < n; c++ {
		n0 := latticeNoise(p.ID, int64(i), c)
		n1 := latticeNoise(p.ID, int64(i)+1, c)
		out.Ch[c] += amp * (n0 + (n1-n0)*f)
	}
	return out
}

// latticeNoise returns a deterministic sample in [-1, 1] for one lattice
// point of one channel, seeded from the property id.
func latticeNoise(propertyID string, i int64, channel int) float64 {
	h := fnv.New64a()
	h.Write([]byte(propertyID))
	var buf [9]byte
	buf[0] = byte(channel)
	for b := 0; b < 8; b++ {
		buf[1+b] = byte(uint64(i) >> (8 * b))
	}
	h.Write(buf[:])
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.Float64()*2 - 1
}

// evalTime replaces the value with elapsed seconds times the multiplier,
// applied to every channel of the property's kind.
func evalTime(p *AnimatableProperty, frame float64, ctx ExprContext, params map[string]any) Value {
	mult := floatParam(params, "multiplier", 1)
	fps := DefaultFrameRate
	if ctx != nil && ctx.FrameRate() > 0 {
		fps = ctx.FrameRate()
	}
	seconds := frame / fps

	out := Value{Kind: p.Kind}
	n := channelCount(p.Kind)
	for c := 0; c < n; c++ {
		out.Ch[c] = seconds * mult
	}
	return out
}

// evalRepeatAfter extends the property's own keyframe span past its last
// keyframe: cycle loops, pingpong alternates direction, offset accumulates
// the span's net change each cycle. Before the last keyframe the keyframed
// value is returned unchanged.
func evalRepeatAfter(p *AnimatableProperty, frame float64, params map[string]any) Value {
	if len(p.Keyframes) < 2 {
		return Evaluate(p, frame)
	}
	first := float64(p.Keyframes[0].Frame)
	last := float64(p.Keyframes[len(p.Keyframes)-1].Frame)
	span := last - first
	if frame <= last || span <= 0 {
		return Evaluate(p, frame)
	}

	over := frame - last
	switch stringParam(params, "mode", RepeatCycle) {
	case RepeatPingpong:
		k := math.Mod(over, 2*span)
		if k <= span {
			return Evaluate(p, last-k)
		}
		return Evaluate(p, first+(k-span))
	case RepeatOffset:
		cycles := math.Floor(over/span) + 1
		rem := math.Mod(over, span)
		base := Evaluate(p, first+rem)
		lastV := Evaluate(p, last)
		firstV := Evaluate(p, first)
		n := channelCount(base.Kind)
		for c := 0; c < n; c++ {
			base.Ch[c] += cycles * (lastV.Ch[c] - firstV.Ch[c])
		}
		return base
	default: // cycle
		return Evaluate(p, first+math.Mod(over, span))
	}
}

// evalLink resolves "layer X's property Y" through the context and returns
// that property's keyframed value at the same frame, plus an optional
// per-channel offset. Link targets are evaluated without their own
// expression, which keeps resolution a single closed step.
func evalLink(p *AnimatableProperty, frame float64, ctx ExprContext, params map[string]any) (Value, bool, error) {
	layer := stringParam(params, "layer", "")
	propName := stringParam(params, "property", "")
	if layer == "" || propName == "" {
		return Value{}, false, fmt.Errorf("link expression: missing layer or property param")
	}
	if ctx == nil {
		return Value{}, false, fmt.Errorf("link expression: no context to resolve %q.%q", layer, propName)
	}
	target, found := ctx.ResolveProperty(layer, propName)
	if !found {
		return Value{}, false, fmt.Errorf("link expression: target %q.%q not found", layer, propName)
	}
	if target == p {
		return Value{}, false, fmt.Errorf("link expression: property links to itself")
	}

	v := Evaluate(target, frame)
	if off := floatParam(params, "offset", 0); off != 0 && v.Kind != KindEnum {
		n := channelCount(v.Kind)
		for c := 0; c < n; c++ {
			v.Ch[c] += off
		}
	}
	return v, true, nil
}

// floatParam reads a numeric expression parameter, accepting the numeric
// types a JSON round-trip can produce.
func floatParam(params map[string]any, key string, def float64) float64 {
	raw, found := params[key]
	if !found {
		return def
	}
	switch n := raw.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

func stringParam(params map[string]any, key, def string) string {
	if s, found := params[key].(string); found {
		return s
	}
	return def
}
