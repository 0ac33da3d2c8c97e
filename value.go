package timeline

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValueKind identifies the channel layout of a Value.
type ValueKind string

const (
	KindNumber ValueKind = "number" // 1 channel
	KindVec2   ValueKind = "vec2"   // 2 channels (x, y)
	KindVec3   ValueKind = "vec3"   // 3 channels (x, y, z)
	KindColor  ValueKind = "color"  // 4 channels (r, g, b, a)
	KindEnum   ValueKind = "enum"   // 1 channel, never interpolated
)

// channelCount returns the number of meaningful channels for a kind.
// Unknown kinds report 1 so malformed data still evaluates instead of
// panicking in the render loop.
func channelCount(k ValueKind) int {
	switch k {
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindColor:
		return 4
	default:
		return 1
	}
}

// Value is a tagged animatable value. All kinds share one flat channel
// array so the evaluator can interpolate per channel without runtime type
// inspection. Ch entries beyond the kind's channel count are zero.
type Value struct {
	Kind ValueKind
	Ch   [4]float64
}

// Number returns a scalar value.
func Number(v float64) Value {
	return Value{Kind: KindNumber, Ch: [4]float64{v}}
}

// Vec2 returns a 2-component vector value.
func Vec2(x, y float64) Value {
	return Value{Kind: KindVec2, Ch: [4]float64{x, y}}
}

// Vec3 returns a 3-component vector value.
func Vec3(x, y, z float64) Value {
	return Value{Kind: KindVec3, Ch: [4]float64{x, y, z}}
}

// RGBA returns a color value. Channels are unclamped; the renderer decides
// what out-of-gamut means.
func RGBA(r, g, b, a float64) Value {
	return Value{Kind: KindColor, Ch: [4]float64{r, g, b, a}}
}

// Enum returns a discrete choice value. Enum values step between keyframes
// rather than interpolating.
func Enum(i int) Value {
	return Value{Kind: KindEnum, Ch: [4]float64{float64(i)}}
}

// Float returns the first channel. For KindNumber and KindEnum this is the
// whole value.
func (v Value) Float() float64 { return v.Ch[0] }

// Int returns the first channel rounded to the nearest integer.
func (v Value) Int() int { return int(math.Round(v.Ch[0])) }

// Channels returns the number of meaningful channels for this value's kind.
func (v Value) Channels() int { return channelCount(v.Kind) }

// lerpValue interpolates a→b at remapped time t, per channel. Enum kinds
// step: the outgoing value holds until t reaches 1.
func lerpValue(a, b Value, t float64) Value {
	if a.Kind == KindEnum {
		if t >= 1 {
			return b
		}
		return a
	}
	out := Value{Kind: a.Kind}
	n := channelCount(a.Kind)
	for c := 0; c < n; c++ {
		out.Ch[c] = a.Ch[c] + (b.Ch[c]-a.Ch[c])*t
	}
	return out
}

// valueJSON is the wire form of a Value.
type valueJSON struct {
	Kind     ValueKind `json:"kind"`
	Channels []float64 `json:"channels"`
}

// MarshalJSON encodes the value as {"kind": ..., "channels": [...]} with
// exactly the kind's channel count.
func (v Value) MarshalJSON() ([]byte, error) {
	n := channelCount(v.Kind)
	ch := make([]float64, n)
	copy(ch, v.Ch[:n])
	return json.Marshal(valueJSON{Kind: v.Kind, Channels: ch})
}

// UnmarshalJSON decodes a value, tolerating a channel list shorter or
// longer than the kind requires (extra channels are dropped, missing ones
// are zero).
func (v *Value) UnmarshalJSON(data []byte) error {
	var w valueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("parse value: %w", err)
	}
	v.Kind = w.Kind
	v.Ch = [4]float64{}
	for i := 0; i < len(w.Channels) && i < 4; i++ {
		v.Ch[i] = w.Channels[i]
	}
	return nil
}
