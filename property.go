package timeline

import (
	"sort"

	"github.com/google/uuid"
)

// Interpolation names the curve governing the segment that leaves a
// keyframe. Beyond the constants below, any name registered in the easing
// table (see EasingNames) is valid; unknown names evaluate as linear.
type Interpolation string

const (
	InterpLinear    Interpolation = "linear"
	InterpHold      Interpolation = "hold"
	InterpBezier    Interpolation = "bezier"
	InterpEaseIn    Interpolation = "easeIn"
	InterpEaseOut   Interpolation = "easeOut"
	InterpEaseInOut Interpolation = "easeInOut"
)

// ControlMode governs how a keyframe's two bezier handles move relative to
// each other when one is edited.
type ControlMode string

const (
	// ControlSmooth keeps the handles tangent-continuous: editing one
	// re-aims the other along the opposite direction, preserving its length.
	ControlSmooth ControlMode = "smooth"
	// ControlCorner decouples the handles entirely.
	ControlCorner ControlMode = "corner"
	// ControlSymmetric mirrors the handles exactly (direction and length).
	ControlSymmetric ControlMode = "symmetric"
)

// Handle is a bezier control point as a signed (frame, value) offset from
// its owning keyframe. Handles are never stored as absolute coordinates.
type Handle struct {
	Frame   float64 `json:"frame"`
	Value   float64 `json:"value"`
	Enabled bool    `json:"enabled"`
}

// HandleKind selects which of a keyframe's handles an operation targets.
type HandleKind string

const (
	HandleIn  HandleKind = "in"
	HandleOut HandleKind = "out"
)

// Keyframe is a recorded (frame, value) sample. The Interpolation mode
// shapes the segment from this keyframe to the next one.
type Keyframe struct {
	ID            string        `json:"id"`
	Frame         int           `json:"frame"`
	Value         Value         `json:"value"`
	Interpolation Interpolation `json:"interpolation"`
	ControlMode   ControlMode   `json:"controlMode"`
	InHandle      Handle        `json:"inHandle"`
	OutHandle     Handle        `json:"outHandle"`
}

// NewKeyframe creates a keyframe with the default linear interpolation and
// smooth control mode.
func NewKeyframe(frame int, v Value) *Keyframe {
	return &Keyframe{
		ID:            uuid.NewString(),
		Frame:         frame,
		Value:         v,
		Interpolation: InterpLinear,
		ControlMode:   ControlSmooth,
	}
}

// clone returns a deep copy of the keyframe.
func (k *Keyframe) clone() *Keyframe {
	c := *k
	return &c
}

// AnimatableProperty is one animatable field of a layer.
//
// Invariants: Animated == (len(Keyframes) > 0); Keyframes are strictly
// ascending by Frame with no duplicates. When animated, the keyframe list
// is the source of truth and Value is only a static/display fallback.
type AnimatableProperty struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Kind       ValueKind   `json:"kind"`
	Value      Value       `json:"value"`
	Animated   bool        `json:"animated"`
	Keyframes  []*Keyframe `json:"keyframes,omitempty"`
	Expression *Expression `json:"expression,omitempty"`
}

// NewProperty creates a static (un-animated) property whose kind is taken
// from the initial value.
func NewProperty(name string, v Value) *AnimatableProperty {
	return &AnimatableProperty{
		ID:    uuid.NewString(),
		Name:  name,
		Kind:  v.Kind,
		Value: v,
	}
}

// KeyframeAt returns the keyframe exactly at frame, or nil.
func (p *AnimatableProperty) KeyframeAt(frame int) *Keyframe {
	i := sort.Search(len(p.Keyframes), func(i int) bool {
		return p.Keyframes[i].Frame >= frame
	})
	if i < len(p.Keyframes) && p.Keyframes[i].Frame == frame {
		return p.Keyframes[i]
	}
	return nil
}

// KeyframeByID returns the keyframe with the given id, or nil.
func (p *AnimatableProperty) KeyframeByID(id string) *Keyframe {
	for _, k := range p.Keyframes {
		if k.ID == id {
			return k
		}
	}
	return nil
}

// bracket returns the pair of keyframes surrounding frame, assuming frame
// lies strictly inside the animated span. Callers handle the clamped
// before-first and after-last cases.
func (p *AnimatableProperty) bracket(frame float64) (k0, k1 *Keyframe) {
	i := sort.Search(len(p.Keyframes), func(i int) bool {
		return float64(p.Keyframes[i].Frame) > frame
	})
	return p.Keyframes[i-1], p.Keyframes[i]
}

// insertSorted places k at its sorted position. The caller guarantees no
// existing keyframe shares k.Frame.
func (p *AnimatableProperty) insertSorted(k *Keyframe) {
	i := sort.Search(len(p.Keyframes), func(i int) bool {
		return p.Keyframes[i].Frame > k.Frame
	})
	p.Keyframes = append(p.Keyframes, nil)
	copy(p.Keyframes[i+1:], p.Keyframes[i:])
	p.Keyframes[i] = k
}

// removeByIndex removes the keyframe at index i, keeping order. Uses
// copy+nil so the backing array does not retain a dangling pointer.
func (p *AnimatableProperty) removeByIndex(i int) {
	copy(p.Keyframes[i:], p.Keyframes[i+1:])
	p.Keyframes[len(p.Keyframes)-1] = nil
	p.Keyframes = p.Keyframes[:len(p.Keyframes)-1]
}

// clone returns a deep copy of the property, its keyframes, and its
// expression.
func (p *AnimatableProperty) clone() *AnimatableProperty {
	c := *p
	if len(p.Keyframes) > 0 {
		c.Keyframes = make([]*Keyframe, len(p.Keyframes))
		for i, k := range p.Keyframes {
			c.Keyframes[i] = k.clone()
		}
	}
	if p.Expression != nil {
		c.Expression = p.Expression.clone()
	}
	return &c
}
