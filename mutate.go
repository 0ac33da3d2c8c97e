package timeline

import (
	"errors"
	"math"
)

// ErrFrameOccupied is returned by MoveKeyframe when another keyframe
// already sits on the destination frame. The move is rejected and state is
// left untouched; merging is the caller's decision.
var ErrFrameOccupied = errors.New("timeline: destination frame already has a keyframe")

// The methods below mutate a property directly without touching history.
// They are the building blocks the Project-level Mutation API wraps in
// undoable transactions; use them directly only for initial document
// construction or in tests.

// AddKeyframe inserts a keyframe at frame, clamping negative frames to 0.
// If a keyframe already exists at that frame its value is replaced in place
// (frames are always unique). Marks the property animated and returns the
// created or updated keyframe.
func (p *AnimatableProperty) AddKeyframe(frame int, v Value) *Keyframe {
	if frame < 0 {
		frame = 0
	}
	if existing := p.KeyframeAt(frame); existing != nil {
		existing.Value = v
		return existing
	}
	k := NewKeyframe(frame, v)
	p.insertSorted(k)
	p.Animated = true
	return k
}

// RemoveKeyframe removes the keyframe with the given id. Unknown ids are a
// no-op so batch removals tolerate stale references. When the last
// keyframe goes, the property falls back to its static value.
func (p *AnimatableProperty) RemoveKeyframe(id string) {
	for i, k := range p.Keyframes {
		if k.ID == id {
			p.removeByIndex(i)
			break
		}
	}
	if len(p.Keyframes) == 0 {
		p.Animated = false
	}
}

// MoveKeyframe re-times a keyframe to newFrame (clamped to 0), keeping the
// list sorted. Moving onto an occupied frame returns ErrFrameOccupied and
// changes nothing. Unknown ids are a no-op.
func (p *AnimatableProperty) MoveKeyframe(id string, newFrame int) error {
	if newFrame < 0 {
		newFrame = 0
	}
	idx := -1
	for i, k := range p.Keyframes {
		if k.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	k := p.Keyframes[idx]
	if k.Frame == newFrame {
		return nil
	}
	if p.KeyframeAt(newFrame) != nil {
		return ErrFrameOccupied
	}
	p.removeByIndex(idx)
	k.Frame = newFrame
	p.insertSorted(k)
	return nil
}

// SetKeyframeValue replaces the value of the keyframe with the given id.
// Unknown ids are a no-op.
func (p *AnimatableProperty) SetKeyframeValue(id string, v Value) {
	if k := p.KeyframeByID(id); k != nil {
		k.Value = v
	}
}

// SetKeyframeInterpolation sets the interpolation mode of the keyframe
// with the given id. Unknown ids are a no-op.
func (p *AnimatableProperty) SetKeyframeInterpolation(id string, interp Interpolation) {
	if k := p.KeyframeByID(id); k != nil {
		k.Interpolation = interp
	}
}

// SetKeyframeControlMode sets the handle coupling mode of the keyframe with
// the given id and immediately re-couples the handles under the new mode
// (symmetric mirrors the out handle from the in handle; smooth re-aims it).
func (p *AnimatableProperty) SetKeyframeControlMode(id string, mode ControlMode) {
	k := p.KeyframeByID(id)
	if k == nil {
		return
	}
	k.ControlMode = mode
	coupleHandles(k, HandleIn)
}

// SetKeyframeHandle sets one bezier handle of the keyframe with the given
// id. Enabling a handle promotes the keyframe's interpolation to Bezier.
// The opposite handle follows per the keyframe's control mode.
func (p *AnimatableProperty) SetKeyframeHandle(id string, kind HandleKind, h Handle) {
	k := p.KeyframeByID(id)
	if k == nil {
		return
	}
	if kind == HandleIn {
		k.InHandle = h
	} else {
		k.OutHandle = h
	}
	if h.Enabled {
		k.Interpolation = InterpBezier
	}
	coupleHandles(k, kind)
}

// coupleHandles updates the handle opposite to the one just edited
// according to the keyframe's control mode. Corner mode leaves handles
// independent. A disabled edited handle never drags its partner.
func coupleHandles(k *Keyframe, edited HandleKind) {
	src, dst := &k.InHandle, &k.OutHandle
	if edited == HandleOut {
		src, dst = dst, src
	}
	if !src.Enabled {
		return
	}
	switch k.ControlMode {
	case ControlSymmetric:
		dst.Frame = -src.Frame
		dst.Value = -src.Value
		dst.Enabled = true
	case ControlSmooth:
		// Keep the opposite handle tangent-continuous: same direction line,
		// its own length.
		srcLen := handleLength(*src)
		if srcLen == 0 {
			return
		}
		dstLen := handleLength(*dst)
		if dstLen == 0 {
			dstLen = srcLen
		}
		dst.Frame = -src.Frame / srcLen * dstLen
		dst.Value = -src.Value / srcLen * dstLen
		dst.Enabled = true
	}
}

func handleLength(h Handle) float64 {
	return math.Hypot(h.Frame, h.Value)
}

// TimeReverseKeyframes reverses the property's animation in place: every
// keyframe keeps its frame, but values are reassigned in reverse order
// across the sorted frame positions. Handle offsets and interpolation modes
// stay with their frames (a value-only reversal).
func (p *AnimatableProperty) TimeReverseKeyframes() {
	n := len(p.Keyframes)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		p.Keyframes[i].Value, p.Keyframes[j].Value = p.Keyframes[j].Value, p.Keyframes[i].Value
	}
}

// SetExpression attaches (or replaces) the property's expression.
func (p *AnimatableProperty) SetExpression(e *Expression) {
	p.Expression = e
}

// EnableExpression toggles the property's expression without removing it.
// No-op when the property has none.
func (p *AnimatableProperty) EnableExpression(enabled bool) {
	if p.Expression != nil {
		p.Expression.Enabled = enabled
	}
}

// RemoveExpression detaches the property's expression entirely.
func (p *AnimatableProperty) RemoveExpression() {
	p.Expression = nil
}
