package timeline

// KeyframeRef addresses one keyframe of one property, for batch operations
// that may span properties and layers.
type KeyframeRef struct {
	Property   *AnimatableProperty
	KeyframeID string
}

// clipboardEntry is one copied keyframe plus its frame offset relative to
// the earliest keyframe in the copied selection. Paste re-anchors those
// offsets at a new frame, so relative timing survives the trip.
type clipboardEntry struct {
	offset   int
	keyframe Keyframe
}

// Clipboard holds the most recently copied keyframes. A copy replaces any
// prior contents; the clipboard is not part of project state and never
// appears in undo history.
type Clipboard struct {
	entries []clipboardEntry
}

// Copy snapshots the referenced keyframes (value, interpolation, handles),
// tagged with their frame offset from the selection's earliest frame.
// Stale references are skipped; an all-stale selection leaves the clipboard
// unchanged.
func (c *Clipboard) Copy(refs []KeyframeRef) {
	var picked []*Keyframe
	minFrame := 0
	for _, ref := range refs {
		if ref.Property == nil {
			continue
		}
		k := ref.Property.KeyframeByID(ref.KeyframeID)
		if k == nil {
			continue
		}
		if len(picked) == 0 || k.Frame < minFrame {
			minFrame = k.Frame
		}
		picked = append(picked, k)
	}
	if len(picked) == 0 {
		return
	}
	c.entries = c.entries[:0]
	for _, k := range picked {
		c.entries = append(c.entries, clipboardEntry{
			offset:   k.Frame - minFrame,
			keyframe: *k,
		})
	}
}

// Len returns the number of keyframes on the clipboard.
func (c *Clipboard) Len() int { return len(c.entries) }

// Clear empties the clipboard.
func (c *Clipboard) Clear() { c.entries = nil }

// pasteInto writes the clipboard's keyframes onto target, re-anchored at
// anchorFrame. Existing keyframes on colliding frames are overwritten.
// Returns the written keyframes in clipboard order.
func (c *Clipboard) pasteInto(target *AnimatableProperty, anchorFrame int) []*Keyframe {
	written := make([]*Keyframe, 0, len(c.entries))
	for _, e := range c.entries {
		k := target.AddKeyframe(anchorFrame+e.offset, e.keyframe.Value)
		k.Interpolation = e.keyframe.Interpolation
		k.ControlMode = e.keyframe.ControlMode
		k.InHandle = e.keyframe.InHandle
		k.OutHandle = e.keyframe.OutHandle
		written = append(written, k)
	}
	return written
}
