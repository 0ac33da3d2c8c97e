package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
)

// Composition defaults. The 4N+1 frame count matches the video models the
// compositor feeds.
const (
	DefaultFrameCount = 81
	DefaultFrameRate  = 16.0
)

// ErrParentCycle is returned by SetParent when the requested parenting
// would make a layer its own ancestor (self-parenting included).
var ErrParentCycle = errors.New("timeline: parenting would create a cycle")

// Layer is one compositing layer: a named bag of animatable properties,
// parented by id into its composition's flat layer table. Layers never
// hold pointers to other layers, so reference cycles cannot form.
type Layer struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Parent     string                `json:"parent,omitempty"`
	Visible    bool                  `json:"visible"`
	Properties []*AnimatableProperty `json:"properties"`
}

// NewLayer creates a visible layer with the standard transform property
// set: position, scale (percent), rotation (degrees), opacity (percent).
// Effect parameters are added with AddProperty.
func NewLayer(name string) *Layer {
	return &Layer{
		ID:      uuid.NewString(),
		Name:    name,
		Visible: true,
		Properties: []*AnimatableProperty{
			NewProperty("position", Vec2(0, 0)),
			NewProperty("scale", Vec2(100, 100)),
			NewProperty("rotation", Number(0)),
			NewProperty("opacity", Number(100)),
		},
	}
}

// Property returns the layer's property with the given name, or nil.
func (l *Layer) Property(name string) *AnimatableProperty {
	for _, p := range l.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddProperty appends a property (typically an effect parameter) to the
// layer.
func (l *Layer) AddProperty(p *AnimatableProperty) {
	l.Properties = append(l.Properties, p)
}

func (l *Layer) clone() *Layer {
	c := *l
	c.Properties = make([]*AnimatableProperty, len(l.Properties))
	for i, p := range l.Properties {
		c.Properties[i] = p.clone()
	}
	return &c
}

// CompositionConfig configures NewComposition. Zero values fall back to
// the defaults above.
type CompositionConfig struct {
	Name       string
	FrameCount int
	FrameRate  float64
	Width      int
	Height     int
}

// Composition is one timeline: a frame range, a playhead, and a flat layer
// table.
type Composition struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	FrameCount   int      `json:"frameCount"`
	FrameRate    float64  `json:"frameRate"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	CurrentFrame int      `json:"currentFrame"`
	Layers       []*Layer `json:"layers"`
}

// Layer returns the layer with the given id, or nil.
func (c *Composition) Layer(id string) *Layer {
	for _, l := range c.Layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LayerByName returns the first layer with the given name, or nil.
func (c *Composition) LayerByName(name string) *Layer {
	for _, l := range c.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// LastFrame returns the final valid frame index.
func (c *Composition) LastFrame() int {
	if c.FrameCount < 1 {
		return 0
	}
	return c.FrameCount - 1
}

// SetFrame moves the playhead, clamping into [0, LastFrame]. Scrubbing is
// not an edit: it records no history.
func (c *Composition) SetFrame(frame int) {
	if frame < 0 {
		frame = 0
	}
	if last := c.LastFrame(); frame > last {
		frame = last
	}
	c.CurrentFrame = frame
}

// ClampFrame clamps an arbitrary (possibly NaN) frame into the
// composition's valid range.
func (c *Composition) ClampFrame(frame float64) float64 {
	if math.IsNaN(frame) || frame < 0 {
		return 0
	}
	if last := float64(c.LastFrame()); frame > last {
		return last
	}
	return frame
}

// isAncestorLayer reports whether candidate is an ancestor of layer in the
// parent-id chain (or the layer itself).
func (c *Composition) isAncestorLayer(candidate, layer *Layer) bool {
	for l := layer; l != nil; l = c.Layer(l.Parent) {
		if l == candidate {
			return true
		}
	}
	return false
}

func (c *Composition) clone() *Composition {
	cc := *c
	cc.Layers = make([]*Layer, len(c.Layers))
	for i, l := range c.Layers {
		cc.Layers[i] = l.clone()
	}
	return &cc
}

// exprContext adapts a composition to the ExprContext expressions resolve
// through. Layer references accept either a layer id or a layer name.
type exprContext struct {
	comp *Composition
}

func (x exprContext) FrameRate() float64 {
	if x.comp == nil || x.comp.FrameRate <= 0 {
		return DefaultFrameRate
	}
	return x.comp.FrameRate
}

func (x exprContext) ResolveProperty(layer, property string) (*AnimatableProperty, bool) {
	if x.comp == nil {
		return nil, false
	}
	l := x.comp.Layer(layer)
	if l == nil {
		l = x.comp.LayerByName(layer)
	}
	if l == nil {
		return nil, false
	}
	p := l.Property(property)
	if p == nil {
		return nil, false
	}
	return p, true
}

// ProjectConfig configures NewProject.
type ProjectConfig struct {
	// HistoryDepth bounds the undo stack; 0 means unbounded.
	HistoryDepth int
	// Logger receives expression degradation and load-repair notices.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Project is the document-level store: it owns the compositions, the undo
// history, and the keyframe clipboard. All edits go through Project
// methods; each method is exactly one undoable history entry. The project
// is single-threaded — share it across goroutines and you are on your own.
type Project struct {
	Compositions []*Composition

	history   *History
	clipboard *Clipboard
	logger    *slog.Logger
}

// NewProject creates an empty project with its own history and clipboard.
// History is never shared between projects.
func NewProject(cfg ProjectConfig) *Project {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Project{
		clipboard: &Clipboard{},
		logger:    logger,
	}
	p.history = newHistory(p, cfg.HistoryDepth)
	return p
}

// History exposes undo/redo state for UI (shortcut enablement, menu
// labels). Mutating history happens only through Undo/Redo.
func (p *Project) History() *History { return p.history }

// Clipboard exposes the keyframe clipboard.
func (p *Project) Clipboard() *Clipboard { return p.clipboard }

// Undo reverts the most recent edit. No-op at the bottom of history. Any
// layer or property pointers held from before the undo refer to the
// discarded state and must be re-fetched from the composition.
func (p *Project) Undo() bool { return p.history.Undo() }

// Redo re-applies the most recently undone edit. No-op at the top.
func (p *Project) Redo() bool { return p.history.Redo() }

// captureState deep-copies everything undo must restore.
func (p *Project) captureState() *projectState {
	s := &projectState{comps: make([]*Composition, len(p.Compositions))}
	for i, c := range p.Compositions {
		s.comps[i] = c.clone()
	}
	return s
}

// restoreState replaces the project's compositions with a copy of the
// snapshot (the stack entry must stay immutable). The playhead is carried
// over from the live state: undoing an edit must not yank the user's
// scrub position.
func (p *Project) restoreState(s *projectState) {
	playheads := make(map[string]int, len(p.Compositions))
	for _, c := range p.Compositions {
		playheads[c.ID] = c.CurrentFrame
	}
	p.Compositions = make([]*Composition, len(s.comps))
	for i, c := range s.comps {
		restored := c.clone()
		if frame, found := playheads[restored.ID]; found {
			restored.SetFrame(frame)
		}
		p.Compositions[i] = restored
	}
}

// ValueAt returns the property's final value at frame: the enabled
// expression override when it succeeds, the keyframe evaluation otherwise.
// Expression failures degrade to the keyframe value and are logged, never
// propagated — a broken link must not take down the render loop.
func (p *Project) ValueAt(comp *Composition, prop *AnimatableProperty, frame float64) Value {
	if comp != nil {
		frame = comp.ClampFrame(frame)
	}
	v, ok, err := EvaluateExpression(prop, frame, exprContext{comp: comp})
	if err != nil {
		p.logger.Warn("expression degraded to keyframe value",
			"property", prop.Name, "frame", frame, "error", err)
	} else if ok {
		return v
	}
	return Evaluate(prop, frame)
}

// --- Recorded mutation API ---
//
// Each method below is one logical user operation and lands in history as
// exactly one entry, regardless of how many fields or keyframes it
// touches. Failed operations (conflicting move, parent cycle) record
// nothing and leave state untouched.

// NewComposition creates a composition, appends it to the project, and
// records the edit. Zero config fields take the package defaults.
func (p *Project) NewComposition(cfg CompositionConfig) *Composition {
	comp := &Composition{
		ID:         uuid.NewString(),
		Name:       cfg.Name,
		FrameCount: cfg.FrameCount,
		FrameRate:  cfg.FrameRate,
		Width:      cfg.Width,
		Height:     cfg.Height,
	}
	if comp.FrameCount <= 0 {
		comp.FrameCount = DefaultFrameCount
	}
	if comp.FrameRate <= 0 {
		comp.FrameRate = DefaultFrameRate
	}
	p.history.record("New Composition", func() error {
		p.Compositions = append(p.Compositions, comp)
		return nil
	})
	return comp
}

// AddLayer appends a layer to the composition.
func (p *Project) AddLayer(comp *Composition, layer *Layer) {
	p.history.record("Add Layer", func() error {
		comp.Layers = append(comp.Layers, layer)
		return nil
	})
}

// RemoveLayer removes the layer with the given id. Children parented to it
// are re-parented to the removed layer's own parent so the table never
// holds a dangling parent id. Unknown ids are a no-op (and record nothing).
func (p *Project) RemoveLayer(comp *Composition, id string) {
	target := comp.Layer(id)
	if target == nil {
		return
	}
	p.history.record("Remove Layer", func() error {
		for _, l := range comp.Layers {
			if l.Parent == id {
				l.Parent = target.Parent
			}
		}
		for i, l := range comp.Layers {
			if l == target {
				copy(comp.Layers[i:], comp.Layers[i+1:])
				comp.Layers[len(comp.Layers)-1] = nil
				comp.Layers = comp.Layers[:len(comp.Layers)-1]
				break
			}
		}
		return nil
	})
}

// SetParent parents a layer to another by id (empty parentID clears the
// parent). The ancestor walk rejects self-parenting and cycles before
// anything is committed.
func (p *Project) SetParent(comp *Composition, layerID, parentID string) error {
	layer := comp.Layer(layerID)
	if layer == nil {
		return fmt.Errorf("timeline: no layer %q", layerID)
	}
	if parentID != "" {
		parent := comp.Layer(parentID)
		if parent == nil {
			return fmt.Errorf("timeline: no layer %q", parentID)
		}
		if comp.isAncestorLayer(layer, parent) {
			return ErrParentCycle
		}
	}
	return p.history.record("Set Parent", func() error {
		layer.Parent = parentID
		return nil
	})
}

// compOf returns the composition owning prop, or nil for detached
// properties (fragments, tests).
func (p *Project) compOf(prop *AnimatableProperty) *Composition {
	for _, comp := range p.Compositions {
		for _, l := range comp.Layers {
			for _, candidate := range l.Properties {
				if candidate == prop {
					return comp
				}
			}
		}
	}
	return nil
}

// clampKeyframeFrame clamps a frame argument into the owning composition's
// valid range. Malformed frames are clamped, never rejected.
func (p *Project) clampKeyframeFrame(prop *AnimatableProperty, frame int) int {
	if frame < 0 {
		return 0
	}
	if comp := p.compOf(prop); comp != nil && frame > comp.LastFrame() {
		return comp.LastFrame()
	}
	return frame
}

// AddKeyframe records a keyframe insertion (or in-place value replacement
// on an occupied frame) as one edit. Frames outside the composition range
// are clamped.
func (p *Project) AddKeyframe(prop *AnimatableProperty, frame int, v Value) *Keyframe {
	frame = p.clampKeyframeFrame(prop, frame)
	var k *Keyframe
	p.history.record("Add Keyframe", func() error {
		k = prop.AddKeyframe(frame, v)
		return nil
	})
	return k
}

// RemoveKeyframe records a keyframe removal. Unknown ids are a no-op and
// record nothing.
func (p *Project) RemoveKeyframe(prop *AnimatableProperty, id string) {
	if prop.KeyframeByID(id) == nil {
		return
	}
	p.history.record("Remove Keyframe", func() error {
		prop.RemoveKeyframe(id)
		return nil
	})
}

// MoveKeyframe records a keyframe re-time. A conflicting destination frame
// returns ErrFrameOccupied with state and history untouched.
func (p *Project) MoveKeyframe(prop *AnimatableProperty, id string, newFrame int) error {
	newFrame = p.clampKeyframeFrame(prop, newFrame)
	return p.history.record("Move Keyframe", func() error {
		return prop.MoveKeyframe(id, newFrame)
	})
}

// SetKeyframeValue records a value change.
func (p *Project) SetKeyframeValue(prop *AnimatableProperty, id string, v Value) {
	p.history.record("Set Keyframe Value", func() error {
		prop.SetKeyframeValue(id, v)
		return nil
	})
}

// SetKeyframeInterpolation records an interpolation mode change.
func (p *Project) SetKeyframeInterpolation(prop *AnimatableProperty, id string, interp Interpolation) {
	p.history.record("Set Interpolation", func() error {
		prop.SetKeyframeInterpolation(id, interp)
		return nil
	})
}

// SetKeyframeControlMode records a handle coupling mode change.
func (p *Project) SetKeyframeControlMode(prop *AnimatableProperty, id string, mode ControlMode) {
	p.history.record("Set Control Mode", func() error {
		prop.SetKeyframeControlMode(id, mode)
		return nil
	})
}

// SetKeyframeHandle records a handle edit (which may promote the keyframe
// to bezier and drag the opposite handle, all within the same entry).
func (p *Project) SetKeyframeHandle(prop *AnimatableProperty, id string, kind HandleKind, h Handle) {
	p.history.record("Set Handle", func() error {
		prop.SetKeyframeHandle(id, kind, h)
		return nil
	})
}

// TimeReverseKeyframes records a value-only time reversal of the
// property's keyframes.
func (p *Project) TimeReverseKeyframes(prop *AnimatableProperty) {
	p.history.record("Time-Reverse Keyframes", func() error {
		prop.TimeReverseKeyframes()
		return nil
	})
}

// CopyKeyframes snapshots the referenced keyframes onto the clipboard,
// replacing its contents. Copying reads state only, so it records no
// history.
func (p *Project) CopyKeyframes(refs []KeyframeRef) {
	p.clipboard.Copy(refs)
}

// PasteKeyframes writes the clipboard onto the target property anchored at
// anchorFrame, as one history entry covering every pasted keyframe. The
// target does not need any relation to the copy source (cross-layer paste
// is fine). Returns the written keyframes; nil when the clipboard is empty.
func (p *Project) PasteKeyframes(prop *AnimatableProperty, anchorFrame int) []*Keyframe {
	if p.clipboard.Len() == 0 {
		return nil
	}
	anchorFrame = p.clampKeyframeFrame(prop, anchorFrame)
	var written []*Keyframe
	p.history.record("Paste Keyframes", func() error {
		written = p.clipboard.pasteInto(prop, anchorFrame)
		return nil
	})
	return written
}

// ApplyEasingPreset sets the interpolation of every referenced keyframe to
// the named preset in one history entry, even across properties and
// layers. Unknown preset names are rejected before anything records.
func (p *Project) ApplyEasingPreset(refs []KeyframeRef, preset Interpolation) error {
	if preset != InterpLinear && preset != InterpHold && !IsEasing(preset) {
		return fmt.Errorf("timeline: unknown easing preset %q", preset)
	}
	return p.history.record("Apply Easing Preset", func() error {
		for _, ref := range refs {
			if ref.Property == nil {
				continue
			}
			ref.Property.SetKeyframeInterpolation(ref.KeyframeID, preset)
		}
		return nil
	})
}

// SetExpression records attaching (or replacing) a property's expression.
func (p *Project) SetExpression(prop *AnimatableProperty, e *Expression) {
	p.history.record("Set Expression", func() error {
		prop.SetExpression(e)
		return nil
	})
}

// EnableExpression records toggling a property's expression.
func (p *Project) EnableExpression(prop *AnimatableProperty, enabled bool) {
	if prop.Expression == nil {
		return
	}
	label := "Enable Expression"
	if !enabled {
		label = "Disable Expression"
	}
	p.history.record(label, func() error {
		prop.EnableExpression(enabled)
		return nil
	})
}

// RemoveExpression records detaching a property's expression. No-op (and
// no entry) when the property has none.
func (p *Project) RemoveExpression(prop *AnimatableProperty) {
	if prop.Expression == nil {
		return
	}
	p.history.record("Remove Expression", func() error {
		prop.RemoveExpression()
		return nil
	})
}
