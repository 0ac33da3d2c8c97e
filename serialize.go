package timeline

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// formatVersion is the on-disk project fragment version.
const formatVersion = 1

// projectJSON is the wire form of a project. Only animation state is
// persisted; history and clipboard are session-local.
type projectJSON struct {
	Version      int            `json:"version"`
	Compositions []*Composition `json:"compositions"`
}

// Save serializes the project's animation state to JSON. The output
// round-trips through LoadProject with no loss beyond standard float64
// representation.
func (p *Project) Save() ([]byte, error) {
	return json.MarshalIndent(projectJSON{
		Version:      formatVersion,
		Compositions: p.Compositions,
	}, "", "  ")
}

// LoadProject deserializes a project saved with Save. Stored keyframe
// lists are validated and re-sorted rather than trusted blindly; repairs
// are logged. The loaded project starts with fresh (empty) history.
func LoadProject(data []byte, cfg ProjectConfig) (*Project, error) {
	var w projectJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if w.Version > formatVersion {
		return nil, fmt.Errorf("load project: format version %d is newer than supported %d", w.Version, formatVersion)
	}

	p := NewProject(cfg)
	p.Compositions = w.Compositions
	if p.Compositions == nil {
		p.Compositions = []*Composition{}
	}
	for _, comp := range p.Compositions {
		p.normalizeComposition(comp)
	}
	return p, nil
}

// normalizeComposition repairs a loaded composition in place: defaults,
// playhead clamping, dangling parent ids, and per-property keyframe
// validation.
func (p *Project) normalizeComposition(comp *Composition) {
	if comp.ID == "" {
		comp.ID = uuid.NewString()
	}
	if comp.FrameCount <= 0 {
		comp.FrameCount = DefaultFrameCount
	}
	if comp.FrameRate <= 0 {
		comp.FrameRate = DefaultFrameRate
	}
	comp.SetFrame(comp.CurrentFrame)

	for _, layer := range comp.Layers {
		if layer.ID == "" {
			layer.ID = uuid.NewString()
		}
		if layer.Parent != "" && comp.Layer(layer.Parent) == nil {
			p.logger.Warn("dropped dangling layer parent on load",
				"layer", layer.Name, "parent", layer.Parent)
			layer.Parent = ""
		}
		for _, prop := range layer.Properties {
			p.normalizeProperty(layer, prop)
		}
	}
}

// normalizeProperty restores the property invariants: sorted unique
// keyframe frames (later duplicates win), ids present, Animated in sync
// with the keyframe list.
func (p *Project) normalizeProperty(layer *Layer, prop *AnimatableProperty) {
	if prop.ID == "" {
		prop.ID = uuid.NewString()
	}
	if prop.Kind == "" {
		prop.Kind = prop.Value.Kind
	}

	kfs := prop.Keyframes
	sorted := sort.SliceIsSorted(kfs, func(i, j int) bool {
		return kfs[i].Frame < kfs[j].Frame
	})
	if !sorted {
		p.logger.Warn("re-sorted keyframes on load",
			"layer", layer.Name, "property", prop.Name)
		sort.SliceStable(kfs, func(i, j int) bool {
			return kfs[i].Frame < kfs[j].Frame
		})
	}

	out := kfs[:0]
	for _, k := range kfs {
		if k.ID == "" {
			k.ID = uuid.NewString()
		}
		if k.Interpolation == "" {
			k.Interpolation = InterpLinear
		}
		if k.ControlMode == "" {
			k.ControlMode = ControlSmooth
		}
		if n := len(out); n > 0 && out[n-1].Frame == k.Frame {
			p.logger.Warn("dropped duplicate keyframe frame on load",
				"layer", layer.Name, "property", prop.Name, "frame", k.Frame)
			out[n-1] = k
			continue
		}
		out = append(out, k)
	}
	// Zero the tail so the backing array drops the duplicates.
	for i := len(out); i < len(kfs); i++ {
		kfs[i] = nil
	}
	prop.Keyframes = out
	prop.Animated = len(out) > 0
}
