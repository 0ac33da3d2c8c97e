package timeline

import (
	"encoding/json"
	"strings"
	"testing"
)

// buildRichProject assembles a project exercising every serialized field:
// animated and static properties, bezier handles, control modes, and an
// expression.
func buildRichProject(t *testing.T) *Project {
	t.Helper()
	proj := NewProject(ProjectConfig{})
	comp := proj.NewComposition(CompositionConfig{
		Name: "main", FrameCount: 81, FrameRate: 16, Width: 640, Height: 480,
	})
	layer := NewLayer("hero")
	proj.AddLayer(comp, layer)

	pos := layer.Property("position")
	k := proj.AddKeyframe(pos, 0, Vec2(60, 120))
	proj.AddKeyframe(pos, 60, Vec2(540, 120))
	proj.SetKeyframeHandle(pos, k.ID, HandleOut, Handle{Frame: 20, Value: -35.25, Enabled: true})
	proj.SetKeyframeControlMode(pos, k.ID, ControlCorner)

	op := layer.Property("opacity")
	proj.AddKeyframe(op, 50, Number(100))
	k2 := proj.AddKeyframe(op, 80, Number(0))
	proj.SetKeyframeInterpolation(op, k2.ID, "outElastic")
	proj.SetExpression(op, NewExpression(ExprWiggle, map[string]any{
		"frequency": 2.0, "amplitude": 3.5,
	}))

	return proj
}

func assertKeyframesEqual(t *testing.T, got, want *AnimatableProperty) {
	t.Helper()
	if len(got.Keyframes) != len(want.Keyframes) {
		t.Fatalf("%s: %d keyframes, want %d", want.Name, len(got.Keyframes), len(want.Keyframes))
	}
	for i := range want.Keyframes {
		g, w := got.Keyframes[i], want.Keyframes[i]
		if g.Frame != w.Frame || g.Value != w.Value {
			t.Errorf("%s[%d]: (%d, %v), want (%d, %v)", want.Name, i, g.Frame, g.Value, w.Frame, w.Value)
		}
		if g.Interpolation != w.Interpolation || g.ControlMode != w.ControlMode {
			t.Errorf("%s[%d]: interp/mode %q/%q, want %q/%q",
				want.Name, i, g.Interpolation, g.ControlMode, w.Interpolation, w.ControlMode)
		}
		if g.InHandle != w.InHandle || g.OutHandle != w.OutHandle {
			t.Errorf("%s[%d]: handles differ", want.Name, i)
		}
	}
}

// --- Round trip ---

func TestProjectRoundTrip(t *testing.T) {
	proj := buildRichProject(t)
	data, err := proj.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := LoadProject(data, ProjectConfig{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	wantComp := proj.Compositions[0]
	gotComp := back.Compositions[0]
	if gotComp.Name != wantComp.Name || gotComp.FrameCount != wantComp.FrameCount ||
		gotComp.FrameRate != wantComp.FrameRate {
		t.Error("composition fields lost in round trip")
	}

	wantLayer := wantComp.Layers[0]
	gotLayer := gotComp.LayerByName("hero")
	if gotLayer == nil {
		t.Fatal("layer lost in round trip")
	}
	for _, name := range []string{"position", "scale", "rotation", "opacity"} {
		assertKeyframesEqual(t, gotLayer.Property(name), wantLayer.Property(name))
	}

	gotExpr := gotLayer.Property("opacity").Expression
	if gotExpr == nil || !gotExpr.Enabled || gotExpr.Name != ExprWiggle {
		t.Fatal("expression lost in round trip")
	}
	if got := floatParam(gotExpr.Params, "amplitude", -1); got != 3.5 {
		t.Errorf("expression amplitude = %v, want 3.5", got)
	}

	// Identical evaluation on both sides.
	for f := 0.0; f <= 80; f += 7 {
		want := Evaluate(wantLayer.Property("position"), f)
		got := Evaluate(gotLayer.Property("position"), f)
		if got != want {
			t.Fatalf("evaluate(%v) = %v after round trip, want %v", f, got, want)
		}
	}
}

func TestLoadResetsHistory(t *testing.T) {
	proj := buildRichProject(t)
	data, err := proj.Save()
	if err != nil {
		t.Fatal(err)
	}
	back, err := LoadProject(data, ProjectConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if back.History().CanUndo() || back.History().Len() != 0 {
		t.Error("loaded project must start with empty history")
	}
}

// --- Validation on load ---

func TestLoadResortsAndDeduplicates(t *testing.T) {
	// Hand-built JSON with out-of-order and duplicate frames: storage is
	// not trusted.
	raw := `{
	  "version": 1,
	  "compositions": [{
	    "name": "main", "frameCount": 81, "frameRate": 16,
	    "layers": [{
	      "name": "solid", "visible": true,
	      "properties": [{
	        "name": "opacity",
	        "kind": "number",
	        "value": {"kind": "number", "channels": [100]},
	        "animated": false,
	        "keyframes": [
	          {"frame": 30, "value": {"kind": "number", "channels": [3]}},
	          {"frame": 10, "value": {"kind": "number", "channels": [1]}},
	          {"frame": 30, "value": {"kind": "number", "channels": [9]}},
	          {"frame": 20, "value": {"kind": "number", "channels": [2]}}
	        ]
	      }]
	    }]
	  }]
	}`
	proj, err := LoadProject([]byte(raw), ProjectConfig{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	p := proj.Compositions[0].Layers[0].Property("opacity")
	assertSorted(t, p)
	if len(p.Keyframes) != 3 {
		t.Fatalf("len = %d, want 3 (duplicate frame dropped)", len(p.Keyframes))
	}
	// Later duplicate wins.
	if got := p.KeyframeAt(30).Value.Float(); got != 9 {
		t.Errorf("frame 30 value = %v, want 9", got)
	}
	if !p.Animated {
		t.Error("Animated must be re-derived from the keyframe list")
	}
	for _, k := range p.Keyframes {
		if k.ID == "" || k.Interpolation == "" || k.ControlMode == "" {
			t.Error("missing keyframe fields must be filled on load")
		}
	}
}

func TestLoadDropsDanglingParent(t *testing.T) {
	raw := `{
	  "version": 1,
	  "compositions": [{
	    "name": "main",
	    "layers": [{"id": "l1", "name": "solid", "parent": "ghost", "properties": []}]
	  }]
	}`
	proj, err := LoadProject([]byte(raw), ProjectConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got := proj.Compositions[0].Layers[0].Parent; got != "" {
		t.Errorf("parent = %q, want dangling reference cleared", got)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	_, err := LoadProject([]byte(`{"version": 99, "compositions": []}`), ProjectConfig{})
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("err = %v, want version rejection", err)
	}
}

func TestPropertyFragmentRoundTrip(t *testing.T) {
	// A property serializes standalone, for clipboard-style interchange.
	p := NewProperty("blur", Number(4))
	k := p.AddKeyframe(12, Number(8))
	k.InHandle = Handle{Frame: -2.5, Value: 0.125, Enabled: true}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var back AnimatableProperty
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Name != "blur" || len(back.Keyframes) != 1 {
		t.Fatal("property fragment lost fields")
	}
	if back.Keyframes[0].InHandle != k.InHandle {
		t.Errorf("handle = %+v, want %+v (no precision loss)", back.Keyframes[0].InHandle, k.InHandle)
	}
}
