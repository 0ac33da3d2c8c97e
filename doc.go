// Package timeline is the keyframe animation core for a layer-based
// compositor.
//
// Timeline models how a typed property of a layer (position, opacity, an
// effect parameter) changes over discrete integer frames, evaluates it
// deterministically at any frame, and records every edit in a linear
// undo/redo history. Rendering is out of scope: the engine hands evaluated
// values to whatever draws them.
//
// # Quick start
//
// A [Project] owns compositions, the undo [History], and the keyframe
// [Clipboard]. All edits go through Project methods so each one lands in
// history as a single undoable entry:
//
//	proj := timeline.NewProject(timeline.ProjectConfig{})
//	comp := proj.NewComposition(timeline.CompositionConfig{Name: "main"})
//	layer := timeline.NewLayer("solid")
//	proj.AddLayer(comp, layer)
//
//	opacity := layer.Property("opacity")
//	proj.AddKeyframe(opacity, 0, timeline.Number(100))
//	proj.AddKeyframe(opacity, 15, timeline.Number(0))
//
//	v := timeline.Evaluate(opacity, 7.5) // pure, call as often as you like
//	proj.Undo()
//
// # Evaluation
//
// [Evaluate] is a pure function of the property's keyframes and the frame:
// it never mutates, so preview scrubbing can call it at any rate and in any
// order. Each segment is governed by its outgoing keyframe's interpolation
// mode: step ([InterpHold]), straight lerp ([InterpLinear]), one of the
// named easing curves from [ease], or a cubic bezier shaped by the
// keyframes' handles.
//
// Properties may also carry an [Expression] — a procedural override
// (wiggle, time, repeatAfter, property link) that supersedes keyframe
// output when enabled. Use [Project.ValueAt] to get the final value with
// the override applied.
//
// # Undo/redo
//
// Every Project mutation records exactly one [History] entry, including
// batch operations like paste and multi-keyframe easing changes. Undo and
// redo restore full snapshots; at the bottom or top of history they are
// no-ops. Scrubbing the playhead records nothing.
//
// The engine is single-threaded by design: evaluation is side-effect-free
// and all mutation flows through one project on one goroutine.
//
// [ease]: https://pkg.go.dev/github.com/tanema/gween/ease
package timeline
