package timeline

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Player advances a composition's playhead over wall time for preview.
// Call Update(dt) each frame of the host loop. Playback only ever scrubs —
// it writes through Composition.SetFrame and records no history.
//
// There is no global playback manager; users drive Update themselves.
type Player struct {
	comp  *Composition
	tween *gween.Tween

	Playing bool
	Loop    bool
}

// NewPlayer creates a stopped player for the composition.
func NewPlayer(comp *Composition) *Player {
	return &Player{comp: comp}
}

// Play starts (or resumes) playback from the current playhead position.
// Playing from the last frame restarts at frame 0.
func (pl *Player) Play() {
	start := pl.comp.CurrentFrame
	last := pl.comp.LastFrame()
	if start >= last {
		start = 0
	}
	remaining := float32(last-start) / float32(pl.comp.FrameRate)
	pl.tween = gween.New(float32(start), float32(last), remaining, ease.Linear)
	pl.Playing = true
}

// Pause halts playback, leaving the playhead where it is.
func (pl *Player) Pause() {
	pl.Playing = false
}

// Stop halts playback and rewinds the playhead to frame 0.
func (pl *Player) Stop() {
	pl.Playing = false
	pl.tween = nil
	pl.comp.SetFrame(0)
}

// Scrub pauses playback and moves the playhead directly (clamped).
func (pl *Player) Scrub(frame int) {
	pl.Playing = false
	pl.tween = nil
	pl.comp.SetFrame(frame)
}

// Update advances playback by dt seconds. No-op while paused or stopped.
func (pl *Player) Update(dt float32) {
	if !pl.Playing || pl.tween == nil {
		return
	}
	frame, finished := pl.tween.Update(dt)
	pl.comp.SetFrame(int(frame))
	if finished {
		if pl.Loop {
			pl.comp.SetFrame(0)
			pl.Play()
			return
		}
		pl.Playing = false
	}
}
