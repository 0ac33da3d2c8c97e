package timeline

// projectState is a deep snapshot of everything undo must restore: all
// compositions with their layers, properties, keyframes, and expressions.
// Playhead position and clipboard contents are deliberately excluded —
// scrubbing and copying are not undoable edits.
type projectState struct {
	comps []*Composition
}

// historyEntry pairs the snapshots around one logical operation. before is
// captured when the operation records; after is captured lazily the first
// time the entry is undone, so redo restores the exact post-state.
type historyEntry struct {
	label  string
	before *projectState
	after  *projectState
}

// History is the project's linear undo stack. One entry per logical user
// operation, batches included; a new record after an undo truncates the
// redo tail (no branching). Not safe for concurrent use — the whole engine
// runs on the caller's single thread.
type History struct {
	proj     *Project
	stack    []*historyEntry
	cursor   int // index of the most recently applied entry; -1 at bottom
	maxDepth int // 0 = unbounded
}

func newHistory(proj *Project, maxDepth int) *History {
	return &History{proj: proj, cursor: -1, maxDepth: maxDepth}
}

// record wraps one logical mutation: it captures the pre-state, runs the
// mutation, and pushes an entry — unless the mutation fails, in which case
// nothing is recorded (failed operations must leave history untouched).
// Any redo tail beyond the cursor is truncated.
func (h *History) record(label string, mutate func() error) error {
	before := h.proj.captureState()
	if err := mutate(); err != nil {
		return err
	}
	h.stack = append(h.stack[:h.cursor+1], &historyEntry{label: label, before: before})
	if h.maxDepth > 0 && len(h.stack) > h.maxDepth {
		// Drop the oldest entries, ring-buffer style: undo depth is bounded,
		// the present state is not.
		drop := len(h.stack) - h.maxDepth
		h.stack = append(h.stack[:0:0], h.stack[drop:]...)
	}
	h.cursor = len(h.stack) - 1
	return nil
}

// Undo reverts the most recent operation. Returns false (a no-op) at the
// bottom of history.
func (h *History) Undo() bool {
	if h.cursor < 0 {
		return false
	}
	e := h.stack[h.cursor]
	if e.after == nil {
		e.after = h.proj.captureState()
	}
	h.proj.restoreState(e.before)
	h.cursor--
	return true
}

// Redo re-applies the most recently undone operation. Returns false (a
// no-op) at the top of history.
func (h *History) Redo() bool {
	if h.cursor >= len(h.stack)-1 {
		return false
	}
	h.cursor++
	h.proj.restoreState(h.stack[h.cursor].after)
	return true
}

// CanUndo reports whether an Undo would do anything.
func (h *History) CanUndo() bool { return h.cursor >= 0 }

// CanRedo reports whether a Redo would do anything.
func (h *History) CanRedo() bool { return h.cursor < len(h.stack)-1 }

// Len returns the number of recorded entries (applied and undone).
func (h *History) Len() int { return len(h.stack) }

// UndoLabel returns the label of the operation Undo would revert, or ""
// at the bottom of history.
func (h *History) UndoLabel() string {
	if h.cursor < 0 {
		return ""
	}
	return h.stack[h.cursor].label
}

// RedoLabel returns the label of the operation Redo would re-apply, or ""
// at the top of history.
func (h *History) RedoLabel() string {
	if h.cursor >= len(h.stack)-1 {
		return ""
	}
	return h.stack[h.cursor+1].label
}

// Clear drops all history. Called when a project is freshly loaded.
func (h *History) Clear() {
	h.stack = nil
	h.cursor = -1
}
