package engine

// historyEntry is one reversible command.  The undo and redo closures
// run inside the plan's mutation loop and must restore state through
// the same low-level helpers the forward operations use, so that seat
// bindings freed or restored by undo still reach the reconciler.
type historyEntry struct {
	label string
	undo  func()
	redo  func()
}

// historyStack holds the two bounded command stacks shared by every
// session editing the plan.  Entries are appended in serialized
// mutation order, so undo ordering matches true causal order across
// collaborators: one planner's undo can revert another planner's last
// change, which is documented behavior.
type historyStack struct {
	cap  int
	undo []historyEntry
	redo []historyEntry
}

func newHistoryStack(capacity int) *historyStack {
	if capacity <= 0 {
		capacity = 100
	}
	return &historyStack{cap: capacity}
}

// push records a completed mutation and clears the redo stack.  When
// the undo stack exceeds its bound, the oldest entry is dropped
// silently; this is a memory trade-off, not a correctness rule.
func (h *historyStack) push(e historyEntry) {
	h.undo = append(h.undo, e)
	if len(h.undo) > h.cap {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
}

// popUndo reverses the most recent mutation and moves it to the redo
// stack.  Returns false when there is nothing to undo.
func (h *historyStack) popUndo() bool {
	n := len(h.undo)
	if n == 0 {
		return false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	e.undo()
	h.redo = append(h.redo, e)
	return true
}

// popRedo re-applies the most recently undone mutation.
func (h *historyStack) popRedo() bool {
	n := len(h.redo)
	if n == 0 {
		return false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	e.redo()
	h.undo = append(h.undo, e)
	return true
}

// clear drops both stacks.  Used on snapshot restore: a loaded state
// is not undoable past its own boundary.
func (h *historyStack) clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

func (h *historyStack) canUndo() bool { return len(h.undo) > 0 }
func (h *historyStack) canRedo() bool { return len(h.redo) > 0 }
