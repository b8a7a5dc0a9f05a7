// Package session is a library for clients that embed this module, such as
// a UI backend holding one value per signed-in session.  It offers an
// undo/redo snapshot history and a notification emitter.  The HTTP server
// does not use it, and neither type keeps package-level state.
package session

// History is an undo/redo stack of value snapshots.  The zero value is not
// usable; create one with NewHistory.
type History[T any] struct {
	past    []T
	present T
	future  []T
	limit   int
}

// NewHistory starts a history at initial.  limit caps the undo depth;
// zero means unbounded.
func NewHistory[T any](initial T, limit int) *History[T] {
	return &History[T]{present: initial, limit: limit}
}

// Present returns the current snapshot.
func (h *History[T]) Present() T { return h.present }

// Set records next as the current snapshot and clears the redo stack.
func (h *History[T]) Set(next T) {
	h.past = append(h.past, h.present)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.present = next
	h.future = h.future[:0]
}

// Undo steps back one snapshot.  It reports false when there is nothing
// to undo.
func (h *History[T]) Undo() (T, bool) {
	if len(h.past) == 0 {
		return h.present, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.present)
	h.present = prev
	return prev, true
}

// Redo re-applies the last undone snapshot.
func (h *History[T]) Redo() (T, bool) {
	if len(h.future) == 0 {
		return h.present, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.present)
	h.present = next
	return next, true
}

func (h *History[T]) CanUndo() bool { return len(h.past) > 0 }
func (h *History[T]) CanRedo() bool { return len(h.future) > 0 }

// Reset drops all history and sets a new present.
func (h *History[T]) Reset(present T) {
	h.past = h.past[:0]
	h.future = h.future[:0]
	h.present = present
}
