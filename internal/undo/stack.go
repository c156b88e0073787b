// Package undo keeps full-image snapshots for reverting edits.
package undo

import (
	mapimage "map-editor/internal/image"
)

// Stack is an unbounded LIFO of image snapshots. Snapshots are deep copies,
// so later edits to the live image never reach them.
type Stack struct {
	snapshots []*mapimage.Buffer
}

// Push stores a deep copy of b. Pushing the null image does nothing.
func (s *Stack) Push(b *mapimage.Buffer) {
	if b.IsNull() {
		return
	}
	s.snapshots = append(s.snapshots, b.Clone())
}

// Pop removes and returns the most recent snapshot. It reports false when the
// stack is empty.
func (s *Stack) Pop() (*mapimage.Buffer, bool) {
	n := len(s.snapshots)
	if n == 0 {
		return nil, false
	}
	b := s.snapshots[n-1]
	s.snapshots[n-1] = nil
	s.snapshots = s.snapshots[:n-1]
	return b, true
}

// Clear drops every snapshot.
func (s *Stack) Clear() {
	clear(s.snapshots)
	s.snapshots = s.snapshots[:0]
}

// Len returns the number of snapshots held.
func (s *Stack) Len() int {
	return len(s.snapshots)
}
