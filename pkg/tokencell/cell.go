package tokencell

import "sync/atomic"

// Cell holds the latest published value of T.
// Readers see either the previous or the new value, never a partial one.
type Cell[T any] struct {
	name string
	v    atomic.Pointer[T]
}

// New creates an empty cell
func New[T any](name string) *Cell[T] {
	return &Cell[T]{name: name}
}

// Name returns the label the cell was created with
func (c *Cell[T]) Name() string {
	return c.name
}

// Store replaces the held value
func (c *Cell[T]) Store(value T) {
	c.v.Store(&value)
}

// Load returns the held value, or false if nothing was stored yet
func (c *Cell[T]) Load() (T, bool) {
	p := c.v.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
