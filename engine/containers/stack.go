package containers

import "github.com/cockroachdb/errors"

var ErrStackEmpty = errors.New("stack is empty")

// Stack is a LIFO backed by a growable slice.
type Stack[E any] struct {
	data []E
}

// Create a new Stack with room for capacity elements
func NewStack[E any](capacity int) *Stack[E] {
	return &Stack[E]{
		data: make([]E, 0, capacity),
	}
}

// Push adds an element on top of the stack
func (s *Stack[E]) Push(e E) {
	s.data = append(s.data, e)
}

// PushAll adds the elements in order, the last one ending on top
func (s *Stack[E]) PushAll(es ...E) {
	s.data = append(s.data, es...)
}

// Pop removes and returns the top element
func (s *Stack[E]) Pop() (E, error) {
	var zero E
	if s.IsEmpty() {
		return zero, ErrStackEmpty
	}
	e := s.data[len(s.data)-1]
	s.data[len(s.data)-1] = zero
	s.data = s.data[:len(s.data)-1]
	return e, nil
}

// Peek returns the top element without removing it
func (s *Stack[E]) Peek() (E, error) {
	if s.IsEmpty() {
		var zero E
		return zero, ErrStackEmpty
	}
	return s.data[len(s.data)-1], nil
}

// Len returns the number of elements in the stack
func (s *Stack[E]) Len() int {
	return len(s.data)
}

// IsEmpty checks if the stack is empty
func (s *Stack[E]) IsEmpty() bool {
	return len(s.data) == 0
}

// Clear drops every element and releases the backing storage
func (s *Stack[E]) Clear() {
	s.data = nil
}
