// Package stack provides the bounded work stack used by every tree walk in
// the compiler.
//
// Tree algorithms push continuation frames instead of recursing, so deeply
// nested or heavily expanded patterns cannot overflow the goroutine stack.
// The stack grows in fixed increments up to a hard maximum.
package stack

import "errors"

// ErrSpace is returned by Push when the stack would grow past its maximum.
var ErrSpace = errors.New("stack: maximum size exceeded")

// Default sizing.
const (
	DefaultInitial   = 512
	DefaultMax       = 1024000
	DefaultIncrement = 128
)

// Stack is a LIFO of T with bounded growth.
type Stack[T any] struct {
	items     []T
	max       int
	increment int
}

// New creates a stack with room for initial elements that grows by
// increment up to maxLen elements. Non-positive arguments pick the defaults.
func New[T any](initial, maxLen, increment int) *Stack[T] {
	if initial <= 0 {
		initial = DefaultInitial
	}
	if maxLen <= 0 {
		maxLen = DefaultMax
	}
	if increment <= 0 {
		increment = DefaultIncrement
	}
	if initial > maxLen {
		initial = maxLen
	}
	return &Stack[T]{
		items:     make([]T, 0, initial),
		max:       maxLen,
		increment: increment,
	}
}

// Push adds v on top of the stack.
func (s *Stack[T]) Push(v T) error {
	if len(s.items) == cap(s.items) {
		if cap(s.items) >= s.max {
			return ErrSpace
		}
		n := cap(s.items) + s.increment
		if n > s.max {
			n = s.max
		}
		grown := make([]T, len(s.items), n)
		copy(grown, s.items)
		s.items = grown
	}
	s.items = append(s.items, v)
	return nil
}

// Pop removes and returns the top element. It panics on an empty stack.
func (s *Stack[T]) Pop() T {
	n := len(s.items) - 1
	v := s.items[n]
	var zero T
	s.items[n] = zero
	s.items = s.items[:n]
	return v
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() T {
	return s.items[len(s.items)-1]
}

// Len returns the number of elements on the stack.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Truncate pops elements until Len() == n. Walks that fail midway use it to
// leave a shared stack as they found it.
func (s *Stack[T]) Truncate(n int) {
	var zero T
	for i := n; i < len(s.items); i++ {
		s.items[i] = zero
	}
	if n < len(s.items) {
		s.items = s.items[:n]
	}
}
