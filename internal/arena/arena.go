// Package arena provides a typed block allocator for compile-time objects.
//
// An Arena hands out pointers into chained blocks. Objects are never freed
// individually; the whole arena is dropped at once when the compilation that
// owns it finishes. Blocks never move, so returned pointers stay valid for the
// lifetime of the arena.
package arena

import (
	"errors"
	"unsafe"
)

// ErrSpace is returned when an allocation would exceed the arena limit.
var ErrSpace = errors.New("arena: object limit exceeded")

// defaultBlockBytes is the approximate size of a regular block.
const defaultBlockBytes = 1024

// Arena allocates values of type T from chained blocks.
type Arena[T any] struct {
	blocks   [][]T
	cur      []T // unused tail of the newest regular block
	blockLen int
	limit    int
	n        int
}

// New creates an arena. blockLen is the element count of a regular block;
// a value <= 0 selects a length that fills about 1 KiB. limit caps the total
// number of allocated elements (0 means no cap).
func New[T any](blockLen, limit int) *Arena[T] {
	if blockLen <= 0 {
		var zero T
		size := int(unsafe.Sizeof(zero))
		if size == 0 {
			size = 1
		}
		blockLen = defaultBlockBytes / size
		if blockLen < 1 {
			blockLen = 1
		}
	}
	return &Arena[T]{blockLen: blockLen, limit: limit}
}

// Alloc returns a pointer to a new zero value.
func (a *Arena[T]) Alloc() (*T, error) {
	s, err := a.AllocSlice(1)
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// AllocSlice returns n contiguous zero values. The slice has capacity n, so
// appending to it never writes into memory owned by other allocations.
func (a *Arena[T]) AllocSlice(n int) ([]T, error) {
	if n < 0 {
		return nil, ErrSpace
	}
	if n == 0 {
		return nil, nil
	}
	if a.limit > 0 && a.n+n > a.limit {
		return nil, ErrSpace
	}
	a.n += n

	if n > len(a.cur) {
		if n > a.blockLen {
			// Oversized request: dedicated block, the current block keeps
			// its free tail.
			b := make([]T, n*8)
			a.blocks = append(a.blocks, b)
			return b[:n:n], nil
		}
		b := make([]T, a.blockLen)
		a.blocks = append(a.blocks, b)
		a.cur = b
	}
	s := a.cur[:n:n]
	a.cur = a.cur[n:]
	return s, nil
}

// Len returns the number of elements handed out so far.
func (a *Arena[T]) Len() int {
	return a.n
}

// Limit returns the configured element limit (0 means unlimited).
func (a *Arena[T]) Limit() int {
	return a.limit
}

// Reset drops every block. Pointers obtained earlier must not be used.
func (a *Arena[T]) Reset() {
	a.blocks = nil
	a.cur = nil
	a.n = 0
}
