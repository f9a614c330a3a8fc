// Package goroutinelocal provides a minimal per-goroutine stack, used by [github.com/Izzette/go-gtask/mainctx] to
// emulate the "thread-default context" push/pop convention spec.md §6 requires of the Context external collaborator.
//
// Go has no supported goroutine-local-storage primitive, so this package falls back to the standard technique of
// parsing the goroutine ID out of runtime.Stack's header line. No example or third-party library in the corpus this
// module was grounded on offers goroutine-local storage, so this is one of the few places the implementation rests
// on the standard library alone rather than an ecosystem dependency — see DESIGN.md.
package goroutinelocal

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineID extracts the numeric ID of the calling goroutine from the header line of runtime.Stack's output.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if idx := bytes.IndexByte(b, ' '); idx >= 0 {
		b = b[:idx]
	}

	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		// This can only happen if the Go runtime changes the format of runtime.Stack's header, which has been
		// stable for over a decade; treat it as goroutine 0, which just means thread-default lookups will all
		// collide onto a single (incorrect but non-crashing) stack.
		return 0
	}

	return id
}

// Stack is a per-goroutine LIFO stack of values of type T.
type Stack[T any] struct {
	mu     sync.Mutex
	stacks map[uint64][]T
}

// NewStack creates an empty Stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{stacks: make(map[uint64][]T)}
}

// Push pushes v onto the calling goroutine's stack.
func (s *Stack[T]) Push(v T) {
	id := goroutineID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stacks[id] = append(s.stacks[id], v)
}

// Pop removes and discards the top of the calling goroutine's stack. It is a no-op if the stack is empty.
func (s *Stack[T]) Pop() {
	id := goroutineID()

	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.stacks[id]
	if len(stack) == 0 {
		return
	}
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(s.stacks, id)
	} else {
		s.stacks[id] = stack
	}
}

// Top returns the top of the calling goroutine's stack, and whether it was non-empty.
func (s *Stack[T]) Top() (T, bool) {
	id := goroutineID()

	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.stacks[id]
	if len(stack) == 0 {
		var zero T

		return zero, false
	}

	return stack[len(stack)-1], true
}
