package evaluator

import (
	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/lonelycoder306/plox/internal/token"
)

// Frame records one call-stack entry: the callee name and the source locus
// of the call (§4.5 step 3, SPEC_FULL's call-stack-aware runtime errors).
type Frame struct {
	Name string
	Pos  token.Position
}

// maxCallDepth bounds host recursion; exceeding it surfaces as a Recursion
// diagnostic rather than crashing the Go runtime (§7).
const maxCallDepth = 500

// CallStack tracks the live call chain using emirpasic/gods' array-backed
// stack, grounded on the teacher's callstack.go of the same name and
// purpose (call-stack-aware error context, not general data storage).
type CallStack struct {
	stack *arraystack.Stack
}

func NewCallStack() *CallStack {
	return &CallStack{stack: arraystack.New()}
}

// Push records a call; it reports whether the stack has now exceeded
// maxCallDepth (the caller should raise a Recursion diagnostic and unwind).
func (c *CallStack) Push(name string, pos token.Position) bool {
	c.stack.Push(Frame{Name: name, Pos: pos})
	return c.stack.Size() > maxCallDepth
}

func (c *CallStack) Pop() {
	c.stack.Pop()
}

// Frames returns the stack top-to-bottom (most recent call first), for the
// debugger's `stack` command (§4.6).
func (c *CallStack) Frames() []Frame {
	values := c.stack.Values()
	out := make([]Frame, len(values))
	for i, v := range values {
		out[i] = v.(Frame)
	}
	return out
}

func (c *CallStack) Depth() int { return c.stack.Size() }

// topPos returns the calling position of the innermost frame, or the zero
// Position if the call stack is empty.
func (c *CallStack) topPos() token.Position {
	if top, ok := c.stack.Peek(); ok {
		return top.(Frame).Pos
	}
	return token.Position{}
}
