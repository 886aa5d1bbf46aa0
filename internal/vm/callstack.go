package vm

import "fmt"

// loopState is one entry of a frame's loop stack, opened by LOOP and closed
// by END_LOOP. Loops open sub-scopes on the same stack as routine calls so
// break/continue-style control flow (not yet surfaced to scripts) stays
// local to the frame that owns it. It only backs the counter-driven repeat
// forms (cycle/count/from-to); while/until compile to a plain guard-expr-
// plus-JUMP shape and never touch this stack.
type loopState struct {
	kind    LoopKind
	counter float64
	limit   float64
	step    float64
}

// Frame is one call context: the address to return to, the name->Value
// bindings visible while executing in this frame (parameters, variables,
// and constants installed by the CONSTANT opcode), and any open loops.
type Frame struct {
	ReturnAddr int
	bindings   map[string]Value
	loops      []loopState
	valueBase  int // value-stack depth when the frame was pushed
}

func newFrame() *Frame {
	return &Frame{bindings: map[string]Value{}}
}

// CallStack is the VM's stack of frames plus the value stack used by VM
// math (component J). The value stack lives here, rather than in its own
// free-standing structure, so that popping a frame on RETURN also discards
// any values that frame's expression evaluation left behind.
type CallStack struct {
	frames  []*Frame
	values  []Value
	pending map[string]Value // PARAM bindings staged at the call site, ahead of the JSR that adopts them
}

// NewCallStack creates a call stack with a single top-level frame for
// script-level (non-routine) variables.
func NewCallStack() *CallStack {
	return &CallStack{frames: []*Frame{newFrame()}, pending: map[string]Value{}}
}

// Reset discards all frames but the top-level one and clears the value
// stack, without disturbing registers.
func (c *CallStack) Reset() {
	c.frames = []*Frame{newFrame()}
	c.values = c.values[:0]
	c.pending = map[string]Value{}
}

// PushFrame enters a new call frame (JSR) with the given return address.
// It adopts whatever PARAM bindings were staged since the last JSR as the
// new frame's initial bindings, then clears the staging area — PARAM is
// resolved at the call site, before the callee's frame exists, so the
// bindings can't go directly into a frame that isn't pushed yet.
func (c *CallStack) PushFrame(returnAddr int) *Frame {
	f := newFrame()
	f.ReturnAddr = returnAddr
	f.valueBase = len(c.values)
	for name, v := range c.pending {
		f.bindings[name] = v
	}
	c.pending = map[string]Value{}
	c.frames = append(c.frames, f)
	return f
}

// PopFrame exits the current call frame (END/RETURN) and returns its
// return address, discarding any values pushed since the frame was entered.
// It is an error to pop the top-level frame.
func (c *CallStack) PopFrame() (int, error) {
	if len(c.frames) <= 1 {
		return 0, fmt.Errorf("return with no active routine call")
	}
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	if f.valueBase <= len(c.values) {
		c.values = c.values[:f.valueBase]
	}
	return f.ReturnAddr, nil
}

func (c *CallStack) current() *Frame {
	return c.frames[len(c.frames)-1]
}

// PutVariable binds name in the current frame (POP/MOVE into a variable).
func (c *CallStack) PutVariable(name string, v Value) {
	c.current().bindings[name] = v
}

// StageParam stages a PARAM binding for the routine about to be entered by
// the next JSR. It does not touch the current frame's bindings.
func (c *CallStack) StageParam(name string, v Value) {
	c.pending[name] = v
}

func (c *CallStack) PutConstant(name string, v Value) {
	c.current().bindings[name] = v
}

// GetVariable looks up name in the current frame only — there is no
// closure capture across frames.
func (c *CallStack) GetVariable(name string) (Value, bool) {
	v, ok := c.current().bindings[name]
	return v, ok
}

// EnterLoop opens a new loop scope on the current frame.
func (c *CallStack) EnterLoop(s loopState) {
	f := c.current()
	f.loops = append(f.loops, s)
}

// ExitLoop closes the innermost loop scope on the current frame.
func (c *CallStack) ExitLoop() {
	f := c.current()
	if len(f.loops) == 0 {
		return
	}
	f.loops = f.loops[:len(f.loops)-1]
}

// CurrentLoop returns the innermost open loop on the current frame.
func (c *CallStack) CurrentLoop() (*loopState, bool) {
	f := c.current()
	if len(f.loops) == 0 {
		return nil, false
	}
	return &f.loops[len(f.loops)-1], true
}

// Value-stack operations (component J lives on top of these).

func (c *CallStack) PushValue(v Value) { c.values = append(c.values, v) }

func (c *CallStack) PopValue() (Value, bool) {
	if len(c.values) == 0 {
		return Value{}, false
	}
	v := c.values[len(c.values)-1]
	c.values = c.values[:len(c.values)-1]
	return v, true
}

func (c *CallStack) PeekValue() (Value, bool) {
	if len(c.values) == 0 {
		return Value{}, false
	}
	return c.values[len(c.values)-1], true
}
