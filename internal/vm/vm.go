package vm

import (
	"context"
	"log/slog"

	"github.com/EmonFan/bardolph/internal/clock"
	"github.com/EmonFan/bardolph/internal/lampset"
	"github.com/EmonFan/bardolph/internal/timepattern"
)

// PauseReader is the external collaborator the PAUSE opcode consumes: it
// knows whether pausing is even possible (stdin must be a real terminal)
// and blocks for one character when it is.
type PauseReader interface {
	Enabled() bool
	ReadChar() (rune, error)
}

// Env bundles every collaborator the Machine needs from outside package vm.
// It is passed in explicitly at construction time rather than reached for
// through process-wide globals, so the same Machine type serves a live run
// against real lamps and a deterministic test run against a fake set.
type Env struct {
	Lamps  lampset.Set
	Clock  clock.Clock
	Pause  PauseReader
	Logger *slog.Logger
}

// Machine is the register-based VM: program, program counter, registers,
// call stack (which also owns the value stack for unwinding safety), and
// the external collaborators §4.H's opcode semantics call out to.
type Machine struct {
	prog  *Program
	pc    int
	regs  *Registers
	stack *CallStack
	math  *Math
	env   Env

	keepRunning  bool
	pauseEnabled bool
}

// NewMachine builds a Machine ready to run prog against env. Registers and
// the call stack start in their reset state.
func NewMachine(prog *Program, env Env) *Machine {
	m := &Machine{prog: prog, env: env}
	m.resetState()
	return m
}

func (m *Machine) resetState() {
	m.regs = NewRegisters()
	m.stack = NewCallStack()
	m.math = NewMath(m.regs, m.stack)
	m.pc = 0
	m.keepRunning = true
	m.pauseEnabled = true
}

// Reset returns the Machine to its initial state so the same instance can
// run a fresh program without reconstructing its collaborators.
func (m *Machine) Reset() { m.resetState() }

// SetProgram swaps in a new compiled program, implicitly resetting runtime
// state (registers, frames, pc) the way a fresh run expects.
func (m *Machine) SetProgram(prog *Program) {
	m.prog = prog
	m.resetState()
}

// Registers exposes the register file for callers that want to inspect
// final state after a run (tests, the CLI's instruction listing mode).
func (m *Machine) Registers() *Registers { return m.regs }

// Stop requests an orderly exit at the next fetch-cycle boundary — the
// external "keep running" control flag the concurrency model (§5) polls.
func (m *Machine) Stop() { m.keepRunning = false }

// Run executes the program from address 0 until STOP, a runtime request to
// stop, or the program counter runs off the end. It returns ctx.Err() if
// the context is cancelled between instructions; cancellation otherwise
// behaves like an external Stop() call.
func (m *Machine) Run(ctx context.Context) error {
	m.pc = 0
	m.keepRunning = true
	if m.env.Clock != nil {
		m.env.Clock.Start()
	}
	defer func() {
		if m.env.Clock != nil {
			m.env.Clock.Stop()
		}
	}()

	for m.keepRunning && m.pc < len(m.prog.Code) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m.step()
	}
	return nil
}

// step fetches, dispatches, and advances past one instruction. Every opcode
// advances pc by one afterward except JUMP, JSR, RETURN, ROUTINE, and
// END_LOOP, which may assign it themselves.
func (m *Machine) step() {
	ins := m.prog.Code[m.pc]
	next := m.pc + 1

	switch ins.Op {
	case NOP, BREAKPOINT:
		// BREAKPOINT is a debugger hook with no VM-level effect; a future
		// interactive front end can watch for it via a Logger at DEBUG.
		m.logDebug("breakpoint", ins.Line)

	case CONSTANT:
		m.stack.PutConstant(ins.Dest.Name, ins.Imm)

	case ROUTINE:
		next = ins.Addr

	case MOVEQ:
		m.move(ins.Dest, ins.Imm)

	case MOVE:
		v, err := m.math.Resolve(ins.Src)
		if m.warn(err, ins.Line) {
			break
		}
		m.move(ins.Dest, v)

	case PUSH:
		m.warn(m.math.Push(ins.Src), ins.Line)

	case PUSHQ:
		m.math.PushImmediate(ins.Imm)

	case POP:
		m.warn(m.math.Pop(ins.Dest), ins.Line)

	case OP:
		m.warn(m.math.Apply(ins.Arith), ins.Line)

	case JUMP:
		if m.testJump(ins.Cond) {
			next = ins.Addr
		}

	case JSR:
		m.stack.PushFrame(m.pc + 1)
		next = ins.Addr

	case RETURN:
		addr, err := m.stack.PopFrame()
		if !m.warn(err, ins.Line) {
			next = addr
		}

	case PARAM:
		v, err := m.paramValue(ins)
		if !m.warn(err, ins.Line) {
			m.stack.StageParam(ins.Dest.Name, v)
		}

	case LOOP:
		m.loopEnter(ins)

	case END_LOOP:
		if m.loopAdvance(ins.Line) {
			next = ins.Addr
		}

	case TIME_PATTERN:
		m.timePattern(ins)

	case WAIT:
		m.wait()

	case PAUSEOP:
		m.pause()

	case COLOR:
		m.color(ins)

	case GET_COLOR:
		m.getColor(ins)

	case POWERCMD:
		m.power(ins)

	case STOP:
		m.keepRunning = false
	}

	m.pc = next
}

func (m *Machine) move(dest Target, v Value) {
	if dest.IsReg && dest.Reg == UNIT_MODE {
		m.setUnitModeFromValue(v)
		return
	}
	m.math.Store(dest, v)
}

func (m *Machine) setUnitModeFromValue(v Value) {
	mode := LOGICAL
	if v.Kind == KindString && v.Str == "RAW" {
		mode = RAWMODE
	}
	m.regs.SetUnitMode(mode)
}

func (m *Machine) testJump(cond JumpCond) bool {
	switch cond {
	case JumpAlways:
		return true
	case JumpIfTrue:
		return truthy(m.regs.Get(RESULT))
	default: // JumpIfFalse
		return !truthy(m.regs.Get(RESULT))
	}
}

func truthy(v Value) bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt, KindFloat:
		return v.AsFloat() != 0
	default:
		return false
	}
}

// paramValue resolves a PARAM instruction's argument: a literal supplies
// Imm directly; a register or variable reference is resolved at the call
// site, before the callee's frame exists.
func (m *Machine) paramValue(ins Instruction) (Value, error) {
	if ins.HasImm {
		return ins.Imm, nil
	}
	return m.math.Resolve(ins.Src)
}

func (m *Machine) loopEnter(ins Instruction) {
	st := loopState{kind: ins.Loop}
	switch ins.Loop {
	case LoopCount:
		st.counter = 0
		st.limit = ins.Imm.AsFloat()
	case LoopRange:
		st.counter = ins.Imm.AsFloat()
		st.limit = ins.Limit.AsFloat()
		if st.counter <= st.limit {
			st.step = 1
		} else {
			st.step = -1
		}
	case LoopCycle:
		// no counter state: END_LOOP always jumps back.
	}
	m.stack.EnterLoop(st)
}

// loopAdvance updates the innermost loop's counter and reports whether
// execution should jump back to the loop body's first instruction (the
// END_LOOP instruction's own Addr field, set by the code generator).
func (m *Machine) loopAdvance(line int) bool {
	st, ok := m.stack.CurrentLoop()
	if !ok {
		m.logWarn("end-loop with no open loop", line)
		return false
	}
	switch st.kind {
	case LoopCycle:
		return true
	case LoopCount:
		st.counter++
		if st.counter < st.limit {
			return true
		}
	case LoopRange:
		st.counter += st.step
		cont := st.counter <= st.limit
		if st.step < 0 {
			cont = st.counter >= st.limit
		}
		if cont {
			return true
		}
	}
	m.stack.ExitLoop()
	return false
}

func (m *Machine) timePattern(ins Instruction) {
	var incoming timepattern.Set
	if ins.Imm.Kind == KindTimePattern {
		incoming = ins.Imm.Time
	}
	if ins.SetOp == TimeInit {
		m.regs.Set(TIME, TimePatternVal(incoming))
		return
	}
	existing := timepattern.Set{}
	cur := m.regs.Get(TIME)
	if cur.Kind == KindTimePattern {
		existing = cur.Time
	}
	merged := make(timepattern.Set, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	m.regs.Set(TIME, TimePatternVal(merged))
}

// wait implements WAIT: a time-pattern TIME register waits for the clock to
// match it; otherwise TIME is a duration — milliseconds in RAW mode,
// seconds in LOGICAL mode, per the honored Open Question in the design
// notes — and a positive value sleeps for that long.
func (m *Machine) wait() {
	if m.env.Clock == nil {
		return
	}
	t := m.regs.Get(TIME)
	if t.Kind == KindTimePattern {
		m.env.Clock.WaitUntil(t.Time)
		return
	}
	if !t.IsNumeric() || t.AsFloat() <= 0 {
		return
	}
	seconds := t.AsFloat()
	if m.regs.Mode() == RAWMODE {
		seconds /= 1000
	}
	m.env.Clock.PauseFor(seconds)
}

// pause implements PAUSE: read one character if pausing is both enabled on
// this Machine and possible on the underlying terminal. 'q' stops the
// program; '!' disables all further pauses for the rest of the run.
func (m *Machine) pause() {
	if !m.pauseEnabled || m.env.Pause == nil || !m.env.Pause.Enabled() {
		return
	}
	r, err := m.env.Pause.ReadChar()
	if err != nil {
		return
	}
	switch r {
	case 'q':
		m.keepRunning = false
	case '!':
		m.pauseEnabled = false
	}
}

func (m *Machine) color(ins Instruction) {
	c := lampset.Color{
		H: uint16(m.regs.RawOf(HUE)),
		S: uint16(m.regs.RawOf(SATURATION)),
		B: uint16(m.regs.RawOf(BRIGHTNESS)),
		K: uint16(m.regs.RawOf(KELVIN)),
	}
	durationMS := int(m.regs.RawOf(DURATION))
	operand := Operand(m.regs.Get(OPERAND).AsInt())
	name := m.regs.Get(NAME).Str

	switch operand {
	case OperandAll:
		m.env.Lamps.SetColor(c, durationMS)
	case OperandLight:
		lamp, ok := m.env.Lamps.GetLight(name)
		if !ok {
			m.logWarn("unknown-lamp", ins.Line, "name", name)
			return
		}
		lamp.SetColor(c, durationMS)
	case OperandGroup:
		lamps, ok := m.env.Lamps.GetGroup(name)
		if !ok {
			m.logWarn("unknown-group-or-location", ins.Line, "group", name)
			return
		}
		for _, lamp := range lamps {
			lamp.SetColor(c, durationMS)
		}
	case OperandLocation:
		lamps, ok := m.env.Lamps.GetLocation(name)
		if !ok {
			m.logWarn("unknown-group-or-location", ins.Line, "location", name)
			return
		}
		for _, lamp := range lamps {
			lamp.SetColor(c, durationMS)
		}
	case OperandMZLight:
		lamp, ok := m.env.Lamps.GetLight(name)
		if !ok {
			m.logWarn("unknown-lamp", ins.Line, "name", name)
			return
		}
		if !lamp.Multizone() {
			m.logWarn("zone-on-non-multizone", ins.Line, "name", name)
			return
		}
		start, end := m.zoneRange()
		lamp.SetZoneColor(start, end+1, c, durationMS)
	}
}

func (m *Machine) power(ins Instruction) {
	raw := uint16(0)
	if m.regs.Get(POWER).Bool {
		raw = 65535
	}
	durationMS := int(m.regs.RawOf(DURATION))
	operand := Operand(m.regs.Get(OPERAND).AsInt())
	name := m.regs.Get(NAME).Str

	switch operand {
	case OperandAll:
		m.env.Lamps.SetPower(raw, durationMS)
	case OperandLight:
		lamp, ok := m.env.Lamps.GetLight(name)
		if !ok {
			m.logWarn("unknown-lamp", ins.Line, "name", name)
			return
		}
		lamp.SetPower(raw, durationMS)
	case OperandGroup:
		lamps, ok := m.env.Lamps.GetGroup(name)
		if !ok {
			m.logWarn("unknown-group-or-location", ins.Line, "group", name)
			return
		}
		for _, lamp := range lamps {
			lamp.SetPower(raw, durationMS)
		}
	case OperandLocation:
		lamps, ok := m.env.Lamps.GetLocation(name)
		if !ok {
			m.logWarn("unknown-group-or-location", ins.Line, "location", name)
			return
		}
		for _, lamp := range lamps {
			lamp.SetPower(raw, durationMS)
		}
	}
}

func (m *Machine) getColor(ins Instruction) {
	operand := Operand(m.regs.Get(OPERAND).AsInt())
	name := m.regs.Get(NAME).Str

	lamp, ok := m.env.Lamps.GetLight(name)
	if !ok {
		m.logWarn("unknown-lamp", ins.Line, "name", name)
		return
	}

	switch operand {
	case OperandLight:
		c := lamp.GetColor()
		m.storeColor(c)
	case OperandMZLight:
		if !lamp.Multizone() {
			m.logWarn("zone-on-non-multizone", ins.Line, "name", name)
			return
		}
		start, end := m.zoneRange()
		zones := lamp.GetColorZones(start, end+1)
		if len(zones) == 0 {
			m.logWarn("zone-on-non-multizone", ins.Line, "name", name)
			return
		}
		m.storeColor(zones[0])
	}
}

func (m *Machine) storeColor(c lampset.Color) {
	m.regs.SetFromRaw(HUE, float64(c.H))
	m.regs.SetFromRaw(SATURATION, float64(c.S))
	m.regs.SetFromRaw(BRIGHTNESS, float64(c.B))
	m.regs.SetFromRaw(KELVIN, float64(c.K))
}

// zoneRange reads FIRST_ZONE/LAST_ZONE as an inclusive lamp-index range,
// treating a none LAST_ZONE as "single zone at FIRST_ZONE".
func (m *Machine) zoneRange() (start, end int) {
	start = int(m.regs.Get(FIRST_ZONE).AsInt())
	last := m.regs.Get(LAST_ZONE)
	if last.Kind == KindNone {
		return start, start
	}
	return start, int(last.AsInt())
}

// warn logs err at WARN (if non-nil) and reports whether the instruction
// should be treated as a no-op, per the runtime-error-is-non-fatal contract.
func (m *Machine) warn(err error, line int) bool {
	if err == nil {
		return false
	}
	m.logWarn(err.Error(), line)
	return true
}

func (m *Machine) logWarn(msg string, line int, args ...any) {
	if m.env.Logger == nil {
		return
	}
	m.env.Logger.Warn(msg, append([]any{"line", line}, args...)...)
}

func (m *Machine) logDebug(msg string, line int) {
	if m.env.Logger == nil {
		return
	}
	m.env.Logger.Debug(msg, "line", line)
}
