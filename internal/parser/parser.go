// Package parser implements the lexer-driven recursive-descent front end
// (component G) that lowers bardolph scripts to a vm.Program: command
// dispatch, routine definition, loop and conditional codegen, and
// compile-time unit conversion for logical color literals.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/EmonFan/bardolph/internal/lexer"
	"github.com/EmonFan/bardolph/internal/symbols"
	"github.com/EmonFan/bardolph/internal/timepattern"
	"github.com/EmonFan/bardolph/internal/token"
	"github.com/EmonFan/bardolph/internal/units"
	"github.com/EmonFan/bardolph/internal/vm"
)

// Parser drives the lexer one token of lookahead at a time, emitting
// instructions to a CodeGen and tracking compile-time symbols as it goes.
// A failing command stops the walk immediately — per the spec's failure
// semantics, parsing continues only while the result would stay
// well-defined, not through cascading recovery.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token

	gen  *vm.CodeGen
	syms *symbols.Table

	// actionOp tracks whether the operand list currently being parsed
	// belongs to a "set" (COLOR) or "on"/"off" (POWERCMD) command, since
	// zone ranges are only valid in a COLOR context.
	actionOp vm.OpCode

	// compileTimeMode tracks the most recent "units raw|logical" command's
	// effect at compile time, so a numeric color-register literal can be
	// converted to raw units right away instead of waiting on the runtime
	// UNIT_MODE register.
	compileTimeMode string

	err error
}

// Compile parses source into a CodeGen ready for optimization and
// execution, or returns the first error found, tagged with its line
// number. The registers/symbols it leaves behind are compile-time only;
// nothing here is shared with a running Machine.
func Compile(source string) (*vm.CodeGen, error) {
	p := &Parser{gen: vm.NewCodeGen(), syms: symbols.New()}
	p.lex = lexer.New(source)
	p.advance()

	for p.cur.Kind != token.EOF {
		if !p.command() {
			return nil, p.err
		}
	}
	return p.gen, nil
}

func (p *Parser) advance() { p.cur = p.lex.NextToken() }

func (p *Parser) fail(format string, args ...any) bool {
	p.err = newSyntaxError(p.cur.Line, format, args...)
	return false
}

func (p *Parser) emit(ins vm.Instruction) int {
	ins.Line = p.cur.Line
	return p.gen.Emit(ins)
}

// command dispatches on the current token per the script/command grammar.
func (p *Parser) command() bool {
	switch p.cur.Kind {
	case token.SET:
		return p.setCmd()
	case token.ON:
		return p.powerCmd(true)
	case token.OFF:
		return p.powerCmd(false)
	case token.GET:
		return p.getCmd()
	case token.ASSIGN:
		return p.assignCmd()
	case token.DEFINE:
		return p.defineCmd()
	case token.IF:
		return p.ifCmd()
	case token.REPEAT:
		return p.repeatCmd()
	case token.PAUSE:
		p.emit(vm.Instruction{Op: vm.PAUSEOP})
		p.advance()
		return true
	case token.WAIT:
		p.emit(vm.Instruction{Op: vm.WAIT})
		p.advance()
		return true
	case token.UNITS:
		return p.unitsCmd()
	case token.BREAKPOINT:
		p.emit(vm.Instruction{Op: vm.BREAKPOINT})
		p.advance()
		return true
	case token.REGISTER:
		return p.regSet()
	case token.NAME:
		return p.callRoutine()
	default:
		return p.fail("unexpected token %q", p.cur.Lexeme)
	}
}

// commandSeq parses either a single command or a "begin ... end" block.
func (p *Parser) commandSeq() bool {
	if p.cur.Kind == token.BEGIN {
		p.advance()
		for p.cur.Kind != token.END {
			if p.cur.Kind == token.EOF {
				return p.fail("end of file before \"end\"")
			}
			if !p.command() {
				return false
			}
		}
		p.advance()
		return true
	}
	return p.command()
}

// ---- set / on / off ----

func (p *Parser) setCmd() bool {
	p.actionOp = vm.COLOR
	return p.action()
}

func (p *Parser) powerCmd(on bool) bool {
	p.actionOp = vm.POWERCMD
	p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.POWER), Imm: vm.BoolVal(on)})
	return p.action()
}

// action emits the preceding WAIT (so timing registers take effect before
// the action fires) and then parses the operand list.
func (p *Parser) action() bool {
	p.emit(vm.Instruction{Op: vm.WAIT})
	p.advance()
	if p.cur.Kind == token.ALL {
		p.advance()
		p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.NAME), Imm: vm.NoneVal()})
		p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.OPERAND), Imm: vm.IntVal(int64(vm.OperandAll))})
		p.emit(vm.Instruction{Op: p.actionOp})
		return true
	}
	return p.operandList()
}

func (p *Parser) operandList() bool {
	if !p.operand() {
		return false
	}
	p.emit(vm.Instruction{Op: p.actionOp})
	for p.cur.Kind == token.AND {
		p.advance()
		if !p.operand() {
			return false
		}
		p.emit(vm.Instruction{Op: p.actionOp})
	}
	return true
}

// operand parses a group/location/light reference, optionally followed by
// a zone range, and leaves NAME/OPERAND set for the caller's action opcode.
func (p *Parser) operand() bool {
	operand := vm.OperandLight
	switch p.cur.Kind {
	case token.GROUP:
		operand = vm.OperandGroup
		p.advance()
	case token.LOCATION:
		operand = vm.OperandLocation
		p.advance()
	}

	switch p.cur.Kind {
	case token.STRING:
		p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.NAME), Imm: vm.StringVal(p.cur.Lexeme)})
		p.advance()
	case token.NAME:
		if !p.syms.HasSymbolTyped(p.cur.Lexeme, symbols.KindVar) {
			return p.fail("not a variable: %q", p.cur.Lexeme)
		}
		p.emit(vm.Instruction{Op: vm.MOVE, Dest: vm.RegTarget(vm.NAME), Src: vm.VarTarget(p.cur.Lexeme)})
		p.advance()
	default:
		return p.fail("needed a light, got %q", p.cur.Lexeme)
	}

	if p.cur.Kind == token.ZONE {
		if p.actionOp != vm.COLOR {
			return p.fail("zones not supported for this action")
		}
		p.advance()
		if !p.zoneRange(false) {
			return false
		}
		operand = vm.OperandMZLight
	}

	p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.OPERAND), Imm: vm.IntVal(int64(operand))})
	return true
}

// zoneRange parses one or two zone numbers into FIRST_ZONE/LAST_ZONE.
// onlyOne is set by "get ... zone N" (a single zone, no range).
func (p *Parser) zoneRange(onlyOne bool) bool {
	if !p.isRvalueStart() {
		return p.fail("expected zone, got %q", p.cur.Lexeme)
	}
	if !p.rvalue(vm.RegTarget(vm.FIRST_ZONE)) {
		return false
	}
	if !onlyOne && p.isRvalueStart() {
		return p.rvalue(vm.RegTarget(vm.LAST_ZONE))
	}
	p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.LAST_ZONE), Imm: vm.NoneVal()})
	return true
}

// ---- get ----

func (p *Parser) getCmd() bool {
	p.advance()
	if !p.isRvalueStart() {
		return p.fail("needed light for get, got %q", p.cur.Lexeme)
	}
	if !p.rvalue(vm.RegTarget(vm.NAME)) {
		return false
	}
	operand := vm.OperandLight
	if p.cur.Kind == token.ZONE {
		operand = vm.OperandMZLight
		p.advance()
		if !p.zoneRange(true) {
			return false
		}
	}
	p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.OPERAND), Imm: vm.IntVal(int64(operand))})
	p.emit(vm.Instruction{Op: vm.GET_COLOR})
	return true
}

// ---- assign / define ----

func (p *Parser) assignCmd() bool {
	p.advance()
	if p.cur.Kind != token.NAME {
		return p.fail("expected name for assignment, got %q", p.cur.Lexeme)
	}
	name := p.cur.Lexeme
	p.advance()
	if !p.rvalue(vm.VarTarget(name)) {
		return false
	}
	p.syms.AddVariable(name)
	return true
}

func (p *Parser) defineCmd() bool {
	p.advance()
	if p.cur.Kind != token.NAME {
		return p.fail("expected name for definition, got %q", p.cur.Lexeme)
	}
	name := p.cur.Lexeme
	p.advance()
	if p.looksLikeRoutine(name) {
		if _, exists := p.syms.GetRoutine(name); exists {
			return p.fail("already defined: %q", name)
		}
		return p.routineDefinition(name)
	}
	return p.macroDefinition(name)
}

// looksLikeRoutine implements the spec's define-vs-macro lookahead: "with",
// "begin", any command-starting keyword, or an existing routine name. A
// define of a name already bound to a routine is also routed here, so
// defineCmd can reject it as a duplicate.
func (p *Parser) looksLikeRoutine(name string) bool {
	if _, exists := p.syms.GetRoutine(name); exists {
		return true
	}
	switch p.cur.Kind {
	case token.WITH, token.BEGIN,
		token.SET, token.ON, token.OFF, token.GET, token.ASSIGN, token.DEFINE,
		token.IF, token.REPEAT, token.PAUSE, token.WAIT, token.UNITS,
		token.BREAKPOINT, token.REGISTER:
		return true
	case token.NAME:
		_, isRoutine := p.syms.GetRoutine(p.cur.Lexeme)
		return isRoutine
	default:
		return false
	}
}

func (p *Parser) macroDefinition(name string) bool {
	v, ok := p.currentConstant()
	if !ok {
		return p.fail("macro needs constant, got %q", p.cur.Lexeme)
	}
	p.syms.AddGlobal(name, v)
	p.emit(vm.Instruction{Op: vm.CONSTANT, Dest: vm.VarTarget(name), Imm: v})
	p.advance()
	return true
}

func (p *Parser) routineDefinition(name string) bool {
	if p.syms.InRoutine() {
		return p.fail("nested definition not allowed")
	}
	p.syms.EnterRoutine()
	p.syms.Push()

	marker := p.gen.RoutineStart(p.cur.Line)
	p.gen.BindRoutine(name, p.gen.Here())

	routine := symbols.Routine{Name: name, Address: p.gen.Here()}
	if p.cur.Kind == token.WITH {
		p.advance()
		params, ok := p.paramDecl()
		if !ok {
			return false
		}
		routine.Params = params
	}
	if err := p.syms.AddRoutine(routine); err != nil {
		return p.fail("%s", err)
	}

	var ok bool
	if p.cur.Kind == token.BEGIN {
		p.advance()
		ok = p.compoundProc()
	} else {
		ok = p.command()
	}

	p.syms.Pop()
	p.emit(vm.Instruction{Op: vm.RETURN})
	p.gen.RoutineEnd(marker)
	p.syms.ExitRoutine()
	return ok
}

func (p *Parser) paramDecl() ([]string, bool) {
	if p.cur.Kind != token.NAME {
		p.fail("expected parameter name, got %q", p.cur.Lexeme)
		return nil, false
	}
	var names []string
	name := p.cur.Lexeme
	if err := p.syms.AddParam(name); err != nil {
		p.fail("%s", err)
		return nil, false
	}
	p.syms.AddVariable(name)
	names = append(names, name)
	p.advance()
	for p.cur.Kind == token.AND {
		p.advance()
		if p.cur.Kind != token.NAME {
			p.fail("expected parameter name, got %q", p.cur.Lexeme)
			return nil, false
		}
		name = p.cur.Lexeme
		if err := p.syms.AddParam(name); err != nil {
			p.fail("%s", err)
			return nil, false
		}
		p.syms.AddVariable(name)
		names = append(names, name)
		p.advance()
	}
	return names, true
}

func (p *Parser) compoundProc() bool {
	for p.cur.Kind != token.END {
		if p.cur.Kind == token.EOF {
			return p.fail("end of file before \"end\"")
		}
		if !p.command() {
			return false
		}
	}
	p.advance()
	return true
}

// callRoutine compiles a bare routine invocation: NAME followed by one
// argument per declared parameter, positionally. Each argument is first
// evaluated into RESULT, then staged with PARAM.
func (p *Parser) callRoutine() bool {
	routine, ok := p.syms.GetRoutine(p.cur.Lexeme)
	if !ok {
		return p.fail("unknown name: %q", p.cur.Lexeme)
	}
	p.advance()
	for _, paramName := range routine.Params {
		if !p.rvalue(vm.RegTarget(vm.RESULT)) {
			return false
		}
		p.emit(vm.Instruction{Op: vm.PARAM, Dest: vm.VarTarget(paramName), Src: vm.RegTarget(vm.RESULT)})
	}
	p.emit(vm.Instruction{Op: vm.JSR, Addr: routine.Address})
	return true
}

// ---- if / repeat ----

func (p *Parser) ifCmd() bool {
	p.advance()
	if p.cur.Kind != token.EXPRESSION {
		return p.fail("expected expression after \"if\", got %q", p.cur.Lexeme)
	}
	if !p.conditionToResult() {
		return false
	}
	marker := p.gen.IfStart(p.cur.Line)
	if !p.commandSeq() {
		return false
	}
	if p.cur.Kind == token.ELSE {
		p.advance()
		marker = p.gen.IfElse(marker, p.cur.Line)
		if !p.commandSeq() {
			return false
		}
	}
	p.gen.IfEnd(marker)
	return true
}

// conditionToResult compiles the current EXPRESSION token and pops its
// value into RESULT, the register JUMP tests.
func (p *Parser) conditionToResult() bool {
	src := p.cur.Lexeme
	line := p.cur.Line
	if err := compileExpression(src, line, p.gen, p.syms); err != nil {
		p.err = newSyntaxError(line, "%s", err)
		return false
	}
	p.emit(vm.Instruction{Op: vm.POP, Dest: vm.RegTarget(vm.RESULT)})
	p.advance()
	return true
}

func (p *Parser) repeatCmd() bool {
	p.advance()
	switch p.cur.Kind {
	case token.WHILE:
		return p.repeatGuarded(vm.JumpIfFalse)
	case token.UNTIL:
		return p.repeatGuarded(vm.JumpIfTrue)
	case token.CYCLE:
		p.advance()
		return p.repeatCounted(vm.Instruction{Op: vm.LOOP, Loop: vm.LoopCycle})
	case token.FROM:
		p.advance()
		return p.repeatRange()
	case token.ALL:
		// "repeat all" has no counted bound of its own; treat it as the
		// unconditional/infinite form, same as "cycle".
		p.advance()
		return p.repeatCounted(vm.Instruction{Op: vm.LOOP, Loop: vm.LoopCycle})
	default:
		return p.repeatCount()
	}
}

// repeatGuarded compiles "repeat while EXPR"/"repeat until EXPR": a guard
// expression re-evaluated before each iteration, the same JUMP shape "if"
// uses, rather than the counter-driven LOOP/END_LOOP opcodes.
func (p *Parser) repeatGuarded(exitWhen vm.JumpCond) bool {
	p.advance()
	if p.cur.Kind != token.EXPRESSION {
		return p.fail("expected expression after repeat guard, got %q", p.cur.Lexeme)
	}
	label := p.gen.Here()
	if !p.conditionToResult() {
		return false
	}
	exitMarker := p.emit(vm.Instruction{Op: vm.JUMP, Cond: exitWhen})
	if !p.commandSeq() {
		return false
	}
	p.emit(vm.Instruction{Op: vm.JUMP, Cond: vm.JumpAlways, Addr: label})
	p.gen.PatchAddr(exitMarker, p.gen.Here())
	return true
}

// repeatCount compiles "repeat N", a fixed literal/macro iteration count.
func (p *Parser) repeatCount() bool {
	v, ok := p.currentConstant()
	if !ok || !v.IsNumeric() {
		return p.fail("expected repeat count, got %q", p.cur.Lexeme)
	}
	p.advance()
	return p.repeatCounted(vm.Instruction{Op: vm.LOOP, Loop: vm.LoopCount, HasImm: true, Imm: v})
}

// repeatRange compiles "repeat from X to Y", inclusive, stepping +1 or -1.
func (p *Parser) repeatRange() bool {
	from, ok := p.currentConstant()
	if !ok || !from.IsNumeric() {
		return p.fail("expected range start, got %q", p.cur.Lexeme)
	}
	p.advance()
	if p.cur.Kind != token.TO {
		return p.fail("expected \"to\", got %q", p.cur.Lexeme)
	}
	p.advance()
	to, ok := p.currentConstant()
	if !ok || !to.IsNumeric() {
		return p.fail("expected range end, got %q", p.cur.Lexeme)
	}
	p.advance()
	return p.repeatCounted(vm.Instruction{Op: vm.LOOP, Loop: vm.LoopRange, HasImm: true, Imm: from, Limit: to})
}

// repeatCounted emits loopIns, the loop body, and a matching END_LOOP that
// jumps back to the body's first instruction.
func (p *Parser) repeatCounted(loopIns vm.Instruction) bool {
	loopIns.Line = p.cur.Line
	p.gen.Emit(loopIns)
	body := p.gen.Here()
	if !p.commandSeq() {
		return false
	}
	p.emit(vm.Instruction{Op: vm.END_LOOP, Addr: body})
	return true
}

// ---- units / reg_set / time ----

func (p *Parser) unitsCmd() bool {
	p.advance()
	var modeStr string
	switch p.cur.Kind {
	case token.RAW:
		modeStr = "RAW"
	case token.LOGICAL:
		modeStr = "LOGICAL"
	default:
		return p.fail("invalid parameter %q for units", p.cur.Lexeme)
	}
	p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(vm.UNIT_MODE), Imm: vm.StringVal(modeStr)})
	p.compileTimeMode = modeStr
	p.advance()
	return true
}

func (p *Parser) regSet() bool {
	reg, ok := registerByName[p.cur.Lexeme]
	if !ok {
		return p.fail("expected register, got %q", p.cur.Lexeme)
	}
	if reg == vm.TIME {
		return p.timeCmd()
	}
	p.advance()
	return p.rvalueConverting(reg)
}

// timeCmd implements "time at PAT (or PAT)*" or a plain "time <rvalue>"
// writing the TIME register directly. The at-form reads "at" and THEN
// advances before parsing the first pattern — the variant the design notes
// name authoritative, fixing the sibling variant's off-by-one.
func (p *Parser) timeCmd() bool {
	p.advance() // past "time"
	if p.cur.Kind == token.AT {
		p.advance() // past "at"
		return p.timePatterns()
	}
	return p.rvalue(vm.RegTarget(vm.TIME))
}

func (p *Parser) timePatterns() bool {
	pat, ok := p.currentTimePattern()
	if !ok {
		return p.fail("invalid time pattern %q", p.cur.Lexeme)
	}
	p.emit(vm.Instruction{Op: vm.TIME_PATTERN, SetOp: vm.TimeInit, Imm: vm.TimePatternVal(timepattern.Set{pat})})
	p.advance()
	for p.cur.Kind == token.OR {
		p.advance()
		pat, ok = p.currentTimePattern()
		if !ok {
			return p.fail("invalid time pattern %q", p.cur.Lexeme)
		}
		p.emit(vm.Instruction{Op: vm.TIME_PATTERN, SetOp: vm.TimeUnion, Imm: vm.TimePatternVal(timepattern.Set{pat})})
		p.advance()
	}
	return true
}

// rvalueConverting compiles a color register's rvalue, converting a
// literal number at parse time when it's currently logical — the spec's
// "numeric literal operands for color registers are converted at parse
// time if UNIT_MODE is currently logical; otherwise emitted raw" rule.
// Non-literal rvalues (variables, expressions, other registers) are left
// for the VM to convert at runtime.
func (p *Parser) rvalueConverting(reg vm.Register) bool {
	u := registerUnitOf(reg)
	if p.cur.Kind == token.NUMBER && units.RequiresConversion(u) && p.compileTimeMode != "RAW" {
		v, err := parseNumber(p.cur.Lexeme)
		if err != nil {
			return p.fail("invalid number %q", p.cur.Lexeme)
		}
		raw := units.AsRaw(u, v.AsFloat())
		p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: vm.RegTarget(reg), Imm: floatOrInt(v, raw)})
		p.advance()
		return true
	}
	return p.rvalue(vm.RegTarget(reg))
}

func registerUnitOf(reg vm.Register) units.Reg {
	switch reg {
	case vm.HUE:
		return units.Hue
	case vm.SATURATION:
		return units.Saturation
	case vm.BRIGHTNESS:
		return units.Brightness
	case vm.KELVIN:
		return units.Kelvin
	case vm.DURATION:
		return units.Duration
	case vm.TIME:
		return units.Time
	default:
		return units.Other
	}
}

// floatOrInt rounds a converted raw unit to an int Value when the source
// literal was an int, matching scenario 6's expectation that logical
// integer color literals compile to integer MOVEQ immediates.
func floatOrInt(src vm.Value, raw float64) vm.Value {
	if src.Kind == vm.KindInt {
		return vm.IntVal(int64(raw))
	}
	return vm.FloatVal(raw)
}

// ---- rvalue ----

// isRvalueStart reports whether the current token can begin an rvalue.
func (p *Parser) isRvalueStart() bool {
	switch p.cur.Kind {
	case token.NUMBER, token.STRING, token.NAME, token.EXPRESSION, token.REGISTER, token.TIME_PATTERN:
		return true
	default:
		return false
	}
}

// rvalue consumes the current token as a value-producing term and routes
// its result to dest (a register or a named variable): a compile-time
// constant becomes MOVEQ, a known variable becomes MOVE, an EXPRESSION
// compiles and POPs into dest, and a bare register name becomes MOVE from
// that register.
func (p *Parser) rvalue(dest vm.Target) bool {
	if v, ok := p.currentConstant(); ok {
		p.emit(vm.Instruction{Op: vm.MOVEQ, Dest: dest, Imm: v})
		p.advance()
		return true
	}
	if p.cur.Kind == token.NAME {
		if p.syms.HasSymbolTyped(p.cur.Lexeme, symbols.KindVar) {
			p.emit(vm.Instruction{Op: vm.MOVE, Dest: dest, Src: vm.VarTarget(p.cur.Lexeme)})
			p.advance()
			return true
		}
	}
	if p.cur.Kind == token.EXPRESSION {
		src := p.cur.Lexeme
		line := p.cur.Line
		if err := compileExpression(src, line, p.gen, p.syms); err != nil {
			p.err = newSyntaxError(line, "%s", err)
			return false
		}
		p.emit(vm.Instruction{Op: vm.POP, Dest: dest})
		p.advance()
		return true
	}
	if p.cur.Kind != token.REGISTER {
		return p.fail("cannot use %q as a value", p.cur.Lexeme)
	}
	reg, ok := registerByName[p.cur.Lexeme]
	if !ok {
		return p.fail("unknown register %q", p.cur.Lexeme)
	}
	p.emit(vm.Instruction{Op: vm.MOVE, Dest: dest, Src: vm.RegTarget(reg)})
	p.advance()
	return true
}

// currentConstant interprets the current token as a compile-time constant:
// a literal (number, string, time pattern), or a previously defined macro.
// It returns ok=false — not an error — when the token isn't constant-like,
// so callers can fall through to variable/expression/register handling.
func (p *Parser) currentConstant() (vm.Value, bool) {
	switch p.cur.Kind {
	case token.NUMBER:
		v, err := parseNumber(p.cur.Lexeme)
		if err != nil {
			return vm.Value{}, false
		}
		return v, true
	case token.STRING:
		return vm.StringVal(p.cur.Lexeme), true
	case token.TIME_PATTERN:
		pat, err := timepattern.Parse(p.cur.Lexeme)
		if err != nil {
			return vm.Value{}, false
		}
		return vm.TimePatternVal(timepattern.Set{pat}), true
	case token.NAME:
		return p.syms.GetMacro(p.cur.Lexeme)
	default:
		return vm.Value{}, false
	}
}

func (p *Parser) currentTimePattern() (timepattern.Pattern, bool) {
	if p.cur.Kind == token.TIME_PATTERN {
		pat, err := timepattern.Parse(p.cur.Lexeme)
		return pat, err == nil
	}
	if p.cur.Kind == token.NAME {
		v, ok := p.syms.GetMacro(p.cur.Lexeme)
		if ok && v.Kind == vm.KindTimePattern && len(v.Time) > 0 {
			return v.Time[0], true
		}
	}
	return timepattern.Pattern{}, false
}

func parseNumber(text string) (vm.Value, error) {
	if !strings.Contains(text, ".") {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return vm.IntVal(n), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return vm.Value{}, fmt.Errorf("invalid number %q", text)
	}
	return vm.FloatVal(f), nil
}
