package vm

import (
	"fmt"
	"math"
)

// Math evaluates postfix arithmetic/logical ops over the value stack that
// lives in CallStack, so it shares unwind-on-return semantics with frames.
// It is the execution counterpart of the expression parser (component E),
// which only emits the PUSHQ/PUSH/OP instructions Math here carries out.
type Math struct {
	regs  *Registers
	stack *CallStack
}

// NewMath binds a Math evaluator to a register file and call stack.
func NewMath(regs *Registers, stack *CallStack) *Math {
	return &Math{regs: regs, stack: stack}
}

// PushImmediate pushes a literal value (PUSHQ).
func (m *Math) PushImmediate(v Value) {
	m.stack.PushValue(v)
}

// Push pushes from a Target (PUSH), dispatching to register or variable.
func (m *Math) Push(t Target) error {
	if t.IsReg {
		m.PushRegister(t.Reg)
		return nil
	}
	return m.PushVariable(t.Name)
}

// Pop stores the top of the value stack into a Target (POP).
func (m *Math) Pop(t Target) error {
	if t.IsReg {
		return m.PopIntoRegister(t.Reg)
	}
	return m.PopIntoVariable(t.Name)
}

// Store writes v into a Target (MOVE/MOVEQ destination). Callers that need
// UNIT_MODE's special re-interpretation semantics handle that register
// directly rather than through Store.
func (m *Math) Store(t Target, v Value) {
	if t.IsReg {
		m.regs.Set(t.Reg, v)
		return
	}
	m.stack.PutVariable(t.Name, v)
}

// Resolve reads a Target's current value without touching the value stack,
// used by MOVE and by PARAM's call-site argument resolution.
func (m *Math) Resolve(t Target) (Value, error) {
	if t.IsReg {
		return m.regs.Get(t.Reg), nil
	}
	v, ok := m.stack.GetVariable(t.Name)
	if !ok {
		return Value{}, fmt.Errorf("unknown variable %q", t.Name)
	}
	return v, nil
}

// PushRegister pushes a register's current value (PUSH reg).
func (m *Math) PushRegister(reg Register) {
	m.stack.PushValue(m.regs.Get(reg))
}

// PushVariable pushes a named variable's value (PUSH name), failing if the
// name isn't bound in the current frame.
func (m *Math) PushVariable(name string) error {
	v, ok := m.stack.GetVariable(name)
	if !ok {
		return fmt.Errorf("unknown variable %q", name)
	}
	m.stack.PushValue(v)
	return nil
}

// PopIntoRegister stores the top of the value stack into a register (POP
// reg).
func (m *Math) PopIntoRegister(reg Register) error {
	v, ok := m.stack.PopValue()
	if !ok {
		return fmt.Errorf("value stack underflow")
	}
	m.regs.Set(reg, v)
	return nil
}

// PopIntoVariable stores the top of the value stack into a named variable
// in the current frame (POP name).
func (m *Math) PopIntoVariable(name string) error {
	v, ok := m.stack.PopValue()
	if !ok {
		return fmt.Errorf("value stack underflow")
	}
	m.stack.PutVariable(name, v)
	return nil
}

// Apply pops the operands an operator needs, applies it, and pushes the
// result (OP operator). Unary operators (NEG, NOT) take one operand; every
// other operator takes two.
func (m *Math) Apply(op Operator) error {
	if op == OpNeg || op == OpNot {
		a, ok := m.stack.PopValue()
		if !ok {
			return fmt.Errorf("value stack underflow")
		}
		result, err := applyUnary(op, a)
		if err != nil {
			return err
		}
		m.stack.PushValue(result)
		return nil
	}

	b, ok := m.stack.PopValue()
	if !ok {
		return fmt.Errorf("value stack underflow")
	}
	a, ok := m.stack.PopValue()
	if !ok {
		return fmt.Errorf("value stack underflow")
	}
	result, err := applyBinary(op, a, b)
	if err != nil {
		return err
	}
	m.stack.PushValue(result)
	return nil
}

func applyUnary(op Operator, a Value) (Value, error) {
	switch op {
	case OpNeg:
		if !a.IsNumeric() {
			return Value{}, fmt.Errorf("cannot negate a non-numeric value")
		}
		return negate(a), nil
	case OpNot:
		b, err := asBool(a)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(!b), nil
	default:
		return Value{}, fmt.Errorf("not a unary operator")
	}
}

func negate(a Value) Value {
	if a.Kind == KindInt {
		return IntVal(-a.AsInt())
	}
	return FloatVal(-a.AsFloat())
}

func applyBinary(op Operator, a, b Value) (Value, error) {
	switch op {
	case OpOr, OpAnd:
		av, err := asBool(a)
		if err != nil {
			return Value{}, err
		}
		bv, err := asBool(b)
		if err != nil {
			return Value{}, err
		}
		if op == OpOr {
			return BoolVal(av || bv), nil
		}
		return BoolVal(av && bv), nil
	case OpEq, OpNe:
		eq, err := valuesEqual(a, b)
		if err != nil {
			return Value{}, err
		}
		if op == OpEq {
			return BoolVal(eq), nil
		}
		return BoolVal(!eq), nil
	case OpLt, OpLe, OpGt, OpGe:
		return compare(op, a, b)
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return arithmetic(op, a, b)
	default:
		return Value{}, fmt.Errorf("unknown operator")
	}
}

func asBool(v Value) (bool, error) {
	switch v.Kind {
	case KindBool:
		return v.Bool, nil
	case KindInt, KindFloat:
		return v.AsFloat() != 0, nil
	default:
		return false, fmt.Errorf("value of kind %v is not boolean-convertible", v.Kind)
	}
}

func valuesEqual(a, b Value) (bool, error) {
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat() == b.AsFloat(), nil
	}
	if a.Kind != b.Kind {
		return false, nil
	}
	switch a.Kind {
	case KindString:
		return a.Str == b.Str, nil
	case KindBool:
		return a.Bool == b.Bool, nil
	case KindNone:
		return true, nil
	default:
		return false, fmt.Errorf("values of kind %v are not comparable", a.Kind)
	}
}

func compare(op Operator, a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		if a.Kind == KindString && b.Kind == KindString {
			return BoolVal(stringCompare(op, a.Str, b.Str)), nil
		}
		return Value{}, fmt.Errorf("cannot compare values of kind %v and %v", a.Kind, b.Kind)
	}
	x, y := a.AsFloat(), b.AsFloat()
	switch op {
	case OpLt:
		return BoolVal(x < y), nil
	case OpLe:
		return BoolVal(x <= y), nil
	case OpGt:
		return BoolVal(x > y), nil
	default: // OpGe
		return BoolVal(x >= y), nil
	}
}

func stringCompare(op Operator, a, b string) bool {
	switch op {
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	default:
		return a >= b
	}
}

// arithmetic performs +, -, *, /, % in the numeric domain: the result is a
// float if either operand is a float, otherwise an int.
func arithmetic(op Operator, a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, fmt.Errorf("cannot apply arithmetic to non-numeric values")
	}
	bothInt := a.Kind == KindInt && b.Kind == KindInt
	x, y := a.AsFloat(), b.AsFloat()
	switch op {
	case OpAdd:
		return numeric(bothInt, x+y), nil
	case OpSub:
		return numeric(bothInt, x-y), nil
	case OpMul:
		return numeric(bothInt, x*y), nil
	case OpDiv:
		if y == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return numeric(bothInt, x/y), nil
	case OpMod:
		if y == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		if bothInt {
			return IntVal(a.AsInt() % b.AsInt()), nil
		}
		return FloatVal(math.Mod(x, y)), nil
	default:
		return Value{}, fmt.Errorf("unknown arithmetic operator")
	}
}

func numeric(asInt bool, v float64) Value {
	if asInt {
		return IntVal(int64(v))
	}
	return FloatVal(v)
}
