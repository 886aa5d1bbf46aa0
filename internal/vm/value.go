// Package vm implements the register machine that executes a compiled
// bardolph Program: registers, call stack, arithmetic, and opcode dispatch
// against an external lamp-set.
package vm

import (
	"fmt"
	"math"

	"github.com/EmonFan/bardolph/internal/timepattern"
)

// Kind tags the runtime type carried by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTimePattern
	KindRegister
)

// Value is a tagged union over the handful of runtime types bardolph needs:
// integer, float, string, boolean, time pattern, or a register reference.
// Arithmetic always promotes ints to floats as needed rather than carrying
// separate numeric paths.
type Value struct {
	Kind   Kind
	Num    float64
	Str    string
	Bool   bool
	Time   timepattern.Set
	Reg    Register
}

func NoneVal() Value                 { return Value{Kind: KindNone} }
func IntVal(v int64) Value           { return Value{Kind: KindInt, Num: float64(v)} }
func FloatVal(v float64) Value       { return Value{Kind: KindFloat, Num: v} }
func StringVal(v string) Value       { return Value{Kind: KindString, Str: v} }
func BoolVal(v bool) Value           { return Value{Kind: KindBool, Bool: v} }
func RegisterVal(r Register) Value   { return Value{Kind: KindRegister, Reg: r} }
func TimePatternVal(s timepattern.Set) Value {
	return Value{Kind: KindTimePattern, Time: s}
}

// IsNumeric reports whether the value participates in the numeric domain.
func (v Value) IsNumeric() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// AsFloat returns the value's numeric reading; callers must have checked
// IsNumeric first.
func (v Value) AsFloat() float64 { return v.Num }

// AsInt truncates the numeric reading toward zero.
func (v Value) AsInt() int64 { return int64(v.Num) }

// Round returns the value rounded to the nearest integer, as a new Value of
// the same numeric kind.
func (v Value) Round() Value {
	r := math.Round(v.Num)
	if v.Kind == KindInt {
		return IntVal(int64(r))
	}
	return FloatVal(r)
}

func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "none"
	case KindInt:
		return fmt.Sprintf("%d", int64(v.Num))
	case KindFloat:
		return fmt.Sprintf("%g", v.Num)
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindTimePattern:
		return "time-pattern"
	case KindRegister:
		return v.Reg.String()
	default:
		return "?"
	}
}
