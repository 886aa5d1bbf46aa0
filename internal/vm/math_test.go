package vm_test

import (
	"testing"

	"github.com/EmonFan/bardolph/internal/vm"
)

func newMath() *vm.Math {
	return vm.NewMath(vm.NewRegisters(), vm.NewCallStack())
}

// popResult pops the top of the value stack into RESULT and reads it back,
// the same MOVE-free path the parser's POP instruction exercises.
func popResult(t *testing.T, m *vm.Math) vm.Value {
	t.Helper()
	if err := m.Pop(vm.RegTarget(vm.RESULT)); err != nil {
		t.Fatalf("Pop: %s", err)
	}
	v, err := m.Resolve(vm.RegTarget(vm.RESULT))
	if err != nil {
		t.Fatalf("Resolve: %s", err)
	}
	return v
}

func TestApplyArithmeticKeepsIntWhenBothOperandsAreInt(t *testing.T) {
	m := newMath()
	m.PushImmediate(vm.IntVal(7))
	m.PushImmediate(vm.IntVal(3))
	if err := m.Apply(vm.OpAdd); err != nil {
		t.Fatalf("Apply(OpAdd): %s", err)
	}
	got := popResult(t, m)
	if got.Kind != vm.KindInt || got.AsInt() != 10 {
		t.Errorf("7+3 = %+v, want an int 10", got)
	}
}

func TestApplyArithmeticPromotesToFloat(t *testing.T) {
	m := newMath()
	m.PushImmediate(vm.IntVal(7))
	m.PushImmediate(vm.FloatVal(0.5))
	if err := m.Apply(vm.OpAdd); err != nil {
		t.Fatalf("Apply(OpAdd): %s", err)
	}
	got := popResult(t, m)
	if got.Kind != vm.KindFloat || got.AsFloat() != 7.5 {
		t.Errorf("7+0.5 = %+v, want a float 7.5", got)
	}
}

func TestApplyDivisionByZeroErrors(t *testing.T) {
	m := newMath()
	m.PushImmediate(vm.IntVal(1))
	m.PushImmediate(vm.IntVal(0))
	if err := m.Apply(vm.OpDiv); err == nil {
		t.Fatal("Apply(OpDiv) by zero succeeded, want an error")
	}
}

func TestApplyComparisonAndLogic(t *testing.T) {
	m := newMath()
	m.PushImmediate(vm.IntVal(2))
	m.PushImmediate(vm.IntVal(3))
	if err := m.Apply(vm.OpLt); err != nil {
		t.Fatalf("Apply(OpLt): %s", err)
	}
	got := popResult(t, m)
	if got.Kind != vm.KindBool || !got.Bool {
		t.Errorf("2 < 3 = %+v, want true", got)
	}

	m.PushImmediate(vm.BoolVal(true))
	m.PushImmediate(vm.BoolVal(false))
	if err := m.Apply(vm.OpAnd); err != nil {
		t.Fatalf("Apply(OpAnd): %s", err)
	}
	got = popResult(t, m)
	if got.Bool {
		t.Error("true and false = true, want false")
	}
}

func TestApplyUnaryNegateAndNot(t *testing.T) {
	m := newMath()
	m.PushImmediate(vm.IntVal(5))
	if err := m.Apply(vm.OpNeg); err != nil {
		t.Fatalf("Apply(OpNeg): %s", err)
	}
	got := popResult(t, m)
	if got.AsInt() != -5 {
		t.Errorf("neg(5) = %+v, want -5", got)
	}

	m.PushImmediate(vm.BoolVal(true))
	if err := m.Apply(vm.OpNot); err != nil {
		t.Fatalf("Apply(OpNot): %s", err)
	}
	got = popResult(t, m)
	if got.Bool {
		t.Error("not(true) = true, want false")
	}
}

func TestStackUnderflowErrors(t *testing.T) {
	m := newMath()
	if err := m.Apply(vm.OpAdd); err == nil {
		t.Fatal("Apply(OpAdd) on an empty stack succeeded, want an error")
	}
}
