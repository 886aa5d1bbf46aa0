package symbols_test

import (
	"testing"

	"github.com/EmonFan/bardolph/internal/symbols"
	"github.com/EmonFan/bardolph/internal/vm"
)

func TestMacroRoundTrip(t *testing.T) {
	tbl := symbols.New()
	tbl.AddGlobal("brightish", vm.IntVal(80))
	v, ok := tbl.GetMacro("brightish")
	if !ok || v.AsFloat() != 80 {
		t.Fatalf("GetMacro(brightish) = %+v, %v, want 80, true", v, ok)
	}
	if _, ok := tbl.GetMacro("nope"); ok {
		t.Error("GetMacro(nope) found a macro that was never added")
	}
}

func TestAddRoutineRejectsDuplicateName(t *testing.T) {
	tbl := symbols.New()
	if err := tbl.AddRoutine(symbols.Routine{Name: "r", Address: 0}); err != nil {
		t.Fatalf("first AddRoutine: %s", err)
	}
	if err := tbl.AddRoutine(symbols.Routine{Name: "r", Address: 10}); err == nil {
		t.Fatal("second AddRoutine with the same name succeeded, want an error")
	}
}

func TestAddParamRejectsDuplicateWithinScope(t *testing.T) {
	tbl := symbols.New()
	tbl.Push()
	defer tbl.Pop()
	if err := tbl.AddParam("x"); err != nil {
		t.Fatalf("first AddParam: %s", err)
	}
	if err := tbl.AddParam("x"); err == nil {
		t.Fatal("second AddParam with the same name succeeded, want an error")
	}
}

func TestPopIsolatesScopes(t *testing.T) {
	tbl := symbols.New()
	tbl.Push()
	tbl.AddVariable("local")
	if !tbl.HasSymbolTyped("local", symbols.KindVar) {
		t.Fatal("HasSymbolTyped(local) = false inside the scope that declared it")
	}
	tbl.Pop()
	if tbl.HasSymbolTyped("local", symbols.KindVar) {
		t.Error("HasSymbolTyped(local) = true after Pop, want the scope gone")
	}
}

func TestRoutineNestingTracksDepth(t *testing.T) {
	tbl := symbols.New()
	if tbl.InRoutine() {
		t.Fatal("InRoutine() = true before any EnterRoutine")
	}
	tbl.EnterRoutine()
	if !tbl.InRoutine() {
		t.Error("InRoutine() = false after EnterRoutine")
	}
	tbl.ExitRoutine()
	if tbl.InRoutine() {
		t.Error("InRoutine() = true after matching ExitRoutine")
	}
}
