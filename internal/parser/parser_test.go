package parser_test

import (
	"strings"
	"testing"

	"github.com/EmonFan/bardolph/internal/parser"
	"github.com/EmonFan/bardolph/internal/vm"
)

func TestCompileRoutineDefinitionAndCall(t *testing.T) {
	const script = `
define warm_white with k
    kelvin k
    set "test"

warm_white 2700
`
	gen, err := parser.Compile(script)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	prog := gen.Program()
	if _, ok := prog.Routines["warm_white"]; !ok {
		t.Fatalf("Routines = %v, want warm_white bound", prog.Routines)
	}

	var sawJSR, sawReturn bool
	for _, ins := range prog.Code {
		switch ins.Op {
		case vm.JSR:
			sawJSR = true
		case vm.RETURN:
			sawReturn = true
		}
	}
	if !sawJSR {
		t.Error("expected a JSR instruction calling warm_white")
	}
	if !sawReturn {
		t.Error("expected a RETURN instruction ending the routine body")
	}
}

func TestCompileIfElse(t *testing.T) {
	const script = `
assign x 1
if {x = 1}
    set "test"
else
    off "test"
`
	gen, err := parser.Compile(script)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	var sawJump bool
	for _, ins := range gen.Program().Code {
		if ins.Op == vm.JUMP {
			sawJump = true
		}
	}
	if !sawJump {
		t.Error("expected at least one JUMP instruction from the if/else")
	}
}

func TestCompileRepeatCycleAndRange(t *testing.T) {
	const script = `
repeat cycle
    set "test"
    breakpoint

repeat from 1 to 3
    set "test"
`
	gen, err := parser.Compile(script)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	var loops, endLoops int
	for _, ins := range gen.Program().Code {
		if ins.Op == vm.LOOP {
			loops++
		}
		if ins.Op == vm.END_LOOP {
			endLoops++
		}
	}
	if loops != 2 || endLoops != 2 {
		t.Errorf("loops=%d endLoops=%d, want 2 and 2", loops, endLoops)
	}
}

func TestCompileDuplicateRoutineFails(t *testing.T) {
	const script = `
define twice with n
    set "test"

define twice with n
    set "test"
`
	if _, err := parser.Compile(script); err == nil {
		t.Fatal("Compile succeeded, want duplicate routine error")
	} else if !strings.Contains(err.Error(), "twice") {
		t.Errorf("error = %q, want it to mention the duplicate name", err)
	}
}

func TestCompileUnknownRoutineCallFails(t *testing.T) {
	const script = `nonexistent_routine`
	if _, err := parser.Compile(script); err == nil {
		t.Fatal("Compile succeeded, want unknown routine error")
	}
}

func TestCompileGroupAndZoneOperands(t *testing.T) {
	const script = `
units raw
hue 0
saturation 0
brightness 0
kelvin 0
duration 0
set group "living"
set "strip" zone 0 3
`
	gen, err := parser.Compile(script)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	if len(gen.Program().Code) == 0 {
		t.Fatal("expected a non-empty instruction stream")
	}
}
