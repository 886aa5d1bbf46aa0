package vm_test

import (
	"context"
	"testing"

	"github.com/EmonFan/bardolph/internal/clock"
	"github.com/EmonFan/bardolph/internal/lampset"
	"github.com/EmonFan/bardolph/internal/parser"
	"github.com/EmonFan/bardolph/internal/vm"
)

// TestLogicalColorLiteralsConvertAtCompileTime reproduces the literal
// scenario trace of a "hue 180 / saturation 20 / brightness 40" logical
// command compiling straight to raw MOVEQ immediates (32768/13107/26214),
// with kelvin passed through untouched.
func TestLogicalColorLiteralsConvertAtCompileTime(t *testing.T) {
	const script = `
units logical
hue 180
saturation 20
brightness 40
kelvin 2700
duration 0
set "test"
`
	gen, err := parser.Compile(script)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}

	lamp := lampset.NewFakeLamp("test")
	set := lampset.NewFakeSet(lamp)
	env := vm.Env{Lamps: set, Clock: clock.NewFake()}

	m := vm.NewMachine(gen.Program(), env)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %s", err)
	}

	want := lampset.Color{H: 32768, S: 13107, B: 26214, K: 2700}
	if lamp.Color != want {
		t.Errorf("lamp.Color = %+v, want %+v", lamp.Color, want)
	}
	if len(lamp.Calls) != 1 || lamp.Calls[0].Method != "set_color" {
		t.Fatalf("lamp.Calls = %+v, want a single set_color call", lamp.Calls)
	}
	if lamp.Calls[0].Millis != 0 {
		t.Errorf("duration = %d ms, want 0", lamp.Calls[0].Millis)
	}
}

// TestRawColorLiteralsPassThrough checks the companion case: under "units
// raw", the same numeric literals land in the registers unconverted.
func TestRawColorLiteralsPassThrough(t *testing.T) {
	const script = `
units raw
hue 32768
saturation 13107
brightness 26214
kelvin 2700
duration 0
set "test"
`
	gen, err := parser.Compile(script)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}

	lamp := lampset.NewFakeLamp("test")
	set := lampset.NewFakeSet(lamp)
	env := vm.Env{Lamps: set, Clock: clock.NewFake()}

	m := vm.NewMachine(gen.Program(), env)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %s", err)
	}

	want := lampset.Color{H: 32768, S: 13107, B: 26214, K: 2700}
	if lamp.Color != want {
		t.Errorf("lamp.Color = %+v, want %+v", lamp.Color, want)
	}
}

// TestGroupBroadcastUnknownGroupWarns checks that acting on an unknown group
// is a logged no-op, not a fatal error — the runtime-error-is-non-fatal
// contract for unknown-group-or-location.
func TestGroupBroadcastUnknownGroupWarns(t *testing.T) {
	const script = `
units raw
hue 0
saturation 0
brightness 0
kelvin 0
duration 0
set group "no-such-group"
`
	gen, err := parser.Compile(script)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}

	set := lampset.NewFakeSet(lampset.NewFakeLamp("test"))
	env := vm.Env{Lamps: set, Clock: clock.NewFake()}

	m := vm.NewMachine(gen.Program(), env)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %s", err)
	}
}
