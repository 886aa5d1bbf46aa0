package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EmonFan/bardolph/internal/clock"
	"github.com/EmonFan/bardolph/internal/lampset"
	"github.com/EmonFan/bardolph/internal/runner"
	"github.com/EmonFan/bardolph/internal/vm"
)

func TestLoadMissingFileWrapsIOError(t *testing.T) {
	_, err := runner.Load(filepath.Join(t.TempDir(), "missing.bardolph"), true)
	if err == nil || !strings.HasPrefix(err.Error(), "io-error:") {
		t.Fatalf("Load(missing) = %v, want an io-error-prefixed error", err)
	}
}

func TestRunCompilesAndExecutesAgainstFakeLamp(t *testing.T) {
	path := writeScript(t, `
units raw
hue 1
saturation 2
brightness 3
kelvin 4
duration 0
set "test"
`)
	lamp := lampset.NewFakeLamp("test")
	env := vm.Env{Lamps: lampset.NewFakeSet(lamp), Clock: clock.NewFake()}

	res := runner.Run(context.Background(), path, runner.Options{Env: env, Optimize: true})
	if res.Err != nil {
		t.Fatalf("Run: %s", res.Err)
	}
	if res.RunID == "" {
		t.Error("Run did not stamp a RunID")
	}
	if lamp.Color != (lampset.Color{H: 1, S: 2, B: 3, K: 4}) {
		t.Errorf("lamp.Color = %+v, want {1 2 3 4}", lamp.Color)
	}
}

func TestPoolRunAllPreservesOrder(t *testing.T) {
	paths := []string{
		writeScript(t, `set "a"`),
		writeScript(t, `set "b"`),
		writeScript(t, `set "c"`),
	}
	env := vm.Env{Lamps: lampset.NewFakeSet(
		lampset.NewFakeLamp("a"), lampset.NewFakeLamp("b"), lampset.NewFakeLamp("c"),
	), Clock: clock.NewFake()}

	pool := runner.NewPool(env, true, 2)
	results := pool.RunAll(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("results[%d].Path = %q, want %q", i, res.Path, paths[i])
		}
		if res.Err != nil {
			t.Errorf("results[%d].Err = %s", i, res.Err)
		}
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.bardolph")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing script: %s", err)
	}
	return path
}
