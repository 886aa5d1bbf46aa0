package settings_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/EmonFan/bardolph/internal/settings"
)

func TestLoadOverridesOnlyNamedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "use_fakes: true\nrefresh_sleep_time: 1s\n")

	got, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if !got.UseFakes {
		t.Error("UseFakes = false, want true from the file")
	}
	if got.RefreshSleepTime != time.Second {
		t.Errorf("RefreshSleepTime = %s, want 1s", got.RefreshSleepTime)
	}
	want := settings.Defaults()
	if got.FailureSleepTime != want.FailureSleepTime {
		t.Errorf("FailureSleepTime = %s, want default %s (unset in file)", got.FailureSleepTime, want.FailureSleepTime)
	}
	if got.LightGCTime != want.LightGCTime {
		t.Errorf("LightGCTime = %s, want default %s (unset in file)", got.LightGCTime, want.LightGCTime)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := settings.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load(missing file) succeeded, want an error")
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "light_gc_time: not-a-duration\n")
	if _, err := settings.Load(path); err == nil {
		t.Fatal("Load(malformed duration) succeeded, want an error")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %s", path, err)
	}
}
