// Package settings loads the options the external collaborators around the
// core consume (discovery, clock sleep intervals, lamp garbage collection):
// not the compiler or VM themselves, which take an already-resolved Clock
// and lampset.Set.
package settings

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store holds the recognized settings named in the spec, with defaults
// matching a conservative real-device configuration.
type Store struct {
	UseFakes            bool          `yaml:"use_fakes"`
	SingleLightDiscover bool          `yaml:"single_light_discover"`
	RefreshSleepTime    time.Duration `yaml:"refresh_sleep_time"`
	FailureSleepTime    time.Duration `yaml:"failure_sleep_time"`
	LightGCTime         time.Duration `yaml:"light_gc_time"`
}

// Defaults returns the built-in settings used when no file is loaded.
func Defaults() *Store {
	return &Store{
		UseFakes:            false,
		SingleLightDiscover: false,
		RefreshSleepTime:    5 * time.Second,
		FailureSleepTime:    30 * time.Second,
		LightGCTime:         2 * time.Minute,
	}
}

// Load reads a YAML settings file, starting from Defaults() so a partial
// file only overrides what it mentions.
func Load(path string) (*Store, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// rawStore mirrors Store but with its durations as YAML-friendly strings
// ("5s", "2m") — yaml.v3 has no built-in support for time.Duration, unlike
// the JSON/text-based encoders elsewhere in the stack.
type rawStore struct {
	UseFakes            bool   `yaml:"use_fakes"`
	SingleLightDiscover bool   `yaml:"single_light_discover"`
	RefreshSleepTime    string `yaml:"refresh_sleep_time"`
	FailureSleepTime    string `yaml:"failure_sleep_time"`
	LightGCTime         string `yaml:"light_gc_time"`
}

// UnmarshalYAML lets Store's fields stay time.Duration typed for the rest of
// the codebase while the on-disk format stays a plain duration string.
func (s *Store) UnmarshalYAML(unmarshal func(any) error) error {
	raw := rawStore{
		UseFakes:            s.UseFakes,
		SingleLightDiscover: s.SingleLightDiscover,
		RefreshSleepTime:    s.RefreshSleepTime.String(),
		FailureSleepTime:    s.FailureSleepTime.String(),
		LightGCTime:         s.LightGCTime.String(),
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	s.UseFakes = raw.UseFakes
	s.SingleLightDiscover = raw.SingleLightDiscover
	var err error
	if s.RefreshSleepTime, err = parseDuration(raw.RefreshSleepTime); err != nil {
		return err
	}
	if s.FailureSleepTime, err = parseDuration(raw.FailureSleepTime); err != nil {
		return err
	}
	if s.LightGCTime, err = parseDuration(raw.LightGCTime); err != nil {
		return err
	}
	return nil
}

func parseDuration(text string) (time.Duration, error) {
	if text == "" {
		return 0, nil
	}
	return time.ParseDuration(text)
}
