package lampset

import "time"

// Call records one method invocation made against a FakeLamp, in the shape
// the spec's literal scenario traces use (e.g. "set_color([11,22,33,2500],
// 0)"), so tests can assert on exact call sequences.
type Call struct {
	Method string
	Color  Color
	Raw    uint16
	Start  int
	End    int
	Millis int
}

// FakeLamp is an in-memory, deterministic Lamp used by tests and by the
// --fake CLI mode. It records every mutating call it receives.
type FakeLamp struct {
	NameVal     string
	GroupVal    string
	LocationVal string
	MultizoneOn bool
	AgeVal      time.Duration

	Color Color
	Power uint16
	Zones []Color

	Calls []Call
}

// NewFakeLamp creates a single-zone fake lamp with the given name.
func NewFakeLamp(name string) *FakeLamp {
	return &FakeLamp{NameVal: name}
}

func (f *FakeLamp) Name() string         { return f.NameVal }
func (f *FakeLamp) Group() string        { return f.GroupVal }
func (f *FakeLamp) Location() string     { return f.LocationVal }
func (f *FakeLamp) Age() time.Duration   { return f.AgeVal }
func (f *FakeLamp) Multizone() bool      { return f.MultizoneOn }

func (f *FakeLamp) SetColor(c Color, durationMS int) {
	f.Color = c
	f.Calls = append(f.Calls, Call{Method: "set_color", Color: c, Millis: durationMS})
}

func (f *FakeLamp) SetPower(raw uint16, durationMS int) {
	f.Power = raw
	f.Calls = append(f.Calls, Call{Method: "set_power", Raw: raw, Millis: durationMS})
}

func (f *FakeLamp) SetZoneColor(start, endExclusive int, c Color, durationMS int) {
	for start >= len(f.Zones) || endExclusive > len(f.Zones) {
		f.Zones = append(f.Zones, Color{})
	}
	for i := start; i < endExclusive; i++ {
		f.Zones[i] = c
	}
	f.Calls = append(f.Calls, Call{Method: "set_zone_color", Color: c, Start: start, End: endExclusive, Millis: durationMS})
}

func (f *FakeLamp) GetColor() Color { return f.Color }

func (f *FakeLamp) GetColorZones(start, endExclusive int) []Color {
	if start < 0 || endExclusive > len(f.Zones) || start > endExclusive {
		return nil
	}
	out := make([]Color, endExclusive-start)
	copy(out, f.Zones[start:endExclusive])
	return out
}

func (f *FakeLamp) GetPower() uint16 { return f.Power }

// FakeSet is an in-memory Set keyed by lamp name; group/location lookups
// scan every lamp's GroupVal/LocationVal.
type FakeSet struct {
	Lamps   map[string]*FakeLamp
	AllCall []Call
}

// NewFakeSet builds a FakeSet from a list of lamps.
func NewFakeSet(lamps ...*FakeLamp) *FakeSet {
	s := &FakeSet{Lamps: map[string]*FakeLamp{}}
	for _, l := range lamps {
		s.Lamps[l.NameVal] = l
	}
	return s
}

func (s *FakeSet) Discover() bool { return true }

func (s *FakeSet) GetLight(name string) (Lamp, bool) {
	l, ok := s.Lamps[name]
	return l, ok
}

func (s *FakeSet) GetGroup(name string) ([]Lamp, bool) {
	var out []Lamp
	for _, l := range s.Lamps {
		if l.GroupVal == name {
			out = append(out, l)
		}
	}
	return out, len(out) > 0
}

func (s *FakeSet) GetLocation(name string) ([]Lamp, bool) {
	var out []Lamp
	for _, l := range s.Lamps {
		if l.LocationVal == name {
			out = append(out, l)
		}
	}
	return out, len(out) > 0
}

func (s *FakeSet) SetColor(c Color, durationMS int) {
	s.AllCall = append(s.AllCall, Call{Method: "set_color", Color: c, Millis: durationMS})
	for _, l := range s.Lamps {
		l.SetColor(c, durationMS)
	}
}

func (s *FakeSet) SetPower(raw uint16, durationMS int) {
	s.AllCall = append(s.AllCall, Call{Method: "set_power", Raw: raw, Millis: durationMS})
	for _, l := range s.Lamps {
		l.SetPower(raw, durationMS)
	}
}

// AllLamps enumerates every known lamp, for callers (the snapshot exporter)
// that need the whole set rather than a single name/group/location lookup.
func (s *FakeSet) AllLamps() []Lamp {
	out := make([]Lamp, 0, len(s.Lamps))
	for _, l := range s.Lamps {
		out = append(out, l)
	}
	return out
}
