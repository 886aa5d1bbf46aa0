package units

import "testing"

func TestAsRawHue(t *testing.T) {
	cases := []struct {
		logical float64
		want    float64
	}{
		{0, 0},
		{180, 32768},
		{360, 0},
		{-10, 63716}, // wraps into [0, 65536)
	}
	for _, c := range cases {
		if got := AsRaw(Hue, c.logical); got != c.want {
			t.Errorf("AsRaw(Hue, %g) = %g, want %g", c.logical, got, c.want)
		}
	}
}

func TestAsRawSaturationBrightness(t *testing.T) {
	if got := AsRaw(Saturation, 20); got != 13107 {
		t.Errorf("AsRaw(Saturation, 20) = %g, want 13107", got)
	}
	if got := AsRaw(Brightness, 40); got != 26214 {
		t.Errorf("AsRaw(Brightness, 40) = %g, want 26214", got)
	}
}

func TestAsRawDurationAndTimeInSeconds(t *testing.T) {
	if got := AsRaw(Duration, 2.5); got != 2500 {
		t.Errorf("AsRaw(Duration, 2.5) = %g, want 2500", got)
	}
	if got := AsRaw(Time, 1); got != 1000 {
		t.Errorf("AsRaw(Time, 1) = %g, want 1000", got)
	}
}

func TestKelvinAndOtherUntouched(t *testing.T) {
	if got := AsRaw(Kelvin, 2700); got != 2700 {
		t.Errorf("AsRaw(Kelvin, 2700) = %g, want 2700 (untouched)", got)
	}
	if got := AsLogical(Kelvin, 2700); got != 2700 {
		t.Errorf("AsLogical(Kelvin, 2700) = %g, want 2700 (untouched)", got)
	}
	if RequiresConversion(Kelvin) {
		t.Error("RequiresConversion(Kelvin) = true, want false")
	}
	if RequiresConversion(Other) {
		t.Error("RequiresConversion(Other) = true, want false")
	}
}

// TestRoundTrip checks the invariant that converting logical -> raw -> logical
// stays within +/-1 of the original value, and within +/-1 modulo 360 for hue.
func TestRoundTrip(t *testing.T) {
	regs := []Reg{Hue, Saturation, Brightness, Duration, Time}
	samples := []float64{0, 1, 33, 90, 180, 270, 359.5}
	for _, r := range regs {
		for _, v := range samples {
			raw := AsRaw(r, v)
			back := AsLogical(r, raw)
			diff := back - v
			if r == Hue {
				diff = wrapHueDiff(diff)
			}
			if diff < -1.01 || diff > 1.01 {
				t.Errorf("round trip reg=%v logical=%g -> raw=%g -> logical=%g, diff=%g exceeds +/-1", r, v, raw, back, diff)
			}
		}
	}
}

func wrapHueDiff(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}
