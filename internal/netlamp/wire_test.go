package netlamp

import "testing"

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	want := message{
		cmd:        CmdSetColor,
		name:       "kitchen",
		group:      "downstairs",
		location:   "house",
		hue:        32768,
		sat:        13107,
		bri:        26214,
		kel:        2700,
		durationMS: 1500,
		powerRaw:   65535,
		start:      1,
		end:        4,
		multizone:  true,
		ageSeconds: 42,
		colors:     []uint32{1, 2, 3, 4, 5, 6, 7, 8},
	}

	got, err := decodeMessage(encodeMessage(want))
	if err != nil {
		t.Fatalf("decodeMessage: %s", err)
	}
	if got.cmd != want.cmd || got.name != want.name || got.group != want.group ||
		got.location != want.location || got.hue != want.hue || got.sat != want.sat ||
		got.bri != want.bri || got.kel != want.kel || got.durationMS != want.durationMS ||
		got.powerRaw != want.powerRaw || got.start != want.start || got.end != want.end ||
		got.multizone != want.multizone || got.ageSeconds != want.ageSeconds ||
		len(got.colors) != len(want.colors) {
		t.Fatalf("decodeMessage(encodeMessage(%+v)) = %+v, want matching fields", want, got)
	}
	for i := range want.colors {
		if got.colors[i] != want.colors[i] {
			t.Errorf("colors[%d] = %d, want %d", i, got.colors[i], want.colors[i])
		}
	}
}

func TestDecodeMessageSkipsUnknownFields(t *testing.T) {
	b := encodeMessage(message{cmd: CmdDiscover})
	b = appendVarintField(b, fieldColorWord+50, 7) // an unrecognized field number
	if _, err := decodeMessage(b); err != nil {
		t.Fatalf("decodeMessage with a trailing unknown field: %s", err)
	}
}

func TestColorConversionHelpers(t *testing.T) {
	c := colorFromMessage(message{hue: 1, sat: 2, bri: 3, kel: 4})
	if c.H != 1 || c.S != 2 || c.B != 3 || c.K != 4 {
		t.Errorf("colorFromMessage = %+v, want H:1 S:2 B:3 K:4", c)
	}
	packed := packColor(c)
	if len(packed) != 4 || packed[0] != 1 || packed[3] != 4 {
		t.Errorf("packColor(%+v) = %v, want [1 2 3 4]", c, packed)
	}
}
