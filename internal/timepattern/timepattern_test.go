package timepattern

import "testing"

func TestParseAndString(t *testing.T) {
	cases := []string{"9:30", "09:30", "*:30", "9:*", "*:*", "1*:0*"}
	for _, c := range cases {
		p, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q) error: %s", c, err)
		}
		_ = p.String()
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, c := range []string{"930", "9:3a", "25:00:00", ""} {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", c)
		}
	}
}

func TestMatches(t *testing.T) {
	p, err := Parse("9:*")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Matches(9, 0) || !p.Matches(9, 59) {
		t.Error("9:* should match any minute in hour 9")
	}
	if p.Matches(10, 0) {
		t.Error("9:* should not match hour 10")
	}
}

func TestMatchesLeadingWildcardDigit(t *testing.T) {
	p, err := Parse("*9:00")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Matches(9, 0) || !p.Matches(19, 0) {
		t.Error("*9:00 should match both 09:00 and 19:00")
	}
	if p.Matches(10, 0) {
		t.Error("*9:00 should not match 10:00")
	}
}

func TestSetUnion(t *testing.T) {
	a, _ := Parse("9:00")
	b, _ := Parse("17:00")
	set := Union(Union(Set{}, a), b)
	if !set.Matches(9, 0) || !set.Matches(17, 0) {
		t.Error("union set should match either member pattern")
	}
	if set.Matches(12, 0) {
		t.Error("union set should not match an hour neither member covers")
	}
}
