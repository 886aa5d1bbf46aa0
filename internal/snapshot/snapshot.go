// Package snapshot exports a lamp set's current state as a script fragment
// — one "set" command per lamp reproducing its color, plus a power line —
// so a later run can restore the lights to where they were. It only ever
// reads through Source and lampset.Lamp, never writes.
package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/EmonFan/bardolph/internal/lampset"
)

// Source is the narrow enumeration extension a snapshot needs.
// lampset.Set itself has no "list everything" operation — the VM only ever
// looks lamps up by name/group/location, so that capability lives here
// instead of widening the interface every other collaborator depends on.
type Source interface {
	AllLamps() []lampset.Lamp
}

// Export renders the canonical snapshot format: a leading "units raw" so
// the HSBK values that follow are read back exactly as captured, then per
// lamp, the four color registers, a zero duration, a "set" targeting that
// lamp by name, and a matching power line — ordered by name for a stable
// diff across runs against the same lamp set.
func Export(src Source) string {
	lamps := src.AllLamps()
	if len(lamps) == 0 {
		return ""
	}
	sort.Slice(lamps, func(i, j int) bool { return lamps[i].Name() < lamps[j].Name() })

	var b strings.Builder
	b.WriteString("units raw\n")
	for _, l := range lamps {
		c := l.GetColor()
		fmt.Fprintf(&b, "hue %d\n", c.H)
		fmt.Fprintf(&b, "saturation %d\n", c.S)
		fmt.Fprintf(&b, "brightness %d\n", c.B)
		fmt.Fprintf(&b, "kelvin %d\n", c.K)
		fmt.Fprintf(&b, "duration 0\n")
		fmt.Fprintf(&b, "set %q\n", l.Name())
		if l.GetPower() != 0 {
			fmt.Fprintf(&b, "on %q\n", l.Name())
		} else {
			fmt.Fprintf(&b, "off %q\n", l.Name())
		}
	}
	return b.String()
}
