package vm

import "github.com/EmonFan/bardolph/internal/units"

// Registers holds the current value of every machine register. There is no
// reflection-based "set register by name" path: Get/Set are an explicit
// switch over the closed Register enumeration.
type Registers struct {
	slots [numRegisters]Value
	mode  UnitMode
}

// NewRegisters returns a fresh register file with UNIT_MODE initialized to
// LOGICAL, POWER false, OPERAND set to OperandNone, and every other register
// NONE.
func NewRegisters() *Registers {
	r := &Registers{mode: LOGICAL}
	r.slots[UNIT_MODE] = StringVal("LOGICAL")
	r.slots[LAST_ZONE] = NoneVal()
	r.slots[NAME] = NoneVal()
	r.slots[POWER] = BoolVal(false)
	r.slots[OPERAND] = IntVal(int64(OperandNone))
	return r
}

func (r *Registers) Get(reg Register) Value { return r.slots[reg] }

func (r *Registers) Set(reg Register, v Value) { r.slots[reg] = v }

func (r *Registers) Mode() UnitMode { return r.mode }

// SetUnitMode transitions UNIT_MODE, re-interpreting HUE/SATURATION/
// BRIGHTNESS through the unit table when the mode actually changes.
// KELVIN and DURATION are never touched by a transition, per the spec.
func (r *Registers) SetUnitMode(newMode UnitMode) {
	if newMode == r.mode {
		return
	}
	for _, reg := range ColorRegisters {
		v := r.slots[reg]
		if !v.IsNumeric() {
			continue
		}
		u := registerUnit(reg)
		var converted float64
		if newMode == RAWMODE {
			converted = units.AsRaw(u, v.AsFloat())
		} else {
			converted = units.AsLogical(u, v.AsFloat())
		}
		r.slots[reg] = FloatVal(converted)
	}
	r.mode = newMode
	if newMode == RAWMODE {
		r.slots[UNIT_MODE] = StringVal("RAW")
	} else {
		r.slots[UNIT_MODE] = StringVal("LOGICAL")
	}
}

func registerUnit(reg Register) units.Reg {
	switch reg {
	case HUE:
		return units.Hue
	case SATURATION:
		return units.Saturation
	case BRIGHTNESS:
		return units.Brightness
	case KELVIN:
		return units.Kelvin
	case DURATION:
		return units.Duration
	case TIME:
		return units.Time
	default:
		return units.Other
	}
}

// RawOf forces a register's current value to raw units regardless of the
// current UNIT_MODE, used by COLOR/POWER which always act on raw values.
func (r *Registers) RawOf(reg Register) float64 {
	v := r.slots[reg]
	if !v.IsNumeric() {
		return 0
	}
	if r.mode == RAWMODE {
		return v.AsFloat()
	}
	return units.AsRaw(registerUnit(reg), v.AsFloat())
}

// SetFromRaw writes a raw device-unit reading into reg, converting it to
// logical units first when UNIT_MODE is currently LOGICAL — the inverse of
// RawOf, used by GET_COLOR to bring a lamp's reported color back into
// whatever unit mode the script is currently running in.
func (r *Registers) SetFromRaw(reg Register, raw float64) {
	if r.mode == LOGICAL {
		r.slots[reg] = FloatVal(units.AsLogical(registerUnit(reg), raw))
		return
	}
	r.slots[reg] = FloatVal(raw)
}
