// Package netlamp is a reference UDP transport implementing lampset.Set and
// lampset.Lamp over a hand-rolled wire codec built on protowire's
// varint/fixed32/bytes primitives. It exists for integration tests and for
// driving real hardware over the network; package vm and package parser
// never import it — they only ever see the lampset interfaces it satisfies.
package netlamp

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/EmonFan/bardolph/internal/lampset"
)

// Command is the verb carried by every datagram's field 1.
type Command uint64

const (
	CmdDiscover Command = iota + 1
	CmdCatalog  // server -> client reply to CmdDiscover, one per known lamp
	CmdSetColor
	CmdSetPower
	CmdSetZoneColor
	CmdGetColor
	CmdGetColorZones
	CmdGetPower
	CmdColorReply
	CmdPowerReply
	CmdZonesReply
)

const (
	fieldCommand protowire.Number = iota + 1
	fieldName
	fieldGroup
	fieldLocation
	fieldHue
	fieldSaturation
	fieldBrightness
	fieldKelvin
	fieldDurationMS
	fieldPowerRaw
	fieldStart
	fieldEnd
	fieldMultizone
	fieldAgeSeconds
	fieldColorWord
)

// message is the decoded form of one datagram: a flat bag of optional
// fields, since the codec has no schema beyond what each Command uses.
type message struct {
	cmd Command

	name     string
	group    string
	location string

	hue, sat, bri, kel uint32
	durationMS         uint64
	powerRaw           uint32
	start, end         uint64
	multizone          bool
	ageSeconds         uint64

	// colors packs zero or more HSBK quads, four uint32 words each, used by
	// CmdZonesReply.
	colors []uint32
}

func encodeMessage(m message) []byte {
	var b []byte
	b = appendVarintField(b, fieldCommand, uint64(m.cmd))
	if m.name != "" {
		b = appendBytesField(b, fieldName, m.name)
	}
	if m.group != "" {
		b = appendBytesField(b, fieldGroup, m.group)
	}
	if m.location != "" {
		b = appendBytesField(b, fieldLocation, m.location)
	}
	b = appendFixed32Field(b, fieldHue, m.hue)
	b = appendFixed32Field(b, fieldSaturation, m.sat)
	b = appendFixed32Field(b, fieldBrightness, m.bri)
	b = appendFixed32Field(b, fieldKelvin, m.kel)
	b = appendVarintField(b, fieldDurationMS, m.durationMS)
	b = appendFixed32Field(b, fieldPowerRaw, m.powerRaw)
	b = appendVarintField(b, fieldStart, m.start)
	b = appendVarintField(b, fieldEnd, m.end)
	mz := uint64(0)
	if m.multizone {
		mz = 1
	}
	b = appendVarintField(b, fieldMultizone, mz)
	b = appendVarintField(b, fieldAgeSeconds, m.ageSeconds)
	for _, c := range m.colors {
		b = appendFixed32Field(b, fieldColorWord, c)
	}
	return b
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendFixed32Field(b []byte, num protowire.Number, v uint32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, []byte(v))
}

func decodeMessage(b []byte) (message, error) {
	var m message
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return message{}, fmt.Errorf("netlamp: malformed tag")
		}
		b = b[n:]
		switch num {
		case fieldCommand:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed command field")
			}
			m.cmd = Command(v)
			b = b[n:]
		case fieldName:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed name field")
			}
			m.name = string(v)
			b = b[n:]
		case fieldGroup:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed group field")
			}
			m.group = string(v)
			b = b[n:]
		case fieldLocation:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed location field")
			}
			m.location = string(v)
			b = b[n:]
		case fieldHue:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed hue field")
			}
			m.hue = v
			b = b[n:]
		case fieldSaturation:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed saturation field")
			}
			m.sat = v
			b = b[n:]
		case fieldBrightness:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed brightness field")
			}
			m.bri = v
			b = b[n:]
		case fieldKelvin:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed kelvin field")
			}
			m.kel = v
			b = b[n:]
		case fieldDurationMS:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed duration field")
			}
			m.durationMS = v
			b = b[n:]
		case fieldPowerRaw:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed power field")
			}
			m.powerRaw = v
			b = b[n:]
		case fieldStart:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed start field")
			}
			m.start = v
			b = b[n:]
		case fieldEnd:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed end field")
			}
			m.end = v
			b = b[n:]
		case fieldMultizone:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed multizone field")
			}
			m.multizone = v != 0
			b = b[n:]
		case fieldAgeSeconds:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed age field")
			}
			m.ageSeconds = v
			b = b[n:]
		case fieldColorWord:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed color word")
			}
			m.colors = append(m.colors, v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return message{}, fmt.Errorf("netlamp: malformed unknown field %d", num)
			}
			b = b[n:]
		}
	}
	return m, nil
}

func colorFromMessage(msg message) lampset.Color {
	return lampset.Color{H: uint16(msg.hue), S: uint16(msg.sat), B: uint16(msg.bri), K: uint16(msg.kel)}
}

func packColor(c lampset.Color) []uint32 {
	return []uint32{uint32(c.H), uint32(c.S), uint32(c.B), uint32(c.K)}
}
