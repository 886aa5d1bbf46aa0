package netlamp

import (
	"net"
	"sync"
	"time"

	"github.com/EmonFan/bardolph/internal/lampset"
)

// Client is a lampset.Set backed by the wire protocol: Discover populates a
// local cache from a Device's CmdCatalog replies, broadcasts go straight
// out, and single-lamp reads round-trip one request/reply pair.
type Client struct {
	conn       net.PacketConn
	serverAddr net.Addr

	mu    sync.RWMutex
	lamps map[string]*remoteLamp

	readTimeout time.Duration
}

// Dial opens a UDP socket targeting server ("host:port").
func Dial(server string) (*Client, error) {
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{
		conn:        conn,
		serverAddr:  addr,
		lamps:       map[string]*remoteLamp{},
		readTimeout: 2 * time.Second,
	}, nil
}

// Close releases the underlying socket.
func (c *Client) Close() error { return c.conn.Close() }

// Discover sends one CmdDiscover datagram and gathers CmdCatalog replies
// until a short quiet period passes with nothing further arriving.
func (c *Client) Discover() bool {
	if err := c.send(message{cmd: CmdDiscover}); err != nil {
		return false
	}
	c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	buf := make([]byte, 4096)
	found := false
	for {
		n, _, err := c.conn.ReadFrom(buf)
		if err != nil {
			break
		}
		msg, err := decodeMessage(buf[:n])
		if err != nil || msg.cmd != CmdCatalog {
			continue
		}
		c.mu.Lock()
		c.lamps[msg.name] = &remoteLamp{
			client:    c,
			name:      msg.name,
			group:     msg.group,
			location:  msg.location,
			multizone: msg.multizone,
			age:       time.Duration(msg.ageSeconds) * time.Second,
		}
		c.mu.Unlock()
		found = true
		c.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	}
	return found
}

func (c *Client) GetLight(name string) (lampset.Lamp, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lamps[name]
	return l, ok
}

func (c *Client) GetGroup(name string) ([]lampset.Lamp, bool) {
	return c.filter(func(l *remoteLamp) bool { return l.group == name })
}

func (c *Client) GetLocation(name string) ([]lampset.Lamp, bool) {
	return c.filter(func(l *remoteLamp) bool { return l.location == name })
}

func (c *Client) filter(pred func(*remoteLamp) bool) ([]lampset.Lamp, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []lampset.Lamp
	for _, l := range c.lamps {
		if pred(l) {
			out = append(out, l)
		}
	}
	return out, len(out) > 0
}

// AllLamps enumerates every lamp Discover has cached so far, for callers
// (the snapshot exporter) that need the whole set rather than a single
// name/group/location lookup.
func (c *Client) AllLamps() []lampset.Lamp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]lampset.Lamp, 0, len(c.lamps))
	for _, l := range c.lamps {
		out = append(out, l)
	}
	return out
}

// SetColor broadcasts to every lamp the server knows (no name set).
func (c *Client) SetColor(col lampset.Color, durationMS int) {
	c.send(message{
		cmd: CmdSetColor,
		hue: uint32(col.H), sat: uint32(col.S), bri: uint32(col.B), kel: uint32(col.K),
		durationMS: uint64(durationMS),
	})
}

// SetPower broadcasts to every lamp the server knows.
func (c *Client) SetPower(raw uint16, durationMS int) {
	c.send(message{cmd: CmdSetPower, powerRaw: uint32(raw), durationMS: uint64(durationMS)})
}

func (c *Client) send(m message) error {
	_, err := c.conn.WriteTo(encodeMessage(m), c.serverAddr)
	return err
}

// remoteLamp is a lampset.Lamp proxy: mutating calls are fire-and-forget
// datagrams naming this lamp; reads are one request/reply round trip.
type remoteLamp struct {
	client    *Client
	name      string
	group     string
	location  string
	multizone bool
	age       time.Duration
}

func (l *remoteLamp) Name() string       { return l.name }
func (l *remoteLamp) Group() string      { return l.group }
func (l *remoteLamp) Location() string   { return l.location }
func (l *remoteLamp) Age() time.Duration { return l.age }
func (l *remoteLamp) Multizone() bool    { return l.multizone }

func (l *remoteLamp) SetColor(c lampset.Color, durationMS int) {
	l.client.send(message{
		cmd: CmdSetColor, name: l.name,
		hue: uint32(c.H), sat: uint32(c.S), bri: uint32(c.B), kel: uint32(c.K),
		durationMS: uint64(durationMS),
	})
}

func (l *remoteLamp) SetPower(raw uint16, durationMS int) {
	l.client.send(message{cmd: CmdSetPower, name: l.name, powerRaw: uint32(raw), durationMS: uint64(durationMS)})
}

func (l *remoteLamp) SetZoneColor(start, endExclusive int, c lampset.Color, durationMS int) {
	l.client.send(message{
		cmd: CmdSetZoneColor, name: l.name,
		start: uint64(start), end: uint64(endExclusive),
		hue: uint32(c.H), sat: uint32(c.S), bri: uint32(c.B), kel: uint32(c.K),
		durationMS: uint64(durationMS),
	})
}

func (l *remoteLamp) GetColor() lampset.Color {
	reply, ok := l.roundTrip(message{cmd: CmdGetColor, name: l.name}, CmdColorReply)
	if !ok {
		return lampset.Color{}
	}
	return colorFromMessage(reply)
}

func (l *remoteLamp) GetColorZones(start, endExclusive int) []lampset.Color {
	reply, ok := l.roundTrip(message{cmd: CmdGetColorZones, name: l.name, start: uint64(start), end: uint64(endExclusive)}, CmdZonesReply)
	if !ok {
		return nil
	}
	out := make([]lampset.Color, 0, len(reply.colors)/4)
	for i := 0; i+3 < len(reply.colors); i += 4 {
		out = append(out, lampset.Color{
			H: uint16(reply.colors[i]), S: uint16(reply.colors[i+1]),
			B: uint16(reply.colors[i+2]), K: uint16(reply.colors[i+3]),
		})
	}
	return out
}

func (l *remoteLamp) GetPower() uint16 {
	reply, ok := l.roundTrip(message{cmd: CmdGetPower, name: l.name}, CmdPowerReply)
	if !ok {
		return 0
	}
	return uint16(reply.powerRaw)
}

func (l *remoteLamp) roundTrip(req message, want Command) (message, bool) {
	if err := l.client.send(req); err != nil {
		return message{}, false
	}
	l.client.conn.SetReadDeadline(time.Now().Add(l.client.readTimeout))
	buf := make([]byte, 4096)
	for {
		n, _, err := l.client.conn.ReadFrom(buf)
		if err != nil {
			return message{}, false
		}
		reply, err := decodeMessage(buf[:n])
		if err != nil {
			continue
		}
		if reply.cmd == want && reply.name == l.name {
			return reply, true
		}
	}
}
