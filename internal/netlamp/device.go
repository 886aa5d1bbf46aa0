package netlamp

import (
	"net"
	"sync"
	"time"

	"github.com/EmonFan/bardolph/internal/lampset"
)

// remoteLampState is one lamp's server-side state.
type remoteLampState struct {
	group, location string
	multizone       bool
	color           lampset.Color
	zones           []lampset.Color
	power           uint16
	bornAt          time.Time
}

// Device is the reference UDP server used by integration tests: an
// in-memory lamp table that speaks the same wire protocol Client does. It
// is not imported by package vm or package parser, and has no analogue in
// a live deployment beyond standing in for real hardware during testing.
type Device struct {
	conn net.PacketConn

	mu    sync.Mutex
	lamps map[string]*remoteLampState

	closeOnce sync.Once
	done      chan struct{}
}

// NewDevice starts listening on addr ("host:port"; "" or ":0" picks an
// ephemeral port).
func NewDevice(addr string) (*Device, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	return &Device{
		conn:  conn,
		lamps: map[string]*remoteLampState{},
		done:  make(chan struct{}),
	}, nil
}

// Addr returns the UDP address the device is listening on.
func (d *Device) Addr() net.Addr { return d.conn.LocalAddr() }

// AddLamp registers a lamp the device will report on Discover. zones is
// ignored unless multizone is true.
func (d *Device) AddLamp(name, group, location string, multizone bool, zones int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := &remoteLampState{group: group, location: location, multizone: multizone, bornAt: time.Now()}
	if multizone && zones > 0 {
		st.zones = make([]lampset.Color, zones)
	}
	d.lamps[name] = st
}

// Serve processes datagrams until Close is called, returning nil on a clean
// shutdown and the underlying read error otherwise.
func (d *Device) Serve() error {
	buf := make([]byte, 4096)
	for {
		n, addr, err := d.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-d.done:
				return nil
			default:
				return err
			}
		}
		msg, err := decodeMessage(buf[:n])
		if err != nil {
			continue // malformed datagram: best-effort server, just drop it
		}
		d.handle(msg, addr)
	}
}

// Close stops Serve and releases the socket.
func (d *Device) Close() error {
	d.closeOnce.Do(func() { close(d.done) })
	return d.conn.Close()
}

func (d *Device) handle(msg message, addr net.Addr) {
	switch msg.cmd {
	case CmdDiscover:
		d.handleDiscover(addr)
	case CmdSetColor:
		d.mu.Lock()
		if st, ok := d.lamps[msg.name]; ok {
			st.color = colorFromMessage(msg)
		}
		d.mu.Unlock()
	case CmdSetPower:
		d.mu.Lock()
		if st, ok := d.lamps[msg.name]; ok {
			st.power = uint16(msg.powerRaw)
		}
		d.mu.Unlock()
	case CmdSetZoneColor:
		d.mu.Lock()
		if st, ok := d.lamps[msg.name]; ok {
			c := colorFromMessage(msg)
			for i := int(msg.start); i < int(msg.end) && i < len(st.zones); i++ {
				st.zones[i] = c
			}
		}
		d.mu.Unlock()
	case CmdGetColor:
		d.handleGetColor(msg, addr)
	case CmdGetColorZones:
		d.handleGetColorZones(msg, addr)
	case CmdGetPower:
		d.handleGetPower(msg, addr)
	}
}

func (d *Device) handleDiscover(addr net.Addr) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, st := range d.lamps {
		d.send(message{
			cmd:        CmdCatalog,
			name:       name,
			group:      st.group,
			location:   st.location,
			multizone:  st.multizone,
			ageSeconds: uint64(time.Since(st.bornAt).Seconds()),
			hue:        uint32(st.color.H),
			sat:        uint32(st.color.S),
			bri:        uint32(st.color.B),
			kel:        uint32(st.color.K),
			powerRaw:   uint32(st.power),
		}, addr)
	}
}

func (d *Device) handleGetColor(msg message, addr net.Addr) {
	d.mu.Lock()
	st, ok := d.lamps[msg.name]
	d.mu.Unlock()
	if !ok {
		return
	}
	d.send(message{
		cmd: CmdColorReply, name: msg.name,
		hue: uint32(st.color.H), sat: uint32(st.color.S), bri: uint32(st.color.B), kel: uint32(st.color.K),
	}, addr)
}

func (d *Device) handleGetColorZones(msg message, addr net.Addr) {
	d.mu.Lock()
	st, ok := d.lamps[msg.name]
	var colors []uint32
	if ok {
		for i := int(msg.start); i < int(msg.end) && i < len(st.zones); i++ {
			colors = append(colors, packColor(st.zones[i])...)
		}
	}
	d.mu.Unlock()
	d.send(message{cmd: CmdZonesReply, name: msg.name, colors: colors}, addr)
}

func (d *Device) handleGetPower(msg message, addr net.Addr) {
	d.mu.Lock()
	st, ok := d.lamps[msg.name]
	d.mu.Unlock()
	if !ok {
		return
	}
	d.send(message{cmd: CmdPowerReply, name: msg.name, powerRaw: uint32(st.power)}, addr)
}

func (d *Device) send(msg message, addr net.Addr) {
	_, _ = d.conn.WriteTo(encodeMessage(msg), addr)
}
