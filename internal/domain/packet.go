package domain

import "fmt"

// MaxPayload is the largest payload carried by a single packet.
const MaxPayload = 30

// Port addresses a handler on the command link. Only the low nibble is used.
type Port uint8

// Channel is a sub-address within a port (two bits).
type Channel uint8

// PortOverride is the default port for direct motor override packets.
const PortOverride Port = 0x09

// Packet is one datagram after header decoding.
type Packet struct {
	Port    Port
	Channel Channel
	Data    []byte
}

// Header packs port and channel into the leading header byte.
func (p Packet) Header() byte {
	return byte(p.Port&0x0F)<<4 | byte(p.Channel&0x03)
}

// Marshal returns header followed by payload.
func (p Packet) Marshal() ([]byte, error) {
	if len(p.Data) > MaxPayload {
		return nil, fmt.Errorf("payload too large: %d > %d", len(p.Data), MaxPayload)
	}
	b := make([]byte, 0, 1+len(p.Data))
	b = append(b, p.Header())
	return append(b, p.Data...), nil
}

// ParsePacket splits a raw datagram into header fields and payload.
// The returned Data aliases raw.
func ParsePacket(raw []byte) (Packet, bool) {
	if len(raw) == 0 || len(raw) > 1+MaxPayload {
		return Packet{}, false
	}
	h := raw[0]
	return Packet{
		Port:    Port(h >> 4),
		Channel: Channel(h & 0x03),
		Data:    raw[1:],
	}, true
}
