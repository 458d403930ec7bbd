package ports

import "github.com/bft-labs/overdrive/internal/domain"

// PacketHandler receives packets addressed to one port. It runs on the
// transport goroutine and must return quickly without blocking.
type PacketHandler interface {
	HandlePacket(p domain.Packet)
}

// PacketHandlerFunc adapts a function to PacketHandler.
type PacketHandlerFunc func(p domain.Packet)

// HandlePacket calls f.
func (f PacketHandlerFunc) HandlePacket(p domain.Packet) {
	f(p)
}
