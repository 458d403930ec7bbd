package udp

import (
	"sync"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/ports"
)

// Router maps link ports to handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[domain.Port]ports.PacketHandler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{handlers: make(map[domain.Port]ports.PacketHandler)}
}

// Register installs h for port, replacing any previous handler.
func (r *Router) Register(port domain.Port, h ports.PacketHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[port&0x0F] = h
}

// Dispatch hands p to its port's handler and reports whether one existed.
func (r *Router) Dispatch(p domain.Packet) bool {
	r.mu.RLock()
	h, ok := r.handlers[p.Port]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	h.HandlePacket(p)
	return true
}
