// Packet models a single in-flight datagram in the simulation. A packet
// lives from Send until it is delivered or dropped; between hops it
// waits in an interface queue.

package sim

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Packet struct {
	ID          string
	Source      Addr
	Destination Addr
	Payload     string

	// TTL is decremented once per hop; at or below zero the packet
	// is dropped.
	TTL int
	// Path records the device names visited, in order.
	Path []string
}

func NewPacket(source, destination Addr, payload string, ttl int) *Packet {
	return &Packet{
		ID:          uuid.NewString(),
		Source:      source,
		Destination: destination,
		Payload:     payload,
		TTL:         ttl,
	}
}

// Hop records passage through a device and spends one TTL unit.
func (p *Packet) Hop(deviceName string) {
	p.Path = append(p.Path, deviceName)
	p.TTL--
}

// Expired reports whether the TTL budget is used up.
func (p *Packet) Expired() bool {
	return p.TTL <= 0
}

func (p *Packet) String() string {
	route := "(no hops)"
	if len(p.Path) > 0 {
		route = strings.Join(p.Path, " -> ")
	}
	return fmt.Sprintf("Packet %s: %s -> %s %q ttl=%d path=%s",
		p.ID, p.Source, p.Destination, p.Payload, p.TTL, route)
}
