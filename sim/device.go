// Devices and their interfaces: the topology objects the forwarding
// engine reads during a tick. Each device owns its route table, policy
// trie, packet history and interfaces; each interface owns a FIFO
// packet queue and a neighbor list.

package sim

import "fmt"

// Status is the administrative state of a device or interface.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// DeviceKind classifies a device for display; the engine treats all
// kinds identically.
type DeviceKind string

const (
	KindRouter   DeviceKind = "router"
	KindSwitch   DeviceKind = "switch"
	KindHost     DeviceKind = "host"
	KindFirewall DeviceKind = "firewall"
)

// ValidDeviceKind reports whether s names a known device kind.
func ValidDeviceKind(s string) bool {
	switch DeviceKind(s) {
	case KindRouter, KindSwitch, KindHost, KindFirewall:
		return true
	}
	return false
}

// PacketQueue is a FIFO queue of packets waiting on an interface.
type PacketQueue struct {
	queue []*Packet
}

// Enqueue adds a packet to the back of the queue.
func (pq *PacketQueue) Enqueue(p *Packet) {
	pq.queue = append(pq.queue, p)
}

// Dequeue removes and returns the front packet, or nil when empty.
func (pq *PacketQueue) Dequeue() *Packet {
	if len(pq.queue) == 0 {
		return nil
	}
	p := pq.queue[0]
	pq.queue = pq.queue[1:]
	return p
}

// Peek returns the front packet without removing it, or nil when empty.
func (pq *PacketQueue) Peek() *Packet {
	if len(pq.queue) == 0 {
		return nil
	}
	return pq.queue[0]
}

// Len returns the number of queued packets.
func (pq *PacketQueue) Len() int {
	return len(pq.queue)
}

// Items returns the queue contents for iteration. Callers must not
// append to or reslice the returned slice.
func (pq *PacketQueue) Items() []*Packet {
	return pq.queue
}

// Interface is one port of a device.
type Interface struct {
	Name   string
	Addr   Addr // zero means unassigned
	Status Status

	Queue PacketQueue

	neighbors []*Interface
}

func NewInterface(name string) *Interface {
	return &Interface{Name: name, Status: StatusUp}
}

// SetAddr assigns the interface address.
func (in *Interface) SetAddr(a Addr) {
	in.Addr = a
}

// Shutdown administratively disables the interface.
func (in *Interface) Shutdown() {
	in.Status = StatusDown
}

// NoShutdown re-enables the interface.
func (in *Interface) NoShutdown() {
	in.Status = StatusUp
}

// ConnectTo links this interface and other symmetrically. Connecting an
// already-connected pair is a no-op.
func (in *Interface) ConnectTo(other *Interface) {
	for _, n := range in.neighbors {
		if n == other {
			return
		}
	}
	in.neighbors = append(in.neighbors, other)
	other.neighbors = append(other.neighbors, in)
}

// DisconnectFrom removes the symmetric link with other, if present.
func (in *Interface) DisconnectFrom(other *Interface) {
	in.neighbors = removeIface(in.neighbors, other)
	other.neighbors = removeIface(other.neighbors, in)
}

func removeIface(list []*Interface, target *Interface) []*Interface {
	out := list[:0]
	for _, n := range list {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// Neighbors returns the connected peer interfaces.
func (in *Interface) Neighbors() []*Interface {
	return in.neighbors
}

func (in *Interface) String() string {
	ip := "unassigned"
	if !in.Addr.IsUnspecified() {
		ip = in.Addr.String()
	}
	return fmt.Sprintf("%s | ip %s | %s | %d neighbors | %d queued",
		in.Name, ip, in.Status, len(in.neighbors), in.Queue.Len())
}

// Device is one node of the simulated network.
type Device struct {
	Name   string
	Kind   DeviceKind
	Status Status

	Interfaces []*Interface

	// Routes and Policies are consulted by the forwarding engine for
	// packets dequeued at this device.
	Routes   *RouteTable
	Policies *PolicyTrie

	received []*Packet
	sent     []*Packet
}

func NewDevice(name string, kind DeviceKind) *Device {
	return &Device{
		Name:     name,
		Kind:     kind,
		Status:   StatusUp,
		Routes:   NewRouteTable(),
		Policies: NewPolicyTrie(),
	}
}

// AddInterface attaches in to the device. Interface names must be
// unique per device; a duplicate name is an error.
func (d *Device) AddInterface(in *Interface) error {
	if d.Interface(in.Name) != nil {
		return fmt.Errorf("interface %s already exists on %s", in.Name, d.Name)
	}
	d.Interfaces = append(d.Interfaces, in)
	return nil
}

// Interface returns the named interface, or nil.
func (d *Device) Interface(name string) *Interface {
	for _, in := range d.Interfaces {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// SetStatus changes the administrative state.
func (d *Device) SetStatus(s Status) error {
	if s != StatusUp && s != StatusDown {
		return fmt.Errorf("invalid status %q", s)
	}
	d.Status = s
	return nil
}

// Receive stores a delivered packet in the receive history.
func (d *Device) Receive(p *Packet) {
	d.received = append(d.received, p)
}

// RecordSent stores a copy of an originated packet for `show history`.
func (d *Device) RecordSent(p *Packet) {
	d.sent = append(d.sent, p)
}

// History returns received packets, most recent first.
func (d *Device) History() []*Packet {
	out := make([]*Packet, len(d.received))
	for i, p := range d.received {
		out[len(out)-1-i] = p
	}
	return out
}

// SentHistory returns originated packets in send order.
func (d *Device) SentHistory() []*Packet {
	return d.sent
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) - %s", d.Name, d.Kind, d.Status)
}
