// Network holds the simulated topology and drives the per-tick
// forwarding engine.
//
// A tick visits every up device and, on each of its up interfaces,
// processes at most one queued packet through the decision sequence:
// policy check, hop, delivery check, TTL check, next-hop resolution.
// Forwarded packets land in a neighbor's queue and wait for a future
// tick; there is no recursion within a tick.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Connection records a link for persistence and removal checks.
type Connection struct {
	DeviceA string
	IfaceA  string
	DeviceB string
	IfaceB  string
}

// Network is the topology registry plus forwarding engine. All state
// mutation is synchronous and caller-driven; nothing here blocks.
type Network struct {
	devices     []*Device
	connections []Connection

	ErrLog *ErrorLog
	Stats  *Stats

	tick int
}

func NewNetwork(errlog *ErrorLog) *Network {
	if errlog == nil {
		errlog = NewErrorLog(0)
	}
	return &Network{
		ErrLog: errlog,
		Stats:  NewStats(),
	}
}

// AddDevice registers a device. Names must be unique.
func (nw *Network) AddDevice(d *Device) error {
	if nw.Device(d.Name) != nil {
		return fmt.Errorf("device %s already exists", d.Name)
	}
	nw.devices = append(nw.devices, d)
	nw.Stats.DeviceActivity[d.Name] = 0
	return nil
}

// RemoveDevice deletes the named device. A device with active
// connections cannot be removed.
func (nw *Network) RemoveDevice(name string) error {
	d := nw.Device(name)
	if d == nil {
		return fmt.Errorf("device %s not found", name)
	}
	for _, c := range nw.connections {
		if c.DeviceA == name || c.DeviceB == name {
			return fmt.Errorf("device %s has active connections", name)
		}
	}
	for i, dev := range nw.devices {
		if dev == d {
			nw.devices = append(nw.devices[:i], nw.devices[i+1:]...)
			break
		}
	}
	delete(nw.Stats.DeviceActivity, name)
	return nil
}

// RenameDevice changes a device's name and updates every connection
// record and counter that referenced the old one.
func (nw *Network) RenameDevice(oldName, newName string) error {
	d := nw.Device(oldName)
	if d == nil {
		return fmt.Errorf("device %s not found", oldName)
	}
	if nw.Device(newName) != nil {
		return fmt.Errorf("device %s already exists", newName)
	}
	d.Name = newName
	for i := range nw.connections {
		if nw.connections[i].DeviceA == oldName {
			nw.connections[i].DeviceA = newName
		}
		if nw.connections[i].DeviceB == oldName {
			nw.connections[i].DeviceB = newName
		}
	}
	nw.Stats.DeviceActivity[newName] = nw.Stats.DeviceActivity[oldName]
	delete(nw.Stats.DeviceActivity, oldName)
	return nil
}

// Device returns the named device, or nil.
func (nw *Network) Device(name string) *Device {
	for _, d := range nw.devices {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Devices returns all devices in registration order.
func (nw *Network) Devices() []*Device {
	return nw.devices
}

// Connections returns all recorded links.
func (nw *Network) Connections() []Connection {
	return nw.connections
}

// Connect links (dev1, iface1) with (dev2, iface2).
func (nw *Network) Connect(dev1, iface1, dev2, iface2 string) error {
	a, b, err := nw.endpoints(dev1, iface1, dev2, iface2)
	if err != nil {
		return err
	}
	a.ConnectTo(b)
	nw.connections = append(nw.connections, Connection{dev1, iface1, dev2, iface2})
	return nil
}

// Disconnect removes the link between (dev1, iface1) and (dev2, iface2).
func (nw *Network) Disconnect(dev1, iface1, dev2, iface2 string) error {
	a, b, err := nw.endpoints(dev1, iface1, dev2, iface2)
	if err != nil {
		return err
	}
	a.DisconnectFrom(b)
	for i, c := range nw.connections {
		if (c.DeviceA == dev1 && c.IfaceA == iface1 && c.DeviceB == dev2 && c.IfaceB == iface2) ||
			(c.DeviceA == dev2 && c.IfaceA == iface2 && c.DeviceB == dev1 && c.IfaceB == iface1) {
			nw.connections = append(nw.connections[:i], nw.connections[i+1:]...)
			break
		}
	}
	return nil
}

func (nw *Network) endpoints(dev1, iface1, dev2, iface2 string) (*Interface, *Interface, error) {
	d1 := nw.Device(dev1)
	d2 := nw.Device(dev2)
	if d1 == nil || d2 == nil {
		return nil, nil, fmt.Errorf("unknown device in %s:%s <-> %s:%s", dev1, iface1, dev2, iface2)
	}
	a := d1.Interface(iface1)
	b := d2.Interface(iface2)
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("unknown interface in %s:%s <-> %s:%s", dev1, iface1, dev2, iface2)
	}
	return a, b, nil
}

// SetDeviceStatus changes the named device's administrative state.
func (nw *Network) SetDeviceStatus(name string, s Status) error {
	d := nw.Device(name)
	if d == nil {
		return fmt.Errorf("device %s not found", name)
	}
	return d.SetStatus(s)
}

// Send creates a packet and enqueues it on the interface that owns the
// source address. The originating device also records it in its sent
// history.
func (nw *Network) Send(source, destination Addr, payload string, ttl int) (*Packet, error) {
	for _, d := range nw.devices {
		for _, in := range d.Interfaces {
			if in.Addr == source && !in.Addr.IsUnspecified() {
				p := NewPacket(source, destination, payload, ttl)
				in.Queue.Enqueue(p)
				d.RecordSent(p)
				nw.Stats.PacketsSent++
				logrus.Debugf("send: %s queued on %s.%s", p.ID, d.Name, in.Name)
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("no interface with source address %s", source)
}

// Tick advances the simulation one discrete step. Each up interface of
// each up device processes at most one packet. Deterministic given the
// queue and table contents at entry.
func (nw *Network) Tick() {
	nw.tick++
	nw.Stats.Ticks++
	logrus.Infof("[tick %03d] start", nw.tick)

	// Dequeue first, process second: a packet forwarded onto a
	// neighbor's queue during this tick must wait for the next one,
	// even when that neighbor is visited later in the loop.
	type work struct {
		dev   *Device
		iface *Interface
		pkt   *Packet
	}
	var batch []work
	for _, d := range nw.devices {
		if d.Status != StatusUp {
			continue
		}
		for _, in := range d.Interfaces {
			if in.Status != StatusUp {
				continue
			}
			if p := in.Queue.Dequeue(); p != nil {
				batch = append(batch, work{d, in, p})
			}
		}
	}
	for _, w := range batch {
		nw.forward(w.dev, w.iface, w.pkt)
	}
}

// forward runs one packet through the per-tick decision sequence.
func (nw *Network) forward(d *Device, in *Interface, p *Packet) {
	nw.Stats.DeviceActivity[d.Name]++

	// Policy check happens before the hop is recorded.
	if pol, ok := d.Policies.LookupPolicy(p.Destination); ok {
		switch pol.Type {
		case PolicyBlock:
			nw.drop(p, ErrPolicyViolation,
				fmt.Sprintf("packet %s to %s blocked at %s", p.ID, p.Destination, d.Name))
			return
		case PolicyMinTTL:
			if p.TTL < pol.MinTTL {
				nw.drop(p, ErrPolicyViolation,
					fmt.Sprintf("packet %s ttl %d below minimum %d at %s", p.ID, p.TTL, pol.MinTTL, d.Name))
				return
			}
		}
	}

	p.Hop(d.Name)

	if p.Destination == in.Addr && !in.Addr.IsUnspecified() {
		d.Receive(p)
		nw.Stats.recordDelivered(p)
		logrus.Infof("[tick %03d] delivered %s at %s.%s after %d hops", nw.tick, p.ID, d.Name, in.Name, len(p.Path))
		return
	}

	if p.Expired() {
		nw.drop(p, ErrTTLExpired,
			fmt.Sprintf("packet %s to %s expired at %s", p.ID, p.Destination, d.Name))
		return
	}

	next := nw.resolveNextHop(d, in, p)
	if next == nil {
		return // resolveNextHop already dropped and logged
	}
	next.Queue.Enqueue(p)
	logrus.Debugf("[tick %03d] %s forwarded from %s.%s to %s", nw.tick, p.ID, d.Name, in.Name, next.Name)
}

// resolveNextHop picks the neighbor interface the packet moves to, or
// drops it. A configured route wins; with no covering route, a neighbor
// owning the destination address acts as a connected route.
func (nw *Network) resolveNextHop(d *Device, in *Interface, p *Packet) *Interface {
	if route, ok := d.Routes.Lookup(p.Destination); ok {
		for _, n := range in.Neighbors() {
			if n.Addr == route.NextHop && !n.Addr.IsUnspecified() {
				if n.Status != StatusUp {
					nw.drop(p, ErrForwarding,
						fmt.Sprintf("packet %s: next hop %s reachable via down interface %s", p.ID, route.NextHop, n.Name))
					return nil
				}
				return n
			}
		}
		nw.drop(p, ErrForwarding,
			fmt.Sprintf("packet %s: next hop %s is not a neighbor of %s.%s", p.ID, route.NextHop, d.Name, in.Name))
		return nil
	}
	for _, n := range in.Neighbors() {
		if n.Addr == p.Destination && !n.Addr.IsUnspecified() {
			if n.Status != StatusUp {
				nw.drop(p, ErrForwarding,
					fmt.Sprintf("packet %s: destination %s directly connected but interface %s is down", p.ID, p.Destination, n.Name))
				return nil
			}
			return n
		}
	}
	nw.drop(p, ErrRouting,
		fmt.Sprintf("packet %s: no route to %s from %s", p.ID, p.Destination, d.Name))
	return nil
}

func (nw *Network) drop(p *Packet, kind ErrorKind, msg string) {
	nw.Stats.recordDropped(kind)
	nw.ErrLog.Log(kind, msg, "")
	logrus.Infof("[tick %03d] drop (%s): %s", nw.tick, kind, msg)
}
