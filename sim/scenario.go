// Scenario files describe a topology and a scripted workload in yaml,
// so a whole experiment can be replayed non-interactively.

package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioInterface declares one interface of a scenario device.
type ScenarioInterface struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip,omitempty"`
	Down bool   `yaml:"down,omitempty"`
}

// ScenarioDevice declares one device.
type ScenarioDevice struct {
	Name       string              `yaml:"name"`
	Type       string              `yaml:"type"`
	Down       bool                `yaml:"down,omitempty"`
	Interfaces []ScenarioInterface `yaml:"interfaces"`
}

// ScenarioLink declares a connection between two device interfaces.
type ScenarioLink struct {
	From      string `yaml:"from"`
	FromIface string `yaml:"from_iface"`
	To        string `yaml:"to"`
	ToIface   string `yaml:"to_iface"`
}

// ScenarioRoute declares a static route on a device.
type ScenarioRoute struct {
	Device string `yaml:"device"`
	Prefix string `yaml:"prefix"`
	Mask   string `yaml:"mask"`
	Via    string `yaml:"via"`
	Metric int    `yaml:"metric,omitempty"`
}

// ScenarioPolicy declares a forwarding policy on a device.
type ScenarioPolicy struct {
	Device string `yaml:"device"`
	Prefix string `yaml:"prefix"`
	Mask   string `yaml:"mask"`
	Type   string `yaml:"type"`
	Value  int    `yaml:"value,omitempty"`
}

// ScenarioSend declares one packet injection.
type ScenarioSend struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Payload string `yaml:"payload"`
	TTL     int    `yaml:"ttl,omitempty"`
}

// Scenario is a complete declarative experiment.
type Scenario struct {
	Devices  []ScenarioDevice `yaml:"devices"`
	Links    []ScenarioLink   `yaml:"links"`
	Routes   []ScenarioRoute  `yaml:"routes"`
	Policies []ScenarioPolicy `yaml:"policies"`
	Sends    []ScenarioSend   `yaml:"sends"`
	Ticks    int              `yaml:"ticks"`
}

// DefaultSendTTL is used when a scenario send omits ttl.
const DefaultSendTTL = 5

// LoadScenario parses a scenario yaml file.
func LoadScenario(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return &sc, nil
}

// Build materializes the scenario topology, routes and policies into a
// Network. Sends and ticks are left to the caller.
func (sc *Scenario) Build(errlog *ErrorLog) (*Network, error) {
	nw := NewNetwork(errlog)
	for _, sd := range sc.Devices {
		if !ValidDeviceKind(sd.Type) {
			return nil, fmt.Errorf("device %s: invalid type %q", sd.Name, sd.Type)
		}
		d := NewDevice(sd.Name, DeviceKind(sd.Type))
		if sd.Down {
			d.Status = StatusDown
		}
		if err := nw.AddDevice(d); err != nil {
			return nil, err
		}
		for _, si := range sd.Interfaces {
			in := NewInterface(si.Name)
			if si.IP != "" {
				a, err := ParseAddr(si.IP)
				if err != nil {
					return nil, fmt.Errorf("device %s interface %s: %w", sd.Name, si.Name, err)
				}
				in.SetAddr(a)
			}
			if si.Down {
				in.Shutdown()
			}
			if err := d.AddInterface(in); err != nil {
				return nil, err
			}
		}
	}
	for _, l := range sc.Links {
		if err := nw.Connect(l.From, l.FromIface, l.To, l.ToIface); err != nil {
			return nil, err
		}
	}
	for _, r := range sc.Routes {
		d := nw.Device(r.Device)
		if d == nil {
			return nil, fmt.Errorf("route on unknown device %s", r.Device)
		}
		prefix, err := ParseAddr(r.Prefix)
		if err != nil {
			return nil, fmt.Errorf("route on %s: %w", r.Device, err)
		}
		maskLen, err := ParseMaskLen(r.Mask)
		if err != nil {
			return nil, fmt.Errorf("route on %s: %w", r.Device, err)
		}
		via, err := ParseAddr(r.Via)
		if err != nil {
			return nil, fmt.Errorf("route on %s: %w", r.Device, err)
		}
		metric := r.Metric
		if metric <= 0 {
			metric = 1
		}
		d.Routes.AddRoute(prefix, maskLen, via, metric)
	}
	for _, p := range sc.Policies {
		d := nw.Device(p.Device)
		if d == nil {
			return nil, fmt.Errorf("policy on unknown device %s", p.Device)
		}
		prefix, err := ParseAddr(p.Prefix)
		if err != nil {
			return nil, fmt.Errorf("policy on %s: %w", p.Device, err)
		}
		maskLen, err := ParseMaskLen(p.Mask)
		if err != nil {
			return nil, fmt.Errorf("policy on %s: %w", p.Device, err)
		}
		switch PolicyType(p.Type) {
		case PolicyBlock:
			d.Policies.SetPolicy(prefix, maskLen, Policy{Type: PolicyBlock})
		case PolicyMinTTL:
			d.Policies.SetPolicy(prefix, maskLen, Policy{Type: PolicyMinTTL, MinTTL: p.Value})
		default:
			return nil, fmt.Errorf("policy on %s: unknown type %q", p.Device, p.Type)
		}
	}
	return nw, nil
}

// Run injects the scenario's sends and advances the simulation the
// configured number of ticks (at least one).
func (sc *Scenario) Run(nw *Network) error {
	for _, s := range sc.Sends {
		src, err := ParseAddr(s.From)
		if err != nil {
			return fmt.Errorf("send from %s: %w", s.From, err)
		}
		dst, err := ParseAddr(s.To)
		if err != nil {
			return fmt.Errorf("send to %s: %w", s.To, err)
		}
		ttl := s.TTL
		if ttl <= 0 {
			ttl = DefaultSendTTL
		}
		if _, err := nw.Send(src, dst, s.Payload, ttl); err != nil {
			nw.ErrLog.Log(ErrValidation, err.Error(), fmt.Sprintf("send %s %s", s.From, s.To))
		}
	}
	ticks := sc.Ticks
	if ticks <= 0 {
		ticks = 1
	}
	for i := 0; i < ticks; i++ {
		nw.Tick()
	}
	return nil
}
