// Save/load of network configuration and of the snapshot index.
//
// The on-disk shapes are fixed: route entries are objects with dotted
// prefix/mask strings, policies are 4-element arrays
// [prefix, mask, type, value-or-null], connections are 4-element name
// arrays and the snapshot index is an ordered list of [key, filename]
// pairs. Load builds a fresh Network and only returns it on success, so
// a malformed file never corrupts in-memory state.

package sim

import (
	"encoding/json"
	"fmt"
	"os"
)

// RouteEntry is the persisted form of a Route.
type RouteEntry struct {
	Prefix  string `json:"prefix"`
	Mask    string `json:"mask"`
	NextHop string `json:"next_hop"`
	Metric  int    `json:"metric"`
}

func routeEntry(r Route) RouteEntry {
	return RouteEntry{
		Prefix:  r.Network().String(),
		Mask:    MaskFromLen(r.MaskLen).String(),
		NextHop: r.NextHop.String(),
		Metric:  r.Metric,
	}
}

// PolicyRecord is the persisted form of a PolicyEntry. It marshals as
// [prefix, mask, policy_type, value-or-null].
type PolicyRecord struct {
	Prefix string
	Mask   string
	Type   PolicyType
	Value  *int
}

func (p PolicyRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Prefix, p.Mask, p.Type, p.Value})
}

func (p *PolicyRecord) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("policy entry: want 4 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Prefix); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &p.Mask); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &p.Type); err != nil {
		return err
	}
	return json.Unmarshal(raw[3], &p.Value)
}

func policyRecord(e PolicyEntry) PolicyRecord {
	rec := PolicyRecord{
		Prefix: e.Prefix.String(),
		Mask:   MaskFromLen(e.MaskLen).String(),
		Type:   e.Policy.Type,
	}
	if e.Policy.Type == PolicyMinTTL {
		v := e.Policy.MinTTL
		rec.Value = &v
	}
	return rec
}

// InterfaceConfig is the persisted form of an Interface.
type InterfaceConfig struct {
	Name   string `json:"name"`
	IP     string `json:"ip"`
	Status Status `json:"status"`
}

// DeviceConfig is the persisted form of a Device.
type DeviceConfig struct {
	Name         string            `json:"name"`
	Type         DeviceKind        `json:"type"`
	Status       Status            `json:"status"`
	Interfaces   []InterfaceConfig `json:"interfaces"`
	RoutingTable []RouteEntry      `json:"routing_table"`
	Policies     []PolicyRecord    `json:"policies"`
}

// NetworkConfig is the full persisted configuration.
type NetworkConfig struct {
	Devices     []DeviceConfig `json:"devices"`
	Connections [][4]string    `json:"connections"`
}

// SnapshotConfig builds the persisted form of the current network.
func SnapshotConfig(nw *Network) NetworkConfig {
	cfg := NetworkConfig{Connections: make([][4]string, 0, len(nw.Connections()))}
	for _, d := range nw.Devices() {
		dc := DeviceConfig{
			Name:         d.Name,
			Type:         d.Kind,
			Status:       d.Status,
			RoutingTable: make([]RouteEntry, 0, d.Routes.Len()),
		}
		for _, in := range d.Interfaces {
			ip := ""
			if !in.Addr.IsUnspecified() {
				ip = in.Addr.String()
			}
			dc.Interfaces = append(dc.Interfaces, InterfaceConfig{Name: in.Name, IP: ip, Status: in.Status})
		}
		for _, r := range d.Routes.Routes() {
			dc.RoutingTable = append(dc.RoutingTable, routeEntry(r))
		}
		for _, e := range d.Policies.Entries() {
			dc.Policies = append(dc.Policies, policyRecord(e))
		}
		cfg.Devices = append(cfg.Devices, dc)
	}
	for _, c := range nw.Connections() {
		cfg.Connections = append(cfg.Connections, [4]string{c.DeviceA, c.IfaceA, c.DeviceB, c.IfaceB})
	}
	return cfg
}

// SaveNetworkConfig writes the current configuration to filename.
func SaveNetworkConfig(nw *Network, filename string) error {
	data, err := json.MarshalIndent(SnapshotConfig(nw), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal network config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// LoadNetworkConfig reads filename and rebuilds a Network attached to
// errlog. Any failure leaves the caller's existing network untouched.
func LoadNetworkConfig(filename string, errlog *ErrorLog) (*Network, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	var cfg NetworkConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return BuildNetwork(cfg, errlog)
}

// BuildNetwork materializes a configuration into a live Network.
func BuildNetwork(cfg NetworkConfig, errlog *ErrorLog) (*Network, error) {
	nw := NewNetwork(errlog)
	for _, dc := range cfg.Devices {
		d := NewDevice(dc.Name, dc.Type)
		if err := d.SetStatus(dc.Status); err != nil {
			return nil, fmt.Errorf("device %s: %w", dc.Name, err)
		}
		if err := nw.AddDevice(d); err != nil {
			return nil, err
		}
		for _, ic := range dc.Interfaces {
			in := NewInterface(ic.Name)
			if ic.IP != "" {
				a, err := ParseAddr(ic.IP)
				if err != nil {
					return nil, fmt.Errorf("device %s interface %s: %w", dc.Name, ic.Name, err)
				}
				in.SetAddr(a)
			}
			if ic.Status == StatusDown {
				in.Shutdown()
			}
			if err := d.AddInterface(in); err != nil {
				return nil, err
			}
		}
		for _, re := range dc.RoutingTable {
			prefix, err := ParseAddr(re.Prefix)
			if err != nil {
				return nil, fmt.Errorf("device %s route: %w", dc.Name, err)
			}
			maskLen, err := ParseMaskLen(re.Mask)
			if err != nil {
				return nil, fmt.Errorf("device %s route: %w", dc.Name, err)
			}
			nextHop, err := ParseAddr(re.NextHop)
			if err != nil {
				return nil, fmt.Errorf("device %s route: %w", dc.Name, err)
			}
			d.Routes.AddRoute(prefix, maskLen, nextHop, re.Metric)
		}
		for _, pr := range dc.Policies {
			prefix, err := ParseAddr(pr.Prefix)
			if err != nil {
				return nil, fmt.Errorf("device %s policy: %w", dc.Name, err)
			}
			maskLen, err := ParseMaskLen(pr.Mask)
			if err != nil {
				return nil, fmt.Errorf("device %s policy: %w", dc.Name, err)
			}
			pol := Policy{Type: pr.Type}
			switch pr.Type {
			case PolicyBlock:
			case PolicyMinTTL:
				if pr.Value == nil {
					return nil, fmt.Errorf("device %s policy %s: ttl-min requires a value", dc.Name, pr.Prefix)
				}
				pol.MinTTL = *pr.Value
			default:
				return nil, fmt.Errorf("device %s policy %s: unknown type %q", dc.Name, pr.Prefix, pr.Type)
			}
			d.Policies.SetPolicy(prefix, maskLen, pol)
		}
	}
	for _, c := range cfg.Connections {
		if err := nw.Connect(c[0], c[1], c[2], c[3]); err != nil {
			return nil, err
		}
	}
	return nw, nil
}

// SaveSnapshotIndex writes the index as ordered [key, filename] pairs.
func SaveSnapshotIndex(si *SnapshotIndex, filename string) error {
	entries := si.InOrder()
	pairs := make([][2]string, len(entries))
	for i, e := range entries {
		pairs[i] = [2]string{e.Key, e.Value}
	}
	data, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot index: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// LoadSnapshotIndex reads pairs written by SaveSnapshotIndex into si.
// A missing file is not an error.
func LoadSnapshotIndex(si *SnapshotIndex, filename string) error {
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	var pairs [][2]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	for _, p := range pairs {
		si.Insert(p[0], p[1])
	}
	return nil
}
