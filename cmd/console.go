// Interactive console modeled on a router CLI: user mode, privileged
// mode, global config and interface config, with the command surface
// dispatching into the sim package. All IP/mask syntax validation
// happens here; the engine only sees parsed addresses.

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/josean798/lansim/sim"
)

// Mode is the console's current command mode.
type Mode int

const (
	ModeUser Mode = iota
	ModePrivileged
	ModeConfig
	ModeConfigIf
)

// Console dispatches commands against a network, one device at a time.
type Console struct {
	Network *sim.Network
	ErrLog  *sim.ErrorLog
	Index   *sim.SnapshotIndex

	current  *sim.Device
	curIface *sim.Interface
	mode     Mode
	out      io.Writer

	// now stamps snapshot filenames; overridable in tests.
	now func() time.Time
}

// NewConsole creates a console over a fresh network containing a single
// seed router, mirroring the boot state of the original simulator.
func NewConsole(errlog *sim.ErrorLog, out io.Writer) *Console {
	nw := sim.NewNetwork(errlog)
	seed := sim.NewDevice("Router1", sim.KindRouter)
	_ = nw.AddDevice(seed)
	return &Console{
		Network: nw,
		ErrLog:  nw.ErrLog,
		Index:   sim.NewSnapshotIndex(sim.DefaultBTreeOrder),
		current: seed,
		mode:    ModeUser,
		out:     out,
		now:     time.Now,
	}
}

// Prompt returns the mode-dependent prompt string.
func (c *Console) Prompt() string {
	switch c.mode {
	case ModePrivileged:
		return c.current.Name + "#"
	case ModeConfig:
		return c.current.Name + "(config)#"
	case ModeConfigIf:
		return c.current.Name + "(config-if)#"
	default:
		return c.current.Name + ">"
	}
}

// Run reads commands from r until EOF or a top-level exit.
func (c *Console) Run(r io.Reader) {
	fmt.Fprintln(c.out, "LAN simulator console. Type 'help' for commands, 'exit' to leave.")
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(c.out, c.Prompt(), " ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" && (c.mode == ModeUser || c.mode == ModePrivileged) {
			return
		}
		c.Exec(line)
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Exec parses and runs a single command line.
func (c *Console) Exec(line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch c.mode {
	case ModeUser:
		c.execUser(cmd, args, line)
	case ModePrivileged:
		c.execPrivileged(cmd, args, line)
	case ModeConfig:
		c.execConfig(cmd, args, line)
	case ModeConfigIf:
		c.execConfigIf(cmd, args, line)
	}
}

func (c *Console) execUser(cmd string, args []string, line string) {
	switch cmd {
	case "enable":
		c.mode = ModePrivileged
	case "send":
		c.cmdSend(args, line)
	case "ping":
		if len(args) != 1 {
			c.printf("Usage: ping <destination-ip>\n")
			return
		}
		c.printf("Sending ping to %s... (simulated)\n", args[0])
	case "show":
		if len(args) > 0 && args[0] == "interfaces" {
			c.cmdShowInterfaces()
			return
		}
		c.printf("Available in user mode: show interfaces\n")
	case "help":
		c.printf("Commands: enable, send, ping, show interfaces, exit\n")
	default:
		c.unknown(cmd, line)
	}
}

func (c *Console) execPrivileged(cmd string, args []string, line string) {
	switch cmd {
	case "disable":
		c.mode = ModeUser
	case "configure":
		if len(args) > 0 && strings.ToLower(args[0]) == "terminal" {
			c.mode = ModeConfig
			return
		}
		c.printf("Usage: configure terminal\n")
	case "send":
		c.cmdSend(args, line)
	case "tick", "process":
		c.Network.Tick()
		c.printf("Simulation step complete\n")
	case "show":
		c.cmdShow(args, line)
	case "connect":
		c.cmdConnect(args, line)
	case "disconnect":
		c.cmdDisconnect(args, line)
	case "list_devices":
		c.cmdListDevices()
	case "add_device":
		c.cmdAddDevice(args, line)
	case "remove_device":
		c.cmdRemoveDevice(args, line)
	case "add_interface":
		c.cmdAddInterface(args, line)
	case "console":
		c.cmdConsole(args, line)
	case "set_device_status":
		c.cmdSetDeviceStatus(args, line)
	case "save":
		c.cmdSave(args, line)
	case "load":
		c.cmdLoad(args, line)
	case "btree":
		if len(args) > 0 && args[0] == "stats" {
			c.printf("%s\n", c.Index.Stats())
			return
		}
		c.printf("Usage: btree stats\n")
	case "help":
		c.printf("Commands: disable, configure terminal, tick, send, show <...>, connect, disconnect,\n" +
			"  list_devices, add_device, remove_device, add_interface, console, set_device_status,\n" +
			"  save [file] | save snapshot <key>, load <file> | load config <key>, btree stats, exit\n")
	default:
		c.unknown(cmd, line)
	}
}

func (c *Console) execConfig(cmd string, args []string, line string) {
	switch cmd {
	case "exit":
		c.mode = ModePrivileged
	case "end":
		c.mode = ModePrivileged
	case "hostname":
		c.cmdHostname(args, line)
	case "interface":
		c.cmdInterface(args, line)
	case "ip":
		c.cmdIPRoute(args, line)
	case "policy":
		c.cmdPolicy(args, line)
	case "help":
		c.printf("Commands: hostname <name>, interface <name>, ip route add|del, policy set|unset, exit, end\n")
	default:
		c.unknown(cmd, line)
	}
}

func (c *Console) execConfigIf(cmd string, args []string, line string) {
	switch cmd {
	case "exit":
		c.mode = ModeConfig
		c.curIface = nil
	case "end":
		c.mode = ModePrivileged
		c.curIface = nil
	case "ip":
		if len(args) == 2 && args[0] == "address" {
			c.cmdIPAddress(args[1], line)
			return
		}
		c.printf("Usage: ip address <ip>\n")
	case "shutdown":
		c.curIface.Shutdown()
		c.printf("Interface %s disabled\n", c.curIface.Name)
	case "no":
		if len(args) > 0 && args[0] == "shutdown" {
			c.curIface.NoShutdown()
			c.printf("Interface %s enabled\n", c.curIface.Name)
			return
		}
		c.printf("Usage: no shutdown\n")
	case "help":
		c.printf("Commands: ip address <ip>, shutdown, no shutdown, exit, end\n")
	default:
		c.unknown(cmd, line)
	}
}

func (c *Console) unknown(cmd, line string) {
	c.ErrLog.Log(sim.ErrValidation, fmt.Sprintf("command %q not recognized", cmd), line)
	c.printf("%% Command %q not recognized in current mode\n", cmd)
}

// --- config-mode commands ---

func (c *Console) cmdHostname(args []string, line string) {
	if len(args) != 1 {
		c.printf("Usage: hostname <name>\n")
		return
	}
	name := args[0]
	if err := c.Network.RenameDevice(c.current.Name, name); err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Name %s is already in use\n", name)
	}
}

func (c *Console) cmdInterface(args []string, line string) {
	if len(args) != 1 {
		c.printf("Usage: interface <name>\n")
		return
	}
	in := c.current.Interface(args[0])
	if in == nil {
		c.ErrLog.Log(sim.ErrNotFound, fmt.Sprintf("interface %s does not exist", args[0]), line)
		c.printf("%% Interface %s does not exist\n", args[0])
		return
	}
	c.curIface = in
	c.mode = ModeConfigIf
}

func (c *Console) cmdIPAddress(ipStr, line string) {
	a, err := sim.ParseAddr(ipStr)
	if err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Invalid IP address\n")
		return
	}
	c.curIface.SetAddr(a)
	c.printf("Interface %s configured with IP %s\n", c.curIface.Name, a)
}

func (c *Console) cmdIPRoute(args []string, line string) {
	if len(args) < 4 || args[0] != "route" {
		c.printf("Usage: ip route add <prefix> <mask> via <next-hop> [metric N] | ip route del <prefix> <mask>\n")
		return
	}
	action := args[1]
	prefix, err := sim.ParseAddr(args[2])
	if err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Invalid prefix\n")
		return
	}
	maskLen, err := sim.ParseMaskLen(args[3])
	if err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Invalid mask\n")
		return
	}
	switch action {
	case "add":
		var nextHop sim.Addr
		metric := 1
		rest := args[4:]
		for i := 0; i < len(rest); i++ {
			switch rest[i] {
			case "via":
				if i+1 >= len(rest) {
					c.printf("Usage: ip route add <prefix> <mask> via <next-hop> [metric N]\n")
					return
				}
				nextHop, err = sim.ParseAddr(rest[i+1])
				if err != nil {
					c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
					c.printf("%% Invalid next hop\n")
					return
				}
				i++
			case "metric":
				if i+1 >= len(rest) {
					c.printf("Usage: ip route add <prefix> <mask> via <next-hop> [metric N]\n")
					return
				}
				metric, err = strconv.Atoi(rest[i+1])
				if err != nil || metric < 0 {
					c.ErrLog.Log(sim.ErrValidation, fmt.Sprintf("invalid metric %q", rest[i+1]), line)
					c.printf("%% Invalid metric\n")
					return
				}
				i++
			}
		}
		c.current.Routes.AddRoute(prefix, maskLen, nextHop, metric)
		c.printf("Route added: %s via %s metric %d\n", sim.CIDR(prefix.Masked(maskLen), maskLen), nextHop, metric)
	case "del":
		if !c.current.Routes.DelRoute(prefix, maskLen) {
			// Absent key is a quiet no-op; only the console mentions it.
			c.printf("%% No such route\n")
			return
		}
		c.printf("Route deleted: %s\n", sim.CIDR(prefix.Masked(maskLen), maskLen))
	default:
		c.printf("%% Invalid action. Use 'add' or 'del'\n")
	}
}

func (c *Console) cmdPolicy(args []string, line string) {
	if len(args) < 3 {
		c.printf("Usage: policy set <prefix> <mask> block|ttl-min [N] | policy unset <prefix> <mask>\n")
		return
	}
	action := args[0]
	prefix, err := sim.ParseAddr(args[1])
	if err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Invalid prefix\n")
		return
	}
	maskLen, err := sim.ParseMaskLen(args[2])
	if err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Invalid mask\n")
		return
	}
	switch action {
	case "set":
		if len(args) < 4 {
			c.printf("Usage: policy set <prefix> <mask> block|ttl-min [N]\n")
			return
		}
		switch sim.PolicyType(args[3]) {
		case sim.PolicyBlock:
			c.current.Policies.SetPolicy(prefix, maskLen, sim.Policy{Type: sim.PolicyBlock})
			c.printf("Policy block applied to %s\n", sim.CIDR(prefix.Masked(maskLen), maskLen))
		case sim.PolicyMinTTL:
			if len(args) < 5 {
				c.printf("Usage: policy set <prefix> <mask> ttl-min <N>\n")
				return
			}
			n, err := strconv.Atoi(args[4])
			if err != nil {
				c.ErrLog.Log(sim.ErrValidation, fmt.Sprintf("invalid ttl-min value %q", args[4]), line)
				c.printf("%% Invalid TTL value\n")
				return
			}
			c.current.Policies.SetPolicy(prefix, maskLen, sim.Policy{Type: sim.PolicyMinTTL, MinTTL: n})
			c.printf("Policy ttl-min=%d applied to %s\n", n, sim.CIDR(prefix.Masked(maskLen), maskLen))
		default:
			c.ErrLog.Log(sim.ErrValidation, fmt.Sprintf("invalid policy type %q", args[3]), line)
			c.printf("%% Invalid policy type\n")
		}
	case "unset":
		if !c.current.Policies.UnsetPolicy(prefix, maskLen) {
			c.printf("%% No policy at %s\n", sim.CIDR(prefix.Masked(maskLen), maskLen))
			return
		}
		c.printf("Policy removed from %s\n", sim.CIDR(prefix.Masked(maskLen), maskLen))
	default:
		c.printf("%% Invalid action. Use 'set' or 'unset'\n")
	}
}

// --- privileged-mode commands ---

func (c *Console) cmdSend(args []string, line string) {
	if len(args) < 3 {
		c.printf("Usage: send <source-ip> <dest-ip> <message> [ttl]\n")
		return
	}
	src, err := sim.ParseAddr(args[0])
	if err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Invalid source IP\n")
		return
	}
	dst, err := sim.ParseAddr(args[1])
	if err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% Invalid destination IP\n")
		return
	}
	msgArgs := args[2:]
	ttl := sim.DefaultSendTTL
	if len(msgArgs) > 1 {
		if n, err := strconv.Atoi(msgArgs[len(msgArgs)-1]); err == nil {
			ttl = n
			msgArgs = msgArgs[:len(msgArgs)-1]
		}
	}
	payload := strings.Join(msgArgs, " ")
	if _, err := c.Network.Send(src, dst, payload, ttl); err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% %v\n", err)
		return
	}
	c.printf("Message queued for delivery: %q from %s to %s (ttl=%d)\n", payload, src, dst, ttl)
}

func (c *Console) cmdShow(args []string, line string) {
	if len(args) == 0 {
		c.printf("show history | interfaces | queue | statistics | error-log [n] | snapshots |\n" +
			"  ip route | ip route-tree | ip prefix-tree | route avl-stats\n")
		return
	}
	switch args[0] {
	case "interfaces":
		c.cmdShowInterfaces()
	case "history":
		c.cmdShowHistory()
	case "queue":
		c.cmdShowQueue()
	case "statistics":
		if len(args) > 2 && args[1] == "export" {
			if err := c.Network.Stats.Report().Export(args[2]); err != nil {
				c.ErrLog.Log(sim.ErrPersistence, err.Error(), line)
				c.printf("%% Export failed: %v\n", err)
				return
			}
			c.printf("Statistics exported to %s\n", args[2])
			return
		}
		c.Network.Stats.Report().Print()
	case "error-log":
		n := 0
		if len(args) > 1 {
			n, _ = strconv.Atoi(args[1])
		}
		recs := c.ErrLog.Tail(n)
		if len(recs) == 0 {
			c.printf("No errors logged\n")
			return
		}
		for _, r := range recs {
			c.printf("%s\n", r)
		}
	case "snapshots":
		entries := c.Index.InOrder()
		if len(entries) == 0 {
			c.printf("No snapshots\n")
			return
		}
		for _, e := range entries {
			c.printf("%s -> %s\n", e.Key, e.Value)
		}
	case "ip":
		if len(args) < 2 {
			c.printf("show ip route | route-tree | prefix-tree\n")
			return
		}
		switch args[1] {
		case "route":
			routes := c.current.Routes.Routes()
			if len(routes) == 0 {
				c.printf("Routing table is empty\n")
				return
			}
			for _, r := range routes {
				c.printf("%s\n", r)
			}
		case "route-tree":
			c.printf("%s", c.current.Routes.RenderTree())
		case "prefix-tree":
			c.printf("%s", c.current.Policies.RenderTree())
		default:
			c.printf("%% Unknown show ip subcommand\n")
		}
	case "route":
		if len(args) > 1 && args[1] == "avl-stats" {
			s := c.current.Routes.Stats()
			c.printf("nodes=%d height=%d rotations LL=%d RR=%d LR=%d RL=%d\n",
				s.Nodes, s.Height, s.Rotations.LL, s.Rotations.RR, s.Rotations.LR, s.Rotations.RL)
			return
		}
		c.printf("%% Unknown show route subcommand\n")
	default:
		c.printf("%% Unknown show subcommand\n")
	}
}

func (c *Console) cmdShowInterfaces() {
	if len(c.current.Interfaces) == 0 {
		c.printf("No interfaces on %s\n", c.current.Name)
		return
	}
	for _, in := range c.current.Interfaces {
		names := make([]string, 0, len(in.Neighbors()))
		for _, n := range in.Neighbors() {
			names = append(names, n.Name)
		}
		neighbors := "none"
		if len(names) > 0 {
			neighbors = strings.Join(names, ", ")
		}
		ip := "unassigned"
		if !in.Addr.IsUnspecified() {
			ip = in.Addr.String()
		}
		c.printf("- %s: ip %s, status %s, neighbors: %s\n", in.Name, ip, in.Status, neighbors)
	}
}

func (c *Console) cmdShowHistory() {
	sent := c.current.SentHistory()
	c.printf("Sent packets:\n")
	if len(sent) == 0 {
		c.printf("  (none)\n")
	}
	for i, p := range sent {
		c.printf("%d) to %s: %q ttl=%d\n", i+1, p.Destination, p.Payload, p.TTL)
	}
	c.printf("Received packets:\n")
	received := c.current.History()
	if len(received) == 0 {
		c.printf("  (none)\n")
	}
	for i, p := range received {
		c.printf("%d) from %s: %q path=%s ttl=%d\n", i+1, p.Source, p.Payload, strings.Join(p.Path, " -> "), p.TTL)
	}
}

func (c *Console) cmdShowQueue() {
	total := 0
	for _, in := range c.current.Interfaces {
		for i, p := range in.Queue.Items() {
			c.printf("%s %d) from %s to %s: %q\n", in.Name, i+1, p.Source, p.Destination, p.Payload)
			total++
		}
	}
	if total == 0 {
		c.printf("No queued packets\n")
	}
}

func (c *Console) cmdConnect(args []string, line string) {
	if len(args) != 3 {
		c.printf("Usage: connect <local-iface> <remote-device> <remote-iface>\n")
		return
	}
	if err := c.Network.Connect(c.current.Name, args[0], args[1], args[2]); err != nil {
		c.ErrLog.Log(sim.ErrNotFound, err.Error(), line)
		c.printf("%% %v\n", err)
		return
	}
	c.printf("Connected: %s:%s <-> %s:%s\n", c.current.Name, args[0], args[1], args[2])
}

func (c *Console) cmdDisconnect(args []string, line string) {
	if len(args) != 3 {
		c.printf("Usage: disconnect <local-iface> <remote-device> <remote-iface>\n")
		return
	}
	if err := c.Network.Disconnect(c.current.Name, args[0], args[1], args[2]); err != nil {
		c.ErrLog.Log(sim.ErrNotFound, err.Error(), line)
		c.printf("%% %v\n", err)
		return
	}
	c.printf("Disconnected: %s:%s <-> %s:%s\n", c.current.Name, args[0], args[1], args[2])
}

func (c *Console) cmdListDevices() {
	c.printf("Devices in the network:\n")
	for _, d := range c.Network.Devices() {
		c.printf("- %s\n", d)
	}
}

func (c *Console) cmdAddDevice(args []string, line string) {
	if len(args) != 2 {
		c.printf("Usage: add_device <name> <router|switch|host|firewall>\n")
		return
	}
	name, kind := args[0], strings.ToLower(args[1])
	if !sim.ValidDeviceKind(kind) {
		c.ErrLog.Log(sim.ErrValidation, fmt.Sprintf("invalid device type %q", kind), line)
		c.printf("%% Invalid device type\n")
		return
	}
	if err := c.Network.AddDevice(sim.NewDevice(name, sim.DeviceKind(kind))); err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% %v\n", err)
		return
	}
	c.printf("Device %s (%s) added\n", name, kind)
}

func (c *Console) cmdRemoveDevice(args []string, line string) {
	if len(args) != 1 {
		c.printf("Usage: remove_device <name>\n")
		return
	}
	if args[0] == c.current.Name {
		c.printf("%% Cannot remove the current device\n")
		return
	}
	if err := c.Network.RemoveDevice(args[0]); err != nil {
		c.ErrLog.Log(sim.ErrNotFound, err.Error(), line)
		c.printf("%% %v\n", err)
		return
	}
	c.printf("Device %s removed\n", args[0])
}

func (c *Console) cmdAddInterface(args []string, line string) {
	if len(args) != 2 {
		c.printf("Usage: add_interface <device> <iface-name>\n")
		return
	}
	d := c.Network.Device(args[0])
	if d == nil {
		c.ErrLog.Log(sim.ErrNotFound, fmt.Sprintf("device %s not found", args[0]), line)
		c.printf("%% Device %s not found\n", args[0])
		return
	}
	if err := d.AddInterface(sim.NewInterface(args[1])); err != nil {
		c.ErrLog.Log(sim.ErrValidation, err.Error(), line)
		c.printf("%% %v\n", err)
		return
	}
	c.printf("Interface %s added to %s\n", args[1], args[0])
}

func (c *Console) cmdConsole(args []string, line string) {
	if len(args) != 1 {
		c.printf("Usage: console <device>\n")
		for _, d := range c.Network.Devices() {
			c.printf("- %s (%s)\n", d.Name, d.Kind)
		}
		return
	}
	d := c.Network.Device(args[0])
	if d == nil {
		c.ErrLog.Log(sim.ErrNotFound, fmt.Sprintf("device %s not found", args[0]), line)
		c.printf("%% Device %s not found\n", args[0])
		return
	}
	c.current = d
	c.curIface = nil
	c.printf("Switched to device %s\n", d.Name)
}

func (c *Console) cmdSetDeviceStatus(args []string, line string) {
	if len(args) != 2 {
		c.printf("Usage: set_device_status <device> <online|offline>\n")
		return
	}
	var status sim.Status
	switch args[1] {
	case "online":
		status = sim.StatusUp
	case "offline":
		status = sim.StatusDown
	default:
		c.printf("%% Invalid status. Use 'online' or 'offline'\n")
		return
	}
	if err := c.Network.SetDeviceStatus(args[0], status); err != nil {
		c.ErrLog.Log(sim.ErrNotFound, err.Error(), line)
		c.printf("%% %v\n", err)
		return
	}
	c.printf("Status of %s changed to %s\n", args[0], args[1])
}

// --- persistence commands ---

func (c *Console) cmdSave(args []string, line string) {
	if len(args) > 0 && args[0] == "snapshot" {
		if len(args) != 2 {
			c.printf("Usage: save snapshot <key>\n")
			return
		}
		key := args[1]
		filename := fmt.Sprintf("snap_%s.json", c.now().Format("20060102150405"))
		if err := sim.SaveNetworkConfig(c.Network, filename); err != nil {
			c.ErrLog.Log(sim.ErrPersistence, err.Error(), line)
			c.printf("%% Snapshot failed: %v\n", err)
			return
		}
		c.Index.Insert(key, filename)
		c.printf("[OK] snapshot %s -> file: %s (indexed)\n", key, filename)
		return
	}
	filename := "running-config.json"
	if len(args) > 0 {
		filename = args[0]
	}
	if err := sim.SaveNetworkConfig(c.Network, filename); err != nil {
		c.ErrLog.Log(sim.ErrPersistence, err.Error(), line)
		c.printf("%% Save failed: %v\n", err)
		return
	}
	c.printf("Configuration saved to %s\n", filename)
}

func (c *Console) cmdLoad(args []string, line string) {
	if len(args) == 0 {
		c.printf("Usage: load <file> | load config <key>\n")
		return
	}
	if args[0] == "config" {
		if len(args) != 2 {
			c.printf("Usage: load config <key>\n")
			return
		}
		filename, ok := c.Index.Search(args[1])
		if !ok {
			c.ErrLog.Log(sim.ErrNotFound, fmt.Sprintf("key %s not found in index", args[1]), line)
			c.printf("%% Key %s not found in index\n", args[1])
			return
		}
		if err := c.LoadConfig(filename); err != nil {
			c.ErrLog.Log(sim.ErrPersistence, err.Error(), line)
			c.printf("%% Load failed: %v\n", err)
			return
		}
		c.printf("Configuration loaded from %s\n", filename)
		return
	}
	if err := c.LoadConfig(args[0]); err != nil {
		c.ErrLog.Log(sim.ErrPersistence, err.Error(), line)
		c.printf("%% Load failed: %v\n", err)
		return
	}
	c.printf("Configuration loaded from %s\n", args[0])
}

// LoadConfig replaces the console's network with one loaded from
// filename. On error the current network is kept.
func (c *Console) LoadConfig(filename string) error {
	nw, err := sim.LoadNetworkConfig(filename, c.ErrLog)
	if err != nil {
		return err
	}
	c.Network = nw
	c.curIface = nil
	devices := nw.Devices()
	if len(devices) > 0 {
		c.current = devices[0]
	} else {
		seed := sim.NewDevice("Router1", sim.KindRouter)
		_ = nw.AddDevice(seed)
		c.current = seed
	}
	return nil
}
