package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josean798/lansim/sim"
)

func newTestConsole() (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	c := NewConsole(sim.NewErrorLog(32), &out)
	return c, &out
}

func TestConsole_StartsAtSeedDeviceUserMode(t *testing.T) {
	c, _ := newTestConsole()
	assert.Equal(t, "Router1>", c.Prompt())
	assert.NotNil(t, c.Network.Device("Router1"))
}

func TestConsole_ModeTransitions(t *testing.T) {
	// GIVEN a console in user mode
	c, _ := newTestConsole()

	// WHEN walking the full mode ladder
	c.Exec("enable")
	assert.Equal(t, "Router1#", c.Prompt())

	c.Exec("configure terminal")
	assert.Equal(t, "Router1(config)#", c.Prompt())

	c.Exec("add_device ignored router") // not a config command
	c.Exec("exit")
	assert.Equal(t, "Router1#", c.Prompt())

	c.Exec("disable")
	assert.Equal(t, "Router1>", c.Prompt())
}

func TestConsole_InterfaceConfigFlow(t *testing.T) {
	// GIVEN an interface created from privileged mode
	c, out := newTestConsole()
	c.Exec("enable")
	c.Exec("add_interface Router1 eth0")
	require.NotNil(t, c.Network.Device("Router1").Interface("eth0"))

	// WHEN configuring it
	c.Exec("configure terminal")
	c.Exec("interface eth0")
	assert.Equal(t, "Router1(config-if)#", c.Prompt())
	c.Exec("ip address 10.0.0.1")
	c.Exec("shutdown")

	eth0 := c.Network.Device("Router1").Interface("eth0")
	assert.Equal(t, "10.0.0.1", eth0.Addr.String())
	assert.Equal(t, sim.StatusDown, eth0.Status)

	c.Exec("no shutdown")
	assert.Equal(t, sim.StatusUp, eth0.Status)

	// AND end returns straight to privileged mode
	c.Exec("end")
	assert.Equal(t, "Router1#", c.Prompt())
	assert.Contains(t, out.String(), "Interface eth0 configured with IP 10.0.0.1")
}

func TestConsole_EnteringMissingInterfaceLogsNotFound(t *testing.T) {
	c, out := newTestConsole()
	c.Exec("enable")
	c.Exec("configure terminal")
	c.Exec("interface eth9")

	assert.Equal(t, "Router1(config)#", c.Prompt())
	assert.Contains(t, out.String(), "does not exist")
	recs := c.ErrLog.Tail(1)
	require.Len(t, recs, 1)
	assert.Equal(t, sim.ErrNotFound, recs[0].Kind)
	assert.Equal(t, "interface eth9", recs[0].Command)
}

func TestConsole_RouteAddDel(t *testing.T) {
	// GIVEN config mode on the seed device
	c, out := newTestConsole()
	c.Exec("enable")
	c.Exec("configure terminal")

	// WHEN adding a route with an explicit metric
	c.Exec("ip route add 10.99.0.0 255.255.0.0 via 10.0.0.2 metric 3")

	r, ok := c.Network.Device("Router1").Routes.Lookup(mustTestAddr(t, "10.99.1.1"))
	require.True(t, ok)
	assert.Equal(t, 3, r.Metric)
	assert.Contains(t, out.String(), "Route added: 10.99.0.0/16 via 10.0.0.2 metric 3")

	// AND deleting it by prefix and mask only
	c.Exec("ip route del 10.99.0.0 /16")
	_, ok = c.Network.Device("Router1").Routes.Lookup(mustTestAddr(t, "10.99.1.1"))
	assert.False(t, ok)

	// Deleting again reports the miss without logging an engine error.
	out.Reset()
	c.Exec("ip route del 10.99.0.0 /16")
	assert.Contains(t, out.String(), "No such route")
}

func TestConsole_RouteAddRejectsBadInput(t *testing.T) {
	c, _ := newTestConsole()
	c.Exec("enable")
	c.Exec("configure terminal")

	c.Exec("ip route add 10.0.0.999 /16 via 10.0.0.2")
	recs := c.ErrLog.Tail(1)
	require.Len(t, recs, 1)
	assert.Equal(t, sim.ErrValidation, recs[0].Kind)
	assert.Equal(t, 0, c.Network.Device("Router1").Routes.Len())
}

func TestConsole_PolicySetUnset(t *testing.T) {
	c, _ := newTestConsole()
	c.Exec("enable")
	c.Exec("configure terminal")

	c.Exec("policy set 10.0.0.0 /8 block")
	c.Exec("policy set 10.1.0.0 /16 ttl-min 4")

	pt := c.Network.Device("Router1").Policies
	p, ok := pt.LookupPolicy(mustTestAddr(t, "10.1.2.3"))
	require.True(t, ok)
	assert.Equal(t, sim.Policy{Type: sim.PolicyMinTTL, MinTTL: 4}, p)

	c.Exec("policy unset 10.1.0.0 /16")
	p, ok = pt.LookupPolicy(mustTestAddr(t, "10.1.2.3"))
	require.True(t, ok)
	assert.Equal(t, sim.PolicyBlock, p.Type)

	// ttl-min without a value is refused; the /8 block still covers it
	c.Exec("policy set 10.2.0.0 /16 ttl-min")
	assert.Equal(t, sim.PolicyBlock, mustPolicy(t, pt, "10.2.0.1").Type)
}

func TestConsole_SendAndTickDelivers(t *testing.T) {
	// GIVEN a second device wired to the seed router
	c, out := newTestConsole()
	c.Exec("enable")
	c.Exec("add_interface Router1 eth0")
	c.Exec("add_device PC1 host")
	c.Exec("add_interface PC1 eth0")
	c.Exec("connect eth0 PC1 eth0")
	c.Exec("configure terminal")
	c.Exec("interface eth0")
	c.Exec("ip address 10.0.0.1")
	c.Exec("end")
	c.Exec("console PC1")
	c.Exec("configure terminal")
	c.Exec("interface eth0")
	c.Exec("ip address 10.0.0.2")
	c.Exec("end")

	// WHEN sending and ticking twice
	c.Exec("send 10.0.0.1 10.0.0.2 hello there")
	c.Exec("tick")
	c.Exec("tick")

	// THEN the packet reaches PC1
	assert.Equal(t, 1, c.Network.Stats.PacketsDelivered)
	assert.Len(t, c.Network.Device("PC1").History(), 1)
	assert.Equal(t, "hello there", c.Network.Device("PC1").History()[0].Payload)
	assert.Contains(t, out.String(), "Message queued for delivery")
}

func TestConsole_SendTrailingNumberIsTTL(t *testing.T) {
	c, _ := newTestConsole()
	c.Exec("enable")
	c.Exec("add_interface Router1 eth0")
	c.Exec("configure terminal")
	c.Exec("interface eth0")
	c.Exec("ip address 10.0.0.1")
	c.Exec("end")

	c.Exec("send 10.0.0.1 10.0.0.9 ping 9")
	q := c.Network.Device("Router1").Interface("eth0").Queue
	require.Equal(t, 1, q.Len())
	assert.Equal(t, 9, q.Peek().TTL)
	assert.Equal(t, "ping", q.Peek().Payload)
}

func TestConsole_UnknownCommandLogged(t *testing.T) {
	c, out := newTestConsole()
	c.Exec("frobnicate now")

	assert.Contains(t, out.String(), "not recognized")
	recs := c.ErrLog.Tail(1)
	require.Len(t, recs, 1)
	assert.Equal(t, sim.ErrValidation, recs[0].Kind)
	assert.Equal(t, "frobnicate now", recs[0].Command)
}

func TestConsole_HostnameRejectsDuplicate(t *testing.T) {
	c, out := newTestConsole()
	c.Exec("enable")
	c.Exec("add_device Edge router")
	c.Exec("configure terminal")

	c.Exec("hostname Edge")
	assert.Contains(t, out.String(), "already in use")
	assert.Equal(t, "Router1(config)#", c.Prompt())

	c.Exec("hostname Core")
	assert.Equal(t, "Core(config)#", c.Prompt())
	assert.NotNil(t, c.Network.Device("Core"))
}

func TestConsole_ShowCommands(t *testing.T) {
	c, out := newTestConsole()
	c.Exec("enable")
	c.Exec("add_interface Router1 eth0")
	c.Exec("configure terminal")
	c.Exec("interface eth0")
	c.Exec("ip address 10.0.0.1")
	c.Exec("end")
	c.Exec("configure terminal")
	c.Exec("ip route add 10.99.0.0 /16 via 10.0.0.2")
	c.Exec("policy set 10.0.0.0 /8 block")
	c.Exec("end")

	out.Reset()
	c.Exec("show interfaces")
	assert.Contains(t, out.String(), "eth0: ip 10.0.0.1, status up")

	out.Reset()
	c.Exec("show ip route")
	assert.Contains(t, out.String(), "10.99.0.0/16 via 10.0.0.2 metric 1")

	out.Reset()
	c.Exec("show ip route-tree")
	assert.Contains(t, out.String(), "[10.99.0.0/16]")

	out.Reset()
	c.Exec("show ip prefix-tree")
	assert.Contains(t, out.String(), "10.0.0.0/8 [block]")

	out.Reset()
	c.Exec("show route avl-stats")
	assert.Contains(t, out.String(), "nodes=1")

	out.Reset()
	c.Exec("btree stats")
	assert.Contains(t, out.String(), "order=4")

	out.Reset()
	c.Exec("show error-log")
	assert.Contains(t, out.String(), "No errors logged")
}

func TestConsole_SnapshotSaveAndLoadByKey(t *testing.T) {
	// GIVEN a console writing into a scratch directory at a fixed time
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	c, out := newTestConsole()
	c.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	c.Exec("enable")
	c.Exec("add_device PC1 host")

	// WHEN saving a snapshot under a key
	c.Exec("save snapshot baseline")
	assert.Contains(t, out.String(), "snapshot baseline -> file: snap_20250314092653.json")

	filename, ok := c.Index.Search("baseline")
	require.True(t, ok)
	assert.Equal(t, "snap_20250314092653.json", filename)

	// AND the topology mutates afterwards
	c.Exec("remove_device PC1")
	require.Nil(t, c.Network.Device("PC1"))

	// THEN loading by key restores the snapshotted topology
	c.Exec("load config baseline")
	assert.NotNil(t, c.Network.Device("PC1"))
}

func TestConsole_LoadUnknownKeyLogsNotFound(t *testing.T) {
	c, out := newTestConsole()
	c.Exec("enable")
	c.Exec("load config nope")

	assert.Contains(t, out.String(), "not found in index")
	recs := c.ErrLog.Tail(1)
	require.Len(t, recs, 1)
	assert.Equal(t, sim.ErrNotFound, recs[0].Kind)
}

func TestConsole_RunReadsUntilExit(t *testing.T) {
	c, out := newTestConsole()
	input := strings.NewReader("enable\nlist_devices\ndisable\nexit\n")

	c.Run(input)

	assert.Contains(t, out.String(), "Devices in the network:")
	assert.Contains(t, out.String(), "Router1 (router) - up")
}

func mustTestAddr(t *testing.T, s string) sim.Addr {
	t.Helper()
	a, err := sim.ParseAddr(s)
	if err != nil {
		t.Fatalf("ParseAddr(%q): %v", s, err)
	}
	return a
}

func mustPolicy(t *testing.T, pt *sim.PolicyTrie, ip string) sim.Policy {
	t.Helper()
	p, ok := pt.LookupPolicy(mustTestAddr(t, ip))
	if !ok {
		t.Fatalf("no policy for %s", ip)
	}
	return p
}
