package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScenario = `
devices:
  - name: A
    type: router
    interfaces:
      - name: a0
        ip: 10.0.0.1
  - name: B
    type: host
    interfaces:
      - name: b0
        ip: 10.0.0.2
links:
  - from: A
    from_iface: a0
    to: B
    to_iface: b0
routes:
  - device: A
    prefix: 10.99.0.0
    mask: 255.255.0.0
    via: 10.0.0.2
    metric: 2
policies:
  - device: A
    prefix: 172.16.0.0
    mask: /12
    type: block
sends:
  - from: 10.0.0.1
    to: 10.0.0.2
    payload: hello
ticks: 3
`

func TestLoadScenario_ParsesYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScenario), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, sc.Devices, 2)
	assert.Len(t, sc.Links, 1)
	assert.Equal(t, 3, sc.Ticks)
	assert.Equal(t, "hello", sc.Sends[0].Payload)
}

func TestScenario_BuildAndRunDelivers(t *testing.T) {
	// GIVEN the sample two-device scenario
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScenario), 0o644))
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	// WHEN built and run
	nw, err := sc.Build(NewErrorLog(16))
	require.NoError(t, err)
	require.NoError(t, sc.Run(nw))

	// THEN the scripted send is delivered within the tick budget
	assert.Equal(t, 1, nw.Stats.PacketsSent)
	assert.Equal(t, 1, nw.Stats.PacketsDelivered)
	assert.Equal(t, 3, nw.Stats.Ticks)

	// AND the declared route and policy landed on device A
	a := nw.Device("A")
	_, ok := a.Routes.Lookup(mustAddr(t, "10.99.5.5"))
	assert.True(t, ok)
	p, ok := a.Policies.LookupPolicy(mustAddr(t, "172.16.9.9"))
	assert.True(t, ok)
	assert.Equal(t, PolicyBlock, p.Type)
}

func TestScenario_Build_RejectsBadDeviceType(t *testing.T) {
	sc := &Scenario{Devices: []ScenarioDevice{{Name: "X", Type: "mainframe"}}}
	_, err := sc.Build(nil)
	assert.Error(t, err)
}

func TestScenario_Build_RejectsUnknownLinkEndpoint(t *testing.T) {
	sc := &Scenario{
		Devices: []ScenarioDevice{{Name: "A", Type: "router"}},
		Links:   []ScenarioLink{{From: "A", FromIface: "a0", To: "ghost", ToIface: "g0"}},
	}
	_, err := sc.Build(nil)
	assert.Error(t, err)
}

func TestScenario_Run_BadSendIsLoggedNotFatal(t *testing.T) {
	// GIVEN a scenario whose send names an address nobody owns
	sc := &Scenario{
		Devices: []ScenarioDevice{{
			Name: "A", Type: "router",
			Interfaces: []ScenarioInterface{{Name: "a0", IP: "10.0.0.1"}},
		}},
		Sends: []ScenarioSend{{From: "192.0.2.1", To: "10.0.0.1", Payload: "x"}},
		Ticks: 1,
	}
	nw, err := sc.Build(NewErrorLog(16))
	require.NoError(t, err)

	// WHEN run
	require.NoError(t, sc.Run(nw))

	// THEN the failure lands in the error log and the run completes
	assert.Equal(t, 0, nw.Stats.PacketsSent)
	assert.Equal(t, 1, nw.ErrLog.Len())
	assert.Equal(t, ErrValidation, nw.ErrLog.Tail(1)[0].Kind)
}
