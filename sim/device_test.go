package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketQueue_FIFO(t *testing.T) {
	// GIVEN packets enqueued in order [A, B]
	var pq PacketQueue
	pa := NewPacket(0, 0, "a", 1)
	pb := NewPacket(0, 0, "b", 1)
	pq.Enqueue(pa)
	pq.Enqueue(pb)

	// WHEN dequeuing
	if got := pq.Dequeue(); got != pa {
		t.Errorf("first Dequeue: got %v, want a", got)
	}
	if got := pq.Dequeue(); got != pb {
		t.Errorf("second Dequeue: got %v, want b", got)
	}

	// THEN the empty queue yields nil
	if got := pq.Dequeue(); got != nil {
		t.Errorf("Dequeue on empty: got %v, want nil", got)
	}
}

func TestPacketQueue_PeekDoesNotRemove(t *testing.T) {
	var pq PacketQueue
	assert.Nil(t, pq.Peek())
	p := NewPacket(0, 0, "x", 1)
	pq.Enqueue(p)
	assert.Equal(t, p, pq.Peek())
	assert.Equal(t, 1, pq.Len())
}

func TestDevice_AddInterface_DuplicateNameRejected(t *testing.T) {
	d := NewDevice("R1", KindRouter)
	assert.NoError(t, d.AddInterface(NewInterface("eth0")))
	assert.Error(t, d.AddInterface(NewInterface("eth0")))
	assert.Len(t, d.Interfaces, 1)
}

func TestDevice_SetStatus(t *testing.T) {
	d := NewDevice("R1", KindRouter)
	assert.NoError(t, d.SetStatus(StatusDown))
	assert.Equal(t, StatusDown, d.Status)
	assert.Error(t, d.SetStatus("flapping"))
}

func TestInterface_ConnectTo_SymmetricAndIdempotent(t *testing.T) {
	// GIVEN two interfaces
	a := NewInterface("a")
	b := NewInterface("b")

	// WHEN connected twice
	a.ConnectTo(b)
	a.ConnectTo(b)

	// THEN each sees the other exactly once
	assert.Equal(t, []*Interface{b}, a.Neighbors())
	assert.Equal(t, []*Interface{a}, b.Neighbors())

	// AND disconnect removes both directions
	a.DisconnectFrom(b)
	assert.Empty(t, a.Neighbors())
	assert.Empty(t, b.Neighbors())
}

func TestDevice_HistoryMostRecentFirst(t *testing.T) {
	d := NewDevice("R1", KindRouter)
	first := NewPacket(0, 0, "first", 1)
	second := NewPacket(0, 0, "second", 1)
	d.Receive(first)
	d.Receive(second)

	h := d.History()
	if len(h) != 2 || h[0] != second || h[1] != first {
		t.Errorf("History: got %v, want [second, first]", h)
	}
}

func TestValidDeviceKind(t *testing.T) {
	for _, k := range []string{"router", "switch", "host", "firewall"} {
		assert.True(t, ValidDeviceKind(k), k)
	}
	assert.False(t, ValidDeviceKind("toaster"))
}
