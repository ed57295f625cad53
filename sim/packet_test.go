package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacket_HopRecordsPathAndSpendsTTL(t *testing.T) {
	// GIVEN a fresh packet with ttl 3
	p := NewPacket(mustAddr(t, "10.0.0.1"), mustAddr(t, "10.0.0.2"), "hello", 3)
	assert.NotEmpty(t, p.ID)

	// WHEN it hops through two devices
	p.Hop("A")
	p.Hop("B")

	// THEN the path and ttl reflect both hops
	assert.Equal(t, []string{"A", "B"}, p.Path)
	assert.Equal(t, 1, p.TTL)
	assert.False(t, p.Expired())

	p.Hop("C")
	assert.True(t, p.Expired())
}

func TestPacket_UniqueIDs(t *testing.T) {
	a := NewPacket(0, 0, "", 1)
	b := NewPacket(0, 0, "", 1)
	if a.ID == b.ID {
		t.Errorf("two packets share ID %s", a.ID)
	}
}
