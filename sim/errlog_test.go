package sim

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorLog_EvictsOldestAtCapacity(t *testing.T) {
	// GIVEN a log bounded to 3 records
	el := NewErrorLog(3)
	for i := 0; i < 5; i++ {
		el.Log(ErrRouting, fmt.Sprintf("msg-%d", i), "")
	}

	// THEN only the 3 newest survive
	assert.Equal(t, 3, el.Len())
	recs := el.Tail(0)
	assert.Equal(t, "msg-2", recs[0].Message)
	assert.Equal(t, "msg-4", recs[2].Message)
}

func TestErrorLog_Tail(t *testing.T) {
	el := NewErrorLog(10)
	for i := 0; i < 4; i++ {
		el.Log(ErrValidation, fmt.Sprintf("msg-%d", i), "cmd")
	}

	last2 := el.Tail(2)
	assert.Len(t, last2, 2)
	assert.Equal(t, "msg-2", last2[0].Message)
	assert.Equal(t, "msg-3", last2[1].Message)

	// Asking for more than exists returns everything.
	assert.Len(t, el.Tail(100), 4)
}

func TestErrorLog_DefaultCapacity(t *testing.T) {
	el := NewErrorLog(0)
	for i := 0; i < DefaultErrorLogCapacity+10; i++ {
		el.Log(ErrForwarding, "x", "")
	}
	assert.Equal(t, DefaultErrorLogCapacity, el.Len())
}

func TestErrorLog_SaveLoadRoundTrip(t *testing.T) {
	// GIVEN a log with a couple of records saved to disk
	dir := t.TempDir()
	path := filepath.Join(dir, "errors.json")
	el := NewErrorLog(10)
	el.Log(ErrPolicyViolation, "blocked", "send 10.0.0.1 10.0.0.2 hi")
	el.Log(ErrTTLExpired, "expired", "")
	if err := el.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	// WHEN loading into a fresh log
	loaded := NewErrorLog(10)
	if err := loaded.LoadJSON(path); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	// THEN kinds, messages and commands survive
	recs := loaded.Tail(0)
	assert.Len(t, recs, 2)
	assert.Equal(t, ErrPolicyViolation, recs[0].Kind)
	assert.Equal(t, "send 10.0.0.1 10.0.0.2 hi", recs[0].Command)
	assert.Equal(t, ErrTTLExpired, recs[1].Kind)
}

func TestErrorLog_LoadMissingFileIsNoOp(t *testing.T) {
	el := NewErrorLog(10)
	err := el.LoadJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, err)
	assert.Equal(t, 0, el.Len())
}
