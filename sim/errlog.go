// ErrorLog is the bounded in-memory log every drop, validation failure
// and persistence failure is reported to. It is a FIFO: once capacity
// is reached the oldest record is evicted.

package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorKind is the failure taxonomy shared by the engine and the CLI.
type ErrorKind string

const (
	ErrValidation      ErrorKind = "ValidationError"
	ErrNotFound        ErrorKind = "NotFoundError"
	ErrPolicyViolation ErrorKind = "PolicyViolation"
	ErrRouting         ErrorKind = "RoutingError"
	ErrForwarding      ErrorKind = "ForwardingError"
	ErrTTLExpired      ErrorKind = "TTLExpired"
	ErrPersistence     ErrorKind = "PersistenceError"
)

// ErrorRecord is one logged failure.
type ErrorRecord struct {
	Timestamp string    `json:"timestamp"`
	Kind      ErrorKind `json:"type"`
	Message   string    `json:"message"`
	Command   string    `json:"command,omitempty"`
}

func (r ErrorRecord) String() string {
	cmd := ""
	if r.Command != "" {
		cmd = fmt.Sprintf(" (command: %s)", r.Command)
	}
	return fmt.Sprintf("[%s] %s: %s%s", r.Timestamp, r.Kind, r.Message, cmd)
}

// DefaultErrorLogCapacity bounds the log when no capacity is given.
const DefaultErrorLogCapacity = 256

// ErrorLog is a capacity-bounded FIFO of error records.
type ErrorLog struct {
	records  []ErrorRecord
	capacity int
}

// NewErrorLog creates a log holding at most capacity records;
// non-positive capacities fall back to the default.
func NewErrorLog(capacity int) *ErrorLog {
	if capacity <= 0 {
		capacity = DefaultErrorLogCapacity
	}
	return &ErrorLog{capacity: capacity}
}

// Log appends a record, evicting the oldest when full. command may be
// empty when the failure did not originate from a CLI command.
func (el *ErrorLog) Log(kind ErrorKind, message, command string) {
	rec := ErrorRecord{
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		Kind:      kind,
		Message:   message,
		Command:   command,
	}
	el.records = append(el.records, rec)
	if len(el.records) > el.capacity {
		el.records = el.records[len(el.records)-el.capacity:]
	}
	logrus.Debugf("error-log: %s", rec)
}

// Len returns the number of retained records.
func (el *ErrorLog) Len() int {
	return len(el.records)
}

// Tail returns the last n records in insertion order; n <= 0 returns
// all of them.
func (el *ErrorLog) Tail(n int) []ErrorRecord {
	if n <= 0 || n > len(el.records) {
		n = len(el.records)
	}
	out := make([]ErrorRecord, n)
	copy(out, el.records[len(el.records)-n:])
	return out
}

// SaveJSON writes all records to filename.
func (el *ErrorLog) SaveJSON(filename string) error {
	data, err := json.MarshalIndent(el.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal error log: %w", err)
	}
	return os.WriteFile(filename, data, 0o644)
}

// LoadJSON appends the records stored in filename. A missing file is
// not an error.
func (el *ErrorLog) LoadJSON(filename string) error {
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var recs []ErrorRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("parse error log %s: %w", filename, err)
	}
	for _, r := range recs {
		el.records = append(el.records, r)
		if len(el.records) > el.capacity {
			el.records = el.records[1:]
		}
	}
	return nil
}
