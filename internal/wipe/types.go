package wipe

import (
	"fmt"
	"time"
)

// PatternKind selects the fill content for overwrite passes
type PatternKind string

const (
	// PatternZero fills every byte with 0; verifiable by re-reading
	PatternZero PatternKind = "zero"

	// PatternRandom fills with cryptographically unpredictable bytes;
	// not verifiable by design
	PatternRandom PatternKind = "random"
)

// ParsePattern validates a pattern name from config or CLI
func ParsePattern(s string) (PatternKind, error) {
	switch PatternKind(s) {
	case PatternZero, PatternRandom:
		return PatternKind(s), nil
	default:
		return "", fmt.Errorf("unsupported wipe pattern: %s", s)
	}
}

// Request describes one device wipe. Immutable once constructed; one
// instance per device, independent of all others.
type Request struct {
	DevicePath string
	Pattern    PatternKind
	Passes     int
	Verify     bool
}

// Status is the terminal state of a device wipe
type Status string

const (
	StatusSuccess            Status = "SUCCESS"
	StatusPreconditionFailed Status = "PRECONDITION_FAILED"
	StatusIoFailure          Status = "IO_FAILURE"
	StatusVerificationFailed Status = "VERIFICATION_FAILED"
)

// Outcome is the terminal result for one device. Produced exactly once per
// request and never mutated after the wipe finishes.
type Outcome struct {
	Device         string
	Status         Status
	Reason         string // set for failures
	MismatchOffset uint64 // set for VERIFICATION_FAILED
	VerifySkipped  bool   // random fill: verification inconclusive
	BytesWritten   uint64
	Passes         int
	StartTime      time.Time
	EndTime        time.Time
	SpeedMBps      float64
}

// Failed reports whether the outcome is anything but success
func (o *Outcome) Failed() bool {
	return o.Status != StatusSuccess
}

// Progress is a transient per-device counter, owned by a single worker and
// reset at the start of each pass
type Progress struct {
	Device       string
	Pass         int
	TotalPasses  int
	BytesWritten uint64
	TotalBytes   uint64
	Percent      float64
}

// ProgressFunc receives progress after every buffer write. The core never
// renders progress itself; the CLI supplies the sink. May be nil.
type ProgressFunc func(Progress)
