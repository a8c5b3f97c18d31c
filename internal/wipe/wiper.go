package wipe

import (
	"context"
	"fmt"
	"os"
	"time"

	"blockwipe/internal/device"
	"blockwipe/internal/logging"
)

// Wiper executes the wipe state machine for a single device: precondition
// check, N overwrite passes, optional read-back verification. Strictly
// sequential within one device; concurrency exists only across devices
// (see Fleet).
type Wiper struct {
	oracle     device.Oracle
	logger     *logging.Logger
	bufferSize int64
	progress   ProgressFunc
}

// NewWiper creates a device wiper. logger and progress may be nil.
func NewWiper(oracle device.Oracle, logger *logging.Logger, bufferSize int64, progress ProgressFunc) *Wiper {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Wiper{
		oracle:     oracle,
		logger:     logger,
		bufferSize: bufferSize,
		progress:   progress,
	}
}

// WipeDevice runs one device to a terminal outcome. The mount/in-use gate is
// the only cancellation point: once writing begins the device runs to a
// terminal outcome and is never silently re-attempted.
func (w *Wiper) WipeDevice(ctx context.Context, req Request) *Outcome {
	out := &Outcome{
		Device:    req.DevicePath,
		Passes:    req.Passes,
		StartTime: time.Now(),
	}

	// Defensive: the fleet validates requests before launching workers
	if req.Passes < 1 {
		return w.finish(out, StatusPreconditionFailed, fmt.Sprintf("invalid pass count: %d", req.Passes))
	}

	if err := ctx.Err(); err != nil {
		return w.finish(out, StatusPreconditionFailed, "cancelled before start")
	}

	mounted, err := w.oracle.IsMounted(req.DevicePath)
	if err != nil {
		return w.finish(out, StatusPreconditionFailed, fmt.Sprintf("mount check failed: %v", err))
	}
	if mounted {
		return w.finish(out, StatusPreconditionFailed, "device is mounted")
	}

	inUse, err := w.oracle.IsInUse(req.DevicePath)
	if err != nil {
		return w.finish(out, StatusPreconditionFailed, fmt.Sprintf("in-use check failed: %v", err))
	}
	if inUse {
		return w.finish(out, StatusPreconditionFailed, "device is held open by another process")
	}

	// Size is resolved once and held fixed for the lifetime of the wipe
	desc, err := device.Describe(w.oracle, req.DevicePath)
	if err != nil {
		return w.finish(out, StatusPreconditionFailed, err.Error())
	}

	w.log("INFO", "Starting wipe",
		"device", req.DevicePath,
		"size", desc.TotalBytes,
		"pattern", req.Pattern,
		"passes", req.Passes,
		"verify", req.Verify)

	f, err := os.OpenFile(req.DevicePath, os.O_WRONLY, 0)
	if err != nil {
		return w.finish(out, StatusIoFailure, fmt.Sprintf("failed to open device: %v", err))
	}

	// The filler is owned by this worker; random streams are independent
	// per device
	writer := NewPassWriter(NewFiller(req.Pattern), w.bufferSize, w.progress)

	for pass := 1; pass <= req.Passes; pass++ {
		w.log("INFO", "Overwrite pass", "device", req.DevicePath, "pass", pass, "total", req.Passes)

		n, err := writer.WritePass(f, desc, pass, req.Passes)
		out.BytesWritten += n
		if err != nil {
			f.Close()
			return w.finish(out, StatusIoFailure, fmt.Sprintf("pass %d: %v", pass, err))
		}
	}

	if err := f.Close(); err != nil {
		return w.finish(out, StatusIoFailure, fmt.Sprintf("failed to close device: %v", err))
	}

	if req.Verify {
		res, err := w.verify(desc, req.Pattern)
		if err != nil {
			return w.finish(out, StatusIoFailure, fmt.Sprintf("verification read: %v", err))
		}

		if res.Skipped {
			out.VerifySkipped = true
			w.log("WARN", "Verification of random fill is not supported, result inconclusive", "device", req.DevicePath)
		} else if !res.OK {
			out.MismatchOffset = res.MismatchOffset
			return w.finish(out, StatusVerificationFailed,
				fmt.Sprintf("non-zero byte at offset %d", res.MismatchOffset))
		}
	}

	return w.finish(out, StatusSuccess, "")
}

// verify re-reads the device through a freshly opened read-only handle; the
// verifier seeks to the start before reading
func (w *Wiper) verify(desc device.Descriptor, kind PatternKind) (VerifyResult, error) {
	f, err := os.Open(desc.Path)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to reopen device: %w", err)
	}
	defer f.Close()

	return NewVerifier(w.bufferSize).Verify(f, desc, kind)
}

func (w *Wiper) finish(out *Outcome, status Status, reason string) *Outcome {
	out.Status = status
	out.Reason = reason
	out.EndTime = time.Now()

	if d := out.EndTime.Sub(out.StartTime).Seconds(); d > 0 {
		out.SpeedMBps = float64(out.BytesWritten) / (1024 * 1024) / d
	}

	switch status {
	case StatusSuccess:
		w.log("INFO", "Wipe complete", "device", out.Device, "bytes", out.BytesWritten, "speed_mbps", fmt.Sprintf("%.1f", out.SpeedMBps))
	default:
		w.log("ERROR", "Wipe failed", "device", out.Device, "status", status, "reason", reason)
	}

	return out
}

func (w *Wiper) log(level, msg string, fields ...interface{}) {
	if w.logger != nil {
		w.logger.Log(level, msg, fields...)
	}
}
