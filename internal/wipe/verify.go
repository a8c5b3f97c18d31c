package wipe

import (
	"fmt"
	"io"

	"blockwipe/internal/device"
)

// VerifyResult is the outcome of a read-back verification pass
type VerifyResult struct {
	OK             bool
	Skipped        bool   // random fill: inconclusive, never a failure
	MismatchOffset uint64 // byte offset of the first non-zero byte
}

// Verifier re-reads a device in fixed-size chunks and checks that the
// content matches the expected deterministic pattern
type Verifier struct {
	buf []byte
}

// NewVerifier creates a verifier with a fixed-size read buffer
func NewVerifier(bufferSize int64) *Verifier {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Verifier{buf: make([]byte, bufferSize)}
}

// Verify checks device content against the expected pattern. Random fill is
// unverifiable by design and reports inconclusive regardless of the actual
// content. Zero fill is scanned sequentially from offset 0 over exactly
// desc.TotalBytes; scanning stops at the first non-zero byte.
func (v *Verifier) Verify(r io.ReadSeeker, desc device.Descriptor, kind PatternKind) (VerifyResult, error) {
	if kind == PatternRandom {
		return VerifyResult{OK: true, Skipped: true}, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return VerifyResult{}, fmt.Errorf("seek to start failed: %w", err)
	}

	var read uint64
	for read < desc.TotalBytes {
		remaining := desc.TotalBytes - read
		toRead := len(v.buf)
		if remaining < uint64(toRead) {
			toRead = int(remaining)
		}

		if _, err := io.ReadFull(r, v.buf[:toRead]); err != nil {
			return VerifyResult{}, fmt.Errorf("read failed at offset %d: %w", read, err)
		}

		if i := firstNonZero(v.buf[:toRead]); i >= 0 {
			return VerifyResult{MismatchOffset: read + uint64(i)}, nil
		}

		read += uint64(toRead)
	}

	return VerifyResult{OK: true}, nil
}

func firstNonZero(b []byte) int {
	for i, c := range b {
		if c != 0 {
			return i
		}
	}
	return -1
}
