package wipe

import (
	"fmt"
	"io"

	"blockwipe/internal/device"
)

// DefaultBufferSize is the streaming write buffer (1 MiB)
const DefaultBufferSize = 1024 * 1024

// DeviceHandle is the open device surface the pass writer and verifier need.
// *os.File satisfies it.
type DeviceHandle interface {
	io.Writer
	io.Seeker
	Sync() error
}

// PassWriter streams a fill buffer across a device's full extent. The buffer
// is allocated once and reused for every pass to bound memory use.
type PassWriter struct {
	filler   *Filler
	buf      []byte
	progress ProgressFunc
}

// NewPassWriter creates a pass writer with a fixed-size buffer
func NewPassWriter(filler *Filler, bufferSize int64, progress ProgressFunc) *PassWriter {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &PassWriter{
		filler:   filler,
		buf:      make([]byte, bufferSize),
		progress: progress,
	}
}

// WritePass writes one full pass from offset 0 until exactly
// desc.TotalBytes have been written; the final chunk is truncated to the
// remaining byte count. After the extent is covered the data is flushed and
// the handle repositioned to offset 0 for the next pass. Returns the bytes
// written, which on error reflects how far the pass got.
func (pw *PassWriter) WritePass(h DeviceHandle, desc device.Descriptor, pass, totalPasses int) (uint64, error) {
	if _, err := h.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to start failed: %w", err)
	}

	// Zero fill never changes; generate it once per pass
	if pw.filler.Deterministic() {
		if err := pw.filler.Fill(pw.buf); err != nil {
			return 0, err
		}
	}

	var written uint64
	for written < desc.TotalBytes {
		remaining := desc.TotalBytes - written
		toWrite := len(pw.buf)
		if remaining < uint64(toWrite) {
			toWrite = int(remaining)
		}
		chunk := pw.buf[:toWrite]

		// Random fill is redrawn before every write
		if !pw.filler.Deterministic() {
			if err := pw.filler.Fill(chunk); err != nil {
				return written, err
			}
		}

		off := 0
		for off < toWrite {
			n, err := h.Write(chunk[off:])
			if n > 0 {
				off += n
				written += uint64(n)
			}
			if err != nil {
				return written, fmt.Errorf("write failed at offset %d: %w", written, err)
			}
			if n == 0 {
				return written, fmt.Errorf("write returned 0 bytes without error")
			}
		}

		pw.report(desc, pass, totalPasses, written)
	}

	if err := h.Sync(); err != nil {
		return written, fmt.Errorf("sync failed: %w", err)
	}

	if _, err := h.Seek(0, io.SeekStart); err != nil {
		return written, fmt.Errorf("seek to start failed: %w", err)
	}

	return written, nil
}

func (pw *PassWriter) report(desc device.Descriptor, pass, totalPasses int, written uint64) {
	if pw.progress == nil {
		return
	}

	percent := float64(written) / float64(desc.TotalBytes) * 100

	pw.progress(Progress{
		Device:       desc.Path,
		Pass:         pass,
		TotalPasses:  totalPasses,
		BytesWritten: written,
		TotalBytes:   desc.TotalBytes,
		Percent:      percent,
	})
}
