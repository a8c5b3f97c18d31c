package wipe

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Filler produces fill content for overwrite passes. Each device worker owns
// its own Filler, so pattern streams are decorrelated across devices and no
// state is shared between workers.
type Filler struct {
	kind PatternKind
	src  io.Reader
}

// NewFiller returns a filler drawing random content from crypto/rand
func NewFiller(kind PatternKind) *Filler {
	return &Filler{kind: kind, src: rand.Reader}
}

// Fill overwrites the full length of the buffer in place. Random content is
// redrawn on every call, so no byte sequence repeats across writes or passes.
func (f *Filler) Fill(buf []byte) error {
	switch f.kind {
	case PatternRandom:
		if _, err := io.ReadFull(f.src, buf); err != nil {
			return fmt.Errorf("failed to generate random data: %w", err)
		}
	default:
		for i := range buf {
			buf[i] = 0
		}
	}
	return nil
}

// Deterministic reports whether written content can be checked by re-reading
func (f *Filler) Deterministic() bool {
	return f.kind == PatternZero
}
