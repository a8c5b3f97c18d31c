package wipe

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	kind, err := ParsePattern("zero")
	require.NoError(t, err)
	assert.Equal(t, PatternZero, kind)

	kind, err = ParsePattern("random")
	require.NoError(t, err)
	assert.Equal(t, PatternRandom, kind)

	_, err = ParsePattern("dod5220")
	assert.Error(t, err)

	_, err = ParsePattern("")
	assert.Error(t, err)
}

func TestFillerZeroClearsBuffer(t *testing.T) {
	f := NewFiller(PatternZero)

	buf := bytes.Repeat([]byte{0xFF}, 4096)
	require.NoError(t, f.Fill(buf))

	assert.Equal(t, make([]byte, 4096), buf)
	assert.True(t, f.Deterministic())
}

func TestFillerRandomRedrawsEveryCall(t *testing.T) {
	f := NewFiller(PatternRandom)

	first := make([]byte, 128)
	second := make([]byte, 128)
	require.NoError(t, f.Fill(first))
	require.NoError(t, f.Fill(second))

	assert.NotEqual(t, first, second)
	assert.False(t, f.Deterministic())
}
