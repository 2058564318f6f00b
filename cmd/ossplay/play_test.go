// ABOUTME: Tests for playback session helpers
// ABOUTME: Covers source creation at the driver's negotiated format
package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/source"
)

func TestToneOpenerUsesDriverFormat(t *testing.T) {
	src, err := toneOpener(440)(48000, 6)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, 48000, src.SampleRate())
	require.Equal(t, 6, src.Channels())

	// already in the driver's format, so nothing is wrapped around it
	require.Same(t, src, source.Prepare(src, 48000, 6))
}
