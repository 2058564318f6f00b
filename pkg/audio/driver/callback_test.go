// ABOUTME: Tests for the pull-based mixing helper
// ABOUTME: Verifies period splitting and silence while inactive
package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallbackSplitsIntoPeriods(t *testing.T) {
	var requested []int
	mixer := MixerFunc(func(frames int, out []int32) {
		requested = append(requested, frames)
		for i := range out {
			out[i] = 7
		}
	})

	c := NewCallback(mixer, nil, 256, 2)
	c.SetActive(true)

	var offsets []int
	total := 0
	c.Fill(600, func(offset int, samples []int32) {
		offsets = append(offsets, offset)
		total += len(samples)
		require.Equal(t, int32(7), samples[len(samples)-1])
	})

	require.Equal(t, []int{256, 256, 88}, requested)
	require.Equal(t, []int{0, 256, 512}, offsets)
	require.Equal(t, 1200, total)

	stats := c.Stats()
	require.Equal(t, int64(600), stats.FramesMixed)
	require.Equal(t, int64(3), stats.Periods)
	require.True(t, stats.Active)
}

func TestCallbackInactiveEmitsSilence(t *testing.T) {
	called := false
	mixer := MixerFunc(func(int, []int32) { called = true })

	c := NewCallback(mixer, nil, 64, 2)
	c.buf[0] = 99

	c.Fill(64, func(offset int, samples []int32) {
		require.Zero(t, samples[0])
	})

	require.False(t, called)
	require.Zero(t, c.Stats().Periods)
}
