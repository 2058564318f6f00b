// ABOUTME: Tests for the oto driver stream reader
// ABOUTME: Exercises mixing through io.Reader without opening a device
package oto

import (
	"encoding/binary"
	"testing"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
	"github.com/stretchr/testify/require"
)

func TestDriverImplementsInterface(t *testing.T) {
	var _ driver.Driver = (*Driver)(nil)
	require.Equal(t, "oto", New().Name())
}

func TestStreamReadEncodesS16LE(t *testing.T) {
	mixer := driver.MixerFunc(func(frames int, out []int32) {
		for i := range out {
			out[i] = audio.SampleFromInt16(int16(-100 - i%2))
		}
	})
	cb := driver.NewCallback(mixer, nil, 64, 2)
	cb.SetActive(true)
	s := newStream(cb, 2)

	// 100 frames plus a partial frame
	p := make([]byte, 100*4+3)
	n, err := s.Read(p)
	require.NoError(t, err)
	require.Equal(t, 400, n)

	require.Equal(t, int16(-100), int16(binary.LittleEndian.Uint16(p[0:])))
	require.Equal(t, int16(-101), int16(binary.LittleEndian.Uint16(p[2:])))
	require.Equal(t, int16(-101), int16(binary.LittleEndian.Uint16(p[398:])))
	require.Equal(t, int64(2), cb.Stats().Periods)
}

func TestStreamReadSilentBeforeStart(t *testing.T) {
	mixer := driver.MixerFunc(func(frames int, out []int32) {
		for i := range out {
			out[i] = audio.Max24Bit
		}
	})
	s := newStream(driver.NewCallback(mixer, nil, 64, 2), 2)

	p := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	n, err := s.Read(p)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, make([]byte, 8), p)
}

func TestStreamReadShortBuffer(t *testing.T) {
	s := newStream(driver.NewCallback(nil, nil, 64, 2), 2)
	n, err := s.Read(make([]byte, 3))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStatsBeforeInit(t *testing.T) {
	d := New()
	require.Equal(t, driver.Stats{}, d.Stats())
	d.Lock()
	d.Unlock()
	d.Finish()
}
