// ABOUTME: Tests for the shared playback loop
// ABOUTME: Verifies activation, locking, error handling and shutdown
package driver

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 64 frames at 64kHz gives a 1ms period
func testPumpConfig(mixer Mixer, sink Sink) PumpConfig {
	return PumpConfig{
		Mixer:        mixer,
		Sink:         sink,
		BufferFrames: 64,
		Channels:     2,
		MixRate:      64000,
	}
}

func TestPumpPeriod(t *testing.T) {
	p := NewPump(PumpConfig{BufferFrames: 512, Channels: 2, MixRate: 44100})
	require.InDelta(t, 11.61, float64(p.Period())/float64(time.Millisecond), 0.01)
}

func TestPumpInactiveDoesNotMix(t *testing.T) {
	var calls atomic.Int64
	mixer := MixerFunc(func(frames int, out []int32) { calls.Add(1) })
	sink := SinkFunc(func([]int32) error { return nil })

	p := NewPump(testPumpConfig(mixer, sink))
	p.Run()
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	require.Zero(t, calls.Load())
	stats := p.Stats()
	require.Zero(t, stats.Periods)
	require.False(t, stats.Running)
}

func TestPumpActiveMixesIntoSink(t *testing.T) {
	var gotFrames, gotLen atomic.Int64
	mixer := MixerFunc(func(frames int, out []int32) {
		gotFrames.Store(int64(frames))
		gotLen.Store(int64(len(out)))
		for i := range out {
			out[i] = int32(i)
		}
	})

	periods := make(chan []int32, 16)
	sink := SinkFunc(func(samples []int32) error {
		cp := make([]int32, len(samples))
		copy(cp, samples)
		select {
		case periods <- cp:
		default:
		}
		return nil
	})

	p := NewPump(testPumpConfig(mixer, sink))
	p.Run()
	defer p.Stop()
	p.SetActive(true)

	select {
	case got := <-periods:
		require.Len(t, got, 128)
		require.Equal(t, int32(0), got[0])
		require.Equal(t, int32(127), got[127])
		require.Equal(t, int64(64), gotFrames.Load())
		require.Equal(t, int64(128), gotLen.Load())
	case <-time.After(time.Second):
		t.Fatal("no period written")
	}

	stats := p.Stats()
	require.True(t, stats.Active)
	require.True(t, stats.Running)
	require.Equal(t, 64, stats.BufferFrames)
}

func TestPumpLockBlocksMixing(t *testing.T) {
	var calls atomic.Int64
	mixer := MixerFunc(func(frames int, out []int32) { calls.Add(1) })
	sink := SinkFunc(func([]int32) error { return nil })

	p := NewPump(testPumpConfig(mixer, sink))
	p.Run()
	defer p.Stop()

	p.Lock()
	p.SetActive(true)
	time.Sleep(20 * time.Millisecond)
	require.Zero(t, calls.Load())
	p.Unlock()

	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
}

func TestPumpNilMixerWritesSilence(t *testing.T) {
	got := make(chan int32, 1)
	sink := SinkFunc(func(samples []int32) error {
		var sum int32
		for _, s := range samples {
			sum |= s
		}
		select {
		case got <- sum:
		default:
		}
		return nil
	})

	p := NewPump(testPumpConfig(nil, sink))
	p.buf[0] = 42
	p.Run()
	defer p.Stop()
	p.SetActive(true)

	select {
	case sum := <-got:
		require.Zero(t, sum)
	case <-time.After(time.Second):
		t.Fatal("no period written")
	}
}

func TestPumpCountsWriteErrors(t *testing.T) {
	sink := SinkFunc(func([]int32) error { return errors.New("device gone") })

	cfg := testPumpConfig(nil, sink)
	cfg.SinkPaced = true
	p := NewPump(cfg)
	p.Run()
	defer p.Stop()
	p.SetActive(true)

	require.Eventually(t, func() bool { return p.Stats().WriteErrors >= 2 }, time.Second, time.Millisecond)
}

func TestPumpStopWithoutRun(t *testing.T) {
	p := NewPump(testPumpConfig(nil, nil))
	p.Stop()
	require.False(t, p.Stats().Running)
}

func TestPumpStopTwice(t *testing.T) {
	p := NewPump(testPumpConfig(nil, SinkFunc(func([]int32) error { return nil })))
	p.Run()
	p.Stop()
	p.Stop()

	select {
	case <-p.Done():
	default:
		t.Fatal("expected loop to have exited")
	}
}

func TestPumpClocklessPacesOnePeriodPerPeriod(t *testing.T) {
	run := func(freewheel bool) int64 {
		// 480 frames at 48kHz is a 10ms period
		p := NewPump(PumpConfig{
			Sink:         SinkFunc(func([]int32) error { return nil }),
			BufferFrames: 480,
			Channels:     2,
			MixRate:      48000,
			Freewheel:    freewheel,
		})
		p.Run()
		p.SetActive(true)
		time.Sleep(100 * time.Millisecond)
		p.Stop()
		return p.Stats().Periods
	}

	paced := run(false)
	require.GreaterOrEqual(t, paced, int64(3))
	require.LessOrEqual(t, paced, int64(15))

	require.Greater(t, run(true), int64(100))
}

func TestPumpUsesSharedLock(t *testing.T) {
	var mu sync.Mutex
	var calls atomic.Int64

	cfg := testPumpConfig(MixerFunc(func(int, []int32) { calls.Add(1) }), SinkFunc(func([]int32) error { return nil }))
	cfg.Lock = &mu
	p := NewPump(cfg)

	mu.Lock()
	p.Run()
	defer p.Stop()
	p.SetActive(true)
	time.Sleep(10 * time.Millisecond)
	require.Zero(t, calls.Load())

	mu.Unlock()
	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
}
