// ABOUTME: Sine wave test tone source
// ABOUTME: Generates a fixed-frequency tone at half scale on every channel
package source

import (
	"math"
	"sync"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
)

// DefaultToneFrequency is A4
const DefaultToneFrequency = 440.0

// ToneSource generates an endless sine wave
type ToneSource struct {
	sampleIndex uint64
	sampleMu    sync.Mutex
	frequency   float64
	sampleRate  int
	channels    int
}

// NewToneSource creates a tone generator. Zero arguments take the
// defaults (440Hz, 44.1kHz, stereo).
func NewToneSource(frequency float64, sampleRate, channels int) *ToneSource {
	if frequency <= 0 {
		frequency = DefaultToneFrequency
	}
	if sampleRate == 0 {
		sampleRate = 44100
	}
	if channels == 0 {
		channels = 2
	}

	return &ToneSource{
		frequency:  frequency,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (s *ToneSource) Read(samples []int32) (int, error) {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	numFrames := len(samples) / s.channels

	for i := 0; i < numFrames; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		sample := math.Sin(2 * math.Pi * s.frequency * t)

		// 50% volume to leave headroom
		pcmValue := int32(sample * audio.Max24Bit * 0.5)

		for ch := 0; ch < s.channels; ch++ {
			samples[i*s.channels+ch] = pcmValue
		}
	}

	s.sampleIndex += uint64(numFrames)

	return numFrames * s.channels, nil
}

func (s *ToneSource) SampleRate() int { return s.sampleRate }
func (s *ToneSource) Channels() int   { return s.channels }
func (s *ToneSource) Metadata() (string, string, string) {
	return "Test Tone", "Resonate", "Test Signal"
}
func (s *ToneSource) Close() error { return nil }
