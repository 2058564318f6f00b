// ABOUTME: Source wrappers that adapt rate and channel layout
// ABOUTME: ResampledSource converts the rate, Remix maps channels onto the speaker mode
package source

import (
	"io"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/resample"
)

// ResampledSource wraps a Source and resamples to a target sample rate
type ResampledSource struct {
	source     Source
	resampler  *resample.Resampler
	targetRate int
	input      []int32
	output     []int32
	pending    []int32
	eof        bool
}

// NewResampledSource creates a resampling wrapper around a source
func NewResampledSource(source Source, targetRate int) *ResampledSource {
	inputRate := source.SampleRate()
	channels := source.Channels()
	r := resample.New(inputRate, targetRate, channels)

	// 100ms input chunks
	inputSamples := (inputRate * channels * 100) / 1000
	inputSamples -= inputSamples % channels
	if inputSamples < channels {
		inputSamples = channels
	}

	return &ResampledSource{
		source:     source,
		resampler:  r,
		targetRate: targetRate,
		input:      make([]int32, inputSamples),
		output:     make([]int32, r.MaxOutputSamples(inputSamples)),
	}
}

func (r *ResampledSource) Read(samples []int32) (int, error) {
	written := 0

	for written < len(samples) {
		if len(r.pending) > 0 {
			n := copy(samples[written:], r.pending)
			r.pending = r.pending[n:]
			written += n
			continue
		}
		if r.eof {
			break
		}

		needed := r.resampler.InputSamplesNeeded(len(samples) - written)
		if needed > len(r.input) {
			needed = len(r.input)
		}

		n, err := r.source.Read(r.input[:needed])
		if n > 0 {
			produced := r.resampler.Resample(r.input[:n], r.output)
			r.pending = r.output[:produced]
		}
		if err == io.EOF {
			r.eof = true
			continue
		}
		if err != nil {
			return written, err
		}
		if n == 0 {
			// Source has nothing right now
			break
		}
	}

	if written == 0 && r.eof {
		return 0, io.EOF
	}
	return written, nil
}

func (r *ResampledSource) SampleRate() int {
	return r.targetRate
}

func (r *ResampledSource) Channels() int {
	return r.source.Channels()
}

func (r *ResampledSource) Metadata() (string, string, string) {
	return r.source.Metadata()
}

func (r *ResampledSource) Close() error {
	return r.source.Close()
}

// Remix maps a source's channels onto a different channel count. Mono is
// copied to every output channel; otherwise channels are matched by index,
// extra output channels are silent and extra input channels are dropped.
type Remix struct {
	source   Source
	channels int
	buf      []int32
}

// NewRemix creates a channel-mapping wrapper around a source
func NewRemix(source Source, channels int) *Remix {
	return &Remix{source: source, channels: channels}
}

func (m *Remix) Read(samples []int32) (int, error) {
	inCh := m.source.Channels()
	frames := len(samples) / m.channels
	if cap(m.buf) < frames*inCh {
		m.buf = make([]int32, frames*inCh)
	}
	in := m.buf[:frames*inCh]

	n, err := m.source.Read(in)
	got := n / inCh

	for f := 0; f < got; f++ {
		for ch := 0; ch < m.channels; ch++ {
			var v int32
			switch {
			case inCh == 1:
				v = in[f]
			case ch < inCh:
				v = in[f*inCh+ch]
			}
			samples[f*m.channels+ch] = v
		}
	}

	return got * m.channels, err
}

func (m *Remix) SampleRate() int { return m.source.SampleRate() }
func (m *Remix) Channels() int   { return m.channels }
func (m *Remix) Metadata() (string, string, string) {
	return m.source.Metadata()
}
func (m *Remix) Close() error { return m.source.Close() }
