// ABOUTME: Streaming linear resampler for interleaved int32 audio
// ABOUTME: Carries the last frame across chunks so boundaries interpolate cleanly
package resample

// Resampler performs linear interpolation to convert between sample rates.
// Position is measured in frames where 0 is the last frame of the previous
// chunk and 1 is the first frame of the current one.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
	lastFrame  []int32 // one sample per channel
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   1.0,
		lastFrame:  make([]int32, channels),
	}
}

// Resample converts input samples to the output rate and returns the
// number of output samples written. All whole input frames are consumed;
// output must hold MaxOutputSamples(len(input)) samples or the tail of the
// chunk is dropped.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		idx := int(r.position)
		if idx >= inputFrames {
			break
		}
		frac := r.position - float64(idx)

		for ch := 0; ch < r.channels; ch++ {
			var sample1 int32
			if idx == 0 {
				sample1 = r.lastFrame[ch]
			} else {
				sample1 = input[(idx-1)*r.channels+ch]
			}
			sample2 := input[idx*r.channels+ch]

			interpolated := float64(sample1)*(1.0-frac) + float64(sample2)*frac
			output[outIdx*r.channels+ch] = int32(interpolated)
		}

		outIdx++
		r.position += r.ratio
	}

	copy(r.lastFrame, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.position -= float64(inputFrames)
	if r.position < 0 {
		r.position = 0
	}

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 1.0
	for i := range r.lastFrame {
		r.lastFrame[i] = 0
	}
}

// Ratio returns input frames consumed per output frame
func (r *Resampler) Ratio() float64 {
	return r.ratio
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// MaxOutputSamples is the largest output a single Resample call can
// produce from inputSamples
func (r *Resampler) MaxOutputSamples(inputSamples int) int {
	return r.OutputSamplesNeeded(inputSamples) + 2*r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	if inputFrames < 1 {
		inputFrames = 1
	}
	return inputFrames * r.channels
}
