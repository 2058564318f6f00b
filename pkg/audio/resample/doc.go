// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts source audio to the driver mix rate
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling, and keeps state between
// chunks so a stream can be fed in pieces.
//
// Example:
//
//	r := resample.New(48000, 44100, 2)
//	out := make([]int32, r.MaxOutputSamples(len(in)))
//	n := r.Resample(in, out)
package resample
