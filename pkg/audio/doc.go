// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines SpeakerMode, buffer sizing and sample conversion functions
// Package audio provides the types shared between a mixer and the output
// drivers that play its samples.
//
// Samples travel as interleaved int32 values in 24-bit range. Drivers
// convert them to whatever the device accepts, usually signed 16-bit.
//
// Example:
//
//	frames := audio.BufferFrames(15, 44100) // 512
//	buf := make([]int32, frames*audio.SpeakerModeStereo.Channels())
package audio
