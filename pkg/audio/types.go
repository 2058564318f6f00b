// ABOUTME: Audio type definitions shared by drivers and sources
// ABOUTME: Defines the sample range and sample conversions
package audio

import "encoding/binary"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// ClampSample clamps a wide sample into the 24-bit range
func ClampSample(v int64) int32 {
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit range to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// PutInt16Samples writes samples as 16-bit PCM into dst using order.
// dst must hold at least 2*len(samples) bytes.
func PutInt16Samples(order binary.ByteOrder, dst []byte, samples []int32) {
	for i, s := range samples {
		order.PutUint16(dst[i*2:], uint16(SampleToInt16(s)))
	}
}

// ScaleFromBitDepth moves a sample of the given bit depth into the 24-bit range
func ScaleFromBitDepth(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}

// ClosestPowerOf2 returns the power of two nearest to n. Ties round up.
func ClosestPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	next := 1
	for next < n {
		next <<= 1
	}
	prev := next >> 1
	if next-n > n-prev {
		return prev
	}
	return next
}

// BufferFrames returns the period size in frames for an output latency
func BufferFrames(latencyMs, mixRate int) int {
	return ClosestPowerOf2(latencyMs * mixRate / 1000)
}
