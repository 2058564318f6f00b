// ABOUTME: Tests for audio types
// ABOUTME: Tests sample conversion and period sizing helpers
package audio

import (
	"encoding/binary"
	"testing"
)

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected int32
	}{
		{"zero", 0, 0},
		{"positive", 100, 100 << 8},
		{"negative", -100, -100 << 8},
		{"max", 32767, 32767 << 8},
		{"min", -32768, -32768 << 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		expected int16
	}{
		{"zero", 0, 0},
		{"positive", 100 << 8, 100},
		{"negative", -100 << 8, -100},
		{"24bit positive", 1000000, 3906}, // 1000000 >> 8 = 3906
		{"24bit negative", -1000000, -3907},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestClampSample(t *testing.T) {
	if got := ClampSample(Max24Bit + 10); got != Max24Bit {
		t.Errorf("expected %d, got %d", Max24Bit, got)
	}
	if got := ClampSample(Min24Bit - 10); got != Min24Bit {
		t.Errorf("expected %d, got %d", Min24Bit, got)
	}
	if got := ClampSample(1234); got != 1234 {
		t.Errorf("expected 1234, got %d", got)
	}
}

func TestPutInt16Samples(t *testing.T) {
	samples := []int32{SampleFromInt16(0x1234), SampleFromInt16(-2)}
	dst := make([]byte, 4)

	PutInt16Samples(binary.LittleEndian, dst, samples)
	if dst[0] != 0x34 || dst[1] != 0x12 {
		t.Errorf("expected 34 12, got %x %x", dst[0], dst[1])
	}
	if got := int16(binary.LittleEndian.Uint16(dst[2:])); got != -2 {
		t.Errorf("expected -2, got %d", got)
	}

	PutInt16Samples(binary.BigEndian, dst, samples)
	if dst[0] != 0x12 || dst[1] != 0x34 {
		t.Errorf("expected 12 34, got %x %x", dst[0], dst[1])
	}
}

func TestScaleFromBitDepth(t *testing.T) {
	tests := []struct {
		name     string
		sample   int32
		bitDepth int
		expected int32
	}{
		{"16-bit", 100, 16, 100 << 8},
		{"24-bit", 100, 24, 100},
		{"32-bit", 100 << 8, 32, 100},
		{"8-bit", -2, 8, -2 << 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScaleFromBitDepth(tt.sample, tt.bitDepth)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestClosestPowerOf2(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 1},
		{1, 1},
		{3, 4}, // tie between 2 and 4 rounds up
		{5, 4},
		{6, 8},
		{512, 512},
		{661, 512},
		{768, 1024},
		{1000, 1024},
	}

	for _, tt := range tests {
		result := ClosestPowerOf2(tt.input)
		if result != tt.expected {
			t.Errorf("ClosestPowerOf2(%d): expected %d, got %d", tt.input, tt.expected, result)
		}
	}
}

func TestBufferFrames(t *testing.T) {
	tests := []struct {
		latencyMs int
		mixRate   int
		expected  int
	}{
		{15, 44100, 512}, // 661 frames
		{15, 48000, 512}, // 720 frames
		{25, 48000, 1024},
		{0, 48000, 1},
	}

	for _, tt := range tests {
		result := BufferFrames(tt.latencyMs, tt.mixRate)
		if result != tt.expected {
			t.Errorf("BufferFrames(%d, %d): expected %d, got %d",
				tt.latencyMs, tt.mixRate, tt.expected, result)
		}
	}
}

func TestSpeakerModeChannels(t *testing.T) {
	tests := []struct {
		mode     SpeakerMode
		channels int
		name     string
	}{
		{SpeakerModeStereo, 2, "stereo"},
		{SpeakerModeSurround31, 4, "3.1"},
		{SpeakerModeSurround51, 6, "5.1"},
		{SpeakerModeSurround71, 8, "7.1"},
	}

	for _, tt := range tests {
		if tt.mode.Channels() != tt.channels {
			t.Errorf("%s: expected %d channels, got %d", tt.name, tt.channels, tt.mode.Channels())
		}
		if tt.mode.String() != tt.name {
			t.Errorf("expected name %q, got %q", tt.name, tt.mode.String())
		}

		mode, err := SpeakerModeForChannels(tt.channels)
		if err != nil {
			t.Fatalf("SpeakerModeForChannels(%d) failed: %v", tt.channels, err)
		}
		if mode != tt.mode {
			t.Errorf("SpeakerModeForChannels(%d): expected %v, got %v", tt.channels, tt.mode, mode)
		}
	}
}

func TestSpeakerModeForChannels_Unsupported(t *testing.T) {
	if _, err := SpeakerModeForChannels(3); err == nil {
		t.Fatal("expected error for 3 channels")
	}
}
