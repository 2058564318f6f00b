// ABOUTME: Speaker mode definitions
// ABOUTME: Maps channel layouts reported to the mixer to channel counts
package audio

import "fmt"

// SpeakerMode is the channel layout a driver reports to the mixer
type SpeakerMode int

const (
	SpeakerModeStereo SpeakerMode = iota
	SpeakerModeSurround31
	SpeakerModeSurround51
	SpeakerModeSurround71
)

// Channels returns the interleaved channel count for the mode
func (m SpeakerMode) Channels() int {
	switch m {
	case SpeakerModeSurround31:
		return 4
	case SpeakerModeSurround51:
		return 6
	case SpeakerModeSurround71:
		return 8
	default:
		return 2
	}
}

func (m SpeakerMode) String() string {
	switch m {
	case SpeakerModeStereo:
		return "stereo"
	case SpeakerModeSurround31:
		return "3.1"
	case SpeakerModeSurround51:
		return "5.1"
	case SpeakerModeSurround71:
		return "7.1"
	default:
		return fmt.Sprintf("SpeakerMode(%d)", int(m))
	}
}

// SpeakerModeForChannels returns the mode carrying exactly n channels
func SpeakerModeForChannels(n int) (SpeakerMode, error) {
	switch n {
	case 2:
		return SpeakerModeStereo, nil
	case 4:
		return SpeakerModeSurround31, nil
	case 6:
		return SpeakerModeSurround51, nil
	case 8:
		return SpeakerModeSurround71, nil
	default:
		return SpeakerModeStereo, fmt.Errorf("unsupported channel count: %d (supported: 2, 4, 6, 8)", n)
	}
}
