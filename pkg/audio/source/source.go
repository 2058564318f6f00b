// ABOUTME: Audio source abstraction feeding the driver mixer
// ABOUTME: Opens MP3, FLAC, WAV and Opus files by extension
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Source provides interleaved PCM samples in the 24-bit int32 range
type Source interface {
	// Read reads PCM samples into the buffer. Returns the number of samples
	// read; io.EOF marks the end of a non-looping source.
	Read(samples []int32) (int, error)
	// SampleRate returns the sample rate of the audio
	SampleRate() int
	// Channels returns the number of channels
	Channels() int
	// Metadata returns title, artist, album
	Metadata() (title, artist, album string)
	// Close closes the audio source
	Close() error
}

// Open creates a source for a local audio file. Looping sources rewind at
// the end of the file instead of returning io.EOF.
func Open(path string, loop bool) (Source, error) {
	if path == "" {
		return nil, errors.New("no audio file given")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		return NewMP3Source(path, loop)
	case ".flac":
		return NewFLACSource(path, loop)
	case ".wav", ".wave":
		return NewWAVSource(path, loop)
	case ".opus":
		return NewOpusSource(path, loop)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .mp3, .flac, .wav, .opus)", ErrUnsupportedFormat, ext)
	}
}

// Prepare adapts src to a driver's mix rate and channel count
func Prepare(src Source, mixRate, channels int) Source {
	if src.SampleRate() != mixRate {
		src = NewResampledSource(src, mixRate)
	}
	if src.Channels() != channels {
		src = NewRemix(src, channels)
	}
	return src
}

func titleFromPath(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// fileMetadata holds tags shared by the file-backed sources
type fileMetadata struct {
	title  string
	artist string
	album  string
}

func newFileMetadata(path string) fileMetadata {
	return fileMetadata{
		title:  titleFromPath(path),
		artist: "Unknown Artist",
		album:  "Unknown Album",
	}
}

// setTag applies a Vorbis-style comment. Unknown keys are ignored.
func (m *fileMetadata) setTag(key, value string) {
	switch strings.ToUpper(key) {
	case "TITLE":
		m.title = value
	case "ARTIST":
		m.artist = value
	case "ALBUM":
		m.album = value
	}
}

func (m fileMetadata) Metadata() (string, string, string) {
	return m.title, m.artist, m.album
}
