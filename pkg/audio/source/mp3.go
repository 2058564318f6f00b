// ABOUTME: MP3 file source
// ABOUTME: Decodes with go-mp3 and scales 16-bit output to the 24-bit range
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3Source reads from an MP3 file
type MP3Source struct {
	fileMetadata
	file       *os.File
	decoder    *mp3.Decoder
	sampleRate int
	loop       bool
	buf        []byte
}

// NewMP3Source creates a new MP3 audio source
func NewMP3Source(filePath string, loop bool) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	meta := newFileMetadata(filePath)
	slog.Info("loaded MP3", "title", meta.title, "sample_rate", decoder.SampleRate())

	return &MP3Source{
		fileMetadata: meta,
		file:         f,
		decoder:      decoder,
		sampleRate:   decoder.SampleRate(),
		loop:         loop,
	}, nil
}

func (s *MP3Source) Read(samples []int32) (int, error) {
	// go-mp3 always decodes to 16-bit little-endian stereo
	numBytes := len(samples) * 2
	if cap(s.buf) < numBytes {
		s.buf = make([]byte, numBytes)
	}
	buf := s.buf[:numBytes]

	n, err := io.ReadFull(s.decoder, buf)
	numSamples := n / 2
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(buf[i*2:])))
	}

	switch {
	case err == nil:
		return numSamples, nil
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		if !s.loop {
			if numSamples == 0 {
				return 0, io.EOF
			}
			return numSamples, nil
		}
		if _, seekErr := s.decoder.Seek(0, io.SeekStart); seekErr != nil {
			return numSamples, fmt.Errorf("failed to seek to start: %w", seekErr)
		}
		return numSamples, nil
	default:
		return numSamples, err
	}
}

func (s *MP3Source) SampleRate() int { return s.sampleRate }
func (s *MP3Source) Channels() int   { return 2 }
func (s *MP3Source) Close() error {
	return s.file.Close()
}
