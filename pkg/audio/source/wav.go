// ABOUTME: WAV file source
// ABOUTME: Decodes PCM chunks with go-audio/wav
package source

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
)

// WAVSource reads from a PCM WAV file
type WAVSource struct {
	fileMetadata
	file       *os.File
	decoder    *wav.Decoder
	sampleRate int
	channels   int
	bitDepth   int
	loop       bool
	buf        *goaudio.IntBuffer
}

// NewWAVSource creates a new WAV audio source
func NewWAVSource(filePath string, loop bool) (*WAVSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, errors.New("failed to decode WAV: not a valid PCM WAV file")
	}

	src := &WAVSource{
		fileMetadata: newFileMetadata(filePath),
		file:         f,
		decoder:      decoder,
		sampleRate:   int(decoder.SampleRate),
		channels:     int(decoder.NumChans),
		bitDepth:     int(decoder.BitDepth),
		loop:         loop,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: int(decoder.NumChans),
				SampleRate:  int(decoder.SampleRate),
			},
		},
	}

	slog.Info("loaded WAV",
		"title", src.title,
		"sample_rate", src.sampleRate,
		"channels", src.channels,
		"bit_depth", src.bitDepth)

	return src, nil
}

func (s *WAVSource) Read(samples []int32) (int, error) {
	samplesRead := 0
	rewound := false

	for samplesRead < len(samples) {
		want := len(samples) - samplesRead
		if cap(s.buf.Data) < want {
			s.buf.Data = make([]int, want)
		}
		s.buf.Data = s.buf.Data[:want]

		n, err := s.decoder.PCMBuffer(s.buf)
		if err != nil && err != io.EOF {
			return samplesRead, fmt.Errorf("failed to decode WAV: %w", err)
		}

		for i := 0; i < n; i++ {
			v := int32(s.buf.Data[i])
			if s.bitDepth == 8 {
				// 8-bit WAV is unsigned
				v -= 128
			}
			samples[samplesRead+i] = audio.ScaleFromBitDepth(v, s.bitDepth)
		}
		samplesRead += n

		if n > 0 {
			rewound = false
			continue
		}

		// End of PCM data
		if !s.loop || rewound {
			if samplesRead == 0 {
				return 0, io.EOF
			}
			return samplesRead, nil
		}
		if err := s.decoder.Rewind(); err != nil {
			return samplesRead, fmt.Errorf("failed to rewind WAV: %w", err)
		}
		rewound = true
	}

	return samplesRead, nil
}

func (s *WAVSource) SampleRate() int { return s.sampleRate }
func (s *WAVSource) Channels() int   { return s.channels }
func (s *WAVSource) Close() error {
	return s.file.Close()
}
