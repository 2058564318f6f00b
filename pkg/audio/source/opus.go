//go:build !nolibopusfile

// ABOUTME: Ogg Opus file source
// ABOUTME: Decodes with libopusfile at 48 kHz and scales 16-bit output to the 24-bit range
package source

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/hraban/opus.v2"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
)

// libopusfile always decodes at 48 kHz
const opusSampleRate = 48000

// OpusSource reads from an Ogg Opus file
type OpusSource struct {
	fileMetadata
	file     *os.File
	stream   *opus.Stream
	channels int
	loop     bool
	buf      []int16
}

// opusReader hides Close so closing a stream leaves the file open
type opusReader struct {
	io.Reader
}

// NewOpusSource creates a new Opus audio source
func NewOpusSource(filePath string, loop bool) (*OpusSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Opus file: %w", err)
	}

	header, err := readOpusHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read Opus header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind Opus file: %w", err)
	}

	stream, err := opus.NewStream(opusReader{f})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode Opus: %w", err)
	}

	meta := newFileMetadata(filePath)
	for _, tag := range header.tags {
		meta.setTag(tag[0], tag[1])
	}
	slog.Info("loaded Opus", "title", meta.title, "channels", header.channels)

	return &OpusSource{
		fileMetadata: meta,
		file:         f,
		stream:       stream,
		channels:     header.channels,
		loop:         loop,
	}, nil
}

func (s *OpusSource) Read(samples []int32) (int, error) {
	samplesRead := 0
	rewound := false

	for len(samples)-samplesRead >= s.channels {
		want := (len(samples) - samplesRead) / s.channels * s.channels
		if cap(s.buf) < want {
			s.buf = make([]int16, want)
		}

		// n counts samples per channel
		n, err := s.stream.Read(s.buf[:want])
		if err != nil && err != io.EOF {
			return samplesRead, fmt.Errorf("failed to decode Opus: %w", err)
		}
		count := n * s.channels
		for i, v := range s.buf[:count] {
			samples[samplesRead+i] = audio.SampleFromInt16(v)
		}
		samplesRead += count

		if n > 0 {
			rewound = false
			continue
		}

		if !s.loop || rewound {
			if samplesRead == 0 {
				return 0, io.EOF
			}
			return samplesRead, nil
		}
		if err := s.rewind(); err != nil {
			return samplesRead, fmt.Errorf("failed to rewind Opus: %w", err)
		}
		rewound = true
	}

	return samplesRead, nil
}

// rewind restarts decoding from the first page
func (s *OpusSource) rewind() error {
	if err := s.stream.Close(); err != nil {
		return err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	stream, err := opus.NewStream(opusReader{s.file})
	if err != nil {
		return err
	}
	s.stream = stream
	return nil
}

func (s *OpusSource) SampleRate() int { return opusSampleRate }
func (s *OpusSource) Channels() int   { return s.channels }
func (s *OpusSource) Close() error {
	err := s.stream.Close()
	if ferr := s.file.Close(); err == nil {
		err = ferr
	}
	return err
}
