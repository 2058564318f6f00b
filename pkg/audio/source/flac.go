// ABOUTME: FLAC file source
// ABOUTME: Decodes frames with mewkiz/flac and reads Vorbis comment tags
package source

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"
)

// FLACSource reads from a FLAC file
type FLACSource struct {
	fileMetadata
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int
	loop       bool

	// samples left over from the last decoded frame
	frameBuf []int32
	pending  []int32
}

// NewFLACSource creates a new FLAC audio source
func NewFLACSource(filePath string, loop bool) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	// Parse reads every metadata block so tags are available
	stream, err := flac.Parse(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	src := &FLACSource{
		fileMetadata: newFileMetadata(filePath),
		file:         f,
		stream:       stream,
		sampleRate:   int(info.SampleRate),
		channels:     int(info.NChannels),
		bitDepth:     int(info.BitsPerSample),
		loop:         loop,
	}
	src.applyTags(stream.Blocks)

	slog.Info("loaded FLAC",
		"title", src.title,
		"sample_rate", src.sampleRate,
		"channels", src.channels,
		"bit_depth", src.bitDepth)

	return src, nil
}

func (s *FLACSource) applyTags(blocks []*meta.Block) {
	for _, block := range blocks {
		comment, ok := block.Body.(*meta.VorbisComment)
		if !ok {
			continue
		}
		for _, tag := range comment.Tags {
			s.setTag(tag[0], tag[1])
		}
	}
}

func (s *FLACSource) Read(samples []int32) (int, error) {
	samplesRead := 0
	rewound := false

	for samplesRead < len(samples) {
		if len(s.pending) > 0 {
			n := copy(samples[samplesRead:], s.pending)
			s.pending = s.pending[n:]
			samplesRead += n
			continue
		}

		frame, err := s.stream.ParseNext()
		if err == io.EOF {
			if !s.loop {
				if samplesRead == 0 {
					return 0, io.EOF
				}
				return samplesRead, nil
			}
			if rewound {
				// Nothing decodable between two rewinds
				return samplesRead, io.EOF
			}
			if err := s.rewind(); err != nil {
				return samplesRead, err
			}
			rewound = true
			continue
		}
		if err != nil {
			return samplesRead, err
		}

		buf := s.frameBuf[:0]
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < s.channels; ch++ {
				sample := frame.Subframes[ch].Samples[i]
				buf = append(buf, audio.ScaleFromBitDepth(sample, s.bitDepth))
			}
		}
		s.frameBuf = buf
		s.pending = buf
		rewound = false
	}

	return samplesRead, nil
}

func (s *FLACSource) rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	stream, err := flac.New(s.file)
	if err != nil {
		return fmt.Errorf("failed to create new stream: %w", err)
	}
	s.stream = stream
	return nil
}

func (s *FLACSource) SampleRate() int { return s.sampleRate }
func (s *FLACSource) Channels() int   { return s.channels }
func (s *FLACSource) Close() error {
	return s.file.Close()
}
