// ABOUTME: Tests for Ogg Opus header parsing
// ABOUTME: Builds identification and comment packets in memory
package source

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func opusHead(version, channels byte) []byte {
	head := []byte("OpusHead")
	head = append(head, version, channels)
	head = binary.LittleEndian.AppendUint16(head, 312)
	head = binary.LittleEndian.AppendUint32(head, 44100)
	head = binary.LittleEndian.AppendUint16(head, 0)
	return append(head, 0)
}

func opusTags(comments ...string) []byte {
	tags := []byte("OpusTags")
	tags = binary.LittleEndian.AppendUint32(tags, 6)
	tags = append(tags, "vendor"...)
	tags = binary.LittleEndian.AppendUint32(tags, uint32(len(comments)))
	for _, c := range comments {
		tags = binary.LittleEndian.AppendUint32(tags, uint32(len(c)))
		tags = append(tags, c...)
	}
	return tags
}

// page prefixes a packet with filler standing in for the Ogg page header
func page(packet []byte) []byte {
	return append([]byte("OggS\x00\x02padding-bytes"), packet...)
}

func TestParseOpusHeader(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		channels int
		wantErr  bool
	}{
		{"stereo", page(opusHead(1, 2)), 2, false},
		{"mono", page(opusHead(1, 1)), 1, false},
		{"surround", page(opusHead(1, 6)), 6, false},
		{"minor version bump", page(opusHead(0x0f, 2)), 2, false},
		{"major version", page(opusHead(0x10, 2)), 0, true},
		{"zero channels", page(opusHead(1, 0)), 0, true},
		{"truncated", page(opusHead(1, 2)[:12]), 0, true},
		{"not opus", []byte("OggS vorbis data"), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := parseOpusHeader(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.channels != tt.channels {
				t.Errorf("expected %d channels, got %d", tt.channels, h.channels)
			}
		})
	}
}

func TestOpusTagsApplyToMetadata(t *testing.T) {
	data := append(page(opusHead(1, 2)),
		page(opusTags("title=Night Drive", "ARTIST=Test Band", "ENCODER=opusenc", "garbage"))...)

	h, err := readOpusHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.tags) != 3 {
		t.Fatalf("expected 3 tags, got %d: %v", len(h.tags), h.tags)
	}

	meta := newFileMetadata("/music/fallback.opus")
	for _, tag := range h.tags {
		meta.setTag(tag[0], tag[1])
	}
	title, artist, album := meta.Metadata()
	if title != "Night Drive" {
		t.Errorf("expected title %q, got %q", "Night Drive", title)
	}
	if artist != "Test Band" {
		t.Errorf("expected artist %q, got %q", "Test Band", artist)
	}
	if album != "Unknown Album" {
		t.Errorf("expected default album, got %q", album)
	}
}

func TestParseOpusTagsTruncated(t *testing.T) {
	tags := opusTags("TITLE=Kept", "ARTIST=Cut off")
	// drop the end of the second comment
	tags = tags[:len(tags)-4]

	got := parseOpusTags(tags[8:])
	if len(got) != 1 || got[0] != [2]string{"TITLE", "Kept"} {
		t.Errorf("expected only the first tag, got %v", got)
	}
}
