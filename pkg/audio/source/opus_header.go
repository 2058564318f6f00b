// ABOUTME: Ogg Opus header parsing
// ABOUTME: Reads the channel count and comment tags from the first Ogg pages
package source

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// identification and comment headers sit in the first pages of the stream
const opusHeaderScan = 64 * 1024

var errNoOpusHead = errors.New("missing OpusHead packet")

type opusHeader struct {
	channels int
	tags     [][2]string
}

func readOpusHeader(r io.Reader) (opusHeader, error) {
	buf, err := io.ReadAll(io.LimitReader(r, opusHeaderScan))
	if err != nil {
		return opusHeader{}, err
	}
	return parseOpusHeader(buf)
}

func parseOpusHeader(buf []byte) (opusHeader, error) {
	i := bytes.Index(buf, []byte("OpusHead"))
	// magic, version, channels, pre-skip, input rate, gain, mapping family
	if i < 0 || len(buf)-i < 19 {
		return opusHeader{}, errNoOpusHead
	}
	head := buf[i:]
	if version := head[8]; version>>4 != 0 {
		return opusHeader{}, fmt.Errorf("unsupported Opus version %d", version)
	}
	h := opusHeader{channels: int(head[9])}
	if h.channels == 0 {
		return opusHeader{}, errors.New("Opus stream has no channels")
	}

	if j := bytes.Index(head, []byte("OpusTags")); j >= 0 {
		h.tags = parseOpusTags(head[j+8:])
	}
	return h, nil
}

// parseOpusTags reads the vendor string and KEY=value comments. A truncated
// or page-split packet yields the tags read so far.
func parseOpusTags(b []byte) [][2]string {
	next := func() ([]byte, bool) {
		if len(b) < 4 {
			return nil, false
		}
		n := binary.LittleEndian.Uint32(b)
		b = b[4:]
		if uint64(n) > uint64(len(b)) {
			return nil, false
		}
		v := b[:n]
		b = b[n:]
		return v, true
	}

	if _, ok := next(); !ok {
		return nil
	}
	if len(b) < 4 {
		return nil
	}
	count := binary.LittleEndian.Uint32(b)
	b = b[4:]

	var tags [][2]string
	for range count {
		comment, ok := next()
		if !ok {
			break
		}
		if key, value, found := strings.Cut(string(comment), "="); found {
			tags = append(tags, [2]string{key, value})
		}
	}
	return tags
}
