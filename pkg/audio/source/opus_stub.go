//go:build nolibopusfile

// ABOUTME: Opus support when built without libopusfile
// ABOUTME: Opening an .opus file reports an unsupported format
package source

import "fmt"

// NewOpusSource is unavailable in nolibopusfile builds
func NewOpusSource(filePath string, loop bool) (Source, error) {
	return nil, fmt.Errorf("%w: .opus (built without libopusfile)", ErrUnsupportedFormat)
}
