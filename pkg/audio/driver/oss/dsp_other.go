//go:build !linux && !freebsd

// ABOUTME: OSS stub for systems without an OSS device API
// ABOUTME: Lets the driver register everywhere and fail cleanly at Init
package oss

import (
	"fmt"
	"runtime"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
)

// OpenDSP always fails on this platform
func OpenDSP(path string) (Device, error) {
	return nil, fmt.Errorf("%w: OSS is not supported on %s", driver.ErrUnavailable, runtime.GOOS)
}
