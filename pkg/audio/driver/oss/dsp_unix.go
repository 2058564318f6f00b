//go:build linux || freebsd

// ABOUTME: OSS DSP device backed by a file descriptor
// ABOUTME: Issues SNDCTL_DSP_* ioctls through golang.org/x/sys/unix
package oss

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

type dsp struct {
	fd   int
	path string
}

// OpenDSP opens path write-only for playback
func OpenDSP(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &dsp{fd: fd, path: path}, nil
}

// ioctlInt passes value in and returns what the driver wrote back
func ioctlInt(fd int, req uint, value int) (int, error) {
	v := int32(value)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return 0, errno
	}
	return int(v), nil
}

func (d *dsp) SetFormat(format int) (int, error) {
	return ioctlInt(d.fd, sndctlDSPSetFmt, format)
}

func (d *dsp) SetChannels(channels int) (int, error) {
	return ioctlInt(d.fd, sndctlDSPChannels, channels)
}

func (d *dsp) SetSpeed(rate int) (int, error) {
	return ioctlInt(d.fd, sndctlDSPSpeed, rate)
}

func (d *dsp) SetFragment(fragment int) error {
	_, err := ioctlInt(d.fd, sndctlDSPSetFragment, fragment)
	return err
}

func (d *dsp) Reset() error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(sndctlDSPReset), 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *dsp) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(d.fd, p)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func (d *dsp) Close() error {
	return unix.Close(d.fd)
}
