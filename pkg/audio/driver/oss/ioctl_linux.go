// ABOUTME: SNDCTL_DSP request numbers for Linux
// ABOUTME: _IOWR('P', n, int) values from linux/soundcard.h
package oss

const (
	sndctlDSPReset       = 0x00005000 // _IO('P', 0)
	sndctlDSPSpeed       = 0xC0045002
	sndctlDSPSetFmt      = 0xC0045005
	sndctlDSPChannels    = 0xC0045006
	sndctlDSPSetFragment = 0xC004500A
)
