// ABOUTME: SNDCTL_DSP request numbers for FreeBSD
// ABOUTME: _IOWR('P', n, int) values from sys/soundcard.h
package oss

const (
	sndctlDSPReset       = 0x20005000 // _IO('P', 0), IOC_VOID
	sndctlDSPSpeed       = 0xC0045002
	sndctlDSPSetFmt      = 0xC0045005
	sndctlDSPChannels    = 0xC0045006
	sndctlDSPSetFragment = 0xC004500A
)
