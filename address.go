package arpahost

import "fmt"

// A HostAddress is a single-octet ARPANET host address. The two high
// bits select a host-side port (interface); the low six bits select
// an IMP number.
type HostAddress uint8

// NewHostAddress packs a port number (0-3) and an IMP number (0-63)
// into a HostAddress.
func NewHostAddress(port, imp int) HostAddress {
	return HostAddress(uint8(port&0x3)<<6 | uint8(imp&0x3f))
}

// Port returns the host-side port number encoded in the address.
func (a HostAddress) Port() int {
	return int(a>>6) & 0x3
}

// IMPNumber returns the IMP number encoded in the address.
func (a HostAddress) IMPNumber() int {
	return int(a) & 0x3f
}

// String renders the address the way operators read it: octal.
func (a HostAddress) String() string {
	return fmt.Sprintf("0o%03o", uint8(a))
}
