package arpahost

import (
	"encoding/binary"
	"fmt"
)

// NCPOpcode is one of the 14 NCP message opcodes listed in spec.md
// §4.4.1.
type NCPOpcode uint8

const (
	OpNOP NCPOpcode = 0
	OpRTS NCPOpcode = 1
	OpSTR NCPOpcode = 2
	OpCLS NCPOpcode = 3
	OpALL NCPOpcode = 4
	OpGVB NCPOpcode = 5
	OpRET NCPOpcode = 6
	OpINR NCPOpcode = 7
	OpINS NCPOpcode = 8
	OpECO NCPOpcode = 9
	OpERP NCPOpcode = 10
	OpERR NCPOpcode = 11
	OpRST NCPOpcode = 12
	OpRRP NCPOpcode = 13
)

// RTSMessage is opcode 1: request to send.
type RTSMessage struct {
	RemoteSocket uint32
	LocalSocket  uint32
	Link         uint8
}

// STRMessage is opcode 2: sender-to-receiver socket declaration.
type STRMessage struct {
	RemoteSocket uint32
	LocalSocket  uint32
	ByteSize     uint8
}

// CLSMessage is opcode 3: close.
type CLSMessage struct {
	RemoteSocket uint32
	LocalSocket  uint32
}

// ALLMessage is opcode 4: allocate flow-control window.
type ALLMessage struct {
	Link     uint8
	Messages uint16
	Bits     uint32
}

// SocketPairMessage is the body shared by GVB/RET/INR/INS (opcodes
// 5-8): accepted for framing correctness but not acted on by the core
// (spec.md §4.4.1). Field layout is this implementation's choice —
// the spec leaves these "per-protocol"; see DESIGN.md's Open
// Question entry.
type SocketPairMessage struct {
	RemoteSocket uint32
	LocalSocket  uint32
}

// ECOMessage is opcode 9: echo.
type ECOMessage struct{ Data uint8 }

// ERPMessage is opcode 10: echo reply.
type ERPMessage struct{ Data uint8 }

// ERRMessage is opcode 11: error report.
type ERRMessage struct {
	Code uint8
	Data [10]byte
}

// EncodeRTS appends an RTS opcode to b.
func EncodeRTS(b []byte, remote, local uint32, link uint8) []byte {
	b = append(b, byte(OpRTS))
	b = appendU32(b, remote)
	b = appendU32(b, local)
	return append(b, link)
}

// EncodeSTR appends an STR opcode to b.
func EncodeSTR(b []byte, remote, local uint32, byteSize uint8) []byte {
	b = append(b, byte(OpSTR))
	b = appendU32(b, remote)
	b = appendU32(b, local)
	return append(b, byteSize)
}

// EncodeCLS appends a CLS opcode to b.
func EncodeCLS(b []byte, remote, local uint32) []byte {
	b = append(b, byte(OpCLS))
	b = appendU32(b, remote)
	return appendU32(b, local)
}

// EncodeALL appends an ALL opcode to b.
func EncodeALL(b []byte, link uint8, messages uint16, bits uint32) []byte {
	b = append(b, byte(OpALL))
	b = append(b, link)
	b = appendU16(b, messages)
	return appendU32(b, bits)
}

// EncodeNOP appends a NOP opcode to b.
func EncodeNOP(b []byte) []byte { return append(b, byte(OpNOP)) }

// EncodeECO appends an ECO opcode to b.
func EncodeECO(b []byte, data uint8) []byte { return append(b, byte(OpECO), data) }

// EncodeERP appends an ERP opcode to b.
func EncodeERP(b []byte, data uint8) []byte { return append(b, byte(OpERP), data) }

// EncodeRST appends an RST opcode to b.
func EncodeRST(b []byte) []byte { return append(b, byte(OpRST)) }

// EncodeRRP appends an RRP opcode to b.
func EncodeRRP(b []byte) []byte { return append(b, byte(OpRRP)) }

// decodedOpcode is one parsed opcode plus however many bytes of the
// stream it consumed.
type decodedOpcode struct {
	Op       NCPOpcode
	Consumed int
	RTS      RTSMessage
	STR      STRMessage
	CLS      CLSMessage
	ALL      ALLMessage
	SockPair SocketPairMessage
	ECO      ECOMessage
	ERP      ERPMessage
	ERR      ERRMessage
}

// decodeOpcode parses one opcode from the front of b. ok is false if
// b is empty or the opcode isn't one of the 14 known values — per
// spec.md §4.4.6, an unknown opcode means the caller must stop
// parsing the remainder of the message, not just skip this one.
func decodeOpcode(b []byte) (d decodedOpcode, ok bool) {
	if len(b) == 0 {
		return d, false
	}
	op := NCPOpcode(b[0])
	switch op {
	case OpNOP, OpRST, OpRRP:
		d = decodedOpcode{Op: op, Consumed: 1}
		return d, true
	case OpRTS:
		if len(b) < 10 {
			return d, false
		}
		d = decodedOpcode{Op: op, Consumed: 10, RTS: RTSMessage{
			RemoteSocket: binary.BigEndian.Uint32(b[1:5]),
			LocalSocket:  binary.BigEndian.Uint32(b[5:9]),
			Link:         b[9],
		}}
		return d, true
	case OpSTR:
		if len(b) < 10 {
			return d, false
		}
		d = decodedOpcode{Op: op, Consumed: 10, STR: STRMessage{
			RemoteSocket: binary.BigEndian.Uint32(b[1:5]),
			LocalSocket:  binary.BigEndian.Uint32(b[5:9]),
			ByteSize:     b[9],
		}}
		return d, true
	case OpCLS:
		if len(b) < 9 {
			return d, false
		}
		d = decodedOpcode{Op: op, Consumed: 9, CLS: CLSMessage{
			RemoteSocket: binary.BigEndian.Uint32(b[1:5]),
			LocalSocket:  binary.BigEndian.Uint32(b[5:9]),
		}}
		return d, true
	case OpALL:
		if len(b) < 8 {
			return d, false
		}
		d = decodedOpcode{Op: op, Consumed: 8, ALL: ALLMessage{
			Link:     b[1],
			Messages: binary.BigEndian.Uint16(b[2:4]),
			Bits:     binary.BigEndian.Uint32(b[4:8]),
		}}
		return d, true
	case OpGVB, OpRET, OpINR, OpINS:
		if len(b) < 9 {
			return d, false
		}
		d = decodedOpcode{Op: op, Consumed: 9, SockPair: SocketPairMessage{
			RemoteSocket: binary.BigEndian.Uint32(b[1:5]),
			LocalSocket:  binary.BigEndian.Uint32(b[5:9]),
		}}
		return d, true
	case OpECO:
		if len(b) < 2 {
			return d, false
		}
		d = decodedOpcode{Op: op, Consumed: 2, ECO: ECOMessage{Data: b[1]}}
		return d, true
	case OpERP:
		if len(b) < 2 {
			return d, false
		}
		d = decodedOpcode{Op: op, Consumed: 2, ERP: ERPMessage{Data: b[1]}}
		return d, true
	case OpERR:
		if len(b) < 12 {
			return d, false
		}
		var data [10]byte
		copy(data[:], b[2:12])
		d = decodedOpcode{Op: op, Consumed: 12, ERR: ERRMessage{Code: b[1], Data: data}}
		return d, true
	default:
		return d, false
	}
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// ncpHeaderLen is the fixed control/data header preceding the opcode
// stream or raw payload on every NCP message (spec.md §4.4.1).
const ncpHeaderLen = 5

// appendNCPHeader appends the 5-byte flags/byte-size/count/pad header
// used by both control and data messages.
func appendNCPHeader(b []byte, flags, byteSize uint8, count int) []byte {
	return append(b, flags, byteSize, byte(count>>8), byte(count), 0)
}

// splitNCPHeader peels the 5-byte header off the front of a message
// body, returning it parsed plus the remainder.
func splitNCPHeader(body []byte) (flags, byteSize uint8, count int, rest []byte, err error) {
	if len(body) < ncpHeaderLen {
		return 0, 0, 0, nil, fmt.Errorf("arpahost: short NCP header: %d bytes", len(body))
	}
	flags = body[0]
	byteSize = body[1]
	count = int(body[2])<<8 | int(body[3])
	rest = body[ncpHeaderLen:]
	return flags, byteSize, count, rest, nil
}
