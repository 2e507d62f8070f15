package arpahost_test

import (
	"testing"

	"github.com/n7qst/arpahost"
)

func TestEncodeOpcodeLengths(t *testing.T) {
	for _, tt := range []struct {
		name string
		b    []byte
		want int
	}{
		{"RTS", arpahost.EncodeRTS(nil, 99, 1, 7), 10},
		{"STR", arpahost.EncodeSTR(nil, 99, 1, 32), 10},
		{"CLS", arpahost.EncodeCLS(nil, 99, 1), 9},
		{"ALL", arpahost.EncodeALL(nil, 45, 10, 16000), 8},
		{"NOP", arpahost.EncodeNOP(nil), 1},
		{"ECO", arpahost.EncodeECO(nil, 0x42), 2},
		{"ERP", arpahost.EncodeERP(nil, 0x42), 2},
		{"RST", arpahost.EncodeRST(nil), 1},
		{"RRP", arpahost.EncodeRRP(nil), 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.b) != tt.want {
				t.Fatalf("%s encoded to %d bytes, want %d", tt.name, len(tt.b), tt.want)
			}
		})
	}
}

func TestEncodeRTSFieldLayout(t *testing.T) {
	b := arpahost.EncodeRTS(nil, 99, 1, 7)
	if arpahost.NCPOpcode(b[0]) != arpahost.OpRTS {
		t.Fatalf("opcode byte = %d, want OpRTS", b[0])
	}
	remote := uint32(b[1])<<24 | uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4])
	local := uint32(b[5])<<24 | uint32(b[6])<<16 | uint32(b[7])<<8 | uint32(b[8])
	link := b[9]
	if remote != 99 || local != 1 || link != 7 {
		t.Fatalf("got remote=%d local=%d link=%d, want 99,1,7", remote, local, link)
	}
}

func TestEncodeCanAppendMultipleOpcodes(t *testing.T) {
	var b []byte
	b = arpahost.EncodeNOP(b)
	b = arpahost.EncodeRST(b)
	b = arpahost.EncodeRRP(b)
	if len(b) != 3 {
		t.Fatalf("concatenated opcode stream is %d bytes, want 3", len(b))
	}
	if arpahost.NCPOpcode(b[0]) != arpahost.OpNOP || arpahost.NCPOpcode(b[1]) != arpahost.OpRST || arpahost.NCPOpcode(b[2]) != arpahost.OpRRP {
		t.Fatalf("opcode stream = %v, want NOP,RST,RRP", b)
	}
}
