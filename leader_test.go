package arpahost_test

import (
	"testing"

	"github.com/n7qst/arpahost"
)

func TestLeaderRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name string
		l    arpahost.Leader
	}{
		{"regular", arpahost.Leader{Type: arpahost.TypeRegular, Host: arpahost.NewHostAddress(1, 7), Link: 45, Subtype: 0}},
		{"reset", arpahost.Leader{Type: arpahost.TypeReset, Host: arpahost.NewHostAddress(0, 63)}},
		{"flags", arpahost.Leader{Type: arpahost.TypeDead, Flags: 0x5, Host: arpahost.NewHostAddress(2, 1), Subtype: 1}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.l.Bytes()
			if len(b) != arpahost.LeaderLen {
				t.Fatalf("Bytes returned %d bytes, want %d", len(b), arpahost.LeaderLen)
			}
			got, err := arpahost.ParseLeader(b)
			if err != nil {
				t.Fatalf("ParseLeader: %v", err)
			}
			if got != tt.l {
				t.Fatalf("round trip mismatch: got %+v, want %+v", got, tt.l)
			}
		})
	}
}

func TestParseLeaderShort(t *testing.T) {
	if _, err := arpahost.ParseLeader([]byte{1, 2}); err == nil {
		t.Fatal("expected error for short leader")
	}
}

func TestHostAddressPacking(t *testing.T) {
	for _, tt := range []struct {
		port, imp int
	}{
		{0, 0}, {3, 63}, {1, 7}, {2, 45},
	} {
		a := arpahost.NewHostAddress(tt.port, tt.imp)
		if a.Port() != tt.port {
			t.Errorf("Port() = %d, want %d", a.Port(), tt.port)
		}
		if a.IMPNumber() != tt.imp {
			t.Errorf("IMPNumber() = %d, want %d", a.IMPNumber(), tt.imp)
		}
	}
}

func TestMessageTypeString(t *testing.T) {
	if got := arpahost.TypeReset.String(); got != "RESET" {
		t.Errorf("TypeReset.String() = %q, want RESET", got)
	}
	if got := arpahost.MessageType(99).String(); got != "TYPE(99)" {
		t.Errorf("unknown type String() = %q, want TYPE(99)", got)
	}
}
