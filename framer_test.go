package arpahost_test

import (
	"testing"

	"github.com/n7qst/arpahost"
)

func TestFramerRoundTripEven(t *testing.T) {
	f := arpahost.NewFramer(nil)
	payload := []byte{1, 2, 3, 4}
	dg, err := f.Encode(payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	g := arpahost.NewFramer(nil)
	res := g.Decode(dg, nil)
	if !res.Done {
		t.Fatal("expected Done on a single-fragment message")
	}
	if string(res.Payload) != string(payload) {
		t.Fatalf("Decode payload = %v, want %v", res.Payload, payload)
	}
}

func TestFramerRoundTripOddPadsToWordBoundary(t *testing.T) {
	f := arpahost.NewFramer(nil)
	payload := []byte{1, 2, 3} // odd length, like a real NCP opcode body
	dg, err := f.Encode(payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(dg)%2 != 0 {
		t.Fatalf("encoded datagram length %d is not even", len(dg))
	}

	g := arpahost.NewFramer(nil)
	res := g.Decode(dg, nil)
	if !res.Done {
		t.Fatal("expected Done")
	}
	if len(res.Payload) != 4 || string(res.Payload[:3]) != string(payload) {
		t.Fatalf("Decode payload = %v, want %v plus one pad byte", res.Payload, payload)
	}
}

func TestFramerSequenceIncrementsOnEachEncode(t *testing.T) {
	f := arpahost.NewFramer(nil)
	dg1, _ := f.Encode([]byte{0, 0})
	dg2, _ := f.Encode([]byte{0, 0})
	if string(dg1[4:8]) == string(dg2[4:8]) {
		t.Fatal("expected sequence number to change between encodes")
	}
}

func TestFramerDecodeRejectsShortDatagram(t *testing.T) {
	f := arpahost.NewFramer(nil)
	res := f.Decode([]byte{1, 2, 3}, nil)
	if res.Done {
		t.Fatal("short datagram should never be Done")
	}
}

func TestFramerDecodeRejectsBadMagic(t *testing.T) {
	f := arpahost.NewFramer(nil)
	dg := make([]byte, 12)
	copy(dg, "XXXX")
	res := f.Decode(dg, nil)
	if res.Done {
		t.Fatal("bad magic should never be Done")
	}
}

func TestFramerDecodeRejectsLengthMismatch(t *testing.T) {
	f := arpahost.NewFramer(nil)
	dg, _ := f.Encode([]byte{1, 2, 3, 4})
	res := f.Decode(dg[:len(dg)-2], nil)
	if res.Done {
		t.Fatal("truncated datagram should never be Done")
	}
}

func TestFramerSetHostReadyTogglesOnce(t *testing.T) {
	f := arpahost.NewFramer(nil)
	dg, changed := f.SetHostReady(true)
	if !changed || dg == nil {
		t.Fatal("expected a datagram on the first toggle")
	}
	if _, changed := f.SetHostReady(true); changed {
		t.Fatal("setting the same state twice should not change anything")
	}
	if _, changed := f.SetHostReady(false); !changed {
		t.Fatal("expected a change when toggling back off")
	}
}

func TestFramerReadyChangedSignalsPeerState(t *testing.T) {
	sender := arpahost.NewFramer(nil)
	dg, _ := sender.SetHostReady(true)

	receiver := arpahost.NewFramer(nil)
	receiver.Decode(dg, nil)

	select {
	case ready := <-receiver.ReadyChanged:
		if !ready {
			t.Fatal("expected ReadyChanged to report true")
		}
	default:
		t.Fatal("expected a value on ReadyChanged")
	}
}

func TestFramerResetSequence(t *testing.T) {
	f := arpahost.NewFramer(nil)
	f.Encode([]byte{0, 0})
	f.Encode([]byte{0, 0})
	f.ResetSequence()
	dg, _ := f.Encode([]byte{0, 0})
	seq := uint32(dg[4])<<24 | uint32(dg[5])<<16 | uint32(dg[6])<<8 | uint32(dg[7])
	if seq != 1 {
		t.Fatalf("sequence after reset = %d, want 1", seq)
	}
}

func TestFramerReassemblesFragments(t *testing.T) {
	// A two-fragment message: first fragment has LAST unset, second has
	// it set. Framer.Encode always sets LAST, so this test constructs
	// the fragments directly to exercise Decode's reassembly path.
	f := arpahost.NewFramer(nil)

	first := make([]byte, 16)
	copy(first[0:4], arpahost.Magic[:])
	first[9] = 3 // word length 3: flags word + 2 payload words
	first[11] = 0 // flags: LAST unset
	copy(first[12:16], []byte{0xAA, 0xBB, 0xCC, 0xDD})

	second := make([]byte, 14)
	copy(second[0:4], arpahost.Magic[:])
	second[7] = 1 // sequence 1
	second[9] = 2 // word length 2: flags word + 1 payload word
	second[11] = byte(arpahost.FlagLast)
	copy(second[12:14], []byte{0xEE, 0xFF})

	res := f.Decode(first, nil)
	if res.Done {
		t.Fatal("first fragment should not be Done")
	}
	res = f.Decode(second, res.Payload)
	if !res.Done {
		t.Fatal("second fragment should complete the message")
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	if string(res.Payload) != string(want) {
		t.Fatalf("reassembled payload = %v, want %v", res.Payload, want)
	}
}
