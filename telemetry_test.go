package arpahost_test

import (
	"encoding/binary"
	"testing"

	"github.com/n7qst/arpahost"
)

func putWord(b []byte, i int, v uint16) {
	binary.BigEndian.PutUint16(b[i*2:i*2+2], v)
}

func TestTelemetryStoreDecodesStatus1976(t *testing.T) {
	s := arpahost.NewTelemetryStore(nil)

	data := make([]byte, 72) // 36 words
	putWord(data, 2, 0o304)      // word index 2's packed digits decode to 304
	putWord(data, 3, 1234)       // BANOM, low 11 bits
	putWord(data, 17, 10)        // NOPsSent
	putWord(data, 18, 7)         // NOPsReceived
	putWord(data, 29, 9600)      // ModemSpeed

	if !s.Matches(data) {
		t.Fatal("Matches should recognize a Status(304) signature")
	}
	s.Decode(3, data)

	slot, ok := s.Slot(3)
	if !ok {
		t.Fatal("expected a stored slot for IMP 3")
	}
	if slot.Kind != arpahost.KindStatus1976 {
		t.Fatalf("slot.Kind = %v, want KindStatus1976", slot.Kind)
	}
	if slot.Status1976.BANOM != 1234 {
		t.Fatalf("BANOM = %d, want 1234", slot.Status1976.BANOM)
	}
	if slot.Status1976.NOPsSent != 10 || slot.Status1976.NOPsReceived != 7 {
		t.Fatalf("NOPs sent/received = %d/%d, want 10/7", slot.Status1976.NOPsSent, slot.Status1976.NOPsReceived)
	}
	if slot.Status1976.ModemSpeed != 9600 {
		t.Fatalf("ModemSpeed = %d, want 9600", slot.Status1976.ModemSpeed)
	}
	if slot.Count != 1 {
		t.Fatalf("Count = %d, want 1", slot.Count)
	}
}

func TestTelemetryStoreDecodesThroughput1976(t *testing.T) {
	s := arpahost.NewTelemetryStore(nil)

	data := make([]byte, 118) // 59 words
	// word3DigitCode must decode to 302.
	putWord(data, 2, 0o302)
	for i := 0; i < 5; i++ {
		putWord(data, 3+i*2, uint16(100+i))
	}

	s.Decode(5, data)
	slot, ok := s.Slot(5)
	if !ok {
		t.Fatal("expected a stored slot for IMP 5")
	}
	if slot.Kind != arpahost.KindThroughput1976 {
		t.Fatalf("slot.Kind = %v, want KindThroughput1976", slot.Kind)
	}
	var sum uint16
	for _, m := range slot.Throughput1976.Modem {
		sum += m.PacketsOut
	}
	want := uint16(100 + 101 + 102 + 103 + 104)
	if sum != want {
		t.Fatalf("packets-out sum = %d, want %d", sum, want)
	}
}

func TestTelemetryStoreDecodesThroughput1973ByFirstWord(t *testing.T) {
	s := arpahost.NewTelemetryStore(nil)

	data := make([]byte, 106) // 53 words
	putWord(data, 0, 0o302)
	for i := 0; i < 5; i++ {
		putWord(data, 3+i*2, uint16(i+1))
	}

	s.Decode(9, data)
	slot, ok := s.Slot(9)
	if !ok {
		t.Fatal("expected a stored slot for IMP 9")
	}
	if slot.Kind != arpahost.KindThroughput1973 {
		t.Fatalf("slot.Kind = %v, want KindThroughput1973", slot.Kind)
	}
}

func TestTelemetryStoreDecodesTroubleReportAndHaltPC(t *testing.T) {
	s := arpahost.NewTelemetryStore(nil)

	data := make([]byte, 64) // 32 words
	putWord(data, 0, 0o301)
	putWord(data, 3, 0o17000) // HaltPC

	s.Decode(12, data)
	slot, ok := s.Slot(12)
	if !ok {
		t.Fatal("expected a stored slot for IMP 12")
	}
	if slot.Kind != arpahost.KindTroubleReport {
		t.Fatalf("slot.Kind = %v, want KindTroubleReport", slot.Kind)
	}
	if slot.TroubleReport.HaltPC != 0o17000 {
		t.Fatalf("HaltPC = %o, want %o", slot.TroubleReport.HaltPC, 0o17000)
	}
}

func TestTelemetryStoreCountsDecodeFailuresOnLengthMismatch(t *testing.T) {
	s := arpahost.NewTelemetryStore(nil)

	data := make([]byte, 40) // claims TroubleReport (64 bytes) but is short
	putWord(data, 0, 0o301)

	s.Decode(20, data)
	slot, ok := s.Slot(20)
	if !ok {
		t.Fatal("expected a stored slot even on decode failure (Count still increments)")
	}
	if slot.DecodeFailures != 1 {
		t.Fatalf("DecodeFailures = %d, want 1", slot.DecodeFailures)
	}
	if slot.Kind != arpahost.KindUnknown {
		t.Fatalf("Kind after decode failure = %v, want KindUnknown (nothing stored)", slot.Kind)
	}
}

func TestTelemetryStoreUnknownSignatureDoesNotMatch(t *testing.T) {
	s := arpahost.NewTelemetryStore(nil)
	data := make([]byte, 72)
	putWord(data, 0, 0o777)
	if s.Matches(data) {
		t.Fatal("an unrecognized signature should not match")
	}
}

func TestTelemetryStoreSlotOutOfRange(t *testing.T) {
	s := arpahost.NewTelemetryStore(nil)
	if _, ok := s.Slot(64); ok {
		t.Fatal("IMP 64 is out of the 0-63 range and should not be ok")
	}
	if _, ok := s.Slot(-1); ok {
		t.Fatal("negative IMP number should not be ok")
	}
}
