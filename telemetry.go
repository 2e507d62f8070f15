package arpahost

import (
	"encoding/binary"
	"fmt"
	"time"
)

// TelemetryKind classifies a decoded telemetry record (spec.md §4.5).
type TelemetryKind int

const (
	KindUnknown TelemetryKind = iota
	KindTroubleReport
	KindThroughput1973
	KindStatus1976
	KindThroughput1976
)

func (k TelemetryKind) String() string {
	switch k {
	case KindTroubleReport:
		return "TROUBLE-REPORT"
	case KindThroughput1973:
		return "THROUGHPUT-1973"
	case KindStatus1976:
		return "STATUS-304"
	case KindThroughput1976:
		return "THROUGHPUT-302"
	default:
		return "UNKNOWN"
	}
}

// Telemetry signature markers, in octal as the IMP firmware writes
// them (spec.md §4.5's dispatch table).
const (
	troubleReportWord1 uint16 = 0o301
	troubleReportWord3 uint16 = 0o303
	throughput1973Word uint16 = 0o302
)

// TelemetrySlot is one per-IMP record. Fields for every kind are kept
// inline and overwritten in place on each decode — spec.md §4.5
// requires no allocation per message.
type TelemetrySlot struct {
	IMP       int
	Kind      TelemetryKind
	UpdatedAt time.Time
	Count     uint64
	DecodeFailures uint64

	TroubleReport  TroubleReport
	Throughput1973 Throughput1973
	Status1976     Status1976
	Throughput1976 Throughput1976
}

// TelemetryStore holds one slot per IMP number (0-63) plus a tally of
// payloads that matched no known signature, keyed by their first
// word.
type TelemetryStore struct {
	slots        [64]TelemetrySlot
	unknownTally map[uint16]uint64
	log          FaultLogger
}

// NewTelemetryStore constructs an empty store.
func NewTelemetryStore(log FaultLogger) *TelemetryStore {
	return &TelemetryStore{unknownTally: make(map[uint16]uint64), log: log}
}

// Slot returns the current record for the given IMP number. ok is
// false if imp is out of range or nothing has been decoded yet.
func (s *TelemetryStore) Slot(imp int) (TelemetrySlot, bool) {
	if imp < 0 || imp >= len(s.slots) {
		return TelemetrySlot{}, false
	}
	slot := s.slots[imp]
	return slot, slot.Kind != KindUnknown || slot.Count > 0
}

// word reads payload word i (0-indexed, big-endian) or 0 if short.
func word(payload []byte, i int) uint16 {
	off := i * 2
	if off+2 > len(payload) {
		return 0
	}
	return binary.BigEndian.Uint16(payload[off : off+2])
}

// word3DigitCode decodes the IMP's packed-octal decimal type code:
// word 3 split into three 3-bit groups forming 100*d1 + 10*d2 + d3
// (spec.md §4.5).
func word3DigitCode(payload []byte) int {
	w3 := word(payload, 2)
	d1 := (w3 >> 6) & 0x7
	d2 := (w3 >> 3) & 0x7
	d3 := w3 & 0x7
	return int(d1)*100 + int(d2)*10 + int(d3)
}

// claimedKind inspects payload's signature words and reports which
// telemetry kind it claims to be, independent of whether the length
// actually matches (spec.md §9's type-302 collision note: dispatch by
// signature, then confirm by length).
func claimedKind(payload []byte) (TelemetryKind, int) {
	w1 := word(payload, 0)
	switch w1 {
	case troubleReportWord1, troubleReportWord3:
		return KindTroubleReport, 64
	case throughput1973Word:
		return KindThroughput1973, 106
	}
	switch word3DigitCode(payload) {
	case 304:
		return KindStatus1976, 72
	case 302:
		return KindThroughput1976, 118
	}
	return KindUnknown, 0
}

// Matches implements TelemetryHandler: a link-0 payload is telemetry
// (rather than NCP control) if it carries one of the four known
// signature words. Router.routeRegular relies on this to decide
// which path a REGULAR link-0 message takes.
func (s *TelemetryStore) Matches(payload []byte) bool {
	kind, _ := claimedKind(payload)
	return kind != KindUnknown
}

// Decode implements TelemetryHandler. A signature match with the
// wrong length is a decode failure: counted, logged, not stored
// (spec.md §4.5's final paragraph).
func (s *TelemetryStore) Decode(imp int, payload []byte) {
	if imp < 0 || imp >= len(s.slots) {
		return
	}
	slot := &s.slots[imp]
	slot.IMP = imp
	slot.Count++
	slot.UpdatedAt = time.Now()

	kind, wantLen := claimedKind(payload)
	if kind == KindUnknown {
		s.unknownTally[word(payload, 0)]++
		return
	}
	if len(payload) != wantLen {
		slot.DecodeFailures++
		s.logf("telemetry: %s from IMP %d claimed but length %d != %d, decode failed",
			kind, imp, len(payload), wantLen)
		return
	}

	switch kind {
	case KindTroubleReport:
		slot.TroubleReport = decodeTroubleReport(payload)
	case KindThroughput1973:
		slot.Throughput1973 = decodeThroughput1973(payload)
	case KindStatus1976:
		slot.Status1976 = decodeStatus1976(payload)
	case KindThroughput1976:
		slot.Throughput1976 = decodeThroughput1976(payload)
	}
	slot.Kind = kind
}

func (s *TelemetryStore) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Fault("telemetry", fmt.Sprintf(format, args...))
	}
}
