package arpahost

import (
	"encoding/binary"
	"fmt"
)

// Magic is the four-byte framer magic that prefixes every datagram
// exchanged with the IMP emulator.
var Magic = [4]byte{'H', '3', '1', '6'}

// Framer flag bits, packed into the envelope's 16-bit flags word.
const (
	FlagLast      uint16 = 1 << 0
	FlagHostReady uint16 = 1 << 1
)

// envelopeHeaderLen is the fixed magic+sequence+wordlen portion of
// the envelope; the flags word is counted as part of the framed word
// length, matching the original wire format.
const envelopeHeaderLen = 10

// A Framer implements the reliable-sequenced encapsulation described
// in spec.md §4.2: magic, sequence number, word length and flags
// around an arbitrary payload, with LAST-flag reassembly of
// multi-fragment messages. A Framer only ever emits single-fragment
// messages, so LAST is always set on send.
type Framer struct {
	txSeq uint32
	rxSeq uint32

	flags uint16 // our outgoing flags, including HOST-READY

	peerReady      bool
	peerReadyKnown bool

	// ReadyChanged receives the peer's new HOST-READY state whenever
	// it changes. Buffered so Decode never blocks on a slow reader;
	// Loop.Run drains it. A change arriving while the buffer is full
	// is dropped.
	ReadyChanged chan bool

	log FaultLogger
}

// NewFramer constructs a Framer. log may be nil, in which case
// framing faults are dropped silently.
func NewFramer(log FaultLogger) *Framer {
	return &Framer{
		ReadyChanged: make(chan bool, 8),
		log:          log,
	}
}

// Encode builds one framed datagram carrying payload. The IMP side
// frames in whole 16-bit words, but NCP control/data bodies (a 4-byte
// leader plus a 5-byte header) are routinely odd-length, so an odd
// payload is padded with one trailing zero byte to the next word
// boundary — the pad carries no meaning and the NCP header's own byte
// count is what callers use to recover the real length. It increments
// the sequence number as a side effect.
func (f *Framer) Encode(payload []byte) ([]byte, error) {
	if len(payload)%2 != 0 {
		padded := make([]byte, len(payload)+1)
		copy(padded, payload)
		payload = padded
	}
	w := len(payload) / 2
	f.txSeq++
	out := make([]byte, envelopeHeaderLen+2+2*w)
	copy(out[0:4], Magic[:])
	binary.BigEndian.PutUint32(out[4:8], f.txSeq)
	binary.BigEndian.PutUint16(out[8:10], uint16(w+1))
	binary.BigEndian.PutUint16(out[10:12], f.flags|FlagLast)
	copy(out[12:], payload)
	return out, nil
}

// SetHostReady toggles our HOST-READY bit. If it actually changes,
// it returns a one-word zero-payload datagram the caller must send to
// inform the peer, and true. Otherwise it returns (nil, false).
//
// This is the "small flag-bit operation" the framer exposes instead
// of granting the NCP engine direct access to framer state.
func (f *Framer) SetHostReady(ready bool) ([]byte, bool) {
	was := f.flags&FlagHostReady != 0
	if ready == was {
		return nil, false
	}
	if ready {
		f.flags |= FlagHostReady
	} else {
		f.flags &^= FlagHostReady
	}
	dg, err := f.Encode(make([]byte, 2))
	if err != nil {
		return nil, false
	}
	return dg, true
}

// DecodeResult is one reassembled framer payload.
type DecodeResult struct {
	Payload []byte
	Done    bool // true once LAST has been seen and Payload is complete
}

// Decode parses one inbound datagram, appending its payload bytes to
// buf. It returns the accumulated payload and whether LAST was seen
// (message complete). Malformed or out-of-order datagrams are logged
// and dropped; Decode never returns an error to the caller — per
// spec.md §4.2's failure policy the framer simply delivers fewer
// bytes, it never signals failure upward.
func (f *Framer) Decode(dg []byte, buf []byte) DecodeResult {
	if len(dg) < 12 {
		f.logf("framing: short datagram: %d bytes", len(dg))
		return DecodeResult{Payload: buf}
	}
	if [4]byte(dg[0:4]) != Magic {
		f.logf("framing: bad magic")
		return DecodeResult{Payload: buf}
	}

	seq := binary.BigEndian.Uint32(dg[4:8])
	if seq == 0 && f.rxSeq != 0 {
		f.logf("framing: peer restarted, resyncing sequence")
		f.rxSeq = 0
	} else if seq < f.rxSeq {
		f.logf("framing: sequence regression: got %d, expected >= %d", seq, f.rxSeq)
		return DecodeResult{Payload: buf}
	}
	f.rxSeq = seq + 1

	w := binary.BigEndian.Uint16(dg[8:10])
	if len(dg) != envelopeHeaderLen+2*int(w) {
		f.logf("framing: length mismatch: %d bytes, word-length %d", len(dg), w)
		return DecodeResult{Payload: buf}
	}
	flags := binary.BigEndian.Uint16(dg[10:12])

	ready := flags&FlagHostReady != 0
	if !f.peerReadyKnown || ready != f.peerReady {
		f.peerReady = ready
		f.peerReadyKnown = true
		select {
		case f.ReadyChanged <- ready:
		default:
		}
	}

	if w > 0 {
		buf = append(buf, dg[12:]...)
	}
	return DecodeResult{Payload: buf, Done: flags&FlagLast != 0}
}

// ResetSequence zeroes both sequence counters, as happens when the
// router processes an inbound RESET (spec.md §4.3).
func (f *Framer) ResetSequence() {
	f.txSeq = 0
	f.rxSeq = 0
}

func (f *Framer) logf(format string, args ...interface{}) {
	if f.log != nil {
		f.log.Fault("framing", fmt.Sprintf(format, args...))
	}
}
