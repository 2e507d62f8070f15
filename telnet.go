package arpahost

// ProtocolVariant selects which telnet dialect a console connection
// speaks, determined by which ICP listen socket the client addressed
// (spec.md §4.4.5).
type ProtocolVariant int

const (
	OldTelnet ProtocolVariant = iota
	NewTelnet
)

// Old telnet command bytes (0x80-0x85), logged and suppressed.
const (
	oldTelnetMark   = 0x80
	oldTelnetBreak  = 0x81
	oldTelnetNOP    = 0x82
	oldTelnetNoEcho = 0x83
	oldTelnetEcho   = 0x84
	oldTelnetHide   = 0x85
)

var oldTelnetCommandNames = map[byte]string{
	oldTelnetMark:   "MARK",
	oldTelnetBreak:  "BREAK",
	oldTelnetNOP:    "NOP",
	oldTelnetNoEcho: "NOECHO",
	oldTelnetEcho:   "ECHO",
	oldTelnetHide:   "HIDE",
}

// OldTelnetFilter implements the pre-RFC854 ARPANET telnet byte
// processing spec.md §4.4.5 describes for listen socket 1: NUL is
// ignored, CR peeks one byte to decide whether to synthesize a
// trailing LF, and 0x80-0x85 are logged command bytes rather than
// data.
type OldTelnetFilter struct {
	pendingCR bool
	Log       FaultLogger
}

// Process consumes in (console-bound bytes already stripped of any
// NCP framing) and returns the bytes to forward to the console.
func (f *OldTelnetFilter) Process(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		if f.pendingCR {
			f.pendingCR = false
			switch b {
			case 0x00:
				out = append(out, '\r')
			case 0x0A:
				out = append(out, '\r', '\n')
			default:
				out = append(out, '\r', '\n')
				out = f.processByte(out, b)
			}
			continue
		}
		out = f.processByte(out, b)
	}
	return out
}

func (f *OldTelnetFilter) processByte(out []byte, b byte) []byte {
	switch {
	case b == 0x00:
		return out
	case b == 0x0D:
		f.pendingCR = true
		return out
	case b >= oldTelnetMark && b <= oldTelnetHide:
		if f.Log != nil {
			f.Log.Fault("ncp", "old telnet command "+oldTelnetCommandNames[b]+" suppressed")
		}
		return out
	case b&0x80 == 0:
		return append(out, b)
	default:
		return out
	}
}

// New telnet (RFC 854) command bytes relevant to spec.md §4.4.5.
const (
	iacByte  = 0xFF
	iacWill  = 0xFB
	iacWont  = 0xFC
	iacDo    = 0xFD
	iacDont  = 0xFE
	iacEC    = 0xF7
)

type newTelnetState int

const (
	newTelnetData newTelnetState = iota
	newTelnetCommand
	newTelnetOption
)

// NewTelnetFilter implements the RFC 854 IAC processing spec.md
// §4.4.5 describes for listen socket 23. Option negotiation replies
// are explicitly not synthesized — that's left to the caller, as
// spec.md notes.
type NewTelnetFilter struct {
	state newTelnetState
	Log   FaultLogger
}

// Process consumes in and returns the bytes to forward to the
// console.
func (f *NewTelnetFilter) Process(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		switch f.state {
		case newTelnetData:
			if b == iacByte {
				f.state = newTelnetCommand
				continue
			}
			out = append(out, b)
		case newTelnetCommand:
			switch {
			case b == iacByte:
				out = append(out, iacByte)
				f.state = newTelnetData
			case b == iacWill || b == iacWont || b == iacDo || b == iacDont:
				f.state = newTelnetOption
			case b == iacEC:
				out = append(out, '\b', ' ', '\b')
				f.state = newTelnetData
			default:
				if f.Log != nil {
					f.Log.Fault("ncp", "new telnet command dropped")
				}
				f.state = newTelnetData
			}
		case newTelnetOption:
			// Option byte consumed; no negotiation reply synthesized.
			f.state = newTelnetData
		}
	}
	return out
}
