package arpahost

import "fmt"

// An OutboundMessage is a fully-formed 1822 message — leader plus
// body — ready for the Framer to encode and the Transport to send.
// The body is whatever follows the leader: an NCP control header and
// opcode stream (link 0) or a data header and raw payload (user
// links).
type OutboundMessage struct {
	Leader Leader
	Body   []byte
}

// ConsoleAction is what the event loop should do with a connection's
// downstream console socket.
type ConsoleAction int

const (
	ConsoleOpen ConsoleAction = iota
	ConsoleWrite
	ConsoleClose
)

// A ConsoleEffect is one action the NCP engine asks the event loop to
// perform against a connection's console socket. The engine never
// touches sockets directly (spec.md §4.1's external-collaborator
// boundary); it only describes what should happen.
type ConsoleEffect struct {
	Host   HostAddress
	Action ConsoleAction
	Data   []byte
}

// Effects bundles everything a single NCP engine call can produce:
// messages bound for the IMP and actions bound for the console.
type Effects struct {
	IMP     []OutboundMessage
	Console []ConsoleEffect
}

// Merge appends other's effects to e and returns e.
func (e Effects) Merge(other Effects) Effects {
	e.IMP = append(e.IMP, other.IMP...)
	e.Console = append(e.Console, other.Console...)
	return e
}

// An NCPHandler is the subset of the NCP engine the router drives.
// Implemented by *Engine; described separately here so router.go has
// no direct dependency on the engine's internals.
type NCPHandler interface {
	HandleControl(host HostAddress, payload []byte) Effects
	HandleData(host HostAddress, link uint8, payload []byte) Effects
	HandleRFNM(host HostAddress)
	ResetToListening(host HostAddress) Effects
}

// A TelemetryHandler decodes link-0 payloads that are IMP self-reports
// rather than NCP traffic. Implemented by *TelemetryStore.
type TelemetryHandler interface {
	// Matches reports whether payload looks like a telemetry record
	// rather than an NCP control message, per spec.md §4.5's
	// dispatch table.
	Matches(payload []byte) bool
	// Decode classifies and stores payload in the per-IMP slot.
	Decode(imp int, payload []byte)
}

// A ResetScheduler arms the three ~1s-spaced NOPs spec.md §4.3
// requires in response to an inbound RESET. The event loop implements
// this; the router itself never sleeps or blocks.
type ResetScheduler interface {
	ArmResetBurst(host HostAddress)
}

// Router classifies a reassembled 1822 message and dispatches it to
// the NCP engine or the telemetry decoder, per spec.md §4.3.
type Router struct {
	NCP       NCPHandler
	Telemetry TelemetryHandler
	Framer    *Framer
	Resets    ResetScheduler
	Log       FaultLogger
}

// Route processes one reassembled message (leader plus payload) and
// returns the resulting effects.
func (r *Router) Route(l Leader, payload []byte) Effects {
	switch l.Type {
	case TypeRegular:
		return r.routeRegular(l, payload)
	case TypeRFNM:
		r.NCP.HandleRFNM(l.Host)
	case TypeReset:
		r.Framer.ResetSequence()
		eff := r.NCP.ResetToListening(l.Host)
		r.Resets.ArmResetBurst(l.Host)
		return eff
	case TypeDead:
		r.logf("router: host %s reports DEAD, subtype %s", l.Host, deadSubtypeName(l.Subtype))
	default:
		r.logf("router: ignoring message type %s from %s", l.Type, l.Host)
	}
	return Effects{}
}

func (r *Router) routeRegular(l Leader, payload []byte) Effects {
	if l.Link != 0 {
		return r.NCP.HandleData(l.Host, l.Link, payload)
	}
	if r.Telemetry != nil && r.Telemetry.Matches(payload) {
		r.Telemetry.Decode(l.Host.IMPNumber(), payload)
		return Effects{}
	}
	return r.NCP.HandleControl(l.Host, payload)
}

func deadSubtypeName(subtype uint8) string {
	switch subtype {
	case 0:
		return "IMP unreachable"
	case 1:
		return "host not up"
	case 3:
		return "communication prohibited"
	default:
		return fmt.Sprintf("unknown(%d)", subtype)
	}
}

func (r *Router) logf(format string, args ...interface{}) {
	if r.Log != nil {
		r.Log.Fault("router", fmt.Sprintf(format, args...))
	}
}
