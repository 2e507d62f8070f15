package arpahost

import "fmt"

// ConnState is one state of the per-peer NCP connection machine
// (spec.md §4.4.2).
type ConnState uint8

const (
	StateListening ConnState = iota
	StateICPPhase1
	StateICPPhase2
	StateEstablished
)

var connStateNames = [...]string{
	"LISTENING", "ICP_PHASE1", "ICP_PHASE2", "ESTABLISHED",
}

func (s ConnState) String() string {
	if int(s) < len(connStateNames) {
		return connStateNames[s]
	}
	return fmt.Sprintf("STATE(%d)", uint8(s))
}

// EngineConfig holds the operator-tunable values spec.md §9 calls out
// as application policy rather than protocol: the initial data-socket
// base, the chosen send link, the opening flow-control grant, the
// login/logout strings, and the two delay timers. internal/config
// populates this from the YAML process configuration.
type EngineConfig struct {
	DataSocketBase   uint32
	DataSendLink     uint8
	InitialMessages  uint16
	InitialBits      uint32
	LoginPrompt      string
	LogoutPrompt     string
	LoginDelayTicks  uint64
	CloseDelayTicks  uint64
	OutputBufferCap  int
	DataChunkMax     int
}

// DefaultEngineConfig mirrors the literal constants waitsconnect.c
// hardcodes: base socket 100, send link 45, opening grant of 10
// messages / 16000 bits, 1s login delay, 3s close delay, an 8000-byte
// output buffer and 100-byte-per-message flush chunks.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DataSocketBase:  100,
		DataSendLink:    45,
		InitialMessages: 10,
		InitialBits:     16000,
		LoginPrompt:     "login\r",
		LogoutPrompt:    "logout\r\n",
		LoginDelayTicks: 1,
		CloseDelayTicks: 3,
		OutputBufferCap: 8000,
		DataChunkMax:    100,
	}
}

// Connection is the per-peer-host NCP connection record. One exists
// for every host address the engine has ever heard from; hosts that
// have never gone past LISTENING carry an otherwise-zero record.
type Connection struct {
	Host  HostAddress
	State ConnState

	// ICP phase 1: recorded off the listen-socket RTS.
	ListenSocket    uint32
	ICPRemoteSocket uint32
	ICPLink         uint8
	Protocol        ProtocolVariant

	// Data sockets allocated at phase 1 completion.
	DataSocket    uint32
	DataRecvLocal uint32
	DataSendLocal uint32

	DataRecvRemote uint32
	DataRecvLink   uint8
	DataSendRemote uint32
	DataSendLink   uint8

	GotSTR bool
	GotRTS bool

	SendAllocation int
	OutputBuffer   []byte

	ConsoleOpen      bool
	LoginDeadline    uint64 // 0 = not armed
	CloseDeadline    uint64 // 0 = not armed

	oldFilter OldTelnetFilter
	newFilter NewTelnetFilter
}

// resetToListening clears c back to a fresh LISTENING record,
// preserving only the host address.
func (c *Connection) resetToListening() {
	host := c.Host
	*c = Connection{Host: host, State: StateListening}
}

// Engine is the NCP connection manager: one Connection per peer host,
// driven by Route via the NCPHandler interface. It never touches a
// socket directly; every externally visible action is reported back
// as an Effects value (spec.md §9's cyclic-back-reference note, and
// §4.1's external-collaborator boundary).
type Engine struct {
	cfg   EngineConfig
	conns map[HostAddress]*Connection
	next  uint32 // next data-socket base to allocate
	now   uint64 // tick counter, advanced by Tick
	log   FaultLogger
}

// NewEngine constructs an Engine with the given configuration.
func NewEngine(cfg EngineConfig, log FaultLogger) *Engine {
	return &Engine{
		cfg:   cfg,
		conns: make(map[HostAddress]*Connection),
		next:  cfg.DataSocketBase,
		log:   log,
	}
}

// SetPrompts updates the login/logout strings live (spec.md §9 names
// them as configuration, not protocol) without touching any
// connection's socket or flow-control state. Like every other Engine
// mutation this must only be called from the engine's single-writer
// goroutine; Loop arranges that by handling config reloads in its own
// select loop rather than from the watcher's goroutine directly.
func (e *Engine) SetPrompts(login, logout string) {
	e.cfg.LoginPrompt = login
	e.cfg.LogoutPrompt = logout
}

// connFor returns the connection record for host, creating a fresh
// LISTENING one if none exists yet.
func (e *Engine) connFor(host HostAddress) *Connection {
	c, ok := e.conns[host]
	if !ok {
		c = &Connection{Host: host, State: StateListening}
		e.conns[host] = c
	}
	return c
}

// State reports the current connection state for host, for tests and
// for the operator console's status dump.
func (e *Engine) State(host HostAddress) ConnState {
	if c, ok := e.conns[host]; ok {
		return c.State
	}
	return StateListening
}

// ConnSummary is a snapshot of one connection's state, for the
// operator console's periodic status dump (spec.md §6).
type ConnSummary struct {
	Host  HostAddress
	State ConnState
}

// Snapshot returns a summary of every connection the engine has ever
// heard from, in no particular order.
func (e *Engine) Snapshot() []ConnSummary {
	out := make([]ConnSummary, 0, len(e.conns))
	for host, c := range e.conns {
		out = append(out, ConnSummary{Host: host, State: c.State})
	}
	return out
}

// HandleRFNM implements NCPHandler. Per spec.md §4.4.6 RFNM carries no
// NCP-level obligation; it only means the IMP accepted our last
// message. Nothing to do.
func (e *Engine) HandleRFNM(host HostAddress) {}

// ResetToListening implements NCPHandler for an inbound 1822 RESET.
// This is a transport-level event, not a protocol close: the engine
// drops any in-flight ICP/data state for host and returns to
// LISTENING without notifying the peer (the three-NOP burst the
// router arms is the host-level acknowledgement; no CLS is owed here
// because the peer's own state was just as thoroughly reset).
func (e *Engine) ResetToListening(host HostAddress) Effects {
	c := e.connFor(host)
	wasEstablished := c.State == StateEstablished || c.State == StateICPPhase2
	c.resetToListening()
	if wasEstablished {
		return Effects{Console: []ConsoleEffect{{Host: host, Action: ConsoleClose}}}
	}
	return Effects{}
}

// HandleControl implements NCPHandler for link-0 NCP control traffic.
// It peels the fixed header, then walks the opcode stream left to
// right, stopping at the first unknown opcode (spec.md §4.4.6).
func (e *Engine) HandleControl(host HostAddress, payload []byte) Effects {
	_, _, _, rest, err := splitNCPHeader(payload)
	if err != nil {
		e.logf("short NCP control message from %s: %v", host, err)
		return Effects{}
	}
	c := e.connFor(host)
	var eff Effects
	for len(rest) > 0 {
		d, ok := decodeOpcode(rest)
		if !ok {
			e.logf("unknown or truncated NCP opcode from %s, stopping parse", host)
			return eff
		}
		rest = rest[d.Consumed:]
		eff = eff.Merge(e.dispatch(c, d))
	}
	return eff
}

func (e *Engine) dispatch(c *Connection, d decodedOpcode) Effects {
	switch d.Op {
	case OpNOP:
		return Effects{}
	case OpRTS:
		return e.handleRTS(c, d.RTS)
	case OpSTR:
		return e.handleSTR(c, d.STR)
	case OpCLS:
		return e.handleCLS(c, d.CLS)
	case OpALL:
		return e.handleALL(c, d.ALL)
	case OpRST:
		e.logf("RST from %s", c.Host)
		return Effects{IMP: []OutboundMessage{e.controlMessage(c.Host, EncodeRRP(nil))}}
	case OpRRP:
		e.logf("RRP from %s", c.Host)
		return Effects{}
	case OpECO:
		return Effects{IMP: []OutboundMessage{e.controlMessage(c.Host, EncodeERP(nil, d.ECO.Data))}}
	case OpERP:
		return Effects{}
	case OpERR:
		e.logf("ERR from %s: code %d", c.Host, d.ERR.Code)
		return Effects{}
	case OpGVB, OpRET, OpINR, OpINS:
		// Accepted but not acted upon in core, per spec.md §4.4.1.
		return Effects{}
	default:
		return Effects{}
	}
}

// controlMessage wraps an opcode stream in the fixed NCP control
// header and a link-0 leader, ready for the Framer/Transport.
func (e *Engine) controlMessage(host HostAddress, opcodes []byte) OutboundMessage {
	body := appendNCPHeader(make([]byte, 0, ncpHeaderLen+len(opcodes)), 0, 8, len(opcodes))
	body = append(body, opcodes...)
	return OutboundMessage{
		Leader: Leader{Type: TypeRegular, Host: host, Link: 0},
		Body:   body,
	}
}

// dataMessage wraps raw bytes in the fixed NCP data header and a
// leader addressed to the given link.
func (e *Engine) dataMessage(host HostAddress, link uint8, data []byte) OutboundMessage {
	body := appendNCPHeader(make([]byte, 0, ncpHeaderLen+len(data)), 0, 8, len(data))
	body = append(body, data...)
	return OutboundMessage{
		Leader: Leader{Type: TypeRegular, Host: host, Link: link},
		Body:   body,
	}
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Fault("ncp", fmt.Sprintf(format, args...))
	}
}
