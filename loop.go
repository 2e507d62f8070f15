package arpahost

import (
	"context"
	"fmt"
	"net"
	"time"
)

// OperatorCommand is one single-character command read from the
// operator's console (spec.md §6): toggle verbose decode logging,
// dump connection status, or quit.
type OperatorCommand byte

const (
	CmdToggleDecode OperatorCommand = 'd'
	CmdDumpStatus   OperatorCommand = 's'
	CmdQuit         OperatorCommand = 'q'
)

// A ConsoleEvent reports inbound activity on one connection's
// downstream console socket: either a chunk of bytes typed there, or
// end-of-stream.
type ConsoleEvent struct {
	Host HostAddress
	Data []byte
	EOF  bool
}

// ConsoleDriver is the downstream collaborator spec.md §4.4.5
// describes as an ordinary TCP byte stream per established
// connection. internal/console implements this against real sockets;
// tests use an in-memory stub.
type ConsoleDriver interface {
	Open(host HostAddress) error
	Write(host HostAddress, data []byte) error
	Close(host HostAddress) error
	Events() <-chan ConsoleEvent
}

// PromptUpdate carries a live-reloaded login/logout prompt pair onto
// the loop's single writer goroutine, from internal/config's
// fsnotify-backed Watcher (spec.md §9's "expose them as
// configuration").
type PromptUpdate struct {
	LoginPrompt  string
	LogoutPrompt string
}

// resetBurst tracks an in-progress three-NOP burst (spec.md §4.3,
// §8 scenario 2).
type resetBurst struct {
	remaining int
	nextTick  uint64
}

// Loop is the single-threaded cooperative event loop of spec.md §5,
// realized as one goroutine draining channels fed by small reader
// goroutines, in the shape of the teacher's maint.go monitor-plus-
// buffered-report-channel pattern generalized to three input sources
// (IMP datagrams, console events, operator commands) plus a ticker.
// Every mutation of Framer/Engine state happens on this one
// goroutine, so neither needs a lock.
type Loop struct {
	Transport *Transport
	Framer    *Framer
	Router    *Router
	Engine    *Engine
	Console   ConsoleDriver
	Operator  <-chan OperatorCommand
	Log       FaultLogger

	// Prompts is optional: if the caller wires a channel here (see
	// cmd/arpahost's host.go), a config-file reload's new login/logout
	// strings are applied on this goroutine. A nil channel's select
	// case never fires, so live reload is opt-in.
	Prompts <-chan PromptUpdate

	reassembly    []byte
	bursts        map[HostAddress]*resetBurst
	tick          uint64
	decodeVerbose bool
}

// NewLoop wires a Loop's collaborators together, including the Router
// that sits between the Framer and the Engine/TelemetryStore.
func NewLoop(transport *Transport, framer *Framer, engine *Engine, telemetry *TelemetryStore, console ConsoleDriver, operator <-chan OperatorCommand, log FaultLogger) *Loop {
	l := &Loop{
		Transport: transport,
		Framer:    framer,
		Engine:    engine,
		Console:   console,
		Operator:  operator,
		Log:       log,
		bursts:    make(map[HostAddress]*resetBurst),
	}
	l.Router = &Router{NCP: engine, Telemetry: telemetry, Framer: framer, Resets: l, Log: log}
	return l
}

// ArmResetBurst implements ResetScheduler. Ticks fire roughly once a
// second (Run's one-second ticker), so spacing a NOP one tick apart meets
// spec.md §4.3's "~1s apart" requirement without the router or engine
// ever blocking on a timer themselves.
func (l *Loop) ArmResetBurst(host HostAddress) {
	l.bursts[host] = &resetBurst{remaining: 3, nextTick: l.tick + 1}
}

// Run drives the event loop until ctx is cancelled or the transport
// fails outright. The datagram reader never blocks longer than ~1s,
// so the ticker keeps firing even while the IMP is silent.
func (l *Loop) Run(ctx context.Context) error {
	dgrams := make(chan []byte, 16)
	dgramErrs := make(chan error, 1)
	go l.readDatagrams(ctx, dgrams, dgramErrs)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	statusTicker := time.NewTicker(30 * time.Second)
	defer statusTicker.Stop()

	if dg, ok := l.Framer.SetHostReady(true); ok {
		if err := l.Transport.Send(dg); err != nil {
			l.logf("transport: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-dgramErrs:
			return err
		case dg := <-dgrams:
			l.handleDatagram(dg)
		case ev := <-l.Console.Events():
			l.handleConsoleEvent(ev)
		case cmd := <-l.Operator:
			l.handleOperator(cmd)
		case ready := <-l.Framer.ReadyChanged:
			l.logf("peer HOST-READY is now %v", ready)
		case p := <-l.Prompts:
			l.Engine.SetPrompts(p.LoginPrompt, p.LogoutPrompt)
			l.logf("reloaded login/logout prompts from config")
		case <-ticker.C:
			l.handleTick()
		case <-statusTicker.C:
			l.handleOperator(CmdDumpStatus)
		}
	}
}

// readDatagrams is the only goroutine that touches the raw socket; it
// does no protocol decoding of its own, just hands whole datagrams to
// the single consumer loop.
func (l *Loop) readDatagrams(ctx context.Context, out chan<- []byte, errs chan<- error) {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.Transport.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			select {
			case errs <- err:
			default:
			}
			return
		}
		n, err := l.Transport.Recv(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case errs <- err:
			default:
			}
			return
		}
		dg := make([]byte, n)
		copy(dg, buf[:n])
		select {
		case out <- dg:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) handleDatagram(dg []byte) {
	res := l.Framer.Decode(dg, l.reassembly)
	l.reassembly = res.Payload
	if !res.Done {
		return
	}
	payload := l.reassembly
	l.reassembly = nil

	if len(payload) < LeaderLen {
		l.logf("framing: reassembled message too short for a leader: %d bytes", len(payload))
		return
	}
	leader, err := ParseLeader(payload)
	if err != nil {
		l.logf("framing: %v", err)
		return
	}
	if l.decodeVerbose {
		l.logf("recv %s host=%s link=%d (%d body bytes)", leader.Type, leader.Host, leader.Link, len(payload)-LeaderLen)
	}
	l.apply(l.Router.Route(leader, payload[LeaderLen:]))
}

func (l *Loop) handleConsoleEvent(ev ConsoleEvent) {
	if ev.EOF {
		l.apply(l.Engine.ConsoleEOF(ev.Host))
		return
	}
	l.apply(l.Engine.SendConsoleBytes(ev.Host, ev.Data))
}

func (l *Loop) handleOperator(cmd OperatorCommand) {
	switch cmd {
	case CmdToggleDecode:
		l.decodeVerbose = !l.decodeVerbose
		l.logf("verbose decode logging: %v", l.decodeVerbose)
	case CmdDumpStatus:
		for _, c := range l.Engine.Snapshot() {
			l.logf("status: host=%s state=%s", c.Host, c.State)
		}
	case CmdQuit:
		// Run's caller is expected to cancel ctx in response to 'q';
		// the loop itself has no authority to stop the process.
	default:
		l.logf("unknown operator command %q", byte(cmd))
	}
}

func (l *Loop) handleTick() {
	l.tick++
	l.apply(l.Engine.Tick())

	for host, b := range l.bursts {
		if l.tick < b.nextTick {
			continue
		}
		l.send(l.Engine.controlMessage(host, EncodeNOP(nil)))
		b.remaining--
		if b.remaining == 0 {
			delete(l.bursts, host)
			continue
		}
		b.nextTick = l.tick + 1
	}
}

func (l *Loop) apply(eff Effects) {
	for _, m := range eff.IMP {
		l.send(m)
	}
	for _, ce := range eff.Console {
		l.applyConsole(ce)
	}
}

func (l *Loop) send(m OutboundMessage) {
	body := m.Leader.Append(make([]byte, 0, LeaderLen+len(m.Body)))
	body = append(body, m.Body...)
	dg, err := l.Framer.Encode(body)
	if err != nil {
		l.logf("framing: %v", err)
		return
	}
	if err := l.Transport.Send(dg); err != nil {
		l.logf("transport: %v", err)
	}
}

func (l *Loop) applyConsole(ce ConsoleEffect) {
	var err error
	switch ce.Action {
	case ConsoleOpen:
		err = l.Console.Open(ce.Host)
	case ConsoleWrite:
		err = l.Console.Write(ce.Host, ce.Data)
	case ConsoleClose:
		err = l.Console.Close(ce.Host)
	}
	if err != nil {
		l.logf("console: %v", err)
	}
}

func (l *Loop) logf(format string, args ...interface{}) {
	if l.Log != nil {
		l.Log.Fault("loop", fmt.Sprintf(format, args...))
	}
}
