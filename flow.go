package arpahost

// HandleData implements NCPHandler for inbound data messages on a
// non-zero link (spec.md §4.4.3). It demultiplexes by telnet variant,
// hands the filtered bytes to the console, and replenishes the
// peer's send window.
func (e *Engine) HandleData(host HostAddress, link uint8, payload []byte) Effects {
	c := e.connFor(host)
	if c.State != StateEstablished || link != c.DataRecvLink {
		return Effects{}
	}

	_, _, _, rest, err := splitNCPHeader(payload)
	if err != nil {
		e.logf("short NCP data message from %s: %v", host, err)
		return Effects{}
	}

	var out []byte
	if c.Protocol == OldTelnet {
		out = c.oldFilter.Process(rest)
	} else {
		out = c.newFilter.Process(rest)
	}

	eff := Effects{IMP: []OutboundMessage{
		e.controlMessage(host, EncodeALL(nil, c.DataRecvLink, e.cfg.InitialMessages, e.cfg.InitialBits)),
	}}
	if len(out) > 0 {
		eff.Console = []ConsoleEffect{{Host: host, Action: ConsoleWrite, Data: out}}
	}
	return eff
}

// SendConsoleBytes queues bytes read from the downstream console for
// transmission to host, then flushes as much as the current send
// allocation permits (spec.md §4.4.3). Bytes arriving during the
// post-establishment login delay or the post-CLS close delay are
// stale and are discarded rather than buffered, matching
// waitsconnect.c's handling of console reads during either timer.
func (e *Engine) SendConsoleBytes(host HostAddress, data []byte) Effects {
	c := e.connFor(host)
	if c.State != StateEstablished {
		return Effects{}
	}
	if c.LoginDeadline != 0 || c.CloseDeadline != 0 {
		e.logf("discarding %d stale console bytes from %s during delay", len(data), host)
		return Effects{}
	}
	if len(c.OutputBuffer)+len(data) > e.cfg.OutputBufferCap {
		e.logf("output buffer full for %s, dropping %d bytes", host, len(data))
		return Effects{}
	}
	c.OutputBuffer = append(c.OutputBuffer, data...)
	return e.flush(c)
}

// flush drains c's output buffer in chunks of at most DataChunkMax
// bytes while send allocation remains, per spec.md §4.4.3.
func (e *Engine) flush(c *Connection) Effects {
	var eff Effects
	for len(c.OutputBuffer) > 0 && c.SendAllocation > 0 {
		n := len(c.OutputBuffer)
		if n > e.cfg.DataChunkMax {
			n = e.cfg.DataChunkMax
		}
		eff.IMP = append(eff.IMP, e.dataMessage(c.Host, c.DataSendLink, c.OutputBuffer[:n]))
		c.OutputBuffer = c.OutputBuffer[n:]
		c.SendAllocation--
	}
	return eff
}

// ConsoleEOF implements the console-side disconnect path (spec.md
// §4.4.4): symmetric to an inbound CLS, except when still inside a
// delay window, where an EOF is just more stale input and is ignored.
func (e *Engine) ConsoleEOF(host HostAddress) Effects {
	c := e.connFor(host)
	if c.State != StateEstablished {
		return Effects{}
	}
	if c.LoginDeadline != 0 || c.CloseDeadline != 0 {
		e.logf("console disconnected from %s during delay, ignoring", host)
		return Effects{}
	}

	eff := Effects{
		Console: []ConsoleEffect{{Host: host, Action: ConsoleClose}},
		IMP: []OutboundMessage{
			e.controlMessage(host, EncodeCLS(nil, c.DataSendLocal, c.DataSendRemote)),
			e.controlMessage(host, EncodeCLS(nil, c.DataRecvLocal, c.DataRecvRemote)),
		},
	}
	c.State = StateListening
	c.ConsoleOpen = false
	return eff
}

// Tick advances the engine's notion of the current time by one unit
// and fires any deadline that has elapsed (spec.md §5's tick-counter
// model, §4.4.2 step 4, §4.4.4 step 5). The event loop calls this
// once per iteration regardless of whether I/O occurred.
func (e *Engine) Tick() Effects {
	e.now++
	var eff Effects
	for _, c := range e.conns {
		if c.LoginDeadline != 0 && e.now >= c.LoginDeadline {
			c.LoginDeadline = 0
			eff.Console = append(eff.Console, ConsoleEffect{
				Host: c.Host, Action: ConsoleWrite, Data: []byte(e.cfg.LoginPrompt),
			})
			eff.IMP = append(eff.IMP, e.controlMessage(c.Host,
				EncodeALL(nil, c.DataRecvLink, e.cfg.InitialMessages, e.cfg.InitialBits)))
		}
		if c.CloseDeadline != 0 && e.now >= c.CloseDeadline {
			c.CloseDeadline = 0
			c.ConsoleOpen = false
			eff.Console = append(eff.Console, ConsoleEffect{Host: c.Host, Action: ConsoleClose})
		}
	}
	return eff
}
