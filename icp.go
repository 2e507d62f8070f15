package arpahost

// Old/new telnet listen socket numbers spec.md §4.4.5 assigns meaning
// to.
const (
	oldTelnetListenSocket uint32 = 1
	newTelnetListenSocket uint32 = 23
)

// handleRTS implements both ICP phase 1 entry (RTS on a listen
// socket while LISTENING) and ICP phase 2's data-path RTS, per
// spec.md §4.4.2 steps 1 and 3.
func (e *Engine) handleRTS(c *Connection, m RTSMessage) Effects {
	switch c.State {
	case StateListening:
		if m.LocalSocket != oldTelnetListenSocket && m.LocalSocket != newTelnetListenSocket {
			e.logf("RTS to non-listen socket %d from %s, closing", m.LocalSocket, c.Host)
			return Effects{IMP: []OutboundMessage{
				e.controlMessage(c.Host, EncodeCLS(nil, m.LocalSocket, m.RemoteSocket)),
			}}
		}
		c.State = StateICPPhase1
		c.ListenSocket = m.LocalSocket
		c.ICPRemoteSocket = m.RemoteSocket
		c.ICPLink = m.Link
		if m.LocalSocket == oldTelnetListenSocket {
			c.Protocol = OldTelnet
		} else {
			c.Protocol = NewTelnet
		}
		return Effects{IMP: []OutboundMessage{
			e.controlMessage(c.Host, EncodeSTR(nil, m.LocalSocket, m.RemoteSocket, 32)),
		}}

	case StateICPPhase2:
		if m.LocalSocket != c.DataSendLocal {
			e.logf("RTS for unexpected socket %d from %s (expected %d)", m.LocalSocket, c.Host, c.DataSendLocal)
			return Effects{}
		}
		c.DataSendRemote = m.RemoteSocket
		c.DataRecvLink = m.Link
		c.GotRTS = true
		return e.tryEstablish(c)

	default:
		return Effects{}
	}
}

// handleSTR implements ICP phase 2's receive-path STR, per spec.md
// §4.4.2 step 3.
func (e *Engine) handleSTR(c *Connection, m STRMessage) Effects {
	if c.State != StateICPPhase2 {
		return Effects{}
	}
	if m.LocalSocket != c.DataRecvLocal {
		e.logf("STR for unexpected socket %d from %s (expected %d)", m.LocalSocket, c.Host, c.DataRecvLocal)
		return Effects{}
	}
	c.DataRecvRemote = m.RemoteSocket
	c.GotSTR = true
	return e.tryEstablish(c)
}

// tryEstablish transitions to ESTABLISHED once both halves of the
// data-socket handshake have arrived, opening the downstream console
// and arming the login delay (spec.md §4.4.2 step 3, §4.4.2 step 4).
func (e *Engine) tryEstablish(c *Connection) Effects {
	if !c.GotSTR || !c.GotRTS {
		return Effects{}
	}
	c.State = StateEstablished
	c.ConsoleOpen = true
	c.LoginDeadline = e.now + e.cfg.LoginDelayTicks
	return Effects{Console: []ConsoleEffect{{Host: c.Host, Action: ConsoleOpen}}}
}

// handleCLS implements teardown (spec.md §4.4.4). An inbound CLS on
// the listen socket while in ICP_PHASE2 is the client tidying up the
// ICP rendezvous channel and needs no reply; any other CLS while
// ESTABLISHED or ICP_PHASE2 tears the data connection down and
// returns to LISTENING, with the console kept open for a 3-tick grace
// period so in-flight bytes are discarded rather than forwarded.
func (e *Engine) handleCLS(c *Connection, m CLSMessage) Effects {
	if c.State == StateListening {
		return Effects{}
	}
	if c.State == StateICPPhase2 && m.LocalSocket == c.ListenSocket {
		return Effects{}
	}

	var eff Effects
	if c.ConsoleOpen {
		eff.Console = append(eff.Console, ConsoleEffect{
			Host: c.Host, Action: ConsoleWrite, Data: []byte(e.cfg.LogoutPrompt),
		})
		c.CloseDeadline = e.now + e.cfg.CloseDelayTicks
	}

	if c.State == StateEstablished || c.State == StateICPPhase2 {
		eff.IMP = append(eff.IMP,
			e.controlMessage(c.Host, EncodeCLS(nil, c.DataSendLocal, c.DataSendRemote)),
			e.controlMessage(c.Host, EncodeCLS(nil, c.DataRecvLocal, c.DataRecvRemote)),
		)
	}

	c.State = StateListening
	return eff
}

// handleALL implements ICP phase 1 completion (allocating the data
// socket pair and handing it to the client) and ESTABLISHED flow
// control (spec.md §4.4.2 step 2, §4.4.3).
func (e *Engine) handleALL(c *Connection, m ALLMessage) Effects {
	switch c.State {
	case StateICPPhase1:
		if m.Link != c.ICPLink {
			e.logf("ALL for wrong link %d from %s (expected %d)", m.Link, c.Host, c.ICPLink)
			return Effects{}
		}
		c.DataSocket = e.next
		e.next += 2
		c.DataRecvLocal = c.DataSocket
		c.DataSendLocal = c.DataSocket + 1
		c.DataSendLink = e.cfg.DataSendLink
		c.GotSTR = false
		c.GotRTS = false
		c.State = StateICPPhase2

		socketWord := appendU32(make([]byte, 0, 4), c.DataSocket)
		return Effects{IMP: []OutboundMessage{
			e.dataMessage(c.Host, c.ICPLink, socketWord),
			e.controlMessage(c.Host, EncodeCLS(nil, c.ListenSocket, c.ICPRemoteSocket)),
			e.controlMessage(c.Host, EncodeSTR(nil, c.DataSendLocal, c.ICPRemoteSocket+2, 8)),
			e.controlMessage(c.Host, EncodeRTS(nil, c.DataRecvLocal, c.ICPRemoteSocket+3, c.DataSendLink)),
		}}

	case StateEstablished:
		if m.Link != c.DataSendLink {
			e.logf("ALL for wrong link %d from %s (expected %d)", m.Link, c.Host, c.DataSendLink)
			return Effects{}
		}
		c.SendAllocation += int(m.Messages)
		return e.flush(c)

	default:
		return Effects{}
	}
}
