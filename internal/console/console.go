// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package console implements arpahost.ConsoleDriver against a real
// TCP backend: spec.md §6's "downstream console" collaborator, one
// connection dialed per established NCP connection. The per-
// connection reader goroutine is grounded on the teacher's
// conn.go readFrom-into-channel shape, generalized from "one shared
// report channel" to "one events channel shared by every dialed
// backend connection, tagged by host".
package console

import (
	"fmt"
	"net"
	"sync"

	arpahost "github.com/n7qst/arpahost"
)

// Manager dials BackendAddr once per arpahost.HostAddress and pipes
// bytes between that socket and the event loop.
type Manager struct {
	BackendAddr string
	Log         arpahost.FaultLogger

	mu     sync.Mutex
	conns  map[arpahost.HostAddress]net.Conn
	events chan arpahost.ConsoleEvent
}

// NewManager constructs a Manager dialing backendAddr for every
// connection it opens.
func NewManager(backendAddr string, log arpahost.FaultLogger) *Manager {
	return &Manager{
		BackendAddr: backendAddr,
		Log:         log,
		conns:       make(map[arpahost.HostAddress]net.Conn),
		events:      make(chan arpahost.ConsoleEvent, 64),
	}
}

// Events implements arpahost.ConsoleDriver.
func (m *Manager) Events() <-chan arpahost.ConsoleEvent { return m.events }

// Open implements arpahost.ConsoleDriver: dials the backend and starts
// a reader goroutine that forwards inbound bytes (or EOF) as
// ConsoleEvents for host.
func (m *Manager) Open(host arpahost.HostAddress) error {
	conn, err := net.Dial("tcp", m.BackendAddr)
	if err != nil {
		return fmt.Errorf("arpahost: console dial for %s: %w", host, err)
	}

	m.mu.Lock()
	if old, ok := m.conns[host]; ok {
		old.Close()
	}
	m.conns[host] = conn
	m.mu.Unlock()

	go m.readLoop(host, conn)
	return nil
}

// Write implements arpahost.ConsoleDriver.
func (m *Manager) Write(host arpahost.HostAddress, data []byte) error {
	m.mu.Lock()
	conn, ok := m.conns[host]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("arpahost: console write to %s: not open", host)
	}
	_, err := conn.Write(data)
	return err
}

// Close implements arpahost.ConsoleDriver.
func (m *Manager) Close(host arpahost.HostAddress) error {
	m.mu.Lock()
	conn, ok := m.conns[host]
	delete(m.conns, host)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return conn.Close()
}

func (m *Manager) readLoop(host arpahost.HostAddress, conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			m.events <- arpahost.ConsoleEvent{Host: host, Data: data}
		}
		if err != nil {
			m.logf("console read from %s ended: %v", host, err)
			m.events <- arpahost.ConsoleEvent{Host: host, EOF: true}
			return
		}
	}
}

func (m *Manager) logf(format string, args ...interface{}) {
	if m.Log != nil {
		m.Log.Fault("resource", fmt.Sprintf(format, args...))
	}
}

var _ arpahost.ConsoleDriver = (*Manager)(nil)
