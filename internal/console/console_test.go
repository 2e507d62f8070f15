// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package console_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7qst/arpahost"
	"github.com/n7qst/arpahost/internal/console"
)

func startEchoBackend(t *testing.T) (addr string, accepted chan net.Conn, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	accepted = make(chan net.Conn, 4)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- c
		}
	}()
	return ln.Addr().String(), accepted, func() { ln.Close() }
}

func TestManagerOpenWriteAndBackendDataArrivesAsEvent(t *testing.T) {
	addr, accepted, stop := startEchoBackend(t)
	defer stop()

	m := console.NewManager(addr, nil)
	host := arpahost.NewHostAddress(1, 7)

	require.NoError(t, m.Open(host))

	var serverConn net.Conn
	select {
	case serverConn = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("backend never accepted a connection")
	}
	defer serverConn.Close()

	require.NoError(t, m.Write(host, []byte("hello")))
	buf := make([]byte, 5)
	serverConn.SetReadDeadline(time.Now().Add(time.Second))
	_, err := serverConn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	_, err = serverConn.Write([]byte("reply"))
	require.NoError(t, err)

	select {
	case ev := <-m.Events():
		assert.Equal(t, host, ev.Host)
		assert.Equal(t, "reply", string(ev.Data))
		assert.False(t, ev.EOF)
	case <-time.After(time.Second):
		t.Fatal("no console event received")
	}
}

func TestManagerCloseEndsTheBackendConnection(t *testing.T) {
	addr, accepted, stop := startEchoBackend(t)
	defer stop()

	m := console.NewManager(addr, nil)
	host := arpahost.NewHostAddress(1, 7)
	require.NoError(t, m.Open(host))

	var serverConn net.Conn
	select {
	case serverConn = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("backend never accepted a connection")
	}
	defer serverConn.Close()

	require.NoError(t, m.Close(host))

	buf := make([]byte, 1)
	serverConn.SetReadDeadline(time.Now().Add(time.Second))
	_, err := serverConn.Read(buf)
	assert.Error(t, err, "backend should observe EOF after Close")
}

func TestManagerWriteToUnopenedHostFails(t *testing.T) {
	m := console.NewManager("127.0.0.1:1", nil)
	err := m.Write(arpahost.NewHostAddress(2, 2), []byte("x"))
	assert.Error(t, err)
}

func TestManagerEOFFromBackendSurfacesAsConsoleEvent(t *testing.T) {
	addr, accepted, stop := startEchoBackend(t)
	defer stop()

	m := console.NewManager(addr, nil)
	host := arpahost.NewHostAddress(3, 3)
	require.NoError(t, m.Open(host))

	var serverConn net.Conn
	select {
	case serverConn = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("backend never accepted a connection")
	}
	serverConn.Close()

	select {
	case ev := <-m.Events():
		assert.True(t, ev.EOF)
		assert.Equal(t, host, ev.Host)
	case <-time.After(time.Second):
		t.Fatal("no EOF event received")
	}
}
