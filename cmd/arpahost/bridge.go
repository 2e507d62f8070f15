// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/n7qst/arpahost/internal/logging"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Relay UDP between the IMP emulator and a remote peer",
	RunE:  runBridge,
}

var (
	bridgeEmulatorAddr  string
	bridgeForwarderAddr string
	bridgeRemoteAddr    string
)

func init() {
	bridgeCmd.Flags().StringVar(&bridgeEmulatorAddr, "emulator-addr", ":11199", "local address bound to the IMP emulator")
	bridgeCmd.Flags().StringVar(&bridgeForwarderAddr, "forwarder-addr", ":31141", "local address receiving remote-to-emulator traffic")
	bridgeCmd.Flags().StringVar(&bridgeRemoteAddr, "remote-addr", "", "remote endpoint (host:port), e.g. a VPS relay")
}

// bridgeBufferSize is the single staging buffer size spec.md §6 calls
// for: no state, no buffering beyond this one 16 KiB scratch buffer
// per direction.
const bridgeBufferSize = 16 * 1024

// runBridge wires the three sockets spec.md §6's "UDP bridge" names:
// a socket bound to the IMP emulator, a socket a local forwarder
// channel delivers remote-to-emulator traffic on, and a socket
// addressed at the remote endpoint. It is a stateless relay, never
// touching framer/NCP state — deliberately outside the protocol core
// (spec.md's Non-goals list the physical transport as an external
// collaborator).
func runBridge(cmd *cobra.Command, args []string) error {
	if bridgeRemoteAddr == "" {
		return fmt.Errorf("arpahost: bridge requires --remote-addr")
	}

	log, err := logging.New(logging.DefaultConfig())
	if err != nil {
		return err
	}

	emulatorConn, err := net.ListenPacket("udp", bridgeEmulatorAddr)
	if err != nil {
		return fmt.Errorf("arpahost: binding emulator socket: %w", err)
	}
	defer emulatorConn.Close()

	forwarderConn, err := net.ListenPacket("udp", bridgeForwarderAddr)
	if err != nil {
		return fmt.Errorf("arpahost: binding forwarder socket: %w", err)
	}
	defer forwarderConn.Close()

	remoteAddr, err := net.ResolveUDPAddr("udp", bridgeRemoteAddr)
	if err != nil {
		return fmt.Errorf("arpahost: resolving remote address: %w", err)
	}
	remoteConn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("arpahost: binding remote-facing socket: %w", err)
	}
	defer remoteConn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Infof("bridge: emulator=%s forwarder=%s remote=%s", bridgeEmulatorAddr, bridgeForwarderAddr, bridgeRemoteAddr)

	var peerMu sync.Mutex
	var emulatorPeer net.Addr

	// Emulator -> remote endpoint: remembers the emulator's source
	// address so forwarder-originated traffic can be delivered back
	// to it without a fixed emulator port configuration.
	go relay(ctx, emulatorConn, func(n int, buf []byte, from net.Addr) {
		peerMu.Lock()
		emulatorPeer = from
		peerMu.Unlock()
		if _, err := remoteConn.WriteTo(buf[:n], remoteAddr); err != nil {
			log.WithField("fault_class", "resource").Warnf("bridge: emulator->remote: %v", err)
		}
	}, log)

	// Forwarder channel (VPS->IMP traffic already delivered locally)
	// -> emulator.
	go relay(ctx, forwarderConn, func(n int, buf []byte, from net.Addr) {
		peerMu.Lock()
		peer := emulatorPeer
		peerMu.Unlock()
		if peer == nil {
			return
		}
		if _, err := emulatorConn.WriteTo(buf[:n], peer); err != nil {
			log.WithField("fault_class", "resource").Warnf("bridge: forwarder->emulator: %v", err)
		}
	}, log)

	<-ctx.Done()
	return nil
}

func relay(ctx context.Context, conn net.PacketConn, forward func(n int, buf []byte, from net.Addr), log *logrus.Logger) {
	buf := make([]byte, bridgeBufferSize)
	for {
		if ctx.Err() != nil {
			return
		}
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		forward(n, buf, from)
	}
}
