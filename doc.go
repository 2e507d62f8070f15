// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arpahost implements the ARPANET Host/IMP 1822 framing layer,
// the Host/Host (NCP) connection manager and its Initial Connection
// Protocol handshake, and the IMP status/throughput telemetry
// decoder. It speaks to an IMP emulator over a private UDP datagram
// protocol; it does not itself implement IP-layer routing.
package arpahost
