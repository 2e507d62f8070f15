// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command arpahost runs the ARPANET Host/IMP protocol core against an
// IMP emulator: the "host" subcommand drives the event loop, "bridge"
// relays UDP between the three external sockets spec.md §6 describes,
// and "topology" validates a topology file.
package main
