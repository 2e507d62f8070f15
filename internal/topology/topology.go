// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package topology parses the line-oriented IMP topology file
// described in spec.md §6: a `# SECTION 1: IMP NETWORK TOPOLOGY`
// sentinel, followed by `IMP <number> #<name>` lines until the next
// `# SECTION` line or end of file. Grounded line-for-line on the
// `load_topology` parser in original_source/mini/src/bbn-ncc/ncp.c.
package topology

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const sectionSentinel = "# SECTION 1: IMP NETWORK TOPOLOGY"

// MaxNameLen is the longest IMP name the format allows (ncp.c's
// `char name[32]`, one byte reserved for the NUL terminator).
const MaxNameLen = 31

// Table maps IMP number (0-63) to its configured name.
type Table map[int]string

// Load reads a topology file from the first path in candidates that
// exists, matching the original's try-each-path fallback. It returns
// an empty, non-nil Table (not an error) if none of the candidates
// exist — topology is advisory, never required to start the process.
func Load(candidates ...string) (Table, string, error) {
	for _, path := range candidates {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()
		t, err := Parse(f)
		return t, path, err
	}
	return Table{}, "", nil
}

// Parse reads the topology grammar from r.
func Parse(r io.Reader) (Table, error) {
	t := make(Table)
	sc := bufio.NewScanner(r)
	inSection := false

	for sc.Scan() {
		line := sc.Text()

		if strings.Contains(line, sectionSentinel) {
			inSection = true
			continue
		}
		if inSection && strings.Contains(line, "# SECTION") {
			break
		}
		if !inSection || !strings.HasPrefix(line, "IMP ") {
			continue
		}

		num, name, ok := parseIMPLine(line)
		if !ok {
			continue
		}
		if num < 0 || num > 63 {
			continue
		}
		t[num] = name
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("arpahost: topology: %w", err)
	}
	return t, nil
}

// parseIMPLine matches ncp.c's "IMP %d #%31s": a decimal IMP number,
// then whitespace, then a '#' followed by a whitespace-delimited name
// truncated to MaxNameLen bytes. Whitespace between '#' and the name
// is accepted.
func parseIMPLine(line string) (num int, name string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "IMP "))
	fields := strings.SplitN(rest, "#", 2)
	if len(fields) != 2 {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, "", false
	}
	words := strings.Fields(fields[1])
	if len(words) == 0 {
		return 0, "", false
	}
	nm := words[0]
	if len(nm) > MaxNameLen {
		nm = nm[:MaxNameLen]
	}
	return n, nm, true
}
