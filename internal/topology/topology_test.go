// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7qst/arpahost/internal/topology"
)

func TestParseBasicTable(t *testing.T) {
	src := strings.NewReader(`some preamble
# SECTION 1: IMP NETWORK TOPOLOGY
IMP 0 #bbn-imp1
IMP 3 #isi-imp
IMP 63 #ucla-imp
# SECTION 2: HOST TABLE
IMP 9 #should-not-be-parsed
`)
	table, err := topology.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, topology.Table{
		0:  "bbn-imp1",
		3:  "isi-imp",
		63: "ucla-imp",
	}, table)
}

func TestParseIgnoresLinesBeforeSentinel(t *testing.T) {
	src := strings.NewReader("IMP 1 #too-early\n# SECTION 1: IMP NETWORK TOPOLOGY\nIMP 2 #on-time\n")
	table, err := topology.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, topology.Table{2: "on-time"}, table)
}

func TestParseTruncatesLongNames(t *testing.T) {
	long := strings.Repeat("x", 50)
	src := strings.NewReader("# SECTION 1: IMP NETWORK TOPOLOGY\nIMP 4 #" + long + "\n")
	table, err := topology.Parse(src)
	require.NoError(t, err)
	assert.Len(t, table[4], topology.MaxNameLen)
	assert.Equal(t, long[:topology.MaxNameLen], table[4])
}

func TestParseIgnoresOutOfRangeIMPNumbers(t *testing.T) {
	src := strings.NewReader("# SECTION 1: IMP NETWORK TOPOLOGY\nIMP 64 #too-big\nIMP -1 #too-small\nIMP 10 #fine\n")
	table, err := topology.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, topology.Table{10: "fine"}, table)
}

func TestParseIgnoresMalformedLines(t *testing.T) {
	src := strings.NewReader("# SECTION 1: IMP NETWORK TOPOLOGY\nIMP banana #nope\nIMP 5 noname\nIMP 6 #ok\n")
	table, err := topology.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, topology.Table{6: "ok"}, table)
}

func TestLoadReturnsEmptyTableWhenNoCandidateExists(t *testing.T) {
	table, path, err := topology.Load(filepath.Join(t.TempDir(), "does-not-exist.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestLoadTriesCandidatesInOrder(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.cfg")
	present := filepath.Join(dir, "present.cfg")
	require.NoError(t, os.WriteFile(present, []byte("# SECTION 1: IMP NETWORK TOPOLOGY\nIMP 1 #found\n"), 0o644))

	table, path, err := topology.Load(missing, present)
	require.NoError(t, err)
	assert.Equal(t, present, path)
	assert.Equal(t, topology.Table{1: "found"}, table)
}
