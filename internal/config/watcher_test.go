// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7qst/arpahost/internal/config"
)

func TestWatcherStartFailsWithoutAConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	loader := config.NewLoader("")
	_, err = loader.Load()
	require.NoError(t, err)

	w := config.NewWatcher(loader)
	assert.Error(t, w.Start(), "no file was read, so there is nothing to watch")
}

func TestWatcherFiresOnChangeAfterFileEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  login_prompt: \"login\\r\"\n"), 0o644))

	loader := config.NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)

	w := config.NewWatcher(loader)
	changed := make(chan config.Config, 1)
	w.OnChange(func(c config.Config) { changed <- c })
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  login_prompt: \"welcome\\r\"\n"), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, "welcome\r", c.Engine.LoginPrompt)
	case <-time.After(3 * time.Second):
		t.Fatal("OnChange callback never fired after the config file changed")
	}
}
