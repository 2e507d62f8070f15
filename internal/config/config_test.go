// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7qst/arpahost/internal/config"
)

func TestLoadWithNoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	loader := config.NewLoader("")
	cfg, err := loader.Load()
	require.NoError(t, err)

	want := config.Default()
	assert.Equal(t, want.Network, cfg.Network)
	assert.Equal(t, want.Engine, cfg.Engine)
	assert.Equal(t, want.Console, cfg.Console)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network:
  listen_addr: "0.0.0.0:9999"
  imp_addr: "10.0.0.1:7777"
engine:
  login_prompt: "welcome\r"
`), 0o644))

	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Network.ListenAddr)
	assert.Equal(t, "10.0.0.1:7777", cfg.Network.IMPAddr)
	assert.Equal(t, "welcome\r", cfg.Engine.LoginPrompt)
	// Unset fields keep their defaults.
	assert.Equal(t, config.Default().Engine.LogoutPrompt, cfg.Engine.LogoutPrompt)
}

func TestBindFlagsOverridesFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  listen_addr: \"0.0.0.0:1\"\n"), 0o644))

	loader := config.NewLoader(path)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("network.listen_addr", "", "")
	require.NoError(t, flags.Set("network.listen_addr", "0.0.0.0:2222"))
	require.NoError(t, loader.BindFlags(flags))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:2222", cfg.Network.ListenAddr)
}

func TestEngineConfigToEngineConvertsEveryField(t *testing.T) {
	c := config.Default().Engine
	e := c.ToEngine()
	assert.Equal(t, c.DataSocketBase, e.DataSocketBase)
	assert.Equal(t, c.DataSendLink, e.DataSendLink)
	assert.Equal(t, c.InitialMessages, e.InitialMessages)
	assert.Equal(t, c.InitialBits, e.InitialBits)
	assert.Equal(t, c.LoginPrompt, e.LoginPrompt)
	assert.Equal(t, c.LogoutPrompt, e.LogoutPrompt)
	assert.Equal(t, c.LoginDelayTicks, e.LoginDelayTicks)
	assert.Equal(t, c.CloseDelayTicks, e.CloseDelayTicks)
	assert.Equal(t, c.OutputBufferCap, e.OutputBufferCap)
	assert.Equal(t, c.DataChunkMax, e.DataChunkMax)
}
