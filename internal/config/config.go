// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the process-level YAML configuration (ports,
// strings, timers — spec.md §9's "application policy, not protocol")
// via github.com/spf13/viper, grounded on
// sun977-NeoScan/neoAgent/internal/config's loader/watcher split.
package config

import (
	arpahost "github.com/n7qst/arpahost"
	"github.com/n7qst/arpahost/internal/logging"
)

// Config is the full process configuration.
type Config struct {
	Network  NetworkConfig  `mapstructure:"network"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Console  ConsoleConfig  `mapstructure:"console"`
	Topology TopologyConfig `mapstructure:"topology"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      logging.Config `mapstructure:"log"`
}

// NetworkConfig addresses the IMP-facing UDP socket (spec.md §4.1).
type NetworkConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	IMPAddr    string `mapstructure:"imp_addr"`
}

// EngineConfig mirrors arpahost.EngineConfig with YAML-friendly tags
// and durations expressed in whole seconds (ticks are ~1s, per §5).
type EngineConfig struct {
	DataSocketBase  uint32 `mapstructure:"data_socket_base"`
	DataSendLink    uint8  `mapstructure:"data_send_link"`
	InitialMessages uint16 `mapstructure:"initial_messages"`
	InitialBits     uint32 `mapstructure:"initial_bits"`
	LoginPrompt     string `mapstructure:"login_prompt"`
	LogoutPrompt    string `mapstructure:"logout_prompt"`
	LoginDelayTicks uint64 `mapstructure:"login_delay_ticks"`
	CloseDelayTicks uint64 `mapstructure:"close_delay_ticks"`
	OutputBufferCap int    `mapstructure:"output_buffer_cap"`
	DataChunkMax    int    `mapstructure:"data_chunk_max"`
}

// ToEngine converts to the protocol core's own config type.
func (c EngineConfig) ToEngine() arpahost.EngineConfig {
	return arpahost.EngineConfig{
		DataSocketBase:  c.DataSocketBase,
		DataSendLink:    c.DataSendLink,
		InitialMessages: c.InitialMessages,
		InitialBits:     c.InitialBits,
		LoginPrompt:     c.LoginPrompt,
		LogoutPrompt:    c.LogoutPrompt,
		LoginDelayTicks: c.LoginDelayTicks,
		CloseDelayTicks: c.CloseDelayTicks,
		OutputBufferCap: c.OutputBufferCap,
		DataChunkMax:    c.DataChunkMax,
	}
}

// ConsoleConfig points at the downstream console backend internal/console
// dials once per established connection (spec.md §6's "downstream
// console" collaborator).
type ConsoleConfig struct {
	BackendAddr string `mapstructure:"backend_addr"`
}

// TopologyConfig names the topology file internal/topology reads.
type TopologyConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig addresses the Prometheus HTTP endpoint
// internal/telemetrymetrics serves.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// defaultEngine mirrors arpahost.DefaultEngineConfig's literal values.
func defaultEngine() EngineConfig {
	d := arpahost.DefaultEngineConfig()
	return EngineConfig{
		DataSocketBase:  d.DataSocketBase,
		DataSendLink:    d.DataSendLink,
		InitialMessages: d.InitialMessages,
		InitialBits:     d.InitialBits,
		LoginPrompt:     d.LoginPrompt,
		LogoutPrompt:    d.LogoutPrompt,
		LoginDelayTicks: d.LoginDelayTicks,
		CloseDelayTicks: d.CloseDelayTicks,
		OutputBufferCap: d.OutputBufferCap,
		DataChunkMax:    d.DataChunkMax,
	}
}

// Default returns a Config with the same defaults waitsconnect.c
// hardcodes, plus reasonable ambient defaults for the surrounding
// process.
func Default() Config {
	return Config{
		Network: NetworkConfig{
			ListenAddr: "0.0.0.0:7776",
			IMPAddr:    "127.0.0.1:7777",
		},
		Engine:  defaultEngine(),
		Console: ConsoleConfig{BackendAddr: "127.0.0.1:2300"},
		Topology: TopologyConfig{
			Path: "./topology.conf",
		},
		Metrics: MetricsConfig{ListenAddr: "127.0.0.1:9110"},
		Log:     logging.DefaultConfig(),
	}
}
