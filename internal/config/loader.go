package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader reads the YAML process configuration via viper, grounded on
// neoAgent/internal/config's ConfigLoader shape.
type Loader struct {
	v *viper.Viper
}

// NewLoader constructs a Loader bound to the given config file path
// (if empty, viper searches ./ and ./configs for "config.yaml") and
// ARPAHOST_-prefixed environment variables.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ARPAHOST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	l := &Loader{v: v}
	l.setDefaults(Default())
	return l
}

// BindFlags binds a cobra/pflag flag set's values over the config
// defaults, so `--network.listen_addr` etc. take precedence the way
// neoAgent/cmd/agent/root.go binds log-level. Each flag is bound under
// its own name, so only flags named after a config key override it.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	return l.v.BindPFlags(flags)
}

func (l *Loader) setDefaults(d Config) {
	l.v.SetDefault("network.listen_addr", d.Network.ListenAddr)
	l.v.SetDefault("network.imp_addr", d.Network.IMPAddr)

	l.v.SetDefault("engine.data_socket_base", d.Engine.DataSocketBase)
	l.v.SetDefault("engine.data_send_link", d.Engine.DataSendLink)
	l.v.SetDefault("engine.initial_messages", d.Engine.InitialMessages)
	l.v.SetDefault("engine.initial_bits", d.Engine.InitialBits)
	l.v.SetDefault("engine.login_prompt", d.Engine.LoginPrompt)
	l.v.SetDefault("engine.logout_prompt", d.Engine.LogoutPrompt)
	l.v.SetDefault("engine.login_delay_ticks", d.Engine.LoginDelayTicks)
	l.v.SetDefault("engine.close_delay_ticks", d.Engine.CloseDelayTicks)
	l.v.SetDefault("engine.output_buffer_cap", d.Engine.OutputBufferCap)
	l.v.SetDefault("engine.data_chunk_max", d.Engine.DataChunkMax)

	l.v.SetDefault("console.backend_addr", d.Console.BackendAddr)
	l.v.SetDefault("topology.path", d.Topology.Path)
	l.v.SetDefault("metrics.listen_addr", d.Metrics.ListenAddr)

	l.v.SetDefault("log.level", d.Log.Level)
	l.v.SetDefault("log.format", d.Log.Format)
	l.v.SetDefault("log.output", d.Log.Output)
	l.v.SetDefault("log.maxsizemb", d.Log.MaxSizeMB)
	l.v.SetDefault("log.maxbackups", d.Log.MaxBackups)
	l.v.SetDefault("log.maxagedays", d.Log.MaxAgeDays)
	l.v.SetDefault("log.compress", d.Log.Compress)
}

// Load reads the config file and unmarshals into a Config. When no
// path was given and the ./ and ./configs search finds no file, that
// just means "use defaults plus flags/env", matching ncp.c's topology
// loader tolerance; an explicitly named file that cannot be read is an
// error.
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("arpahost: reading config: %w", err)
		}
	}
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("arpahost: parsing config: %w", err)
	}
	return cfg, nil
}

// Viper exposes the underlying *viper.Viper for OnConfigChange wiring
// in watcher.go.
func (l *Loader) Viper() *viper.Viper { return l.v }
