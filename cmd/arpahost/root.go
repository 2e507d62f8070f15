package main

import (
	"github.com/spf13/cobra"

	"github.com/n7qst/arpahost/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "arpahost",
	Short: "ARPANET Host/IMP 1822 + NCP protocol core",
	Long: `arpahost speaks the 1822 Host/IMP leader framing and the NCP
connection protocol to an IMP emulator over a private UDP datagram
protocol. Subcommands:

  arpahost host      run the event loop against a configured IMP
  arpahost bridge     relay UDP between the IMP emulator and a remote peer
  arpahost topology   validate a topology configuration file`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml (default: ./config.yaml or ./configs/config.yaml)")
	rootCmd.AddCommand(hostCmd, bridgeCmd, topologyCmd)
}

func loadConfig() (config.Config, *config.Loader, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	return cfg, loader, err
}
