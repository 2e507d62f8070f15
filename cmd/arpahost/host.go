// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	arpahost "github.com/n7qst/arpahost"
	"github.com/n7qst/arpahost/internal/config"
	"github.com/n7qst/arpahost/internal/console"
	"github.com/n7qst/arpahost/internal/logging"
	"github.com/n7qst/arpahost/internal/telemetrymetrics"
	"github.com/n7qst/arpahost/internal/topology"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run the event loop against a configured IMP",
	RunE:  runHost,
}

func init() {
	hostCmd.Flags().String("network.listen_addr", "", "override network.listen_addr")
	hostCmd.Flags().String("network.imp_addr", "", "override network.imp_addr")
}

func runHost(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("arpahost: binding flags: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	faultLog := logging.Adapter{Logger: log}

	table, path, err := topology.Load(cfg.Topology.Path)
	if err != nil {
		log.WithField("fault_class", "resource").Warnf("loading topology: %v", err)
	} else if path != "" {
		log.Infof("loaded topology %s (%d IMPs)", path, len(table))
	}
	imps := make([]int, 0, len(table))
	for imp := range table {
		imps = append(imps, imp)
	}

	transport, err := arpahost.DialTransport(cfg.Network.ListenAddr, cfg.Network.IMPAddr)
	if err != nil {
		return fmt.Errorf("arpahost: dialing transport: %w", err)
	}
	defer transport.Close()

	framer := arpahost.NewFramer(faultLog)
	engine := arpahost.NewEngine(cfg.Engine.ToEngine(), faultLog)
	telemetry := arpahost.NewTelemetryStore(faultLog)
	consoleMgr := console.NewManager(cfg.Console.BackendAddr, faultLog)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	operator := make(chan arpahost.OperatorCommand, 1)
	go readOperatorCommands(ctx, operator, cancel, log)

	if cfg.Metrics.ListenAddr != "" {
		go serveMetrics(ctx, cfg.Metrics.ListenAddr, log)
		if len(imps) > 0 {
			updater := &telemetrymetrics.Updater{Store: telemetry, IMPs: imps}
			go updater.Run(ctx)
		}
	}

	loop := arpahost.NewLoop(transport, framer, engine, telemetry, consoleMgr, operator, faultLog)

	prompts := make(chan arpahost.PromptUpdate, 1)
	watcher := config.NewWatcher(loader)
	watcher.OnChange(func(c config.Config) {
		select {
		case prompts <- arpahost.PromptUpdate{LoginPrompt: c.Engine.LoginPrompt, LogoutPrompt: c.Engine.LogoutPrompt}:
		default:
		}
	})
	if err := watcher.Start(); err != nil {
		log.WithField("fault_class", "resource").Infof("config live-reload disabled: %v", err)
	} else {
		loop.Prompts = prompts
	}

	log.Infof("arpahost listening on %s, IMP at %s", cfg.Network.ListenAddr, cfg.Network.IMPAddr)
	return loop.Run(ctx)
}

// readOperatorCommands puts the terminal in raw mode (when stdin is a
// real terminal) and translates single keystrokes into
// arpahost.OperatorCommand values, per spec.md §6's "interactive
// single-character commands" external interface. 'q' cancels ctx
// directly rather than forwarding CmdQuit: the loop has no authority
// to stop the process, only the operator does.
func readOperatorCommands(ctx context.Context, out chan<- arpahost.OperatorCommand, cancel context.CancelFunc, log *logrus.Logger) {
	fd := int(os.Stdin.Fd())
	var oldState *term.State
	if term.IsTerminal(fd) {
		var err error
		oldState, err = term.MakeRaw(fd)
		if err != nil {
			log.Warnf("putting stdin in raw mode: %v", err)
		} else {
			defer term.Restore(fd, oldState)
		}
	}

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		switch arpahost.OperatorCommand(buf[0]) {
		case arpahost.CmdQuit:
			cancel()
			return
		case arpahost.CmdToggleDecode, arpahost.CmdDumpStatus:
			select {
			case out <- arpahost.OperatorCommand(buf[0]):
			case <-ctx.Done():
				return
			}
		}
	}
}

func serveMetrics(ctx context.Context, addr string, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warnf("metrics server: %v", err)
	}
}
