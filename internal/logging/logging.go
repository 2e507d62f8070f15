// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging wires github.com/sirupsen/logrus (with
// gopkg.in/natefinch/lumberjack.v2 rotation) into the fault-class
// taxonomy of spec.md §7, grounded on
// sun977-NeoScan/neoAgent/internal/pkg/logger's formatter/output split.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	arpahost "github.com/n7qst/arpahost"
)

// Config controls the logrus instance internal/logging builds.
type Config struct {
	Level      string // logrus level name; defaults to "info"
	Format     string // "text" or "json"
	Output     string // "stdout", "stderr" or "file"
	FilePath   string // required when Output == "file"
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig matches the teacher's development-mode defaults.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// New builds a *logrus.Logger from cfg.
func New(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if err := setFormatter(log, cfg); err != nil {
		return nil, err
	}
	if err := setOutput(log, cfg); err != nil {
		return nil, err
	}
	return log, nil
}

func setFormatter(log *logrus.Logger, cfg Config) error {
	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{TimestampFormat: "2006-01-02 15:04:05.000", FullTimestamp: true})
	default:
		return fmt.Errorf("arpahost: unsupported log format %q", cfg.Format)
	}
	return nil
}

func setOutput(log *logrus.Logger, cfg Config) error {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	case "file":
		if cfg.FilePath == "" {
			return fmt.Errorf("arpahost: log output \"file\" requires FilePath")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return fmt.Errorf("arpahost: creating log directory: %w", err)
		}
		roll := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		if log.GetLevel() >= logrus.DebugLevel {
			log.SetOutput(io.MultiWriter(os.Stdout, roll))
		} else {
			log.SetOutput(roll)
		}
	default:
		return fmt.Errorf("arpahost: unsupported log output %q", cfg.Output)
	}
	return nil
}

// Adapter implements arpahost.FaultLogger over a *logrus.Logger. Per
// spec.md §7, faults are log-and-continue: class "fatal" is logged at
// error level and every other class at warning level; the Adapter
// never exits the process.
type Adapter struct {
	Logger *logrus.Logger
}

// Fault implements arpahost.FaultLogger.
func (a Adapter) Fault(class, message string) {
	entry := a.Logger.WithField("fault_class", class)
	if class == "fatal" {
		entry.Error(message)
		return
	}
	entry.Warn(message)
}

var _ arpahost.FaultLogger = Adapter{}
