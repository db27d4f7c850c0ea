// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// grovelcd writes text and sets the backlight of a Grove RGB LCD module.
//
// Every invocation initializes the module, which clears the display.
//
//	grovelcd write "Hello" --row 1 --col 2
//	grovelcd color 255 0 128
//	grovelcd --transport sim write "no hardware"
//	grovelcd scan
//	grovelcd watch /run/status.txt --metrics-listen :9110
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/GermanBionicSystems/grovelcd/internal/config"
	"github.com/GermanBionicSystems/grovelcd/internal/logging"
	"github.com/spf13/cobra"
)

// app is the state shared by the subcommands once the root command has
// loaded the configuration.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "grovelcd",
		Short:         "Drive a Grove RGB backlit character LCD",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}
			logger, closer, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg, a.log, a.closer = cfg, logger, closer
			slog.SetDefault(logger)
			a.log.Debug("configuration loaded", "path", path, "transport", cfg.Display.Transport)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer == nil {
				return nil
			}
			return a.closer.Close()
		},
	}
	root.PersistentFlags().StringP("config", "c", "grovelcd.toml", "path to configuration file")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newWriteCmd(a),
		newColorCmd(a),
		newBlinkCmd(a),
		newClearCmd(a),
		newHomeCmd(a),
		newCursorCmd(a),
		newScanCmd(a),
		newWatchCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("grovelcd failed", "error", err)
		os.Exit(1)
	}
}
