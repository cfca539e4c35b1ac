/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	releaseVersion = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

// initLogger points the global logger at stdout, and also at cfg.logFile
// when one is set. The returned func closes the file.
func initLogger(cfg *Config) (func(), error) {
	var w io.Writer = os.Stdout
	closer := func() {}

	if cfg.logFile != "" {
		f, err := os.OpenFile(cfg.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			return closer, err
		}
		w = zerolog.MultiLevelWriter(f, os.Stdout)
		closer = func() { _ = f.Close() }
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	if cfg.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return closer, nil
}
