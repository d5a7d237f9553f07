// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

/*
Starts the fabric's server process: the Broker, one Router per configured
topic, and the gRPC front-end exposing getTextEmbedding,
getTextBatchEmbedding and getTextRerankScores.

This binary is normally spawned by vectorfabricd, never run by hand; its
-h and -l flags match vectorfabricd's for standalone debugging, and the
config path is given with -config (vectorfabricd's is -c).
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/config"
	"github.com/milkymap/vectorfabric/internal/server"
)

func main() {
	var configPath string
	var help bool
	var log bool

	flag.Usage = usage
	flag.StringVar(&configPath, "config", "config.json", "path to a JSON config file or glob of fragments")
	flag.BoolVar(&help, "h", false, "Show usage information")
	flag.BoolVar(&log, "l", false, "Show logging output (for debugging)")
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}

	if log {
		clog.Enable()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config %q: %v\n", configPath, err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config %q: %v\n", configPath, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("Terminating vectorfabric-server on signal %v...\n", sig)
		cancel()
	}()

	srv := server.New(cfg)
	if err := srv.Listen(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`usage: vectorfabric-server [-h|--help] [-l] [-config configPath]

Starts the broker, per-topic routers, and gRPC front-end. Normally spawned
by vectorfabricd, not run directly.

Flags:
`)
	flag.PrintDefaults()
}
