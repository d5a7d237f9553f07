// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

/*
Starts the fabric's supervisor: it validates a JSON configuration, spawns
the sibling vectorfabric-server and vectorfabric-worker binaries, and
enforces a fail-stop shutdown of the whole fabric the moment any of them
exits.

For usage details, run vectorfabricd with the command line flag -h or
--help.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/config"
	"github.com/milkymap/vectorfabric/internal/supervisor"
)

func main() {
	var configPath string
	var help bool
	var log bool

	flag.Usage = usage
	flag.StringVar(&configPath, "c", "config.json", "path to a JSON config file or glob of fragments")
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

	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolving own executable path: %v\n", err)
		os.Exit(1)
	}

	sup := supervisor.New(configPath, cfg, filepath.Dir(exe))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("Terminating vectorfabricd on signal %v...\n", sig)
		cancel()
	}()

	if err := sup.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "supervisor exited: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`usage: vectorfabricd [-h|--help] [-l] [-c configPath]

Starts the inference-serving gateway's supervisor: validates the config,
spawns the gRPC/broker/router server process and every configured worker
process, and fail-stops the whole fabric if any of them exits.

Flags:
`)
	flag.PrintDefaults()
}
