// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

/*
Starts a single fabric worker: one strategy instance, connected to its
topic's router over a ZeroMQ DEALER socket.

This binary is normally spawned once per configured instance by
vectorfabricd, never run by hand.
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
	"github.com/milkymap/vectorfabric/internal/bus"
	"github.com/milkymap/vectorfabric/internal/config"
	"github.com/milkymap/vectorfabric/internal/strategy"
	"github.com/milkymap/vectorfabric/internal/strategy/embedding"
	"github.com/milkymap/vectorfabric/internal/strategy/reranker"
	"github.com/milkymap/vectorfabric/internal/worker"
)

func main() {
	var configPath, topic, id string
	var help bool
	var log bool

	flag.Usage = usage
	flag.StringVar(&configPath, "config", "config.json", "path to a JSON config file or glob of fragments")
	flag.StringVar(&topic, "topic", "", "the topic this worker serves (must match one embedder_model_configs entry)")
	flag.StringVar(&id, "id", "", "this worker's id, used in log lines")
	flag.BoolVar(&help, "h", false, "Show usage information")
	flag.BoolVar(&log, "l", false, "Show logging output (for debugging)")
	flag.Parse()

	if help || topic == "" || id == "" {
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

	mc, ok := findModelConfig(cfg, topic)
	if !ok {
		fmt.Fprintf(os.Stderr, "no embedder_model_configs entry for topic %q\n", topic)
		os.Exit(1)
	}

	registry := buildRegistry()
	strat, err := registry.Build(mc.StrategyName, mc.Options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building strategy %q: %v\n", mc.StrategyName, err)
		os.Exit(1)
	}

	endpoint := worker.ResolveEndpoint(topic, mc.Address)
	w := worker.New(bus.WorkerID(id), endpoint, strat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("Terminating %s on signal %v...\n", id, sig)
		cancel()
	}()

	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s exited: %v\n", id, err)
		os.Exit(1)
	}
}

func findModelConfig(cfg *config.Config, topic string) (config.ModelConfig, bool) {
	for _, mc := range cfg.ModelConfigs {
		if mc.Topic == topic {
			return mc, true
		}
	}
	return config.ModelConfig{}, false
}

// buildRegistry installs every strategy this fabric ships with. Adding a
// new one is a one-line addition here, mirroring teacher's
// registry.NewRegistry's explicit Register calls per computation.
func buildRegistry() *strategy.Registry {
	reg := strategy.NewRegistry()
	reg.Register(embedding.StrategyName, embedding.New)
	reg.Register(reranker.StrategyName, reranker.New)
	return reg
}

func usage() {
	fmt.Print(`usage: vectorfabric-worker [-h|--help] [-l] [-config configPath] -topic topic -id id

Starts a single worker instance serving topic, running the strategy
configured for it. Normally spawned by vectorfabricd, not run directly.

Flags:
`)
	flag.PrintDefaults()
}
