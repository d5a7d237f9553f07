// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package server wires together the Broker, one Router per configured
// topic, and the gRPC front-end into the single long-lived process the
// supervisor spawns as the fabric's "server" role (spec.md §4, C3+C2+C4).
// Grounded on GRPCServer.listen from embedding_server/grpc_server/server.py:
// bind the gRPC port, start the broker loop, start one router per topic,
// and run until told to stop.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/broker"
	"github.com/milkymap/vectorfabric/internal/bus"
	"github.com/milkymap/vectorfabric/internal/config"
	"github.com/milkymap/vectorfabric/internal/router"
	"github.com/milkymap/vectorfabric/internal/rpc"
)

// Server owns the broker, the per-topic routers, and the gRPC listener for
// one supervised server process.
type Server struct {
	*clog.CLogger

	cfg        *config.Config
	grpcServer *grpc.Server
}

// New builds a Server from a validated configuration. cfg must already
// have passed config.Validate.
func New(cfg *config.Config) *Server {
	return &Server{
		CLogger: clog.New("server "),
		cfg:     cfg,
	}
}

// Listen brings up the broker, one router per topic, and the gRPC server,
// and blocks until ctx is canceled or any of them fails -- at which point
// every other component is torn down too, matching spec.md §4.2's
// fail-stop stance on broker errors.
func (s *Server) Listen(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // ensure every started goroutine unwinds on any early return below

	b := broker.New()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return b.Run(gctx)
	})

	for _, mc := range s.cfg.ModelConfigs {
		mc := mc
		r, taskQueue, err := router.New(mc.Topic, bindEndpoint(mc.Topic, mc.Address), b.Outbound())
		if err != nil {
			return fmt.Errorf("server: build router for topic %q: %w", mc.Topic, err)
		}
		b.RegisterTopic(mc.Topic, taskQueue)

		group.Go(func() error {
			return r.Run(gctx)
		})
	}

	servicer := rpc.NewServicer(b, s.cfg.MaxConcurrentRequests, time.Duration(s.cfg.RequestTimeout)*time.Second)

	s.grpcServer = grpc.NewServer(rpc.ServerCodecOption())
	rpc.RegisterTextEmbeddingServer(s.grpcServer, servicer)

	lis, err := net.Listen("tcp", s.cfg.GRPCServerAddress)
	if err != nil {
		return fmt.Errorf("server: listen on %q: %w", s.cfg.GRPCServerAddress, err)
	}

	group.Go(func() error {
		s.Printf("gRPC server listening on %s", s.cfg.GRPCServerAddress)
		if err := s.grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		s.grpcServer.GracefulStop()
		return nil
	})

	return group.Wait()
}

// bindEndpoint derives a topic's router bind address: a configured
// zmq_tcp_address (e.g. "tcp://*:5555") binds as-is -- the "*" is
// libzmq's bind-all-interfaces wildcard, rewritten to "localhost" only on
// the connecting worker's side (internal/worker.ResolveEndpoint) -- and an
// unconfigured topic falls back to the shared default ipc:// path.
func bindEndpoint(topic, configuredAddress string) string {
	if configuredAddress == "" {
		return bus.DefaultWorkerEndpoint(topic)
	}
	return configuredAddress
}

var _ rpc.Caller = (*broker.Broker)(nil)
