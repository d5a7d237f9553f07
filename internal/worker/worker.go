// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package worker implements the Worker (spec.md §4.4, C1): a single
// strategy instance running in its own OS process, exchanging TASK,
// HANDSHAKE and RESPONSE frames with its topic's Router over a ZeroMQ
// DEALER socket.
//
// Grounded on background_workers/embedder.py's EmbedderPool.processing: a
// DEALER socket connects to the router, announces HANDSHAKE, then loops
// poll(5s)/recv/process/respond/re-announce. The poll-timeout cadence and
// the re-HANDSHAKE-after-every-task idiom are carried over unchanged; the
// strategy lookup itself is realized through internal/strategy's Registry
// rather than Python's attrgetter-over-module trick.
package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	czmq "github.com/zeromq/goczmq/v4"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/bus"
	"github.com/milkymap/vectorfabric/internal/strategy"
)

const pollTimeoutMs = 5000

// Worker drives one strategy instance's DEALER-socket lifecycle. Zero value
// is not usable; use New.
type Worker struct {
	*clog.CLogger

	id       bus.WorkerID
	endpoint string
	strategy strategy.Strategy
}

// ResolveEndpoint mirrors embedder.py's broker2worker_addr derivation: a
// configured zmq_tcp_address always wins (with its bind-side "*" rewritten
// to "localhost" for the connecting side), otherwise the fabric falls back
// to a well-known ipc:// socket keyed by topic.
func ResolveEndpoint(topic, configuredAddress string) string {
	if configuredAddress == "" {
		return bus.DefaultWorkerEndpoint(topic)
	}
	return strings.Replace(configuredAddress, "*", "localhost", 1)
}

// New builds a Worker identified by id, connecting to endpoint once Run is
// called, driving strategy for every task it receives.
func New(id bus.WorkerID, endpoint string, strategy strategy.Strategy) *Worker {
	return &Worker{
		CLogger:  clog.New("worker[%s] ", id),
		id:       id,
		endpoint: endpoint,
		strategy: strategy,
	}
}

// Run connects the DEALER socket, performs the initial HANDSHAKE, and
// serves tasks until ctx is done or the process receives SIGINT/SIGTERM.
// A SIGTERM is turned into an interrupt, matching embedder.py's signal
// handler (which re-raises SIGTERM as SIGINT so a single KeyboardInterrupt
// path drives the teardown).
func (w *Worker) Run(ctx context.Context) error {
	sock, err := czmq.NewDealer(w.endpoint)
	if err != nil {
		return fmt.Errorf("worker[%s]: connect %s: %w", w.id, w.endpoint, err)
	}
	defer sock.Destroy()

	w.Printf("connected to %s", w.endpoint)

	if err := w.handshake(sock); err != nil {
		return fmt.Errorf("worker[%s]: initial handshake: %w", w.id, err)
	}
	w.Printf("handshake complete, serving tasks")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	poller, err := czmq.NewPoller(sock)
	if err != nil {
		return fmt.Errorf("worker[%s]: new poller: %w", w.id, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.Printf("shutting down: %v", ctx.Err())
			return nil
		case sig := <-sigCh:
			w.Printf("shutting down on signal %v", sig)
			return nil
		default:
		}

		polled, err := poller.Wait(pollTimeoutMs)
		if err != nil {
			return fmt.Errorf("worker[%s]: poll: %w", w.id, err)
		}
		if polled == nil {
			continue // poll timeout, loop back and re-check ctx/signals
		}

		msg, err := sock.RecvMessage()
		if err != nil {
			return fmt.Errorf("worker[%s]: recv: %w", w.id, err)
		}

		clientID, taskType, payload, ok := parseTaskMessage(msg)
		if !ok {
			w.Errorf("malformed task frame, dropping: %v", msg)
			continue
		}

		result, procErr := w.strategy.Process(taskType, payload)
		if procErr != nil {
			w.Errorf("strategy error: %v", procErr)
			result = bus.Sentinel(procErr.Error())
		}

		if err := w.respond(sock, clientID, result); err != nil {
			return fmt.Errorf("worker[%s]: send response: %w", w.id, err)
		}
		if err := w.handshake(sock); err != nil {
			return fmt.Errorf("worker[%s]: re-handshake: %w", w.id, err)
		}
	}
}

// parseTaskMessage decodes a DEALER-received TASK message. The router's
// ROUTER socket consumes the destination identity for routing, so what
// arrives here is exactly [delimiter, client_id, task_type, payload].
func parseTaskMessage(msg [][]byte) (clientID bus.ClientID, taskType string, payload []byte, ok bool) {
	if len(msg) < 4 {
		return "", "", nil, false
	}
	return bus.ClientID(msg[1]), string(msg[2]), msg[3], true
}

// handshake announces this worker as idle: [delimiter, "HANDSHAKE", "", ""].
func (w *Worker) handshake(sock *czmq.Sock) error {
	return sock.SendMessage([][]byte{
		[]byte(""), []byte("HANDSHAKE"), []byte(""), []byte(""),
	})
}

// respond returns a task's result: [delimiter, "RESPONSE", client_id, payload].
func (w *Worker) respond(sock *czmq.Sock, clientID bus.ClientID, payload []byte) error {
	return sock.SendMessage([][]byte{
		[]byte(""), []byte("RESPONSE"), []byte(clientID), payload,
	})
}

