// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package broker implements the Broker (spec.md §4.2, C3): a single
// in-process loop that demultiplexes inbound requests by topic into
// per-topic queues, and multiplexes replies from routers back to the exact
// RPC handler that issued the originating call.
//
// Client<->broker<->router communication is entirely in-process (spec.md
// Design Notes §9 explicitly allows native channels for in-process legs),
// so there is no socket here: the "ephemeral per-call endpoint" of the
// original design is realized as a buffered Go channel registered under a
// fresh client_id in the pending-reply table below.
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/bus"
)

// Broker is the C3 component. Zero value is not usable; use New.
type Broker struct {
	*clog.CLogger

	mu      sync.Mutex
	topics  map[string]*bus.TaskQueue // topic -> router's unbounded task queue
	pending map[bus.ClientID]chan bus.Reply

	inbound  chan bus.Task
	outbound chan bus.Reply
}

// New creates a Broker with no topics registered. Call RegisterTopic for
// every topic before traffic for it reaches the broker.
func New() *Broker {
	return &Broker{
		CLogger:  clog.New("broker "),
		topics:   make(map[string]*bus.TaskQueue),
		pending:  make(map[bus.ClientID]chan bus.Reply),
		inbound:  make(chan bus.Task, 256),
		outbound: make(chan bus.Reply, 256),
	}
}

// RegisterTopic associates topic with its router's unbounded task queue.
// Must be called before Run starts routing traffic for that topic.
func (b *Broker) RegisterTopic(topic string, queue *bus.TaskQueue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = queue
}

// Outbound returns the channel routers push completed replies onto.
func (b *Broker) Outbound() chan<- bus.Reply {
	return b.outbound
}

// Call implements the full client-facing contract used by the RPC servicer:
// register a fresh reply channel under clientID, submit the task, and block
// until either a reply arrives or ctx is done. On cancellation the pending
// registration is torn down; a reply that arrives afterward is routed to a
// vanished entry and silently dropped (spec.md §5).
func (b *Broker) Call(ctx context.Context, clientID bus.ClientID, topic, taskType string, payload []byte) ([]byte, error) {
	replyCh := make(chan bus.Reply, 1)

	b.mu.Lock()
	b.pending[clientID] = replyCh
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, clientID)
		b.mu.Unlock()
	}()

	select {
	case b.inbound <- bus.Task{ClientID: clientID, Topic: topic, TaskType: taskType, Payload: payload}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply := <-replyCh:
		return reply.Payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run drives the broker's cooperative loop until ctx is done. Both the
// inbound and outbound legs are serviced from this single goroutine, as in
// spec.md §4.2's single-threaded cooperative loop.
func (b *Broker) Run(ctx context.Context) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case task := <-b.inbound:
			b.handleInbound(task)

		case reply := <-b.outbound:
			b.handleOutbound(reply)

		case <-ticker.C:
			// periodic housekeeping tick; mirrors the 1s poll-timeout cadence
			// of the original bus-based broker loop. Nothing to do here today.
		}
	}
}

func (b *Broker) handleInbound(task bus.Task) {
	b.mu.Lock()
	queue, ok := b.topics[task.Topic]
	b.mu.Unlock()

	if !ok {
		b.replyTo(task.ClientID, bus.SentinelUnknownTopic(task.Topic))
		return
	}

	// queues are unbounded in the core design (spec.md §4.2's invariant);
	// Push never blocks and never reorders tasks under backpressure.
	queue.Push(task)
}

func (b *Broker) handleOutbound(reply bus.Reply) {
	b.replyTo(reply.ClientID, reply.Payload)
}

func (b *Broker) replyTo(clientID bus.ClientID, payload []byte) {
	b.mu.Lock()
	ch, ok := b.pending[clientID]
	b.mu.Unlock()

	if !ok {
		// the RPC handler's endpoint has already vanished (cancellation);
		// silently drop, per spec.md §5.
		return
	}

	select {
	case ch <- bus.Reply{ClientID: clientID, Payload: payload}:
	default:
		// a reply was already delivered for this client_id; should not
		// happen under the fabric's one-reply-per-task invariant.
	}
}
