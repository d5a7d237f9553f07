// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package router implements the per-topic Router (spec.md §4.3, C2): the
// only component that crosses a real OS process boundary, matching one
// in-process bus.TaskQueue (fed by the Broker) against a pool of worker
// processes connected over a ZeroMQ ROUTER socket.
//
// The socket side is grounded on the goczmq ROUTER/poller idiom used by the
// Majordomo broker in other_examples (a7c7118c_geoffjay-plantd__core-mdp-
// broker.go.go): a single goroutine polls the ROUTER socket with a bounded
// timeout and classifies frames by header, exactly as that broker's Run
// loop does for MdpcClient/MdpwWorker. The dispatch rule itself (idle
// roster vs. pending task FIFO) is grounded on embedding_server/grpc_server
// /server.py's router() coroutine.
package router

import (
	"context"
	"fmt"
	"time"

	czmq "github.com/zeromq/goczmq/v4"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/bus"
)

const (
	frameHandshake = "HANDSHAKE"
	frameResponse  = "RESPONSE"

	pollTimeoutMs  = 1000
	heartbeatEvery = 5 * time.Second
)

// workerFrame is what the receiver goroutine hands to the main loop after
// parsing one multipart ROUTER message.
type workerFrame struct {
	workerID bus.WorkerID // ROUTER's envelope identity, i.e. frame 0
	kind     string       // frameHandshake | frameResponse
	clientID bus.ClientID // only set for frameResponse
	payload  []byte       // only set for frameResponse
}

// Router is the C2 component for a single topic. Zero value is not usable;
// use New.
type Router struct {
	*clog.CLogger

	topic    string
	endpoint string

	tasks *bus.TaskQueue // fed by the broker (producer side held there)
	out   chan<- bus.Reply
}

// New creates a Router bound to endpoint (a ZeroMQ tcp:// or ipc:// ROUTER
// endpoint) for topic, publishing replies onto out. The returned queue is
// registered with the broker via Broker.RegisterTopic.
func New(topic, endpoint string, out chan<- bus.Reply) (*Router, *bus.TaskQueue, error) {
	r := &Router{
		CLogger:  clog.New("router[%s] ", topic),
		topic:    topic,
		endpoint: endpoint,
		tasks:    bus.NewTaskQueue(),
		out:      out,
	}
	return r, r.tasks, nil
}

// Run binds the ROUTER socket and drives the dispatch loop until ctx is
// done or an unrecoverable socket error occurs.
func (r *Router) Run(ctx context.Context) error {
	sock, err := czmq.NewRouter(r.endpoint)
	if err != nil {
		return fmt.Errorf("router[%s]: bind %s: %w", r.topic, r.endpoint, err)
	}
	defer sock.Destroy()

	poller, err := czmq.NewPoller(sock)
	if err != nil {
		return fmt.Errorf("router[%s]: new poller: %w", r.topic, err)
	}

	frames := make(chan workerFrame, 64)
	recvErrs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go r.receiveLoop(poller, frames, recvErrs, done)

	var sched schedulerState

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	dispatch := func() {
		for _, sd := range sched.dispatch() {
			if err := r.send(sock, sd.worker, sd.task); err != nil {
				r.Errorf("send to worker %s: %v", sd.worker, err)
				// worker presumed dead; do not return it to the idle roster,
				// and the task it would have received is requeued ahead of
				// whatever arrived since.
				sched.requeue(sd.task)
				continue
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-recvErrs:
			return fmt.Errorf("router[%s]: recv: %w", r.topic, err)

		case <-r.tasks.Notify():
			for _, task := range r.tasks.Drain() {
				sched.enqueueTask(task)
			}
			dispatch()

		case f := <-frames:
			switch f.kind {
			case frameHandshake:
				// idle roster invariant (spec.md §4.3): a worker is either
				// idle or busy, never both; HANDSHAKE always re-enters idle.
				sched.workerIdle(f.workerID)
				dispatch()
			case frameResponse:
				r.out <- bus.Reply{ClientID: f.clientID, Payload: f.payload}
			}

		case <-heartbeat.C:
			r.Printf("topic=%s pending=%d idle=%d", r.topic, len(sched.pendingTasks), len(sched.idleWorkers))
		}
	}
}

// schedulerState holds a topic's pending-task FIFO and idle-worker roster
// and implements the dispatch rule (spec.md §4.3) in isolation from the
// socket, so the at-most-one-task-per-worker and FIFO-per-topic invariants
// can be driven and asserted directly.
type schedulerState struct {
	pendingTasks []bus.Task
	idleWorkers  []bus.WorkerID
}

// send pairs one task with the worker dispatch should deliver it to.
type send struct {
	worker bus.WorkerID
	task   bus.Task
}

// enqueueTask appends a newly arrived task to the tail of the pending FIFO.
func (s *schedulerState) enqueueTask(task bus.Task) {
	s.pendingTasks = append(s.pendingTasks, task)
}

// workerIdle returns worker to the idle roster after a HANDSHAKE.
func (s *schedulerState) workerIdle(worker bus.WorkerID) {
	s.idleWorkers = append(s.idleWorkers, worker)
}

// requeue puts task back at the head of the pending FIFO, ahead of whatever
// arrived since, for a worker presumed dead after a failed send.
func (s *schedulerState) requeue(task bus.Task) {
	s.pendingTasks = append([]bus.Task{task}, s.pendingTasks...)
}

// dispatch pairs the oldest pending task with the oldest idle worker, for as
// long as both rosters are non-empty, and returns the resulting sends. Each
// idle worker consumed here is handed exactly one task.
func (s *schedulerState) dispatch() []send {
	var sends []send
	for len(s.pendingTasks) > 0 && len(s.idleWorkers) > 0 {
		task := s.pendingTasks[0]
		s.pendingTasks = s.pendingTasks[1:]
		worker := s.idleWorkers[0]
		s.idleWorkers = s.idleWorkers[1:]
		sends = append(sends, send{worker: worker, task: task})
	}
	return sends
}

// receiveLoop polls sock with a 1s timeout, parses ROUTER envelopes, and
// forwards them onto frames. It exits when done is closed.
func (r *Router) receiveLoop(poller *czmq.Poller, frames chan<- workerFrame, recvErrs chan<- error, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}

		sock, err := poller.Wait(pollTimeoutMs)
		if err != nil {
			select {
			case recvErrs <- err:
			case <-done:
			}
			return
		}
		if sock == nil {
			continue // poll timeout, no message
		}

		msg, err := sock.RecvMessage()
		if err != nil {
			select {
			case recvErrs <- err:
			case <-done:
			}
			return
		}

		f, ok := parseWorkerMessage(msg)
		if !ok {
			r.Errorf("malformed worker frame, dropping: %v", msg)
			continue
		}

		select {
		case frames <- f:
		case <-done:
			return
		}
	}
}

// parseWorkerMessage decodes a ROUTER-received multipart message into a
// workerFrame. The ROUTER socket prepends the sender's identity as frame 0;
// everything after it is exactly what the worker's DEALER socket sent.
// Frame layout (mirroring the DEALER side in internal/worker):
//
//	[0] worker identity (ROUTER envelope)
//	[1] "" (delimiter)
//	[2] "HANDSHAKE" | "RESPONSE"
//	[3] client_id    (empty for HANDSHAKE)
//	[4] payload      (empty for HANDSHAKE)
func parseWorkerMessage(msg [][]byte) (workerFrame, bool) {
	if len(msg) < 5 {
		return workerFrame{}, false
	}
	workerID := bus.WorkerID(msg[0])
	kind := string(msg[2])

	switch kind {
	case frameHandshake:
		return workerFrame{workerID: workerID, kind: frameHandshake}, true
	case frameResponse:
		return workerFrame{
			workerID: workerID,
			kind:     frameResponse,
			clientID: bus.ClientID(msg[3]),
			payload:  msg[4],
		}, true
	default:
		return workerFrame{}, false
	}
}

// send transmits task to worker as a ROUTER-framed TASK message. Frame 0
// (worker identity) is consumed by libzmq for routing and never reaches the
// worker's DEALER socket; frames 1-4 below arrive there as ['', client_id,
// task_type, payload].
func (r *Router) send(sock *czmq.Sock, worker bus.WorkerID, task bus.Task) error {
	return sock.SendMessage([][]byte{
		[]byte(worker),
		[]byte(""),
		[]byte(task.ClientID),
		[]byte(task.TaskType),
		task.Payload,
	})
}
