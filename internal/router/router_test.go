// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkymap/vectorfabric/internal/bus"
)

func TestParseWorkerMessageHandshake(t *testing.T) {
	f, ok := parseWorkerMessage([][]byte{
		[]byte("worker-1"), []byte(""), []byte("HANDSHAKE"), []byte(""), []byte(""),
	})
	require.True(t, ok)
	assert.Equal(t, frameHandshake, f.kind)
	assert.Equal(t, "worker-1", string(f.workerID))
}

func TestParseWorkerMessageResponse(t *testing.T) {
	f, ok := parseWorkerMessage([][]byte{
		[]byte("worker-1"), []byte(""), []byte("RESPONSE"), []byte("client-9"), []byte(`{"status":true}`),
	})
	require.True(t, ok)
	assert.Equal(t, frameResponse, f.kind)
	assert.Equal(t, "client-9", string(f.clientID))
	assert.Equal(t, `{"status":true}`, string(f.payload))
}

func TestParseWorkerMessageRejectsTruncatedResponse(t *testing.T) {
	_, ok := parseWorkerMessage([][]byte{[]byte("worker-1"), []byte(""), []byte("RESPONSE"), []byte("client-9")})
	assert.False(t, ok)
}

func TestParseWorkerMessageRejectsUnknownKind(t *testing.T) {
	_, ok := parseWorkerMessage([][]byte{
		[]byte("worker-1"), []byte(""), []byte("BOGUS"), []byte(""), []byte(""),
	})
	assert.False(t, ok)
}

func TestParseWorkerMessageRejectsShortFrame(t *testing.T) {
	_, ok := parseWorkerMessage([][]byte{[]byte("worker-1")})
	assert.False(t, ok)
}

func TestSchedulerDispatchPairsOldestTaskWithOldestWorker(t *testing.T) {
	var s schedulerState
	s.enqueueTask(bus.Task{ClientID: "c1"})
	s.enqueueTask(bus.Task{ClientID: "c2"})
	s.workerIdle("w1")

	sends := s.dispatch()
	require.Len(t, sends, 1)
	assert.Equal(t, bus.WorkerID("w1"), sends[0].worker)
	assert.Equal(t, bus.ClientID("c1"), sends[0].task.ClientID)
	assert.Len(t, s.pendingTasks, 1, "c2 should still be pending")
	assert.Empty(t, s.idleWorkers, "w1 must not be handed a second task")
}

func TestSchedulerDispatchNeverAssignsTwoTasksToOneWorker(t *testing.T) {
	var s schedulerState
	s.enqueueTask(bus.Task{ClientID: "c1"})
	s.enqueueTask(bus.Task{ClientID: "c2"})
	s.enqueueTask(bus.Task{ClientID: "c3"})
	s.workerIdle("w1")

	sends := s.dispatch()
	require.Len(t, sends, 1)
	assert.Len(t, s.pendingTasks, 2)
}

func TestSchedulerDispatchPreservesFIFOAcrossMultipleWorkers(t *testing.T) {
	var s schedulerState
	s.enqueueTask(bus.Task{ClientID: "c1"})
	s.enqueueTask(bus.Task{ClientID: "c2"})
	s.enqueueTask(bus.Task{ClientID: "c3"})
	s.workerIdle("w1")
	s.workerIdle("w2")

	sends := s.dispatch()
	require.Len(t, sends, 2)
	assert.Equal(t, bus.ClientID("c1"), sends[0].task.ClientID)
	assert.Equal(t, bus.ClientID("c2"), sends[1].task.ClientID)
	require.Len(t, s.pendingTasks, 1)
	assert.Equal(t, bus.ClientID("c3"), s.pendingTasks[0].ClientID)
}

func TestSchedulerRequeuePutsTaskAheadOfNewerArrivals(t *testing.T) {
	var s schedulerState
	s.enqueueTask(bus.Task{ClientID: "newer"})
	s.requeue(bus.Task{ClientID: "failed"})

	require.Len(t, s.pendingTasks, 2)
	assert.Equal(t, bus.ClientID("failed"), s.pendingTasks[0].ClientID)
	assert.Equal(t, bus.ClientID("newer"), s.pendingTasks[1].ClientID)
}

func TestSchedulerDispatchNoopWhenEitherRosterEmpty(t *testing.T) {
	var s schedulerState
	assert.Empty(t, s.dispatch())

	s.enqueueTask(bus.Task{ClientID: "c1"})
	assert.Empty(t, s.dispatch())
	assert.Len(t, s.pendingTasks, 1)
}
