// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkymap/vectorfabric/internal/bus"
)

func TestCallUnknownTopicReturnsSentinel(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	payload, err := b.Call(context.Background(), "client-1", "nope", "TEXT", []byte("hi"))
	require.NoError(t, err)
	assert.True(t, bus.IsSentinel(payload))
	assert.NotEmpty(t, bus.SentinelReason(payload))
}

func TestCallCorrelatesReplyToClient(t *testing.T) {
	b := New()
	queue := bus.NewTaskQueue()
	b.RegisterTopic("t", queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	// simulate a router: echo back whatever task it received.
	go func() {
		for {
			select {
			case <-queue.Notify():
				for _, task := range queue.Drain() {
					b.Outbound() <- bus.Reply{ClientID: task.ClientID, Payload: task.Payload}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	type result struct {
		payload []byte
		err     error
	}
	results := make(chan result, 2)

	go func() {
		p, err := b.Call(context.Background(), "client-A", "t", "TEXT", []byte("payload-A"))
		results <- result{p, err}
	}()
	go func() {
		p, err := b.Call(context.Background(), "client-B", "t", "TEXT", []byte("payload-B"))
		results <- result{p, err}
	}()

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			require.NoError(t, r.err)
			seen[string(r.payload)] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for correlated replies")
		}
	}
	assert.True(t, seen["payload-A"])
	assert.True(t, seen["payload-B"])
}

func TestCallCancellationUnregistersPending(t *testing.T) {
	b := New()
	queue := bus.NewTaskQueue()
	b.RegisterTopic("t", queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	callCtx, callCancel := context.WithCancel(context.Background())
	callCancel()

	_, err := b.Call(callCtx, "client-X", "t", "TEXT", []byte("x"))
	require.Error(t, err)

	b.mu.Lock()
	_, stillPending := b.pending["client-X"]
	b.mu.Unlock()
	assert.False(t, stillPending)
}
