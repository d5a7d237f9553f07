// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/bus"
)

// Caller is the subset of Broker the Servicer depends on, kept as an
// interface so the servicer can be exercised without a running Broker.
type Caller interface {
	Call(ctx context.Context, clientID bus.ClientID, topic, taskType string, payload []byte) ([]byte, error)
}

// Servicer implements TextEmbeddingServer (spec.md §4.1, C4): it admits a
// bounded number of concurrent in-flight calls, generates a fresh
// client_id per call, and dispatches through caller, mirroring
// TextEmbeddingServicer's semaphore/dealer-socket contract one call at a
// time.
type Servicer struct {
	*clog.CLogger

	caller  Caller
	sem     chan struct{}
	timeout time.Duration
}

// NewServicer admits at most floor(0.7 * maxConcurrentRequests) in-flight
// calls, mirroring GRPCServer.__aenter__'s
// asyncio.Semaphore(int(0.7 * max_concurrent_requests)). requestTimeout of
// zero disables the per-call deadline.
func NewServicer(caller Caller, maxConcurrentRequests int, requestTimeout time.Duration) *Servicer {
	admitted := int(0.7 * float64(maxConcurrentRequests))
	if admitted < 1 {
		admitted = 1
	}
	return &Servicer{
		CLogger: clog.New("servicer "),
		caller:  caller,
		sem:     make(chan struct{}, admitted),
		timeout: requestTimeout,
	}
}

var _ TextEmbeddingServer = (*Servicer)(nil)

// GetTextEmbedding implements TextEmbeddingServer.
func (s *Servicer) GetTextEmbedding(ctx context.Context, req *TextEmbeddingRequest) (*TextEmbeddingResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	out, err := s.call(ctx, req.TargetTopic, "TEXT", payload)
	if err != nil {
		return nil, err
	}
	if bus.IsSentinel(out) {
		return &TextEmbeddingResponse{Status: false, Error: bus.SentinelReason(out)}, nil
	}

	var resp TextEmbeddingResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, status.Errorf(codes.Internal, "decode worker response: %v", err)
	}
	return &resp, nil
}

// GetTextBatchEmbedding implements TextEmbeddingServer.
func (s *Servicer) GetTextBatchEmbedding(ctx context.Context, req *TextBatchEmbeddingRequest) (*TextBatchEmbeddingResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	out, err := s.call(ctx, req.TargetTopic, "TEXT_BATCH", payload)
	if err != nil {
		return nil, err
	}
	if bus.IsSentinel(out) {
		return &TextBatchEmbeddingResponse{Status: false, Error: bus.SentinelReason(out)}, nil
	}

	var resp TextBatchEmbeddingResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, status.Errorf(codes.Internal, "decode worker response: %v", err)
	}
	return &resp, nil
}

// GetTextRerankScores implements TextEmbeddingServer. The rerank task type
// is the empty string on the wire, matching bus.Task's TaskType
// convention for this one RPC.
func (s *Servicer) GetTextRerankScores(ctx context.Context, req *TextRerankScoresRequest) (*TextRerankScoresResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	out, err := s.call(ctx, req.TargetTopic, "", payload)
	if err != nil {
		return nil, err
	}
	if bus.IsSentinel(out) {
		return &TextRerankScoresResponse{Status: false, Error: bus.SentinelReason(out)}, nil
	}

	var resp TextRerankScoresResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, status.Errorf(codes.Internal, "decode worker response: %v", err)
	}
	return &resp, nil
}

// call admits one slot, generates a fresh client_id, and blocks on the
// broker until a reply arrives or the call's deadline expires.
func (s *Servicer) call(ctx context.Context, topic, taskType string, payload []byte) ([]byte, error) {
	release, err := s.admit(ctx)
	if err != nil {
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	}
	defer release()

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	clientID := bus.ClientID(uuid.NewString())
	out, err := s.caller.Call(callCtx, clientID, topic, taskType, payload)
	if err != nil {
		s.Errorf("call to topic %q failed: %v", topic, err)
		return nil, status.Error(codes.Internal, fmt.Sprint(err))
	}
	return out, nil
}

func (s *Servicer) admit(ctx context.Context) (func(), error) {
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
