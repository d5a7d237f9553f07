// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package embedding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkymap/vectorfabric/internal/rpc"
)

func TestNewRejectsZeroDimension(t *testing.T) {
	_, err := New(map[string]any{"dimension": 0})
	assert.Error(t, err)
}

func TestNewDefaultsDimension(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	strat := s.(*Strategy)
	assert.Equal(t, defaultDimension, strat.dimension)
}

func TestProcessTextProducesDenseEmbedding(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	req := rpc.TextEmbeddingRequest{Text: "hello world, this is a test.", ChunkSize: 4, ReturnDense: true}
	payload, _ := json.Marshal(req)

	out, err := s.Process("TEXT", payload)
	require.NoError(t, err)

	var resp rpc.TextEmbeddingResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.True(t, resp.Status, "error: %s", resp.Error)
	assert.Len(t, resp.Embedding.DenseValues, defaultDimension)
}

func TestProcessTextIsDeterministic(t *testing.T) {
	s, _ := New(nil)
	req := rpc.TextEmbeddingRequest{Text: "deterministic input", ChunkSize: 4, ReturnDense: true}
	payload, _ := json.Marshal(req)

	out1, _ := s.Process("TEXT", payload)
	out2, _ := s.Process("TEXT", payload)
	assert.Equal(t, string(out1), string(out2))
}

func TestProcessTextRejectsNeitherDenseNorSparse(t *testing.T) {
	s, _ := New(nil)
	req := rpc.TextEmbeddingRequest{Text: "hi"}
	payload, _ := json.Marshal(req)

	out, err := s.Process("TEXT", payload)
	require.NoError(t, err)

	var resp rpc.TextEmbeddingResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.False(t, resp.Status)
}

func TestProcessBatchTextsReturnsOnePerText(t *testing.T) {
	s, _ := New(nil)
	req := rpc.TextBatchEmbeddingRequest{
		Texts:       []string{"first text", "second text", "third"},
		ChunkSize:   4,
		ReturnDense: true,
	}
	payload, _ := json.Marshal(req)

	out, err := s.Process("TEXT_BATCH", payload)
	require.NoError(t, err)

	var resp rpc.TextBatchEmbeddingResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.True(t, resp.Status, "error: %s", resp.Error)
	assert.Len(t, resp.Embeddings, 3)
}

func TestProcessRejectsUnknownTaskType(t *testing.T) {
	s, _ := New(nil)
	_, err := s.Process("BOGUS", []byte("{}"))
	assert.Error(t, err)
}

func TestToChunksNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, toChunks("", 4))
}

func TestToChunksRespectsChunkSize(t *testing.T) {
	chunks := toChunks("abcdefgh", 2)
	assert.Len(t, chunks, 4)
}
