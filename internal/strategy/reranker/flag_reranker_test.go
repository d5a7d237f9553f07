// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package reranker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkymap/vectorfabric/internal/rpc"
)

func TestProcessReturnsOneScorePerCorpusEntry(t *testing.T) {
	s, _ := New(nil)
	req := rpc.TextRerankScoresRequest{
		Query:  "what is a vector database",
		Corpus: []string{"a vector database stores embeddings", "bananas are yellow", "pgvector and faiss are examples"},
	}
	payload, _ := json.Marshal(req)

	out, err := s.Process("", payload)
	require.NoError(t, err)

	var resp rpc.TextRerankScoresResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.True(t, resp.Status, "error: %s", resp.Error)
	assert.Len(t, resp.Scores, 3)
}

func TestProcessNormalizeBoundsScores(t *testing.T) {
	s, _ := New(nil)
	req := rpc.TextRerankScoresRequest{Query: "q", Corpus: []string{"a", "b"}, Normalize: true}
	payload, _ := json.Marshal(req)

	out, _ := s.Process("", payload)
	var resp rpc.TextRerankScoresResponse
	require.NoError(t, json.Unmarshal(out, &resp))

	for _, sc := range resp.Scores {
		assert.GreaterOrEqual(t, sc, float32(0))
		assert.LessOrEqual(t, sc, float32(1))
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	s, _ := New(nil)
	req := rpc.TextRerankScoresRequest{Query: "q", Corpus: []string{"a", "b"}}
	payload, _ := json.Marshal(req)

	out1, _ := s.Process("", payload)
	out2, _ := s.Process("", payload)
	assert.Equal(t, string(out1), string(out2))
}

func TestProcessRejectsEmptyCorpus(t *testing.T) {
	s, _ := New(nil)
	req := rpc.TextRerankScoresRequest{Query: "q"}
	payload, _ := json.Marshal(req)

	out, err := s.Process("", payload)
	require.NoError(t, err)
	var resp rpc.TextRerankScoresResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.False(t, resp.Status)
}

func TestProcessRejectsUnknownTaskType(t *testing.T) {
	s, _ := New(nil)
	_, err := s.Process("BOGUS", []byte("{}"))
	assert.Error(t, err)
}
