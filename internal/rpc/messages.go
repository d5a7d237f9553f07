// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package rpc implements the RPC Servicer (spec.md §4.1): a gRPC front-end
// exposing three unary operations, admitted against a process-wide
// semaphore and dispatched through the broker. Because the wire message
// schema itself is out of scope as an external collaborator (spec.md §1),
// messages here are plain JSON-tagged Go structs carried over a hand-rolled
// gRPC service definition (service.go, codec.go) rather than protoc-
// generated protobuf types.
package rpc

// Embedding holds the dense and/or sparse representation of one piece of
// text (spec.md §6).
type Embedding struct {
	DenseValues  []float32          `json:"dense_values,omitempty"`
	SparseValues map[string]float32 `json:"sparse_values,omitempty"`
}

// TextEmbeddingRequest is the input of getTextEmbedding.
type TextEmbeddingRequest struct {
	TargetTopic  string `json:"target_topic"`
	Text         string `json:"text"`
	ChunkSize    int32  `json:"chunk_size"`
	ReturnDense  bool   `json:"return_dense"`
	ReturnSparse bool   `json:"return_sparse"`
}

// TextEmbeddingResponse is the output of getTextEmbedding.
type TextEmbeddingResponse struct {
	Status    bool      `json:"status"`
	Error     string    `json:"error,omitempty"`
	Embedding Embedding `json:"embedding"`
}

// TextBatchEmbeddingRequest is the input of getTextBatchEmbedding.
type TextBatchEmbeddingRequest struct {
	TargetTopic  string   `json:"target_topic"`
	Texts        []string `json:"texts"`
	ChunkSize    int32    `json:"chunk_size"`
	ReturnDense  bool     `json:"return_dense"`
	ReturnSparse bool     `json:"return_sparse"`
}

// TextBatchEmbeddingResponse is the output of getTextBatchEmbedding.
type TextBatchEmbeddingResponse struct {
	Status     bool        `json:"status"`
	Error      string      `json:"error,omitempty"`
	Embeddings []Embedding `json:"embeddings"`
}

// TextRerankScoresRequest is the input of getTextRerankScores.
type TextRerankScoresRequest struct {
	TargetTopic string   `json:"target_topic"`
	Query       string   `json:"query"`
	Corpus      []string `json:"corpus"`
	Normalize   bool     `json:"normalize"`
}

// TextRerankScoresResponse is the output of getTextRerankScores.
type TextRerankScoresResponse struct {
	Status bool      `json:"status"`
	Error  string    `json:"error,omitempty"`
	Scores []float32 `json:"scores"`
}
