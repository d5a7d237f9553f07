// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package embedding implements the fabric's embedding strategies
// (spec.md §4.4/§7). bge_m3 mirrors
// generic_vectorizer/strategies/embedding/bge_m3.py's control flow —
// chunk, encode, aggregate — but stands in an opaque, deterministic
// dense/sparse encoder for the real BGE-M3 model, which spec.md §1 places
// out of scope as an external collaborator. Chunking walks Unicode
// grapheme clusters via github.com/rivo/uniseg instead of the original's
// subword tokenizer, the same library teacher's registry/wf package uses
// for grapheme-aware text measurement.
package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/milkymap/vectorfabric/internal/rpc"
	"github.com/milkymap/vectorfabric/internal/strategy"
)

// StrategyName is the registry key this strategy is installed under.
const StrategyName = "bge_m3"

const defaultDimension = 128

// Config mirrors the allow-listed subset of BGEM3FlagModelConfig (typing/
// bge_embedding.py) relevant once the real model is out of scope: only the
// output vector width remains as a tunable knob.
type Config struct {
	Dimension int `mapstructure:"dimension"`
}

// Strategy is the bge_m3 embedding strategy.
type Strategy struct {
	dimension int
}

// New builds a bge_m3 Strategy from worker config options. Registered
// under StrategyName with internal/strategy's Registry.
func New(options map[string]any) (strategy.Strategy, error) {
	dim := defaultDimension
	if raw, ok := options["dimension"]; ok {
		switch v := raw.(type) {
		case int:
			dim = v
		case float64:
			dim = int(v)
		default:
			return nil, fmt.Errorf("bge_m3: dimension option must be numeric, got %T", raw)
		}
	}
	if dim <= 0 {
		return nil, fmt.Errorf("bge_m3: dimension must be > 0, got %d", dim)
	}
	return &Strategy{dimension: dim}, nil
}

// Process dispatches a TEXT or TEXT_BATCH task, mirroring
// BGEM3FlagModelStrategy.process's map_task2function dispatch table.
func (s *Strategy) Process(taskType string, payload []byte) ([]byte, error) {
	switch taskType {
	case "TEXT":
		return s.processText(payload)
	case "TEXT_BATCH":
		return s.processBatchTexts(payload)
	default:
		return nil, fmt.Errorf("%q must be one of [TEXT, TEXT_BATCH]", taskType)
	}
}

func (s *Strategy) processText(payload []byte) ([]byte, error) {
	var req rpc.TextEmbeddingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("bge_m3: decode TextEmbeddingRequest: %w", err)
	}

	if !req.ReturnDense && !req.ReturnSparse {
		return json.Marshal(rpc.TextEmbeddingResponse{
			Status: false,
			Error:  "one of [return_dense or return_sparse] was not set",
		})
	}

	chunks := toChunks(req.Text, int(req.ChunkSize))
	embedding := s.encode(chunks, req.ReturnDense, req.ReturnSparse)

	return json.Marshal(rpc.TextEmbeddingResponse{Status: true, Embedding: embedding})
}

func (s *Strategy) processBatchTexts(payload []byte) ([]byte, error) {
	var req rpc.TextBatchEmbeddingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("bge_m3: decode TextBatchEmbeddingRequest: %w", err)
	}

	if !req.ReturnDense && !req.ReturnSparse {
		return json.Marshal(rpc.TextBatchEmbeddingResponse{
			Status: false,
			Error:  "one of [return_dense or return_sparse] was not set",
		})
	}

	embeddings := make([]rpc.Embedding, 0, len(req.Texts))
	for _, text := range req.Texts {
		chunks := toChunks(text, int(req.ChunkSize))
		embeddings = append(embeddings, s.encode(chunks, req.ReturnDense, req.ReturnSparse))
	}

	return json.Marshal(rpc.TextBatchEmbeddingResponse{Status: true, Embeddings: embeddings})
}

// encode turns a text's chunks into one aggregated Embedding, mirroring
// _process_text's dense-aggregation / sparse-merge pair.
func (s *Strategy) encode(chunks []string, returnDense, returnSparse bool) rpc.Embedding {
	var embedding rpc.Embedding

	if returnDense {
		vectors := make([][]float32, len(chunks))
		for i, chunk := range chunks {
			vectors[i] = denseVector(chunk, s.dimension)
		}
		embedding.DenseValues = aggregateDense(vectors)
	}

	if returnSparse {
		merged := map[string]float32{}
		for _, chunk := range chunks {
			merged = mergeMax(merged, lexicalWeights(chunk))
		}
		embedding.SparseValues = merged
	}

	return embedding
}

// toChunks splits text into chunkSize-grapheme-cluster windows, mirroring
// to_chunks's token-window slicing but walking user-perceived characters
// instead of subword tokens.
func toChunks(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 64
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	if len(clusters) == 0 {
		return []string{" "}
	}

	var chunks []string
	for i := 0; i < len(clusters); i += chunkSize {
		end := i + chunkSize
		if end > len(clusters) {
			end = len(clusters)
		}
		chunks = append(chunks, strings.Join(clusters[i:end], ""))
	}
	return chunks
}

// denseVector deterministically derives a unit-norm vector from text: a
// sha256 digest seeds a PRNG, standing in for an actual model's encode()
// call while staying reproducible across calls and across the fabric's
// replicated worker instances for the same input.
func denseVector(text string, dim int) []float32 {
	h := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(h[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// aggregateDense combines one text's per-chunk vectors into a single
// embedding, mirroring aggregate_embeddings's cosine-similarity-weighted
// mean (each chunk is weighted by its summed similarity to every chunk,
// itself included, favoring chunks central to the text's overall meaning).
func aggregateDense(vectors [][]float32) []float32 {
	if len(vectors) == 1 {
		return vectors[0]
	}

	n := len(vectors)
	dim := len(vectors[0])
	centrality := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			centrality[i] += cosineSimilarity(vectors[i], vectors[j])
		}
	}

	result := make([]float32, dim)
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			result[d] += float32(centrality[i]) * vectors[i][d]
		}
	}
	for d := range result {
		result[d] /= float32(n)
	}
	return result
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + 1e-8)
}

// lexicalWeights derives per-word importance scores for chunk, mirroring
// the original's lexical_weights dict but with a deterministic hash-based
// score standing in for the model's learned term weights. Word boundaries
// follow teacher's registry/wf ignoreWord/FirstWord idiom.
func lexicalWeights(chunk string) map[string]float32 {
	weights := map[string]float32{}

	state := -1
	remaining := []byte(chunk)
	for len(remaining) > 0 {
		var word []byte
		word, remaining, state = uniseg.FirstWord(remaining, state)
		if isIgnorableWord(word) {
			continue
		}
		key := strings.ToLower(string(word))
		weights[key] = deterministicWeight(key)
	}
	return weights
}

func isIgnorableWord(w []byte) bool {
	for len(w) > 0 {
		r, size := utf8.DecodeRune(w)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsControl(r) {
			w = w[size:]
			continue
		}
		return false
	}
	return true
}

func deterministicWeight(word string) float32 {
	h := sha256.Sum256([]byte(word))
	v := binary.BigEndian.Uint32(h[:4])
	return float32(v) / float32(math.MaxUint32)
}

// mergeMax merges b into a, keeping the larger score per key -- "use max
// scores as best key in case of duplication", per bge_m3.py's own comment
// on its (otherwise plain-overwrite) lexical_weights reduction.
func mergeMax(a, b map[string]float32) map[string]float32 {
	for k, v := range b {
		if existing, ok := a[k]; !ok || v > existing {
			a[k] = v
		}
	}
	return a
}
