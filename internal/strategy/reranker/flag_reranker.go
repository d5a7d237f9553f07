// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package reranker implements the fabric's reranking strategy (spec.md
// §4.4/§7). flag_reranker mirrors
// generic_vectorizer/strategies/reranker/flag_reranker.py's process: pair
// the query against every corpus entry and produce one score per entry.
// The actual FlagReranker cross-encoder is out of scope (spec.md §1), so
// scores come from a deterministic hash-based stand-in instead of a real
// model, with the same optional sigmoid normalization the original passes
// through to compute_score(normalize=...).
package reranker

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/milkymap/vectorfabric/internal/rpc"
	"github.com/milkymap/vectorfabric/internal/strategy"
)

// StrategyName is the registry key this strategy is installed under.
const StrategyName = "flag_reranker"

// Strategy is the flag_reranker strategy. It carries no state of its own:
// there is no real model to load, unlike the embedding strategy's
// dimension knob.
type Strategy struct{}

// New builds a flag_reranker Strategy. options is accepted for symmetry
// with the registry's Constructor signature but unused: the original's
// FlagRerankerConfig (model_name_or_path, device, use_fp16, cache_dir) has
// no bearing once the model itself is out of scope.
func New(options map[string]any) (strategy.Strategy, error) {
	return &Strategy{}, nil
}

// Process handles the fabric's single rerank task type.
func (s *Strategy) Process(taskType string, payload []byte) ([]byte, error) {
	if taskType != "" && taskType != "TEXT_RERANK" {
		return nil, fmt.Errorf("%q must be empty or TEXT_RERANK", taskType)
	}

	var req rpc.TextRerankScoresRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("flag_reranker: decode TextRerankScoresRequest: %w", err)
	}

	if len(req.Corpus) == 0 {
		return json.Marshal(rpc.TextRerankScoresResponse{Status: false, Error: "corpus must not be empty"})
	}

	scores := make([]float32, len(req.Corpus))
	for i, doc := range req.Corpus {
		scores[i] = score(req.Query, doc, req.Normalize)
	}

	return json.Marshal(rpc.TextRerankScoresResponse{Status: true, Scores: scores})
}

// score deterministically derives a relevance score for (query, doc),
// standing in for compute_score's cross-encoder logit. When normalize is
// set, the raw logit is squashed through a sigmoid, mirroring
// FlagReranker.compute_score(normalize=True)'s behavior.
func score(query, doc string, normalize bool) float32 {
	h := sha256.Sum256([]byte(query + "\x00" + doc))
	v := binary.BigEndian.Uint32(h[:4])

	// spread the hash uniformly over [-10, 10], a plausible raw logit range
	// for a cross-encoder reranker.
	logit := (float64(v)/float64(math.MaxUint32))*20 - 10

	if !normalize {
		return float32(logit)
	}
	return float32(1 / (1 + math.Exp(-logit)))
}
