// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "single.json", `{
		"grpc_server_address": "0.0.0.0:50051",
		"max_concurrent_requests": 512,
		"request_timeout": 30,
		"embedder_model_configs": [
			{"embedder_model_type": "bge_m3", "target_topic": "t", "nb_instances": 1, "options": {}}
		]
	}`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:50051", cfg.GRPCServerAddress)
	require.Len(t, cfg.ModelConfigs, 1)
	assert.Equal(t, "t", cfg.ModelConfigs[0].Topic)
}

func TestLoadGlobMergesFragments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{
		"grpc_server_address": "0.0.0.0:50051",
		"max_concurrent_requests": 512,
		"request_timeout": 30,
		"embedder_model_configs": [{"embedder_model_type": "bge_m3", "target_topic": "a", "nb_instances": 1, "options": {}}]
	}`)
	writeFile(t, dir, "b.json", `{
		"embedder_model_configs": [{"embedder_model_type": "flag_reranker", "target_topic": "b", "nb_instances": 2, "options": {}}]
	}`)

	cfg, err := Load(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, cfg.ModelConfigs, 2)
	assert.Equal(t, "0.0.0.0:50051", cfg.GRPCServerAddress, "scalar field from first fragment should win")
}
