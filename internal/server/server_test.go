// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindEndpointDefaultsToIPC(t *testing.T) {
	got := bindEndpoint("embeddings", "")
	assert.Equal(t, "ipc:///tmp/router2worker_embeddings.ipc", got)
}

func TestBindEndpointKeepsConfiguredWildcard(t *testing.T) {
	got := bindEndpoint("embeddings", "tcp://*:5555")
	assert.Equal(t, "tcp://*:5555", got)
}
