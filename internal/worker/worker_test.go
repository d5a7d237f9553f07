// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEndpointDefaultsToIPC(t *testing.T) {
	got := ResolveEndpoint("embeddings", "")
	assert.Equal(t, "ipc:///tmp/router2worker_embeddings.ipc", got)
}

func TestResolveEndpointRewritesWildcardTCPAddress(t *testing.T) {
	got := ResolveEndpoint("embeddings", "tcp://*:5555")
	assert.Equal(t, "tcp://localhost:5555", got)
}

func TestParseTaskMessage(t *testing.T) {
	clientID, taskType, payload, ok := parseTaskMessage([][]byte{
		[]byte(""), []byte("client-1"), []byte("TEXT"), []byte(`{"text":"hi"}`),
	})
	assert.True(t, ok)
	assert.Equal(t, "client-1", string(clientID))
	assert.Equal(t, "TEXT", taskType)
	assert.Equal(t, `{"text":"hi"}`, string(payload))
}

func TestParseTaskMessageRejectsShortFrame(t *testing.T) {
	_, _, _, ok := parseTaskMessage([][]byte{[]byte(""), []byte("client-1")})
	assert.False(t, ok)
}
