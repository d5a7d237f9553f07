// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryPathMissingSiblingErrors(t *testing.T) {
	s := New("", nil, t.TempDir())
	_, err := s.binaryPath(serverBinaryName)
	require.Error(t, err)
}

func TestBinaryPathFindsSiblingBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, serverBinaryName)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	s := New("", nil, dir)
	got, err := s.binaryPath(serverBinaryName)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestHasExitedFalseBeforeClose(t *testing.T) {
	p := &process{exited: make(chan struct{})}
	assert.False(t, hasExited(p))
}

func TestHasExitedTrueAfterClose(t *testing.T) {
	p := &process{exited: make(chan struct{})}
	close(p.exited)
	assert.True(t, hasExited(p))
}
