// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package config

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsDuplicateTopics(t *testing.T) {
	cfg := &Config{ModelConfigs: []ModelConfig{
		{Topic: "bge_m3", NbInstances: 1},
		{Topic: "bge_m3", NbInstances: 1},
		{Topic: "reranker", NbInstances: 1},
	}}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bge_m3")
	assert.Contains(t, err.Error(), "occurs 2 times")
}

func TestValidateAcceptsUniqueTopics(t *testing.T) {
	cfg := &Config{ModelConfigs: []ModelConfig{
		{Topic: "a", NbInstances: 1},
		{Topic: "b", NbInstances: 2},
	}}
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsMalformedAddress(t *testing.T) {
	cfg := &Config{ModelConfigs: []ModelConfig{
		{Topic: "a", NbInstances: 1, Address: "tcp://127.0.0.1:1234"},
	}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be in the format tcp://*:<port>")
}

func TestValidateRejectsUnavailablePort(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	cfg := &Config{ModelConfigs: []ModelConfig{
		{Topic: "a", NbInstances: 1, Address: "tcp://*:" + strconv.Itoa(port)},
	}}
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not available")
}

func TestValidateRejectsZeroInstances(t *testing.T) {
	cfg := &Config{ModelConfigs: []ModelConfig{{Topic: "a", NbInstances: 0}}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nb_instances")
}
