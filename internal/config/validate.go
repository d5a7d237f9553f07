// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"

	"go.uber.org/multierr"
)

var tcpStarAddr = regexp.MustCompile(`^tcp://\*:(\d+)$`)

// Validate enforces the startup invariants from spec.md §3/§4.5: topic
// strings must be unique, and any explicit bus address must match
// tcp://*:<port> with <port> currently free. All offending entries are
// collected and reported together (ported from vectorizer.py's
// Counter-based "report all duplicates at once" behavior), not just the
// first one encountered.
func Validate(cfg *Config) error {
	var err error

	err = multierr.Append(err, validateTopics(cfg.ModelConfigs))
	err = multierr.Append(err, validateAddresses(cfg.ModelConfigs))

	for _, mc := range cfg.ModelConfigs {
		if mc.NbInstances < 1 {
			err = multierr.Append(err, fmt.Errorf("topic %q: nb_instances must be >= 1, got %d", mc.Topic, mc.NbInstances))
		}
	}

	return err
}

func validateTopics(configs []ModelConfig) error {
	counts := make(map[string]int, len(configs))
	for _, mc := range configs {
		counts[mc.Topic]++
	}

	var err error
	for topic, count := range counts {
		if count > 1 {
			err = multierr.Append(err, fmt.Errorf("duplicate topic %q (occurs %d times)", topic, count))
		}
	}
	return err
}

func validateAddresses(configs []ModelConfig) error {
	var err error
	for _, mc := range configs {
		if mc.Address == "" {
			continue
		}
		matches := tcpStarAddr.FindStringSubmatch(mc.Address)
		if matches == nil {
			err = multierr.Append(err, fmt.Errorf("invalid zmq_tcp_address %q for topic %q: must be in the format tcp://*:<port>", mc.Address, mc.Topic))
			continue
		}
		port, convErr := strconv.Atoi(matches[1])
		if convErr != nil {
			err = multierr.Append(err, fmt.Errorf("invalid port in zmq_tcp_address %q for topic %q", mc.Address, mc.Topic))
			continue
		}
		if !isPortAvailable(port) {
			err = multierr.Append(err, fmt.Errorf("port %d is not available for address %q (topic %q)", port, mc.Address, mc.Topic))
		}
	}
	return err
}

func isPortAvailable(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}
