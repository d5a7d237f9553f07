// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package clog provides conditional leveled logging for fabric components,
// backed by zap.
package clog

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	enabled  = false
	base     *zap.Logger
	baseOnce sync.Once
)

// Enable turns on conditional Printf output. Errorf output is unconditional.
func Enable() {
	enabled = true
}

func baseLogger() *zap.Logger {
	baseOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		base = l
	})
	return base
}

// A CLogger logs in the manner of the standard logger but can be
// conditionally enabled, backed by a zap SugaredLogger. By default,
// conditional logging is disabled.
type CLogger struct {
	sugar *zap.SugaredLogger
}

// New creates a new conditional logger with the given prefix, applied to
// every message logged through it.
func New(prefixFormat string, prefixArgs ...any) *CLogger {
	prefix := fmt.Sprintf(prefixFormat, prefixArgs...)
	return &CLogger{
		sugar: baseLogger().Sugar().With("component", prefix),
	}
}

// Printf logs output conditionally (if Enable has been called) in the
// manner of log.Printf.
func (c *CLogger) Printf(format string, a ...any) {
	if !enabled {
		return
	}
	c.sugar.Infof(format, a...)
}

// Errorf logs output unconditionally in the manner of log.Printf.
func (c *CLogger) Errorf(format string, a ...any) {
	c.sugar.Errorf(format, a...)
}
