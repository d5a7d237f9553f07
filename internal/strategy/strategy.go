// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package strategy provides the tagged registry of worker capabilities
// described in spec.md Design Notes §9: the fabric only ever calls a single
// opaque process(task_type, payload) -> payload capability, and concrete
// strategies (embedding, reranking) are variants supplied by name at config
// time.
package strategy

import "fmt"

// Strategy is the capability a worker loads at startup and invokes once per
// task. Concrete implementations (bge_m3, flag_reranker) live in sibling
// packages.
type Strategy interface {
	// Process handles one task and returns the serialized reply payload, or
	// an error if the task could not be computed. The worker is responsible
	// for turning an error into the INTERNAL-ERROR: sentinel (spec.md §4.4).
	Process(taskType string, payload []byte) ([]byte, error)
}

// Constructor builds a Strategy from its configured options map.
type Constructor func(options map[string]any) (Strategy, error)

// Registry maps strategy_name to a Constructor, mirroring the teacher's
// registry.Registry but generalized from compute-pattern methods to a
// single Process call (spec.md Design Notes §9).
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty Registry; callers register strategies with
// Register.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, ctor Constructor) {
	r.constructors[name] = ctor
}

// Build constructs the named strategy with the given options. It returns an
// error naming the unknown strategy if name was never registered, matching
// the "unknown strategy name" configuration error in spec.md §7.
func (r *Registry) Build(name string, options map[string]any) (Strategy, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%q is not a registered strategy", name)
	}
	return ctor(options)
}

// Names returns every registered strategy name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	return names
}
