// Package source contains the adapters that pull raw candidate records out
// of external services. Adapters own their transport, pacing and retries;
// whatever fails inside an adapter is logged and skipped, never surfaced to
// the accumulator.
package source

import (
	"context"

	"salonscout/internal/model"
)

// Adapter yields raw candidate records for one keyword under one search
// anchor. Implementations must return partial results on transient
// failures rather than an error for the whole batch.
type Adapter interface {
	// Name returns the adapter name used in config and logs.
	Name() string

	// Origin identifies the record origin this adapter produces.
	Origin() model.Origin

	// Harvest runs one keyword+anchor query and returns raw candidates.
	Harvest(ctx context.Context, keyword, anchor string) ([]model.RawRecord, error)
}

// Registry manages the available adapters in a fixed order.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an adapter. Registration order is harvest order.
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// All returns every registered adapter.
func (r *Registry) All() []Adapter {
	return r.adapters
}

// Select returns the adapters whose names appear in wanted, keeping
// registration order. An empty wanted list selects everything.
func (r *Registry) Select(wanted []string) []Adapter {
	if len(wanted) == 0 {
		return r.adapters
	}
	set := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		set[name] = true
	}
	var out []Adapter
	for _, adapter := range r.adapters {
		if set[adapter.Name()] {
			out = append(out, adapter)
		}
	}
	return out
}
