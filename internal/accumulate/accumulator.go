// Package accumulate orchestrates normalize -> dedup -> admit and enforces
// the target cap. It is the only component allowed to mutate the record
// set; source adapters merely offer raw candidates.
package accumulate

import (
	"log/slog"
	"sync"

	"salonscout/internal/dedupe"
	"salonscout/internal/model"
	"salonscout/internal/normalize"
)

// Result classifies the outcome of a single Offer call. Every outcome is
// routine: none of these are errors.
type Result int

const (
	Admitted Result = iota
	RejectedInvalid
	RejectedDuplicate
	RejectedCapReached
)

func (r Result) String() string {
	switch r {
	case Admitted:
		return "admitted"
	case RejectedInvalid:
		return "rejected_invalid"
	case RejectedDuplicate:
		return "rejected_duplicate"
	case RejectedCapReached:
		return "rejected_cap_reached"
	default:
		return "unknown"
	}
}

// Progress is a point-in-time snapshot of accumulation state.
type Progress struct {
	Count     int
	TargetCap int
	Fraction  float64
}

// Options configures an Accumulator.
type Options struct {
	TargetCap    int
	DedupePolicy model.DedupePolicy
	DedupeScope  model.DedupeScope
	RegionFilter model.RegionFilter
	Region       normalize.Region
	Logger       *slog.Logger
}

// Accumulator holds the bounded, deduplicated record set. All mutation
// goes through Offer, which is atomic with respect to the cap check so
// concurrent adapters cannot overshoot the target.
type Accumulator struct {
	mu sync.Mutex

	targetCap    int
	regionFilter model.RegionFilter
	region       normalize.Region
	index        *dedupe.Index
	logger       *slog.Logger

	records  []model.Record
	byOrigin map[model.Origin]int
	byAnchor map[string]int
	capped   bool
}

// New creates an Accumulator. A TargetCap below 1 is coerced to 1.
func New(opts Options) *Accumulator {
	if opts.TargetCap < 1 {
		opts.TargetCap = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Accumulator{
		targetCap:    opts.TargetCap,
		regionFilter: opts.RegionFilter,
		region:       opts.Region,
		index:        dedupe.NewIndex(opts.DedupePolicy, opts.DedupeScope),
		logger:       logger,
		byOrigin:     make(map[model.Origin]int),
		byAnchor:     make(map[string]int),
	}
}

// Offer validates, normalizes and deduplicates a raw candidate and either
// admits it or reports why not. Once the cap is reached every further call
// is a state-free no-op returning RejectedCapReached.
func (a *Accumulator) Offer(raw model.RawRecord, anchor string, origin model.Origin) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capped {
		return RejectedCapReached
	}

	name, ok := normalize.Name(raw[model.KeyName])
	if !ok {
		a.logger.Debug("rejected invalid candidate",
			"raw_name", raw[model.KeyName], "anchor", anchor, "origin", origin)
		return RejectedInvalid
	}

	address, inRegion := normalize.Address(raw[model.KeyAddress], a.region)
	if a.regionFilter == model.RegionFilterRequire && !inRegion {
		a.logger.Debug("rejected candidate outside target region",
			"name", name.Display, "address", address, "anchor", anchor)
		return RejectedInvalid
	}

	candidate := dedupe.Candidate{
		FoldedName: name.Folded,
		SourceURL:  raw[model.KeyURL],
		Anchor:     anchor,
	}
	if !a.index.IsNew(candidate) {
		a.logger.Debug("rejected duplicate", "name", name.Display, "anchor", anchor)
		return RejectedDuplicate
	}

	phone, _ := normalize.Phone(raw[model.KeyPhone])

	a.index.Admit(candidate)
	a.records = append(a.records, model.Record{
		Name:    name.Display,
		Address: address,
		Phone:   phone,
		// The unknown sentinel covers contact facts only; a record
		// with no source URL keeps it empty.
		SourceURL:      raw[model.KeyURL],
		SourceLocation: anchor,
		Origin:         origin,
	})
	a.byOrigin[origin]++
	a.byAnchor[anchor]++

	a.logger.Info("admitted record",
		"name", name.Display, "anchor", anchor, "origin", origin,
		"count", len(a.records), "cap", a.targetCap)

	if len(a.records) >= a.targetCap {
		// One-way Collecting -> Capped transition.
		a.capped = true
		a.logger.Info("target cap reached", "cap", a.targetCap)
	}
	return Admitted
}

// Seed pre-loads the dedup index with previously harvested records so a
// repeat run skips known shops. Seeded records do not count toward this
// run's cap and are not exported.
func (a *Accumulator) Seed(records []model.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, rec := range records {
		name, ok := normalize.Name(rec.Name)
		if !ok {
			continue
		}
		a.index.Admit(dedupe.Candidate{
			FoldedName: name.Folded,
			SourceURL:  rec.SourceURL,
			Anchor:     rec.SourceLocation,
		})
	}
}

// Capped reports whether the one-way transition to the capped state has
// happened.
func (a *Accumulator) Capped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capped
}

// Progress reports the current count against the target cap.
func (a *Accumulator) Progress() Progress {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Progress{
		Count:     len(a.records),
		TargetCap: a.targetCap,
		Fraction:  float64(len(a.records)) / float64(a.targetCap),
	}
}

// BreakdownByOrigin returns admitted counts per source origin.
func (a *Accumulator) BreakdownByOrigin() map[model.Origin]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[model.Origin]int, len(a.byOrigin))
	for origin, n := range a.byOrigin {
		out[origin] = n
	}
	return out
}

// BreakdownByAnchor returns admitted counts per search anchor.
func (a *Accumulator) BreakdownByAnchor() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int, len(a.byAnchor))
	for anchor, n := range a.byAnchor {
		out[anchor] = n
	}
	return out
}

// Records returns the admitted records in admission order. The returned
// slice is a copy; admitted records themselves are immutable.
func (a *Accumulator) Records() []model.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Record, len(a.records))
	copy(out, a.records)
	return out
}
