// Package pipeline wires sources, accumulation, storage and export into
// one harvest run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"salonscout/internal/accumulate"
	"salonscout/internal/cache"
	"salonscout/internal/export"
	"salonscout/internal/model"
	"salonscout/internal/normalize"
	"salonscout/internal/source"
	"salonscout/internal/storage"
	"salonscout/internal/worker"
)

// Harvester runs the accumulate loop: every (anchor, keyword, adapter)
// combination is harvested and offered until the target cap is reached or
// the sources run dry.
type Harvester struct {
	cfg      *model.Config
	registry *source.Registry
	acc      *accumulate.Accumulator
	store    *storage.DB
	logger   *slog.Logger

	tallyMu sync.Mutex
}

// Summary describes one finished harvest run.
type Summary struct {
	Started  time.Time
	Duration time.Duration

	Count     int
	TargetCap int
	Capped    bool

	Admitted           int
	RejectedInvalid    int
	RejectedDuplicate  int
	RejectedCapReached int

	ByOrigin map[model.Origin]int
	ByAnchor map[string]int

	WithPhone   int
	WithAddress int
}

// NewHarvester builds a harvester from config. Adapters named in sources
// are registered; an empty list registers every available adapter.
func NewHarvester(cfg *model.Config, sources []string, logger *slog.Logger) (*Harvester, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var pages cache.Cache
	if cfg.Cache.Enabled {
		pages = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}
	fetcher := source.NewFetcher(*cfg, pages, logger)

	regionToken := ""
	city := ""
	if len(cfg.Harvest.RegionTokens) > 0 {
		regionToken = cfg.Harvest.RegionTokens[0]
		city = cfg.Harvest.RegionTokens[len(cfg.Harvest.RegionTokens)-1]
	}

	registry := source.NewRegistry()
	registry.Register(source.NewSearchAdapter(fetcher, regionToken, logger))
	registry.Register(source.NewDirectoryAdapter(fetcher, nil, regionToken, logger))
	registry.Register(source.NewMapsAdapter(fetcher, regionToken, true, logger))
	registry.Register(source.NewSocialAdapter(fetcher, regionToken, logger))
	if cfg.Places.Enabled {
		registry.Register(source.NewPlacesAdapter(cfg.Places, cfg.HTTP.Timeout, logger))
	}
	registry.Register(source.NewGeneratedAdapter(city, logger))

	if len(sources) > 0 {
		selected := registry.Select(sources)
		if len(selected) == 0 {
			return nil, fmt.Errorf("no matching sources in %v", sources)
		}
		registry = source.NewRegistry()
		for _, adapter := range selected {
			registry.Register(adapter)
		}
	}

	acc := accumulate.New(accumulate.Options{
		TargetCap:    cfg.Harvest.TargetCap,
		DedupePolicy: cfg.Harvest.DedupePolicy,
		DedupeScope:  cfg.Harvest.DedupeScope,
		RegionFilter: cfg.Harvest.RegionFilter,
		Region:       normalize.NewRegion(cfg.Harvest.RegionTokens, cfg.Harvest.PostalPattern),
		Logger:       logger,
	})

	h := &Harvester{
		cfg:      cfg,
		registry: registry,
		acc:      acc,
		logger:   logger,
	}

	if cfg.Storage.Enabled {
		store, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open harvest store: %w", err)
		}
		known, err := store.ListRecords()
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("load known records: %w", err)
		}
		acc.Seed(known)
		logger.Info("seeded dedup index from store",
			"path", cfg.Storage.Path, "known", len(known))
		h.store = store
	}

	return h, nil
}

// Close releases the harvest store, if any.
func (h *Harvester) Close() error {
	if h.store == nil {
		return nil
	}
	return h.store.Close()
}

// Run harvests until the cap is reached, every combination is exhausted or
// the context is canceled. The summary reflects whatever was accumulated.
func (h *Harvester) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := &Summary{Started: started, TargetCap: h.cfg.Harvest.TargetCap}

	anchorWorkers := h.cfg.Concurrency.AnchorWorkers
	if anchorWorkers > 1 {
		pool := worker.NewPool(anchorWorkers)
		jobs := make([]worker.Job, 0, len(h.cfg.Harvest.Anchors))
		for _, anchor := range h.cfg.Harvest.Anchors {
			anchor := anchor
			jobs = append(jobs, func(ctx context.Context) error {
				h.harvestAnchor(ctx, anchor, summary)
				return ctx.Err()
			})
		}
		for _, err := range pool.Run(ctx, jobs) {
			if err != nil && ctx.Err() == nil {
				h.logger.Warn("anchor job failed", "err", err)
			}
		}
	} else {
		for _, anchor := range h.cfg.Harvest.Anchors {
			if h.acc.Capped() || ctx.Err() != nil {
				break
			}
			h.harvestAnchor(ctx, anchor, summary)
		}
	}

	if h.store != nil {
		if err := h.store.SaveRecords(h.acc.Records()); err != nil {
			return nil, fmt.Errorf("persist records: %w", err)
		}
	}

	h.finishSummary(summary, started)
	return summary, ctx.Err()
}

// harvestAnchor walks every keyword and adapter for one anchor, offering
// each candidate to the accumulator.
func (h *Harvester) harvestAnchor(ctx context.Context, anchor string, summary *Summary) {
	for _, keyword := range h.cfg.Harvest.Keywords {
		for _, adapter := range h.registry.All() {
			if h.acc.Capped() || ctx.Err() != nil {
				return
			}

			raws, err := adapter.Harvest(ctx, keyword, anchor)
			if err != nil {
				h.logger.Warn("source harvest failed",
					"source", adapter.Name(), "keyword", keyword, "anchor", anchor, "err", err)
			}

			for _, raw := range raws {
				if ctx.Err() != nil {
					return
				}
				h.tally(summary, h.acc.Offer(raw, anchor, adapter.Origin()))
			}

			progress := h.acc.Progress()
			h.logger.Debug("source pass complete",
				"source", adapter.Name(), "keyword", keyword, "anchor", anchor,
				"count", progress.Count, "cap", progress.TargetCap)
		}
	}
}

func (h *Harvester) tally(summary *Summary, result accumulate.Result) {
	h.tallyMu.Lock()
	defer h.tallyMu.Unlock()

	switch result {
	case accumulate.Admitted:
		summary.Admitted++
	case accumulate.RejectedInvalid:
		summary.RejectedInvalid++
	case accumulate.RejectedDuplicate:
		summary.RejectedDuplicate++
	case accumulate.RejectedCapReached:
		summary.RejectedCapReached++
	}
}

func (h *Harvester) finishSummary(summary *Summary, started time.Time) {
	summary.Duration = time.Since(started)
	summary.Count = h.acc.Progress().Count
	summary.Capped = h.acc.Capped()
	summary.ByOrigin = h.acc.BreakdownByOrigin()
	summary.ByAnchor = h.acc.BreakdownByAnchor()

	for _, rec := range h.acc.Records() {
		if rec.Phone != model.Unknown {
			summary.WithPhone++
		}
		if rec.Address != model.Unknown {
			summary.WithAddress++
		}
	}
}

// Records returns the admitted records in admission order.
func (h *Harvester) Records() []model.Record {
	return h.acc.Records()
}

// Export writes the admitted records to the configured output paths.
func (h *Harvester) Export() error {
	records := h.acc.Records()

	if path := h.cfg.Output.XLSXPath; path != "" {
		if err := export.WriteXLSX(records, path); err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		h.logger.Info("wrote workbook", "path", path, "records", len(records))
	}
	if path := h.cfg.Output.CSVPath; path != "" {
		if err := export.WriteCSV(records, path); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		h.logger.Info("wrote csv", "path", path, "records", len(records))
	}
	return nil
}
