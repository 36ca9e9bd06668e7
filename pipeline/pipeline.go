// Package pipeline runs one content backport: filter, resolve, build
// compatibility deltas, synthesize trader assort, and merge into the host.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/contentbackport/cache"
	"github.com/kasuganosora/contentbackport/catalog"
	"github.com/kasuganosora/contentbackport/game/category"
	"github.com/kasuganosora/contentbackport/game/compat"
	"github.com/kasuganosora/contentbackport/game/item"
	"github.com/kasuganosora/contentbackport/game/merge"
	"github.com/kasuganosora/contentbackport/game/trade"
	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/mongoid"
	"github.com/kasuganosora/contentbackport/resource"
	"go.uber.org/zap"
)

const (
	// LockKey guards the host catalog against concurrent runs.
	LockKey = "lock:catalog_merge"
	// LastRunKey holds the JSON Summary of the latest finished run.
	LastRunKey = "backport:last_run"

	DefaultLockTTL = 5 * time.Minute
)

// ErrRunInProgress is returned when another run holds the merge lock.
var ErrRunInProgress = errors.New("pipeline: merge already running")

type Options struct {
	Locales          []string
	CategorySets     []string // names of loaded sets; empty means all
	AssortCategories []string
	RefSellsGPCoin   bool
	GPCoinPrice      int
	DryRun           bool
	LockTTL          time.Duration
	NewID            mongoid.Generator // instance IDs; defaults to mongoid.New
}

type Deps struct {
	Cache    cache.Cache
	Recorder merge.Recorder // optional
	Logger   *zap.Logger
}

// Result is everything one run produced. Report is nil on a dry run.
type Result struct {
	RunID   string
	Details []*model.ItemDetail
	Deltas  []*model.CompatibilityDelta
	Assort  []*model.AssortEntry
	Presets []*model.Preset
	Report  *merge.Report
	Errors  []error
}

type Pipeline struct {
	ref  *resource.ReferenceDataSet
	host catalog.Catalog
	opts Options
	deps Deps
}

func New(ref *resource.ReferenceDataSet, host catalog.Catalog, opts Options, deps Deps) *Pipeline {
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Pipeline{ref: ref, host: host, opts: opts, deps: deps}
}

// Run executes the stages in order. Configuration problems abort before the
// host is touched; per-entity problems are collected in Result.Errors and the
// merge report.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter, err := p.validate()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := p.deps.Logger.With(zap.String("run_id", runID))
	ok, err := p.deps.Cache.SetNX(ctx, LockKey, runID, p.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("pipeline: acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	defer p.releaseLock(context.Background(), runID)

	started := time.Now()
	res := &Result{RunID: runID}

	candidates := filter.Apply(p.ref.Candidates())
	logger.Info("candidates in scope",
		zap.Int("count", len(candidates)),
		zap.Int("total", len(p.ref.CandidateIDs())),
		zap.Strings("categories", filter.Whitelist()))

	resolution := item.NewResolver(p.ref, p.host, p.opts.Locales, logger).Resolve(candidates)
	res.Details = resolution.Details
	res.Errors = append(res.Errors, resolution.Errors...)

	deltas, errs := compat.NewBuilder(p.ref, p.host, logger).Build(candidates, resolution)
	res.Deltas = deltas
	res.Errors = append(res.Errors, errs...)

	synth := trade.NewSynthesizer(p.ref, p.host, trade.Options{
		AssortCategories: p.opts.AssortCategories,
		NewID:            p.opts.NewID,
	}, logger)
	if p.opts.RefSellsGPCoin {
		if e, ok := synth.GPCoinOffer(p.opts.GPCoinPrice); ok {
			res.Assort = append(res.Assort, e)
		} else {
			logger.Info("ref already sells GP coins")
		}
	}
	entries, errs := synth.Synthesize(resolution.NewIDs)
	res.Assort = append(res.Assort, entries...)
	res.Errors = append(res.Errors, errs...)

	res.Presets = p.ref.Presets()

	if p.opts.DryRun {
		logger.Info("dry run, host catalog untouched")
	} else {
		if err := p.extendLock(ctx, runID); err != nil {
			return nil, err
		}
		res.Report = merge.NewApplier(p.host, p.deps.Recorder, logger).Apply(runID, merge.Input{
			Details: res.Details,
			Presets: res.Presets,
			Deltas:  res.Deltas,
			Assort:  res.Assort,
		})
	}

	summary := NewSummary(res, started, p.opts.DryRun)
	if err := p.storeSummary(ctx, summary); err != nil {
		logger.Warn("last run marker not stored", zap.Error(err))
	}
	logger.Info("backport finished",
		zap.Int("details", len(res.Details)),
		zap.Int("deltas", len(res.Deltas)),
		zap.Int("assort", len(res.Assort)),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", summary.FinishedAt.Sub(started)))
	return res, nil
}

func (p *Pipeline) validate() (*category.Filter, error) {
	if len(p.opts.Locales) == 0 {
		return nil, &model.ConfigurationError{Source: "backport.locales", Err: errors.New("no locales configured")}
	}
	for _, name := range p.opts.CategorySets {
		if _, ok := p.ref.CategorySet(name); !ok {
			return nil, &model.ConfigurationError{Source: "backport.category_sets", Err: fmt.Errorf("unknown category set %q", name)}
		}
	}
	filter := category.NewFilter(p.ref.Whitelist(p.opts.CategorySets...))
	if filter.Empty() {
		return nil, &model.ConfigurationError{Source: "backport.category_sets", Err: errors.New("category whitelist is empty")}
	}
	return filter, nil
}

func (p *Pipeline) storeSummary(ctx context.Context, s *Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.deps.Cache.Set(ctx, LastRunKey, string(data), 0)
}
