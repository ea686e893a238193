package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/paradox/internal/anchor"
	"github.com/ppiankov/paradox/internal/bridge"
	"github.com/ppiankov/paradox/internal/cache"
	"github.com/ppiankov/paradox/internal/engine"
	"github.com/ppiankov/paradox/internal/lattice"
	"github.com/ppiankov/paradox/internal/metrics"
	"github.com/ppiankov/paradox/internal/model"
	"github.com/ppiankov/paradox/internal/policy"
	"github.com/ppiankov/paradox/internal/score"
	"go.uber.org/zap"
)

// ErrEmptyRequest is returned for a request with neither text nor propositions
var ErrEmptyRequest = errors.New("request has no text and no propositions")

// ErrInvalidK is returned for a negative anchor count
var ErrInvalidK = errors.New("k must not be negative")

// Pipeline orchestrates one resolution: rank, select, guard, stabilize, report
type Pipeline struct {
	catalog    *anchor.Catalog
	selector   *bridge.Selector
	guardrails *policy.Guardrails // nil when disabled
	metrics    *metrics.Collector
	renderer   *Renderer
	logger     *zap.Logger
	config     *model.Config
	now        func() time.Time
}

// NewPipeline creates a new pipeline over catalog with the given configuration.
// collector and logger may be nil. Pinned guardrail anchors must exist in
// the catalog.
func NewPipeline(cfg *model.Config, catalog *anchor.Catalog, collector *metrics.Collector, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fixpoint := engine.Config{
		MaxIters:        cfg.Fixpoint.MaxIters,
		ChangeTolerance: cfg.Fixpoint.ChangeTolerance,
		Epsilon:         cfg.Fixpoint.Epsilon,
	}

	opts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithFixpoint(fixpoint),
		bridge.WithScorer(score.NewScorer(cache.NewPatternCache(0))),
	}
	if collector != nil {
		opts = append(opts, bridge.WithObserver(collector))
	}

	var guard *policy.Guardrails
	if cfg.Guardrails.Enabled {
		g := policy.FromConfig(cfg.Guardrails)
		for _, id := range g.PinIfMissing {
			if !catalog.Has(id) {
				return nil, fmt.Errorf("guardrails pin: %w: %q", anchor.ErrAnchorNotFound, id)
			}
		}
		guard = &g
	}

	return &Pipeline{
		catalog:    catalog,
		selector:   bridge.NewSelector(catalog, opts...),
		guardrails: guard,
		metrics:    collector,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		logger:     logger,
		config:     cfg,
		now:        time.Now,
	}, nil
}

// Renderer returns the pipeline's report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Resolve runs one request to completion. The context is checked before the
// work starts; the evaluation itself is synchronous and bounded.
func (p *Pipeline) Resolve(ctx context.Context, req model.Request) (*model.Report, error) {
	report, err := p.resolve(ctx, req)
	if p.metrics != nil {
		p.metrics.ObserveResult(err)
	}
	return report, err
}

func (p *Pipeline) resolve(ctx context.Context, req model.Request) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Text == "" && len(req.Propositions) == 0 {
		return nil, ErrEmptyRequest
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	k := p.config.Selection.K
	if req.K != nil {
		k = *req.K
	}
	if k < 0 {
		return nil, fmt.Errorf("request %s: %w: k=%d", req.ID, ErrInvalidK, k)
	}
	verbose := p.config.Output.Verbose

	sel, err := p.selector.SelectAndStabilize(req.Text, req.Propositions, req.Preferred, k, verbose)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID, err)
	}

	enforced := false
	if p.guardrails != nil {
		guarded := p.guardrails.Enforce(sel.AnchorsUsed)
		if !slices.Equal(guarded, sel.AnchorsUsed) {
			ranking := sel.Ranking
			sel, err = p.selector.Stabilize(guarded, req.Propositions, verbose)
			if err != nil {
				return nil, fmt.Errorf("request %s: %w", req.ID, err)
			}
			sel.Ranking = ranking
			enforced = true
		}
	}

	block, err := bridge.WeaveAnchorBlock(sel.AnchorsUsed, p.catalog, p.config.Selection.MaxBlockItems)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID, err)
	}

	for _, id := range sel.AnchorsUsed {
		p.catalog.IncrementUse(id)
	}

	report := &model.Report{
		RequestID:   req.ID,
		Source:      req.Source,
		Text:        req.Text,
		ResolvedAt:  p.now().UTC(),
		AnchorsUsed: sel.AnchorsUsed,
		Ranking:     sel.Ranking,
		Enforced:    enforced,
		Truths:      truths(req.Propositions, sel.Values),
		AnchorBlock: block,
		Fixpoint: model.Fixpoint{
			Iterations: sel.Iterations,
			Changes:    sel.Changes,
		},
	}

	if p.metrics != nil {
		p.metrics.ObserveSelection(report.AnchorsUsed)
		for _, t := range report.Truths {
			p.metrics.ObserveTruth(t.Value)
		}
	}

	p.logger.Debug("resolved request",
		zap.String("request_id", report.RequestID),
		zap.Strings("anchors", report.AnchorsUsed),
		zap.Int("propositions", len(report.Truths)),
		zap.Bool("enforced", enforced),
	)

	return report, nil
}

// truths pairs values with proposition text, sorted by id. When a
// proposition id repeats, the last text wins, matching the graph.
func truths(props []model.Proposition, values map[string]lattice.Value) []model.Truth {
	text := make(map[string]string, len(props))
	for _, pr := range props {
		text[pr.ID] = pr.Text
	}

	out := make([]model.Truth, 0, len(values))
	for id, v := range values {
		out = append(out, model.Truth{
			PropositionID: id,
			Text:          text[id],
			Value:         v,
			Label:         bridge.QuickTruth(v),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PropositionID < out[j].PropositionID
	})
	return out
}
