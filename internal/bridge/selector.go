// Package bridge turns raw user text and caller propositions into an anchor
// selection and a truth assignment, and renders the anchor summary block
// for outbound prompts.
package bridge

import (
	"fmt"

	"github.com/ppiankov/paradox/internal/anchor"
	"github.com/ppiankov/paradox/internal/engine"
	"github.com/ppiankov/paradox/internal/graph"
	"github.com/ppiankov/paradox/internal/lattice"
	"github.com/ppiankov/paradox/internal/model"
	"github.com/ppiankov/paradox/internal/score"
	"go.uber.org/zap"
)

// Selection is the outcome of one select-and-stabilize run
type Selection struct {
	AnchorsUsed []string
	Values      map[string]lattice.Value
	Ranking     []model.AnchorScore
	Iterations  int
	Changes     int
}

// Selector ranks anchors from one catalog and drives the evaluator
type Selector struct {
	catalog  *anchor.Catalog
	scorer   *score.Scorer
	logger   *zap.Logger
	observer engine.Observer
	fixpoint engine.Config
}

// Option configures a Selector
type Option func(*Selector)

// WithLogger sets the logger handed to the evaluator
func WithLogger(logger *zap.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver forwards evaluator iterations to o
func WithObserver(o engine.Observer) Option {
	return func(s *Selector) {
		s.observer = o
	}
}

// WithScorer replaces the default scorer
func WithScorer(sc *score.Scorer) Option {
	return func(s *Selector) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithFixpoint overrides the evaluator bounds. Verbose is still taken from
// the per-call flag.
func WithFixpoint(cfg engine.Config) Option {
	return func(s *Selector) {
		s.fixpoint = cfg
	}
}

// NewSelector creates a selector over catalog
func NewSelector(catalog *anchor.Catalog, opts ...Option) *Selector {
	s := &Selector{
		catalog:  catalog,
		scorer:   score.NewScorer(nil),
		logger:   zap.NewNop(),
		fixpoint: engine.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the selector ranks
func (s *Selector) Catalog() *anchor.Catalog {
	return s.catalog
}

// Rank scores every catalog anchor against text, best first
func (s *Selector) Rank(text string, preferred []string) []model.AnchorScore {
	return s.scorer.Rank(text, s.catalog, preferred)
}

// SelectAndStabilize ranks the catalog against text, activates the top k
// anchors and resolves props under them. Guardrails are not applied here.
func (s *Selector) SelectAndStabilize(text string, props []model.Proposition, preferred []string, k int, verbose bool) (*Selection, error) {
	ranking := s.Rank(text, preferred)
	active := score.TopK(ranking, k)

	sel, err := s.Stabilize(active, props, verbose)
	if err != nil {
		return nil, err
	}
	sel.Ranking = ranking
	return sel, nil
}

// Stabilize resolves props under an explicit active anchor set
func (s *Selector) Stabilize(activeIDs []string, props []model.Proposition, verbose bool) (*Selection, error) {
	g, err := BuildGraph(props)
	if err != nil {
		return nil, err
	}

	cfg := s.fixpoint
	cfg.Verbose = verbose

	opts := []engine.Option{engine.WithLogger(s.logger)}
	if s.observer != nil {
		opts = append(opts, engine.WithObserver(s.observer))
	}
	res := engine.NewEvaluator(g, s.catalog, opts...).Run(activeIDs, cfg)

	return &Selection{
		AnchorsUsed: append([]string(nil), activeIDs...),
		Values:      g.Values(),
		Iterations:  res.Iterations,
		Changes:     res.Changes,
	}, nil
}

// BuildGraph creates a fresh evidence graph from caller propositions.
// Each evidence triple becomes one item; a negative sign counts against.
func BuildGraph(props []model.Proposition) (*graph.Graph, error) {
	g := graph.New()
	for _, p := range props {
		g.AddNode(graph.NewNode(p.ID, p.Text))
		for i, ev := range p.Evidence {
			item := graph.Evidence{
				Frame:    ev.Frame,
				Weight:   ev.Weight,
				Polarity: graph.PolarityFromSign(ev.Sign),
				Source:   ev.Source,
			}
			if err := g.AddEvidence(p.ID, item); err != nil {
				return nil, fmt.Errorf("proposition %q evidence %d: %w", p.ID, i, err)
			}
		}
	}
	return g, nil
}
