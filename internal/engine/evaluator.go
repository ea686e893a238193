// Package engine runs the bounded fixpoint evaluation over an evidence graph.
//
// Every node is recomputed from its own evidence restricted to the frames the
// active anchors switch on. Nodes do not read each other, so the loop settles
// after one productive pass; the iteration bound stays in place so that
// evidence referring to other propositions can be added later without
// changing the loop.
package engine

import (
	"github.com/ppiankov/paradox/internal/graph"
	"github.com/ppiankov/paradox/internal/lattice"
	"go.uber.org/zap"
)

// FrameSource resolves active anchor ids to frames and frame weights.
// *anchor.Catalog satisfies it.
type FrameSource interface {
	ActiveFrames(activeIDs []string) map[string]struct{}
	WeightsFor(activeIDs []string) map[string]float64
}

// Observer receives per-iteration progress
type Observer interface {
	ObserveIteration(iteration, changed int)
}

// Config bounds a fixpoint run
type Config struct {
	MaxIters        int
	ChangeTolerance int
	Epsilon         float64
	Verbose         bool
}

// DefaultConfig returns the standard bounds
func DefaultConfig() Config {
	return Config{
		MaxIters:        12,
		ChangeTolerance: 0,
		Epsilon:         lattice.DefaultEpsilon,
	}
}

// IterationStats records one pass
type IterationStats struct {
	Iteration int
	Changed   int
}

// Result summarizes a run
type Result struct {
	Iterations int
	Changes    int // total across iterations
	Trace      []IterationStats
}

// Evaluator recomputes node values of one graph
type Evaluator struct {
	graph    *graph.Graph
	frames   FrameSource
	logger   *zap.Logger
	observer Observer
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger used for verbose iteration traces
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver sets an iteration observer
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		e.observer = o
	}
}

// NewEvaluator creates an evaluator over g
func NewEvaluator(g *graph.Graph, frames FrameSource, opts ...Option) *Evaluator {
	e := &Evaluator{
		graph:  g,
		frames: frames,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run iterates until an iteration changes no more than cfg.ChangeTolerance
// nodes or cfg.MaxIters passes have run. Only node values are written.
func (e *Evaluator) Run(activeIDs []string, cfg Config) Result {
	frames := e.frames.ActiveFrames(activeIDs)
	weights := e.frames.WeightsFor(activeIDs)

	var res Result
	for i := 1; i <= cfg.MaxIters; i++ {
		changed := e.step(frames, weights, cfg.Epsilon)
		res.Iterations = i
		res.Changes += changed
		res.Trace = append(res.Trace, IterationStats{Iteration: i, Changed: changed})

		if cfg.Verbose {
			e.logger.Info("[Φ] iter", zap.Int("iter", i), zap.Int("changed", changed))
		}
		if e.observer != nil {
			e.observer.ObserveIteration(i, changed)
		}

		if changed <= cfg.ChangeTolerance {
			break
		}
	}
	return res
}

// step computes every new value first, then applies them
func (e *Evaluator) step(frames map[string]struct{}, weights map[string]float64, eps float64) int {
	nodes := e.graph.Nodes()
	next := make([]lattice.Value, len(nodes))
	for i, n := range nodes {
		next[i] = infer(n, frames, weights, eps)
	}

	changed := 0
	for i, n := range nodes {
		if n.Value != next[i] {
			n.Value = next[i]
			changed++
		}
	}
	return changed
}

func infer(n *graph.Node, frames map[string]struct{}, weights map[string]float64, eps float64) lattice.Value {
	var support, counter float64
	n.EachEvidence(func(ev graph.Evidence) {
		if _, on := frames[ev.Frame]; !on {
			return
		}
		mul, ok := weights[ev.Frame]
		if !ok {
			mul = 1.0
		}
		w := ev.Weight * mul
		if ev.Polarity == graph.Counter {
			counter += w
		} else {
			support += w
		}
	})
	return lattice.FromEvidence(support, counter, eps)
}
