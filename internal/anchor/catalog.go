// Package anchor holds the catalog of interpretive anchors. A catalog is
// loaded once and shared read-only; only the usage counters change after
// load.
package anchor

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/ppiankov/paradox/internal/model"
)

// ErrAnchorNotFound is returned when an id is not in the catalog
var ErrAnchorNotFound = errors.New("anchor not found")

// Catalog maps anchor ids to anchors
type Catalog struct {
	anchors map[string]entry
}

type entry struct {
	anchor model.Anchor
	uses   *atomic.Int64
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{anchors: make(map[string]entry)}
}

// Add inserts an anchor, replacing any anchor with the same id.
// Add is meant for load time and is not safe to call concurrently with reads.
func (c *Catalog) Add(a model.Anchor) {
	c.anchors[a.ID] = entry{anchor: a, uses: new(atomic.Int64)}
}

// Get returns the anchor with the given id
func (c *Catalog) Get(id string) (model.Anchor, error) {
	e, ok := c.anchors[id]
	if !ok {
		return model.Anchor{}, fmt.Errorf("%w: %q", ErrAnchorNotFound, id)
	}
	return e.anchor, nil
}

// Has reports whether id is present
func (c *Catalog) Has(id string) bool {
	_, ok := c.anchors[id]
	return ok
}

// Len returns the number of anchors
func (c *Catalog) Len() int {
	return len(c.anchors)
}

// IDs returns every anchor id in lexical order
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.anchors))
	for id := range c.anchors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Anchors returns every anchor in lexical id order
func (c *Catalog) Anchors() []model.Anchor {
	ids := c.IDs()
	out := make([]model.Anchor, len(ids))
	for i, id := range ids {
		out[i] = c.anchors[id].anchor
	}
	return out
}

// ActiveFrames returns the union of frames switched on by the given anchors.
// Unknown ids are skipped: ranked lists may carry stale or external ids.
func (c *Catalog) ActiveFrames(activeIDs []string) map[string]struct{} {
	frames := make(map[string]struct{})
	for _, id := range activeIDs {
		e, ok := c.anchors[id]
		if !ok {
			continue
		}
		for _, f := range e.anchor.FramesOn {
			frames[f] = struct{}{}
		}
	}
	return frames
}

// WeightsFor returns the weight ceiling per frame for the given anchors.
// Only frames with an explicit multiplier appear; the ceiling starts at 1.0
// so a multiplier below 1.0 never lowers a frame. Unknown ids are skipped.
func (c *Catalog) WeightsFor(activeIDs []string) map[string]float64 {
	weights := make(map[string]float64)
	for _, id := range activeIDs {
		e, ok := c.anchors[id]
		if !ok {
			continue
		}
		for frame, mul := range e.anchor.FrameWeights {
			cur, seen := weights[frame]
			if !seen {
				cur = 1.0
			}
			weights[frame] = max(cur, mul)
		}
	}
	return weights
}

// IncrementUse bumps the usage statistic of an anchor. Unknown ids are ignored.
func (c *Catalog) IncrementUse(id string) {
	if e, ok := c.anchors[id]; ok {
		e.uses.Add(1)
	}
}

// UseCount returns the usage statistic of an anchor
func (c *Catalog) UseCount(id string) int64 {
	if e, ok := c.anchors[id]; ok {
		return e.uses.Load()
	}
	return 0
}
