package score

import (
	"sort"

	"github.com/ppiankov/paradox/internal/cache"
	"github.com/ppiankov/paradox/internal/model"
)

const (
	// TriggerHitWeight is added per hard-trigger phrase found in the text
	TriggerHitWeight = 0.2

	// PreferredBoost is added once when the caller prefers the anchor
	PreferredBoost = 0.4
)

// AnchorSource lists the anchors available for ranking.
// *anchor.Catalog satisfies it.
type AnchorSource interface {
	Anchors() []model.Anchor
}

// Scorer ranks anchors against user text
type Scorer struct {
	patterns *cache.PatternCache
}

// NewScorer creates a new scorer. A nil pattern cache gets a private one.
func NewScorer(patterns *cache.PatternCache) *Scorer {
	if patterns == nil {
		patterns = cache.NewPatternCache(0)
	}
	return &Scorer{patterns: patterns}
}

// Rank scores every anchor and returns them best first.
// score = priority + 0.2*hits + 0.4 if preferred; equal scores are ordered
// by anchor id so that rankings are reproducible.
func (s *Scorer) Rank(text string, anchors AnchorSource, preferred []string) []model.AnchorScore {
	prefer := make(map[string]struct{}, len(preferred))
	for _, id := range preferred {
		prefer[id] = struct{}{}
	}

	list := anchors.Anchors()
	scores := make([]model.AnchorScore, 0, len(list))
	for _, a := range list {
		hits := s.TriggerHits(text, a.HardTriggers)
		sc := model.AnchorScore{
			AnchorID: a.ID,
			Priority: a.Priority,
			Hits:     hits,
			Score:    a.Priority + TriggerHitWeight*float64(hits),
		}
		if _, ok := prefer[a.ID]; ok {
			sc.Boost = PreferredBoost
			sc.Score += PreferredBoost
		}
		scores = append(scores, sc)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].AnchorID < scores[j].AnchorID
	})
	return scores
}

// TriggerHits counts the phrases that occur in text as whole words,
// ignoring case. Each phrase counts at most once; phrases that fail to
// compile never match.
func (s *Scorer) TriggerHits(text string, phrases []string) int {
	hits := 0
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		m, err := s.patterns.Phrase(phrase)
		if err != nil {
			continue
		}
		if m.Match(text) {
			hits++
		}
	}
	return hits
}

// TopK returns the ids of the first k scores. k <= 0 selects nothing.
func TopK(scores []model.AnchorScore, k int) []string {
	if k < 0 {
		k = 0
	}
	if k > len(scores) {
		k = len(scores)
	}
	ids := make([]string, k)
	for i := 0; i < k; i++ {
		ids[i] = scores[i].AnchorID
	}
	return ids
}
