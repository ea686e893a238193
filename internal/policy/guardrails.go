// Package policy constrains which anchors may be active at once
package policy

import "github.com/ppiankov/paradox/internal/model"

// DefaultMaxActiveAnchors caps the active set when nothing else is configured
const DefaultMaxActiveAnchors = 5

// Guardrails caps the number of active anchors and force-includes pinned ones
type Guardrails struct {
	MaxActiveAnchors int
	PinIfMissing     []string

	// Positional selects the classic paradox guardrail cut: append missing
	// pins, then keep the first MaxActiveAnchors ids. A pin appended past the
	// cap is lost, e.g. [a b c] with cap 2 and pin z gives [a b]. Off by
	// default: pins keep their slot and the lowest-ranked unpinned ids are
	// dropped instead, giving [a z].
	Positional bool
}

// Default returns guardrails with the default cap and no pins
func Default() Guardrails {
	return Guardrails{MaxActiveAnchors: DefaultMaxActiveAnchors}
}

// FromConfig builds guardrails from the config section
func FromConfig(cfg model.GuardrailsConfig) Guardrails {
	return Guardrails{
		MaxActiveAnchors: cfg.MaxActiveAnchors,
		PinIfMissing:     append([]string(nil), cfg.PinIfMissing...),
		Positional:       cfg.Positional,
	}
}

// Enforce appends every pinned id not already present, in pin order, then
// cuts the list to MaxActiveAnchors keeping relative order. activeIDs is not
// modified.
func (g Guardrails) Enforce(activeIDs []string) []string {
	pinned := make(map[string]struct{}, len(g.PinIfMissing))
	for _, id := range g.PinIfMissing {
		pinned[id] = struct{}{}
	}

	combined := make([]string, 0, len(activeIDs)+len(g.PinIfMissing))
	combined = append(combined, activeIDs...)
	present := make(map[string]struct{}, len(combined))
	for _, id := range combined {
		present[id] = struct{}{}
	}
	for _, id := range g.PinIfMissing {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		combined = append(combined, id)
	}

	limit := max(g.MaxActiveAnchors, 0)
	if len(combined) <= limit {
		return combined
	}
	if g.Positional {
		return combined[:limit]
	}

	pinCount := 0
	for _, id := range combined {
		if _, ok := pinned[id]; ok {
			pinCount++
		}
	}

	out := make([]string, 0, limit)
	free := max(limit-pinCount, 0)
	for _, id := range combined {
		if len(out) == limit {
			break
		}
		if _, ok := pinned[id]; ok {
			out = append(out, id)
			continue
		}
		if free > 0 {
			out = append(out, id)
			free--
		}
	}
	return out
}
