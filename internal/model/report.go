package model

import (
	"time"

	"github.com/ppiankov/paradox/internal/lattice"
)

// Report is the complete outcome of resolving one request
type Report struct {
	RequestID   string        `json:"request_id"`
	Source      string        `json:"source,omitempty"`
	Text        string        `json:"text"`
	ResolvedAt  time.Time     `json:"resolved_at"`
	AnchorsUsed []string      `json:"anchors_used"`
	Ranking     []AnchorScore `json:"ranking"`     // every catalog anchor, best first
	Enforced    bool          `json:"enforced"`    // guardrails reshaped the active set
	Truths      []Truth       `json:"truths"`      // sorted by proposition id
	AnchorBlock string        `json:"anchor_block"`
	Fixpoint    Fixpoint      `json:"fixpoint"`
}

// Truth is the resolved value of one proposition
type Truth struct {
	PropositionID string        `json:"proposition_id"`
	Text          string        `json:"text,omitempty"`
	Value         lattice.Value `json:"value"`
	Label         string        `json:"label"`
}

// Fixpoint carries evaluator diagnostics
type Fixpoint struct {
	Iterations int `json:"iterations"`
	Changes    int `json:"changes"`
}

// Labels returns the proposition-id to label mapping handed back to callers
func (r *Report) Labels() map[string]string {
	out := make(map[string]string, len(r.Truths))
	for _, t := range r.Truths {
		out[t.PropositionID] = t.Label
	}
	return out
}
