package score

import (
	"math"
	"testing"

	"github.com/ppiankov/paradox/internal/model"
)

type staticAnchors []model.Anchor

func (s staticAnchors) Anchors() []model.Anchor { return s }

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScorer_Rank_TriggerHits(t *testing.T) {
	scorer := NewScorer(nil)

	anchors := staticAnchors{
		{ID: "A1", Priority: 0.5, HardTriggers: []string{"macie"}},
		{ID: "A2", Priority: 0.5, HardTriggers: []string{"legal"}},
		{ID: "A3", Priority: 0.6, HardTriggers: []string{"court"}},
	}

	result := scorer.Rank("Macie and legal stuff", anchors, nil)

	if len(result) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(result))
	}

	// A1 and A2 tie at 0.7, A1 wins on id; A3 stays at 0.6
	want := []string{"A1", "A2", "A3"}
	for i, id := range want {
		if result[i].AnchorID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, result[i].AnchorID)
		}
	}
	if !approx(result[0].Score, 0.7) || result[0].Hits != 1 {
		t.Errorf("unexpected A1 score %+v", result[0])
	}
	if result[2].Hits != 0 || !approx(result[2].Score, 0.6) {
		t.Errorf("unexpected A3 score %+v", result[2])
	}
}

func TestScorer_Rank_WordBoundary(t *testing.T) {
	scorer := NewScorer(nil)
	anchors := staticAnchors{
		{ID: "A1", Priority: 0.5, HardTriggers: []string{"legal"}},
	}

	result := scorer.Rank("this is illegal and paralegal", anchors, nil)
	if result[0].Hits != 0 {
		t.Errorf("expected no hits for substring matches, got %d", result[0].Hits)
	}
}

func TestScorer_TriggerHits_Unicode(t *testing.T) {
	scorer := NewScorer(nil)

	tests := []struct {
		text    string
		phrases []string
		want    int
	}{
		{"Über alles", []string{"über"}, 1},
		{"about Éire today", []string{"éire"}, 1},
		{"это Реквием", []string{"реквием"}, 1},
		{"the café crowd", []string{"café"}, 1},
		{"the café crowd", []string{"caf"}, 0},
		{"Реквием и Мэйси", []string{"реквием", "мэйси", "реквиe"}, 2},
		{"naïveté", []string{"naïve"}, 0},
	}

	for _, tt := range tests {
		if got := scorer.TriggerHits(tt.text, tt.phrases); got != tt.want {
			t.Errorf("%v on %q: expected %d hits, got %d", tt.phrases, tt.text, tt.want, got)
		}
	}
}

func TestScorer_Rank_NonASCIISubstring(t *testing.T) {
	scorer := NewScorer(nil)
	anchors := staticAnchors{
		{ID: "A1", Priority: 0.5, HardTriggers: []string{"caf"}},
		{ID: "A2", Priority: 0.4, HardTriggers: []string{"café"}},
	}

	result := scorer.Rank("the café crowd", anchors, nil)
	if result[0].AnchorID != "A2" || result[0].Hits != 1 {
		t.Errorf("expected A2 on top with 1 hit, got %+v", result[0])
	}
	if result[1].Hits != 0 {
		t.Errorf("expected no hit inside a non-ASCII word, got %+v", result[1])
	}
}

func TestScorer_Rank_MultiplePhrases(t *testing.T) {
	scorer := NewScorer(nil)
	anchors := staticAnchors{
		{ID: "A1", Priority: 0.1, HardTriggers: []string{"zero-day", "exploit", "breach", ""}},
	}

	result := scorer.Rank("A Zero-Day exploit, exploit again.", anchors, nil)
	if result[0].Hits != 2 {
		t.Errorf("expected 2 hits (each phrase once), got %d", result[0].Hits)
	}
	if !approx(result[0].Score, 0.5) {
		t.Errorf("expected score 0.5, got %v", result[0].Score)
	}
}

func TestScorer_Rank_PreferredBoost(t *testing.T) {
	scorer := NewScorer(nil)
	anchors := staticAnchors{
		{ID: "HIGH", Priority: 0.6},
		{ID: "MID", Priority: 0.5},
		{ID: "X", Priority: 0.3},
	}

	plain := scorer.Rank("", anchors, nil)
	boosted := scorer.Rank("", anchors, []string{"X"})

	var plainX, boostedX model.AnchorScore
	for _, s := range plain {
		if s.AnchorID == "X" {
			plainX = s
		}
	}
	for _, s := range boosted {
		if s.AnchorID == "X" {
			boostedX = s
		}
	}

	if !approx(boostedX.Score-plainX.Score, PreferredBoost) {
		t.Errorf("expected boost of exactly %v, got %v", PreferredBoost, boostedX.Score-plainX.Score)
	}
	if boostedX.Boost != PreferredBoost || plainX.Boost != 0 {
		t.Errorf("unexpected boost fields: %+v / %+v", plainX, boostedX)
	}

	// top-1 membership changes
	if got := TopK(plain, 1); got[0] != "HIGH" {
		t.Errorf("expected HIGH on top without boost, got %v", got)
	}
	if got := TopK(boosted, 1); got[0] != "X" {
		t.Errorf("expected X on top with boost, got %v", got)
	}
}

func TestScorer_Rank_PreferredUnknownIgnored(t *testing.T) {
	scorer := NewScorer(nil)
	anchors := staticAnchors{{ID: "A1", Priority: 0.5}}

	result := scorer.Rank("", anchors, []string{"ghost"})
	if len(result) != 1 || result[0].Boost != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestScorer_Rank_Empty(t *testing.T) {
	scorer := NewScorer(nil)
	result := scorer.Rank("anything", staticAnchors{}, nil)
	if len(result) != 0 {
		t.Errorf("expected no scores, got %d", len(result))
	}
}

func TestTopK(t *testing.T) {
	scores := []model.AnchorScore{{AnchorID: "a"}, {AnchorID: "b"}, {AnchorID: "c"}}

	tests := []struct {
		k    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{2, 2},
		{3, 3},
		{10, 3},
	}
	for _, tt := range tests {
		if got := TopK(scores, tt.k); len(got) != tt.want {
			t.Errorf("k=%d: expected %d ids, got %d", tt.k, tt.want, len(got))
		}
	}
}
