package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/paradox/internal/anchor"
	"github.com/ppiankov/paradox/internal/bridge"
	"github.com/ppiankov/paradox/internal/graph"
	"github.com/ppiankov/paradox/internal/lattice"
	"github.com/ppiankov/paradox/internal/metrics"
	"github.com/ppiankov/paradox/internal/model"
)

func testCatalog() *anchor.Catalog {
	c := anchor.New()
	c.Add(model.Anchor{ID: "A1", Name: "Mythic", Summary: "myth", FramesOn: []string{"mythic"}, HardTriggers: []string{"macie"}, Priority: 0.5})
	c.Add(model.Anchor{ID: "A2", Name: "Legal", Summary: "law", FramesOn: []string{"legal"}, HardTriggers: []string{"legal"}, Priority: 0.5})
	c.Add(model.Anchor{ID: "A3", Name: "Quiet", Summary: "nothing", FramesOn: []string{"quiet"}, Priority: 0.1})
	return c
}

func intPtr(v int) *int { return &v }

func testRequest() model.Request {
	return model.Request{
		ID:   "req-1",
		Text: "Macie and legal stuff",
		K:    intPtr(2),
		Propositions: []model.Proposition{
			{ID: "P2", Text: "Nothing known"},
			{ID: "P1", Text: "Requiem is Macie", Evidence: []model.EvidenceInput{
				{Frame: "mythic", Weight: 0.8, Sign: 1},
				{Frame: "legal", Weight: 0.7, Sign: -1},
			}},
		},
	}
}

func newTestPipeline(t *testing.T, cfg *model.Config, c *anchor.Catalog, m *metrics.Collector) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, c, m, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p
}

func TestPipeline_Resolve(t *testing.T) {
	c := testCatalog()
	p := newTestPipeline(t, model.DefaultConfig(), c, nil)

	report, err := p.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if report.RequestID != "req-1" {
		t.Errorf("expected request id req-1, got %s", report.RequestID)
	}
	if len(report.AnchorsUsed) != 2 {
		t.Fatalf("expected 2 anchors, got %v", report.AnchorsUsed)
	}
	if len(report.Truths) != 2 || report.Truths[0].PropositionID != "P1" {
		t.Fatalf("expected truths sorted by id, got %+v", report.Truths)
	}
	if report.Truths[0].Value != lattice.B || report.Truths[0].Label != "both/contradictory" {
		t.Errorf("unexpected P1 truth %+v", report.Truths[0])
	}
	if report.Truths[1].Value != lattice.N {
		t.Errorf("expected P2 undetermined, got %s", report.Truths[1].Value)
	}
	if !strings.HasPrefix(report.AnchorBlock, bridge.AnchorBlockHeader) {
		t.Errorf("unexpected anchor block %q", report.AnchorBlock)
	}
	if len(report.Ranking) != 3 {
		t.Errorf("expected full ranking, got %d", len(report.Ranking))
	}
	if report.Enforced {
		t.Error("guardrails are disabled by default")
	}
	if c.UseCount("A1") != 1 || c.UseCount("A3") != 0 {
		t.Errorf("unexpected usage counters A1=%d A3=%d", c.UseCount("A1"), c.UseCount("A3"))
	}

	labels := report.Labels()
	if labels["P1"] != "both/contradictory" || labels["P2"] != "undetermined" {
		t.Errorf("unexpected labels %v", labels)
	}
}

func TestPipeline_Resolve_DefaultK(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Selection.K = 1
	p := newTestPipeline(t, cfg, testCatalog(), nil)

	req := testRequest()
	req.K = nil
	report, err := p.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(report.AnchorsUsed) != 1 || report.AnchorsUsed[0] != "A1" {
		t.Errorf("expected [A1], got %v", report.AnchorsUsed)
	}
	if report.Truths[0].Value != lattice.T {
		t.Errorf("expected P1 true with legal frame inactive, got %s", report.Truths[0].Value)
	}
}

func TestPipeline_Resolve_ZeroK(t *testing.T) {
	c := testCatalog()
	p := newTestPipeline(t, model.DefaultConfig(), c, nil)

	req := testRequest()
	req.K = intPtr(0)
	report, err := p.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(report.AnchorsUsed) != 0 {
		t.Errorf("expected no active anchors, got %v", report.AnchorsUsed)
	}
	for _, tr := range report.Truths {
		if tr.Value != lattice.N {
			t.Errorf("expected %s undetermined with no frames active, got %s", tr.PropositionID, tr.Value)
		}
	}
	if c.UseCount("A1") != 0 {
		t.Errorf("no anchor should be counted as used, A1=%d", c.UseCount("A1"))
	}
}

func TestPipeline_Resolve_NegativeK(t *testing.T) {
	p := newTestPipeline(t, model.DefaultConfig(), testCatalog(), nil)

	req := testRequest()
	req.K = intPtr(-1)
	if _, err := p.Resolve(context.Background(), req); !errors.Is(err, ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, got %v", err)
	}
}

func TestPipeline_Resolve_AssignsID(t *testing.T) {
	p := newTestPipeline(t, model.DefaultConfig(), testCatalog(), nil)
	req := testRequest()
	req.ID = ""

	report, err := p.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(report.RequestID) != 36 {
		t.Errorf("expected generated uuid, got %q", report.RequestID)
	}
}

func TestPipeline_Resolve_Guardrails(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Guardrails = model.GuardrailsConfig{
		Enabled:          true,
		MaxActiveAnchors: 2,
		PinIfMissing:     []string{"A3"},
	}
	p := newTestPipeline(t, cfg, testCatalog(), nil)

	report, err := p.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !report.Enforced {
		t.Error("expected guardrails to reshape the active set")
	}
	if len(report.AnchorsUsed) != 2 || report.AnchorsUsed[0] != "A1" || report.AnchorsUsed[1] != "A3" {
		t.Fatalf("expected [A1 A3], got %v", report.AnchorsUsed)
	}
	// legal is no longer active
	if report.Truths[0].Value != lattice.T {
		t.Errorf("expected P1 true, got %s", report.Truths[0].Value)
	}
}

func TestPipeline_UnknownPin(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Guardrails.Enabled = true
	cfg.Guardrails.PinIfMissing = []string{"ghost"}

	_, err := NewPipeline(cfg, testCatalog(), nil, nil)
	if !errors.Is(err, anchor.ErrAnchorNotFound) {
		t.Errorf("expected ErrAnchorNotFound, got %v", err)
	}
}

func TestPipeline_Resolve_Errors(t *testing.T) {
	m := metrics.New()
	p := newTestPipeline(t, model.DefaultConfig(), testCatalog(), m)

	if _, err := p.Resolve(context.Background(), model.Request{}); !errors.Is(err, ErrEmptyRequest) {
		t.Errorf("expected ErrEmptyRequest, got %v", err)
	}

	req := testRequest()
	req.Propositions[1].Evidence[0].Weight = -1
	if _, err := p.Resolve(context.Background(), req); !errors.Is(err, graph.ErrInvalidWeight) {
		t.Errorf("expected ErrInvalidWeight, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Resolve(ctx, testRequest()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRenderer_JSONAndMarkdown(t *testing.T) {
	p := newTestPipeline(t, model.DefaultConfig(), testCatalog(), nil)
	report, err := p.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")

	r := p.Renderer()
	if err := r.RenderJSON(report, jsonPath); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	if err := r.RenderMarkdown(report, mdPath); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if decoded.Truths[0].Value != lattice.B {
		t.Errorf("expected B after round trip, got %s", decoded.Truths[0].Value)
	}

	md, _ := os.ReadFile(mdPath)
	for _, want := range []string{"# Resolution req-1", "| `P1` |", "both/contradictory", bridge.AnchorBlockHeader, "Fixpoint:"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	var buf bytes.Buffer
	r.SetOutput(&buf)
	r.RenderSummary(report)
	if !strings.Contains(buf.String(), "Resolution req-1") {
		t.Errorf("summary missing header: %q", buf.String())
	}
}

func TestRenderer_NoFooter(t *testing.T) {
	report := &model.Report{RequestID: "x", AnchorBlock: bridge.AnchorBlockHeader}
	if strings.Contains(NewRenderer(false).Markdown(report), "---") {
		t.Error("expected no footer")
	}
	if !strings.Contains(NewRenderer(true).Markdown(report), "---") {
		t.Error("expected footer")
	}
}

func TestPipeline_RenderReport(t *testing.T) {
	p := newTestPipeline(t, model.DefaultConfig(), testCatalog(), nil)
	report, err := p.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var buf bytes.Buffer
	p.Renderer().SetOutput(&buf)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")
	if err := p.RenderReport(report, jsonPath, "", false); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	if _, err := os.Stat(jsonPath); err != nil {
		t.Errorf("expected JSON output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.md")); !os.IsNotExist(err) {
		t.Error("no Markdown path was given")
	}
	if buf.Len() == 0 {
		t.Error("expected terminal summary")
	}
}
