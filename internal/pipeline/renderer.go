package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/paradox/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a new renderer writing summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stdout}
}

// SetOutput redirects terminal summaries
func (r *Renderer) SetOutput(w io.Writer) {
	r.out = w
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// Markdown formats the report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Resolution %s\n\n", report.RequestID)
	if report.Text != "" {
		fmt.Fprintf(&b, "> %s\n\n", report.Text)
	}
	fmt.Fprintf(&b, "Resolved at %s.\n\n", report.ResolvedAt.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Truth values\n\n")
	if len(report.Truths) == 0 {
		b.WriteString("_No propositions._\n\n")
	} else {
		b.WriteString("| Proposition | Text | Value |\n")
		b.WriteString("|---|---|---|\n")
		for _, t := range report.Truths {
			fmt.Fprintf(&b, "| `%s` | %s | %s (%s) |\n", t.PropositionID, escapeCell(t.Text), t.Label, t.Value)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Anchor ranking\n\n")
	b.WriteString("| Anchor | Priority | Hits | Boost | Score | Active |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	active := make(map[string]bool, len(report.AnchorsUsed))
	for _, id := range report.AnchorsUsed {
		active[id] = true
	}
	for _, s := range report.Ranking {
		mark := ""
		if active[s.AnchorID] {
			mark = "yes"
		}
		fmt.Fprintf(&b, "| `%s` | %.2f | %d | %.2f | %.2f | %s |\n", s.AnchorID, s.Priority, s.Hits, s.Boost, s.Score, mark)
	}
	b.WriteString("\n")
	if report.Enforced {
		b.WriteString("Guardrails changed the active set.\n\n")
	}

	b.WriteString("## Anchor block\n\n```\n")
	b.WriteString(report.AnchorBlock)
	b.WriteString("\n```\n\n")

	fmt.Fprintf(&b, "Fixpoint: %d iterations, %d changes.\n", report.Fixpoint.Iterations, report.Fixpoint.Changes)

	if r.includeFooter {
		b.WriteString("\n---\n")
		b.WriteString("_Four-valued resolution: values describe the evidence under the active anchors, not the world._\n")
	}

	return b.String()
}

// RenderSummary prints a short summary to the terminal
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(r.out, "  Resolution %s\n", report.RequestID)
	fmt.Fprintln(r.out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  Anchors:     %s\n", strings.Join(report.AnchorsUsed, ", "))
	fmt.Fprintf(r.out, "  Fixpoint:    %d iterations, %d changes\n", report.Fixpoint.Iterations, report.Fixpoint.Changes)
	fmt.Fprintln(r.out)
	for _, t := range report.Truths {
		fmt.Fprintf(r.out, "  %-24s %s\n", t.PropositionID, t.Label)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, report.AnchorBlock)
	fmt.Fprintln(r.out)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderReport writes the JSON and Markdown outputs that have a path and
// prints the terminal summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON report: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown report: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}
