package bridge

import (
	"fmt"
	"strings"

	"github.com/ppiankov/paradox/internal/anchor"
	"github.com/ppiankov/paradox/internal/lattice"
)

// AnchorBlockHeader opens every anchor block
const AnchorBlockHeader = "### ACTIVE ANCHORS"

// WeaveAnchorBlock renders a header plus one bullet per anchor for the first
// maxItems ids, in the given order. Every rendered id must exist in the
// catalog; otherwise nothing is returned.
func WeaveAnchorBlock(activeIDs []string, catalog *anchor.Catalog, maxItems int) (string, error) {
	n := min(len(activeIDs), max(maxItems, 0))

	lines := make([]string, 0, n+1)
	lines = append(lines, AnchorBlockHeader)
	for _, id := range activeIDs[:n] {
		a, err := catalog.Get(id)
		if err != nil {
			return "", fmt.Errorf("weave anchor block: %w", err)
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", a.ID, a.Name, a.Summary))
	}
	return strings.Join(lines, "\n"), nil
}

// QuickTruth returns the fixed label of a truth value
func QuickTruth(v lattice.Value) string {
	return lattice.Label(v)
}
