package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/paradox/internal/lattice"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := New()

	c.ObserveIteration(1, 3)
	c.ObserveIteration(2, 0)
	c.ObserveSelection([]string{"A1", "A2"})
	c.ObserveSelection([]string{"A1"})
	c.ObserveTruth(lattice.B)
	c.ObserveTruth(lattice.B)
	c.ObserveTruth(lattice.T)
	c.ObserveResult(nil)
	c.ObserveResult(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.iterations))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.changes))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.anchorsUsed.WithLabelValues("A1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.anchorsUsed.WithLabelValues("A2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.truths.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutions.WithLabelValues("error")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.ObserveResult(nil)

	path := filepath.Join(t.TempDir(), "paradox.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `paradox_resolutions_total{result="ok"} 1`))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveResult(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.resolutions.WithLabelValues("ok")))
}
