package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

func TestCollector_OnStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		c.OnStats(dynamo.StepStats{
			Step:         i,
			Time:         float64(i) * 3600,
			Mode:         dynamo.ModeBarnesHut,
			Bodies:       504,
			Excluded:     i - 1,
			Nodes:        1200,
			MergedLeaves: 0,
			BuildTime:    time.Millisecond,
			ForceTime:    2 * time.Millisecond,
			Duration:     4 * time.Millisecond,
		})
	}
	c.OnStats(dynamo.StepStats{Step: 4, Time: 4 * 3600, Mode: dynamo.ModeBruteForce, Bodies: 504})

	assert.Equal(t, 3.0, testutil.ToFloat64(c.steps.WithLabelValues("barnes-hut")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues("brute-force")))
	assert.Equal(t, 4*3600.0, testutil.ToFloat64(c.simTime))
	assert.Equal(t, 504.0, testutil.ToFloat64(c.bodies))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.excluded))
	assert.Equal(t, 2, testutil.CollectAndCount(c.phaseSecs))

	expected := `
# HELP orbitsim_tree_nodes Nodes in the last quadtree.
# TYPE orbitsim_tree_nodes gauge
orbitsim_tree_nodes 0
`
	require.NoError(t, testutil.CollectAndCompare(c.nodes, strings.NewReader(expected)))
}

func TestCollector_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)
	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestHandlerExposesSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.OnStats(dynamo.StepStats{Step: 1, Time: 1, Mode: dynamo.ModeBarnesHut, Bodies: 2})

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	n, err := testutil.GatherAndCount(reg, "orbitsim_steps_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
