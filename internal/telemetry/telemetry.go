// Package telemetry exports simulation step statistics as Prometheus
// metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"k8s.io/klog/v2"
)

const namespace = "orbitsim"

// Collector turns dynamo.StepStats into Prometheus series. It implements
// dynamo.StatsObserver.
type Collector struct {
	steps     *prometheus.CounterVec
	simTime   prometheus.Gauge
	bodies    prometheus.Gauge
	excluded  prometheus.Gauge
	nodes     prometheus.Gauge
	merged    prometheus.Gauge
	stepSecs  *prometheus.HistogramVec
	phaseSecs *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Completed simulation steps by force evaluation mode.",
		}, []string{"mode"}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_seconds",
			Help:      "Simulated time reached by the last step.",
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bodies",
			Help:      "Bodies in the simulation.",
		}),
		excluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "excluded_bodies",
			Help:      "Bodies left out of the last tree for lying outside its root square.",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Nodes in the last quadtree.",
		}),
		merged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_merged_leaves",
			Help:      "Leaves of the last quadtree holding more than one body.",
		}),
		stepSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of a whole step.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"mode"}),
		phaseSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time of the tree build and force evaluation phases.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"phase"}),
	}

	for _, col := range []prometheus.Collector{
		c.steps, c.simTime, c.bodies, c.excluded, c.nodes, c.merged, c.stepSecs, c.phaseSecs,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) OnStats(s dynamo.StepStats) {
	mode := string(s.Mode)
	c.steps.WithLabelValues(mode).Inc()
	c.simTime.Set(s.Time)
	c.bodies.Set(float64(s.Bodies))
	c.excluded.Set(float64(s.Excluded))
	c.nodes.Set(float64(s.Nodes))
	c.merged.Set(float64(s.MergedLeaves))
	c.stepSecs.WithLabelValues(mode).Observe(s.Duration.Seconds())
	c.phaseSecs.WithLabelValues("build").Observe(s.BuildTime.Seconds())
	c.phaseSecs.WithLabelValues("force").Observe(s.ForceTime.Seconds())
}

// Serve exposes the gatherer on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	klog.InfoS("Serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
