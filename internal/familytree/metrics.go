package familytree

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// buildTotal counts tree builds by outcome
	buildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "familytree_build_total",
		Help: "Total family tree builds by outcome",
	}, []string{"outcome"})

	// buildDuration tracks tree build latency, loader time included
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "familytree_build_duration_seconds",
		Help:    "Family tree build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	})

	// treeMembers tracks how many members end up in a built tree
	treeMembers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "familytree_tree_members",
		Help:    "Number of members placed in a built tree",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})
)

func observeBuild(start time.Time, tree *FamilyTree, err error) {
	buildDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil && tree.IsEmpty():
		buildTotal.WithLabelValues("empty").Inc()
	case err == nil:
		buildTotal.WithLabelValues("ok").Inc()
		treeMembers.Observe(float64(tree.Metadata().TotalMembers))
	case errors.Is(err, ErrInvalidArgument):
		buildTotal.WithLabelValues("invalid_argument").Inc()
	case errors.Is(err, ErrFamilyNotFound), errors.Is(err, ErrMemberNotFound):
		buildTotal.WithLabelValues("not_found").Inc()
	default:
		buildTotal.WithLabelValues("error").Inc()
	}
}
