package extraction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var extractionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipe_extractions_total",
		Help: "Recipe extraction attempts by text source and outcome",
	},
	[]string{"source", "outcome"},
)

func observe(source Source, outcome string) {
	if source == "" {
		source = "unknown"
	}
	extractionsTotal.WithLabelValues(string(source), outcome).Inc()
}
