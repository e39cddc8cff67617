package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis outcome label values.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeParsed    = "parsed"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Analysis Prometheus metrics.
var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stringlens",
			Name:      "analyses_total",
			Help:      "Total number of submitted strings by outcome",
		},
		[]string{"outcome"},
	)

	NLQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stringlens",
			Name:      "nl_queries_total",
			Help:      "Total number of natural-language queries by outcome",
		},
		[]string{"outcome"},
	)

	NLRuleHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stringlens",
			Name:      "nl_filter_fields_total",
			Help:      "Filter fields produced by natural-language interpretation",
		},
		[]string{"field"},
	)

	StringsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stringlens",
			Name:      "strings_stored",
			Help:      "Number of analyzed strings currently held in memory",
		},
	)
)

var analysisMetricsRegistered bool

// RegisterAnalysisMetrics registers the analysis metrics. Must be called once from main.
func RegisterAnalysisMetrics() {
	if analysisMetricsRegistered {
		return
	}
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(NLQueriesTotal)
	prometheus.MustRegister(NLRuleHitsTotal)
	prometheus.MustRegister(StringsStored)
	analysisMetricsRegistered = true
}
