package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	NAMESPACE = "flowtally"
)

var (
	DecoderStats = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "log_decoder_count",
			Help:      "Flow log lines processed by the decoder.",
			Namespace: NAMESPACE},
		[]string{"name"},
	)
	DecoderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "log_decoder_error_count",
			Help:      "Flow log lines rejected by the decoder.",
			Namespace: NAMESPACE},
		[]string{"name", "error"},
	)
	DecoderTime = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:      "log_summary_decoding_time_us",
			Help:      "Decoding time summary.",
			Namespace: NAMESPACE, Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"name"},
	)
	ProducerTagStats = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "flow_tagged_count",
			Help:      "Records mapped to each tag.",
			Namespace: NAMESPACE},
		[]string{"tag"},
	)
	EnricherCacheStats = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "enricher_cache_count",
			Help:      "Enricher address cache lookups.",
			Namespace: NAMESPACE},
		[]string{"result"},
	)
	LookupTableEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "lookup_table_entries",
			Help:      "Entries loaded from the lookup table.",
			Namespace: NAMESPACE},
	)
	StreamSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "stream_sent_count",
			Help:      "Messages sent to the stream transport.",
			Namespace: NAMESPACE},
		[]string{"transport"},
	)
	StreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "stream_error_count",
			Help:      "Stream format and transport errors.",
			Namespace: NAMESPACE},
		[]string{"transport", "error"},
	)
)

func init() {
	prometheus.MustRegister(DecoderStats)
	prometheus.MustRegister(DecoderErrors)
	prometheus.MustRegister(DecoderTime)

	prometheus.MustRegister(ProducerTagStats)
	prometheus.MustRegister(EnricherCacheStats)
	prometheus.MustRegister(LookupTableEntries)

	prometheus.MustRegister(StreamSent)
	prometheus.MustRegister(StreamErrors)
}
