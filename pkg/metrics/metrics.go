package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gardenrating"

// Outcome label values.
const (
	OutcomeOK             = "ok"
	OutcomeCached         = "cached"
	OutcomeError          = "error"
	OutcomeDownloadFailed = "download_failed"
	OutcomeDecodeFailed   = "decode_failed"
	OutcomeNotFound       = "record_not_found"
	OutcomeNoAttachments  = "no_attachments"
	OutcomeSkipped        = "skipped"
)

var (
	RatingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_total",
		Help:      "Photo rating requests by outcome.",
	}, []string{"outcome"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Time spent decoding and analysing a photo.",
		Buckets:   prometheus.DefBuckets,
	})

	AirtableUpdateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "airtable_update_failures_total",
		Help:      "Failed write-backs of rating results to Airtable.",
	})

	TriggerInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trigger_invocations_total",
		Help:      "Record-created trigger runs by outcome.",
	}, []string{"outcome"})

	PollerRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poller_records_total",
		Help:      "Records handled by the poller by outcome.",
	}, []string{"outcome"})
)
