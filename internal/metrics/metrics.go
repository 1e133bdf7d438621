// Package metrics exposes Prometheus counters for the ingestion and
// notification pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appLog "fightcal/internal/log"
)

var (
	IngestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fightcal_ingest_runs_total",
		Help: "Ingestion runs by result.",
	}, []string{"result"})

	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fightcal_events_ingested_total",
		Help: "Event upserts by outcome (inserted, updated, no_change, failed).",
	}, []string{"outcome"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fightcal_deliveries_total",
		Help: "Notification deliveries by destination kind and result.",
	}, []string{"kind", "result"})

	JobTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fightcal_job_ticks_total",
		Help: "Scheduler job ticks by job and whether the gate let them act.",
	}, []string{"job", "acted"})
)

// Serve exposes /metrics on listen. It blocks; run it on its own goroutine.
func Serve(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	appLog.Info("metrics exporter listening", "listen", listen)
	return http.ListenAndServe(listen, mux)
}
