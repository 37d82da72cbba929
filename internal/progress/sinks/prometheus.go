package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shelfdata/subjectwatch/internal/progress"
)

// PrometheusSink exports scrape progress metrics. It owns all collectors for
// runs, per-page outcomes, and fetch attempts.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runDuration   prometheus.Histogram
	fetchAttempts prometheus.Counter
	pages         *prometheus.CounterVec
	entries       prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subjectwatch_runs_started_total",
			Help: "Total batch scrape runs started.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "subjectwatch_run_duration_seconds",
			Help:    "Wall time per completed batch run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		fetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subjectwatch_fetch_attempts_total",
			Help: "Navigation attempts including retries.",
		}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subjectwatch_pages_total",
			Help: "Category pages processed partitioned by result.",
		}, []string{"result"}),
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subjectwatch_entries_extracted_total",
			Help: "Taxonomy entries extracted from accepted pages.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runDuration,
		s.fetchAttempts,
		s.pages,
		s.entries,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors using the provided batch. It is safe for
// concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	case progress.StageFetchAttempt:
		s.fetchAttempts.Inc()
	case progress.StagePageOK:
		s.pages.WithLabelValues("ok").Inc()
		if evt.Entries > 0 {
			s.entries.Add(float64(evt.Entries))
		}
	case progress.StagePageError:
		s.pages.WithLabelValues("error").Inc()
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
