package metric

import (
	"time"

	"schedly/src-server/exception"
	"schedly/src-server/model"
	"schedly/src-server/nlp"

	"github.com/prometheus/client_golang/prometheus"
)

// Schedule counts what the engine does. It implements model.Observer.
type Schedule struct {
	parses           *prometheus.CounterVec
	parseDuration    prometheus.Histogram
	eventsCreated    prometheus.Counter
	conflictRejected prometheus.Counter
	conflictsFound   prometheus.Counter
	exceptions       *prometheus.CounterVec
	timezoneFallback prometheus.Counter
}

var _ model.Observer = (*Schedule)(nil)

func NewSchedule(reg prometheus.Registerer) *Schedule {
	s := &Schedule{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedly_parse_total",
			Help: "Texts parsed, by how much date and time information was found",
		}, []string{"result"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schedly_parse_duration_seconds",
			Help:    "Time spent parsing one text",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		eventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedly_events_created_total",
			Help: "Events and series occurrences written",
		}),
		conflictRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedly_conflict_rejections_total",
			Help: "Writes refused because of overlapping events",
		}),
		conflictsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedly_conflicts_found_total",
			Help: "Overlapping pairs found while refusing writes",
		}),
		exceptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedly_exceptions_total",
			Help: "Occurrence exceptions recorded, by kind",
		}, []string{"kind"}),
		timezoneFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedly_timezone_fallback_total",
			Help: "Requests whose timezone was unknown and replaced by UTC",
		}),
	}
	reg.MustRegister(
		s.parses, s.parseDuration, s.eventsCreated, s.conflictRejected,
		s.conflictsFound, s.exceptions, s.timezoneFallback,
	)
	return s
}

func (s *Schedule) ObserveParse(f nlp.Fields, took time.Duration) {
	result := "partial"
	switch {
	case f.HasDate && f.HasTime:
		result = "complete"
	case !f.HasDate && !f.HasTime:
		result = "title_only"
	}
	s.parses.WithLabelValues(result).Inc()
	s.parseDuration.Observe(took.Seconds())
	if f.TimezoneFallback {
		s.timezoneFallback.Inc()
	}
}

func (s *Schedule) EventsCreated(n int) { s.eventsCreated.Add(float64(n)) }

func (s *Schedule) ConflictRejected(total int) {
	s.conflictRejected.Inc()
	s.conflictsFound.Add(float64(total))
}

func (s *Schedule) ExceptionApplied(kind exception.Kind) {
	s.exceptions.WithLabelValues(string(kind)).Inc()
}
