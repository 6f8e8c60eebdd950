// Package metrics exposes Prometheus counters for swipe, match and message outcomes.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	decisions     *prometheus.CounterVec
	matches       *prometheus.CounterVec
	messages      prometheus.Counter
	engineErrors  *prometheus.CounterVec
	httpResponses *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupup_swipe_decisions_total",
			Help: "Swipe decisions recorded, by decision.",
		}, []string{"decision"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupup_match_detections_total",
			Help: "Reciprocal likes detected, by whether the match row was new.",
		}, []string{"outcome"}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "groupup_messages_appended_total",
			Help: "Messages appended to conversations.",
		}),
		engineErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupup_engine_errors_total",
			Help: "Engine operation failures, by operation and error kind.",
		}, []string{"op", "kind"}),
		httpResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupup_http_responses_total",
			Help: "HTTP responses, by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.decisions,
		c.matches,
		c.messages,
		c.engineErrors,
		c.httpResponses,
	)

	return c
}

func (c *Collector) RecordDecision(decision string) {
	c.decisions.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordMatch(created bool) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	c.matches.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordMessageAppended() {
	c.messages.Inc()
}

func (c *Collector) RecordEngineError(op, kind string) {
	c.engineErrors.WithLabelValues(op, kind).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpResponses.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
