package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

// newRegistry returns a registry with the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// availabilityCollector exports the taken count per problem statement at scrape time.
type availabilityCollector struct {
	svc   *reservation.Service
	log   Logger
	taken *prometheus.Desc
	limit *prometheus.Desc
}

func newAvailabilityCollector(svc *reservation.Service, log Logger) *availabilityCollector {
	return &availabilityCollector{
		svc: svc,
		log: log,
		taken: prometheus.NewDesc(
			"foundathon_problem_statement_taken",
			"Committed registrations per problem statement.",
			[]string{"problem_statement"}, nil,
		),
		limit: prometheus.NewDesc(
			"foundathon_problem_statement_capacity",
			"Registration capacity per problem statement.",
			nil, nil,
		),
	}
}

func (c *availabilityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.taken
	ch <- c.limit
}

func (c *availabilityCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.limit, prometheus.GaugeValue, float64(c.svc.Capacity()))

	view, err := c.svc.Availability(context.Background())
	if err != nil {
		c.log.Error("metrics.availability.fail", "err", err)
		return
	}
	for _, a := range view {
		ch <- prometheus.MustNewConstMetric(c.taken, prometheus.GaugeValue, float64(a.Taken), a.ProblemStatement.ID)
	}
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
