package registrationapi

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts reservation outcomes by result code ("ok" or an error code).
type Metrics struct {
	locks       *prometheus.CounterVec
	commits     *prometheus.CounterVec
	attaches    *prometheus.CounterVec
	withdrawals prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		locks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foundathon",
			Name:      "lock_requests_total",
			Help:      "Lock requests by outcome.",
		}, []string{"outcome"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foundathon",
			Name:      "registration_commits_total",
			Help:      "Registration commits by outcome.",
		}, []string{"outcome"}),
		attaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foundathon",
			Name:      "lock_attach_total",
			Help:      "Lock attachments to existing registrations by outcome.",
		}, []string{"outcome"}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foundathon",
			Name:      "registration_withdrawals_total",
			Help:      "Registrations withdrawn by their holder.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.locks, m.commits, m.attaches, m.withdrawals} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeLock(err error) {
	if m == nil {
		return
	}
	m.locks.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeCommit(err error) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeAttach(err error) {
	if m == nil {
		return
	}
	m.attaches.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeWithdrawal() {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
}
