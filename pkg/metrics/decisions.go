package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics records admin decision activity and term transitions.
type DecisionMetrics struct {
	submissions     *prometheus.CounterVec
	redemptions     *prometheus.CounterVec
	termTransitions prometheus.Counter
	vouchers        *prometheus.CounterVec
}

// NewDecisionMetrics registers the decision metrics on the provided registerer.
func NewDecisionMetrics(reg prometheus.Registerer) *DecisionMetrics {
	if reg == nil {
		return &DecisionMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "submission_decisions_total",
		Help: "Submission approve/reject decisions.",
	}, []string{"outcome"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redemption_decisions_total",
		Help: "Redemption approve/reject decisions.",
	}, []string{"outcome"})
	termTransitions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "term_transitions_total",
		Help: "Completed term transitions.",
	})
	vouchers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_voucher_events_total",
		Help: "Bazaar voucher purchases and uses.",
	}, []string{"event"})
	reg.MustRegister(submissions, redemptions, termTransitions, vouchers)
	return &DecisionMetrics{
		submissions:     submissions,
		redemptions:     redemptions,
		termTransitions: termTransitions,
		vouchers:        vouchers,
	}
}

// IncSubmissionDecision increments the submission decision counter.
func (d *DecisionMetrics) IncSubmissionDecision(outcome string) {
	if d == nil || d.submissions == nil {
		return
	}
	d.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRedemptionDecision increments the redemption decision counter.
func (d *DecisionMetrics) IncRedemptionDecision(outcome string) {
	if d == nil || d.redemptions == nil {
		return
	}
	d.redemptions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTermTransition increments the term transition counter.
func (d *DecisionMetrics) IncTermTransition() {
	if d == nil || d.termTransitions == nil {
		return
	}
	d.termTransitions.Inc()
}

// IncVoucherEvent increments the bazaar voucher counter.
func (d *DecisionMetrics) IncVoucherEvent(event string) {
	if d == nil || d.vouchers == nil {
		return
	}
	d.vouchers.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
