package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for booking, payment and chat flows.
type Metrics struct {
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal prometheus.Counter
	reschedulesTotal   prometheus.Counter
	paymentsTotal      *prometheus.CounterVec
	chatMessagesTotal  *prometheus.CounterVec
	checkoutLatency    prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctor_booking",
			Subsystem: "booking",
			Name:      "appointments_total",
			Help:      "Total booked appointments",
		}, []string{"consultation_type"}),
		cancellationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doctor_booking",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Total cancelled appointments",
		}),
		reschedulesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doctor_booking",
			Subsystem: "booking",
			Name:      "reschedules_total",
			Help:      "Total rescheduled appointments",
		}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctor_booking",
			Subsystem: "payment",
			Name:      "charges_total",
			Help:      "Total payment charges by outcome",
		}, []string{"status"}),
		chatMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctor_booking",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total chat message operations",
		}, []string{"operation"}),
		checkoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "doctor_booking",
			Subsystem: "booking",
			Name:      "checkout_latency_seconds",
			Help:      "Latency of booking checkout including payment",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.bookingsTotal,
		m.cancellationsTotal,
		m.reschedulesTotal,
		m.paymentsTotal,
		m.chatMessagesTotal,
		m.checkoutLatency,
	)
	return m
}

func (m *Metrics) ObserveBooking(consultationType string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(consultationType).Inc()
}

func (m *Metrics) ObserveCancellation() {
	if m == nil {
		return
	}
	m.cancellationsTotal.Inc()
}

func (m *Metrics) ObserveReschedule() {
	if m == nil {
		return
	}
	m.reschedulesTotal.Inc()
}

func (m *Metrics) ObservePayment(status string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveChatMessage(operation string) {
	if m == nil {
		return
	}
	m.chatMessagesTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveCheckoutLatency(seconds float64) {
	if m == nil {
		return
	}
	m.checkoutLatency.Observe(seconds)
}
