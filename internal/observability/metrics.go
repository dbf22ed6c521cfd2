package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	signupCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitclass",
		Subsystem: "accounts",
		Name:      "signups_total",
		Help:      "Number of accounts created.",
	})
	loginCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitclass",
		Subsystem: "accounts",
		Name:      "logins_total",
		Help:      "Number of login attempts by result.",
	}, []string{"result"})
	enrollmentCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitclass",
		Subsystem: "enrollment",
		Name:      "enrollments_total",
		Help:      "Number of successful class enrollments.",
	})
	enrollmentGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitclass",
		Subsystem: "enrollment",
		Name:      "last_enrollment_timestamp_seconds",
		Help:      "Unix timestamp of the most recent enrollment persisted to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(signupCounter, loginCounter, enrollmentCounter, enrollmentGauge)
}

// RecordSignup counts a created account.
func RecordSignup() {
	signupCounter.Inc()
}

// RecordLogin counts a login attempt by outcome.
func RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	loginCounter.WithLabelValues(result).Inc()
}

// RecordEnrollment updates the enrollment counter and watermark gauge.
func RecordEnrollment(ts time.Time) {
	enrollmentCounter.Inc()
	if ts.IsZero() {
		return
	}
	enrollmentGauge.Set(float64(ts.Unix()))
}
