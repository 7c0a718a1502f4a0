// Package metrics exposes the bridge's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mtbridge"

var (
	// Operations: "translate", "bulk_translate", "translate_direct",
	// "bulk_translate_direct". Status: "success" or "error".
	TranslateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translate_requests_total",
			Help:      "Translation responses produced, by operation and status.",
		},
		[]string{"operation", "status"},
	)

	BilledCharacters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billed_characters_total",
			Help:      "Characters billed by the upstream service, by operation.",
		},
		[]string{"operation"},
	)

	// 1 while the last upstream call succeeded, 0 after a transport failure.
	ProviderUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_up",
			Help:      "Whether the upstream translation service is reachable.",
		},
		[]string{"provider"},
	)
)

// RecordResponse counts one translation response and its billed characters.
func RecordResponse(operation, status string, billedCharacters int) {
	TranslateRequests.WithLabelValues(operation, status).Inc()
	if billedCharacters > 0 {
		BilledCharacters.WithLabelValues(operation).Add(float64(billedCharacters))
	}
}
