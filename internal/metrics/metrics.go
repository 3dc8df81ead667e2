package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the authorization server.
type Metrics struct {
	TokensIssued      *prometheus.CounterVec
	GrantFailures     *prometheus.CounterVec
	CodesIssued       prometheus.Counter
	DeviceCodesIssued prometheus.Counter
}

// New registers the instruments with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_tokens_issued_total",
			Help: "Access tokens issued, by grant type.",
		}, []string{"grant_type"}),
		GrantFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_grant_failures_total",
			Help: "Token endpoint failures, by grant type and error code.",
		}, []string{"grant_type", "error"}),
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "authcore_authorization_codes_issued_total",
			Help: "Authorization codes minted at the consent step.",
		}),
		DeviceCodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "authcore_device_codes_issued_total",
			Help: "Device code pairs minted at the device authorization endpoint.",
		}),
	}
}
