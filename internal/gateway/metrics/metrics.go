// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts credential exchanges by outcome
	// (success, rejected, upstream_error).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "idgate",
		Name:      "login_attempts_total",
		Help:      "Credential exchange attempts by outcome.",
	}, []string{"outcome"})

	// ProvisioningAttempts counts dual-system user creations by outcome
	// (success, remote_failed, local_failed).
	ProvisioningAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "idgate",
		Name:      "provisioning_attempts_total",
		Help:      "User provisioning attempts by outcome.",
	}, []string{"outcome"})
)
