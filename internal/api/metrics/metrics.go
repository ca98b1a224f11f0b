// Package metrics defines all custom Prometheus metrics for the identity
// API. It is the single source of truth for metric names, labels, and
// help strings; metrics register themselves with the default registry at
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts authentication attempts.
// Label:
//   - result: "success" or "failure" (all failure modes collapse into one
//     value, mirroring the API's non-enumerable error shape)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts issued tokens.
// Label:
//   - kind: "session", "password_reset", or "email_change"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of signed tokens issued, by kind.",
	},
	[]string{"kind"},
)

// PolicyRejectionsTotal counts passwords rejected by the policy validator.
// Label:
//   - reason: "empty", "too_short", "forbidden_characters", "compromised"
var PolicyRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_policy_rejections_total",
		Help:      "Total number of password policy rejections, by reason.",
	},
	[]string{"reason"},
)

// RecoveryRequestsTotal counts password-recovery requests.
// Label:
//   - outcome: "accepted" (the only externally visible one) or "error"
var RecoveryRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recovery_requests_total",
		Help:      "Total number of password recovery requests, by outcome.",
	},
	[]string{"outcome"},
)

// EmailChangesAppliedTotal counts confirmed email changes.
var EmailChangesAppliedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_changes_applied_total",
		Help:      "Total number of email change tokens successfully applied.",
	},
)
