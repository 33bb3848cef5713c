// Package metrics defines and registers all custom Prometheus metrics for the
// Seva Kendra portal API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "seva"

// ── Application metrics ───────────────────────────────────────────────────────

// ApplicationsSubmittedTotal counts newly created applications.
// Label:
//   - service: "nid", "dl", "voter" or "passport"
var ApplicationsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Total number of applications submitted, by service.",
	},
	[]string{"service"},
)

// ApplicationTransitionsTotal counts status changes applied by providers.
// Labels:
//   - from: status before the change
//   - to: status after the change
var ApplicationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_transitions_total",
		Help:      "Total number of application status transitions applied.",
	},
	[]string{"from", "to"},
)

// ApplicationTransitionErrorsTotal counts refused or failed status changes.
// Label:
//   - reason: "invalid_transition", "not_found" or "storage"
var ApplicationTransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_transition_errors_total",
		Help:      "Total number of application status transitions that were refused or failed.",
	},
	[]string{"reason"},
)

// DocumentUploadFailuresTotal counts citizenship-document uploads that failed.
// Label:
//   - side: "front" or "back"
var DocumentUploadFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_upload_failures_total",
		Help:      "Total number of citizenship-document uploads that failed.",
	},
	[]string{"side"},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// RoleResolutionsTotal counts role lookups.
// Label:
//   - source: "profile", "metadata" or "undetermined"
var RoleResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_resolutions_total",
		Help:      "Total number of role resolutions, by where the role came from.",
	},
	[]string{"source"},
)

// GuardDecisionsTotal counts access guard outcomes.
// Labels:
//   - view: "citizen" or "provider"
//   - decision: "allow", "redirect_home" or "redirect_citizen_dashboard"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access guard decisions.",
	},
	[]string{"view", "decision"},
)

// OTPDeliveriesTotal counts one-time passcode deliveries.
// Label:
//   - result: "sent" or "failed"
var OTPDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_deliveries_total",
		Help:      "Total number of one-time passcode deliveries.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationQueueDepth tracks notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of status notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationsDroppedTotal counts notifications discarded because their
// worker channel was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of status notifications dropped on a full queue.",
	},
)

// NotificationDeliveryDuration measures how long a single notification takes
// to deliver.
// Label:
//   - result: "ok" or "error"
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of status notification delivery from dequeue to acknowledgement.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
