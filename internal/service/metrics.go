package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NDA signatures, by whether a new access request was created
	accessRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataroom_access_requests_total",
			Help: "Total number of NDA signatures submitted",
		},
		[]string{"result"}, // result: created/existing/bypass
	)

	accessTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataroom_access_transitions_total",
			Help: "Total number of administrator status changes",
		},
		[]string{"from", "to"},
	)

	invites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataroom_invites_total",
			Help: "Total number of invite operations",
		},
		[]string{"action"}, // action: created/claimed/rejected
	)

	contentReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataroom_content_reads_total",
			Help: "Total number of gated content reads",
		},
		[]string{"result"}, // result: served/denied
	)
)
