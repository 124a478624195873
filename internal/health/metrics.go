package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts upload pipeline outcomes.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_uploads_total",
			Help: "File uploads handled, by result",
		},
		[]string{"result"},
	)

	// RetrievalsTotal counts single-file deliveries, by result.
	RetrievalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_retrievals_total",
			Help: "File retrievals handled, by result",
		},
		[]string{"result"},
	)

	// BroadcastsTotal counts per-user broadcast deliveries, by result.
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_broadcast_messages_total",
			Help: "Broadcast deliveries attempted, by result",
		},
		[]string{"result"},
	)
)
