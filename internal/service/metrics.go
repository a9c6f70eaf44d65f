package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FlipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinflip_flips_total",
			Help: "Flips admitted, by outcome and channel",
		},
		[]string{"outcome", "channel"},
	)
	FlipsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coinflip_flips_dropped_total",
			Help: "Flip requests dropped because a flip was already running",
		},
	)
	FramesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coinflip_frames_sent_total",
			Help: "Scene frames pushed to live sessions",
		},
	)
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coinflip_sessions_active",
			Help: "Live websocket flip sessions",
		},
	)
	HistoryWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coinflip_history_write_errors_total",
			Help: "Flip records that failed to persist",
		},
	)
)

func init() {
	prometheus.MustRegister(FlipsTotal, FlipsDropped, FramesSent, SessionsActive, HistoryWriteErrors)
}
