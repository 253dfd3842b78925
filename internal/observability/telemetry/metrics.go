package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurador_messages_total",
		Help: "Transcript entries persisted, by author and utterance source",
	}, []string{"author", "source"})

	AgentRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurador_agent_requests_total",
		Help: "Webhook calls to the upstream agent, by outcome",
	}, []string{"outcome"})

	AgentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "configurador_agent_latency_seconds",
		Help:    "Upstream agent round-trip latency",
		Buckets: prometheus.DefBuckets,
	})

	ClassifierRepliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurador_classifier_replies_total",
		Help: "Classified replies by detected shape (text, config, audio, empty)",
	}, []string{"shape"})

	PlaybackTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurador_playback_transitions_total",
		Help: "Playback session state transitions",
	}, []string{"from", "to"})

	VoiceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurador_voice_errors_total",
		Help: "Voice capture errors by recognition error code",
	}, []string{"code"})

	// Infrastructure metrics
	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "configurador_database_latency_seconds",
		Help:    "Store query latency",
		Buckets: prometheus.DefBuckets,
	})
)
