package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuron_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neuron_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	llmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neuron_llm_request_duration_seconds",
		Help:    "Duration of generative model calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider", "result"})

	llmTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuron_llm_tokens_total",
		Help: "Tokens reported by the generative model",
	}, []string{"provider", "kind"})

	conversationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuron_conversation_transitions_total",
		Help: "Conversation state transitions by target status",
	}, []string{"status"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuron_events_total",
		Help: "Internal events by name and outcome",
	}, []string{"event", "outcome"})

	channelReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neuron_whatsapp_channel_ready",
		Help: "1 when the messaging channel is connected",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func ObserveLLMRequest(provider, result string, duration time.Duration) {
	llmRequestDuration.WithLabelValues(provider, result).Observe(duration.Seconds())
}

func AddLLMTokens(provider string, prompt, completion int) {
	llmTokens.WithLabelValues(provider, "prompt").Add(float64(prompt))
	llmTokens.WithLabelValues(provider, "completion").Add(float64(completion))
}

func ObserveConversationTransition(status string) {
	conversationTransitions.WithLabelValues(status).Inc()
}

func ObserveConversationTransitions(status string, n int64) {
	conversationTransitions.WithLabelValues(status).Add(float64(n))
}

// ObserveEvent counts dispatcher outcomes: queued, dropped, processed, panicked.
func ObserveEvent(event, outcome string) {
	eventsTotal.WithLabelValues(event, outcome).Inc()
}

func SetChannelReady(ready bool) {
	if ready {
		channelReady.Set(1)
		return
	}
	channelReady.Set(0)
}
