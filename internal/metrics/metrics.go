package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CallsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "callengine_calls_active",
		Help: "Currently active call sessions",
	})

	CallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "callengine_calls_total",
		Help: "Total calls placed, by end reason",
	}, []string{"reason"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "callengine_stage_duration_seconds",
		Help:    "Per-stage latency (asr/llm/tts/telephony)",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 1.6, 2.0, 5.0},
	}, []string{"stage"})

	E2EDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "callengine_turn_duration_seconds",
		Help:    "End-to-end latency from end-of-turn dispatch to first TTS audio frame",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 1.3, 1.6, 2.0, 3.0, 5.0},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "callengine_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})

	AudioFramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_audio_frames_sent_total",
		Help: "Total 20ms mu-law frames sent to telephony",
	})

	AudioFramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_audio_frames_received_total",
		Help: "Total 20ms mu-law frames received from telephony",
	})

	BargeIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_barge_ins_total",
		Help: "Total barge-in interruptions across all calls",
	})

	TTSCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_tts_cache_hits_total",
		Help: "Response cache hits",
	})

	TTSCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_tts_cache_misses_total",
		Help: "Response cache misses",
	})

	ASRNoiseFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_asr_whitespace_filtered_total",
		Help: "ASR finals dropped for being whitespace-only",
	})

	MeetingsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_meetings_booked_total",
		Help: "Calls where the meeting-booked detector fired",
	})

	OptOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callengine_opt_outs_total",
		Help: "Calls that ended via the opt-out branch",
	})
)
