package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Like outcomes used as the result label.
const (
	LikeAdded   = "added"
	LikeAlready = "already_liked"
	LikeMatched = "matched"
)

var (
	LikesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myshagun_likes_total",
			Help: "Like requests by outcome.",
		},
		[]string{"result"},
	)

	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "myshagun_matches_total",
		Help: "Likes that completed a mutual match.",
	})

	ConversationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "myshagun_conversations_created_total",
		Help: "Conversations inserted by this process.",
	})

	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "myshagun_messages_sent_total",
		Help: "Chat messages stored.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "myshagun_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
