package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameserver_matches_created_total",
		Help: "Created matches by game type.",
	}, []string{"game"})

	MatchesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameserver_matches_finished_total",
		Help: "Matches that reached a terminal status.",
	}, []string{"game", "status"})

	MovesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameserver_moves_total",
		Help: "Submitted moves by game type and result (ok, rejected, error).",
	}, []string{"game", "result"})

	StoreConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameserver_store_conflicts_total",
		Help: "Optimistic concurrency conflicts by operation.",
	}, []string{"op"})

	Retries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameserver_retries_total",
		Help: "Retried operations at the call boundary.",
	}, []string{"op"})

	SweptMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameserver_swept_matches_total",
		Help: "Matches abandoned by the deadline sweeper.",
	}, []string{"reason"})

	WatchersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gameserver_ws_watchers",
		Help: "Currently connected websocket watchers.",
	})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gameserver_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware меряет время ответа по шаблону маршрута
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
