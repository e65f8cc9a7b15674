package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"

	ResultOK     = "ok"
	ResultFailed = "failed"
)

var (
	syncMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intervals",
		Subsystem: "sync",
		Name:      "messages_total",
		Help:      "Workout sync messages by direction and result.",
	}, []string{"direction", "result"})
	syncConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "intervals",
		Subsystem: "sync",
		Name:      "connected",
		Help:      "1 while the sync channel is connected to its peer.",
	})
	syncWorkouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intervals",
		Subsystem: "sync",
		Name:      "workouts_total",
		Help:      "Workouts carried by sync messages by direction.",
	}, []string{"direction"})
)

func init() {
	prometheus.MustRegister(syncMessages, syncConnected, syncWorkouts)
}

// RecordSyncMessage counts one message and the workouts it carried.
func RecordSyncMessage(direction, result string, workouts int) {
	syncMessages.WithLabelValues(direction, result).Inc()
	if result == ResultOK && workouts > 0 {
		syncWorkouts.WithLabelValues(direction).Add(float64(workouts))
	}
}

// RecordSyncConnected sets the connection gauge.
func RecordSyncConnected(connected bool) {
	if connected {
		syncConnected.Set(1)
		return
	}
	syncConnected.Set(0)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
