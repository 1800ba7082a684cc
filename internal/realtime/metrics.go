package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	onlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_users",
		Help: "Users holding at least one realtime connection",
	})

	openConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_realtime_connections",
		Help: "Registered realtime connections",
	})

	presenceBroadcasts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_presence_broadcasts_total",
		Help: "Presence snapshots broadcast to all connections",
	})

	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_realtime_frames_total",
			Help: "Realtime frames handed to connections, by event and outcome",
		},
		[]string{"event", "outcome"},
	)

	handshakes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_realtime_handshakes_total",
			Help: "Realtime handshakes by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(onlineUsers)
	prometheus.MustRegister(openConnections)
	prometheus.MustRegister(presenceBroadcasts)
	prometheus.MustRegister(framesSent)
	prometheus.MustRegister(handshakes)
}
