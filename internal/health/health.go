package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Source exposes the service state the health endpoint reports.
type Source interface {
	Uptime() time.Duration
	QueueDepth() int
	ProcessedTotal() uint64
}

type QueueStatus struct {
	Length    int    `json:"length"`
	Processed uint64 `json:"processed"`
}

type Status struct {
	Status    string      `json:"status"`
	Uptime    float64     `json:"uptime"` // seconds
	Timestamp string      `json:"timestamp"`
	Queue     QueueStatus `json:"queue"`
}

// HTTPHandler returns an HTTP handler that reports the health status of the service
func HTTPHandler(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := Status{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if src != nil {
			st.Uptime = src.Uptime().Seconds()
			st.Queue = QueueStatus{
				Length:    src.QueueDepth(),
				Processed: src.ProcessedTotal(),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	}
}
