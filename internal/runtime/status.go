package runtime

import (
	"net/http"

	jsoncodec "github.com/drblury/pageflow/internal/runtime/jsoncodec"
)

type handlerStatus struct {
	Name         string               `json:"name"`
	ConsumeQueue string               `json:"consume_queue"`
	Stats        HandlerStatsSnapshot `json:"stats"`
}

// registerStatusEndpoint mounts /api/handlers next to /metrics.
func (s *Service) registerStatusEndpoint() {
	if !s.Conf.MetricsEnabled || s.Conf.MetricsPort <= 0 {
		return
	}
	s.RegisterHTTPHandler(s.Conf.MetricsPort, "/api/handlers", http.HandlerFunc(s.handleGetHandlers))
}

func (s *Service) handleGetHandlers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	handlers := s.Handlers()
	out := make([]handlerStatus, 0, len(handlers))
	for _, h := range handlers {
		out = append(out, handlerStatus{
			Name:         h.Name,
			ConsumeQueue: h.ConsumeQueue,
			Stats:        h.Stats.Snapshot(),
		})
	}

	body, err := jsoncodec.Marshal(out)
	if err != nil {
		s.Logger.Error("Failed to encode handlers", err, nil)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
