package handlers

import (
	"fmt"
	"net/http"

	"encoding/json"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/app"
)

type EventsHandler struct {
	service *app.Service
}

func NewEventsHandler(service *app.Service) *EventsHandler {
	return &EventsHandler{
		service: service,
	}
}

// HandleEvents streams row-change events as server-sent events. Clients
// treat any event as "something changed, refetch what you show"; every
// mounted view holds its own subscription.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch, cancel := h.service.Bus.Subscribe(r.Context())
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case change, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				logger.Debug.Printf("Failed to marshal change event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
