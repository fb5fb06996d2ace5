package memstore

import (
	"context"
	"sync"

	"dermodazzle_back_end/internal/models"
)

// History garde les événements de suivi dans l'ordre d'arrivée.
type History struct {
	mu     sync.RWMutex
	events map[string][]models.TrackingEvent
}

func NewHistory() *History {
	return &History{events: make(map[string][]models.TrackingEvent)}
}

func (h *History) Record(_ context.Context, ev models.TrackingEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[ev.OrderID] = append(h.events[ev.OrderID], ev)
	return nil
}

func (h *History) List(_ context.Context, orderID string) ([]models.TrackingEvent, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.TrackingEvent{}, h.events[orderID]...), nil
}
