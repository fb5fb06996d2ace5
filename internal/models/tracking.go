package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Types d'événements de l'historique de suivi
const (
	EventPlaced         = "placed"
	EventPaymentOK      = "payment_confirmed"
	EventPaymentFailed  = "payment_failed"
	EventStatusChanged  = "status_changed"
	EventTrackingUpdate = "tracking_updated"
)

type TrackingEvent struct {
	ID             gocql.UUID `json:"id"`
	OrderID        string     `json:"orderId"`
	Kind           string     `json:"kind"`
	Status         string     `json:"status,omitempty"`
	TrackingID     string     `json:"trackingId,omitempty"`
	CourierPartner string     `json:"courierPartner,omitempty"`
	Actor          string     `json:"actor,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// TrackingInfo est la vue publique du suivi, dérivée à la volée.
type TrackingInfo struct {
	TrackingID     string    `json:"trackingId"`
	CourierPartner string    `json:"courierPartner"`
	TrackingURL    string    `json:"trackingUrl,omitempty"`
	Status         string    `json:"status"`
	LastUpdated    time.Time `json:"lastUpdated"`
}
