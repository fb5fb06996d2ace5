package memstore

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type Orders struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Order
	now   func() time.Time
}

func NewOrders() *Orders {
	return &Orders{items: make(map[primitive.ObjectID]models.Order), now: time.Now}
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.Images = append([]string(nil), it.Images...)
		items[i] = it
	}
	o.Items = items
	if o.Address != nil {
		addr := make(models.Address, len(o.Address))
		for k, v := range o.Address {
			addr[k] = v
		}
		o.Address = addr
	}
	return o
}

func (s *Orders) Insert(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.items[o.ID] = cloneOrder(*o)
	return nil
}

func (s *Orders) Get(_ context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id, "commande")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.items[oid]
	if !ok {
		return nil, apperr.NotFound("Commande introuvable")
	}
	o = cloneOrder(o)
	return &o, nil
}

// update applique fn sous verrou et horodate la commande.
func (s *Orders) update(id string, fn func(o *models.Order)) (*models.Order, error) {
	oid, err := parseID(id, "commande")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.items[oid]
	if !ok {
		return nil, apperr.NotFound("Commande introuvable")
	}
	fn(&o)
	o.UpdatedAt = s.now()
	s.items[oid] = o
	o = cloneOrder(o)
	return &o, nil
}

func (s *Orders) SetPayment(_ context.Context, id string, paid bool) error {
	_, err := s.update(id, func(o *models.Order) { o.Payment = paid })
	return err
}

func (s *Orders) SetStatus(_ context.Context, id, status string) error {
	_, err := s.update(id, func(o *models.Order) { o.Status = status })
	return err
}

func (s *Orders) SetTracking(_ context.Context, id, trackingID, courier, status string) (*models.Order, error) {
	return s.update(id, func(o *models.Order) {
		o.TrackingID = trackingID
		o.CourierPartner = courier
		o.Status = status
	})
}

func (s *Orders) Delete(_ context.Context, id string) error {
	oid, err := parseID(id, "commande")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, oid)
	return nil
}

// List retourne les commandes, les plus récentes d'abord.
func (s *Orders) List(context.Context) ([]models.Order, error) {
	return s.filter(func(models.Order) bool { return true }), nil
}

func (s *Orders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Orders) filter(keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedIDs(s.items)
	out := []models.Order{}
	for i := len(ids) - 1; i >= 0; i-- {
		if o := s.items[ids[i]]; keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}
