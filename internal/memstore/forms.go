package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type Subscribers struct {
	mu    sync.Mutex
	items map[string]models.Subscriber
}

func NewSubscribers() *Subscribers {
	return &Subscribers{items: make(map[string]models.Subscriber)}
}

func (s *Subscribers) Insert(_ context.Context, sub *models.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[sub.Email]; ok {
		return apperr.Conflict("Cet email est déjà inscrit")
	}
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	s.items[sub.Email] = *sub
	return nil
}

type Contacts struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Contact
}

func NewContacts() *Contacts {
	return &Contacts{items: make(map[primitive.ObjectID]models.Contact)}
}

func (s *Contacts) Insert(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.items[c.ID] = *c
	return nil
}

// List retourne les tickets, les plus récents d'abord.
func (s *Contacts) List(context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedIDs(s.items)
	out := make([]models.Contact, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, s.items[ids[i]])
	}
	return out, nil
}
