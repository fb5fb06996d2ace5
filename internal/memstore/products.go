package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type Products struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Product
}

func NewProducts() *Products {
	return &Products{items: make(map[primitive.ObjectID]models.Product)}
}

func clone(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

func (s *Products) List(context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.items))
	for _, id := range sortedIDs(s.items) {
		out = append(out, clone(s.items[id]))
	}
	return out, nil
}

func (s *Products) Get(_ context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id, "produit")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[oid]
	if !ok {
		return nil, apperr.NotFound("Produit introuvable")
	}
	p = clone(p)
	return &p, nil
}

func (s *Products) Exists(_ context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[oid]
	return ok, nil
}

func (s *Products) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.items[p.ID] = clone(*p)
	return nil
}

func (s *Products) Delete(_ context.Context, id string) error {
	oid, err := parseID(id, "produit")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[oid]; !ok {
		return apperr.NotFound("Produit introuvable")
	}
	delete(s.items, oid)
	return nil
}

func (s *Products) SetRating(_ context.Context, id string, rating float64, count int) error {
	oid, err := parseID(id, "produit")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[oid]
	if !ok {
		return apperr.NotFound("Produit introuvable")
	}
	p.Rating, p.ReviewCount = rating, count
	s.items[oid] = p
	return nil
}
