package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/reviews"
)

// Reviews applique la même contrainte d'unicité (produit, auteur) que
// l'index Mongo.
type Reviews struct {
	mu       sync.RWMutex
	items    map[primitive.ObjectID]models.Review
	products *Products
}

func NewReviews(products *Products) *Reviews {
	return &Reviews{items: make(map[primitive.ObjectID]models.Review), products: products}
}

func (s *Reviews) ProductExists(ctx context.Context, productID string) (bool, error) {
	return s.products.Exists(ctx, productID)
}

func (s *Reviews) FindByProductAndUser(_ context.Context, productID, userID string) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.items {
		if r.ProductID == productID && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, apperr.NotFound("Avis introuvable")
}

func (s *Reviews) Insert(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return apperr.Conflict("Vous avez déjà donné votre avis sur ce produit")
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.items[r.ID] = *r
	return nil
}

func (s *Reviews) Get(_ context.Context, id string) (*models.Review, error) {
	oid, err := parseID(id, "avis")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[oid]
	if !ok {
		return nil, apperr.NotFound("Avis introuvable")
	}
	return &r, nil
}

func (s *Reviews) Delete(_ context.Context, id string) error {
	oid, err := parseID(id, "avis")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[oid]; !ok {
		return apperr.NotFound("Avis introuvable")
	}
	delete(s.items, oid)
	return nil
}

// ListByProduct retourne les avis du plus récent au plus ancien.
func (s *Reviews) ListByProduct(_ context.Context, productID string) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedIDs(s.items)
	out := []models.Review{}
	for i := len(ids) - 1; i >= 0; i-- {
		if r := s.items[ids[i]]; r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Reviews) Summarize(_ context.Context, productID string) (reviews.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum reviews.Summary
	for _, r := range s.items {
		if r.ProductID == productID {
			sum.Sum += r.Rating
			sum.Count++
		}
	}
	return sum, nil
}
