// Package reviews gère les avis clients et la note moyenne de chaque produit.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Summary est le résultat brut d'une agrégation : somme et nombre de notes.
type Summary struct {
	Sum   int
	Count int
}

type Store interface {
	ProductExists(ctx context.Context, productID string) (bool, error)
	FindByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error)
	// Insert retourne une erreur de conflit si l'auteur a déjà noté le produit.
	Insert(ctx context.Context, review *models.Review) error
	Get(ctx context.Context, reviewID string) (*models.Review, error)
	Delete(ctx context.Context, reviewID string) error
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	Summarize(ctx context.Context, productID string) (Summary, error)
}

// RatingWriter reporte la note agrégée sur la fiche produit.
type RatingWriter interface {
	SetRating(ctx context.Context, productID string, rating float64, count int) error
}

type Input struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type Aggregator struct {
	store   Store
	ratings RatingWriter
	now     func() time.Time
}

func NewAggregator(store Store, ratings RatingWriter) *Aggregator {
	return &Aggregator{store: store, ratings: ratings, now: time.Now}
}

// Add publie l'avis de l'auteur puis recalcule la note du produit.
// Un second avis du même auteur sur le même produit est refusé.
func (a *Aggregator) Add(ctx context.Context, productID, userID, authorName string, in Input) (*models.Review, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("Utilisateur non authentifié")
	}
	comment := strings.TrimSpace(in.Comment)
	if in.Rating < MinRating || in.Rating > MaxRating || comment == "" {
		return nil, apperr.Validation("La note (1 à 5) et le commentaire sont requis")
	}

	exists, err := a.store.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("lecture produit: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("Produit introuvable")
	}

	previous, err := a.store.FindByProductAndUser(ctx, productID, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("recherche avis existant: %w", err)
	}
	if previous != nil {
		return nil, apperr.Conflict("Vous avez déjà donné votre avis sur ce produit")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Name:      authorName,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: a.now(),
	}
	if err := a.store.Insert(ctx, review); err != nil {
		return nil, err
	}
	log.Printf("⭐ Avis %d/5 ajouté sur %s par %s", review.Rating, productID, userID)

	if _, err := a.Recompute(ctx, productID); err != nil {
		log.Printf("⚠️ Note du produit %s non recalculée: %v", productID, err)
	}
	return review, nil
}

// List retourne les avis du produit, du plus récent au plus ancien.
func (a *Aggregator) List(ctx context.Context, productID string) ([]models.Review, error) {
	return a.store.ListByProduct(ctx, productID)
}

// Remove supprime un avis (modération) et recalcule la note du produit.
func (a *Aggregator) Remove(ctx context.Context, reviewID string) (*models.ProductRating, error) {
	review, err := a.store.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := a.store.Delete(ctx, reviewID); err != nil {
		return nil, err
	}
	log.Printf("🗑️ Avis %s supprimé sur %s", reviewID, review.ProductID)
	return a.Recompute(ctx, review.ProductID)
}

// Recompute relit toutes les notes du produit et réécrit moyenne et nombre.
// Sans avis, la note et le compteur reviennent à zéro.
func (a *Aggregator) Recompute(ctx context.Context, productID string) (*models.ProductRating, error) {
	sum, err := a.store.Summarize(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("agrégation des notes: %w", err)
	}
	rating := Average(sum)
	if err := a.ratings.SetRating(ctx, productID, rating, sum.Count); err != nil {
		return nil, fmt.Errorf("mise à jour de la note: %w", err)
	}
	return &models.ProductRating{ProductID: productID, AverageRating: rating, TotalReviews: sum.Count}, nil
}

// Average arrondit la moyenne à une décimale (demi vers le haut).
func Average(s Summary) float64 {
	if s.Count <= 0 {
		return 0
	}
	mean := decimal.NewFromInt(int64(s.Sum)).Div(decimal.NewFromInt(int64(s.Count)))
	return mean.Round(1).InexactFloat64()
}
