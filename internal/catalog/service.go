// Package catalog expose le catalogue produits : lecture (avec cache),
// ajout avec images, suppression, recherche et report des notes d'avis.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

// Nombre maximal d'images par produit (image1..image4).
const MaxImages = 4

type Store interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	SetRating(ctx context.Context, id string, rating float64, count int) error
}

// Cache garde la liste complète ; un échec de cache n'est jamais bloquant.
type Cache interface {
	Products(ctx context.Context) ([]models.Product, bool)
	StoreProducts(ctx context.Context, products []models.Product)
	Invalidate(ctx context.Context)
}

type Indexer interface {
	Index(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type ImageStore interface {
	Upload(ctx context.Context, img Image) (string, error)
}

type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Input reprend les champs du formulaire d'ajout produit.
type Input struct {
	Name           string  `form:"name" binding:"required"`
	Description    string  `form:"description"`
	Price          float64 `form:"price" binding:"required,gt=0"`
	Bestseller     bool    `form:"bestseller"`
	Benefits       string  `form:"benefits"`
	KeyIngredients string  `form:"keyIngredients"`
	SkinType       string  `form:"skinType"`
	Volume         float64 `form:"volume"`
}

type Service struct {
	store  Store
	cache  Cache
	index  Indexer
	images ImageStore
	now    func() time.Time
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }
func WithIndexer(i Indexer) Option { return func(s *Service) { s.index = i } }
func WithImageStore(i ImageStore) Option { return func(s *Service) { s.images = i } }

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		if products, ok := s.cache.Products(ctx); ok {
			return products, nil
		}
	}
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("liste produits: %w", err)
	}
	if s.cache != nil {
		s.cache.StoreProducts(ctx, products)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("ID produit requis")
	}
	return s.store.Get(ctx, id)
}

// Add téléverse les images puis enregistre le produit.
func (s *Service) Add(ctx context.Context, in Input, images []Image) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price <= 0 {
		return nil, apperr.Validation("Nom et prix requis")
	}
	if len(images) > MaxImages {
		return nil, apperr.Validation(fmt.Sprintf("%d images maximum", MaxImages))
	}

	urls := make([]string, 0, len(images))
	if len(images) > 0 && s.images == nil {
		return nil, apperr.Upstream("Stockage d'images indisponible", errors.New("stockage non configuré"))
	}
	for _, img := range images {
		url, err := s.images.Upload(ctx, img)
		if err != nil {
			return nil, apperr.Upstream("Erreur upload image", err)
		}
		urls = append(urls, url)
	}

	p := &models.Product{
		Name:           name,
		Description:    in.Description,
		Price:          in.Price,
		Images:         urls,
		Bestseller:     in.Bestseller,
		Benefits:       in.Benefits,
		KeyIngredients: in.KeyIngredients,
		SkinType:       in.SkinType,
		Volume:         in.Volume,
		Date:           s.now().UnixMilli(),
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insertion produit: %w", err)
	}
	s.invalidate(ctx)
	if s.index != nil {
		if err := s.index.Index(ctx, *p); err != nil {
			log.Printf("⚠️ Produit %s non indexé: %v", p.Name, err)
		}
	}
	log.Printf("✅ Produit ajouté: %s (%s)", p.Name, p.ID.Hex())
	return p, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("ID produit requis")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	if s.index != nil {
		if err := s.index.Remove(ctx, id); err != nil {
			log.Printf("⚠️ Produit %s non retiré de l'index: %v", id, err)
		}
	}
	log.Printf("🗑️ Produit supprimé: %s", id)
	return nil
}

// Search interroge l'index ; sans index (ou en cas d'erreur) la recherche se
// fait sur la liste complète.
func (s *Service) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Paramètre q requis")
	}
	if s.index != nil {
		found, err := s.index.Search(ctx, query)
		if err == nil {
			return found, nil
		}
		log.Printf("⚠️ Recherche Elastic indisponible, repli local: %v", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, query), nil
}

// SetRating reporte la note d'avis sur la fiche produit.
func (s *Service) SetRating(ctx context.Context, id string, rating float64, count int) error {
	if err := s.store.SetRating(ctx, id, rating, count); err != nil {
		return err
	}
	s.invalidate(ctx)
	if s.index != nil {
		if p, err := s.store.Get(ctx, id); err == nil {
			if err := s.index.Index(ctx, *p); err != nil {
				log.Printf("⚠️ Note du produit %s non réindexée: %v", id, err)
			}
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// Filter garde les produits dont un champ texte contient tous les mots de la
// requête, best-sellers en tête.
func Filter(products []models.Product, query string) []models.Product {
	terms := strings.Fields(strings.ToLower(query))
	out := []models.Product{}
	for _, p := range products {
		haystack := strings.ToLower(strings.Join([]string{p.Name, p.Description, p.Benefits, p.KeyIngredients, p.SkinType}, " "))
		match := true
		for _, t := range terms {
			if !strings.Contains(haystack, t) {
				match = false
				break
			}
		}
		if match {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bestseller && !out[j].Bestseller })
	return out
}
