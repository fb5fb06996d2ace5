package catalog

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dermodazzle_back_end/internal/models"
)

// SeedProduct est une entrée du fichier de catalogue initial ; les images
// sont des URLs déjà publiées.
type SeedProduct struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Price          float64  `yaml:"price"`
	Images         []string `yaml:"images"`
	Bestseller     bool     `yaml:"bestseller"`
	Benefits       string   `yaml:"benefits"`
	KeyIngredients string   `yaml:"keyIngredients"`
	SkinType       string   `yaml:"skinType"`
	Volume         float64  `yaml:"volume"`
}

type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
}

func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lecture du catalogue %s: %w", path, err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalogue YAML invalide: %w", err)
	}
	for i, p := range f.Products {
		if strings.TrimSpace(p.Name) == "" || p.Price <= 0 {
			return nil, fmt.Errorf("produit #%d: nom et prix requis", i+1)
		}
		if len(p.Images) > MaxImages {
			return nil, fmt.Errorf("produit %q: %d images maximum", p.Name, MaxImages)
		}
	}
	return &f, nil
}

// Import enregistre les produits absents du catalogue (comparaison par nom,
// sans tenir compte de la casse) et retourne le nombre d'insertions.
func (s *Service) Import(ctx context.Context, seed []SeedProduct) (int, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("liste produits: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[strings.ToLower(strings.TrimSpace(p.Name))] = true
	}

	inserted := 0
	for _, in := range seed {
		key := strings.ToLower(strings.TrimSpace(in.Name))
		if known[key] {
			continue
		}
		p := &models.Product{
			Name:           strings.TrimSpace(in.Name),
			Description:    in.Description,
			Price:          in.Price,
			Images:         append([]string{}, in.Images...),
			Bestseller:     in.Bestseller,
			Benefits:       in.Benefits,
			KeyIngredients: in.KeyIngredients,
			SkinType:       in.SkinType,
			Volume:         in.Volume,
			Date:           s.now().UnixMilli(),
		}
		if err := s.store.Insert(ctx, p); err != nil {
			return inserted, fmt.Errorf("insertion %s: %w", p.Name, err)
		}
		known[key] = true
		inserted++
		if s.index != nil {
			if err := s.index.Index(ctx, *p); err != nil {
				log.Printf("⚠️ Produit %s non indexé: %v", p.Name, err)
			}
		}
	}
	if inserted > 0 {
		s.invalidate(ctx)
	}
	return inserted, nil
}

// Reindex republie tout le catalogue dans l'index de recherche.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	products, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("liste produits: %w", err)
	}
	for _, p := range products {
		if err := s.index.Index(ctx, p); err != nil {
			return 0, fmt.Errorf("indexation %s: %w", p.Name, err)
		}
	}
	return len(products), nil
}
