// Package cart maintient les quantités du panier (produit → quantité) et leur
// synchronisation entre la session du client et le stockage serveur.
package cart

import "github.com/shopspring/decimal"

const (
	MinQuantity = 1
	MaxQuantity = 100
)

// Items associe un identifiant produit à une quantité dans [MinQuantity, MaxQuantity].
// Une entrée à zéro n'existe jamais : elle est supprimée.
type Items map[string]int

// PriceLookup résout le prix d'un produit dans l'instantané du catalogue chargé.
type PriceLookup interface {
	Price(productID string) (float64, bool)
}

// Prices est un instantané simple du catalogue.
type Prices map[string]float64

func (p Prices) Price(productID string) (float64, bool) {
	v, ok := p[productID]
	return v, ok
}

func clamp(qty int) int {
	if qty > MaxQuantity {
		return MaxQuantity
	}
	if qty < MinQuantity {
		return MinQuantity
	}
	return qty
}

// Add ajoute qty à la quantité existante (qty < 1 compte pour 1) et retourne
// la nouvelle quantité bornée.
func (it Items) Add(productID string, qty int) int {
	if qty < MinQuantity {
		qty = MinQuantity
	}
	current := it[productID]
	if current < 0 {
		current = 0
	}
	next := clamp(current + qty)
	it[productID] = next
	return next
}

// Set remplace la quantité ; une quantité < 1 retire la ligne.
func (it Items) Set(productID string, qty int) {
	if qty < MinQuantity {
		delete(it, productID)
		return
	}
	it[productID] = clamp(qty)
}

// Remove supprime la ligne entière (pas de décrément).
func (it Items) Remove(productID string) {
	delete(it, productID)
}

// Count additionne les quantités positives.
func (it Items) Count() int {
	total := 0
	for _, qty := range it {
		if qty > 0 {
			total += qty
		}
	}
	return total
}

// Total somme prix × quantité ; les produits absents du catalogue comptent pour zéro.
func (it Items) Total(catalog PriceLookup) float64 {
	total := decimal.Zero
	for productID, qty := range it {
		if qty <= 0 {
			continue
		}
		price, ok := catalog.Price(productID)
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.InexactFloat64()
}

func (it Items) Clone() Items {
	out := make(Items, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// Normalize retourne une copie qui respecte les invariants : lignes ≤ 0
// retirées, quantités > MaxQuantity ramenées à MaxQuantity.
func (it Items) Normalize() Items {
	out := make(Items, len(it))
	for k, v := range it {
		if v < MinQuantity || k == "" {
			continue
		}
		out[k] = clamp(v)
	}
	return out
}
