package cart

import "context"

// Store est le panier côté serveur, un par utilisateur authentifié.
// Les implémentations respectent les mêmes bornes que Items.
type Store interface {
	Load(ctx context.Context, userID string) (Items, error)
	// Add ajoute à la quantité existante et retourne la quantité bornée.
	Add(ctx context.Context, userID, productID string, qty int) (int, error)
	// Set remplace la quantité ; qty < 1 retire la ligne.
	Set(ctx context.Context, userID, productID string, qty int) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

// Remote est la vue qu'a une session client du panier serveur.
type Remote interface {
	// Upsert fixe la quantité d'un produit pour l'identité donnée.
	Upsert(ctx context.Context, token, productID string, qty int) error
	Fetch(ctx context.Context, token string) (Items, error)
	Reset(ctx context.Context, token string) error
}
