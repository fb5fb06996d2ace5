package models

// CartLine est le format d'échange d'une ligne de panier.
type CartLine struct {
	ProductID string `json:"itemId" binding:"required"`
	Quantity  int    `json:"quantity"`
}
