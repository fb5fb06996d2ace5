package user

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/cart"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/utils"
)

type ProductLookup interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

// CartWatcher diffuse les changements du panier d'un utilisateur.
type CartWatcher interface {
	Watch(ctx context.Context, userID string) (<-chan string, func(), error)
}

type CartHandler struct {
	carts   cart.Store
	catalog ProductLookup
	watcher CartWatcher
	origins map[string]bool
}

func NewCartHandler(carts cart.Store, catalog ProductLookup, watcher CartWatcher, allowedOrigins []string) *CartHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &CartHandler{carts: carts, catalog: catalog, watcher: watcher, origins: origins}
}

// POST /api/cart/add
func (h *CartHandler) Add(c *gin.Context) {
	var input models.CartLine
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "itemId requis")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.catalog.Get(ctx, input.ProductID); err != nil {
		utils.Fail(c, err)
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	qty, err := h.carts.Add(ctx, c.GetString("user_id"), input.ProductID, input.Quantity)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	log.Printf("🛒 %s ×%d dans le panier de %s", input.ProductID, qty, c.GetString("user_id"))
	utils.OK(c, http.StatusOK, gin.H{"message": "Ajouté au panier", "quantity": qty})
}

// POST /api/cart/update ; une quantité < 1 retire la ligne.
func (h *CartHandler) Update(c *gin.Context) {
	var input models.CartLine
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "itemId requis")
		return
	}
	if input.Quantity >= cart.MinQuantity {
		if _, err := h.catalog.Get(c.Request.Context(), input.ProductID); err != nil {
			utils.Fail(c, err)
			return
		}
	}
	if err := h.carts.Set(c.Request.Context(), c.GetString("user_id"), input.ProductID, input.Quantity); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"message": "Panier mis à jour"})
}

// GET|POST /api/cart/get
func (h *CartHandler) Get(c *gin.Context) {
	snapshot, err := h.snapshot(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, snapshot)
}

// POST /api/cart/reset
func (h *CartHandler) Reset(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), c.GetString("user_id")); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"message": "Panier vidé"})
}

// snapshot renvoie le panier avec son nombre d'articles et son total
// au prix courant du catalogue.
func (h *CartHandler) snapshot(ctx context.Context, userID string) (gin.H, error) {
	items, err := h.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	prices := make(cart.Prices, len(items))
	for productID := range items {
		if p, err := h.catalog.Get(ctx, productID); err == nil {
			prices[productID] = p.Price
		}
	}
	return gin.H{
		"cartData": items,
		"count":    items.Count(),
		"total":    items.Total(prices),
	}, nil
}
