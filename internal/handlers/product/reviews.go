package product

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/reviews"
	"dermodazzle_back_end/internal/utils"
)

type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type ReviewHandler struct {
	reviews *reviews.Aggregator
	users   UserLookup
}

func NewReviewHandler(agg *reviews.Aggregator, users UserLookup) *ReviewHandler {
	return &ReviewHandler{reviews: agg, users: users}
}

// GET /api/reviews/:productId
func (h *ReviewHandler) List(c *gin.Context) {
	list, err := h.reviews.List(c.Request.Context(), c.Param("productId"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"reviews": list})
}

// POST /api/reviews/:productId
func (h *ReviewHandler) Create(c *gin.Context) {
	var input reviews.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Note entre 1 et 5 et commentaire requis")
		return
	}
	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	// nom figé à la publication
	author := "Client DermoDazzle"
	if u, err := h.users.Get(ctx, userID); err == nil && u.Name != "" {
		author = u.Name
	}

	review, err := h.reviews.Add(ctx, c.Param("productId"), userID, author, input)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusCreated, gin.H{"message": "Avis publié", "review": review})
}

// DELETE /api/reviews/:reviewId (admin)
func (h *ReviewHandler) Delete(c *gin.Context) {
	rating, err := h.reviews.Remove(c.Request.Context(), c.Param("reviewId"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"message": "Avis supprimé", "rating": rating})
}
