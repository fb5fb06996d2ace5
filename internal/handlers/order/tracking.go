package order

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/utils"
)

// POST /api/order/update-tracking (admin) : passe la commande en "Shipped".
func (h *Handler) UpdateTracking(c *gin.Context) {
	var input struct {
		OrderID        string `json:"orderId" binding:"required"`
		TrackingID     string `json:"trackingId"`
		CourierPartner string `json:"courierPartner"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "orderId requis")
		return
	}
	order, err := h.manager.UpdateTracking(c.Request.Context(), input.OrderID, input.TrackingID, input.CourierPartner, c.GetString("email"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"message": "Suivi mis à jour", "order": order})
}

// GET /api/order/tracking-info/:orderId
func (h *Handler) TrackingInfo(c *gin.Context) {
	if _, ok := h.owned(c, c.Param("orderId")); !ok {
		return
	}
	info, err := h.manager.TrackingInfo(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"trackingInfo": info})
}

// GET /api/order/tracking-history/:orderId
func (h *Handler) TrackingHistory(c *gin.Context) {
	if _, ok := h.owned(c, c.Param("orderId")); !ok {
		return
	}
	events, err := h.manager.History(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"history": events})
}
