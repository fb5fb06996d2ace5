package order

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/utils"
)

// POST /api/order/stripe
func (h *Handler) PlaceStripe(c *gin.Context) {
	req, ok := h.placeRequest(c)
	if !ok {
		return
	}
	origin := c.GetHeader("Origin")
	if origin == "" {
		utils.BadRequest(c, "En-tête Origin requis")
		return
	}
	_, url, err := h.manager.PlaceStripe(c.Request.Context(), req, origin)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"session_url": url})
}

// POST /api/order/razorpay
func (h *Handler) PlaceRazorpay(c *gin.Context) {
	req, ok := h.placeRequest(c)
	if !ok {
		return
	}
	_, gatewayOrder, err := h.manager.PlaceRazorpay(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"order": gatewayOrder})
}

// POST /api/order/verifyStripe
func (h *Handler) VerifyStripe(c *gin.Context) {
	var input struct {
		OrderID string   `json:"orderId" binding:"required"`
		Success flexBool `json:"success"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "orderId et success requis")
		return
	}
	paid, err := h.manager.VerifyStripe(c.Request.Context(), input.OrderID, c.GetString("user_id"), bool(input.Success))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": paid, "message": paymentMessage(paid)})
}

// POST /api/order/verifyRazorpay
func (h *Handler) VerifyRazorpay(c *gin.Context) {
	var input struct {
		RazorpayOrderID string `json:"razorpay_order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "razorpay_order_id requis")
		return
	}
	paid, err := h.manager.VerifyRazorpay(c.Request.Context(), c.GetString("user_id"), input.RazorpayOrderID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": paid, "message": paymentMessage(paid)})
}

func paymentMessage(paid bool) string {
	if paid {
		return "Paiement confirmé"
	}
	return "Paiement échoué"
}

// POST /api/order/webhook/stripe : confirme le paiement même si le client
// ne revient jamais sur la page de vérification.
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.webhooks == nil {
		c.Status(http.StatusNotFound)
		return
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		utils.BadRequest(c, "Corps illisible")
		return
	}
	event, err := h.webhooks(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("❌ Webhook Stripe rejeté: %v", err)
		utils.BadRequest(c, "Signature invalide")
		return
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		if event.OrderID == "" || !event.Paid {
			break
		}
		if _, err := h.manager.VerifyStripe(c.Request.Context(), event.OrderID, "", true); err != nil {
			utils.Fail(c, err)
			return
		}
		log.Printf("💳 Webhook Stripe: commande %s payée", event.OrderID)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		if event.OrderID == "" {
			break
		}
		if _, err := h.manager.VerifyStripe(c.Request.Context(), event.OrderID, "", false); err != nil {
			log.Printf("⚠️ Webhook Stripe %s: %v", event.Type, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
