// Package order expose le cycle de vie des commandes : placement, paiement,
// statut, suivi et facture.
package order

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/orders"
	"dermodazzle_back_end/internal/services"
	"dermodazzle_back_end/internal/utils"
)

// WebhookParser vérifie et décode un événement Stripe.
type WebhookParser func(payload []byte, signature string) (*services.CheckoutEvent, error)

type Handler struct {
	manager  *orders.Manager
	printer  utils.PDFPrinter
	invoice  utils.InvoiceConfig
	webhooks WebhookParser
}

func NewHandler(manager *orders.Manager, printer utils.PDFPrinter, invoice utils.InvoiceConfig, webhooks WebhookParser) *Handler {
	return &Handler{manager: manager, printer: printer, invoice: invoice, webhooks: webhooks}
}

type placeBody struct {
	Items   []orders.LineRequest `json:"items" binding:"required,dive"`
	Address models.Address       `json:"address" binding:"required"`
}

func (h *Handler) placeRequest(c *gin.Context) (orders.PlaceRequest, bool) {
	var body placeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Articles et adresse de livraison requis")
		return orders.PlaceRequest{}, false
	}
	return orders.PlaceRequest{
		UserID:  c.GetString("user_id"),
		Items:   body.Items,
		Address: body.Address,
	}, true
}

// POST /api/order/place (paiement à la livraison)
func (h *Handler) PlaceCOD(c *gin.Context) {
	req, ok := h.placeRequest(c)
	if !ok {
		return
	}
	order, err := h.manager.PlaceCOD(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusCreated, gin.H{"message": "Commande enregistrée", "orderId": order.ID.Hex()})
}

// POST /api/order/userorders
func (h *Handler) UserOrders(c *gin.Context) {
	list, err := h.manager.ForUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"orders": list})
}

// POST /api/order/list (admin)
func (h *Handler) List(c *gin.Context) {
	list, err := h.manager.All(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"orders": list})
}

// POST /api/order/status (admin)
func (h *Handler) UpdateStatus(c *gin.Context) {
	var input struct {
		OrderID string `json:"orderId" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "orderId et status requis")
		return
	}
	if err := h.manager.UpdateStatus(c.Request.Context(), input.OrderID, input.Status, c.GetString("email")); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"message": "Statut mis à jour"})
}

// owned charge la commande si elle appartient à l'utilisateur (ou pour un admin).
func (h *Handler) owned(c *gin.Context, orderID string) (*models.Order, bool) {
	order, err := h.manager.Get(c.Request.Context(), orderID)
	if err == nil && c.GetString("role") != utils.RoleAdmin && order.UserID != c.GetString("user_id") {
		err = apperr.NotFound("Commande introuvable")
	}
	if err != nil {
		utils.Fail(c, err)
		return nil, false
	}
	return order, true
}

// flexBool accepte true, "true", false et "false" : la page de retour
// Stripe renvoie le paramètre de query tel quel.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(bytes.ReplaceAll(data, []byte(`"`), nil), &v); err != nil {
		return apperr.Validation("success doit valoir true ou false")
	}
	*b = flexBool(v)
	return nil
}
