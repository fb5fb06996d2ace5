package order

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/utils"
)

// GET /api/order/invoice/:orderId ; ?format=html renvoie la page avant impression.
func (h *Handler) Invoice(c *gin.Context) {
	order, ok := h.owned(c, c.Param("orderId"))
	if !ok {
		return
	}
	html, err := utils.RenderInvoiceHTML(*order, h.invoice)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if h.printer == nil || c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	pdf, err := h.printer.Print(c.Request.Context(), html)
	if err != nil {
		log.Printf("❌ Facture %s: %v", order.ID.Hex(), err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Génération de la facture impossible"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="facture_%s.pdf"`, utils.InvoiceNumber(*order)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
