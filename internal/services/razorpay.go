package services

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/orders"
)

// RazorpayGateway crée et relit les ordres de paiement Razorpay.
type RazorpayGateway struct {
	client   *razorpay.Client
	currency string
}

func NewRazorpayGateway(keyID, keySecret, currency string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret), currency: strings.ToUpper(currency)}
}

// CreateOrder crée l'ordre Razorpay ; le reçu porte l'ID de la commande.
func (g *RazorpayGateway) CreateOrder(_ context.Context, order *models.Order) (map[string]any, error) {
	data := map[string]interface{}{
		"amount":   toMinorUnits(order.Amount),
		"currency": g.currency,
		"receipt":  order.ID.Hex(),
	}
	return g.client.Order.Create(data, nil)
}

func (g *RazorpayGateway) FetchOrder(_ context.Context, gatewayOrderID string) (*orders.GatewayOrder, error) {
	info, err := g.client.Order.Fetch(gatewayOrderID, nil, nil)
	if err != nil {
		return nil, err
	}
	return gatewayOrder(info)
}

func gatewayOrder(info map[string]interface{}) (*orders.GatewayOrder, error) {
	id, _ := info["id"].(string)
	status, _ := info["status"].(string)
	receipt, _ := info["receipt"].(string)
	if id == "" || receipt == "" {
		return nil, fmt.Errorf("réponse Razorpay incomplète")
	}
	return &orders.GatewayOrder{ID: id, Status: status, Receipt: receipt}, nil
}
