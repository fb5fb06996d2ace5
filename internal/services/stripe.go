package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/webhook"

	"dermodazzle_back_end/internal/models"
)

// StripeCheckout crée des sessions de paiement hébergées Stripe.
type StripeCheckout struct {
	currency       string
	deliveryCharge float64
}

func NewStripeCheckout(secretKey, currency string, deliveryCharge float64) *StripeCheckout {
	stripe.Key = secretKey
	return &StripeCheckout{currency: strings.ToLower(currency), deliveryCharge: deliveryCharge}
}

// toMinorUnits convertit un montant en paise (ou centimes).
func toMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *StripeCheckout) lineItems(order *models.Order) []*stripe.CheckoutSessionLineItemParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items)+1)
	for _, it := range order.Items {
		items = append(items, s.lineItem(it.Name, it.Price, int64(it.Quantity)))
	}
	if s.deliveryCharge > 0 {
		items = append(items, s.lineItem("Delivery Charges", s.deliveryCharge, 1))
	}
	return items
}

func (s *StripeCheckout) lineItem(name string, price float64, qty int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(s.currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
			UnitAmount: stripe.Int64(toMinorUnits(price)),
		},
		Quantity: stripe.Int64(qty),
	}
}

// CreateCheckoutSession retourne l'URL de la page de paiement Stripe. Le
// retour se fait sur <origin>/verify avec success et orderId.
func (s *StripeCheckout) CreateCheckoutSession(ctx context.Context, order *models.Order, origin string) (string, error) {
	orderID := order.ID.Hex()
	origin = strings.TrimRight(origin, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(fmt.Sprintf("%s/verify?success=true&orderId=%s", origin, orderID)),
		CancelURL:         stripe.String(fmt.Sprintf("%s/verify?success=false&orderId=%s", origin, orderID)),
		LineItems:         s.lineItems(order),
		ClientReferenceID: stripe.String(orderID),
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)
	params.AddMetadata("userId", order.UserID)

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// CheckoutEvent est le résultat utile d'un webhook Stripe.
type CheckoutEvent struct {
	Type    string
	OrderID string
	Paid    bool
}

var ErrWebhookSecret = errors.New("secret de webhook Stripe non configuré")

// ParseWebhook vérifie la signature et extrait la commande d'un événement
// checkout.session.*. Un secret vide est refusé.
func ParseWebhook(payload []byte, signature, secret string) (*CheckoutEvent, error) {
	if secret == "" {
		return nil, ErrWebhookSecret
	}
	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return nil, fmt.Errorf("événement Stripe invalide: %w", err)
	}

	out := &CheckoutEvent{Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("session Stripe illisible: %w", err)
	}
	out.OrderID = cs.Metadata["orderId"]
	if out.OrderID == "" {
		out.OrderID = cs.ClientReferenceID
	}
	out.Paid = cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	return out, nil
}
