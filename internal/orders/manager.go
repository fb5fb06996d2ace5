// Package orders gère le cycle de vie d'une commande : placement, vérification
// du paiement, statut de livraison et suivi transporteur.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/cart"
	"dermodazzle_back_end/internal/models"
)

type Store interface {
	Insert(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	SetPayment(ctx context.Context, id string, paid bool) error
	SetStatus(ctx context.Context, id, status string) error
	SetTracking(ctx context.Context, id, trackingID, courier, status string) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

type Catalog interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// StripeGateway crée une session de paiement hébergée et retourne son URL.
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, order *models.Order, origin string) (string, error)
}

type GatewayOrder struct {
	ID      string
	Status  string
	Receipt string
}

type RazorpayGateway interface {
	CreateOrder(ctx context.Context, order *models.Order) (map[string]any, error)
	FetchOrder(ctx context.Context, gatewayOrderID string) (*GatewayOrder, error)
}

// History conserve les événements de suivi d'une commande.
type History interface {
	Record(ctx context.Context, ev models.TrackingEvent) error
	List(ctx context.Context, orderID string) ([]models.TrackingEvent, error)
}

// Notifier prévient le client ; ses méthodes ne doivent pas bloquer.
type Notifier interface {
	OrderPlaced(order models.Order)
	OrderStatusChanged(order models.Order)
}

type LineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type PlaceRequest struct {
	UserID  string
	Items   []LineRequest
	Address models.Address
}

type Manager struct {
	store    Store
	catalog  Catalog
	carts    CartClearer
	stripe   StripeGateway
	razorpay RazorpayGateway
	history  History
	notifier Notifier
	now      func() time.Time
}

type Option func(*Manager)

func WithStripe(g StripeGateway) Option { return func(m *Manager) { m.stripe = g } }
func WithRazorpay(g RazorpayGateway) Option { return func(m *Manager) { m.razorpay = g } }
func WithHistory(h History) Option { return func(m *Manager) { m.history = h } }
func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notifier = n } }
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(store Store, catalog Catalog, carts CartClearer, opts ...Option) *Manager {
	m := &Manager{store: store, catalog: catalog, carts: carts, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// build valide la demande et fige les produits du catalogue dans la commande.
func (m *Manager) build(ctx context.Context, req PlaceRequest, method string) (*models.Order, error) {
	if req.UserID == "" {
		return nil, apperr.Unauthorized("Utilisateur non authentifié")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("Panier vide")
	}
	if len(req.Address) == 0 {
		return nil, apperr.Validation("Adresse de livraison requise")
	}

	seen := make(map[string]bool, len(req.Items))
	items := make([]models.OrderItem, 0, len(req.Items))
	amount := decimal.Zero

	for _, line := range req.Items {
		if line.ProductID == "" {
			return nil, apperr.Validation("ID produit manquant")
		}
		if seen[line.ProductID] {
			return nil, apperr.Validation("Produit en double: " + line.ProductID)
		}
		seen[line.ProductID] = true
		if line.Quantity < cart.MinQuantity || line.Quantity > cart.MaxQuantity {
			return nil, apperr.Validation(fmt.Sprintf("Quantité invalide pour %s (1 à %d)", line.ProductID, cart.MaxQuantity))
		}

		product, err := m.catalog.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("Produit introuvable: " + line.ProductID)
			}
			return nil, fmt.Errorf("lecture produit %s: %w", line.ProductID, err)
		}

		images := make([]string, len(product.Images))
		copy(images, product.Images)
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Images:    images,
			SkinType:  product.SkinType,
			Volume:    product.Volume,
		})
		amount = amount.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	now := m.now()
	return &models.Order{
		UserID:        req.UserID,
		Items:         items,
		Amount:        amount.InexactFloat64(),
		Address:       req.Address,
		Status:        StatusPlaced,
		PaymentMethod: method,
		Payment:       false,
		Date:          now.UnixMilli(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (m *Manager) insert(ctx context.Context, req PlaceRequest, method string) (*models.Order, error) {
	order, err := m.build(ctx, req, method)
	if err != nil {
		return nil, err
	}
	if err := m.store.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insertion commande: %w", err)
	}
	m.record(ctx, order.ID.Hex(), models.EventPlaced, StatusPlaced, "", "", order.UserID)
	log.Printf("🛍️ Commande %s créée (%s, %.2f) pour %s", order.ID.Hex(), method, order.Amount, order.UserID)
	return order, nil
}

// PlaceCOD crée une commande payable à la livraison et vide le panier.
func (m *Manager) PlaceCOD(ctx context.Context, req PlaceRequest) (*models.Order, error) {
	order, err := m.insert(ctx, req, MethodCOD)
	if err != nil {
		return nil, err
	}
	m.clearCart(ctx, order.UserID)
	m.notify(order)
	return order, nil
}

// PlaceStripe crée la commande puis la session Stripe. Si Stripe échoue,
// la commande reste en attente de paiement.
func (m *Manager) PlaceStripe(ctx context.Context, req PlaceRequest, origin string) (*models.Order, string, error) {
	if m.stripe == nil {
		return nil, "", apperr.Upstream("Paiement Stripe indisponible", errors.New("passerelle non configurée"))
	}
	order, err := m.insert(ctx, req, MethodStripe)
	if err != nil {
		return nil, "", err
	}
	sessionURL, err := m.stripe.CreateCheckoutSession(ctx, order, origin)
	if err != nil {
		log.Printf("❌ Erreur Stripe pour commande %s: %v", order.ID.Hex(), err)
		return order, "", apperr.Upstream("Erreur création paiement", err)
	}
	log.Printf("💳 Session Stripe créée pour commande %s", order.ID.Hex())
	return order, sessionURL, nil
}

// PlaceRazorpay crée la commande puis l'ordre de paiement Razorpay.
func (m *Manager) PlaceRazorpay(ctx context.Context, req PlaceRequest) (*models.Order, map[string]any, error) {
	if m.razorpay == nil {
		return nil, nil, apperr.Upstream("Paiement Razorpay indisponible", errors.New("passerelle non configurée"))
	}
	order, err := m.insert(ctx, req, MethodRazorpay)
	if err != nil {
		return nil, nil, err
	}
	gatewayOrder, err := m.razorpay.CreateOrder(ctx, order)
	if err != nil {
		log.Printf("❌ Erreur Razorpay pour commande %s: %v", order.ID.Hex(), err)
		return order, nil, apperr.Upstream("Erreur création paiement", err)
	}
	log.Printf("💳 Ordre Razorpay créé pour commande %s", order.ID.Hex())
	return order, gatewayOrder, nil
}

// VerifyStripe applique le retour de Stripe sur une commande Stripe :
// succès → payée et panier vidé (rejouable sans effet de bord), échec →
// la commande impayée est supprimée. Une commande déjà payée n'est jamais
// supprimée.
func (m *Manager) VerifyStripe(ctx context.Context, orderID, userID string, success bool) (bool, error) {
	order, err := m.gatewayOrder(ctx, orderID, userID, MethodStripe)
	if err != nil {
		return false, err
	}

	if !success {
		if order.Payment {
			log.Printf("⚠️ Échec Stripe ignoré, commande %s déjà payée", orderID)
			return false, nil
		}
		if err := m.store.Delete(ctx, orderID); err != nil {
			return false, fmt.Errorf("suppression commande impayée: %w", err)
		}
		m.record(ctx, orderID, models.EventPaymentFailed, "", "", "", order.UserID)
		log.Printf("🗑️ Paiement Stripe annulé, commande %s supprimée", orderID)
		return false, nil
	}

	if err := m.store.SetPayment(ctx, orderID, true); err != nil {
		return false, err
	}
	m.clearCart(ctx, order.UserID)
	if !order.Payment {
		m.record(ctx, orderID, models.EventPaymentOK, "", "", "", order.UserID)
		m.notify(order)
	}
	log.Printf("✅ Paiement Stripe confirmé pour commande %s", orderID)
	return true, nil
}

// VerifyRazorpay interroge Razorpay ; seul le statut "paid" valide la commande.
func (m *Manager) VerifyRazorpay(ctx context.Context, userID, gatewayOrderID string) (bool, error) {
	if m.razorpay == nil {
		return false, apperr.Upstream("Paiement Razorpay indisponible", errors.New("passerelle non configurée"))
	}
	if gatewayOrderID == "" {
		return false, apperr.Validation("razorpay_order_id requis")
	}
	info, err := m.razorpay.FetchOrder(ctx, gatewayOrderID)
	if err != nil {
		return false, apperr.Upstream("Erreur vérification paiement", err)
	}
	order, err := m.gatewayOrder(ctx, info.Receipt, userID, MethodRazorpay)
	if err != nil {
		return false, err
	}
	if info.Status != "paid" {
		if !order.Payment {
			m.record(ctx, info.Receipt, models.EventPaymentFailed, "", "", "", order.UserID)
		}
		return false, nil
	}

	if err := m.store.SetPayment(ctx, info.Receipt, true); err != nil {
		return false, err
	}
	m.clearCart(ctx, order.UserID)
	if !order.Payment {
		m.record(ctx, info.Receipt, models.EventPaymentOK, "", "", "", order.UserID)
		m.notify(order)
	}
	log.Printf("✅ Paiement Razorpay confirmé pour commande %s", info.Receipt)
	return true, nil
}

// gatewayOrder charge une commande à vérifier : elle doit appartenir à
// userID (vide pour un appel système) et avoir été passée par method.
func (m *Manager) gatewayOrder(ctx context.Context, orderID, userID, method string) (*models.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperr.Validation("ID commande requis")
	}
	order, err := m.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && order.UserID != userID {
		return nil, apperr.NotFound("Commande introuvable")
	}
	if order.PaymentMethod != method {
		return nil, apperr.Validation("Commande non payable par " + method)
	}
	return order, nil
}

// UpdateStatus fixe n'importe quel statut connu, sans contrôle d'ordre.
func (m *Manager) UpdateStatus(ctx context.Context, orderID, status, actor string) error {
	if orderID == "" {
		return apperr.Validation("ID commande requis")
	}
	if !ValidStatus(status) {
		return apperr.Validation("Statut invalide: " + status)
	}
	if err := m.store.SetStatus(ctx, orderID, status); err != nil {
		return err
	}
	m.record(ctx, orderID, models.EventStatusChanged, status, "", "", actor)
	log.Printf("📦 Statut commande %s → %s", orderID, status)
	if m.notifier != nil {
		if order, err := m.store.Get(ctx, orderID); err == nil {
			m.notifier.OrderStatusChanged(*order)
		}
	}
	return nil
}

// UpdateTracking enregistre le suivi et passe la commande en "Shipped",
// quel que soit son statut précédent.
func (m *Manager) UpdateTracking(ctx context.Context, orderID, trackingID, courierPartner, actor string) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	trackingID = strings.TrimSpace(trackingID)
	courierPartner = strings.TrimSpace(courierPartner)
	if orderID == "" || trackingID == "" || courierPartner == "" {
		return nil, apperr.Validation("ID commande, numéro de suivi et transporteur requis")
	}

	order, err := m.store.SetTracking(ctx, orderID, trackingID, courierPartner, StatusShipped)
	if err != nil {
		return nil, err
	}
	m.record(ctx, orderID, models.EventTrackingUpdate, StatusShipped, trackingID, courierPartner, actor)
	log.Printf("🚚 Suivi commande %s: %s (%s)", orderID, trackingID, courierPartner)
	if m.notifier != nil {
		m.notifier.OrderStatusChanged(*order)
	}
	return order, nil
}

func (m *Manager) TrackingInfo(ctx context.Context, orderID string) (*models.TrackingInfo, error) {
	order, err := m.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &models.TrackingInfo{
		TrackingID:     order.TrackingID,
		CourierPartner: order.CourierPartner,
		TrackingURL:    TrackingURL(order.CourierPartner, order.TrackingID),
		Status:         order.Status,
		LastUpdated:    order.UpdatedAt,
	}, nil
}

func (m *Manager) History(ctx context.Context, orderID string) ([]models.TrackingEvent, error) {
	if _, err := m.store.Get(ctx, orderID); err != nil {
		return nil, err
	}
	if m.history == nil {
		return []models.TrackingEvent{}, nil
	}
	return m.history.List(ctx, orderID)
}

func (m *Manager) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return m.store.Get(ctx, orderID)
}

func (m *Manager) All(ctx context.Context) ([]models.Order, error) {
	return m.store.List(ctx)
}

func (m *Manager) ForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return m.store.ListByUser(ctx, userID)
}

func (m *Manager) clearCart(ctx context.Context, userID string) {
	if m.carts == nil || userID == "" {
		return
	}
	if err := m.carts.Clear(ctx, userID); err != nil {
		log.Printf("⚠️ Impossible de vider le panier de %s: %v", userID, err)
		return
	}
	log.Printf("🧹 Panier vidé pour %s", userID)
}

func (m *Manager) notify(order *models.Order) {
	if m.notifier == nil {
		return
	}
	m.notifier.OrderPlaced(*order)
}

// record ajoute un événement à l'historique ; un échec est seulement journalisé.
func (m *Manager) record(ctx context.Context, orderID, kind, status, trackingID, courierPartner, actor string) {
	if m.history == nil || orderID == "" {
		return
	}
	ev := models.TrackingEvent{
		ID:             gocql.TimeUUID(),
		OrderID:        orderID,
		Kind:           kind,
		Status:         status,
		TrackingID:     trackingID,
		CourierPartner: courierPartner,
		Actor:          actor,
		CreatedAt:      m.now(),
	}
	if err := m.history.Record(ctx, ev); err != nil {
		log.Printf("⚠️ Historique de suivi non enregistré pour %s: %v", orderID, err)
	}
}
