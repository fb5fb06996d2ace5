package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/catalog"
	"dermodazzle_back_end/internal/handlers"
	"dermodazzle_back_end/internal/handlers/order"
	"dermodazzle_back_end/internal/handlers/product"
	"dermodazzle_back_end/internal/handlers/user"
	"dermodazzle_back_end/internal/memstore"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/orders"
	"dermodazzle_back_end/internal/reviews"
	"dermodazzle_back_end/internal/services"
	"dermodazzle_back_end/internal/utils"
)

type quietMailer struct {
	welcomed []string
	tickets  []string
}

func (q *quietMailer) Welcome(email string)                 { q.welcomed = append(q.welcomed, email) }
func (q *quietMailer) TicketReceived(ticket models.Contact) { q.tickets = append(q.tickets, ticket.Subject) }
func (q *quietMailer) OrderPlaced(models.Order)             {}
func (q *quietMailer) OrderStatusChanged(models.Order)      {}

type testApp struct {
	engine   *gin.Engine
	tokens   *utils.TokenIssuer
	products *memstore.Products
	carts    *memstore.Carts
	mailer   *quietMailer
	checkout *fakeCheckout
	secret   string
}

// fakeCheckout retient la dernière commande envoyée à Stripe.
type fakeCheckout struct{ lastOrder string }

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, o *models.Order, origin string) (string, error) {
	f.lastOrder = o.ID.Hex()
	return origin + "/checkout/" + f.lastOrder, nil
}

const testWebhookSecret = "whsec_routes"

func newTestApp(t *testing.T) *testApp {
	return buildTestApp(t, testWebhookSecret)
}

// buildTestApp n'expose le webhook Stripe que si un secret est fourni,
// comme cmd/server.
func buildTestApp(t *testing.T, webhookSecret string) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		tokens:   utils.NewTokenIssuer("test-secret", time.Hour),
		products: memstore.NewProducts(),
		carts:    memstore.NewCarts(),
		mailer:   &quietMailer{},
		checkout: &fakeCheckout{},
		secret:   webhookSecret,
	}
	users := memstore.NewUsers()
	cat := catalog.NewService(app.products)
	manager := orders.NewManager(memstore.NewOrders(), cat, app.carts,
		orders.WithHistory(memstore.NewHistory()),
		orders.WithNotifier(app.mailer),
		orders.WithStripe(app.checkout),
	)
	var webhooks order.WebhookParser
	if webhookSecret != "" {
		webhooks = func(payload []byte, signature string) (*services.CheckoutEvent, error) {
			return services.ParseWebhook(payload, signature, webhookSecret)
		}
	}

	h := Handlers{
		Auth:     user.NewAuthHandler(users, app.tokens, user.AdminCredentials{Email: "admin@dermodazzle.in", Password: "s3cret-admin"}, nil, "http://front"),
		Cart:     user.NewCartHandler(app.carts, cat, app.carts, nil),
		Orders:   order.NewHandler(manager, nil, utils.InvoiceConfig{CompanyName: "DermoDazzle", UPIID: "dd@okaxis"}, webhooks),
		Products: product.NewHandler(cat),
		Reviews:  product.NewReviewHandler(reviews.NewAggregator(memstore.NewReviews(app.products), cat), users),
		Forms:    handlers.NewFormsHandler(memstore.NewSubscribers(), memstore.NewContacts(), app.mailer),
	}
	app.engine = gin.New()
	RegisterRoutes(app.engine, h, Options{Tokens: app.tokens, Limiter: memstore.NewCounters()})
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://front")
	if token != "" {
		req.Header.Set("token", token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (a *testApp) seed(t *testing.T, name string, price float64) string {
	t.Helper()
	p := models.Product{Name: name, Price: price, Images: []string{name + ".png"}}
	require.NoError(t, a.products.Insert(context.Background(), &p))
	return p.ID.Hex()
}

func (a *testApp) register(t *testing.T, name, email string) string {
	t.Helper()
	w, body := a.do(t, http.MethodPost, "/api/user/register",
		gin.H{"name": name, "email": email, "password": "motdepasse"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["token"].(string)
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	w, body := a.do(t, http.MethodPost, "/api/user/admin",
		gin.H{"email": "admin@dermodazzle.in", "password": "s3cret-admin"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	return body["token"].(string)
}

func TestCheckoutFlow(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Niacinamide Serum", 499)
	token := app.register(t, "Asha", "asha@example.in")

	w, _ := app.do(t, http.MethodPost, "/api/cart/add", gin.H{"itemId": serum, "quantity": 2}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := app.do(t, http.MethodGet, "/api/cart/get", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["count"])
	assert.Equal(t, 998.0, body["total"])

	w, body = app.do(t, http.MethodPost, "/api/order/place", gin.H{
		"items":   []gin.H{{"productId": serum, "quantity": 2}},
		"address": gin.H{"city": "Pune", "zipcode": "411001"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := body["orderId"].(string)

	_, body = app.do(t, http.MethodGet, "/api/cart/get", nil, token)
	assert.Equal(t, 0.0, body["count"])

	w, body = app.do(t, http.MethodPost, "/api/order/userorders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := body["orders"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, orderID, list[0].(map[string]any)["_id"])
	assert.Equal(t, 998.0, list[0].(map[string]any)["amount"])
}

func TestLoginAfterRegister(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Asha", "Asha@Example.in")

	w, body := app.do(t, http.MethodPost, "/api/user/login", gin.H{"email": "asha@example.in", "password": "motdepasse"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["token"])

	w, _ = app.do(t, http.MethodPost, "/api/user/login", gin.H{"email": "asha@example.in", "password": "mauvais"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/user/register", gin.H{"name": "Bis", "email": "asha@example.in", "password": "motdepasse"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCartRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	w, body := app.do(t, http.MethodGet, "/api/cart/get", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestAdminTracking(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	other := app.register(t, "Ravi", "ravi@example.in")
	admin := app.adminToken(t)

	_, body := app.do(t, http.MethodPost, "/api/order/place", gin.H{
		"items":   []gin.H{{"productId": serum, "quantity": 1}},
		"address": gin.H{"city": "Delhi"},
	}, token)
	orderID := body["orderId"].(string)

	w, _ := app.do(t, http.MethodPost, "/api/order/status", gin.H{"orderId": orderID, "status": "Packing"}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/order/status", gin.H{"orderId": orderID, "status": "Teleported"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/order/update-tracking", gin.H{"orderId": orderID, "trackingId": "DL123"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/order/update-tracking",
		gin.H{"orderId": orderID, "trackingId": "DL123", "courierPartner": "Delhivery"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body = app.do(t, http.MethodGet, "/api/order/tracking-info/"+orderID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	info := body["trackingInfo"].(map[string]any)
	assert.Equal(t, "Shipped", info["status"])
	assert.Equal(t, "https://www.delhivery.com/track/package/DL123", info["trackingUrl"])

	w, _ = app.do(t, http.MethodGet, "/api/order/tracking-info/"+orderID, nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = app.do(t, http.MethodGet, "/api/order/tracking-history/"+orderID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["history"], 2)
}

func TestInvoiceHTML(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Vitamin C Serum", 650)
	token := app.register(t, "Asha", "asha@example.in")
	_, body := app.do(t, http.MethodPost, "/api/order/place", gin.H{
		"items":   []gin.H{{"productId": serum, "quantity": 1}},
		"address": gin.H{"city": "Mumbai"},
	}, token)

	w, _ := app.do(t, http.MethodGet, "/api/order/invoice/"+body["orderId"].(string), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Vitamin C Serum")
	assert.Contains(t, w.Body.String(), "₹650.00")
}

// stripeEvent construit un événement checkout.session.* ; il est signé
// quand le secret de l'app est connu.
func (a *testApp) stripeEvent(t *testing.T, eventType, orderID string, paid bool) (*httptest.ResponseRecorder, []byte) {
	t.Helper()
	status := "unpaid"
	if paid {
		status = "paid"
	}
	payload := []byte(fmt.Sprintf(`{"id":"evt_test","object":"event","api_version":%q,"type":%q,`+
		`"data":{"object":{"id":"cs_test","payment_status":%q,"metadata":{"orderId":%q}}}}`,
		stripe.APIVersion, eventType, status, orderID))
	req := httptest.NewRequest(http.MethodPost, "/api/order/webhook/stripe", bytes.NewReader(payload))
	if a.secret != "" {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: a.secret})
		req.Header.Set("Stripe-Signature", signed.Header)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w, payload
}

func (a *testApp) placeStripe(t *testing.T, token, productID string) string {
	t.Helper()
	w, _ := a.do(t, http.MethodPost, "/api/order/stripe", gin.H{
		"items":   []gin.H{{"productId": productID, "quantity": 1}},
		"address": gin.H{"city": "Pune"},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return a.checkout.lastOrder
}

func (a *testApp) placeCOD(t *testing.T, token, productID string) string {
	t.Helper()
	w, body := a.do(t, http.MethodPost, "/api/order/place", gin.H{
		"items":   []gin.H{{"productId": productID, "quantity": 1}},
		"address": gin.H{"city": "Pune"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["orderId"].(string)
}

func (a *testApp) firstOrder(t *testing.T, token string) map[string]any {
	t.Helper()
	_, body := a.do(t, http.MethodPost, "/api/order/userorders", nil, token)
	list := body["orders"].([]any)
	require.Len(t, list, 1)
	return list[0].(map[string]any)
}

func TestStripeWebhookMarksPaid(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	orderID := app.placeStripe(t, token, serum)

	w, _ := app.stripeEvent(t, "checkout.session.completed", orderID, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, app.firstOrder(t, token)["payment"])

	w, _ = app.stripeEvent(t, "checkout.session.expired", orderID, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, app.firstOrder(t, token)["payment"])
}

func TestStripeWebhookExpiredDeletesUnpaidOrder(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	orderID := app.placeStripe(t, token, serum)

	w, _ := app.stripeEvent(t, "checkout.session.expired", orderID, false)
	require.Equal(t, http.StatusOK, w.Code)
	_, body := app.do(t, http.MethodPost, "/api/order/userorders", nil, token)
	assert.Empty(t, body["orders"])
}

func TestStripeWebhookRejectsUnsignedEvent(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	orderID := app.placeStripe(t, token, serum)

	_, payload := app.stripeEvent(t, "checkout.session.expired", orderID, false)
	req := httptest.NewRequest(http.MethodPost, "/api/order/webhook/stripe", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, app.firstOrder(t, token)["payment"])
}

func TestStripeWebhookDisabledWithoutSecret(t *testing.T) {
	app := buildTestApp(t, "")
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	orderID := app.placeCOD(t, token, serum)

	w, _ := app.stripeEvent(t, "checkout.session.expired", orderID, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	app.firstOrder(t, token)
}

func TestStripeWebhookLeavesCODOrder(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	orderID := app.placeCOD(t, token, serum)

	w, _ := app.stripeEvent(t, "checkout.session.expired", orderID, false)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = app.stripeEvent(t, "checkout.session.completed", orderID, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, app.firstOrder(t, token)["payment"])
}

func TestVerifyStripeRejectsCODOrder(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	orderID := app.placeCOD(t, token, serum)

	w, _ := app.do(t, http.MethodPost, "/api/order/verifyStripe", gin.H{"orderId": orderID, "success": "true"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/order/verifyStripe", gin.H{"orderId": orderID, "success": "false"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, app.firstOrder(t, token)["payment"])
}

func TestVerifyStripeFailureKeepsPaidOrder(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	orderID := app.placeStripe(t, token, serum)

	w, body := app.do(t, http.MethodPost, "/api/order/verifyStripe", gin.H{"orderId": orderID, "success": true}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	w, body = app.do(t, http.MethodPost, "/api/order/verifyStripe", gin.H{"orderId": orderID, "success": false}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, app.firstOrder(t, token)["payment"])
}

func TestReviewsAggregate(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	asha := app.register(t, "Asha", "asha@example.in")
	ravi := app.register(t, "Ravi", "ravi@example.in")

	w, _ := app.do(t, http.MethodPost, "/api/reviews/"+serum, gin.H{"rating": 5, "comment": "Superbe"}, asha)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = app.do(t, http.MethodPost, "/api/reviews/"+serum, gin.H{"rating": 4, "comment": "Très bien"}, ravi)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/reviews/"+serum, gin.H{"rating": 1, "comment": "Encore"}, asha)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/reviews/"+serum, gin.H{"rating": 6, "comment": "Trop"}, ravi)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, body := app.do(t, http.MethodPost, "/api/product/single", gin.H{"productId": serum}, "")
	p := body["product"].(map[string]any)
	assert.Equal(t, 4.5, p["rating"])
	assert.Equal(t, 2.0, p["reviewCount"])

	_, body = app.do(t, http.MethodGet, "/api/reviews/"+serum, nil, "")
	list := body["reviews"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "Ravi", list[0].(map[string]any)["name"])

	admin := app.adminToken(t)
	for _, r := range list {
		id := r.(map[string]any)["_id"].(string)
		w, _ = app.do(t, http.MethodDelete, "/api/reviews/"+id, nil, admin)
		require.Equal(t, http.StatusOK, w.Code)
	}
	_, body = app.do(t, http.MethodPost, "/api/product/single", gin.H{"productId": serum}, "")
	p = body["product"].(map[string]any)
	assert.Equal(t, 0.0, p["rating"])
	assert.Equal(t, 0.0, p["reviewCount"])
}

func TestNewsletterAndContact(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodPost, "/api/subscribe", gin.H{"email": "pas-un-email"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/subscribe", gin.H{"email": "Priya@Example.in"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/subscribe", gin.H{"email": "priya@example.in"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []string{"priya@example.in"}, app.mailer.welcomed)

	w, _ = app.do(t, http.MethodPost, "/api/contact/submit", gin.H{
		"email": "priya@example.in", "subject": "Colis abîmé", "message": "Le flacon est cassé", "issueType": "refund",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := app.do(t, http.MethodPost, "/api/contact/submit", gin.H{
		"email": "priya@example.in", "subject": "Colis abîmé", "message": "Le flacon est cassé", "issueType": "return",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, body["ticketId"])

	_, body = app.do(t, http.MethodGet, "/api/contact", nil, app.adminToken(t))
	assert.Len(t, body["contacts"], 1)
}

func TestCartUpdateRejectsUnknownProduct(t *testing.T) {
	app := newTestApp(t)
	serum := app.seed(t, "Serum", 100)
	token := app.register(t, "Asha", "asha@example.in")
	ghost := primitive.NewObjectID().Hex()

	w, _ := app.do(t, http.MethodPost, "/api/cart/update", gin.H{"itemId": ghost, "quantity": 3}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/cart/update", gin.H{"itemId": serum, "quantity": 3}, token)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/cart/update", gin.H{"itemId": ghost, "quantity": 0}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	_, body := app.do(t, http.MethodGet, "/api/cart/get", nil, token)
	assert.Equal(t, map[string]any{serum: 3.0}, body["cartData"])
}

func TestSubscribeRejectsMalformedBody(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email": `))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Empty(t, app.mailer.welcomed)
}

func TestSubscribeRateLimited(t *testing.T) {
	app := newTestApp(t)
	codes := []int{}
	for i := 0; i < 6; i++ {
		w, _ := app.do(t, http.MethodPost, "/api/subscribe", gin.H{"email": "x" + string(rune('a'+i)) + "@example.in"}, "")
		codes = append(codes, w.Code)
	}
	assert.Equal(t, http.StatusCreated, codes[4])
	assert.Equal(t, http.StatusTooManyRequests, codes[5])
}
