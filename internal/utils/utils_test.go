package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/orders"
)

type sentMail struct {
	to, subject, html string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (r *recordingSender) Send(_ context.Context, to, subject, html string, _ ...Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{to, subject, html})
	return r.err
}

type usersByID map[string]*models.User

func (u usersByID) Get(_ context.Context, id string) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("Utilisateur introuvable")
}

func sampleOrder() models.Order {
	return models.Order{
		ID:     primitive.NewObjectID(),
		UserID: "u1",
		Items: []models.OrderItem{
			{Name: "Niacinamide Serum", Price: 499, Quantity: 2},
		},
		Amount:        998,
		Status:        orders.StatusPlaced,
		PaymentMethod: orders.MethodCOD,
		Address:       models.Address{"city": "Pune"},
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹998.00", FormatINR(998))
	assert.Equal(t, "₹0.30", FormatINR(0.1+0.2))
}

func TestOrderConfirmationHTML(t *testing.T) {
	html, err := OrderConfirmationHTML(sampleOrder())
	require.NoError(t, err)
	assert.Contains(t, html, "Niacinamide Serum")
	assert.Contains(t, html, "₹499.00")
	assert.Contains(t, html, "₹998.00")
}

func TestOrderStatusHTMLIncludesTracking(t *testing.T) {
	order := sampleOrder()
	order.Status = orders.StatusShipped
	order.TrackingID = "BD123"
	order.CourierPartner = "Blue Dart"

	html, err := OrderStatusHTML(order)
	require.NoError(t, err)
	assert.Contains(t, html, "BD123")
	assert.Contains(t, html, "bluedart.com")
	assert.Contains(t, statusEmailSubject(order.Status), "expédiée")
}

func TestRenderInvoiceHTMLAddsQRWhenUnpaid(t *testing.T) {
	cfg := InvoiceConfig{CompanyName: "DermoDazzle", UPIID: "dermodazzle@okaxis"}
	order := sampleOrder()

	html, err := RenderInvoiceHTML(order, cfg)
	require.NoError(t, err)
	assert.Contains(t, html, "data:image/png;base64,")
	assert.Contains(t, html, InvoiceNumber(order))

	order.Payment = true
	html, err = RenderInvoiceHTML(order, cfg)
	require.NoError(t, err)
	assert.NotContains(t, html, "data:image/png;base64,")
}

func TestUPIPaymentURI(t *testing.T) {
	uri := UPIPaymentURI("shop@okaxis", "Dermo Dazzle", 998, "DD-1")
	assert.Equal(t, "upi://pay?pa=shop%40okaxis&pn=Dermo%20Dazzle&am=998.00&cu=INR&tn=DD-1", uri)
}

func TestNotificationsOrderFlow(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifications(sender, usersByID{"u1": {Email: "asha@example.in"}}, "support@dermodazzle.in", "https://dermodazzle.in")

	order := sampleOrder()
	n.OrderPlaced(order)
	order.Status = orders.StatusDelivered
	n.OrderStatusChanged(order)
	n.Wait()

	require.Len(t, sender.sent, 2)
	for _, m := range sender.sent {
		assert.Equal(t, "asha@example.in", m.to)
	}
}

func TestNotificationsSwallowFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	n := NewNotifications(sender, usersByID{}, "support@dermodazzle.in", "")

	ticket := models.Contact{ID: primitive.NewObjectID(), Email: "a@b.in", Subject: "Colis abîmé", IssueType: "return", Message: "Bonjour"}
	n.TicketReceived(ticket)
	n.OrderPlaced(sampleOrder())
	n.Wait()

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "a@b.in", sender.sent[0].to)
	assert.Equal(t, "support@dermodazzle.in", sender.sent[1].to)
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue("u1", "a@b.in", RoleAdmin)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = NewTokenIssuer("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute)
	token, err := issuer.Issue("u1", "a@b.in", RoleUser)
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = issuer.Parse("")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestPasswordArgon2(t *testing.T) {
	hash, err := HashPassword("motdepasse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.False(t, NeedsRehash(hash))

	ok, err := VerifyPassword("motdepasse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "pas-un-hash")
	assert.Error(t, err)
}

func TestPasswordLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("ancien"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword("ancien", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, NeedsRehash(string(legacy)))

	ok, err = VerifyPassword("autre", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]struct {
		err    error
		status int
		msg    string
	}{
		"validation": {apperr.Validation("Quantité invalide"), http.StatusBadRequest, "Quantité invalide"},
		"internal":   {errors.New("mongo: boom"), http.StatusInternalServerError, "Erreur serveur"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			Fail(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"`+tc.msg+`"}`, w.Body.String())
		})
	}
}
