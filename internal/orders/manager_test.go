package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeStore() *fakeStore { return &fakeStore{orders: map[string]*models.Order{}} }

func (s *fakeStore) Insert(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = primitive.NewObjectID()
	cp := *o
	s.orders[o.ID.Hex()] = &cp
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.NotFound("Commande introuvable")
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) SetPayment(_ context.Context, id string, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return apperr.NotFound("Commande introuvable")
	}
	o.Payment = paid
	return nil
}

func (s *fakeStore) SetStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return apperr.NotFound("Commande introuvable")
	}
	o.Status = status
	return nil
}

func (s *fakeStore) SetTracking(_ context.Context, id, trackingID, courier, status string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.NotFound("Commande introuvable")
	}
	o.TrackingID, o.CourierPartner, o.Status = trackingID, courier, status
	cp := *o
	return &cp, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

func (s *fakeStore) List(context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	all, _ := s.List(context.Background())
	out := []models.Order{}
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeCatalog map[string]*models.Product

func (c fakeCatalog) Get(_ context.Context, id string) (*models.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, apperr.NotFound("Produit introuvable")
	}
	cp := *p
	return &cp, nil
}

type fakeCarts struct{ cleared []string }

func (c *fakeCarts) Clear(_ context.Context, userID string) error {
	c.cleared = append(c.cleared, userID)
	return nil
}

type fakeStripe struct {
	err    error
	origin string
}

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, o *models.Order, origin string) (string, error) {
	f.origin = origin
	if f.err != nil {
		return "", f.err
	}
	return "https://checkout.stripe.test/" + o.ID.Hex(), nil
}

type fakeRazorpay struct {
	status string
	orders map[string]string
}

func (f *fakeRazorpay) CreateOrder(_ context.Context, o *models.Order) (map[string]any, error) {
	id := "order_" + o.ID.Hex()
	f.orders[id] = o.ID.Hex()
	return map[string]any{"id": id, "amount": o.Amount * 100, "receipt": o.ID.Hex()}, nil
}

func (f *fakeRazorpay) FetchOrder(_ context.Context, id string) (*GatewayOrder, error) {
	receipt, ok := f.orders[id]
	if !ok {
		return nil, errors.New("BAD_REQUEST_ERROR")
	}
	return &GatewayOrder{ID: id, Status: f.status, Receipt: receipt}, nil
}

type fakeHistory struct {
	mu     sync.Mutex
	events []models.TrackingEvent
}

func (h *fakeHistory) Record(_ context.Context, ev models.TrackingEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return nil
}

func (h *fakeHistory) List(_ context.Context, orderID string) ([]models.TrackingEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []models.TrackingEvent{}
	for _, ev := range h.events {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type countingNotifier struct {
	placed   int
	statuses []string
}

func (n *countingNotifier) OrderPlaced(models.Order) { n.placed++ }
func (n *countingNotifier) OrderStatusChanged(o models.Order) {
	n.statuses = append(n.statuses, o.Status)
}

type fixture struct {
	store    *fakeStore
	catalog  fakeCatalog
	carts    *fakeCarts
	stripe   *fakeStripe
	razorpay *fakeRazorpay
	history  *fakeHistory
	notifier *countingNotifier
	manager  *Manager
}

func newFixture() *fixture {
	f := &fixture{
		store: newFakeStore(),
		catalog: fakeCatalog{
			"serum": {Name: "Niacinamide Serum", Price: 100, Images: []string{"serum.png"}, SkinType: "Oily"},
			"toner": {Name: "Rose Toner", Price: 50},
		},
		carts:    &fakeCarts{},
		stripe:   &fakeStripe{},
		razorpay: &fakeRazorpay{status: "paid", orders: map[string]string{}},
		history:  &fakeHistory{},
		notifier: &countingNotifier{},
	}
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.manager = NewManager(f.store, f.catalog, f.carts,
		WithStripe(f.stripe),
		WithRazorpay(f.razorpay),
		WithHistory(f.history),
		WithNotifier(f.notifier),
		WithClock(func() time.Time { return fixed }),
	)
	return f
}

func placeRequest() PlaceRequest {
	return PlaceRequest{
		UserID:  "alice",
		Items:   []LineRequest{{ProductID: "serum", Quantity: 2}, {ProductID: "toner", Quantity: 1}},
		Address: models.Address{"city": "Pune", "zipcode": "411001"},
	}
}

func TestPlaceCODSnapshotsCatalog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	order, err := f.manager.PlaceCOD(ctx, placeRequest())
	require.NoError(t, err)

	assert.Equal(t, 250.0, order.Amount)
	assert.Equal(t, StatusPlaced, order.Status)
	assert.Equal(t, MethodCOD, order.PaymentMethod)
	assert.False(t, order.Payment)
	assert.Equal(t, []string{"alice"}, f.carts.cleared)
	assert.Equal(t, 1, f.notifier.placed)

	f.catalog["serum"].Price = 999
	stored, err := f.manager.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 250.0, stored.Amount)
	assert.Equal(t, 100.0, stored.Items[0].Price)
	assert.Equal(t, "Niacinamide Serum", stored.Items[0].Name)
}

func TestPlaceRejectsBadRequests(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := map[string]PlaceRequest{
		"empty":     {UserID: "alice", Address: models.Address{"city": "Pune"}},
		"unknown":   {UserID: "alice", Items: []LineRequest{{ProductID: "ghost", Quantity: 1}}, Address: models.Address{"city": "Pune"}},
		"quantity":  {UserID: "alice", Items: []LineRequest{{ProductID: "serum", Quantity: 101}}, Address: models.Address{"city": "Pune"}},
		"duplicate": {UserID: "alice", Items: []LineRequest{{ProductID: "serum", Quantity: 1}, {ProductID: "serum", Quantity: 2}}, Address: models.Address{"city": "Pune"}},
		"address":   {UserID: "alice", Items: []LineRequest{{ProductID: "serum", Quantity: 1}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.manager.PlaceCOD(ctx, req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.carts.cleared)
}

func TestPlaceRequiresUser(t *testing.T) {
	f := newFixture()
	req := placeRequest()
	req.UserID = ""
	_, err := f.manager.PlaceCOD(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestPlaceStripeReturnsSessionURL(t *testing.T) {
	f := newFixture()
	order, url, err := f.manager.PlaceStripe(context.Background(), placeRequest(), "https://shop.test")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/"+order.ID.Hex(), url)
	assert.Equal(t, "https://shop.test", f.stripe.origin)
	assert.Empty(t, f.carts.cleared)
	assert.Equal(t, 0, f.notifier.placed)
}

func TestPlaceStripeFailureKeepsOrder(t *testing.T) {
	f := newFixture()
	f.stripe.err = errors.New("api down")
	order, _, err := f.manager.PlaceStripe(context.Background(), placeRequest(), "https://shop.test")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	require.NotNil(t, order)
	_, err = f.manager.Get(context.Background(), order.ID.Hex())
	assert.NoError(t, err)
}

func TestVerifyStripeSuccessIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, _, err := f.manager.PlaceStripe(ctx, placeRequest(), "https://shop.test")
	require.NoError(t, err)
	id := order.ID.Hex()

	for i := 0; i < 2; i++ {
		ok, err := f.manager.VerifyStripe(ctx, id, "alice", true)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	stored, err := f.manager.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Payment)
	assert.Equal(t, []string{"alice", "alice"}, f.carts.cleared)
	assert.Equal(t, 1, f.notifier.placed)
}

func TestVerifyStripeFailureDeletesOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, _, err := f.manager.PlaceStripe(ctx, placeRequest(), "https://shop.test")
	require.NoError(t, err)

	ok, err := f.manager.VerifyStripe(ctx, order.ID.Hex(), "alice", false)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.manager.Get(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, f.carts.cleared)
}

func TestVerifyStripeChecksOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, _, err := f.manager.PlaceStripe(ctx, placeRequest(), "https://shop.test")
	require.NoError(t, err)

	_, err = f.manager.VerifyStripe(ctx, order.ID.Hex(), "mallory", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.manager.Get(ctx, order.ID.Hex())
	assert.NoError(t, err)
}

func TestVerifyStripeRejectsCODOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.manager.PlaceCOD(ctx, placeRequest())
	require.NoError(t, err)
	id := order.ID.Hex()

	_, err = f.manager.VerifyStripe(ctx, id, "alice", true)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.manager.VerifyStripe(ctx, id, "", false)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	stored, err := f.manager.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Payment)
}

func TestVerifyStripeFailureKeepsPaidOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, _, err := f.manager.PlaceStripe(ctx, placeRequest(), "https://shop.test")
	require.NoError(t, err)
	id := order.ID.Hex()

	ok, err := f.manager.VerifyStripe(ctx, id, "alice", true)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.manager.VerifyStripe(ctx, id, "", false)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := f.manager.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Payment)
	for _, ev := range f.history.events {
		assert.NotEqual(t, models.EventPaymentFailed, ev.Kind)
	}
}

func TestVerifyRazorpayChecksOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, gw, err := f.manager.PlaceRazorpay(ctx, placeRequest())
	require.NoError(t, err)
	before := len(f.history.events)

	f.razorpay.status = "attempted"
	_, err = f.manager.VerifyRazorpay(ctx, "mallory", gw["id"].(string))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Len(t, f.history.events, before)

	f.razorpay.status = "paid"
	_, err = f.manager.VerifyRazorpay(ctx, "mallory", gw["id"].(string))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	stored, _ := f.manager.Get(ctx, order.ID.Hex())
	assert.False(t, stored.Payment)
	assert.Empty(t, f.carts.cleared)
}

func TestVerifyRazorpayRejectsStripeOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, _, err := f.manager.PlaceStripe(ctx, placeRequest(), "https://shop.test")
	require.NoError(t, err)
	f.razorpay.orders["order_forged"] = order.ID.Hex()

	_, err = f.manager.VerifyRazorpay(ctx, "alice", "order_forged")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	stored, _ := f.manager.Get(ctx, order.ID.Hex())
	assert.False(t, stored.Payment)
}

func TestVerifyRazorpay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, gw, err := f.manager.PlaceRazorpay(ctx, placeRequest())
	require.NoError(t, err)
	assert.Equal(t, 25000.0, gw["amount"])

	f.razorpay.status = "attempted"
	ok, err := f.manager.VerifyRazorpay(ctx, "alice", gw["id"].(string))
	require.NoError(t, err)
	assert.False(t, ok)
	stored, _ := f.manager.Get(ctx, order.ID.Hex())
	assert.False(t, stored.Payment)

	f.razorpay.status = "paid"
	ok, err = f.manager.VerifyRazorpay(ctx, "alice", gw["id"].(string))
	require.NoError(t, err)
	assert.True(t, ok)
	stored, _ = f.manager.Get(ctx, order.ID.Hex())
	assert.True(t, stored.Payment)
	assert.Equal(t, []string{"alice"}, f.carts.cleared)
}

func TestVerifyRazorpayUnknownOrder(t *testing.T) {
	f := newFixture()
	_, err := f.manager.VerifyRazorpay(context.Background(), "alice", "order_missing")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestUpdateStatusAcceptsAnyKnownStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.manager.PlaceCOD(ctx, placeRequest())
	require.NoError(t, err)
	id := order.ID.Hex()

	require.NoError(t, f.manager.UpdateStatus(ctx, id, StatusDelivered, "admin"))
	require.NoError(t, f.manager.UpdateStatus(ctx, id, StatusPacking, "admin"))
	stored, _ := f.manager.Get(ctx, id)
	assert.Equal(t, StatusPacking, stored.Status)

	err = f.manager.UpdateStatus(ctx, id, "Lost at sea", "admin")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	stored, _ = f.manager.Get(ctx, id)
	assert.Equal(t, StatusPacking, stored.Status)

	err = f.manager.UpdateStatus(ctx, primitive.NewObjectID().Hex(), StatusPacking, "admin")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateTrackingForcesShipped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.manager.PlaceCOD(ctx, placeRequest())
	require.NoError(t, err)
	id := order.ID.Hex()

	updated, err := f.manager.UpdateTracking(ctx, id, "TRK1", "Blue Dart", "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)

	again, err := f.manager.UpdateTracking(ctx, id, "TRK1", "Blue Dart", "admin")
	require.NoError(t, err)
	assert.Equal(t, updated.TrackingID, again.TrackingID)
	assert.Equal(t, updated.Status, again.Status)

	info, err := f.manager.TrackingInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://www.bluedart.com/web/guest/trackdartresult?trackFor=0&trackNo=TRK1", info.TrackingURL)
	assert.Equal(t, StatusShipped, info.Status)
}

func TestUpdateTrackingRequiresCourier(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.manager.PlaceCOD(ctx, placeRequest())
	require.NoError(t, err)

	_, err = f.manager.UpdateTracking(ctx, order.ID.Hex(), "TRK1", "  ", "admin")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	stored, _ := f.manager.Get(ctx, order.ID.Hex())
	assert.Equal(t, StatusPlaced, stored.Status)
	assert.Empty(t, stored.TrackingID)
}

func TestHistoryRecordsLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.manager.PlaceCOD(ctx, placeRequest())
	require.NoError(t, err)
	id := order.ID.Hex()
	require.NoError(t, f.manager.UpdateStatus(ctx, id, StatusPacking, "admin"))
	_, err = f.manager.UpdateTracking(ctx, id, "TRK1", "dhl", "admin")
	require.NoError(t, err)

	events, err := f.manager.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventPlaced, events[0].Kind)
	assert.Equal(t, models.EventStatusChanged, events[1].Kind)
	assert.Equal(t, models.EventTrackingUpdate, events[2].Kind)
	assert.Equal(t, "dhl", events[2].CourierPartner)
	assert.Equal(t, []string{StatusPacking, StatusShipped}, f.notifier.statuses)
}

func TestForUserFiltersOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.manager.PlaceCOD(ctx, placeRequest())
	require.NoError(t, err)
	other := placeRequest()
	other.UserID = "bob"
	_, err = f.manager.PlaceCOD(ctx, other)
	require.NoError(t, err)

	mine, err := f.manager.ForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.manager.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
