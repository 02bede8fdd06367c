package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/internal/orders"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

type stubAgentOrdersRepo struct {
	order   *models.Order
	items   []models.OrderItem
	updates map[string]any
}

func (s *stubAgentOrdersRepo) WithTx(tx *gorm.DB) orders.Repository {
	return s
}

func (s *stubAgentOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubAgentOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	panic("not implemented")
}

func (s *stubAgentOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubAgentOrdersRepo) FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubAgentOrdersRepo) FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return s.items, nil
}

func (s *stubAgentOrdersRepo) FindOrderItemsByVendor(ctx context.Context, orderID, vendorID uuid.UUID) ([]models.OrderItem, error) {
	panic("not implemented")
}

func (s *stubAgentOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if v, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = v
	}
	if v, ok := updates["delivery_otp"]; ok {
		if code, ok := v.(string); ok {
			s.order.DeliveryOTP = &code
		} else {
			s.order.DeliveryOTP = nil
		}
	}
	if v, ok := updates["otp_issued_at"]; ok {
		if at, ok := v.(time.Time); ok {
			s.order.OTPIssuedAt = &at
		} else {
			s.order.OTPIssuedAt = nil
		}
	}
	return nil
}

func (s *stubAgentOrdersRepo) UpdateOrderItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubAgentOrdersRepo) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters orders.CustomerOrderFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubAgentOrdersRepo) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubAgentOrdersRepo) ListAgentOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	panic("not implemented")
}

type stubDeliveryRepo struct {
	locationUpdated bool
	lat             float64
	lon             float64
	missing         bool
	profile         *models.AgentProfile
}

func (s *stubDeliveryRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubDeliveryRepo) FindAgentProfile(ctx context.Context, userID uuid.UUID) (*models.AgentProfile, error) {
	if s.profile == nil || s.profile.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}

func (s *stubDeliveryRepo) UpdateAgentLocation(ctx context.Context, userID uuid.UUID, lat, lon float64, at time.Time) error {
	if s.missing {
		return gorm.ErrRecordNotFound
	}
	s.locationUpdated = true
	s.lat = lat
	s.lon = lon
	return nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubLedgerPoster struct {
	posted bool
	order  *models.Order
	items  []models.OrderItem
}

func (s *stubLedgerPoster) PostForOrder(ctx context.Context, tx *gorm.DB, order *models.Order, items []models.OrderItem) error {
	s.posted = true
	s.order = order
	s.items = items
	return nil
}

type stubLimiter struct {
	allowed bool
	calls   int
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.calls++
	return s.allowed, 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newAgentOrder(agentID uuid.UUID, status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		AgentID:    &agentID,
		Status:     status,
		TotalPrice: decimal.NewFromInt(100),
		Latitude:   19.076,
		Longitude:  72.8777,
	}
}

func newDeliveryService(t *testing.T, repo Repository, ordersRepo orders.Repository, pub outboxPublisher, ledger LedgerPoster, limiter RateLimiter) Service {
	t.Helper()
	svc, err := NewService(repo, ordersRepo, stubTxRunner{}, pub, ledger, limiter, nil, 10*time.Minute)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestPickup(t *testing.T) {
	agentID := uuid.New()
	ordersRepo := &stubAgentOrdersRepo{order: newAgentOrder(agentID, enums.OrderStatusAssigned)}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.Pickup(context.Background(), PickupInput{OrderID: ordersRepo.order.ID, AgentID: agentID})
	if err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusPickedUp {
		t.Fatalf("expected picked_up, got %s", ordersRepo.order.Status)
	}
}

func TestPickupWrongAgent(t *testing.T) {
	ordersRepo := &stubAgentOrdersRepo{order: newAgentOrder(uuid.New(), enums.OrderStatusAssigned)}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.Pickup(context.Background(), PickupInput{OrderID: ordersRepo.order.ID, AgentID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestPickupWrongState(t *testing.T) {
	agentID := uuid.New()
	ordersRepo := &stubAgentOrdersRepo{order: newAgentOrder(agentID, enums.OrderStatusOutForDelivery)}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.Pickup(context.Background(), PickupInput{OrderID: ordersRepo.order.ID, AgentID: agentID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDispatchIssuesOTP(t *testing.T) {
	agentID := uuid.New()
	ordersRepo := &stubAgentOrdersRepo{order: newAgentOrder(agentID, enums.OrderStatusPickedUp)}
	pub := &stubOutboxPublisher{}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, pub, &stubLedgerPoster{}, nil)

	err := svc.Dispatch(context.Background(), DispatchInput{OrderID: ordersRepo.order.ID, AgentID: agentID})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusOutForDelivery {
		t.Fatalf("expected out_for_delivery, got %s", ordersRepo.order.Status)
	}
	if ordersRepo.order.DeliveryOTP == nil || len(*ordersRepo.order.DeliveryOTP) != 6 {
		t.Fatalf("expected six digit otp, got %v", ordersRepo.order.DeliveryOTP)
	}
	if ordersRepo.order.OTPIssuedAt == nil {
		t.Fatal("expected otp issue timestamp")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderDispatched {
		t.Fatalf("expected dispatched event, got %+v", pub.events)
	}
	payload, ok := pub.events[0].Data.(OrderDispatchedEvent)
	if !ok || payload.Code != *ordersRepo.order.DeliveryOTP {
		t.Fatalf("event should carry the issued code, got %+v", pub.events[0].Data)
	}
}

func TestConfirmDeliversAndPostsLedger(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	code := "123456"
	issued := time.Now().Add(-5 * time.Minute)
	order.DeliveryOTP = &code
	order.OTPIssuedAt = &issued

	ordersRepo := &stubAgentOrdersRepo{
		order: order,
		items: []models.OrderItem{
			{ID: uuid.New(), OrderID: order.ID, Status: enums.OrderItemStatusApproved, Quantity: 1, PriceAtPurchase: decimal.NewFromInt(100)},
		},
	}
	pub := &stubOutboxPublisher{}
	ledger := &stubLedgerPoster{}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, pub, ledger, nil)

	err := svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: code})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", ordersRepo.order.Status)
	}
	if !ledger.posted || len(ledger.items) != 1 {
		t.Fatal("expected ledger posting with order items")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderDelivered {
		t.Fatalf("expected delivered event, got %+v", pub.events)
	}
}

func TestConfirmWrongCode(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	code := "123456"
	issued := time.Now()
	order.DeliveryOTP = &code
	order.OTPIssuedAt = &issued

	ordersRepo := &stubAgentOrdersRepo{order: order}
	ledger := &stubLedgerPoster{}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, ledger, nil)

	err := svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: "654321"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ledger.posted {
		t.Fatal("ledger must not be posted on a failed confirmation")
	}
	if order.Status != enums.OrderStatusOutForDelivery {
		t.Fatalf("order should stay out_for_delivery, got %s", order.Status)
	}
}

func TestConfirmExpiredCode(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	code := "123456"
	issued := time.Now().Add(-11 * time.Minute)
	order.DeliveryOTP = &code
	order.OTPIssuedAt = &issued

	ordersRepo := &stubAgentOrdersRepo{order: order}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: code})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmAtValidityBoundary(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	code := "123456"
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	issued := fixed.Add(-10 * time.Minute)
	order.DeliveryOTP = &code
	order.OTPIssuedAt = &issued

	ordersRepo := &stubAgentOrdersRepo{order: order}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)
	svc.(*service).now = func() time.Time { return fixed }

	// A code presented exactly at issue time plus the validity window
	// still counts.
	err := svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: code})
	if err != nil {
		t.Fatalf("confirm at boundary: %v", err)
	}
	if order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}
}

func TestConfirmJustPastValidityBoundary(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	code := "123456"
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	issued := fixed.Add(-10*time.Minute - time.Second)
	order.DeliveryOTP = &code
	order.OTPIssuedAt = &issued

	ordersRepo := &stubAgentOrdersRepo{order: order}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)
	svc.(*service).now = func() time.Time { return fixed }

	err := svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: code})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmReplayAfterDelivery(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	code := "123456"
	issued := time.Now().Add(-time.Minute)
	order.DeliveryOTP = &code
	order.OTPIssuedAt = &issued

	ordersRepo := &stubAgentOrdersRepo{order: order}
	pub := &stubOutboxPublisher{}
	ledger := &stubLedgerPoster{}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, pub, ledger, nil)

	err := svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: code})
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if order.DeliveryOTP != nil || order.OTPIssuedAt != nil {
		t.Fatal("expected code cleared after delivery")
	}

	// Replaying the same code after the handover must not deliver or
	// pay out twice.
	err = svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: code})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on replay, got %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected a single delivered event, got %d", len(pub.events))
	}
}

func TestConfirmWrongState(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusPickedUp)
	ordersRepo := &stubAgentOrdersRepo{order: order}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.Confirm(context.Background(), ConfirmInput{OrderID: order.ID, AgentID: agentID, Code: "123456"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestResendOTPReissues(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	oldCode := "123456"
	issued := time.Now().Add(-9 * time.Minute)
	order.DeliveryOTP = &oldCode
	order.OTPIssuedAt = &issued

	ordersRepo := &stubAgentOrdersRepo{order: order}
	pub := &stubOutboxPublisher{}
	limiter := &stubLimiter{allowed: true}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, pub, &stubLedgerPoster{}, limiter)

	err := svc.ResendOTP(context.Background(), ResendOTPInput{OrderID: order.ID, AgentID: agentID})
	if err != nil {
		t.Fatalf("resend otp: %v", err)
	}
	if limiter.calls != 1 {
		t.Fatal("expected limiter consultation")
	}
	if order.DeliveryOTP == nil || *order.DeliveryOTP == oldCode {
		t.Fatal("expected a fresh code to replace the old one")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderDispatched {
		t.Fatalf("expected dispatched event, got %+v", pub.events)
	}
	payload := pub.events[0].Data.(OrderDispatchedEvent)
	if !payload.Reissued {
		t.Fatal("reissue flag should be set")
	}
}

func TestResendOTPThrottled(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	ordersRepo := &stubAgentOrdersRepo{order: order}
	limiter := &stubLimiter{allowed: false}
	svc := newDeliveryService(t, &stubDeliveryRepo{}, ordersRepo, &stubOutboxPublisher{}, &stubLedgerPoster{}, limiter)

	err := svc.ResendOTP(context.Background(), ResendOTPInput{OrderID: order.ID, AgentID: agentID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateLocation(t *testing.T) {
	repo := &stubDeliveryRepo{}
	svc := newDeliveryService(t, repo, &stubAgentOrdersRepo{}, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.UpdateLocation(context.Background(), LocationInput{
		AgentID:   uuid.New(),
		Latitude:  19.076,
		Longitude: 72.8777,
	})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if !repo.locationUpdated || repo.lat != 19.076 {
		t.Fatalf("location not recorded: %+v", repo)
	}
}

func TestUpdateLocationInvalidCoords(t *testing.T) {
	svc := newDeliveryService(t, &stubDeliveryRepo{}, &stubAgentOrdersRepo{}, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.UpdateLocation(context.Background(), LocationInput{
		AgentID:   uuid.New(),
		Latitude:  123.0,
		Longitude: 72.8777,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTrackReturnsDistanceAndETA(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusOutForDelivery)
	lat, lon := 19.0896, 72.8656
	located := time.Now()
	repo := &stubDeliveryRepo{profile: &models.AgentProfile{
		UserID:    agentID,
		Latitude:  &lat,
		Longitude: &lon,
		LocatedAt: &located,
	}}
	svc := newDeliveryService(t, repo, &stubAgentOrdersRepo{order: order}, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	view, err := svc.Track(context.Background(), TrackInput{OrderID: order.ID, CustomerID: order.CustomerID})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if view.Status != enums.OrderStatusOutForDelivery {
		t.Fatalf("expected out_for_delivery, got %s", view.Status)
	}
	if view.AgentLatitude == nil || *view.AgentLatitude != lat {
		t.Fatalf("agent position missing: %+v", view)
	}
	if view.DistanceKm == nil || *view.DistanceKm <= 0 {
		t.Fatalf("expected positive distance, got %+v", view.DistanceKm)
	}
	if view.ETAMinutes == nil || *view.ETAMinutes < 1 {
		t.Fatalf("expected eta of at least a minute, got %+v", view.ETAMinutes)
	}
}

func TestTrackWithoutAgentLocation(t *testing.T) {
	agentID := uuid.New()
	order := newAgentOrder(agentID, enums.OrderStatusAssigned)
	repo := &stubDeliveryRepo{profile: &models.AgentProfile{UserID: agentID}}
	svc := newDeliveryService(t, repo, &stubAgentOrdersRepo{order: order}, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	view, err := svc.Track(context.Background(), TrackInput{OrderID: order.ID, CustomerID: order.CustomerID})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if view.AgentLatitude != nil || view.DistanceKm != nil || view.ETAMinutes != nil {
		t.Fatalf("expected bare status view before the first location report, got %+v", view)
	}
}

func TestTrackWrongCustomer(t *testing.T) {
	order := newAgentOrder(uuid.New(), enums.OrderStatusOutForDelivery)
	svc := newDeliveryService(t, &stubDeliveryRepo{}, &stubAgentOrdersRepo{order: order}, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	_, err := svc.Track(context.Background(), TrackInput{OrderID: order.ID, CustomerID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTrackNotInTransit(t *testing.T) {
	order := newAgentOrder(uuid.New(), enums.OrderStatusPlaced)
	svc := newDeliveryService(t, &stubDeliveryRepo{}, &stubAgentOrdersRepo{order: order}, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	_, err := svc.Track(context.Background(), TrackInput{OrderID: order.ID, CustomerID: order.CustomerID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateLocationMissingProfile(t *testing.T) {
	svc := newDeliveryService(t, &stubDeliveryRepo{missing: true}, &stubAgentOrdersRepo{}, &stubOutboxPublisher{}, &stubLedgerPoster{}, nil)

	err := svc.UpdateLocation(context.Background(), LocationInput{
		AgentID:   uuid.New(),
		Latitude:  19.076,
		Longitude: 72.8777,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
