package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/internal/assignment"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/geo"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order        *models.Order
	items        map[uuid.UUID]*models.OrderItem
	orderUpdates map[string]any
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.order = order
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if s.items == nil {
		s.items = make(map[uuid.UUID]*models.OrderItem)
	}
	for i := range items {
		item := items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		s.items[item.ID] = &item
	}
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	order := *s.order
	order.Items = nil
	for _, item := range s.items {
		order.Items = append(order.Items, *item)
	}
	return &order, nil
}

func (s *stubOrdersRepo) FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(s.items))
	for _, item := range s.items {
		if item.OrderID == orderID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (s *stubOrdersRepo) FindOrderItemsByVendor(ctx context.Context, orderID, vendorID uuid.UUID) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(s.items))
	for _, item := range s.items {
		if item.OrderID == orderID && item.VendorID == vendorID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.orderUpdates = updates
	if s.order == nil || s.order.ID != orderID {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = v
	}
	if v, ok := updates["agent_id"].(uuid.UUID); ok {
		s.order.AgentID = &v
	}
	return nil
}

func (s *stubOrdersRepo) UpdateOrderItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	item, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"].(enums.OrderItemStatus); ok {
		item.Status = v
	}
	if v, ok := updates["rejection_reason"].(string); ok {
		item.RejectionReason = &v
	}
	return nil
}

func (s *stubOrdersRepo) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters CustomerOrderFilters) (*OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListAgentOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	panic("not implemented")
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutboxPublisher) lastEvent() *outbox.DomainEvent {
	if len(s.events) == 0 {
		return nil
	}
	return &s.events[len(s.events)-1]
}

type inventoryCall struct {
	productID uuid.UUID
	qty       int
}

type stubInventory struct {
	reserved   []inventoryCall
	released   []inventoryCall
	reserveErr error
}

func (s *stubInventory) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if s.reserveErr != nil {
		return s.reserveErr
	}
	s.reserved = append(s.reserved, inventoryCall{productID: productID, qty: qty})
	return nil
}

func (s *stubInventory) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	s.released = append(s.released, inventoryCall{productID: productID, qty: qty})
	return nil
}

type stubAssigner struct {
	agentID uuid.UUID
	err     error
	called  bool
}

func (s *stubAssigner) PickAgent(ctx context.Context, tx *gorm.DB, dropoff geo.Point) (uuid.UUID, error) {
	s.called = true
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return s.agentID, nil
}

type stubProductSource struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductSource) FindProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubOrdersRepo, pub *stubOutboxPublisher, inv *stubInventory, assigner *stubAssigner, source *stubProductSource) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, pub, inv, assigner, source)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPlaceOrder(t *testing.T) {
	vendorID := uuid.New()
	productID := uuid.New()
	customerID := uuid.New()

	repo := &stubOrdersRepo{}
	pub := &stubOutboxPublisher{}
	inv := &stubInventory{}
	source := &stubProductSource{products: map[uuid.UUID]*models.Product{
		productID: {
			ID:             productID,
			VendorID:       vendorID,
			Name:           "Masala Chai",
			Price:          dec("50.00"),
			Stock:          10,
			CommissionRate: dec("0.10"),
			IsActive:       true,
		},
	}}
	svc := newTestService(t, repo, pub, inv, &stubAssigner{}, source)

	detail, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customerID,
		Address:    "12 Gandhi Road",
		Latitude:   28.61,
		Longitude:  77.21,
		Items:      []PlaceOrderItemInput{{ProductID: productID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if detail.Status != enums.OrderStatusPlaced {
		t.Fatalf("expected placed status, got %s", detail.Status)
	}
	if !detail.TotalPrice.Equal(dec("150.00")) {
		t.Fatalf("expected total 150.00, got %s", detail.TotalPrice)
	}
	if len(inv.reserved) != 1 || inv.reserved[0].qty != 3 {
		t.Fatalf("expected one reserve of qty 3, got %+v", inv.reserved)
	}
	if len(detail.Items) != 1 || !detail.Items[0].PriceAtPurchase.Equal(dec("50.00")) {
		t.Fatalf("price snapshot missing: %+v", detail.Items)
	}
	event := pub.lastEvent()
	if event == nil || event.EventType != enums.EventOrderPlaced {
		t.Fatalf("expected order placed event, got %+v", event)
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	productID := uuid.New()
	source := &stubProductSource{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, VendorID: uuid.New(), Price: dec("5.00"), IsActive: true},
	}}
	inv := &stubInventory{reserveErr: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")}
	svc := newTestService(t, &stubOrdersRepo{}, &stubOutboxPublisher{}, inv, &stubAssigner{}, source)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: uuid.New(),
		Address:    "12 Gandhi Road",
		Latitude:   28.61,
		Longitude:  77.21,
		Items:      []PlaceOrderItemInput{{ProductID: productID, Quantity: 99}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	svc := newTestService(t, &stubOrdersRepo{}, &stubOutboxPublisher{}, &stubInventory{}, &stubAssigner{}, &stubProductSource{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: uuid.New(),
		Address:    "12 Gandhi Road",
		Latitude:   28.61,
		Longitude:  77.21,
		Items:      []PlaceOrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func seedOrderWithItems(repo *stubOrdersRepo, vendorID uuid.UUID, statuses ...enums.OrderItemStatus) *models.Order {
	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Status:     enums.OrderStatusPlaced,
		TotalPrice: dec("100.00"),
		Latitude:   28.61,
		Longitude:  77.21,
	}
	repo.order = order
	repo.items = make(map[uuid.UUID]*models.OrderItem)
	for _, status := range statuses {
		item := &models.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       uuid.New(),
			VendorID:        vendorID,
			Quantity:        2,
			PriceAtPurchase: dec("50.00"),
			CommissionRate:  dec("0.10"),
			Status:          status,
		}
		repo.items[item.ID] = item
	}
	return order
}

func itemIDs(repo *stubOrdersRepo) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(repo.items))
	for id := range repo.items {
		ids = append(ids, id)
	}
	return ids
}

func TestItemsDecisionApproveAssigns(t *testing.T) {
	vendorID := uuid.New()
	agentID := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusPending, enums.OrderItemStatusPending)
	pub := &stubOutboxPublisher{}
	assigner := &stubAssigner{agentID: agentID}
	svc := newTestService(t, repo, pub, &stubInventory{}, assigner, &stubProductSource{})

	err := svc.ItemsDecision(context.Background(), ItemsDecisionInput{
		OrderID:     order.ID,
		ItemIDs:     itemIDs(repo),
		Decision:    ItemDecisionApprove,
		ActorUserID: vendorID,
	})
	if err != nil {
		t.Fatalf("items decision: %v", err)
	}
	if repo.order.Status != enums.OrderStatusAssigned {
		t.Fatalf("expected assigned, got %s", repo.order.Status)
	}
	if repo.order.AgentID == nil || *repo.order.AgentID != agentID {
		t.Fatal("agent not attached to order")
	}
	event := pub.lastEvent()
	if event == nil || event.EventType != enums.EventOrderAssigned {
		t.Fatalf("expected assigned event, got %+v", event)
	}
}

func TestItemsDecisionApproveNoAgentsSurfacesError(t *testing.T) {
	vendorID := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusPending)
	pub := &stubOutboxPublisher{}
	assigner := &stubAssigner{err: assignment.ErrNoAgentsAvailable}
	svc := newTestService(t, repo, pub, &stubInventory{}, assigner, &stubProductSource{})

	err := svc.ItemsDecision(context.Background(), ItemsDecisionInput{
		OrderID:     order.ID,
		ItemIDs:     itemIDs(repo),
		Decision:    ItemDecisionApprove,
		ActorUserID: vendorID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}

	// The approval itself commits; only the assignment attempt failed.
	if repo.order.Status != enums.OrderStatusApproved {
		t.Fatalf("expected approved, got %s", repo.order.Status)
	}
	event := pub.lastEvent()
	if event == nil || event.EventType != enums.EventOrderApproved {
		t.Fatalf("expected approved event, got %+v", event)
	}
}

func TestItemsDecisionRejectSinksOrderAndRestoresStock(t *testing.T) {
	vendorID := uuid.New()
	otherVendor := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusPending)
	// Second vendor still pending so the order lands on rejected, not cancelled.
	pendingOther := &models.OrderItem{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: uuid.New(),
		VendorID:  otherVendor,
		Quantity:  1,
		Status:    enums.OrderItemStatusPending,
	}
	repo.items[pendingOther.ID] = pendingOther

	pub := &stubOutboxPublisher{}
	inv := &stubInventory{}
	svc := newTestService(t, repo, pub, inv, &stubAssigner{}, &stubProductSource{})

	var rejectIDs []uuid.UUID
	for id, item := range repo.items {
		if item.VendorID == vendorID {
			rejectIDs = append(rejectIDs, id)
		}
	}

	reason := "out of stock"
	err := svc.ItemsDecision(context.Background(), ItemsDecisionInput{
		OrderID:     order.ID,
		ItemIDs:     rejectIDs,
		Decision:    ItemDecisionReject,
		Reason:      &reason,
		ActorUserID: vendorID,
	})
	if err != nil {
		t.Fatalf("items decision: %v", err)
	}
	if repo.order.Status != enums.OrderStatusRejected {
		t.Fatalf("expected rejected, got %s", repo.order.Status)
	}
	if len(inv.released) != 1 || inv.released[0].qty != 2 {
		t.Fatalf("expected stock restored for rejected item, got %+v", inv.released)
	}

	sawItemsRejected := false
	for _, event := range pub.events {
		if event.EventType == enums.EventItemsRejected {
			sawItemsRejected = true
		}
	}
	if !sawItemsRejected {
		t.Fatal("expected items rejected event")
	}
	if last := pub.lastEvent(); last.EventType != enums.EventOrderRejected {
		t.Fatalf("expected order rejected event, got %s", last.EventType)
	}
}

func TestItemsDecisionAllRejectedCancels(t *testing.T) {
	vendorID := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusPending, enums.OrderItemStatusPending)
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubInventory{}, &stubAssigner{}, &stubProductSource{})

	err := svc.ItemsDecision(context.Background(), ItemsDecisionInput{
		OrderID:     order.ID,
		ItemIDs:     itemIDs(repo),
		Decision:    ItemDecisionReject,
		ActorUserID: vendorID,
	})
	if err != nil {
		t.Fatalf("items decision: %v", err)
	}
	if repo.order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", repo.order.Status)
	}
	if last := pub.lastEvent(); last.EventType != enums.EventOrderCancelled {
		t.Fatalf("expected cancelled event, got %s", last.EventType)
	}
}

func TestItemsDecisionRepeatedDecisionIsNoop(t *testing.T) {
	vendorID := uuid.New()
	otherVendor := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusApproved)
	pendingOther := &models.OrderItem{
		ID:       uuid.New(),
		OrderID:  order.ID,
		VendorID: otherVendor,
		Quantity: 1,
		Status:   enums.OrderItemStatusPending,
	}
	repo.items[pendingOther.ID] = pendingOther

	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubInventory{}, &stubAssigner{}, &stubProductSource{})

	var approvedIDs []uuid.UUID
	for id, item := range repo.items {
		if item.VendorID == vendorID {
			approvedIDs = append(approvedIDs, id)
		}
	}

	err := svc.ItemsDecision(context.Background(), ItemsDecisionInput{
		OrderID:     order.ID,
		ItemIDs:     approvedIDs,
		Decision:    ItemDecisionApprove,
		ActorUserID: vendorID,
	})
	if err != nil {
		t.Fatalf("items decision: %v", err)
	}
	if repo.order.Status != enums.OrderStatusPlaced {
		t.Fatalf("expected order unchanged, got %s", repo.order.Status)
	}
	if len(pub.events) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.events))
	}
}

func TestItemsDecisionWrongVendor(t *testing.T) {
	vendorID := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusPending)
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubInventory{}, &stubAssigner{}, &stubProductSource{})

	err := svc.ItemsDecision(context.Background(), ItemsDecisionInput{
		OrderID:     order.ID,
		ItemIDs:     itemIDs(repo),
		Decision:    ItemDecisionApprove,
		ActorUserID: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestItemsDecisionStateConflict(t *testing.T) {
	vendorID := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusApproved)
	repo.order.Status = enums.OrderStatusAssigned

	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubInventory{}, &stubAssigner{}, &stubProductSource{})

	err := svc.ItemsDecision(context.Background(), ItemsDecisionInput{
		OrderID:     order.ID,
		ItemIDs:     itemIDs(repo),
		Decision:    ItemDecisionApprove,
		ActorUserID: vendorID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	vendorID := uuid.New()
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, vendorID, enums.OrderItemStatusPending, enums.OrderItemStatusApproved)
	pub := &stubOutboxPublisher{}
	inv := &stubInventory{}
	svc := newTestService(t, repo, pub, inv, &stubAssigner{}, &stubProductSource{})

	err := svc.CancelOrder(context.Background(), CancelOrderInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.UserRoleCustomer.String(),
	})
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if repo.order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", repo.order.Status)
	}
	if len(inv.released) != 2 {
		t.Fatalf("expected both items restored, got %+v", inv.released)
	}
	if last := pub.lastEvent(); last == nil || last.EventType != enums.EventOrderCancelled {
		t.Fatalf("expected cancelled event, got %+v", last)
	}
}

func TestCancelOrderWrongOwner(t *testing.T) {
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, uuid.New(), enums.OrderItemStatusPending)
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubInventory{}, &stubAssigner{}, &stubProductSource{})

	err := svc.CancelOrder(context.Background(), CancelOrderInput{
		OrderID:     order.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleCustomer.String(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancelOrderAfterAssignmentConflict(t *testing.T) {
	repo := &stubOrdersRepo{}
	order := seedOrderWithItems(repo, uuid.New(), enums.OrderItemStatusApproved)
	repo.order.Status = enums.OrderStatusAssigned

	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubInventory{}, &stubAssigner{}, &stubProductSource{})

	err := svc.CancelOrder(context.Background(), CancelOrderInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.UserRoleCustomer.String(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
