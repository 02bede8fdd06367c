package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/internal/assignment"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/geo"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Inventory adjusts catalog stock while an order transaction is open.
type Inventory interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Assigner picks a delivery agent for an approved order.
type Assigner interface {
	PickAgent(ctx context.Context, tx *gorm.DB, dropoff geo.Point) (uuid.UUID, error)
}

// ProductSource loads the listing snapshot taken at placement time.
type ProductSource interface {
	FindProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error)
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDetail, error)
	GetOrder(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*OrderDetail, error)
	CancelOrder(ctx context.Context, input CancelOrderInput) error
	ItemsDecision(ctx context.Context, input ItemsDecisionInput) error
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters CustomerOrderFilters) (*OrderList, error)
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAgentOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory Inventory
	assigner  Assigner
	source    ProductSource
}

// OrderPlacedEvent is emitted when a customer places an order.
type OrderPlacedEvent struct {
	OrderID    uuid.UUID       `json:"order_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
}

// OrderDecisionEvent is emitted when a vendor decision changes the order status.
type OrderDecisionEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	VendorID   uuid.UUID         `json:"vendor_id"`
	Decision   ItemDecision      `json:"decision"`
	Status     enums.OrderStatus `json:"status"`
}

// ItemsRejectedEvent lists the items a vendor rejected.
type ItemsRejectedEvent struct {
	OrderID    uuid.UUID   `json:"order_id"`
	CustomerID uuid.UUID   `json:"customer_id"`
	VendorID   uuid.UUID   `json:"vendor_id"`
	ItemIDs    []uuid.UUID `json:"item_ids"`
	Reason     *string     `json:"reason,omitempty"`
}

// OrderAssignedEvent is emitted when an agent is attached to the order.
type OrderAssignedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	AgentID    uuid.UUID `json:"agent_id"`
}

// OrderCancelledEvent is emitted when the order reaches cancelled.
type OrderCancelledEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, inventory Inventory, assigner Assigner, source ProductSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	if assigner == nil {
		return nil, fmt.Errorf("assigner required")
	}
	if source == nil {
		return nil, fmt.Errorf("product source required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outboxSvc,
		inventory: inventory,
		assigner:  assigner,
		source:    source,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDetail, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if !geo.ValidCoordinates(input.Latitude, input.Longitude) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery coordinates")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			product, err := s.source.FindProduct(ctx, tx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
			}
			if err := s.inventory.Reserve(ctx, tx, product.ID, line.Quantity); err != nil {
				return err
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:       product.ID,
				VendorID:        product.VendorID,
				Name:            product.Name,
				Quantity:        line.Quantity,
				PriceAtPurchase: product.Price,
				CommissionRate:  product.CommissionRate,
				Status:          enums.OrderItemStatusPending,
			})
		}

		order := &models.Order{
			CustomerID: input.CustomerID,
			Status:     enums.OrderStatusPlaced,
			TotalPrice: total,
			Address:    input.Address,
			Latitude:   input.Latitude,
			Longitude:  input.Longitude,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.CustomerID, enums.UserRoleCustomer),
			Data: OrderPlacedEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				TotalPrice: order.TotalPrice,
				ItemCount:  len(items),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		order.Items = items
		detail = toDetail(order, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) GetOrder(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !canViewOrder(order, actorID, role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order not accessible")
	}

	items := order.Items
	if role == enums.UserRoleVendor {
		scoped := items[:0:0]
		for _, item := range items {
			if item.VendorID == actorID {
				scoped = append(scoped, item)
			}
		}
		items = scoped
	}
	return toDetail(order, items), nil
}

func (s *service) CancelOrder(ctx context.Context, input CancelOrderInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.CustomerID != input.ActorUserID && input.ActorRole != enums.UserRoleAdmin.String() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if order.Status == enums.OrderStatusCancelled {
			return nil
		}
		if !CanTransition(order.Status, enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled in current state")
		}

		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		now := time.Now()
		for _, item := range items {
			switch item.Status {
			case enums.OrderItemStatusPending, enums.OrderItemStatusApproved:
				if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				updates := map[string]any{
					"status":     enums.OrderItemStatusCancelled,
					"decided_at": now,
				}
				if err := repo.UpdateOrderItem(ctx, item.ID, updates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order item")
				}
			}
		}

		updates := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, enums.UserRole(input.ActorRole)),
			Data: OrderCancelledEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) ItemsDecision(ctx context.Context, input ItemsDecisionInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(input.ItemIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "item ids required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	targetStatus, err := mapItemDecision(input.Decision)
	if err != nil {
		return err
	}

	var noAgents bool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Row lock serializes concurrent vendor decisions on the same order.
		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPlaced && order.Status != enums.OrderStatusRejected {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vendor decision not allowed in current state")
		}

		vendorItems, err := repo.FindOrderItemsByVendor(ctx, order.ID, input.ActorUserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor items")
		}
		owned := make(map[uuid.UUID]models.OrderItem, len(vendorItems))
		for _, item := range vendorItems {
			owned[item.ID] = item
		}

		now := time.Now()
		rejectedIDs := []uuid.UUID{}
		for _, itemID := range input.ItemIDs {
			item, ok := owned[itemID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeForbidden, "item does not belong to vendor")
			}
			if item.Status == targetStatus {
				continue
			}
			if item.Status != enums.OrderItemStatusPending {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "item already decided")
			}

			updates := map[string]any{
				"status":     targetStatus,
				"decided_at": now,
			}
			if targetStatus == enums.OrderItemStatusRejected {
				if input.Reason != nil {
					updates["rejection_reason"] = *input.Reason
				}
				if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				rejectedIDs = append(rejectedIDs, item.ID)
			}
			if err := repo.UpdateOrderItem(ctx, item.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
			}
		}

		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order items")
		}
		statuses := make([]enums.OrderItemStatus, 0, len(items))
		for _, item := range items {
			statuses = append(statuses, item.Status)
		}
		aggregated := AggregateOrderStatus(statuses)

		if len(rejectedIDs) > 0 {
			event := outbox.DomainEvent{
				EventType:     enums.EventItemsRejected,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         buildActor(input.ActorUserID, enums.UserRoleVendor),
				Data: ItemsRejectedEvent{
					OrderID:    order.ID,
					CustomerID: order.CustomerID,
					VendorID:   input.ActorUserID,
					ItemIDs:    rejectedIDs,
					Reason:     input.Reason,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		if aggregated == order.Status || !CanTransition(order.Status, aggregated) {
			return nil
		}

		if aggregated == enums.OrderStatusApproved {
			return s.approveAndAssign(ctx, tx, repo, order, input, &noAgents)
		}

		updates := map[string]any{"status": aggregated}
		if aggregated == enums.OrderStatusCancelled {
			updates["cancelled_at"] = now
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		eventType := enums.EventOrderRejected
		if aggregated == enums.OrderStatusCancelled {
			eventType = enums.EventOrderCancelled
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, enums.UserRoleVendor),
			Data: OrderDecisionEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				VendorID:   input.ActorUserID,
				Decision:   input.Decision,
				Status:     aggregated,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return err
	}
	if noAgents {
		return pkgerrors.New(pkgerrors.CodeConflict, "no agents available")
	}
	return nil
}

// approveAndAssign moves the order to approved and immediately tries to
// hand it to an agent. An empty agent pool still commits the approval;
// the caller surfaces the failed assignment to the vendor instead of
// rolling the decision back.
func (s *service) approveAndAssign(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, input ItemsDecisionInput, noAgents *bool) error {
	now := time.Now()

	agentID, err := s.assigner.PickAgent(ctx, tx, geo.Point{Lat: order.Latitude, Lon: order.Longitude})
	if err != nil && !errors.Is(err, assignment.ErrNoAgentsAvailable) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pick agent")
	}

	if errors.Is(err, assignment.ErrNoAgentsAvailable) {
		*noAgents = true
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusApproved}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve order")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderApproved,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, enums.UserRoleVendor),
			Data: OrderDecisionEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				VendorID:   input.ActorUserID,
				Decision:   input.Decision,
				Status:     enums.OrderStatusApproved,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	}

	updates := map[string]any{
		"status":      enums.OrderStatusAssigned,
		"agent_id":    agentID,
		"assigned_at": now,
	}
	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventOrderAssigned,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         buildActor(input.ActorUserID, enums.UserRoleVendor),
		Data: OrderAssignedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			AgentID:    agentID,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters CustomerOrderFilters) (*OrderList, error) {
	list, err := s.repo.ListCustomerOrders(ctx, customerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return list, nil
}

func (s *service) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListVendorOrders(ctx, vendorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	return list, nil
}

func (s *service) ListAgentOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListAgentOrders(ctx, agentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent orders")
	}
	return list, nil
}

func mapItemDecision(decision ItemDecision) (enums.OrderItemStatus, error) {
	switch decision {
	case ItemDecisionApprove:
		return enums.OrderItemStatusApproved, nil
	case ItemDecisionReject:
		return enums.OrderItemStatusRejected, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
}

func canViewOrder(order *models.Order, actorID uuid.UUID, role enums.UserRole) bool {
	switch role {
	case enums.UserRoleAdmin:
		return true
	case enums.UserRoleCustomer:
		return order.CustomerID == actorID
	case enums.UserRoleDelivery:
		return order.AgentID != nil && *order.AgentID == actorID
	case enums.UserRoleVendor:
		for _, item := range order.Items {
			if item.VendorID == actorID {
				return true
			}
		}
	}
	return false
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		Role:   role.String(),
	}
}

func toDetail(order *models.Order, items []models.OrderItem) *OrderDetail {
	detail := &OrderDetail{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		AgentID:     order.AgentID,
		Status:      order.Status,
		TotalPrice:  order.TotalPrice,
		Address:     order.Address,
		Latitude:    order.Latitude,
		Longitude:   order.Longitude,
		CreatedAt:   order.CreatedAt,
		DeliveredAt: order.DeliveredAt,
	}
	for _, item := range items {
		detail.Items = append(detail.Items, ItemSummary{
			ID:              item.ID,
			ProductID:       item.ProductID,
			VendorID:        item.VendorID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			Status:          item.Status,
			RejectionReason: item.RejectionReason,
		})
	}
	return detail
}

type productSourceImpl struct{}

// NewProductSource exposes the default in-transaction product lookup.
func NewProductSource() ProductSource {
	return productSourceImpl{}
}

func (productSourceImpl) FindProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for product lookup")
	}
	var product models.Product
	err := tx.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
