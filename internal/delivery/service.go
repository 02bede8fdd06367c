package delivery

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/internal/orders"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/geo"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/metrics"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/otp"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// LedgerPoster records payouts for delivered orders inside the
// confirmation transaction.
type LedgerPoster interface {
	PostForOrder(ctx context.Context, tx *gorm.DB, order *models.Order, items []models.OrderItem) error
}

// RateLimiter throttles OTP reissues per order.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

const (
	resendLimit  = 3
	resendWindow = 10 * time.Minute
)

// Service drives the agent-side delivery workflow from pickup through
// OTP-confirmed handover.
type Service interface {
	Pickup(ctx context.Context, input PickupInput) error
	Dispatch(ctx context.Context, input DispatchInput) error
	Confirm(ctx context.Context, input ConfirmInput) error
	ResendOTP(ctx context.Context, input ResendOTPInput) error
	UpdateLocation(ctx context.Context, input LocationInput) error
	Track(ctx context.Context, input TrackInput) (*TrackingView, error)
}

type service struct {
	repo        Repository
	ordersRepo  orders.Repository
	tx          txRunner
	outbox      outboxPublisher
	ledger      LedgerPoster
	limiter     RateLimiter
	metrics     *metrics.DeliveryMetrics
	otpValidity time.Duration
	now         func() time.Time
}

// OrderDispatchedEvent carries the confirmation code to the customer.
type OrderDispatchedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	AgentID    uuid.UUID `json:"agent_id"`
	Code       string    `json:"code"`
	Reissued   bool      `json:"reissued,omitempty"`
}

// OrderDeliveredEvent is emitted once the handover is confirmed.
type OrderDeliveredEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	AgentID    uuid.UUID `json:"agent_id"`
}

// NewService builds a delivery service with the required dependencies.
// The limiter and metrics are optional.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner, outboxSvc outboxPublisher, ledger LedgerPoster, limiter RateLimiter, deliveryMetrics *metrics.DeliveryMetrics, otpValidity time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger poster required")
	}
	if otpValidity <= 0 {
		otpValidity = otp.Validity
	}
	return &service{
		repo:        repo,
		ordersRepo:  ordersRepo,
		tx:          tx,
		outbox:      outboxSvc,
		ledger:      ledger,
		limiter:     limiter,
		metrics:     deliveryMetrics,
		otpValidity: otpValidity,
		now:         time.Now,
	}, nil
}

func (s *service) Pickup(ctx context.Context, input PickupInput) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lockAgentOrder(ctx, tx, input.OrderID, input.AgentID)
		if err != nil {
			return err
		}
		if !orders.CanTransition(order.Status, enums.OrderStatusPickedUp) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be picked up in current state")
		}

		err = s.ordersRepo.WithTx(tx).UpdateOrder(ctx, order.ID, map[string]any{
			"status":       enums.OrderStatusPickedUp,
			"picked_up_at": s.now(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark picked up")
		}
		return nil
	})
}

func (s *service) Dispatch(ctx context.Context, input DispatchInput) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lockAgentOrder(ctx, tx, input.OrderID, input.AgentID)
		if err != nil {
			return err
		}
		if !orders.CanTransition(order.Status, enums.OrderStatusOutForDelivery) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be dispatched in current state")
		}

		code, err := otp.Generate()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
		}
		now := s.now()
		updates := map[string]any{
			"status":        enums.OrderStatusOutForDelivery,
			"delivery_otp":  code,
			"otp_issued_at": now,
			"dispatched_at": now,
		}
		if err := s.ordersRepo.WithTx(tx).UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dispatch order")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDispatched,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.AgentID, Role: enums.UserRoleDelivery.String()},
			Data: OrderDispatchedEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				AgentID:    input.AgentID,
				Code:       code,
			},
		})
	})
}

func (s *service) ResendOTP(ctx context.Context, input ResendOTPInput) error {
	if s.limiter != nil {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "otp_resend:"+input.OrderID.String(), resendLimit, resendWindow)
		if err == nil && !allowed {
			return pkgerrors.New(pkgerrors.CodeConflict, "otp resend limit reached")
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lockAgentOrder(ctx, tx, input.OrderID, input.AgentID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusOutForDelivery {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no delivery in progress for order")
		}

		code, err := otp.Generate()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
		}
		updates := map[string]any{
			"delivery_otp":  code,
			"otp_issued_at": s.now(),
		}
		if err := s.ordersRepo.WithTx(tx).UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reissue otp")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDispatched,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.AgentID, Role: enums.UserRoleDelivery.String()},
			Data: OrderDispatchedEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				AgentID:    input.AgentID,
				Code:       code,
				Reissued:   true,
			},
		})
	})
}

func (s *service) Confirm(ctx context.Context, input ConfirmInput) error {
	if input.Code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmation code required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lockAgentOrder(ctx, tx, input.OrderID, input.AgentID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusOutForDelivery {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not out for delivery")
		}
		if order.DeliveryOTP == nil || order.OTPIssuedAt == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no confirmation code issued")
		}
		if subtle.ConstantTimeCompare([]byte(*order.DeliveryOTP), []byte(input.Code)) != 1 {
			s.metrics.IncOTPFailure()
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid confirmation code")
		}
		if otp.Expired(*order.OTPIssuedAt, s.now(), s.otpValidity) {
			s.metrics.IncOTPFailure()
			return pkgerrors.New(pkgerrors.CodeValidation, "confirmation code expired")
		}

		ordersRepo := s.ordersRepo.WithTx(tx)
		updates := map[string]any{
			"status":        enums.OrderStatusDelivered,
			"delivery_otp":  nil,
			"otp_issued_at": nil,
			"delivered_at":  s.now(),
		}
		if err := ordersRepo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark delivered")
		}

		items, err := ordersRepo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		if err := s.ledger.PostForOrder(ctx, tx, order, items); err != nil {
			return err
		}

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.AgentID, Role: enums.UserRoleDelivery.String()},
			Data: OrderDeliveredEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				AgentID:    input.AgentID,
			},
		})
		if err != nil {
			return err
		}

		s.metrics.IncDelivered()
		return nil
	})
}

func (s *service) UpdateLocation(ctx context.Context, input LocationInput) error {
	if input.AgentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	if !geo.ValidCoordinates(input.Latitude, input.Longitude) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid coordinates")
	}

	err := s.repo.UpdateAgentLocation(ctx, input.AgentID, input.Latitude, input.Longitude, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agent profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent location")
	}
	return nil
}

// Track returns the assigned agent's last reported position together
// with the remaining distance and a rough ETA to the dropoff.
func (s *service) Track(ctx context.Context, input TrackInput) (*TrackingView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.ordersRepo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}

	inTransit := order.Status == enums.OrderStatusAssigned ||
		order.Status == enums.OrderStatusPickedUp ||
		order.Status == enums.OrderStatusOutForDelivery
	if !inTransit || order.AgentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in transit")
	}

	view := &TrackingView{OrderID: order.ID, Status: order.Status}

	profile, err := s.repo.FindAgentProfile(ctx, *order.AgentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent profile")
	}
	if profile.Latitude == nil || profile.Longitude == nil {
		return view, nil
	}

	view.AgentLatitude = profile.Latitude
	view.AgentLongitude = profile.Longitude
	view.LocatedAt = profile.LocatedAt

	distance := geo.HaversineKm(
		geo.Point{Lat: *profile.Latitude, Lon: *profile.Longitude},
		geo.Point{Lat: order.Latitude, Lon: order.Longitude},
	)
	eta := geo.ETAMinutes(distance)
	view.DistanceKm = &distance
	view.ETAMinutes = &eta
	return view, nil
}

// lockAgentOrder loads the order under a row lock and checks the agent
// actually holds the assignment.
func (s *service) lockAgentOrder(ctx context.Context, tx *gorm.DB, orderID, agentID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}

	order, err := s.ordersRepo.WithTx(tx).FindOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.AgentID == nil || *order.AgentID != agentID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to agent")
	}
	return order, nil
}
