package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
)

// OrderSource loads the order being rated. The orders repository
// satisfies it through its FindOrder method.
type OrderSource interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// RateOrderInput is a customer's score for the delivering agent.
type RateOrderInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Score      int
	Comment    *string
}

// RatingView is the stored rating as returned to the customer.
type RatingView struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service defines rating operations.
type Service interface {
	RateOrder(ctx context.Context, input RateOrderInput) (*RatingView, error)
	AgentAverage(ctx context.Context, agentID uuid.UUID) (float64, int64, error)
}

type service struct {
	repo   Repository
	source OrderSource
}

// NewService builds a ratings service with the required dependencies.
func NewService(repo Repository, source OrderSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ratings repository required")
	}
	if source == nil {
		return nil, fmt.Errorf("order source required")
	}
	return &service{repo: repo, source: source}, nil
}

func (s *service) RateOrder(ctx context.Context, input RateOrderInput) (*RatingView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Score < 1 || input.Score > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score must be between 1 and 5")
	}

	order, err := s.source.FindOrder(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be rated")
	}
	if order.AgentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no delivery agent")
	}

	rating := &models.Rating{
		OrderID:    order.ID,
		AgentID:    *order.AgentID,
		CustomerID: input.CustomerID,
		Score:      input.Score,
		Comment:    input.Comment,
	}
	created, err := s.repo.Create(ctx, rating)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already rated")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
	}

	return &RatingView{
		ID:        created.ID,
		OrderID:   created.OrderID,
		AgentID:   created.AgentID,
		Score:     created.Score,
		Comment:   created.Comment,
		CreatedAt: created.CreatedAt,
	}, nil
}

func (s *service) AgentAverage(ctx context.Context, agentID uuid.UUID) (float64, int64, error) {
	if agentID == uuid.Nil {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	avg, count, err := s.repo.AverageForAgent(ctx, agentID)
	if err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average agent rating")
	}
	return avg, count, nil
}
