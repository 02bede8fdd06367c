package complaints

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

const minBodyLength = 20

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// OrderSource checks complaint targets against the orders table.
type OrderSource interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderItemsByVendor(ctx context.Context, orderID, vendorID uuid.UUID) ([]models.OrderItem, error)
}

// Service defines complaint operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*ComplaintView, error)
	Reply(ctx context.Context, input ReplyInput) error
	Close(ctx context.Context, input CloseInput) error
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ComplaintList, error)
	List(ctx context.Context, params pagination.Params, status *enums.ComplaintStatus) (*ComplaintList, error)
}

type service struct {
	repo   Repository
	source OrderSource
	tx     txRunner
	outbox outboxPublisher
}

// ComplaintReceivedEvent notifies support staff of a new complaint.
type ComplaintReceivedEvent struct {
	ComplaintID uuid.UUID `json:"complaint_id"`
	OrderID     uuid.UUID `json:"order_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Subject     string    `json:"subject"`
}

// NewService builds a complaints service with the required dependencies.
func NewService(repo Repository, source OrderSource, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("complaints repository required")
	}
	if source == nil {
		return nil, fmt.Errorf("order source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, source: source, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*ComplaintView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if len(strings.TrimSpace(input.Body)) < minBodyLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("complaint body must be at least %d characters", minBodyLength))
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

	var view *ComplaintView
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		complaint := &models.Complaint{
			OrderID:    order.ID,
			CustomerID: input.CustomerID,
			Subject:    strings.TrimSpace(input.Subject),
			Body:       strings.TrimSpace(input.Body),
			Status:     enums.ComplaintStatusOpen,
		}
		created, err := repo.Create(ctx, complaint)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create complaint")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventComplaintReceived,
			AggregateType: enums.AggregateComplaint,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: enums.UserRoleCustomer.String()},
			Data: ComplaintReceivedEvent{
				ComplaintID: created.ID,
				OrderID:     order.ID,
				CustomerID:  input.CustomerID,
				Subject:     created.Subject,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		v := toView(created)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Reply(ctx context.Context, input ReplyInput) error {
	if input.ComplaintID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "complaint id required")
	}
	if strings.TrimSpace(input.Reply) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reply text required")
	}

	complaint, err := s.findComplaint(ctx, input.ComplaintID)
	if err != nil {
		return err
	}
	if complaint.Status == enums.ComplaintStatusClosed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "complaint is closed")
	}

	// Vendors may only reply to complaints about orders carrying their items.
	if input.ActorRole == enums.UserRoleVendor {
		items, err := s.source.FindOrderItemsByVendor(ctx, complaint.OrderID, input.ActorUserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeForbidden, "complaint does not concern vendor")
		}
	} else if input.ActorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only vendors and admins may reply")
	}

	updates := map[string]any{
		"status":     enums.ComplaintStatusReplied,
		"reply":      strings.TrimSpace(input.Reply),
		"replied_by": input.ActorUserID,
		"replied_at": time.Now(),
	}
	if err := s.repo.Update(ctx, complaint.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reply to complaint")
	}
	return nil
}

func (s *service) Close(ctx context.Context, input CloseInput) error {
	if input.ComplaintID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "complaint id required")
	}
	if input.ActorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may close complaints")
	}

	complaint, err := s.findComplaint(ctx, input.ComplaintID)
	if err != nil {
		return err
	}
	if complaint.Status == enums.ComplaintStatusClosed {
		return nil
	}

	err = s.repo.Update(ctx, complaint.ID, map[string]any{"status": enums.ComplaintStatusClosed})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close complaint")
	}
	return nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ComplaintList, error) {
	list, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer complaints")
	}
	return list, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, status *enums.ComplaintStatus) (*ComplaintList, error) {
	list, err := s.repo.List(ctx, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list complaints")
	}
	return list, nil
}

func (s *service) findComplaint(ctx context.Context, complaintID uuid.UUID) (*models.Complaint, error) {
	complaint, err := s.repo.Find(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load complaint")
	}
	return complaint, nil
}
