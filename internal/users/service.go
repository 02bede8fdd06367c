package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
)

// Service covers the admin-side account operations that go beyond plain
// repository reads.
type Service interface {
	// VerifyAgent marks a delivery agent's profile verified so the
	// assignment pool starts considering them.
	VerifyAgent(ctx context.Context, agentUserID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a users service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) VerifyAgent(ctx context.Context, agentUserID uuid.UUID) error {
	if agentUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "agent user id required")
	}

	user, err := s.repo.Find(ctx, agentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role != enums.UserRoleDelivery {
		return pkgerrors.New(pkgerrors.CodeValidation, "user is not a delivery agent")
	}

	profile, err := s.repo.FindAgentProfile(ctx, agentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agent profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent profile")
	}
	if profile.IsVerified {
		return nil
	}

	if err := s.repo.SetAgentVerified(ctx, agentUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify agent")
	}
	return nil
}
