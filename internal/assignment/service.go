package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/geo"
)

// Service picks an agent for an order. Candidate queries run inside the
// caller's transaction so workload counts stay consistent with the order
// rows being written.
type Service interface {
	PickAgent(ctx context.Context, tx *gorm.DB, dropoff geo.Point) (uuid.UUID, error)
}

type service struct {
	repo Repository
}

// NewService builds an assignment service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) PickAgent(ctx context.Context, tx *gorm.DB, dropoff geo.Point) (uuid.UUID, error) {
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}

	candidates, err := repo.FindEligibleAgents(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	decision, err := SelectAgent(dropoff, candidates)
	if err != nil {
		return uuid.Nil, err
	}
	return decision.AgentID, nil
}
