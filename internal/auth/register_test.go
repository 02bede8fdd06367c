package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/internal/users"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/config"
	pkgmodels "github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/security"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUserRepository struct {
	data    map[string]*pkgmodels.User
	created *pkgmodels.User
	profile *pkgmodels.AgentProfile
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{data: map[string]*pkgmodels.User{}}
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*pkgmodels.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	user := &pkgmodels.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		Name:         dto.Name,
		Phone:        dto.Phone,
		Role:         dto.Role,
		IsActive:     true,
	}
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

func (s *stubUserRepository) CreateAgentProfile(ctx context.Context, userID uuid.UUID) (*pkgmodels.AgentProfile, error) {
	s.profile = &pkgmodels.AgentProfile{ID: uuid.New(), UserID: userID}
	return s.profile, nil
}

func (s *stubUserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return nil
}

func newRegisterTestService(t *testing.T, repo *stubUserRepository) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubTxRunner{},
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return repo
		},
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func TestRegisterCustomer(t *testing.T) {
	repo := newStubUserRepository()
	svc := newRegisterTestService(t, repo)

	view, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Asha Pillai",
		Email:    "Asha@Example.com",
		Password: "Secret123!",
		Role:     "customer",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if view.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %s", view.Email)
	}
	if repo.created == nil || repo.created.Role != enums.UserRoleCustomer {
		t.Fatalf("user not created with customer role: %+v", repo.created)
	}
	if repo.profile != nil {
		t.Fatal("customer registration must not create an agent profile")
	}

	valid, err := security.VerifyPassword("Secret123!", repo.created.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterDeliveryCreatesAgentProfile(t *testing.T) {
	repo := newStubUserRepository()
	svc := newRegisterTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ravi Kumar",
		Email:    "ravi@example.com",
		Password: "Secret123!",
		Role:     "delivery",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if repo.profile == nil || repo.profile.UserID != repo.created.ID {
		t.Fatal("expected agent profile linked to the new user")
	}
	if repo.profile.IsVerified {
		t.Fatal("new agent profiles must start unverified")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUserRepository()
	repo.data["taken@example.com"] = &pkgmodels.User{ID: uuid.New(), Email: "taken@example.com"}
	svc := newRegisterTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Asha Pillai",
		Email:    "taken@example.com",
		Password: "Secret123!",
		Role:     "customer",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newRegisterTestService(t, newStubUserRepository())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "Secret123!",
		Role:     "admin",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newRegisterTestService(t, newStubUserRepository())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Asha Pillai",
		Email:    "asha@example.com",
		Password: "short",
		Role:     "customer",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
