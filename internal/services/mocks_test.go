package services_test

import (
	"context"

	"recipebox/internal/logging"
	"recipebox/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of repositories.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	if args.Error(0) == nil {
		account.ID = 1
	}
	return args.Error(0)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// MockRecipeRepository is a mock implementation of repositories.RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	args := m.Called(ctx, recipe)
	if args.Error(0) == nil && recipe.ID == 0 {
		recipe.ID = 10
	}
	return args.Error(0)
}

func (m *MockRecipeRepository) ListSummariesByOwner(ctx context.Context, ownerID uint) ([]models.RecipeSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecipeSummary), args.Error(1)
}

func (m *MockRecipeRepository) GetByOwnerAndID(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, ownerID, id uint) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishRecipeEvent(event models.RecipeEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockCaptioner is a mock implementation of services.Captioner
type MockCaptioner struct {
	mock.Mock
}

func (m *MockCaptioner) Describe(ctx context.Context, mimeType string, image []byte, prompt string) (string, error) {
	args := m.Called(ctx, mimeType, image, prompt)
	return args.String(0), args.Error(1)
}

var (
	ctxBG    = context.Background()
	quietLog = logging.Discard()
)
