package repositories

import (
	"context"

	"recipebox/internal/models"
)

// RecipeRepository defines the interface for recipe data access. Every
// read and delete is scoped to the owning account.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	ListSummariesByOwner(ctx context.Context, ownerID uint) ([]models.RecipeSummary, error)
	GetByOwnerAndID(ctx context.Context, ownerID, id uint) (*models.Recipe, error)
	Delete(ctx context.Context, ownerID, id uint) error
}
