package repositories

import (
	"context"
	"errors"
	"fmt"

	"recipebox/internal/common"
	"recipebox/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

// Create checks the owner and inserts the recipe in one transaction. An
// unknown owner is common.ErrNotFound whether the check or the foreign key
// catches it.
func (r *GORMRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&models.Account{}).Where("id = ?", recipe.AccountID).Count(&owners).Error; err != nil {
			return fmt.Errorf("failed to look up account %d: %w", recipe.AccountID, err)
		}
		if owners == 0 {
			return fmt.Errorf("account with ID %d: %w", recipe.AccountID, common.ErrNotFound)
		}

		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("account with ID %d: %w", recipe.AccountID, common.ErrNotFound)
			}
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return nil
	})
}

// ListSummariesByOwner returns id, name and creation time of the owner's
// recipes, oldest first.
func (r *GORMRecipeRepository) ListSummariesByOwner(ctx context.Context, ownerID uint) ([]models.RecipeSummary, error) {
	summaries := make([]models.RecipeSummary, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("id", "name", "created_at").
		Where("account_id = ?", ownerID).
		Order("created_at ASC").
		Order("id ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes for account %d: %w", ownerID, err)
	}
	return summaries, nil
}

// GetByOwnerAndID retrieves a recipe only if it belongs to ownerID.
func (r *GORMRecipeRepository) GetByOwnerAndID(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, "id = ? AND account_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe with ID %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by ID %d: %w", id, err)
	}
	return &recipe, nil
}

// Delete removes a recipe owned by ownerID.
func (r *GORMRecipeRepository) Delete(ctx context.Context, ownerID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND account_id = ?", id, ownerID).Delete(&models.Recipe{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe with ID %d: %w", id, common.ErrNotFound)
	}
	return nil
}
