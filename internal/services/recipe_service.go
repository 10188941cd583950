package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"recipebox/internal/common"
	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"github.com/sirupsen/logrus"
)

// RecipeTimeZone is the fixed UTC+7 offset recipe timestamps are recorded in.
var RecipeTimeZone = time.FixedZone("UTC+7", 7*60*60)

// EventPublisher receives recipe lifecycle events.
type EventPublisher interface {
	PublishRecipeEvent(event models.RecipeEvent) error
}

// RecipeService handles business logic related to recipe records.
type RecipeService struct {
	accountRepo repositories.AccountRepository
	recipeRepo  repositories.RecipeRepository
	events      EventPublisher // optional
	log         *logrus.Logger
	now         func() time.Time
}

// NewRecipeService creates a new RecipeService. events may be nil.
func NewRecipeService(accountRepo repositories.AccountRepository, recipeRepo repositories.RecipeRepository, events EventPublisher, log *logrus.Logger) *RecipeService {
	return &RecipeService{
		accountRepo: accountRepo,
		recipeRepo:  recipeRepo,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// CreateRecipe stores a new recipe for ownerID.
func (s *RecipeService) CreateRecipe(ctx context.Context, ownerID uint, name, detail string, image []byte) (*models.Recipe, error) {
	name = strings.TrimSpace(name)

	verr := &common.ValidationError{Fields: map[string]string{}}
	if ownerID == 0 {
		verr.Fields["user_id"] = "is required"
	}
	if name == "" {
		verr.Fields["recipe_name"] = "is required"
	}
	if strings.TrimSpace(detail) == "" {
		verr.Fields["detail"] = "is required"
	}
	if len(image) == 0 {
		verr.Fields["image"] = "is required"
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if _, err := s.accountRepo.GetByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	recipe := &models.Recipe{
		AccountID: ownerID,
		Name:      name,
		Detail:    detail,
		Image:     image,
		CreatedAt: s.now().In(RecipeTimeZone),
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "user_id": ownerID, "image_bytes": len(image)}).Info("recipe created")
	s.publish(models.RecipeCreated, recipe.ID, ownerID)
	return recipe, nil
}

// ListSummaries returns the owner's recipes, oldest first. An owner with no
// recipes gets an empty, non-nil slice.
func (s *RecipeService) ListSummaries(ctx context.Context, ownerID uint) ([]models.RecipeSummary, error) {
	summaries, err := s.recipeRepo.ListSummariesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.RecipeSummary{}
	}
	for i := range summaries {
		summaries[i].CreatedAt = summaries[i].CreatedAt.In(RecipeTimeZone)
	}
	return summaries, nil
}

// GetDetail returns a single recipe with its image base64 encoded.
func (s *RecipeService) GetDetail(ctx context.Context, ownerID, recipeID uint) (*models.RecipeDetail, error) {
	recipe, err := s.recipeRepo.GetByOwnerAndID(ctx, ownerID, recipeID)
	if err != nil {
		return nil, err
	}
	return &models.RecipeDetail{
		Name:        recipe.Name,
		ImageBase64: base64.StdEncoding.EncodeToString(recipe.Image),
		Detail:      recipe.Detail,
	}, nil
}

// DeleteRecipe removes a recipe owned by ownerID.
func (s *RecipeService) DeleteRecipe(ctx context.Context, ownerID, recipeID uint) error {
	if err := s.recipeRepo.Delete(ctx, ownerID, recipeID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"recipe_id": recipeID, "user_id": ownerID}).Info("recipe deleted")
	s.publish(models.RecipeDeleted, recipeID, ownerID)
	return nil
}

// publish never fails the caller; a lost event is only logged.
func (s *RecipeService) publish(eventType string, recipeID, ownerID uint) {
	if s.events == nil {
		return
	}
	event := models.RecipeEvent{
		Type:       eventType,
		RecipeID:   recipeID,
		UserID:     ownerID,
		OccurredAt: s.now().In(RecipeTimeZone),
	}
	if err := s.events.PublishRecipeEvent(event); err != nil {
		s.log.WithError(err).WithField("recipe_id", recipeID).Warnf("failed to publish %s event", eventType)
	}
}
