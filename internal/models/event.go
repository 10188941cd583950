package models

import "time"

// Recipe lifecycle event types.
const (
	RecipeCreated = "recipe.created"
	RecipeDeleted = "recipe.deleted"
)

// RecipeEvent is published whenever a recipe is created or deleted.
type RecipeEvent struct {
	Type       string    `json:"type"`
	RecipeID   uint      `json:"recipe_id"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
