package models

import "time"

// Recipe is an uploaded food photo owned by an Account.
type Recipe struct {
	ID        uint      `gorm:"primaryKey"`
	AccountID uint      `gorm:"not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Detail    string    `gorm:"type:text;not null"`
	Image     []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`

	Account *Account `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// RecipeSummary is the list projection of a Recipe.
type RecipeSummary struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

// RecipeDetail is the detail projection of a Recipe with the image
// already base64 encoded.
type RecipeDetail struct {
	Name        string
	ImageBase64 string
	Detail      string
}

// CreateRecipeForm holds the text fields of POST /post_reciept/.
type CreateRecipeForm struct {
	UserID     uint   `form:"user_id"`
	RecipeName string `form:"recipe_name" validate:"required,max=255"`
	Detail     string `form:"detail" validate:"required"`
}

// RecipeSummaryResponse is one row of GET /reciept_table/.
type RecipeSummaryResponse struct {
	ID   uint      `json:"Id"`
	Name string    `json:"Name"`
	Date time.Time `json:"Date"`
}

// RecipeDetailResponse is one row of GET /reciept_detail/. Date carries the
// detail text; clients already depend on that key.
type RecipeDetailResponse struct {
	Name  string `json:"Name"`
	Image string `json:"Image"`
	Date  string `json:"Date"`
}
