package handlers

import (
	"errors"
	"io"

	"recipebox/internal/common"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RecipeHandler handles HTTP requests for recipe records.
type RecipeHandler struct {
	service  *services.RecipeService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service *services.RecipeService, log *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the recipe routes behind the given auth handler.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Post("/post_reciept/", auth, h.HandleCreateRecipe)
	router.Get("/reciept_table/", auth, h.HandleListRecipes)
	router.Get("/reciept_detail/", auth, h.HandleGetRecipeDetail)
	router.Delete("/delete_reciept/", auth, h.HandleDeleteRecipe)
}

const ownerRequiredMsg = "is required: send an Authorization bearer token or the user_id parameter"

// resolveOwner picks the account a request acts for. A verified token
// wins and must agree with any user_id the client sent.
func resolveOwner(c *fiber.Ctx, requested uint) (uint, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		if requested == 0 {
			return 0, common.NewValidationError("user_id", ownerRequiredMsg)
		}
		return requested, nil
	}
	if requested != 0 && requested != claims.UserID {
		return 0, common.ErrForbidden
	}
	return claims.UserID, nil
}

// HandleCreateRecipe stores an uploaded photo with its name and detail.
func (h *RecipeHandler) HandleCreateRecipe(c *fiber.Ctx) error {
	var form models.CreateRecipeForm
	if err := c.BodyParser(&form); err != nil {
		return common.NewValidationError("body", "invalid form data")
	}
	if err := validateStruct(h.validate, form); err != nil {
		return err
	}
	ownerID, err := resolveOwner(c, form.UserID)
	if err != nil {
		return err
	}

	image, err := readFormFile(c, "image")
	if err != nil {
		return err
	}

	recipe, err := h.service.CreateRecipe(c.UserContext(), ownerID, form.RecipeName, form.Detail, image)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Reciept created successfully",
		"id":      recipe.ID,
	})
}

// HandleListRecipes lists id, name and date of the owner's recipes.
func (h *RecipeHandler) HandleListRecipes(c *fiber.Ctx) error {
	requested, err := queryID(c, "user_id")
	if err != nil {
		return err
	}
	ownerID, err := resolveOwner(c, requested)
	if err != nil {
		return err
	}

	summaries, err := h.service.ListSummaries(c.UserContext(), ownerID)
	if err != nil {
		return err
	}

	rows := make([]models.RecipeSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, models.RecipeSummaryResponse{ID: s.ID, Name: s.Name, Date: s.CreatedAt})
	}
	return c.JSON(rows)
}

// HandleGetRecipeDetail returns one recipe with its base64 image.
func (h *RecipeHandler) HandleGetRecipeDetail(c *fiber.Ctx) error {
	requested, err := queryID(c, "user_id")
	if err != nil {
		return err
	}
	recipeID, err := requiredQueryID(c, "reciept_id")
	if err != nil {
		return err
	}
	ownerID, err := resolveOwner(c, requested)
	if err != nil {
		return err
	}

	detail, err := h.service.GetDetail(c.UserContext(), ownerID, recipeID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Reciept not found")
		}
		return err
	}

	return c.JSON([]models.RecipeDetailResponse{{
		Name:  detail.Name,
		Image: detail.ImageBase64,
		Date:  detail.Detail,
	}})
}

// HandleDeleteRecipe deletes one of the owner's recipes.
func (h *RecipeHandler) HandleDeleteRecipe(c *fiber.Ctx) error {
	recipeID, err := requiredQueryID(c, "reciept_id")
	if err != nil {
		return err
	}
	requested, err := queryID(c, "user_id")
	if err != nil {
		return err
	}
	ownerID, err := resolveOwner(c, requested)
	if err != nil {
		return err
	}

	if err := h.service.DeleteRecipe(c.UserContext(), ownerID, recipeID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Reciept not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"message": "Reciept deleted successfully"})
}

// readFormFile reads a whole multipart file field into memory.
func readFormFile(c *fiber.Ctx, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, common.NewValidationError(field, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, common.NewValidationError(field, "file is empty")
	}
	return data, nil
}
