package handlers

import (
	"errors"

	"recipebox/internal/common"
	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CaptionHandler handles image description requests.
type CaptionHandler struct {
	service *services.CaptionService
}

// NewCaptionHandler creates a new CaptionHandler.
func NewCaptionHandler(service *services.CaptionService) *CaptionHandler {
	return &CaptionHandler{service: service}
}

// RegisterRoutes registers the caption route.
func (h *CaptionHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/process-image/", h.HandleProcessImage)
}

// HandleProcessImage always answers 200 once a file was uploaded; failures
// are reported as {"status":"error","error":...}.
func (h *CaptionHandler) HandleProcessImage(c *fiber.Ctx) error {
	image, err := readFormFile(c, "file")
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) && verr.Fields["file"] == "file is required" {
			return err
		}
		return c.JSON(fiber.Map{"status": "error", "error": err.Error()})
	}

	text, err := h.service.DescribeDish(c.UserContext(), image)
	if err != nil {
		return c.JSON(fiber.Map{"status": "error", "error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"result": text,
	})
}
