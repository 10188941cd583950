package handlers

import (
	"errors"

	"recipebox/internal/common"
	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for signup and login.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/signup/", h.HandleSignup)
	router.Post("/login/", h.HandleLogin)
}

// HandleSignup handles new account registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return common.NewValidationError("body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	account, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			h.log.WithField("username", req.Username).Info("signup rejected: username taken")
			return fiber.NewError(fiber.StatusConflict, "Username already registered")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"message": "User created successfully",
		"user_id": account.ID,
	})
}

// HandleLogin verifies credentials and issues a bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return common.NewValidationError("body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	token, account, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.log.WithField("username", req.Username).Info("login failed")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      account.ID,
	})
}
