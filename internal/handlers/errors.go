package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"recipebox/internal/common"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error returned by a handler as {"detail": ...}.
// Unrecognized errors become a generic 500 and are logged.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verr *common.ValidationError
		var ferr *fiber.Error

		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": verr.Fields})
		case errors.As(err, &ferr):
			return c.Status(ferr.Code).JSON(fiber.Map{"detail": ferr.Message})
		case errors.Is(err, common.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid credentials"})
		case errors.Is(err, common.ErrInvalidToken):
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid or expired token"})
		case errors.Is(err, common.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not allowed to access another user's records"})
		case errors.Is(err, common.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Already exists"})
		case errors.Is(err, common.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found"})
		}

		log.WithError(err).WithFields(logrus.Fields{"method": c.Method(), "path": c.Path()}).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal Server Error"})
	}
}

// newValidator reports fields by their json or form name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validateStruct converts validator failures into a common.ValidationError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	verr := &common.ValidationError{Fields: make(map[string]string, len(validationErrors))}
	for _, e := range validationErrors {
		verr.Fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return verr
}

// queryID parses a positive integer query parameter. A missing parameter
// yields 0 and no error.
func queryID(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, common.NewValidationError(key, "must be a positive integer")
	}
	return uint(id), nil
}

// requiredQueryID is queryID for parameters that must be present.
func requiredQueryID(c *fiber.Ctx, key string) (uint, error) {
	id, err := queryID(c, key)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, common.NewValidationError(key, "is required")
	}
	return id, nil
}
