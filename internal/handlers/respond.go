package handlers

import (
	"errors"
	"fmt"

	"tokoadmin/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// responder writes the JSON error bodies of one service. The auth service puts
// the text under "message", the product and shipping services under "error".
type responder struct {
	key string
	lg  *zap.SugaredLogger
	dev bool
}

// fail maps err onto a status and body. Internal errors get fallback as their
// message and, in development, the underlying error under "details".
func (r responder) fail(c *fiber.Ctx, err error, fallback string, extra fiber.Map) error {
	status := apperrors.HTTPStatus(err)
	msg := apperrors.Message(err)
	if apperrors.KindOf(err) == apperrors.KindInternal {
		msg = fallback
	}

	body := fiber.Map{r.key: msg}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	for k, v := range extra {
		body[k] = v
	}

	if status >= fiber.StatusInternalServerError {
		r.lg.Errorw(fallback, "method", c.Method(), "path", c.Path(), "error", err)
		if r.dev {
			body["details"] = err.Error()
		}
	} else {
		r.lg.Infow("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(body)
}

var validate = validator.New()

// validateStruct runs the validate tags of req and flattens failures into one
// message per field.
func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Validation("Invalid request body")
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperrors.ValidationFields("Validation failed", errorMessages)
}

// parseBody decodes the request body into req and validates it.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return validateStruct(req)
}

// idParam reads a positive integer path parameter.
func idParam(c *fiber.Ctx, msg string) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.Validation(msg)
	}
	return uint(id), nil
}
