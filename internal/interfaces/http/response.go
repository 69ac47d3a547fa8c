package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/pkg/validate"
)

// detail responde {"detail": msg} con el status dado.
func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Detail: msg})
}

// fail traduce un error del caso de uso al status HTTP y su detalle.
func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		return detail(c, status, "Internal server error")
	}
	return detail(c, status, domain.Detail(err, ""))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// invalid responde 422 con la lista de campos inválidos (detail es una lista de {loc, msg}).
func invalid(c *fiber.Ctx, location string, errs []validate.FieldError) error {
	items := make([]dto.ValidationErrorItem, 0, len(errs))
	for _, e := range errs {
		items = append(items, dto.ValidationErrorItem{Loc: []string{location, e.Field}, Msg: e.Message, Type: "value_error"})
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{Detail: items})
}

// bind parsea el cuerpo (JSON o formulario) y lo valida.
func bind(c *fiber.Ctx, v *validate.Validator, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, detail(c, fiber.StatusUnprocessableEntity, "Invalid request body")
	}
	if errs := v.Struct(out); len(errs) > 0 {
		return false, invalid(c, "body", errs)
	}
	return true, nil
}
