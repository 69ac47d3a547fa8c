package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/pkg/validate"
)

// SweetHandler maneja catálogo, compras, reposición y libro de compras.
type SweetHandler struct {
	uc *sandbox.SweetUseCase
	v  *validate.Validator
}

// NewSweetHandler construye el handler del catálogo.
func NewSweetHandler(uc *sandbox.SweetUseCase, v *validate.Validator) *SweetHandler {
	return &SweetHandler{uc: uc, v: v}
}

// List godoc
// @Summary      Listar catálogo
// @Tags         sweets
// @Security     BearerAuth
// @Router       /api/sweets/ [get]
func (h *SweetHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar por nombre, categoría y rango de precio
// @Tags         sweets
// @Security     BearerAuth
// @Router       /api/sweets/search [get]
func (h *SweetHandler) Search(c *fiber.Ctx) error {
	f := sandbox.SearchFilter{Name: c.Query("name"), Category: c.Query("category")}
	var errs []validate.FieldError
	for _, p := range []struct {
		key string
		dst **decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, validate.FieldError{Field: p.key, Message: "Input should be a valid number"})
			continue
		}
		*p.dst = &d
	}
	if len(errs) > 0 {
		return invalid(c, "query", errs)
	}
	out, err := h.uc.Search(c.UserContext(), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear dulce (admin)
// @Tags         sweets
// @Security     BearerAuth
// @Param        body  body  dto.SweetRequest  true  "dulce"
// @Success      201   {object}  dto.SweetResponse
// @Router       /api/sweets/ [post]
func (h *SweetHandler) Create(c *fiber.Ctx) error {
	var in dto.SweetRequest
	if ok, err := bind(c, h.v, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar dulce (admin dueño)
// @Tags         sweets
// @Security     BearerAuth
// @Router       /api/sweets/{id}/ [put]
func (h *SweetHandler) Update(c *fiber.Ctx) error {
	id, ok, err := h.id(c)
	if !ok {
		return err
	}
	var in dto.SweetRequest
	if ok, err := bind(c, h.v, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar dulce (admin dueño)
// @Tags         sweets
// @Security     BearerAuth
// @Success      204
// @Router       /api/sweets/{id}/ [delete]
func (h *SweetHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := h.id(c)
	if !ok {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Purchase godoc
// @Summary      Comprar unidades de un dulce
// @Tags         sweets
// @Security     BearerAuth
// @Router       /api/sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c *fiber.Ctx) error {
	id, ok, err := h.id(c)
	if !ok {
		return err
	}
	in := dto.QuantityRequest{Quantity: 1}
	if ok, err := bind(c, h.v, &in); !ok {
		return err
	}
	out, err := h.uc.Purchase(c.UserContext(), GetUserID(c), id, in.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Restock godoc
// @Summary      Reponer unidades (admin)
// @Tags         sweets
// @Security     BearerAuth
// @Router       /api/sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c *fiber.Ctx) error {
	id, ok, err := h.id(c)
	if !ok {
		return err
	}
	var in dto.QuantityRequest
	if ok, err := bind(c, h.v, &in); !ok {
		return err
	}
	out, err := h.uc.Restock(c.UserContext(), id, in.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Compras del usuario autenticado
// @Tags         sweets
// @Security     BearerAuth
// @Router       /api/sweets/purchase-history [get]
func (h *SweetHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// AdminHistory godoc
// @Summary      Ventas de los dulces del admin a usuarios regulares
// @Tags         sweets
// @Security     BearerAuth
// @Router       /api/sweets/admin/purchase-history [get]
func (h *SweetHandler) AdminHistory(c *fiber.Ctx) error {
	out, err := h.uc.AdminHistory(c.UserContext(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *SweetHandler) id(c *fiber.Ctx) (int64, bool, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false, invalid(c, "path", []validate.FieldError{{Field: "id", Message: "Input should be a valid integer"}})
	}
	return int64(id), true, nil
}
