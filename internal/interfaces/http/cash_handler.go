package http

import (
	"github.com/AstralMoonlight/torn/internal/application/cash"
	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/gofiber/fiber/v2"
)

// CashHandler apertura, cierre y estado del turno del cajero autenticado.
type CashHandler struct {
	m *cash.Manager
}

// NewCashHandler construye el handler.
func NewCashHandler(m *cash.Manager) *CashHandler {
	return &CashHandler{m: m}
}

// Open godoc
// @Summary      Abrir caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenCashRequest  true  "fondo inicial; force cierra de oficio la sesión previa"
// @Success      201   {object}  dto.OpenCashResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/open [post]
func (h *CashHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCashRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.m.Open(c.UserContext(), GetUserID(c), in.OpeningFloat, in.Force)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Close POST /api/cash/close
func (h *CashHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCashRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.m.Close(c.UserContext(), GetUserID(c), in.DeclaredCash)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Status GET /api/cash/status
func (h *CashHandler) Status(c *fiber.Ctx) error {
	out, err := h.m.Status(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
