package http

import (
	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/application/issuer"
	"github.com/gofiber/fiber/v2"
)

// IssuerHandler perfil tributario del emisor.
type IssuerHandler struct {
	uc *issuer.ProfileUseCase
}

func NewIssuerHandler(uc *issuer.ProfileUseCase) *IssuerHandler {
	return &IssuerHandler{uc: uc}
}

// Configure godoc
// @Summary      Configurar emisor
// @Tags         issuer
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssuerRequest  true  "RUT, razón social, giro y dirección"
// @Success      200   {object}  dto.IssuerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/issuer [put]
func (h *IssuerHandler) Configure(c *fiber.Ctx) error {
	var in dto.IssuerRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Configure(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get GET /api/issuer
func (h *IssuerHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
