package http

import (
	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/application/folio"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// FolioHandler alta y consulta de rangos CAF.
type FolioHandler struct {
	uc *folio.RangeUseCase
}

func NewFolioHandler(uc *folio.RangeUseCase) *FolioHandler {
	return &FolioHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar rango de folios (CAF)
// @Tags         folios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterFolioRangeRequest  true  "tipo de documento y rango autorizado"
// @Success      201   {object}  dto.FolioRangeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/folios [post]
func (h *FolioHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterFolioRangeRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/folios?doc_type=39 (sin doc_type lista todos).
func (h *FolioHandler) List(c *fiber.Ctx) error {
	docType := c.QueryInt("doc_type", 0)
	if docType < 0 {
		return respondError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.List(c.UserContext(), docType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "ranges": out})
}
