package http

import (
	"github.com/AstralMoonlight/torn/internal/application/catalog"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler operaciones de catálogo que afectan la venta (protegido).
type ProductHandler struct {
	uc *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Deactivate godoc
// @Summary      Desactivar producto y sus variantes
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto raíz"
// @Success      200  {object}  dto.DeactivateProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
