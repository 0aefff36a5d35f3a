package http

import (
	"context"
	"errors"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// errorMapping de lo más específico a la clase general; gana la primera coincidencia.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrPaymentShortfall, fiber.StatusConflict, "PAYMENT_SHORTFALL"},
	{domain.ErrFolioRangeExhausted, fiber.StatusConflict, "FOLIO_RANGE_EXHAUSTED"},
	{domain.ErrSessionAlreadyOpen, fiber.StatusConflict, "SESSION_ALREADY_OPEN"},
	{domain.ErrReturnExceedsSale, fiber.StatusConflict, "RETURN_EXCEEDS_SALE"},
	{domain.ErrFolioRangeOverlap, fiber.StatusConflict, "FOLIO_RANGE_OVERLAP"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrNoOpenSession, fiber.StatusUnprocessableEntity, "NO_OPEN_SESSION"},
	{domain.ErrNoFolioRange, fiber.StatusUnprocessableEntity, "NO_FOLIO_RANGE"},
	{domain.ErrIssuerNotConfigured, fiber.StatusUnprocessableEntity, "ISSUER_NOT_CONFIGURED"},
	{domain.ErrInactive, fiber.StatusUnprocessableEntity, "INACTIVE"},
	{domain.ErrReturnOfCreditNote, fiber.StatusUnprocessableEntity, "RETURN_OF_CREDIT_NOTE"},
	{domain.ErrNotStockTracked, fiber.StatusUnprocessableEntity, "NOT_STOCK_TRACKED"},
	{domain.ErrPreconditionFailed, fiber.StatusUnprocessableEntity, "PRECONDITION_FAILED"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrIssuanceFailed, fiber.StatusBadGateway, "ISSUANCE_FAILED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT"},
}

// respondError traduce un error del dominio a status + dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	var be *bodyError
	if errors.As(err, &be) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: be.code, Message: be.message, Details: be.details})
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error(), Details: errorDetails(err)})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// errorDetails expone los campos de los errores tipados.
func errorDetails(err error) interface{} {
	var (
		stock     *domain.InsufficientStockError
		shortfall *domain.ShortfallError
		exhausted *domain.RangeExhaustedError
		open      *domain.SessionAlreadyOpenError
		exceeds   *domain.ReturnExceedsSaleError
		notFound  *domain.NotFoundError
	)
	switch {
	case errors.As(err, &stock):
		return fiber.Map{"product_id": stock.ProductID, "requested": stock.Requested, "available": stock.Available}
	case errors.As(err, &shortfall):
		return fiber.Map{"due": shortfall.Due, "tendered": shortfall.Tendered, "missing": shortfall.Missing}
	case errors.As(err, &exhausted):
		return fiber.Map{"doc_type": exhausted.DocType, "last_used": exhausted.LastUsed}
	case errors.As(err, &open):
		return fiber.Map{"session_id": open.SessionID, "opened_at": open.OpenedAt}
	case errors.As(err, &exceeds):
		return fiber.Map{"product_id": exceeds.ProductID, "requested": exceeds.Requested, "returnable": exceeds.Returnable}
	case errors.As(err, &notFound):
		return fiber.Map{"entity": notFound.Entity, "id": notFound.ID}
	}
	return nil
}
