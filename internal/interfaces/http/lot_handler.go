package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lots"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// LotHandler maneja las peticiones HTTP de producción de lotes (protegido, solo fabricantes).
type LotHandler struct {
	registry *lots.Registry
}

// NewLotHandler construye el handler.
func NewLotHandler(registry *lots.Registry) *LotHandler {
	return &LotHandler{registry: registry}
}

// Create produce un lote nuevo con sus códigos virtuales.
func (h *LotHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	manufactureDate, err := time.Parse("2006-01-02", in.ManufactureDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "manufacture_date: formato YYYY-MM-DD"})
	}
	expiryDate, err := time.Parse("2006-01-02", in.ExpiryDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "expiry_date: formato YYYY-MM-DD"})
	}

	lot, err := h.registry.CreateLot(c.Context(), lots.CreateLotInput{
		ManufacturerID:  orgID,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		ManufactureDate: manufactureDate,
		ExpiryDate:      expiryDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLotResponse(lot))
}

func toLotResponse(lot *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:              lot.ID,
		ProductID:       lot.ProductID,
		LotNumber:       lot.LotNumber,
		Quantity:        lot.Quantity,
		ManufactureDate: lot.ManufactureDate,
		ExpiryDate:      lot.ExpiryDate,
		CreatedAt:       lot.CreatedAt,
	}
}
