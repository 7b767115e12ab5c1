package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// InventoryHandler maneja las consultas de inventario y el desecho de unidades (protegido).
type InventoryHandler struct {
	ledger *ledger.Ledger
	coord  *coordinator.Coordinator
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(l *ledger.Ledger, coord *coordinator.Coordinator) *InventoryHandler {
	return &InventoryHandler{ledger: l, coord: coord}
}

// Count retorna el conteo de códigos del propietario autenticado por producto y estado.
func (h *InventoryHandler) Count(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}
	status := entity.CodeStatus(c.Query("status", string(entity.CodeInStock)))

	count, err := h.ledger.CountByStatus(orgID, productID, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.InventoryCountResponse{ProductID: productID, Status: string(status), Count: count})
}

// Codes lista los códigos del propietario autenticado en orden FIFO.
func (h *InventoryHandler) Codes(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}
	status := entity.CodeStatus(c.Query("status", string(entity.CodeInStock)))

	codes, err := h.ledger.ListCodes(orgID, productID, status)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.VirtualCodeResponse, 0, len(codes))
	for _, code := range codes {
		out = append(out, dto.VirtualCodeResponse{
			ID:              code.ID,
			Code:            code.Code,
			LotID:           code.LotID,
			ProductID:       code.ProductID,
			Status:          string(code.Status),
			ManufactureDate: code.ManufactureDate,
			ExpiryDate:      code.ExpiryDate,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "codes": out})
}

// Dispose marca unidades propias como desechadas (terminal, irreversible).
func (h *InventoryHandler) Dispose(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DisposeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.CodeIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code_ids requerido"})
	}
	if err := h.coord.Dispose(c.Context(), orgID, in.CodeIDs); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "unidades desechadas", "count": len(in.CodeIDs)})
}
