package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ShipmentHandler maneja las peticiones HTTP de embarques (protegido).
type ShipmentHandler struct {
	coord *coordinator.Coordinator
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(coord *coordinator.Coordinator) *ShipmentHandler {
	return &ShipmentHandler{coord: coord}
}

// Create crea un embarque del remitente autenticado hacia el receptor.
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	shipment, err := h.coord.CreateShipment(c.Context(), coordinator.CreateShipmentInput{
		SenderID:   orgID,
		ReceiverID: in.ReceiverID,
		Lines:      toLines(in.Lines),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toShipmentResponse(shipment))
}

// Accept confirma la recepción del embarque por el receptor autenticado.
func (h *ShipmentHandler) Accept(c *fiber.Ctx) error {
	return h.resolve(c, true)
}

// Reject rechaza el embarque; las unidades vuelven al remitente.
func (h *ShipmentHandler) Reject(c *fiber.Ctx) error {
	return h.resolve(c, false)
}

func (h *ShipmentHandler) resolve(c *fiber.Ctx, accept bool) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var (
		shipment *entity.Shipment
		err      error
	)
	if accept {
		shipment, err = h.coord.AcceptShipment(c.Context(), orgID, c.Params("id"))
	} else {
		shipment, err = h.coord.RejectShipment(c.Context(), orgID, c.Params("id"))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toShipmentResponse(shipment))
}

func toLines(lines []dto.ProductLineDTO) []entity.ProductLine {
	out := make([]entity.ProductLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.ProductLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

func fromLines(lines []entity.ProductLine) []dto.ProductLineDTO {
	out := make([]dto.ProductLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.ProductLineDTO{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

func toShipmentResponse(s *entity.Shipment) dto.ShipmentResponse {
	return dto.ShipmentResponse{
		ID:         s.ID,
		SenderID:   s.SenderID,
		ReceiverID: s.ReceiverID,
		Lines:      fromLines(s.Lines),
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
	}
}
