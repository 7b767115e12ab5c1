package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ReturnHandler maneja las peticiones HTTP de devoluciones (protegido).
type ReturnHandler struct {
	coord *coordinator.Coordinator
}

// NewReturnHandler construye el handler.
func NewReturnHandler(coord *coordinator.Coordinator) *ReturnHandler {
	return &ReturnHandler{coord: coord}
}

// Create solicita una devolución del solicitante autenticado hacia el eslabón anterior.
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	request, err := h.coord.RequestReturn(c.Context(), coordinator.RequestReturnInput{
		RequesterID: orgID,
		TargetID:    in.TargetID,
		Lines:       toLines(in.Lines),
		Reason:      in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReturnResponse(request))
}

// Approve aprueba la devolución; las unidades entran al stock del objetivo.
func (h *ReturnHandler) Approve(c *fiber.Ctx) error {
	return h.resolve(c, true)
}

// Reject rechaza la devolución; las unidades vuelven al solicitante.
func (h *ReturnHandler) Reject(c *fiber.Ctx) error {
	return h.resolve(c, false)
}

func (h *ReturnHandler) resolve(c *fiber.Ctx, approve bool) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	request, err := h.coord.ResolveReturn(c.Context(), orgID, c.Params("id"), approve)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReturnResponse(request))
}

func toReturnResponse(r *entity.ReturnRequest) dto.ReturnResponse {
	return dto.ReturnResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		TargetID:    r.TargetID,
		Lines:       fromLines(r.Lines),
		Reason:      r.Reason,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}
