package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// HistoryHandler maneja las consultas del historial de auditoría (protegido).
type HistoryHandler struct {
	history repository.HistoryRepository
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(history repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List retorna el historial de la organización autenticada en orden cronológico.
// from y to (YYYY-MM-DD) son opcionales; to incluye el día completo.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		var err error
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from: formato YYYY-MM-DD"})
		}
	}
	if v := c.Query("to"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to: formato YYYY-MM-DD"})
		}
		to = day.Add(24*time.Hour - time.Nanosecond)
	}

	entries, err := h.history.ListByOrganization(orgID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntryResponse{
			ID:        e.ID,
			Action:    string(e.Action),
			Direction: string(e.Direction),
			ProductID: e.ProductID,
			LotID:     e.LotID,
			RefID:     e.RefID,
			Quantity:  e.Quantity,
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}
