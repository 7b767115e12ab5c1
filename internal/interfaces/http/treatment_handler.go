package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
)

// TreatmentHandler maneja las peticiones HTTP de tratamientos y recalls (protegido, solo hospitales).
type TreatmentHandler struct {
	coord *coordinator.Coordinator
}

// NewTreatmentHandler construye el handler.
func NewTreatmentHandler(coord *coordinator.Coordinator) *TreatmentHandler {
	return &TreatmentHandler{coord: coord}
}

// Register registra un tratamiento del hospital autenticado.
// El teléfono del paciente se valida, normaliza y hashea aquí: nunca cruza
// la frontera de la aplicación en claro.
func (h *TreatmentHandler) Register(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterTreatmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	phone := rules.NormalizePhone(in.PatientPhone)
	if !rules.ValidPhone(phone) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "teléfono de paciente inválido"})
	}
	treatmentDate := time.Now()
	if in.TreatmentDate != "" {
		var err error
		treatmentDate, err = time.Parse("2006-01-02", in.TreatmentDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "treatment_date: formato YYYY-MM-DD"})
		}
	}

	treatment, err := h.coord.RegisterTreatment(c.Context(), coordinator.RegisterTreatmentInput{
		HospitalID:       orgID,
		PatientPhoneHash: rules.HashPhone(phone),
		Lines:            toLines(in.Lines),
		TreatmentDate:    treatmentDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTreatmentResponse(treatment))
}

// Recall revierte un tratamiento dentro de la ventana de recall.
func (h *TreatmentHandler) Recall(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RecallRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	treatment, err := h.coord.Recall(c.Context(), orgID, c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTreatmentResponse(treatment))
}

func toTreatmentResponse(t *entity.Treatment) dto.TreatmentResponse {
	return dto.TreatmentResponse{
		ID:            t.ID,
		HospitalID:    t.HospitalID,
		Lines:         fromLines(t.Lines),
		TreatmentDate: t.TreatmentDate,
		Status:        string(t.Status),
		RecallReason:  t.RecallReason,
		CreatedAt:     t.CreatedAt,
	}
}
