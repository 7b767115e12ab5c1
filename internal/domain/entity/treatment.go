package entity

import "time"

// Estados de tratamiento. COMPLETED puede pasar una sola vez a RECALLED
// dentro de la ventana de recall.
type TreatmentStatus string

const (
	TreatmentCompleted TreatmentStatus = "COMPLETED"
	TreatmentRecalled  TreatmentStatus = "RECALLED"
)

// Treatment registra el uso de unidades en un paciente.
// El paciente se referencia por el hash SHA-256 del teléfono, nunca el teléfono en claro.
type Treatment struct {
	ID               string
	HospitalID       string
	PatientPhoneHash string
	Lines            []ProductLine
	CodeIDs          []string
	TreatmentDate    time.Time
	Status           TreatmentStatus
	RecallReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
