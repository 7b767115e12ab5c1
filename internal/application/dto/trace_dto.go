package dto

import "time"

// CreateProductRequest alta de producto en el maestro del fabricante.
type CreateProductRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// SetProductStatusRequest toggle de estado de producto.
type SetProductStatusRequest struct {
	Status string `json:"status"` // ACTIVE | INACTIVE
}

// ProductResponse producto del maestro.
type ProductResponse struct {
	ID             string    `json:"id"`
	ManufacturerID string    `json:"manufacturer_id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateLotRequest entrada para producir un lote.
// Las fechas van en formato YYYY-MM-DD.
type CreateLotRequest struct {
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	ManufactureDate string `json:"manufacture_date"`
	ExpiryDate      string `json:"expiry_date"`
}

// LotResponse lote producido.
type LotResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	LotNumber       string    `json:"lot_number"`
	Quantity        int       `json:"quantity"`
	ManufactureDate time.Time `json:"manufacture_date"`
	ExpiryDate      time.Time `json:"expiry_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateShipmentRequest entrada para crear un embarque.
type CreateShipmentRequest struct {
	ReceiverID string           `json:"receiver_id"`
	Lines      []ProductLineDTO `json:"lines"`
}

// ShipmentResponse transacción de embarque.
type ShipmentResponse struct {
	ID         string           `json:"id"`
	SenderID   string           `json:"sender_id"`
	ReceiverID string           `json:"receiver_id"`
	Lines      []ProductLineDTO `json:"lines"`
	Status     string           `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// RegisterTreatmentRequest entrada para registrar un tratamiento.
// El teléfono del paciente viaja en claro, se hashea antes de persistir.
type RegisterTreatmentRequest struct {
	PatientPhone  string           `json:"patient_phone"`
	Lines         []ProductLineDTO `json:"lines"`
	TreatmentDate string           `json:"treatment_date"` // YYYY-MM-DD, vacío = hoy
}

// TreatmentResponse tratamiento registrado.
type TreatmentResponse struct {
	ID            string           `json:"id"`
	HospitalID    string           `json:"hospital_id"`
	Lines         []ProductLineDTO `json:"lines"`
	TreatmentDate time.Time        `json:"treatment_date"`
	Status        string           `json:"status"`
	RecallReason  string           `json:"recall_reason,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RecallRequest entrada para revertir un tratamiento.
type RecallRequest struct {
	Reason string `json:"reason"`
}

// CreateReturnRequest entrada para solicitar una devolución.
type CreateReturnRequest struct {
	TargetID string           `json:"target_id"`
	Lines    []ProductLineDTO `json:"lines"`
	Reason   string           `json:"reason"`
}

// ReturnResponse solicitud de devolución.
type ReturnResponse struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	TargetID    string           `json:"target_id"`
	Lines       []ProductLineDTO `json:"lines"`
	Reason      string           `json:"reason"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// DisposeRequest entrada para marcar unidades como desechadas.
type DisposeRequest struct {
	CodeIDs []string `json:"code_ids"`
}

// InventoryCountResponse conteo de inventario por producto y estado.
type InventoryCountResponse struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
	Count     int    `json:"count"`
}

// VirtualCodeResponse código virtual del ledger (vista de inventario).
type VirtualCodeResponse struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	LotID           string    `json:"lot_id"`
	ProductID       string    `json:"product_id"`
	Status          string    `json:"status"`
	ManufactureDate time.Time `json:"manufacture_date"`
	ExpiryDate      time.Time `json:"expiry_date"`
}

// HistoryEntryResponse entrada del historial de auditoría.
type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Direction string    `json:"direction"`
	ProductID string    `json:"product_id"`
	LotID     string    `json:"lot_id,omitempty"`
	RefID     string    `json:"ref_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
