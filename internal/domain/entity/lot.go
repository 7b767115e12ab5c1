package entity

import "time"

// Lot es un lote de producción. Se crea una sola vez en producción y no se
// muta después; el estado de sus unidades vive en los códigos virtuales.
type Lot struct {
	ID              string
	ProductID       string
	ManufacturerID  string
	LotNumber       string // formato PREFIX-YYYYMMDD-SEQ, ej. ND-20250122-001
	Sequence        int    // secuencia por (fabricante, fecha de producción)
	ManufactureDate time.Time
	ExpiryDate      time.Time
	Quantity        int
	CreatedAt       time.Time
}
