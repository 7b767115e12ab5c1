package entity

import "time"

// Estados de producto.
type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

// Product es un producto del maestro, propiedad de un fabricante.
// Inmutable una vez referenciado por un lote, salvo el toggle de estado.
type Product struct {
	ID             string
	ManufacturerID string
	Name           string
	Code           string // código alfanumérico 6-20 caracteres
	Status         ProductStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductLine es una línea (producto, cantidad) de un embarque, tratamiento o devolución.
type ProductLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
