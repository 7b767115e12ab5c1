package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProductLineDTO línea (producto, cantidad) en requests y responses.
type ProductLineDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
