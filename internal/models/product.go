package models

// Product is a catalog entry sourced from the order backend.
// Field names follow the backend wire format.
type Product struct {
	ID             int     `json:"id"`
	Nombre         string  `json:"nombre"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Estado         string  `json:"estado"`
}

// StockResult is the backend's answer to a stock check.
type StockResult struct {
	Disponible     bool    `json:"disponible"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Total          float64 `json:"total"`
	Mensaje        string  `json:"mensaje"`
}
