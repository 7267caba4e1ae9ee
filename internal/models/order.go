package models

// OrderItem is one line of the cart. Items are append-only: once added they
// are never mutated, only summed into a total.
type OrderItem struct {
	ProductoID     int     `json:"producto_id"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Subtotal       float64 `json:"subtotal"`
}

// CartTotal sums the item subtotals.
func CartTotal(items []OrderItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Subtotal
	}
	return total
}

// Customer is the identity submitted to the order backend when the order is
// confirmed.
type Customer struct {
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	DNI             string `json:"dni"`
	Telefono        string `json:"telefono"`
	Direccion       string `json:"direccion"`
	Ciudad          string `json:"ciudad"`
}

// OrderDetail is the backend's view of a confirmed order.
type OrderDetail struct {
	ID          int     `json:"id"`
	Estado      string  `json:"estado"`
	TotalPedido float64 `json:"total_pedido"`
}

// Distribution carries the dispatch and delivery dates for an order.
type Distribution struct {
	FechaSalida  string `json:"fecha_salida"`
	FechaEntrega string `json:"fecha_entrega"`
}
