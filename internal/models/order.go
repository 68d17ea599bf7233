package models

// OrderItem is one order line on the create-order wire format. The
// backend API keeps its original Spanish field names.
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precioUnitario"`
	Comments  string  `json:"comentarios,omitempty"`
}

// OrderResponseItem is an order line as echoed back by the backend.
type OrderResponseItem struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   float64 `json:"precioUnitario"`
	Subtotal    float64 `json:"subtotal"`
	Comments    string  `json:"comentarios,omitempty"`
}

// OrderResponse is the created order returned by the backend.
type OrderResponse struct {
	ID            string              `json:"id"`
	CustomerID    int64               `json:"customerId"`
	CustomerName  string              `json:"customerName"`
	CustomerEmail string              `json:"customerEmail"`
	TenantID      int64               `json:"tenantId"`
	Date          string              `json:"fecha"`
	Status        string              `json:"estado"`
	Subtotal      float64             `json:"subtotal"`
	Discount      float64             `json:"descuento"`
	Total         float64             `json:"total"`
	Source        string              `json:"source"`
	Items         []OrderResponseItem `json:"items"`
	CreatedAt     string              `json:"createdAt"`
	UpdatedAt     string              `json:"updatedAt"`
}
