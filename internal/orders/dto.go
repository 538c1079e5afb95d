package orders

// CreateOrderRequest is the checkout payload. Prices are intentionally absent:
// the server snapshots them from the catalog.
type CreateOrderRequest struct {
	Items           []CreateOrderItem          `json:"items" validate:"required,min=1,dive"`
	ShippingAddress CreateOrderShippingAddress `json:"shipping_address" validate:"required"`
}

// CreateOrderItem references a catalog product by id.
type CreateOrderItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gte=1"`
}

// CreateOrderShippingAddress mirrors ShippingAddress with validation tags.
type CreateOrderShippingAddress struct {
	FullName   string `json:"full_name" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Address converts the request form into the stored value.
func (a CreateOrderShippingAddress) Address() ShippingAddress {
	return ShippingAddress{
		FullName:   a.FullName,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// UpdateStatusRequest carries the requested target status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
