package checkout

import "time"

type DeliveryInfo struct {
	Date         string `json:"date"`
	TimeSlot     string `json:"timeSlot"`
	Address      string `json:"address"`
	Instructions string `json:"instructions,omitempty"`
}

type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type AddressInfo struct {
	Street       string   `json:"street"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zipCode"`
	Instructions string   `json:"instructions,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// LastOrderInfo is the persisted memory of the most recent completed order,
// used to offer "add to previous order" bundling on the next checkout.
type LastOrderInfo struct {
	OrderNumber   string    `json:"orderNumber"`
	Total         float64   `json:"total"`
	Date          time.Time `json:"date"`
	Address       string    `json:"address"`
	DeliveryDate  string    `json:"deliveryDate"`
	DeliveryTime  string    `json:"deliveryTime"`
	Instructions  string    `json:"instructions,omitempty"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
