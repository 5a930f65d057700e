package model

import "time"

// Order statuses as reported by the delivery backend.
const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// Location is the GeoJSON-style point the backend embeds in restaurant and
// order payloads. Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
}

// Point extracts a GeoPoint from the location. A missing location or a
// coordinates array that is not exactly two numbers is "unknown", never zero.
func (l *Location) Point() (GeoPoint, bool) {
	if l == nil || len(l.Coordinates) != 2 {
		return GeoPoint{}, false
	}
	return GeoPoint{Longitude: l.Coordinates[0], Latitude: l.Coordinates[1]}, true
}

type Restaurant struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Location *Location `json:"location,omitempty"`
}

type Customer struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name,omitempty"`
}

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is read-only to the console; the backend owns its lifecycle.
type Order struct {
	ID                  string      `json:"_id"`
	Status              string      `json:"status"`
	Restaurant          *Restaurant `json:"restaurant,omitempty"`
	RestaurantID        string      `json:"restaurantId,omitempty"`
	DeliveryLocation    *Location   `json:"deliveryLocation,omitempty"`
	DeliveryAddress     string      `json:"deliveryAddress,omitempty"`
	Items               []OrderItem `json:"items,omitempty"`
	PaymentMethod       string      `json:"paymentMethod,omitempty"`
	SpecialInstructions string      `json:"specialInstructions,omitempty"`
	Subtotal            float64     `json:"subtotal,omitempty"`
	DeliveryFee         float64     `json:"deliveryFee,omitempty"`
	Tax                 float64     `json:"tax,omitempty"`
	Tip                 float64     `json:"tip,omitempty"`
	TotalAmount         float64     `json:"totalAmount,omitempty"`
	CreatedAt           time.Time   `json:"createdAt,omitempty"`
	Customer            *Customer   `json:"user,omitempty"`
}

// RestaurantPoint returns the pickup coordinates when the order carries them.
func (o *Order) RestaurantPoint() (GeoPoint, bool) {
	if o.Restaurant == nil {
		return GeoPoint{}, false
	}
	return o.Restaurant.Location.Point()
}

// DeliveryPointCoords returns the drop-off coordinates when present.
func (o *Order) DeliveryPointCoords() (GeoPoint, bool) {
	return o.DeliveryLocation.Point()
}

// CustomerName falls back to a generic label when the payload has no user.
func (o *Order) CustomerName() string {
	if o.Customer == nil || o.Customer.Name == "" {
		return "Customer"
	}
	return o.Customer.Name
}
