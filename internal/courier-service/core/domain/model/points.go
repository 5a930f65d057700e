package model

import "time"

// GeoPoint is a known (longitude, latitude) pair. Unknown positions are
// represented by a nil *GeoPoint, never by zero values.
type GeoPoint struct {
	Longitude float64
	Latitude  float64
}

// OrderDetails is the order summary embedded in a pickup point for display.
type OrderDetails struct {
	Items               []OrderItem
	PaymentMethod       string
	SpecialInstructions string
	Subtotal            float64
	DeliveryFee         float64
	Tax                 float64
	Tip                 float64
	Total               float64
}

// PickupPoint is derived from an order whose restaurant location is known.
// Orders without restaurant coordinates never produce one.
type PickupPoint struct {
	OrderID         string
	RestaurantID    string
	RestaurantName  string
	Longitude       float64
	Latitude        float64
	Delivery        *GeoPoint // nil when the order has no drop-off coordinates
	DeliveryAddress string
	OrderAmount     float64
	Items           int
	CustomerName    string
	OrderTime       time.Time
	Status          string
	Details         OrderDetails
}

// DeliveryPoint is derived from an order that carries drop-off coordinates.
type DeliveryPoint struct {
	OrderID      string
	Longitude    float64
	Latitude     float64
	Address      string
	CustomerName string
}

// TrackedPosition is the last device fix the tracker obtained.
type TrackedPosition struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Timestamp      time.Time
	Known          bool
}

// Snapshot is the read-only view handed to consumers. The map surface and
// any other reader must route every change back through the store's
// operations; nothing here aliases live store state.
type Snapshot struct {
	Orders                    []Order
	PickupPoints              []PickupPoint
	DeliveryPoints            []DeliveryPoint
	AgentLocation             *GeoPoint
	Distances                 map[string]float64 // orderID -> agent-to-pickup km
	PickupToDeliveryDistances map[string]float64 // orderID -> pickup-to-dropoff km
	EstimatedTravelTimes      map[string]int     // orderID -> minutes at 30 km/h
	IsLoading                 bool
	Err                       string
	LastUpdated               time.Time
	AcceptingOrderID          string
}
