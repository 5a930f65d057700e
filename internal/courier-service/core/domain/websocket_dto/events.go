package websocketdto

const (
	MessageTypeAuth               = "auth"
	MessageTypeOrderConfirmed     = "order_confirmed"
	MessageTypeOrderStatusUpdated = "order_status_updated"
)

type WebSocketMessage struct {
	Type string `json:"type"`
}

type AuthMessage struct {
	WebSocketMessage
	Token string `json:"token"`
}

type OrderConfirmedMessage struct {
	WebSocketMessage
	OrderID string `json:"order_id"`
}

type OrderStatusUpdatedMessage struct {
	WebSocketMessage
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
