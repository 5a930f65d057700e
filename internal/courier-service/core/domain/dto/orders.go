package dto

import "courier-console/internal/courier-service/core/domain/model"

type ConfirmedOrdersResponse struct {
	Orders []model.Order `json:"orders"`
}

type OrderResponse struct {
	Order *model.Order `json:"order"`
}

type RestaurantResponse struct {
	Restaurant *model.Restaurant `json:"restaurant"`
}

type AcceptOrderResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
