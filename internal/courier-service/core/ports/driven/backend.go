package driven

import (
	"context"

	"courier-console/internal/courier-service/core/domain/model"
)

// IBackend is the REST boundary to the delivery backend. Order processing
// lives entirely on the other side; the console only reads and accepts.
type IBackend interface {
	FetchConfirmedOrders(ctx context.Context) ([]model.Order, error)
	AcceptOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	GetRestaurant(ctx context.Context, restaurantID string) (model.Restaurant, error)
}
