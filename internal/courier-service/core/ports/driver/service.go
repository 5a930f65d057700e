package driver

import (
	"context"
	"time"

	"courier-console/internal/courier-service/core/domain/model"
)

// IOrdersService is the confirmed-orders store: the sole source of truth for
// anything geospatial. Consumers read snapshots and issue commands; they
// never mutate derived state directly.
type IOrdersService interface {
	FetchConfirmedOrders(ctx context.Context) error
	UpdateAgentLocation(loc model.GeoPoint)
	AcceptOrder(ctx context.Context, orderID string) error
	AddConfirmedOrder(ctx context.Context, orderID string) error
	ClearOrders()
	Reset()
	Snapshot() model.Snapshot
}

// ITrackerService polls the device position while the agent is available.
type ITrackerService interface {
	Start(interval time.Duration)
	Stop()
	Tracking() bool
	Position() model.TrackedPosition
	LastError() string
}
