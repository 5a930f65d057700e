package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"courier-console/internal/courier-service/core/domain/model"
	"courier-console/internal/courier-service/core/myerrors"
	"courier-console/internal/mylogger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu              sync.Mutex
	orders          []model.Order
	fetchErr        error
	acceptErr       error
	ordersByID      map[string]model.Order
	getOrderErr     error
	restaurants     map[string]model.Restaurant
	restaurantErr   error
	acceptCalls     []string
	restaurantCalls []string
}

func (f *fakeBackend) FetchConfirmedOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]model.Order(nil), f.orders...), nil
}

func (f *fakeBackend) AcceptOrder(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acceptCalls = append(f.acceptCalls, orderID)
	return f.acceptErr
}

func (f *fakeBackend) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getOrderErr != nil {
		return model.Order{}, f.getOrderErr
	}
	order, ok := f.ordersByID[orderID]
	if !ok {
		return model.Order{}, myerrors.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeBackend) GetRestaurant(ctx context.Context, restaurantID string) (model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restaurantCalls = append(f.restaurantCalls, restaurantID)
	if f.restaurantErr != nil {
		return model.Restaurant{}, f.restaurantErr
	}
	return f.restaurants[restaurantID], nil
}

func testLogger(t *testing.T) mylogger.Logger {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	require.NoError(t, err)
	return log
}

func orderWithCoords(id string, lat, lon float64) model.Order {
	return model.Order{
		ID:     id,
		Status: model.StatusConfirmed,
		Restaurant: &model.Restaurant{
			ID:   "rest-" + id,
			Name: "Spice Route",
			Location: &model.Location{
				Type:        "Point",
				Coordinates: []float64{lon, lat},
			},
		},
		DeliveryAddress: "12 Hill Road",
		Items:           []model.OrderItem{{Name: "Thali", Quantity: 1, Price: 320}},
		TotalAmount:     320,
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Customer:        &model.Customer{ID: "cust-1", Name: "Asha"},
	}
}

func orderWithDelivery(id string, lat, lon, dLat, dLon float64) model.Order {
	o := orderWithCoords(id, lat, lon)
	o.DeliveryLocation = &model.Location{
		Type:        "Point",
		Coordinates: []float64{dLon, dLat},
	}
	return o
}

func orderWithoutCoords(id string) model.Order {
	o := orderWithCoords(id, 0, 0)
	o.Restaurant.Location = nil
	return o
}

func TestFetchConfirmedOrders(t *testing.T) {
	t.Run("derives pickup points only for orders with coordinates", func(t *testing.T) {
		backend := &fakeBackend{orders: []model.Order{
			orderWithDelivery("o1", 19.0760, 72.8777, 19.0860, 72.8677),
			orderWithCoords("o2", 19.1000, 72.9000),
			orderWithoutCoords("o3"),
		}}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		require.NoError(t, s.FetchConfirmedOrders(context.Background()))

		snap := s.Snapshot()
		assert.Len(t, snap.Orders, 3)
		require.Len(t, snap.PickupPoints, 2)

		seen := map[string]bool{}
		for _, p := range snap.PickupPoints {
			assert.False(t, seen[p.OrderID], "duplicate pickup point for %s", p.OrderID)
			seen[p.OrderID] = true
		}
		assert.True(t, seen["o1"])
		assert.True(t, seen["o2"])

		// Only o1 carries a drop-off point.
		require.Len(t, snap.DeliveryPoints, 1)
		assert.Equal(t, "o1", snap.DeliveryPoints[0].OrderID)
		assert.Contains(t, snap.PickupToDeliveryDistances, "o1")
		assert.NotContains(t, snap.PickupToDeliveryDistances, "o2")

		// No agent location yet, so no agent distances.
		assert.Empty(t, snap.Distances)
		assert.Empty(t, snap.EstimatedTravelTimes)
		assert.False(t, snap.IsLoading)
		assert.False(t, snap.LastUpdated.IsZero())
	})

	t.Run("pickup point carries the order summary", func(t *testing.T) {
		order := orderWithDelivery("o1", 19.0760, 72.8777, 19.0860, 72.8677)
		order.PaymentMethod = "wallet"
		order.SpecialInstructions = "ring twice"
		order.Subtotal = 280
		order.DeliveryFee = 20
		order.Tax = 15
		order.Tip = 5
		backend := &fakeBackend{orders: []model.Order{order}}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		require.NoError(t, s.FetchConfirmedOrders(context.Background()))

		snap := s.Snapshot()
		require.Len(t, snap.PickupPoints, 1)
		p := snap.PickupPoints[0]
		assert.Equal(t, "Spice Route", p.RestaurantName)
		assert.Equal(t, "12 Hill Road", p.DeliveryAddress)
		assert.Equal(t, "Asha", p.CustomerName)
		assert.Equal(t, 1, p.Items)
		assert.Equal(t, "wallet", p.Details.PaymentMethod)
		assert.Equal(t, "ring twice", p.Details.SpecialInstructions)
		assert.Equal(t, 320.0, p.Details.Total)
		require.NotNil(t, p.Delivery)
		assert.Equal(t, 19.0860, p.Delivery.Latitude)
	})

	t.Run("zero-coordinate agent location never yields sentinel distances", func(t *testing.T) {
		backend := &fakeBackend{orders: []model.Order{orderWithCoords("o1", 19.0860, 72.8677)}}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		// A (0,0) fix passes provider range validation but counts as missing.
		s.UpdateAgentLocation(model.GeoPoint{Latitude: 0, Longitude: 0})
		require.NoError(t, s.FetchConfirmedOrders(context.Background()))

		snap := s.Snapshot()
		require.Len(t, snap.PickupPoints, 1)
		assert.Empty(t, snap.Distances, "distances exist only for a known agent location")
		assert.Empty(t, snap.EstimatedTravelTimes)

		// A real fix afterwards populates the maps normally.
		s.UpdateAgentLocation(model.GeoPoint{Latitude: 19.0760, Longitude: 72.8777})
		snap = s.Snapshot()
		require.Contains(t, snap.Distances, "o1")
		assert.Less(t, snap.Distances["o1"], 100.0)
	})

	t.Run("failure keeps previous state and records an error", func(t *testing.T) {
		backend := &fakeBackend{orders: []model.Order{orderWithCoords("o1", 19.0760, 72.8777)}}
		s := NewOrdersService(backend, nil, "", testLogger(t))
		require.NoError(t, s.FetchConfirmedOrders(context.Background()))

		backend.mu.Lock()
		backend.fetchErr = errors.New("backend down")
		backend.mu.Unlock()

		err := s.FetchConfirmedOrders(context.Background())
		require.Error(t, err)

		snap := s.Snapshot()
		assert.Len(t, snap.Orders, 1, "previous orders stay visible")
		assert.Len(t, snap.PickupPoints, 1)
		assert.Equal(t, "backend down", snap.Err)
		assert.False(t, snap.IsLoading)
	})
}

func TestUpdateAgentLocation(t *testing.T) {
	t.Run("recomputes distances and ETAs for every pickup point", func(t *testing.T) {
		backend := &fakeBackend{orders: []model.Order{
			orderWithCoords("o1", 19.0860, 72.8677),
			orderWithCoords("o2", 19.1000, 72.9000),
		}}
		s := NewOrdersService(backend, nil, "", testLogger(t))
		require.NoError(t, s.FetchConfirmedOrders(context.Background()))

		s.UpdateAgentLocation(model.GeoPoint{Latitude: 19.0760, Longitude: 72.8777})

		snap := s.Snapshot()
		require.Len(t, snap.Distances, 2)
		for orderID, d := range snap.Distances {
			assert.Greater(t, d, 0.0)
			assert.True(t, !math.IsInf(d, 0) && !math.IsNaN(d))
			eta, ok := snap.EstimatedTravelTimes[orderID]
			require.True(t, ok)
			assert.Equal(t, int(math.Round(d/30*60)), eta)
		}
	})

	t.Run("no pickup points leaves distance maps alone", func(t *testing.T) {
		backend := &fakeBackend{}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		s.UpdateAgentLocation(model.GeoPoint{Latitude: 19.0, Longitude: 72.8})

		snap := s.Snapshot()
		require.NotNil(t, snap.AgentLocation)
		assert.Equal(t, 19.0, snap.AgentLocation.Latitude)
		assert.Empty(t, snap.Distances)
	})

	t.Run("agent unknown then fetch then location update", func(t *testing.T) {
		backend := &fakeBackend{orders: []model.Order{
			orderWithCoords("o1", 19.0860, 72.8677),
			orderWithCoords("o2", 19.1000, 72.9000),
			orderWithoutCoords("o3"),
		}}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		require.NoError(t, s.FetchConfirmedOrders(context.Background()))
		snap := s.Snapshot()
		assert.Len(t, snap.PickupPoints, 2)
		assert.Empty(t, snap.Distances)

		s.UpdateAgentLocation(model.GeoPoint{Latitude: 19.0, Longitude: 72.8})

		snap = s.Snapshot()
		require.Len(t, snap.Distances, 2)
		for _, d := range snap.Distances {
			assert.Greater(t, d, 0.0)
			assert.False(t, math.IsInf(d, 0))
		}
	})
}

func TestAcceptOrder(t *testing.T) {
	newFetched := func(t *testing.T, backend *fakeBackend) *OrdersService {
		t.Helper()
		s := NewOrdersService(backend, nil, "", testLogger(t))
		require.NoError(t, s.FetchConfirmedOrders(context.Background()))
		s.UpdateAgentLocation(model.GeoPoint{Latitude: 19.0760, Longitude: 72.8777})
		return s
	}

	t.Run("success prunes the order everywhere", func(t *testing.T) {
		backend := &fakeBackend{orders: []model.Order{
			orderWithDelivery("o1", 19.0860, 72.8677, 19.0900, 72.8600),
			orderWithCoords("o2", 19.1000, 72.9000),
		}}
		s := newFetched(t, backend)

		require.NoError(t, s.AcceptOrder(context.Background(), "o1"))

		snap := s.Snapshot()
		for _, o := range snap.Orders {
			assert.NotEqual(t, "o1", o.ID)
		}
		for _, p := range snap.PickupPoints {
			assert.NotEqual(t, "o1", p.OrderID)
		}
		for _, d := range snap.DeliveryPoints {
			assert.NotEqual(t, "o1", d.OrderID)
		}
		assert.NotContains(t, snap.Distances, "o1")
		assert.NotContains(t, snap.PickupToDeliveryDistances, "o1")
		assert.NotContains(t, snap.EstimatedTravelTimes, "o1")
		assert.Empty(t, snap.AcceptingOrderID)

		// The other order is untouched.
		assert.Len(t, snap.Orders, 1)
		assert.Contains(t, snap.Distances, "o2")
	})

	t.Run("failure leaves the order present and re-acceptable", func(t *testing.T) {
		backend := &fakeBackend{
			orders:    []model.Order{orderWithCoords("o1", 19.0860, 72.8677)},
			acceptErr: myerrors.ErrOrderTaken,
		}
		s := newFetched(t, backend)

		err := s.AcceptOrder(context.Background(), "o1")
		require.ErrorIs(t, err, myerrors.ErrOrderTaken)

		snap := s.Snapshot()
		assert.Len(t, snap.Orders, 1)
		assert.Len(t, snap.PickupPoints, 1)
		assert.Contains(t, snap.Distances, "o1")
		assert.Empty(t, snap.AcceptingOrderID, "accept slot cleared on failure")

		backend.mu.Lock()
		backend.acceptErr = nil
		backend.mu.Unlock()
		require.NoError(t, s.AcceptOrder(context.Background(), "o1"))
	})
}

func TestAddConfirmedOrder(t *testing.T) {
	t.Run("produces the same derived state as a full fetch", func(t *testing.T) {
		order := orderWithDelivery("o1", 19.0860, 72.8677, 19.0900, 72.8600)
		agent := model.GeoPoint{Latitude: 19.0760, Longitude: 72.8777}

		fetched := NewOrdersService(&fakeBackend{orders: []model.Order{order}}, nil, "", testLogger(t))
		fetched.UpdateAgentLocation(agent)
		require.NoError(t, fetched.FetchConfirmedOrders(context.Background()))

		added := NewOrdersService(&fakeBackend{
			ordersByID: map[string]model.Order{"o1": order},
		}, nil, "", testLogger(t))
		added.UpdateAgentLocation(agent)
		require.NoError(t, added.AddConfirmedOrder(context.Background(), "o1"))

		a, b := fetched.Snapshot(), added.Snapshot()
		assert.Equal(t, a.Orders, b.Orders)
		assert.Equal(t, a.PickupPoints, b.PickupPoints)
		assert.Equal(t, a.DeliveryPoints, b.DeliveryPoints)
		assert.Equal(t, a.Distances, b.Distances)
		assert.Equal(t, a.PickupToDeliveryDistances, b.PickupToDeliveryDistances)
		assert.Equal(t, a.EstimatedTravelTimes, b.EstimatedTravelTimes)
	})

	t.Run("idempotent for a known id", func(t *testing.T) {
		order := orderWithCoords("o1", 19.0860, 72.8677)
		backend := &fakeBackend{ordersByID: map[string]model.Order{"o1": order}}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		require.NoError(t, s.AddConfirmedOrder(context.Background(), "o1"))
		require.NoError(t, s.AddConfirmedOrder(context.Background(), "o1"))

		snap := s.Snapshot()
		assert.Len(t, snap.Orders, 1)
		assert.Len(t, snap.PickupPoints, 1)
	})

	t.Run("rejects non-confirmed orders without mutating state", func(t *testing.T) {
		order := orderWithCoords("o1", 19.0860, 72.8677)
		order.Status = model.StatusPreparing
		backend := &fakeBackend{ordersByID: map[string]model.Order{"o1": order}}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		err := s.AddConfirmedOrder(context.Background(), "o1")
		require.ErrorIs(t, err, myerrors.ErrOrderNotConfirmed)

		snap := s.Snapshot()
		assert.Empty(t, snap.Orders)
		assert.Empty(t, snap.PickupPoints)
		assert.Equal(t, myerrors.ErrOrderNotConfirmed.Error(), snap.Err)
	})

	t.Run("unknown order surfaces the backend error", func(t *testing.T) {
		backend := &fakeBackend{ordersByID: map[string]model.Order{}}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		err := s.AddConfirmedOrder(context.Background(), "missing")
		require.ErrorIs(t, err, myerrors.ErrOrderNotFound)
		assert.Empty(t, s.Snapshot().Orders)
	})

	t.Run("falls back to a restaurant fetch for geo data", func(t *testing.T) {
		order := orderWithCoords("o1", 0, 0)
		order.Restaurant = nil
		order.RestaurantID = "rest-o1"
		backend := &fakeBackend{
			ordersByID: map[string]model.Order{"o1": order},
			restaurants: map[string]model.Restaurant{
				"rest-o1": {
					ID:   "rest-o1",
					Name: "Spice Route",
					Location: &model.Location{
						Type:        "Point",
						Coordinates: []float64{72.8677, 19.0860},
					},
				},
			},
		}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		require.NoError(t, s.AddConfirmedOrder(context.Background(), "o1"))

		assert.Equal(t, []string{"rest-o1"}, backend.restaurantCalls)
		snap := s.Snapshot()
		require.Len(t, snap.PickupPoints, 1)
		assert.Equal(t, "Spice Route", snap.PickupPoints[0].RestaurantName)
	})

	t.Run("restaurant fetch failure still appends the raw order", func(t *testing.T) {
		order := orderWithCoords("o1", 0, 0)
		order.Restaurant = nil
		order.RestaurantID = "rest-o1"
		backend := &fakeBackend{
			ordersByID:    map[string]model.Order{"o1": order},
			restaurantErr: errors.New("restaurant service down"),
		}
		s := NewOrdersService(backend, nil, "", testLogger(t))

		require.NoError(t, s.AddConfirmedOrder(context.Background(), "o1"))

		snap := s.Snapshot()
		assert.Len(t, snap.Orders, 1)
		assert.Empty(t, snap.PickupPoints, "no coordinates, excluded from the map layer")
	})
}

func TestClearAndReset(t *testing.T) {
	setup := func(t *testing.T) *OrdersService {
		t.Helper()
		backend := &fakeBackend{orders: []model.Order{
			orderWithDelivery("o1", 19.0860, 72.8677, 19.0900, 72.8600),
		}}
		s := NewOrdersService(backend, nil, "", testLogger(t))
		require.NoError(t, s.FetchConfirmedOrders(context.Background()))
		s.UpdateAgentLocation(model.GeoPoint{Latitude: 19.0760, Longitude: 72.8777})
		return s
	}

	t.Run("clear preserves agent location", func(t *testing.T) {
		s := setup(t)
		s.ClearOrders()

		snap := s.Snapshot()
		assert.Empty(t, snap.Orders)
		assert.Empty(t, snap.PickupPoints)
		assert.Empty(t, snap.DeliveryPoints)
		assert.Empty(t, snap.Distances)
		assert.Empty(t, snap.PickupToDeliveryDistances)
		assert.Empty(t, snap.EstimatedTravelTimes)
		assert.True(t, snap.LastUpdated.IsZero())
		require.NotNil(t, snap.AgentLocation)
		assert.Equal(t, 19.0760, snap.AgentLocation.Latitude)
	})

	t.Run("reset restores the initial state", func(t *testing.T) {
		s := setup(t)
		s.Reset()

		snap := s.Snapshot()
		assert.Empty(t, snap.Orders)
		assert.Empty(t, snap.PickupPoints)
		assert.Nil(t, snap.AgentLocation)
		assert.Empty(t, snap.Err)
		assert.False(t, snap.IsLoading)
		assert.Empty(t, snap.AcceptingOrderID)
	})
}
