package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"courier-console/internal/courier-service/core/domain/model"
	"courier-console/internal/courier-service/core/myerrors"
	"courier-console/internal/courier-service/core/ports/driven"
	"courier-console/internal/geo"
	"courier-console/internal/mylogger"
)

// averageSpeedKmh is the assumed courier speed for travel-time estimates.
const averageSpeedKmh = 30

// OrdersService holds the confirmed-orders store: the raw orders from the
// backend plus every geo-derived structure the map surface reads. All
// mutation goes through its operations; snapshots are copies.
type OrdersService struct {
	backend   driven.IBackend
	journal   driven.IJournal // nil when journaling is disabled
	sessionID string
	log       mylogger.Logger

	mu                        sync.Mutex
	orders                    []model.Order
	pickupPoints              []model.PickupPoint
	deliveryPoints            []model.DeliveryPoint
	agentLocation             *model.GeoPoint
	distances                 map[string]float64
	pickupToDeliveryDistances map[string]float64
	estimatedTravelTimes      map[string]int
	isLoading                 bool
	lastErr                   string
	lastUpdated               time.Time

	// Single accept slot. A concurrent accept on a different order
	// overwrites the tracked id, so "is this order being accepted" checks
	// are reliable only for the most recent attempt.
	acceptingOrderID string
}

func NewOrdersService(backend driven.IBackend, journal driven.IJournal, sessionID string, log mylogger.Logger) *OrdersService {
	return &OrdersService{
		backend:                   backend,
		journal:                   journal,
		sessionID:                 sessionID,
		log:                       log,
		distances:                 make(map[string]float64),
		pickupToDeliveryDistances: make(map[string]float64),
		estimatedTravelTimes:      make(map[string]int),
	}
}

// FetchConfirmedOrders replaces the order set with the backend's current
// view and rebuilds every derived structure from scratch. On failure the
// previous state stays visible and only the error message changes.
func (s *OrdersService) FetchConfirmedOrders(ctx context.Context) error {
	s.mu.Lock()
	s.isLoading = true
	s.lastErr = ""
	s.mu.Unlock()

	orders, err := s.backend.FetchConfirmedOrders(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	if err != nil {
		s.lastErr = err.Error()
		s.log.Action("fetch_confirmed_orders").Error("failed to fetch confirmed orders", err)
		return fmt.Errorf("fetching confirmed orders: %w", err)
	}

	s.orders = orders
	s.lastUpdated = time.Now()

	s.pickupPoints = make([]model.PickupPoint, 0, len(s.orders))
	s.deliveryPoints = make([]model.DeliveryPoint, 0, len(s.orders))
	s.pickupToDeliveryDistances = make(map[string]float64)
	for _, order := range s.orders {
		s.derivePointsLocked(order)
	}

	if s.agentLocation != nil && validCoords(s.agentLocation.Latitude, s.agentLocation.Longitude) {
		s.recomputeAgentDistancesLocked()
	}

	s.log.Action("fetch_confirmed_orders").Info("confirmed orders replaced",
		"orders", len(s.orders), "pickup_points", len(s.pickupPoints))
	return nil
}

// UpdateAgentLocation sets the agent position and, when at least one pickup
// point exists, replaces the distance and ETA maps wholesale. Orders and
// points are untouched.
func (s *OrdersService) UpdateAgentLocation(loc model.GeoPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agentLocation = &loc
	if len(s.pickupPoints) > 0 && validCoords(loc.Latitude, loc.Longitude) {
		s.recomputeAgentDistancesLocked()
	}
}

// AcceptOrder claims the order on the backend. Success prunes the order from
// every structure atomically; failure leaves it present and re-acceptable.
func (s *OrdersService) AcceptOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	s.acceptingOrderID = orderID
	distanceAtAccept := s.distances[orderID]
	etaAtAccept := s.estimatedTravelTimes[orderID]
	s.mu.Unlock()

	err := s.backend.AcceptOrder(ctx, orderID)

	s.mu.Lock()
	s.acceptingOrderID = ""
	if err != nil {
		s.mu.Unlock()
		s.log.Action("accept_order").Error("failed to accept order", err, "order_id", orderID)
		return fmt.Errorf("accepting order %s: %w", orderID, err)
	}
	s.removeOrderLocked(orderID)
	s.mu.Unlock()

	s.log.Action("accept_order").Info("order accepted", "order_id", orderID)

	if s.journal != nil {
		if jerr := s.journal.RecordAccept(ctx, s.sessionID, orderID, distanceAtAccept, etaAtAccept); jerr != nil {
			s.log.Action("accept_order").Warn("journal write failed", "order_id", orderID, "reason", jerr.Error())
		}
	}
	return nil
}

// AddConfirmedOrder is the targeted path used when a push notification
// names a newly confirmed order. It must leave the store exactly as a full
// fetch containing that order would have, and is a no-op for known ids.
func (s *OrdersService) AddConfirmedOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		s.recordErr(err)
		return fmt.Errorf("fetching order %s: %w", orderID, err)
	}

	if order.Status != model.StatusConfirmed {
		s.recordErr(myerrors.ErrOrderNotConfirmed)
		return myerrors.ErrOrderNotConfirmed
	}

	// The order payload may carry only a restaurant id; fall back to a
	// direct restaurant fetch for the geo data. Best effort: limited
	// restaurant data still yields a usable order row.
	if order.Restaurant == nil || order.Restaurant.Name == "" {
		restaurant, rerr := s.backend.GetRestaurant(ctx, order.RestaurantID)
		if rerr != nil {
			s.log.Action("add_confirmed_order").Warn("failed to fetch restaurant details",
				"order_id", orderID, "restaurant_id", order.RestaurantID, "reason", rerr.Error())
		} else {
			order.Restaurant = &restaurant
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.ID == order.ID {
			return nil
		}
	}

	s.orders = append(s.orders, order)
	s.derivePointsLocked(order)
	if s.agentLocation != nil {
		s.patchAgentDistanceLocked(order)
	}
	s.lastUpdated = time.Now()

	s.log.Action("add_confirmed_order").Info("order appended", "order_id", order.ID)
	return nil
}

// ClearOrders empties every order-derived collection. Agent location and the
// loading/error flags keep their current values.
func (s *OrdersService) ClearOrders() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = nil
	s.pickupPoints = nil
	s.deliveryPoints = nil
	s.distances = make(map[string]float64)
	s.pickupToDeliveryDistances = make(map[string]float64)
	s.estimatedTravelTimes = make(map[string]int)
	s.lastUpdated = time.Time{}
}

// Reset restores the store to its initial empty state.
func (s *OrdersService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = nil
	s.pickupPoints = nil
	s.deliveryPoints = nil
	s.agentLocation = nil
	s.distances = make(map[string]float64)
	s.pickupToDeliveryDistances = make(map[string]float64)
	s.estimatedTravelTimes = make(map[string]int)
	s.isLoading = false
	s.lastErr = ""
	s.lastUpdated = time.Time{}
	s.acceptingOrderID = ""
}

// Snapshot returns a copy of the store for consumers. Readers must route
// every change back through the operations above.
func (s *OrdersService) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.Snapshot{
		Orders:                    append([]model.Order(nil), s.orders...),
		PickupPoints:              append([]model.PickupPoint(nil), s.pickupPoints...),
		DeliveryPoints:            append([]model.DeliveryPoint(nil), s.deliveryPoints...),
		Distances:                 copyFloatMap(s.distances),
		PickupToDeliveryDistances: copyFloatMap(s.pickupToDeliveryDistances),
		EstimatedTravelTimes:      copyIntMap(s.estimatedTravelTimes),
		IsLoading:                 s.isLoading,
		Err:                       s.lastErr,
		LastUpdated:               s.lastUpdated,
		AcceptingOrderID:          s.acceptingOrderID,
	}
	if s.agentLocation != nil {
		loc := *s.agentLocation
		snap.AgentLocation = &loc
	}
	return snap
}

// derivePointsLocked appends the order's pickup point, delivery point and
// pickup-to-delivery distance. Orders without restaurant coordinates are
// silently excluded from the map layer; they stay in the raw order list.
// Both the bulk fetch and the single-order path go through here so the two
// produce identical derived state.
func (s *OrdersService) derivePointsLocked(order model.Order) {
	pickup, ok := order.RestaurantPoint()
	if !ok {
		return
	}

	var delivery *model.GeoPoint
	if dp, hasDelivery := order.DeliveryPointCoords(); hasDelivery {
		delivery = &model.GeoPoint{Longitude: dp.Longitude, Latitude: dp.Latitude}
		s.deliveryPoints = append(s.deliveryPoints, model.DeliveryPoint{
			OrderID:      order.ID,
			Longitude:    dp.Longitude,
			Latitude:     dp.Latitude,
			Address:      deliveryAddress(order),
			CustomerName: order.CustomerName(),
		})
		s.pickupToDeliveryDistances[order.ID] = geo.DistanceKm(
			pickup.Latitude, pickup.Longitude, dp.Latitude, dp.Longitude)
	}

	s.pickupPoints = append(s.pickupPoints, model.PickupPoint{
		OrderID:         order.ID,
		RestaurantID:    order.Restaurant.ID,
		RestaurantName:  order.Restaurant.Name,
		Longitude:       pickup.Longitude,
		Latitude:        pickup.Latitude,
		Delivery:        delivery,
		DeliveryAddress: deliveryAddress(order),
		OrderAmount:     order.TotalAmount,
		Items:           len(order.Items),
		CustomerName:    order.CustomerName(),
		OrderTime:       order.CreatedAt,
		Status:          order.Status,
		Details: model.OrderDetails{
			Items:               order.Items,
			PaymentMethod:       order.PaymentMethod,
			SpecialInstructions: order.SpecialInstructions,
			Subtotal:            order.Subtotal,
			DeliveryFee:         order.DeliveryFee,
			Tax:                 order.Tax,
			Tip:                 order.Tip,
			Total:               order.TotalAmount,
		},
	})
}

// recomputeAgentDistancesLocked replaces the agent-distance and ETA maps
// wholesale for every current pickup point.
func (s *OrdersService) recomputeAgentDistancesLocked() {
	newDistances := make(map[string]float64)
	newTravelTimes := make(map[string]int)

	for _, point := range s.pickupPoints {
		if !validCoords(point.Latitude, point.Longitude) {
			continue
		}
		distance := geo.DistanceKm(
			s.agentLocation.Latitude, s.agentLocation.Longitude,
			point.Latitude, point.Longitude)
		newDistances[point.OrderID] = distance
		newTravelTimes[point.OrderID] = etaMinutes(distance)
	}

	s.distances = newDistances
	s.estimatedTravelTimes = newTravelTimes
}

// patchAgentDistanceLocked adds the distance/ETA entries for one freshly
// appended order, using the same guards as the wholesale recompute.
func (s *OrdersService) patchAgentDistanceLocked(order model.Order) {
	pickup, ok := order.RestaurantPoint()
	if !ok || !validCoords(pickup.Latitude, pickup.Longitude) {
		return
	}
	if !validCoords(s.agentLocation.Latitude, s.agentLocation.Longitude) {
		return
	}
	distance := geo.DistanceKm(
		s.agentLocation.Latitude, s.agentLocation.Longitude,
		pickup.Latitude, pickup.Longitude)
	s.distances[order.ID] = distance
	s.estimatedTravelTimes[order.ID] = etaMinutes(distance)
}

// removeOrderLocked prunes the order from all four structures in one step;
// no partial removal is ever observable.
func (s *OrdersService) removeOrderLocked(orderID string) {
	orders := s.orders[:0]
	for _, o := range s.orders {
		if o.ID != orderID {
			orders = append(orders, o)
		}
	}
	s.orders = orders

	pickups := s.pickupPoints[:0]
	for _, p := range s.pickupPoints {
		if p.OrderID != orderID {
			pickups = append(pickups, p)
		}
	}
	s.pickupPoints = pickups

	deliveries := s.deliveryPoints[:0]
	for _, d := range s.deliveryPoints {
		if d.OrderID != orderID {
			deliveries = append(deliveries, d)
		}
	}
	s.deliveryPoints = deliveries

	delete(s.distances, orderID)
	delete(s.pickupToDeliveryDistances, orderID)
	delete(s.estimatedTravelTimes, orderID)
}

func (s *OrdersService) recordErr(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}

func etaMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm / averageSpeedKmh * 60))
}

func validCoords(lat, lon float64) bool {
	return lat != 0 && lon != 0 && !math.IsNaN(lat) && !math.IsNaN(lon)
}

func deliveryAddress(order model.Order) string {
	if order.DeliveryAddress == "" {
		return "No address provided"
	}
	return order.DeliveryAddress
}

func copyFloatMap(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyIntMap(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
