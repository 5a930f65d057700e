package services

import (
	"time"

	"courier-console/internal/courier-service/core/ports/driven"
	"courier-console/internal/mylogger"
)

type Service struct {
	OrdersService  *OrdersService
	TrackerService *TrackerService
	AuthService    *AuthService
}

func New(backend driven.IBackend, provider driven.IGeolocationProvider, journal driven.IJournal, sessionID string, readTimeout time.Duration, log mylogger.Logger) *Service {
	orders := NewOrdersService(backend, journal, sessionID, log)
	return &Service{
		OrdersService:  orders,
		TrackerService: NewTrackerService(provider, orders, journal, sessionID, readTimeout, log),
		AuthService:    NewAuthService(),
	}
}
