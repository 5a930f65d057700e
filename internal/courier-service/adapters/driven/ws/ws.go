package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courier-console/internal/config"
	websocketdto "courier-console/internal/courier-service/core/domain/websocket_dto"
	"courier-console/internal/mylogger"

	"github.com/gorilla/websocket"
)

// OrdersRefresher is the slice of the store the notification channel drives.
type OrdersRefresher interface {
	FetchConfirmedOrders(ctx context.Context) error
	AddConfirmedOrder(ctx context.Context, orderID string) error
}

// Listener keeps a websocket open to the backend and turns push
// notifications into store refreshes. A notification naming an order id goes
// through the targeted single-order path, falling back to a full refetch.
type Listener struct {
	cfg    *config.WebSocketconfig
	token  string
	orders OrdersRefresher
	log    mylogger.Logger
}

func NewListener(cfg *config.WebSocketconfig, token string, orders OrdersRefresher, log mylogger.Logger) *Listener {
	return &Listener{
		cfg:    cfg,
		token:  token,
		orders: orders,
		log:    log,
	}
}

// Run connects and reads until the context is done. Connection loss is
// retried up to the configured attempts with a fixed delay; a successful
// connection resets the budget.
func (l *Listener) Run(ctx context.Context) error {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := l.connect(ctx)
		if err != nil {
			attempts++
			if attempts > l.cfg.ReconnectAttempts {
				return fmt.Errorf("websocket reconnect attempts exhausted: %w", err)
			}
			l.log.Action("ws_connect").Warn("connection failed, retrying",
				"attempt", attempts, "reason", err.Error())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.cfg.ReconnectDelay):
			}
			continue
		}
		attempts = 0

		// Mirror the connect handler: pull the current confirmed set as
		// soon as the channel is up, so nothing pushed while offline is
		// missed.
		if err := l.orders.FetchConfirmedOrders(ctx); err != nil {
			l.log.Action("ws_connect").Warn("initial fetch after connect failed", "reason", err.Error())
		}

		l.readLoop(ctx, conn)
		conn.Close()
	}
}

func (l *Listener) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, l.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", l.cfg.URL, err)
	}

	authMsg := websocketdto.AuthMessage{
		WebSocketMessage: websocketdto.WebSocketMessage{
			Type: websocketdto.MessageTypeAuth,
		},
		Token: l.token,
	}
	data, err := json.Marshal(authMsg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("marshaling auth message: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending auth message: %w", err)
	}

	l.log.Action("ws_connect").Info("notification channel connected", "url", l.cfg.URL)
	return conn, nil
}

func (l *Listener) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				l.log.Action("ws_read").Warn("notification channel closed", "reason", err.Error())
			}
			return
		}
		l.handleMessage(ctx, payload)
	}
}

func (l *Listener) handleMessage(ctx context.Context, payload []byte) {
	var envelope websocketdto.WebSocketMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		l.log.Action("ws_read").Warn("unparseable message", "reason", err.Error())
		return
	}

	switch envelope.Type {
	case websocketdto.MessageTypeOrderConfirmed:
		var msg websocketdto.OrderConfirmedMessage
		if err := json.Unmarshal(payload, &msg); err != nil || msg.OrderID == "" {
			l.refetch(ctx)
			return
		}
		l.log.Action("order_confirmed").Info("new confirmed order pushed", "order_id", msg.OrderID)
		if err := l.orders.AddConfirmedOrder(ctx, msg.OrderID); err != nil {
			l.log.Action("order_confirmed").Warn("single-order add failed, falling back to fetch",
				"order_id", msg.OrderID, "reason", err.Error())
			l.refetch(ctx)
		}
	case websocketdto.MessageTypeOrderStatusUpdated:
		l.refetch(ctx)
	default:
		l.log.Action("ws_read").Debug("ignoring message", "type", envelope.Type)
	}
}

func (l *Listener) refetch(ctx context.Context) {
	if err := l.orders.FetchConfirmedOrders(ctx); err != nil {
		l.log.Action("ws_refetch").Warn("refetch failed", "reason", err.Error())
	}
}
