package bm

import (
	"context"
	"encoding/json"

	websocketdto "courier-console/internal/courier-service/core/domain/websocket_dto"
	ports "courier-console/internal/courier-service/core/ports/driven"
	"courier-console/internal/mylogger"
)

const (
	notificationQueue = "agent_order_notifications"
	notificationKey   = "order.#"
)

// notification is the broker-side envelope for order events. The routing key
// carries the event kind; the body names the order.
type notification struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id"`
	Status  string `json:"status,omitempty"`
}

// OrdersRefresher matches the websocket listener's store-facing surface;
// broker notifications drive the exact same actions.
type OrdersRefresher interface {
	FetchConfirmedOrders(ctx context.Context) error
	AddConfirmedOrder(ctx context.Context, orderID string) error
}

type Consumer struct {
	ctx    context.Context
	log    mylogger.Logger
	broker ports.INotificationBroker
	orders OrdersRefresher
}

func NewConsumer(ctx context.Context, broker ports.INotificationBroker, orders OrdersRefresher, log mylogger.Logger) *Consumer {
	return &Consumer{
		ctx:    ctx,
		broker: broker,
		orders: orders,
		log:    log,
	}
}

func (c *Consumer) SubscribeForMessages() error {
	msgCh, err := c.broker.Consume(c.ctx, notificationQueue, notificationKey, ports.ConsumeOptions{
		Prefetch:     1,
		AutoAck:      false,
		QueueDurable: true,
	})
	if err != nil {
		c.log.Action("consume").Error("failed to subscribe to order notifications", err)
		return err
	}
	go func() {
		for msg := range msgCh {
			var event notification
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				c.log.Action("consume").Error("failed to unmarshal notification", err)
				continue
			}

			c.handle(event)

			if err := msg.Ack(false); err != nil {
				c.log.Action("consume").Error("failed to acknowledge notification", err)
			}
		}
	}()
	return nil
}

func (c *Consumer) handle(event notification) {
	switch event.Event {
	case websocketdto.MessageTypeOrderConfirmed:
		if event.OrderID == "" {
			c.refetch()
			return
		}
		c.log.Action("consume").Info("confirmed order notification", "order_id", event.OrderID)
		if err := c.orders.AddConfirmedOrder(c.ctx, event.OrderID); err != nil {
			c.log.Action("consume").Warn("single-order add failed, falling back to fetch",
				"order_id", event.OrderID, "reason", err.Error())
			c.refetch()
		}
	case websocketdto.MessageTypeOrderStatusUpdated:
		c.refetch()
	default:
		c.log.Action("consume").Debug("ignoring notification", "event", event.Event)
	}
}

func (c *Consumer) refetch() {
	if err := c.orders.FetchConfirmedOrders(c.ctx); err != nil {
		c.log.Action("consume").Warn("refetch failed", "reason", err.Error())
	}
}
