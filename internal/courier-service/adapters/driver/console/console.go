package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"courier-console/internal/courier-service/core/domain/model"
	"courier-console/internal/courier-service/core/ports/driver"
	"courier-console/internal/geo"
	"courier-console/internal/mylogger"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
)

// Console is the map surface: a pure consumer of store snapshots. The only
// command it issues back is "accept this order id"; everything else is
// rendering or tracker availability toggles.
type Console struct {
	orders          driver.IOrdersService
	tracker         driver.ITrackerService
	trackerInterval time.Duration
	deliveryRadius  float64
	log             mylogger.Logger
	in              io.Reader
	out             io.Writer
}

func New(orders driver.IOrdersService, tracker driver.ITrackerService, trackerInterval time.Duration, deliveryRadius float64, log mylogger.Logger, in io.Reader, out io.Writer) *Console {
	return &Console{
		orders:          orders,
		tracker:         tracker,
		trackerInterval: trackerInterval,
		deliveryRadius:  deliveryRadius,
		log:             log,
		in:              in,
		out:             out,
	}
}

// Run reads commands until the context is done or the input closes.
func (c *Console) Run(ctx context.Context) error {
	c.printHelp()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				// Run has returned; nobody will read this line.
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "orders", "ls":
		c.renderOrders()
	case "map":
		c.renderMap()
	case "accept":
		if len(fields) < 2 {
			fmt.Fprintln(c.out, "usage: accept <order-id>")
			return false
		}
		c.acceptOrder(ctx, fields[1])
	case "refresh":
		if err := c.orders.FetchConfirmedOrders(ctx); err != nil {
			fmt.Fprintf(c.out, "refresh failed: %v\n", err)
		} else {
			fmt.Fprintln(c.out, "orders refreshed")
		}
	case "online":
		c.tracker.Start(c.trackerInterval)
		fmt.Fprintln(c.out, Green+"you are online, location tracking started"+Reset)
	case "offline":
		c.tracker.Stop()
		fmt.Fprintln(c.out, Yellow+"you are offline, location tracking stopped"+Reset)
	case "pos":
		c.renderPosition()
	case "clear":
		c.orders.ClearOrders()
		fmt.Fprintln(c.out, "orders cleared")
	case "help":
		c.printHelp()
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(c.out, "unknown command %q, try 'help'\n", fields[0])
	}
	return false
}

func (c *Console) acceptOrder(ctx context.Context, orderID string) {
	snap := c.orders.Snapshot()
	if snap.AcceptingOrderID == orderID {
		fmt.Fprintf(c.out, "order %s is already being accepted\n", orderID)
		return
	}

	if err := c.orders.AcceptOrder(ctx, orderID); err != nil {
		// The order stays listed and re-acceptable.
		fmt.Fprintf(c.out, "accept failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, Green+"order %s accepted"+Reset+"\n", orderID)
}

func (c *Console) renderOrders() {
	snap := c.orders.Snapshot()

	if snap.Err != "" {
		fmt.Fprintf(c.out, Yellow+"warning: %s"+Reset+"\n", snap.Err)
	}
	if len(snap.Orders) == 0 {
		fmt.Fprintln(c.out, "no confirmed orders")
		return
	}

	type row struct {
		order    model.Order
		distance float64
		known    bool
	}
	rows := make([]row, 0, len(snap.Orders))
	for _, order := range snap.Orders {
		d, ok := snap.Distances[order.ID]
		rows = append(rows, row{order: order, distance: d, known: ok})
	}
	// Closest first; orders without a distance entry go last.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].known != rows[j].known {
			return rows[i].known
		}
		return rows[i].distance < rows[j].distance
	})

	for _, r := range rows {
		restaurant := "unknown restaurant"
		if r.order.Restaurant != nil {
			restaurant = r.order.Restaurant.Name
		}

		distance := "distance unknown"
		if r.known {
			distance = fmt.Sprintf("%.2f km", r.distance)
			if eta, ok := snap.EstimatedTravelTimes[r.order.ID]; ok {
				distance += fmt.Sprintf(", ~%d min", eta)
			}
			if r.distance <= c.deliveryRadius {
				distance += Green + " [in range]" + Reset
			}
		}

		fmt.Fprintf(c.out, "%s  %s  %.2f  %s  %s\n",
			r.order.ID, restaurant, r.order.TotalAmount, r.order.Status, distance)
	}
}

func (c *Console) renderMap() {
	snap := c.orders.Snapshot()

	if snap.AgentLocation != nil {
		fmt.Fprintf(c.out, Cyan+"A"+Reset+"  you            %s, %s\n",
			geo.FormatCoordinate(snap.AgentLocation.Latitude),
			geo.FormatCoordinate(snap.AgentLocation.Longitude))
	}

	for _, p := range snap.PickupPoints {
		fmt.Fprintf(c.out, Green+"P"+Reset+"  %-14s %s, %s  order %s\n",
			p.RestaurantName,
			geo.FormatCoordinate(p.Latitude), geo.FormatCoordinate(p.Longitude),
			p.OrderID)
		if d, ok := snap.PickupToDeliveryDistances[p.OrderID]; ok {
			fmt.Fprintf(c.out, Gray+"   pickup to drop-off %.2f km"+Reset+"\n", d)
		}
	}

	// Pickup-only orders simply have no matching D marker.
	for _, d := range snap.DeliveryPoints {
		fmt.Fprintf(c.out, Yellow+"D"+Reset+"  %-14s %s, %s  order %s\n",
			d.CustomerName,
			geo.FormatCoordinate(d.Latitude), geo.FormatCoordinate(d.Longitude),
			d.OrderID)
	}

	if len(snap.PickupPoints) == 0 && len(snap.DeliveryPoints) == 0 {
		fmt.Fprintln(c.out, "nothing to draw")
	}
}

func (c *Console) renderPosition() {
	pos := c.tracker.Position()
	if !pos.Known {
		fmt.Fprintln(c.out, "position unknown")
	} else {
		fmt.Fprintf(c.out, "position %s, %s (±%.0f m) at %s\n",
			geo.FormatCoordinate(pos.Latitude), geo.FormatCoordinate(pos.Longitude),
			pos.AccuracyMeters, pos.Timestamp.Format(time.RFC3339))
	}
	if msg := c.tracker.LastError(); msg != "" {
		fmt.Fprintf(c.out, Yellow+"warning: %s"+Reset+"\n", msg)
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `commands:
  orders | ls     list confirmed orders (closest first)
  map             draw pickup/delivery markers
  accept <id>     accept an order
  refresh         refetch confirmed orders
  online          go available, start location tracking
  offline         go unavailable, stop location tracking
  pos             show last tracked position
  clear           clear the local order list
  quit            exit`)
}
