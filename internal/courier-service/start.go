package courierservice

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"courier-console/internal/config"
	"courier-console/internal/courier-service/adapters/driven/api"
	"courier-console/internal/courier-service/adapters/driven/bm"
	"courier-console/internal/courier-service/adapters/driven/db"
	"courier-console/internal/courier-service/adapters/driven/geolocation"
	"courier-console/internal/courier-service/adapters/driven/ws"
	"courier-console/internal/courier-service/adapters/driver/console"
	"courier-console/internal/courier-service/core/ports/driven"
	"courier-console/internal/courier-service/core/services"
	"courier-console/internal/mylogger"
)

func Run(ctx context.Context, l mylogger.Logger, cfg *config.Config, token string) error {
	shutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	claims, err := services.NewAuthService().ParseAgentToken(token)
	if err != nil {
		return fmt.Errorf("agent token rejected: %w", err)
	}
	l.Action("agent_authenticated").Info("agent token accepted", "agent_id", claims.AgentID)

	backend := api.NewClient(cfg.Backend, token, l)

	// Session journal is best-effort: an unreachable database degrades to a
	// warning and the console runs without it.
	var journal driven.IJournal
	var journalRepo *db.JournalRepository
	var database *db.DataBase
	sessionID := ""
	if cfg.DB.Enabled {
		database, err = db.ConnectDB(shutdown, cfg.DB, l)
		if err != nil {
			l.Action("journal").Warn("journal disabled, database unreachable", "reason", err.Error())
			database = nil
		} else {
			journalRepo = db.NewJournalRepository(database)
			sid, serr := journalRepo.OpenSession(shutdown, claims.AgentID)
			if serr != nil {
				l.Action("journal").Warn("journal disabled, failed to open session", "reason", serr.Error())
			} else {
				journal = journalRepo
				sessionID = sid
				l.Action("journal").Info("session journal opened", "journal_session_id", sid)
			}
		}
	}

	var provider driven.IGeolocationProvider
	switch cfg.Tracker.ProviderMode {
	case "simulated":
		provider = geolocation.NewSimProvider(cfg.Tracker.SimStartLat, cfg.Tracker.SimStartLon)
	default:
		provider = geolocation.NewHTTPProvider(cfg.Tracker.SourceURL)
	}

	svc := services.New(backend, provider, journal, sessionID, cfg.Tracker.ReadTimeout, l)

	if err := svc.OrdersService.FetchConfirmedOrders(shutdown); err != nil {
		l.Action("startup_fetch").Warn("initial fetch failed, continuing", "reason", err.Error())
	}

	listener := ws.NewListener(cfg.WS, token, svc.OrdersService, l)
	go func() {
		if lerr := listener.Run(shutdown); lerr != nil {
			l.Action("ws_listener").Error("notification channel stopped", lerr)
		}
	}()

	if cfg.RabbitMq.Enabled {
		broker, berr := bm.New(shutdown, cfg.RabbitMq, l)
		if berr != nil {
			l.Action("broker").Warn("broker notifications disabled", "reason", berr.Error())
		} else {
			defer broker.Close()
			consumer := bm.NewConsumer(shutdown, broker, svc.OrdersService, l)
			if serr := consumer.SubscribeForMessages(); serr != nil {
				l.Action("broker").Warn("broker subscription failed", "reason", serr.Error())
			}
		}
	}

	// SIGHUP is the foreground-regained / cross-tab signal of this process:
	// it triggers the same full refetch as a push notification.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			if ferr := svc.OrdersService.FetchConfirmedOrders(shutdown); ferr != nil {
				l.Action("hup_refetch").Warn("refetch failed", "reason", ferr.Error())
			}
		}
	}()

	ui := console.New(svc.OrdersService, svc.TrackerService,
		cfg.Tracker.Interval, cfg.Tracker.DeliveryRadius, l, os.Stdin, os.Stdout)
	uiDone := make(chan error, 1)
	go func() {
		uiDone <- ui.Run(shutdown)
	}()

	select {
	case <-shutdown.Done():
	case uerr := <-uiDone:
		if uerr != nil {
			l.Action("console").Error("console stopped", uerr)
		}
	}

	svc.TrackerService.Stop()

	if journal != nil {
		if cerr := journalRepo.CloseSession(context.Background(), sessionID); cerr != nil {
			l.Action("journal").Warn("failed to close session", "reason", cerr.Error())
		}
	}
	if database != nil {
		if cerr := database.Close(); cerr != nil {
			l.Action("journal").Warn("failed to close database", "reason", cerr.Error())
		}
	}

	fmt.Println("Gracefully shutting down...")
	return nil
}
