package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-console/internal/config"
	"courier-console/internal/mylogger"

	"github.com/jackc/pgx/v5"
)

type DataBase struct {
	ctx   context.Context
	cfg   *config.DBconfig
	mylog mylogger.Logger
	conn  *pgx.Conn
	mu    *sync.Mutex
}

// ConnectDB initializes and returns a new DB instance with a single connection
func ConnectDB(ctx context.Context, dbCfg *config.DBconfig, mylog mylogger.Logger) (*DataBase, error) {
	d := &DataBase{
		cfg:   dbCfg,
		ctx:   ctx,
		mylog: mylog,
		mu:    &sync.Mutex{},
	}

	if err := d.connect(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *DataBase) GetConn() *pgx.Conn {
	return d.conn
}

// Close closes the connection. The stored context is the shutdown context
// and is already cancelled by the time Close runs, so the close gets its own
// deadline to stay graceful.
func (d *DataBase) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.conn.Close(ctx); err != nil {
		return fmt.Errorf("close database connection: %v", err)
	}
	return nil
}

// IsAlive pings the DB to verify it's responsive, reconnecting once if not
func (d *DataBase) IsAlive() error {
	if d.conn == nil {
		return fmt.Errorf("DB is not initialized")
	}
	if err := d.conn.Ping(d.ctx); err != nil {
		if connectionErr := d.connect(); connectionErr != nil {
			return fmt.Errorf("ping failed: %w", err)
		}
	}
	return nil
}

func (d *DataBase) connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		d.cfg.User, d.cfg.Password, d.cfg.Host, d.cfg.Port, d.cfg.Database,
	)
	conn, err := pgx.Connect(d.ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	d.conn = conn
	return nil
}
