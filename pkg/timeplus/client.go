// Package timeplus wraps the Proton native-protocol driver behind a narrow
// interface so pipeline components can be tested without a live engine.
package timeplus

import (
	"context"
	"fmt"

	proton "github.com/timeplus-io/proton-go-driver/v2"
	"github.com/timeplus-io/proton-go-driver/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/config"
)

// Conn is the streaming-engine capability consumed by the provisioner and
// the mutable-stream metadata store: execute a statement, run a scalar or
// all-strings query. The driver connection is safe for concurrent use.
type Conn interface {
	// Exec runs a DDL or DML statement with no meaningful result.
	Exec(ctx context.Context, stmt string) error

	// QueryUInt64 runs a query expected to yield a single uint64 cell.
	QueryUInt64(ctx context.Context, query string) (uint64, error)

	// QueryStrings runs a query whose columns are all strings and returns
	// every row.
	QueryStrings(ctx context.Context, query string) ([][]string, error)

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// Client implements Conn over the Proton native protocol.
type Client struct {
	conn   driver.Conn
	addr   string
	logger *zap.Logger
}

// Connect opens a native-protocol connection to the engine. The connection
// is pooled by the driver and safe for concurrent use.
func Connect(cfg *config.TimeplusConfig, logger *zap.Logger) (*Client, error) {
	conn, err := proton.Open(&proton.Options{
		Addr: []string{cfg.Addr()},
		Auth: proton.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open engine connection to %s: %w", cfg.Addr(), err)
	}

	return &Client{
		conn:   conn,
		addr:   cfg.Addr(),
		logger: logger.Named("timeplus"),
	}, nil
}

// Exec implements Conn.
func (c *Client) Exec(ctx context.Context, stmt string) error {
	c.logger.Debug("executing statement", zap.String("stmt", stmt))
	if err := c.conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("execute statement: %w", err)
	}
	return nil
}

// QueryUInt64 implements Conn.
func (c *Client) QueryUInt64(ctx context.Context, query string) (uint64, error) {
	c.logger.Debug("executing query", zap.String("query", query))
	var v uint64
	if err := c.conn.QueryRow(ctx, query).Scan(&v); err != nil {
		return 0, fmt.Errorf("scalar query: %w", err)
	}
	return v, nil
}

// QueryStrings implements Conn.
func (c *Client) QueryStrings(ctx context.Context, query string) ([][]string, error) {
	c.logger.Debug("executing query", zap.String("query", query))
	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols := rows.Columns()
	var result [][]string
	for rows.Next() {
		vals := make([]string, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// Ping implements Conn.
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close implements Conn.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Addr returns the engine endpoint this client is connected to.
func (c *Client) Addr() string {
	return c.addr
}

// Ensure Client implements Conn at compile time.
var _ Conn = (*Client)(nil)
