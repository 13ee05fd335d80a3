package timeplus

import (
	"context"
)

// MockConn is a configurable mock for testing engine-statement consumers.
// Set the function fields to control behavior in tests.
type MockConn struct {
	// ExecFunc is called when Exec is invoked. If nil, returns nil.
	ExecFunc func(ctx context.Context, stmt string) error

	// QueryUInt64Func is called when QueryUInt64 is invoked.
	// If nil, returns 0 and nil error.
	QueryUInt64Func func(ctx context.Context, query string) (uint64, error)

	// QueryStringsFunc is called when QueryStrings is invoked.
	// If nil, returns nil and nil error.
	QueryStringsFunc func(ctx context.Context, query string) ([][]string, error)

	// Call tracking for verification
	ExecStmts    []string
	QueryQueries []string
	PingCalls    int
	CloseCalls   int
}

// NewMockConn creates a new mock connection.
func NewMockConn() *MockConn {
	return &MockConn{}
}

// Exec implements Conn.
func (m *MockConn) Exec(ctx context.Context, stmt string) error {
	m.ExecStmts = append(m.ExecStmts, stmt)
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, stmt)
	}
	return nil
}

// QueryUInt64 implements Conn.
func (m *MockConn) QueryUInt64(ctx context.Context, query string) (uint64, error) {
	m.QueryQueries = append(m.QueryQueries, query)
	if m.QueryUInt64Func != nil {
		return m.QueryUInt64Func(ctx, query)
	}
	return 0, nil
}

// QueryStrings implements Conn.
func (m *MockConn) QueryStrings(ctx context.Context, query string) ([][]string, error) {
	m.QueryQueries = append(m.QueryQueries, query)
	if m.QueryStringsFunc != nil {
		return m.QueryStringsFunc(ctx, query)
	}
	return nil, nil
}

// Ping implements Conn.
func (m *MockConn) Ping(ctx context.Context) error {
	m.PingCalls++
	return nil
}

// Close implements Conn.
func (m *MockConn) Close() error {
	m.CloseCalls++
	return nil
}

// Ensure MockConn implements Conn at compile time.
var _ Conn = (*MockConn)(nil)
