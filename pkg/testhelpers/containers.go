package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/config"
	"github.com/streamsynth-io/streamsynth-engine/pkg/timeplus"
)

// ProtonTestImage is the streaming engine image used by integration tests.
const ProtonTestImage = "ghcr.io/timeplus-io/proton:latest"

// TestEngine holds a shared streaming engine container and connection.
type TestEngine struct {
	Container testcontainers.Container
	Client    *timeplus.Client
	Config    *config.TimeplusConfig
}

var (
	sharedEngine     *TestEngine
	sharedEngineOnce sync.Once
	sharedEngineErr  error
)

// GetTestEngine returns a shared Proton container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestEngine(t *testing.T) *TestEngine {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedEngineOnce.Do(func() {
		sharedEngine, sharedEngineErr = setupTestEngine()
	})

	if sharedEngineErr != nil {
		t.Fatalf("Failed to setup test engine: %v", sharedEngineErr)
	}

	return sharedEngine
}

func setupTestEngine() (*TestEngine, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        ProtonTestImage,
		ExposedPorts: []string{"8463/tcp"},
		WaitingFor:   wait.ForListeningPort("8463/tcp").WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start proton container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, "8463/tcp")
	if err != nil {
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	cfg := &config.TimeplusConfig{
		Host:              host,
		Port:              mapped.Int(),
		User:              "default",
		Database:          "default",
		MaxAttempts:       30,
		RetryDelaySeconds: 2,
	}

	client, err := timeplus.AwaitReady(ctx, cfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("engine never became ready: %w", err)
	}

	return &TestEngine{Container: container, Client: client, Config: cfg}, nil
}
