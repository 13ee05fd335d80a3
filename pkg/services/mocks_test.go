package services

import (
	"context"

	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
)

// mockSynthesizer is a configurable Synthesizer for manager tests.
type mockSynthesizer struct {
	SynthesizeNameFunc func(ctx context.Context, description string) (string, error)
	SynthesizeFunc     func(ctx context.Context, name, question string) (*models.PipelineDescriptor, error)

	NameCalls       int
	SynthesizeCalls int
}

func (m *mockSynthesizer) SynthesizeName(ctx context.Context, description string) (string, error) {
	m.NameCalls++
	if m.SynthesizeNameFunc != nil {
		return m.SynthesizeNameFunc(ctx, description)
	}
	return "test_pipeline", nil
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, name, question string) (*models.PipelineDescriptor, error) {
	m.SynthesizeCalls++
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, name, question)
	}
	return testDescriptor(name, question), nil
}

// mockProvisioner is a configurable Provisioner for manager tests.
type mockProvisioner struct {
	ProvisionFunc      func(ctx context.Context, d *models.PipelineDescriptor) error
	TeardownFunc       func(ctx context.Context, d *models.PipelineDescriptor) error
	LiveWriteCountFunc func(ctx context.Context, d *models.PipelineDescriptor) (uint64, bool)

	ProvisionCalls int
	TeardownCalls  int
}

func (m *mockProvisioner) Provision(ctx context.Context, d *models.PipelineDescriptor) error {
	m.ProvisionCalls++
	if m.ProvisionFunc != nil {
		return m.ProvisionFunc(ctx, d)
	}
	return nil
}

func (m *mockProvisioner) Teardown(ctx context.Context, d *models.PipelineDescriptor) error {
	m.TeardownCalls++
	if m.TeardownFunc != nil {
		return m.TeardownFunc(ctx, d)
	}
	return nil
}

func (m *mockProvisioner) LiveWriteCount(ctx context.Context, d *models.PipelineDescriptor) (uint64, bool) {
	if m.LiveWriteCountFunc != nil {
		return m.LiveWriteCountFunc(ctx, d)
	}
	return 0, true
}

// mockStore is a configurable PipelineStore for manager tests.
type mockStore struct {
	CreateFunc  func(ctx context.Context, descriptor *models.PipelineDescriptor, name string) (string, error)
	GetFunc     func(ctx context.Context, id string) (*models.PipelineRecord, error)
	ListAllFunc func(ctx context.Context) ([]*models.PipelineSummary, error)
	DeleteFunc  func(ctx context.Context, id string) error

	CreateCalls int
	DeleteCalls int
}

func (m *mockStore) Create(ctx context.Context, descriptor *models.PipelineDescriptor, name string) (string, error) {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, descriptor, name)
	}
	return "test-id", nil
}

func (m *mockStore) Get(ctx context.Context, id string) (*models.PipelineRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &models.PipelineRecord{ID: id, Name: "test_pipeline", Descriptor: *testDescriptor("test_pipeline", "q")}, nil
}

func (m *mockStore) ListAll(ctx context.Context) ([]*models.PipelineSummary, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	m.DeleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

// testDescriptor builds a minimal but well-formed descriptor for name.
func testDescriptor(name, question string) *models.PipelineDescriptor {
	return &models.PipelineDescriptor{
		SourceStream: models.StreamObject{
			Name: name,
			DDL:  "CREATE RANDOM STREAM " + name + " (i int DEFAULT rand()%100)",
		},
		SinkStream: models.StreamObject{
			Name: "kafka_external_" + name,
			DDL:  "CREATE EXTERNAL STREAM kafka_external_" + name + " (value string) SETTINGS type = 'kafka'",
		},
		ConnectorView: models.StreamObject{
			Name: "mv_kafka_external_" + name,
			DDL:  "CREATE MATERIALIZED VIEW mv_kafka_external_" + name + " INTO kafka_external_" + name + " AS SELECT json_encode(*) AS value FROM " + name,
		},
		Question: question,
	}
}
