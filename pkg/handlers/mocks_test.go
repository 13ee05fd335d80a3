package handlers

import (
	"context"

	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
	"github.com/streamsynth-io/streamsynth-engine/pkg/services"
)

// mockManager is a configurable PipelineManager for handler tests.
type mockManager struct {
	CreateFunc  func(ctx context.Context, question string) (*services.CreateResult, error)
	GetFunc     func(ctx context.Context, id string) (*models.PipelineRecord, error)
	ListAllFunc func(ctx context.Context) ([]*models.PipelineSummary, error)
	DeleteFunc  func(ctx context.Context, id string) error

	CreateCalls int
	DeleteCalls int
}

func (m *mockManager) Create(ctx context.Context, question string) (*services.CreateResult, error) {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, question)
	}
	return &services.CreateResult{ID: "test-id", Name: "rnd_test_1", Question: question}, nil
}

func (m *mockManager) Get(ctx context.Context, id string) (*models.PipelineRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &models.PipelineRecord{ID: id, Name: "rnd_test_1"}, nil
}

func (m *mockManager) ListAll(ctx context.Context) ([]*models.PipelineSummary, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*models.PipelineSummary{}, nil
}

func (m *mockManager) Delete(ctx context.Context, id string) error {
	m.DeleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

var _ services.PipelineManager = (*mockManager)(nil)
