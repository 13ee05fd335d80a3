package services

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
	"github.com/streamsynth-io/streamsynth-engine/pkg/repositories"
	"github.com/streamsynth-io/streamsynth-engine/pkg/sqlsafe"
)

// namePrefix marks engine objects created by this service; the random
// digit suffix reduces collision risk when the model repeats a name.
const namePrefix = "rnd_"

// CreateResult identifies a freshly created pipeline.
type CreateResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Question string `json:"question"`
}

// PipelineManager composes synthesis, provisioning, and metadata
// persistence into the pipeline lifecycle.
type PipelineManager interface {
	// Create synthesizes, provisions, and records a pipeline answering
	// question. Any stage failure surfaces as a single fatal error; there
	// is no partial-success response shape.
	Create(ctx context.Context, question string) (*CreateResult, error)

	// Get returns the stored record with WriteCount refreshed from the
	// live engine. The refreshed count is not written back.
	Get(ctx context.Context, id string) (*models.PipelineRecord, error)

	// ListAll returns the listing projection of every stored pipeline.
	ListAll(ctx context.Context) ([]*models.PipelineSummary, error)

	// Delete tears down the pipeline's engine objects and removes its
	// metadata record.
	Delete(ctx context.Context, id string) error
}

type pipelineManager struct {
	synthesizer Synthesizer
	provisioner Provisioner
	store       repositories.PipelineStore
	logger      *zap.Logger
}

// NewPipelineManager creates the lifecycle composition root.
func NewPipelineManager(
	synthesizer Synthesizer,
	provisioner Provisioner,
	store repositories.PipelineStore,
	logger *zap.Logger,
) PipelineManager {
	return &pipelineManager{
		synthesizer: synthesizer,
		provisioner: provisioner,
		store:       store,
		logger:      logger.Named("manager"),
	}
}

// Create implements PipelineManager.
func (m *pipelineManager) Create(ctx context.Context, question string) (*CreateResult, error) {
	aiName, err := m.synthesizer.SynthesizeName(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("derive pipeline name: %w", err)
	}

	name := fmt.Sprintf("%s%s_%d", namePrefix, aiName, rand.Intn(10))
	if err := sqlsafe.ValidateObjectName(name); err != nil {
		return nil, fmt.Errorf("derive pipeline name: %w", err)
	}
	m.logger.Info("pipeline name derived", zap.String("name", name))

	descriptor, err := m.synthesizer.Synthesize(ctx, name, question)
	if err != nil {
		return nil, fmt.Errorf("synthesize pipeline %s: %w", name, err)
	}

	if err := m.provisioner.Provision(ctx, descriptor); err != nil {
		// A later stage may have left earlier objects behind; compensate
		// with a best-effort teardown so a failed create leaves nothing.
		m.compensate(ctx, descriptor)
		return nil, fmt.Errorf("provision pipeline %s: %w", name, err)
	}

	id, err := m.store.Create(ctx, descriptor, name)
	if err != nil {
		m.compensate(ctx, descriptor)
		return nil, fmt.Errorf("persist pipeline %s: %w", name, err)
	}

	m.logger.Info("pipeline created", zap.String("id", id), zap.String("name", name))
	return &CreateResult{ID: id, Name: name, Question: question}, nil
}

// compensate tears down whatever provisioning left behind. Drops are
// conditional, so compensation is safe even when no stage succeeded.
// Its own failure is logged, not surfaced: the original error is what the
// caller needs.
func (m *pipelineManager) compensate(ctx context.Context, d *models.PipelineDescriptor) {
	if err := m.provisioner.Teardown(ctx, d); err != nil {
		m.logger.Warn("compensating teardown failed",
			zap.String("source", d.SourceStream.Name),
			zap.Error(err))
	}
}

// Get implements PipelineManager.
func (m *pipelineManager) Get(ctx context.Context, id string) (*models.PipelineRecord, error) {
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record.WriteCount, record.WriteCountValid = m.provisioner.LiveWriteCount(ctx, &record.Descriptor)

	m.logger.Info("pipeline retrieved",
		zap.String("id", id),
		zap.String("name", record.Name),
		zap.Uint64("write_count", record.WriteCount),
		zap.Bool("write_count_valid", record.WriteCountValid))

	return record, nil
}

// ListAll implements PipelineManager.
func (m *pipelineManager) ListAll(ctx context.Context) ([]*models.PipelineSummary, error) {
	return m.store.ListAll(ctx)
}

// Delete implements PipelineManager. When teardown fails the metadata
// record is intentionally kept: teardown is idempotent, so the client can
// retry the delete instead of being left with an untracked partial
// teardown.
func (m *pipelineManager) Delete(ctx context.Context, id string) error {
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := m.provisioner.Teardown(ctx, &record.Descriptor); err != nil {
		return fmt.Errorf("teardown pipeline %s: %w", record.Name, err)
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.logger.Info("pipeline deleted", zap.String("id", id), zap.String("name", record.Name))
	return nil
}

// Ensure pipelineManager implements PipelineManager at compile time.
var _ PipelineManager = (*pipelineManager)(nil)
