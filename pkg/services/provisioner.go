package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
	"github.com/streamsynth-io/streamsynth-engine/pkg/retry"
	"github.com/streamsynth-io/streamsynth-engine/pkg/timeplus"
)

// Stage identifies the provisioning step that failed.
type Stage string

const (
	StageSource Stage = "source"
	StageSink   Stage = "sink"
	StageView   Stage = "view"
)

// sinkRetryDelay is how long to wait before the single sink-creation retry.
// Sink creation races the Kafka broker becoming reachable right after
// startup; one bounded retry absorbs that without masking real failures.
const sinkRetryDelay = 3 * time.Second

// ProvisionError reports which stage of provisioning failed. Earlier
// stages may have already created engine objects; rollback is the caller's
// decision.
type ProvisionError struct {
	Stage Stage
	Err   error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s stage: %v", e.Stage, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// Provisioner materializes pipeline descriptors as engine objects and
// tears them down again.
type Provisioner interface {
	// Provision creates the descriptor's objects in dependency order:
	// source stream, sink stream, connector view.
	Provision(ctx context.Context, d *models.PipelineDescriptor) error

	// Teardown drops the descriptor's objects in reverse dependency order
	// using conditional drops. Idempotent and safe to re-run after a
	// partial failure.
	Teardown(ctx context.Context, d *models.PipelineDescriptor) error

	// LiveWriteCount reports how many rows have flowed through the
	// connector view since creation. Best-effort telemetry: returns
	// (0, false) when the statistic is unavailable, never an error.
	LiveWriteCount(ctx context.Context, d *models.PipelineDescriptor) (uint64, bool)
}

type provisioner struct {
	conn       timeplus.Conn
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewProvisioner creates a Provisioner on the given engine connection.
func NewProvisioner(conn timeplus.Conn, logger *zap.Logger) Provisioner {
	return &provisioner{
		conn:       conn,
		retryDelay: sinkRetryDelay,
		logger:     logger.Named("provisioner"),
	}
}

// Provision implements Provisioner. The view references both the source
// (read side) and the sink (write target), so both must exist before it.
func (p *provisioner) Provision(ctx context.Context, d *models.PipelineDescriptor) error {
	// Source first. No retry: a failure here means the generated DDL is
	// bad, not that infrastructure is catching up.
	p.logger.Info("creating source stream", zap.String("name", d.SourceStream.Name))
	if err := p.conn.Exec(ctx, d.SourceStream.DDL); err != nil {
		p.logger.Error("source stream creation failed",
			zap.String("name", d.SourceStream.Name),
			zap.String("ddl", d.SourceStream.DDL),
			zap.Error(err))
		return &ProvisionError{Stage: StageSource, Err: err}
	}

	p.logger.Info("creating sink stream", zap.String("name", d.SinkStream.Name))
	attempts := 0
	err := retry.Do(ctx, retry.Fixed(1, p.retryDelay), func() error {
		attempts++
		if err := p.conn.Exec(ctx, d.SinkStream.DDL); err != nil {
			p.logger.Warn("sink stream creation failed",
				zap.String("name", d.SinkStream.Name),
				zap.Int("attempt", attempts),
				zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		p.logger.Error("sink stream creation failed after retry",
			zap.String("name", d.SinkStream.Name),
			zap.String("ddl", d.SinkStream.DDL),
			zap.Error(err))
		return &ProvisionError{Stage: StageSink, Err: err}
	}

	p.logger.Info("creating connector view", zap.String("name", d.ConnectorView.Name))
	if err := p.conn.Exec(ctx, d.ConnectorView.DDL); err != nil {
		p.logger.Error("connector view creation failed",
			zap.String("name", d.ConnectorView.Name),
			zap.String("ddl", d.ConnectorView.DDL),
			zap.Error(err))
		return &ProvisionError{Stage: StageView, Err: err}
	}

	p.logger.Info("pipeline provisioned", zap.String("source", d.SourceStream.Name))
	return nil
}

// Teardown implements Provisioner. All three drops are attempted even when
// an earlier one fails, so re-running after a partial teardown converges.
func (p *provisioner) Teardown(ctx context.Context, d *models.PipelineDescriptor) error {
	p.logger.Info("tearing down pipeline", zap.String("source", d.SourceStream.Name))

	var errs []error
	if err := p.conn.Exec(ctx, "DROP VIEW IF EXISTS "+d.ConnectorView.Name); err != nil {
		errs = append(errs, fmt.Errorf("drop view %s: %w", d.ConnectorView.Name, err))
	}
	if err := p.conn.Exec(ctx, "DROP STREAM IF EXISTS "+d.SinkStream.Name); err != nil {
		errs = append(errs, fmt.Errorf("drop sink stream %s: %w", d.SinkStream.Name, err))
	}
	if err := p.conn.Exec(ctx, "DROP STREAM IF EXISTS "+d.SourceStream.Name); err != nil {
		errs = append(errs, fmt.Errorf("drop source stream %s: %w", d.SourceStream.Name, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.logger.Info("pipeline torn down", zap.String("source", d.SourceStream.Name))
	return nil
}

// LiveWriteCount implements Provisioner.
func (p *provisioner) LiveWriteCount(ctx context.Context, d *models.PipelineDescriptor) (uint64, bool) {
	query := fmt.Sprintf(
		"SELECT count(*) FROM table(%s) WHERE _tp_time > earliest_ts()",
		d.ConnectorView.Name)

	count, err := p.conn.QueryUInt64(ctx, query)
	if err != nil {
		p.logger.Warn("write count unavailable",
			zap.String("view", d.ConnectorView.Name),
			zap.Error(err))
		return 0, false
	}

	return count, true
}

// Ensure provisioner implements Provisioner at compile time.
var _ Provisioner = (*provisioner)(nil)
