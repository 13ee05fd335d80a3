package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/apperrors"
	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
	"github.com/streamsynth-io/streamsynth-engine/pkg/timeplus"
)

// StreamPipelineStore persists pipeline metadata in a mutable stream inside
// the streaming engine itself, keyed by record id. The engine does not
// guarantee row order for mutable streams, so listings are sorted
// client-side to match the SQLite backend.
type StreamPipelineStore struct {
	conn   timeplus.Conn
	stream string
	logger *zap.Logger
}

// NewStreamPipelineStore ensures the metadata stream exists and returns a
// store backed by it. The connection is shared with the provisioner and is
// not closed by the store.
func NewStreamPipelineStore(ctx context.Context, conn timeplus.Conn, stream string, logger *zap.Logger) (*StreamPipelineStore, error) {
	ddl := fmt.Sprintf(`CREATE MUTABLE STREAM IF NOT EXISTS %s (
		id string,
		name string,
		pipeline string,
		created_at string
	)
	PRIMARY KEY (id)`, stream)

	if err := conn.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("initialize metadata stream %s: %w", stream, err)
	}

	log := logger.Named("store")
	log.Info("mutable stream metadata store ready", zap.String("stream", stream))
	return &StreamPipelineStore{conn: conn, stream: stream, logger: log}, nil
}

// quoteLiteral renders s as a single-quoted engine string literal.
func quoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// Create implements PipelineStore.
func (s *StreamPipelineStore) Create(ctx context.Context, descriptor *models.PipelineDescriptor, name string) (string, error) {
	id := newPipelineID()

	payload, err := json.Marshal(descriptor)
	if err != nil {
		return "", fmt.Errorf("serialize descriptor: %w", err)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	stmt := fmt.Sprintf("INSERT INTO %s (id, name, pipeline, created_at) VALUES (%s, %s, %s, %s)",
		s.stream, quoteLiteral(id), quoteLiteral(name), quoteLiteral(string(payload)), quoteLiteral(createdAt))

	if err := s.conn.Exec(ctx, stmt); err != nil {
		return "", fmt.Errorf("insert pipeline record: %w", err)
	}

	s.logger.Info("pipeline record created", zap.String("id", id), zap.String("name", name))
	return id, nil
}

// Get implements PipelineStore.
func (s *StreamPipelineStore) Get(ctx context.Context, id string) (*models.PipelineRecord, error) {
	query := fmt.Sprintf("SELECT name, pipeline, created_at FROM table(%s) WHERE id = %s",
		s.stream, quoteLiteral(id))

	rows, err := s.conn.QueryStrings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pipeline record: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("pipeline %s: %w", id, apperrors.ErrNotFound)
	}

	name, payload, createdAt := rows[0][0], rows[0][1], rows[0][2]

	record := &models.PipelineRecord{
		ID:   id,
		Name: name,
	}
	if err := json.Unmarshal([]byte(payload), &record.Descriptor); err != nil {
		return nil, fmt.Errorf("parse stored descriptor for %s: %w", id, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = ts
	}

	return record, nil
}

// ListAll implements PipelineStore. Rows whose stored descriptor no longer
// parses are logged and omitted rather than failing the listing.
func (s *StreamPipelineStore) ListAll(ctx context.Context) ([]*models.PipelineSummary, error) {
	query := fmt.Sprintf("SELECT id, name, pipeline, created_at FROM table(%s)", s.stream)

	rows, err := s.conn.QueryStrings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pipeline records: %w", err)
	}

	summaries := make([]*models.PipelineSummary, 0, len(rows))
	for _, row := range rows {
		if len(row) != 4 {
			s.logger.Warn("skipping pipeline row with unexpected shape", zap.Int("columns", len(row)))
			continue
		}
		id, name, payload, createdAt := row[0], row[1], row[2], row[3]

		var descriptor models.PipelineDescriptor
		if err := json.Unmarshal([]byte(payload), &descriptor); err != nil {
			s.logger.Warn("skipping pipeline with malformed descriptor",
				zap.String("id", id), zap.Error(err))
			continue
		}

		summary := &models.PipelineSummary{
			ID:       id,
			Name:     name,
			Question: descriptor.Question,
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			summary.CreatedAt = ts
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}

// Delete implements PipelineStore.
func (s *StreamPipelineStore) Delete(ctx context.Context, id string) error {
	count, err := s.conn.QueryUInt64(ctx, fmt.Sprintf(
		"SELECT count(*) FROM table(%s) WHERE id = %s", s.stream, quoteLiteral(id)))
	if err != nil {
		return fmt.Errorf("check pipeline record: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("pipeline %s: %w", id, apperrors.ErrNotFound)
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = %s", s.stream, quoteLiteral(id))
	if err := s.conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("delete pipeline record: %w", err)
	}

	s.logger.Info("pipeline record deleted", zap.String("id", id))
	return nil
}

// Close implements PipelineStore. The engine connection is owned by the
// caller, so there is nothing to release here.
func (s *StreamPipelineStore) Close() error {
	return nil
}

// Ensure StreamPipelineStore implements PipelineStore at compile time.
var _ PipelineStore = (*StreamPipelineStore)(nil)
