package repositories

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/apperrors"
	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLitePipelineStore persists pipeline metadata in an embedded SQLite
// database. The schema is applied from embedded migrations on open; opening
// an already-migrated database is a no-op.
type SQLitePipelineStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLitePipelineStore opens (creating if needed) the SQLite database at
// path and applies pending migrations.
func NewSQLitePipelineStore(path string, logger *zap.Logger) (*SQLitePipelineStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}

	log := logger.Named("store")
	if err := runMigrations(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("sqlite metadata store ready", zap.String("path", path))
	return &SQLitePipelineStore{db: db, logger: log}, nil
}

// runMigrations applies pending schema migrations from the embedded
// migration files. Idempotent and safe to call on every startup.
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Debug("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("applied migrations", zap.Uint("version", version))
	return nil
}

// Create implements PipelineStore.
func (s *SQLitePipelineStore) Create(ctx context.Context, descriptor *models.PipelineDescriptor, name string) (string, error) {
	id := newPipelineID()

	payload, err := json.Marshal(descriptor)
	if err != nil {
		return "", fmt.Errorf("serialize descriptor: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pipelines (id, name, pipeline_json, created_at, write_count)
		VALUES (?, ?, ?, ?, 0)`,
		id, name, string(payload), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert pipeline record: %w", err)
	}

	s.logger.Info("pipeline record created", zap.String("id", id), zap.String("name", name))
	return id, nil
}

// Get implements PipelineStore.
func (s *SQLitePipelineStore) Get(ctx context.Context, id string) (*models.PipelineRecord, error) {
	var (
		name       string
		payload    string
		createdAt  time.Time
		writeCount uint64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, pipeline_json, created_at, write_count
		FROM pipelines
		WHERE id = ?`, id).Scan(&name, &payload, &createdAt, &writeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pipeline %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query pipeline record: %w", err)
	}

	record := &models.PipelineRecord{
		ID:         id,
		Name:       name,
		CreatedAt:  createdAt,
		WriteCount: writeCount,
	}
	if err := json.Unmarshal([]byte(payload), &record.Descriptor); err != nil {
		return nil, fmt.Errorf("parse stored descriptor for %s: %w", id, err)
	}

	return record, nil
}

// ListAll implements PipelineStore. Records whose stored descriptor no
// longer parses are logged and omitted rather than failing the listing.
func (s *SQLitePipelineStore) ListAll(ctx context.Context) ([]*models.PipelineSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, pipeline_json, created_at
		FROM pipelines
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list pipeline records: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.PipelineSummary, 0)
	for rows.Next() {
		var (
			id        string
			name      string
			payload   string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pipeline record: %w", err)
		}

		var descriptor models.PipelineDescriptor
		if err := json.Unmarshal([]byte(payload), &descriptor); err != nil {
			s.logger.Warn("skipping pipeline with malformed descriptor",
				zap.String("id", id), zap.Error(err))
			continue
		}

		summaries = append(summaries, &models.PipelineSummary{
			ID:        id,
			Name:      name,
			Question:  descriptor.Question,
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pipeline records: %w", err)
	}

	return summaries, nil
}

// Delete implements PipelineStore.
func (s *SQLitePipelineStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pipelines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pipeline record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pipeline record: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pipeline %s: %w", id, apperrors.ErrNotFound)
	}

	s.logger.Info("pipeline record deleted", zap.String("id", id))
	return nil
}

// Close implements PipelineStore.
func (s *SQLitePipelineStore) Close() error {
	return s.db.Close()
}

// Ensure SQLitePipelineStore implements PipelineStore at compile time.
var _ PipelineStore = (*SQLitePipelineStore)(nil)
