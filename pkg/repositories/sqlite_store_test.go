package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/apperrors"
	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
)

func newTestSQLiteStore(t *testing.T) *SQLitePipelineStore {
	t.Helper()

	store, err := NewSQLitePipelineStore(filepath.Join(t.TempDir(), "pipelines.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleDescriptor(name string) *models.PipelineDescriptor {
	return &models.PipelineDescriptor{
		SourceStream: models.StreamObject{
			Name: name,
			DDL:  "CREATE RANDOM STREAM " + name + " (i int DEFAULT rand()%100)",
		},
		SinkStream: models.StreamObject{
			Name: "kafka_external_" + name,
			DDL:  "CREATE EXTERNAL STREAM kafka_external_" + name + " (value string)",
		},
		ConnectorView: models.StreamObject{
			Name: "mv_kafka_external_" + name,
			DDL:  "CREATE MATERIALIZED VIEW mv_kafka_external_" + name,
		},
		Question: "generate " + name,
	}
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	descriptor := sampleDescriptor("rnd_orders_1")
	id, err := store.Create(ctx, descriptor, "rnd_orders_1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("expected 32-char hex id, got %q", id)
	}

	record, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.ID != id {
		t.Errorf("expected id %q, got %q", id, record.ID)
	}
	if record.Name != "rnd_orders_1" {
		t.Errorf("expected name rnd_orders_1, got %q", record.Name)
	}
	if !reflect.DeepEqual(record.Descriptor, *descriptor) {
		t.Errorf("descriptor not round-tripped:\n got %+v\nwant %+v", record.Descriptor, *descriptor)
	}
	if record.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Get(context.Background(), "does-not-exist")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_ListAllNewestFirst(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	firstID, err := store.Create(ctx, sampleDescriptor("rnd_first_1"), "rnd_first_1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	secondID, err := store.Create(ctx, sampleDescriptor("rnd_second_2"), "rnd_second_2")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	summaries, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	ids := map[string]bool{summaries[0].ID: true, summaries[1].ID: true}
	if !ids[firstID] || !ids[secondID] {
		t.Errorf("listing missing records: %v", summaries)
	}
	if summaries[0].CreatedAt.Before(summaries[1].CreatedAt) {
		t.Errorf("expected newest first, got %v then %v", summaries[0].CreatedAt, summaries[1].CreatedAt)
	}
	if summaries[0].Question == "" {
		t.Error("summary question not populated")
	}
}

func TestSQLiteStore_ListAllSkipsMalformed(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, sampleDescriptor("rnd_good_1"), "rnd_good_1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := store.db.ExecContext(ctx, `
		INSERT INTO pipelines (id, name, pipeline_json, created_at, write_count)
		VALUES ('broken', 'rnd_broken_0', 'not json', datetime('now'), 0)`)
	if err != nil {
		t.Fatalf("failed to insert malformed row: %v", err)
	}

	summaries, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected malformed row to be skipped, got %d summaries", len(summaries))
	}
	if summaries[0].Name != "rnd_good_1" {
		t.Errorf("expected only the good record, got %q", summaries[0].Name)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, sampleDescriptor("rnd_orders_1"), "rnd_orders_1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStore_DeleteNotFound(t *testing.T) {
	store := newTestSQLiteStore(t)

	err := store.Delete(context.Background(), "does-not-exist")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipelines.db")

	first, err := NewSQLitePipelineStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	id, err := first.Create(context.Background(), sampleDescriptor("rnd_keep_1"), "rnd_keep_1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_ = first.Close()

	// Reopening must not disturb existing data.
	second, err := NewSQLitePipelineStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer func() { _ = second.Close() }()

	if _, err := second.Get(context.Background(), id); err != nil {
		t.Errorf("record lost across reopen: %v", err)
	}
}
