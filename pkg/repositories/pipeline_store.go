// Package repositories provides pipeline metadata persistence behind a
// single contract with two interchangeable backends: an embedded SQLite
// database and a mutable stream inside the streaming engine itself.
package repositories

import (
	"context"

	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
)

// PipelineStore provides data access for pipeline metadata records.
// Both backends expose identical semantics: descriptors round-trip
// losslessly, Get/Delete fail with apperrors.ErrNotFound for unknown ids,
// and ListAll skips malformed rows instead of aborting.
type PipelineStore interface {
	// Create generates a fresh opaque id, serializes the descriptor, and
	// stores the record. Returns the new id.
	Create(ctx context.Context, descriptor *models.PipelineDescriptor, name string) (string, error)

	// Get returns the full record for id, with WriteCount as last stored.
	Get(ctx context.Context, id string) (*models.PipelineRecord, error)

	// ListAll returns the listing projection of every record, most recent
	// first.
	ListAll(ctx context.Context) ([]*models.PipelineSummary, error)

	// Delete permanently removes the record for id.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
