package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"alcyxob/coach-engine/internal/domain"

	"github.com/google/uuid"
)

// ArchiveEntry is one retired plan kept in an athlete's archive. The
// archive list is stored newest first.
type ArchiveEntry struct {
	ID         string      `json:"id"`
	ArchivedAt string      `json:"archived_at"` // RFC3339
	Goal       string      `json:"goal,omitempty"`
	Plan       domain.Plan `json:"plan"`
}

// NewArchiveEntry wraps a plan for archival with a fresh id and timestamp.
func NewArchiveEntry(plan *domain.Plan) ArchiveEntry {
	return ArchiveEntry{
		ID:         uuid.NewString(),
		ArchivedAt: time.Now().UTC().Format(time.RFC3339),
		Goal:       plan.AthleteGoal,
		Plan:       *plan.Clone(),
	}
}

// ArchiveStore defines the interface for object storage operations: the
// plan archive per athlete and reference data objects.
type ArchiveStore interface {
	// SaveArchive overwrites the athlete's full archive (newest first).
	// Returns the object key written.
	SaveArchive(ctx context.Context, athleteID string, entries []ArchiveEntry) (string, error)

	// LoadArchive returns the athlete's full archive, or ErrObjectNotFound
	// when the athlete has none.
	LoadArchive(ctx context.Context, athleteID string) ([]ArchiveEntry, error)

	// FetchObject streams a raw object, such as the VDOT reference CSV.
	// The caller must close the reader.
	FetchObject(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// Error constants for storage layer
var (
	ErrObjectNotFound = errors.New("object not found in storage")
)
