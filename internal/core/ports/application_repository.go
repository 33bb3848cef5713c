package ports

import (
	"context"
	"time"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

// ListApplicationsFilter carries all query parameters for listing applications.
// UserID is always enforced by the service layer for citizen reads.
type ListApplicationsFilter struct {
	UserID  string // empty = no filter (provider); non-empty = scoped to owner
	Status  string // optional
	Service string // optional
	Page    int    // 1-based
	Limit   int
}

// StatusUpdate is the set of fields written by a status transition.
type StatusUpdate struct {
	Status      domain.ApplicationStatus
	ProcessedAt *time.Time // nil leaves processed_at untouched
	Notes       string     // empty leaves notes untouched
	History     domain.StatusHistoryEntry
}

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	// Create inserts a new application and sets its store-assigned ID.
	Create(ctx context.Context, app *domain.Application) error
	// FindByID retrieves an application by ID.
	// When userID is non-empty, the query is additionally filtered by owner.
	FindByID(ctx context.Context, id, userID string) (*domain.Application, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Application, error)
	// List returns a page of applications matching filter, newest first, and
	// the total count.
	List(ctx context.Context, filter ListApplicationsFilter) ([]*domain.Application, int64, error)
	// UpdateStatus applies update only if the stored status still equals from,
	// and returns the updated record. A miss yields domain.ErrApplicationNotFound.
	UpdateStatus(ctx context.Context, id string, from domain.ApplicationStatus, update StatusUpdate) (*domain.Application, error)
}
