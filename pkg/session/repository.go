package session

import (
	"context"

	"github.com/pitabwire/frame/datastore/pool"
	"gorm.io/gorm"
)

// Repository persists the per-turn audit trail.
type Repository struct {
	pool pool.Pool
}

// NewRepository creates a turn-record repository over the given pool.
func NewRepository(pool pool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) db(ctx context.Context, readOnly bool) *gorm.DB {
	return r.pool.DB(ctx, readOnly)
}

// Record persists one completed turn.
func (r *Repository) Record(ctx context.Context, tr *TurnRecord) error {
	return r.db(ctx, false).Create(tr).Error
}

// ListBySession returns a session's turns, oldest first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]TurnRecord, error) {
	var records []TurnRecord
	err := r.db(ctx, true).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&records).Error
	return records, err
}

// PurgeSession drops a session's audit trail.
func (r *Repository) PurgeSession(ctx context.Context, sessionID string) error {
	return r.db(ctx, false).Where("session_id = ?", sessionID).Delete(&TurnRecord{}).Error
}
