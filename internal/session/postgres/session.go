package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sessionDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/session"
	"github.com/frahmantamala/shifts-logger/internal/session"
	"gorm.io/gorm"
)

// SessionRepository implements session.Store using GORM
type SessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create inserts the session in one statement; Seq is filled from the database.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	row := session.ToDataModel(s)
	row.Seq = 0
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	s.Seq = row.Seq
	return nil
}

func (r *SessionRepository) FindLatestByUser(ctx context.Context, userID string) (*session.Session, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *SessionRepository) FindActiveByUser(ctx context.Context, userID string) (*session.Session, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ? AND revoked = ?", userID, false))
}

// Revoke sets revoked and revoked_at once; revoking an already revoked
// session leaves the row as it was.
func (r *SessionRepository) Revoke(ctx context.Context, s *session.Session) error {
	now := r.now()
	res := r.db.WithContext(ctx).
		Model(&sessionDatamodel.Session{}).
		Where("id = ? AND revoked = ?", s.ID, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("revoke session %s: %w", s.ID, res.Error)
	}

	if res.RowsAffected == 0 {
		var row sessionDatamodel.Session
		if err := r.db.WithContext(ctx).Where("id = ?", s.ID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return session.ErrNotFound
			}
			return fmt.Errorf("revoke session %s: %w", s.ID, err)
		}
		s.Revoked = row.Revoked
		s.RevokedAt = row.RevokedAt
		return nil
	}

	s.MarkRevoked(now)
	return nil
}

func (r *SessionRepository) first(q *gorm.DB) (*session.Session, error) {
	var row sessionDatamodel.Session
	if err := q.Order("seq DESC").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return session.FromDataModel(&row), nil
}
