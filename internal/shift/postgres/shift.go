package postgres

import (
	"context"
	"errors"

	shiftDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/shift"
	"github.com/frahmantamala/shifts-logger/internal/pagination"
	"github.com/frahmantamala/shifts-logger/internal/shift"
	"gorm.io/gorm"
)

// ShiftRepository implements shift.Repository using GORM
type ShiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

func (r *ShiftRepository) Create(ctx context.Context, s *shift.Shift) error {
	dm := shift.ToDataModel(s)
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}
	s.ID = dm.ID
	s.CreatedAt = dm.CreatedAt
	s.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id int64) (*shift.Shift, error) {
	var dm shiftDatamodel.Shift
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shift.ErrNotFound
		}
		return nil, err
	}
	return shift.FromDataModel(&dm), nil
}

// Update writes the window columns of s.
func (r *ShiftRepository) Update(ctx context.Context, s *shift.Shift) error {
	dm := shift.ToDataModel(s)
	result := r.db.WithContext(ctx).
		Model(&shiftDatamodel.Shift{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"shift_start":      dm.ShiftStart,
			"shift_end":        dm.ShiftEnd,
			"duration_seconds": dm.DurationSeconds,
			"updated_at":       dm.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shift.ErrNotFound
	}
	return nil
}

func (r *ShiftRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&shiftDatamodel.Shift{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shift.ErrNotFound
	}
	return nil
}

func (r *ShiftRepository) ListByUser(ctx context.Context, userID string, page pagination.PageRequest) ([]*shift.Shift, error) {
	var rows []shiftDatamodel.Shift
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *ShiftRepository) ListAll(ctx context.Context, page pagination.PageRequest) ([]*shift.Shift, error) {
	var rows []shiftDatamodel.Shift
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Order("user_id ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *ShiftRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&shiftDatamodel.Shift{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *ShiftRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&shiftDatamodel.Shift{}).Count(&n).Error
	return n, err
}

func fromRows(rows []shiftDatamodel.Shift) []*shift.Shift {
	out := make([]*shift.Shift, len(rows))
	for i := range rows {
		out[i] = shift.FromDataModel(&rows[i])
	}
	return out
}
