package shift

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/shifts-logger/internal"
	shiftDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/shift"
)

// ErrNotFound is returned by repositories for a missing shift id.
var ErrNotFound = errors.New("shift not found")

// Shift is one logged working period. Duration is derived from the
// window and is nil while the shift is open.
type Shift struct {
	ID         int64
	UserID     string
	ShiftStart time.Time
	ShiftEnd   *time.Time
	Duration   *time.Duration
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SetWindow replaces start and end and recomputes Duration.
func (s *Shift) SetWindow(start time.Time, end *time.Time) {
	s.ShiftStart = start.UTC()
	s.ShiftEnd = nil
	s.Duration = nil
	if end != nil {
		e := end.UTC()
		d := e.Sub(s.ShiftStart)
		s.ShiftEnd = &e
		s.Duration = &d
	}
}

func (s *Shift) OwnedBy(userID string) bool {
	return s.UserID == userID
}

func NotFoundError(id int64) *internal.AppError {
	return internal.NewNotFoundError(fmt.Sprintf("No shift with id %d found", id), internal.ErrCodeShiftNotFound)
}

func OwnershipError(id int64) *internal.AppError {
	return internal.NewUnauthorizedError(
		fmt.Sprintf("Invalid credentials for accessing or modifying shift %d", id),
		internal.ErrCodeShiftOwnership,
	)
}

// StoreError is the 400 reported when storage fails an operation.
func StoreError(message string, cause error) *internal.AppError {
	return internal.NewValidationError(message, internal.ErrCodeShiftStoreFailed).WithCause(cause)
}

func ToDataModel(s *Shift) *shiftDatamodel.Shift {
	dm := &shiftDatamodel.Shift{
		ID:         s.ID,
		UserID:     s.UserID,
		ShiftStart: s.ShiftStart,
		ShiftEnd:   s.ShiftEnd,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Duration != nil {
		secs := int64(*s.Duration / time.Second)
		dm.DurationSeconds = &secs
	}
	return dm
}

func FromDataModel(dm *shiftDatamodel.Shift) *Shift {
	s := &Shift{
		ID:         dm.ID,
		UserID:     dm.UserID,
		ShiftStart: dm.ShiftStart.UTC(),
		CreatedAt:  dm.CreatedAt,
		UpdatedAt:  dm.UpdatedAt,
	}
	if dm.ShiftEnd != nil {
		end := dm.ShiftEnd.UTC()
		s.ShiftEnd = &end
	}
	if dm.DurationSeconds != nil {
		d := time.Duration(*dm.DurationSeconds) * time.Second
		s.Duration = &d
	}
	return s
}
