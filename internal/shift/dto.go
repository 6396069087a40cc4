package shift

import (
	"time"

	"github.com/frahmantamala/shifts-logger/internal/core/common/validation"
)

// CreateShiftDTO is the body of POST /api/shifts/add.
type CreateShiftDTO struct {
	ShiftStart *time.Time `json:"shiftStart"`
	ShiftEnd   *time.Time `json:"shiftEnd,omitempty"`
}

func (d CreateShiftDTO) Validate() error {
	return validateStart(d.ShiftStart)
}

// UpdateShiftDTO replaces the window of an existing shift.
type UpdateShiftDTO struct {
	ShiftStart *time.Time `json:"shiftStart"`
	ShiftEnd   *time.Time `json:"shiftEnd,omitempty"`
}

func (d UpdateShiftDTO) Validate() error {
	return validateStart(d.ShiftStart)
}

func validateStart(start *time.Time) error {
	v := validation.NewValidator()
	v.Field("shiftStart", start).RequiredMsg("Shift start date and time is required.")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Response is the wire form of a shift.
type Response struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"userId"`
	ShiftStart      time.Time  `json:"shiftStart"`
	ShiftEnd        *time.Time `json:"shiftEnd"`
	Duration        *string    `json:"duration"`
	DurationSeconds *int64     `json:"durationSeconds"`
}

func (s *Shift) ToResponse() Response {
	resp := Response{
		ID:         s.ID,
		UserID:     s.UserID,
		ShiftStart: s.ShiftStart,
		ShiftEnd:   s.ShiftEnd,
	}
	if s.Duration != nil {
		text := s.Duration.String()
		secs := int64(*s.Duration / time.Second)
		resp.Duration = &text
		resp.DurationSeconds = &secs
	}
	return resp
}

type CountResponse struct {
	Count int64 `json:"count"`
}
