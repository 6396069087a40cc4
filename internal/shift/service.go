package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/shifts-logger/internal/core/common/validation"
	"github.com/frahmantamala/shifts-logger/internal/core/events"
	"github.com/frahmantamala/shifts-logger/internal/pagination"
)

// Repository is the shift storage. Windowed lists return exactly the
// requested page, ordered by id.
type Repository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, id int64) (*Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID string, page pagination.PageRequest) ([]*Shift, error)
	ListAll(ctx context.Context, page pagination.PageRequest) ([]*Shift, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) AddShift(ctx context.Context, userID string, dto CreateShiftDTO) (*Shift, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if appErr := validation.ValidateShiftWindow(*dto.ShiftStart, dto.ShiftEnd); appErr != nil {
		return nil, appErr
	}

	now := s.now().UTC()
	sh := &Shift{UserID: userID, CreatedAt: now, UpdatedAt: now}
	sh.SetWindow(*dto.ShiftStart, dto.ShiftEnd)

	if err := s.repo.Create(ctx, sh); err != nil {
		s.logger.Error("failed to create shift", "error", err, "user_id", userID)
		return nil, StoreError("Error adding new shift", err)
	}

	s.logger.Info("shift created", "shift_id", sh.ID, "user_id", userID)
	s.publish(ctx, events.NewShiftChangedEvent(events.EventTypeShiftCreated, sh.ID, userID, userID))
	return sh, nil
}

// owned loads shift id and checks it belongs to userID. readFailure is
// the message used when storage fails.
func (s *Service) owned(ctx context.Context, userID string, id int64, readFailure string) (*Shift, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFoundError(id)
		}
		s.logger.Error("failed to load shift", "error", err, "shift_id", id)
		return nil, StoreError(readFailure, err)
	}
	if !sh.OwnedBy(userID) {
		s.logger.Warn("shift access denied", "shift_id", id, "user_id", userID, "owner_id", sh.UserID)
		return nil, OwnershipError(id)
	}
	return sh, nil
}

func (s *Service) GetShift(ctx context.Context, userID string, id int64) (*Shift, error) {
	return s.owned(ctx, userID, id, fmt.Sprintf("Error retrieving shift %d", id))
}

func (s *Service) UpdateShift(ctx context.Context, userID string, id int64, dto UpdateShiftDTO) (*Shift, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	failure := fmt.Sprintf("Error updating shift %d", id)

	sh, err := s.owned(ctx, userID, id, failure)
	if err != nil {
		return nil, err
	}
	if appErr := validation.ValidateShiftWindow(*dto.ShiftStart, dto.ShiftEnd); appErr != nil {
		return nil, appErr
	}

	sh.SetWindow(*dto.ShiftStart, dto.ShiftEnd)
	sh.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, sh); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFoundError(id)
		}
		s.logger.Error("failed to update shift", "error", err, "shift_id", id)
		return nil, StoreError(failure, err)
	}

	s.publish(ctx, events.NewShiftChangedEvent(events.EventTypeShiftUpdated, id, sh.UserID, userID))
	return sh, nil
}

func (s *Service) DeleteShift(ctx context.Context, userID string, id int64) error {
	failure := fmt.Sprintf("Error deleting shift %d", id)

	sh, err := s.owned(ctx, userID, id, failure)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return NotFoundError(id)
		}
		s.logger.Error("failed to delete shift", "error", err, "shift_id", id)
		return StoreError(failure, err)
	}

	s.logger.Info("shift deleted", "shift_id", id, "user_id", userID)
	s.publish(ctx, events.NewShiftChangedEvent(events.EventTypeShiftDeleted, id, sh.UserID, userID))
	return nil
}

// ListShifts pages through userID's shifts.
func (s *Service) ListShifts(ctx context.Context, userID string, page pagination.PageRequest) (pagination.Page[*Shift], error) {
	if err := page.Validate(); err != nil {
		return pagination.Page[*Shift]{}, err
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count shifts", "error", err, "user_id", userID)
		return pagination.Page[*Shift]{}, StoreError("Error retrieving shifts", err)
	}
	if total == 0 {
		return pagination.Empty[*Shift](), nil
	}
	if page.Beyond(total) {
		return pagination.Paginate[*Shift](nil, total, page.PageNumber, page.PageSize), nil
	}

	window, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		s.logger.Error("failed to list shifts", "error", err, "user_id", userID)
		return pagination.Page[*Shift]{}, StoreError("Error retrieving shifts", err)
	}
	return pagination.Paginate(window, total, page.PageNumber, page.PageSize), nil
}

// ListAllShifts pages through every user's shifts, ordered by id then user.
func (s *Service) ListAllShifts(ctx context.Context, page pagination.PageRequest) (pagination.Page[*Shift], error) {
	if err := page.Validate(); err != nil {
		return pagination.Page[*Shift]{}, err
	}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		s.logger.Error("failed to count all shifts", "error", err)
		return pagination.Page[*Shift]{}, StoreError("Error retrieving shifts", err)
	}
	if total == 0 {
		return pagination.Empty[*Shift](), nil
	}
	if page.Beyond(total) {
		return pagination.Paginate[*Shift](nil, total, page.PageNumber, page.PageSize), nil
	}

	window, err := s.repo.ListAll(ctx, page)
	if err != nil {
		s.logger.Error("failed to list all shifts", "error", err)
		return pagination.Page[*Shift]{}, StoreError("Error retrieving shifts", err)
	}
	return pagination.Paginate(window, total, page.PageNumber, page.PageSize), nil
}

func (s *Service) CountShifts(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count shifts", "error", err, "user_id", userID)
		return 0, StoreError("Error retrieving the count of shifts", err)
	}
	return n, nil
}

func (s *Service) CountAllShifts(ctx context.Context) (int64, error) {
	n, err := s.repo.CountAll(ctx)
	if err != nil {
		s.logger.Error("failed to count all shifts", "error", err)
		return 0, StoreError("Error retrieving the count of all shifts", err)
	}
	return n, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event_type", event.EventType(), "error", err)
	}
}
