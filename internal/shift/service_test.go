package shift_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/core/events"
	"github.com/frahmantamala/shifts-logger/internal/pagination"
	"github.com/frahmantamala/shifts-logger/internal/shift"
)

// failingRepository wraps the memory repository and fails on demand.
type failingRepository struct {
	*shift.MemoryRepository
	returnError   bool
	errorToReturn error
}

func (f *failingRepository) setError(err error) {
	f.returnError = true
	f.errorToReturn = err
}

func (f *failingRepository) clearError() {
	f.returnError = false
	f.errorToReturn = nil
}

func (f *failingRepository) Create(ctx context.Context, s *shift.Shift) error {
	if f.returnError {
		return f.errorToReturn
	}
	return f.MemoryRepository.Create(ctx, s)
}

func (f *failingRepository) Update(ctx context.Context, s *shift.Shift) error {
	if f.returnError {
		return f.errorToReturn
	}
	return f.MemoryRepository.Update(ctx, s)
}

func (f *failingRepository) Delete(ctx context.Context, id int64) error {
	if f.returnError {
		return f.errorToReturn
	}
	return f.MemoryRepository.Delete(ctx, id)
}

func (f *failingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if f.returnError {
		return 0, f.errorToReturn
	}
	return f.MemoryRepository.CountByUser(ctx, userID)
}

func (f *failingRepository) CountAll(ctx context.Context) (int64, error) {
	if f.returnError {
		return 0, f.errorToReturn
	}
	return f.MemoryRepository.CountAll(ctx)
}

type capturingPublisher struct {
	events []events.Event
}

func (c *capturingPublisher) Publish(_ context.Context, e events.Event) error {
	c.events = append(c.events, e)
	return nil
}

func at(hour, minute int) *time.Time {
	t := time.Date(2026, 1, 10, hour, minute, 0, 0, time.UTC)
	return &t
}

var _ = Describe("ShiftService", func() {
	var (
		ctx       context.Context
		repo      *failingRepository
		publisher *capturingPublisher
		service   *shift.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &failingRepository{MemoryRepository: shift.NewMemoryRepository()}
		publisher = &capturingPublisher{}
		service = shift.NewService(repo, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	add := func(userID string) *shift.Shift {
		s, err := service.AddShift(ctx, userID, shift.CreateShiftDTO{ShiftStart: at(7, 30), ShiftEnd: at(15, 30)})
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	Describe("AddShift", func() {
		It("computes the duration from the window", func() {
			// When
			s := add("u1")

			// Then
			Expect(s.ID).To(BeNumerically(">", 0))
			Expect(s.UserID).To(Equal("u1"))
			Expect(*s.Duration).To(Equal(8 * time.Hour))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeShiftCreated))
		})

		It("leaves duration empty for an open shift", func() {
			s, err := service.AddShift(ctx, "u1", shift.CreateShiftDTO{ShiftStart: at(7, 30)})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.ShiftEnd).To(BeNil())
			Expect(s.Duration).To(BeNil())
		})

		It("rejects an end before the start", func() {
			_, err := service.AddShift(ctx, "u1", shift.CreateShiftDTO{ShiftStart: at(15, 30), ShiftEnd: at(7, 30)})
			Expect(internal.KindOf(err)).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a missing start", func() {
			_, err := service.AddShift(ctx, "u1", shift.CreateShiftDTO{})
			Expect(err).To(MatchError(ContainSubstring("Shift start date and time is required.")))
		})

		It("reports a storage failure with the add message", func() {
			repo.setError(errors.New("insert failed"))
			defer repo.clearError()

			_, err := service.AddShift(ctx, "u1", shift.CreateShiftDTO{ShiftStart: at(7, 30)})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Message).To(Equal("Error adding new shift"))
		})
	})

	Describe("GetShift", func() {
		It("returns the caller's shift", func() {
			s := add("u1")
			got, err := service.GetShift(ctx, "u1", s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(s.ID))
		})

		It("reports a missing id as not found", func() {
			_, err := service.GetShift(ctx, "u1", 42)
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(404))
			Expect(appErr.Message).To(Equal("No shift with id 42 found"))
		})

		It("refuses another user's shift", func() {
			s := add("u1")
			_, err := service.GetShift(ctx, "u2", s.ID)
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(401))
			Expect(appErr.Message).To(Equal("Invalid credentials for accessing or modifying shift 1"))
		})
	})

	Describe("UpdateShift", func() {
		It("replaces the window and recomputes the duration", func() {
			// Given
			s := add("u1")

			// When
			updated, err := service.UpdateShift(ctx, "u1", s.ID, shift.UpdateShiftDTO{ShiftStart: at(9, 0), ShiftEnd: at(12, 15)})

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.Duration).To(Equal(3*time.Hour + 15*time.Minute))
			stored, err := service.GetShift(ctx, "u1", s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ShiftStart).To(Equal(*at(9, 0)))
		})

		It("refuses another user's shift", func() {
			s := add("u1")
			_, err := service.UpdateShift(ctx, "u2", s.ID, shift.UpdateShiftDTO{ShiftStart: at(9, 0)})
			Expect(internal.KindOf(err)).To(Equal(internal.ErrorTypeUnauthorized))
		})

		It("reports a storage failure with the update message", func() {
			s := add("u1")
			repo.setError(errors.New("update failed"))
			defer repo.clearError()

			_, err := service.UpdateShift(ctx, "u1", s.ID, shift.UpdateShiftDTO{ShiftStart: at(9, 0)})

			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Message).To(Equal("Error updating shift 1"))
		})
	})

	Describe("DeleteShift", func() {
		It("removes the shift", func() {
			s := add("u1")
			Expect(service.DeleteShift(ctx, "u1", s.ID)).To(Succeed())
			_, err := service.GetShift(ctx, "u1", s.ID)
			Expect(internal.KindOf(err)).To(Equal(internal.ErrorTypeNotFound))
		})

		It("reports a storage failure with the delete message", func() {
			s := add("u1")
			repo.setError(errors.New("delete failed"))
			defer repo.clearError()

			err := service.DeleteShift(ctx, "u1", s.ID)

			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Message).To(Equal("Error deleting shift 1"))
		})
	})

	Describe("ListShifts", func() {
		It("pages through the caller's shifts only", func() {
			// Given nine shifts for u1 and one for u2
			for i := 0; i < 9; i++ {
				add("u1")
			}
			add("u2")

			// When
			page, err := service.ListShifts(ctx, "u1", pagination.PageRequest{PageNumber: 3, PageSize: 4})

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalCount).To(Equal(int64(9)))
			Expect(page.TotalPages).To(Equal(3))
			Expect(page.PageNumber).To(Equal(3))
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].ID).To(Equal(int64(9)))
		})

		It("returns the empty page when there is nothing", func() {
			page, err := service.ListShifts(ctx, "u1", pagination.PageRequest{PageNumber: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(page).To(Equal(pagination.Empty[*shift.Shift]()))
		})

		It("does not clamp a page past the end", func() {
			add("u1")
			page, err := service.ListShifts(ctx, "u1", pagination.PageRequest{PageNumber: 5, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(BeEmpty())
			Expect(page.PageNumber).To(Equal(5))
			Expect(page.TotalPages).To(Equal(1))
		})

		It("returns an empty window for a page number that would overflow the offset", func() {
			// Given nine shifts
			for i := 0; i < 9; i++ {
				add("u1")
			}

			// When
			page, err := service.ListShifts(ctx, "u1", pagination.PageRequest{PageNumber: 1 << 62, PageSize: 4})

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(BeEmpty())
			Expect(page.PageNumber).To(Equal(1 << 62))
			Expect(page.TotalPages).To(Equal(3))
			Expect(page.TotalCount).To(Equal(int64(9)))
		})

		It("rejects a non-positive page", func() {
			_, err := service.ListShifts(ctx, "u1", pagination.PageRequest{PageNumber: 0, PageSize: 10})
			Expect(err).To(MatchError(pagination.ErrInvalidPageRequest))
		})
	})

	Describe("ListAllShifts", func() {
		It("includes every user's shifts in id order", func() {
			add("u2")
			add("u1")
			add("u2")

			page, err := service.ListAllShifts(ctx, pagination.PageRequest{PageNumber: 1, PageSize: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalCount).To(Equal(int64(3)))
			ids := []int64{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID}
			Expect(ids).To(Equal([]int64{1, 2, 3}))
		})
	})

	Describe("counts", func() {
		It("counts per user and overall", func() {
			add("u1")
			add("u1")
			add("u2")

			mine, err := service.CountShifts(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			all, err := service.CountAllShifts(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(mine).To(Equal(int64(2)))
			Expect(all).To(Equal(int64(3)))
		})

		It("reports storage failures with the count messages", func() {
			repo.setError(errors.New("count failed"))
			defer repo.clearError()

			_, err := service.CountShifts(ctx, "u1")
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Message).To(Equal("Error retrieving the count of shifts"))

			_, err = service.CountAllShifts(ctx)
			appErr, _ = internal.IsAppError(err)
			Expect(appErr.Message).To(Equal("Error retrieving the count of all shifts"))
		})
	})
})

var _ = Describe("MemoryRepository paging", func() {
	It("returns an empty window for a page number that would overflow the offset", func() {
		// Given
		ctx := context.Background()
		repo := shift.NewMemoryRepository()
		for i := 0; i < 9; i++ {
			Expect(repo.Create(ctx, &shift.Shift{UserID: "u1", ShiftStart: *at(7, 30)})).To(Succeed())
		}

		// When
		mine, err := repo.ListByUser(ctx, "u1", pagination.PageRequest{PageNumber: 1 << 62, PageSize: 4})
		Expect(err).NotTo(HaveOccurred())
		all, err := repo.ListAll(ctx, pagination.PageRequest{PageNumber: 1 << 62, PageSize: 4})

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(mine).To(BeEmpty())
		Expect(all).To(BeEmpty())
	})
})
