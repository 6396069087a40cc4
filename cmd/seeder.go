package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sessionDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/session"
	shiftDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/shift"
	userDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/user"
	"github.com/frahmantamala/shifts-logger/internal/shift"
	shiftPostgres "github.com/frahmantamala/shifts-logger/internal/shift/postgres"
	"github.com/frahmantamala/shifts-logger/internal/user"
	userPostgres "github.com/frahmantamala/shifts-logger/internal/user/postgres"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	seedPassword   = "Pa$$w0rd"
	seedShiftCount = 20
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		lg := setupLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db, lg)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		return seedDatabase(cmd.Context(), gormDB, seedOptions{
			Clear:      clearData,
			BCryptCost: cfg.Security.BCryptCost,
		}, lg)
	},
}

type seedOptions struct {
	Clear      bool
	BCryptCost int
}

type seedUser struct {
	dto  user.RegisterDTO
	role string
}

var seedUsers = []seedUser{
	{
		dto: user.RegisterDTO{
			FirstName:  "John",
			LastName:   "Smith",
			Email:      "admin@example.com",
			Department: string(user.DepartmentInformationTechnology),
			Password:   seedPassword,
		},
		role: user.RoleAdmin,
	},
	{
		dto: user.RegisterDTO{
			FirstName:  "Gordon",
			LastName:   "Ramsay",
			Email:      "gramsay@example.com",
			Department: string(user.DepartmentDevelopment),
			Password:   seedPassword,
		},
		role: user.RoleEmployee,
	},
}

// seedDatabase is idempotent: existing users are kept and the employee's
// shifts are only created when the employee has none.
func seedDatabase(ctx context.Context, db *gorm.DB, opts seedOptions, lg *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Clear {
		if err := clearSeedData(ctx, db); err != nil {
			return err
		}
		lg.Info("cleared existing shifts, sessions and users")
	}

	userRepo := userPostgres.NewUserRepository(db)
	if err := userRepo.EnsureRoles(ctx, user.RoleAdmin, user.RoleEmployee); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	users := user.NewService(userRepo, opts.BCryptCost, lg)
	var employeeID string
	for _, su := range seedUsers {
		u, err := ensureSeedUser(ctx, users, userRepo, su)
		if err != nil {
			return err
		}
		if su.role == user.RoleEmployee {
			employeeID = u.ID
		}
	}

	shiftRepo := shiftPostgres.NewShiftRepository(db)
	existing, err := shiftRepo.CountByUser(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to count seeded shifts: %w", err)
	}
	if existing > 0 {
		lg.Info("employee already has shifts; skipping", "count", existing)
		return nil
	}

	shifts := shift.NewService(shiftRepo, nil, lg)
	for _, dto := range seedShifts() {
		if _, err := shifts.AddShift(ctx, employeeID, dto); err != nil {
			return fmt.Errorf("failed to seed shift: %w", err)
		}
	}
	lg.Info("seeded shifts", "count", seedShiftCount, "user", "gramsay@example.com")
	return nil
}

func ensureSeedUser(ctx context.Context, users *user.Service, repo *userPostgres.UserRepository, su seedUser) (*user.User, error) {
	u, err := users.FindByEmail(ctx, su.dto.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up %s: %w", su.dto.Email, err)
	}

	hash, err := users.HashPassword(su.dto.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	u = &user.User{
		ID:           uuid.NewString(),
		FirstName:    su.dto.FirstName,
		LastName:     su.dto.LastName,
		Email:        user.NormalizeEmail(su.dto.Email),
		Department:   user.Department(su.dto.Department),
		PasswordHash: hash,
		Roles:        []string{su.role},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, u, u.Roles); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", su.dto.Email, err)
	}
	return u, nil
}

// seedShifts are 07:30-15:30 UTC on consecutive days from 2026-01-10.
func seedShifts() []shift.CreateShiftDTO {
	first := time.Date(2026, time.January, 10, 7, 30, 0, 0, time.UTC)
	out := make([]shift.CreateShiftDTO, seedShiftCount)
	for i := range out {
		start := first.AddDate(0, 0, i)
		end := start.Add(8 * time.Hour)
		out[i] = shift.CreateShiftDTO{ShiftStart: &start, ShiftEnd: &end}
	}
	return out
}

func clearSeedData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&shiftDatamodel.Shift{},
			&sessionDatamodel.Session{},
			&userDatamodel.UserRole{},
			&userDatamodel.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}
		return nil
	})
}
