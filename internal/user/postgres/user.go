package postgres

import (
	"context"
	"errors"
	"fmt"

	userDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/user"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository implements user.Repository using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and its role assignments in one transaction.
// Roles are created on first use.
func (r *UserRepository) Create(ctx context.Context, u *user.User, roles []string) error {
	const op = "user.postgres.Create"

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := user.ToDataModel(u)
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return user.ErrEmailTaken
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		for _, name := range roles {
			role, err := ensureRole(tx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			if err := tx.Create(&userDatamodel.UserRole{UserID: row.ID, RoleID: role.ID}).Error; err != nil {
				return fmt.Errorf("%s: assign role %s: %w", op, name, err)
			}
		}

		u.CreatedAt = row.CreatedAt
		u.UpdatedAt = row.UpdatedAt
		return nil
	})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, "email = ?", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.get(ctx, "id = ?", id)
}

// GetRoles returns role names in assignment order.
func (r *UserRepository) GetRoles(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("user_roles.id ASC").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("user.postgres.GetRoles: %w", err)
	}
	return names, nil
}

// EnsureRoles creates any missing roles.
func (r *UserRepository) EnsureRoles(ctx context.Context, names ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			if _, err := ensureRole(tx, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) get(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("user.postgres.get: %w", err)
	}

	roles, err := r.GetRoles(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return user.FromDataModelWithRoles(&row, roles), nil
}

func ensureRole(tx *gorm.DB, name string) (*userDatamodel.Role, error) {
	role := userDatamodel.Role{Name: name}
	if err := tx.Where(userDatamodel.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, fmt.Errorf("ensure role %s: %w", name, err)
	}
	return &role, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
