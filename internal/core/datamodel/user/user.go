package user

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Department   string    `gorm:"column:department;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// UserRole assigns a role; ID order is assignment order.
type UserRole struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;index"`
	RoleID    int64     `gorm:"column:role_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
