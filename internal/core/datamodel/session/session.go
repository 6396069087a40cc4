package session

import "time"

// Session is the refresh_sessions row. Seq is assigned by the database
// and defines creation order.
type Session struct {
	Seq         int64      `gorm:"column:seq;primaryKey;autoIncrement"`
	ID          string     `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	UserID      string     `gorm:"column:user_id;not null;index"`
	JTI         string     `gorm:"column:jti;not null"`
	TokenSecret string     `gorm:"column:token_secret;not null;uniqueIndex"`
	IssuedAt    time.Time  `gorm:"column:issued_at;not null"`
	ExpiresAt   time.Time  `gorm:"column:expires_at;not null"`
	Revoked     bool       `gorm:"column:revoked;not null;default:false"`
	RevokedAt   *time.Time `gorm:"column:revoked_at"`
}

func (Session) TableName() string {
	return "refresh_sessions"
}
