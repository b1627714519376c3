package user

import (
	"time"
)

// User represents a user entity in the system.
type User struct {
	ID           string `gorm:"primaryKey;type:text"`
	Username     string `gorm:"not null;size:50"`
	Email        string `gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string `gorm:"not null;type:text"`
	Role         Role   `gorm:"not null;type:text;default:USER"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Actor is the authenticated identity behind a request.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Claims represents JWT claims.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Actor returns the request actor described by the claims.
func (c Claims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	ExpiresIn int64  `json:"expiresIn"`
}
