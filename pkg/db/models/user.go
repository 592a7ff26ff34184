package models

import (
	"time"

	"github.com/google/uuid"
)

// User is reference data: sales and customers record who created them.
// There is no authentication surface; rows are provisioned out of band.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"column:email;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         string    `gorm:"column:role;not null" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
