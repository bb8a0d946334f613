// Package model contains the GORM persistence models mirroring the database schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// PrincipalModel mirrors the 'principals' table. The users and admins
// collections of the domain are role-scoped views of this table, so the
// UNIQUE constraint on email holds across the union of both. PostgreSQL
// generates the id via gen_random_uuid().
type PrincipalModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName      string    `gorm:"type:varchar(100);not null"`
	Email         string    `gorm:"type:varchar(255);unique;not null"`
	Mobile        string    `gorm:"type:varchar(50);not null"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"`
	Role          string    `gorm:"type:varchar(20);not null;index"`
	PersonalEmail string    `gorm:"type:varchar(255)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (PrincipalModel) TableName() string {
	return "principals"
}
