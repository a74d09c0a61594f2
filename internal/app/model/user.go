package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser     UserRole = "user"     // consumer account
	RoleSupplier UserRole = "supplier" // owns one or more business listings
	RoleAdmin    UserRole = "admin"    // moderates listings and verification claims
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`
	PhotoURL     string         `json:"photo_url"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Businesses []Business `gorm:"foreignKey:UserID" json:"businesses,omitempty"` // owned listings (suppliers)
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
