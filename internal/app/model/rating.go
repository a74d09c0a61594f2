package model

import (
	"time"

	"gorm.io/gorm"
)

// Rating is one user's score for one business. The (business, user) pair is
// unique; writes go through an upsert so a second submission replaces the
// first instead of duplicating it.
type Rating struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	BusinessID uint     `gorm:"not null;index:idx_business_user_rating,unique" json:"business_id"`
	Business   Business `gorm:"foreignKey:BusinessID" json:"-"`
	UserID     uint     `gorm:"not null;index:idx_business_user_rating,unique" json:"user_id"`
	User       User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Score   int    `gorm:"not null" json:"score"` // 1-5
	Comment string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Rating) TableName() string {
	return "ratings"
}
