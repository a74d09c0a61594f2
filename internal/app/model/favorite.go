package model

import (
	"time"
)

// Favorite is a (user, business) membership pair. Inserts are idempotent: a
// duplicate add resolves to the existing row.
type Favorite struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_user_business_favorite,unique" json:"user_id"`
	BusinessID uint      `gorm:"not null;index:idx_user_business_favorite,unique" json:"business_id"`
	CreatedAt  time.Time `json:"created_at"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Business Business `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
