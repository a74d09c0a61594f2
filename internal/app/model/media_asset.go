package model

import (
	"time"

	"gorm.io/gorm"
)

type MediaType string

const (
	MediaTypeLogo  MediaType = "logo"
	MediaTypePhoto MediaType = "photo"
)

// Per-business media limits, enforced at record-save time rather than by the
// database schema.
const (
	MaxLogosPerBusiness  = 1
	MaxPhotosPerBusiness = 3
)

// MediaAsset is the database record for an object already uploaded to the
// storage gateway. The record, not the object, is the source of truth for
// whether a piece of media exists.
type MediaAsset struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	BusinessID uint     `gorm:"not null;index" json:"business_id"`
	Business   Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	MediaType    MediaType `gorm:"type:varchar(10);not null;index" json:"media_type"`
	StoragePath  string    `gorm:"uniqueIndex;not null" json:"storage_path"` // opaque object key
	FileName     string    `gorm:"not null" json:"file_name"`
	ContentType  string    `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}

// OrphanedObject records a storage key whose database record is gone but
// whose best-effort storage delete failed. The sweep job retries these.
type OrphanedObject struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	StoragePath string    `gorm:"uniqueIndex;not null" json:"storage_path"`
	LastError   string    `gorm:"type:text" json:"last_error"`
	Attempts    int       `gorm:"default:0" json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (OrphanedObject) TableName() string {
	return "orphaned_objects"
}
