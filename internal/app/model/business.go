package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray stores a JSON-encoded string slice so the same column type
// works on PostgreSQL and the SQLite test database.
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if str, isStr := value.(string); isStr {
			bytes = []byte(str)
		} else {
			return errors.New("failed to scan StringArray")
		}
	}

	return json.Unmarshal(bytes, s)
}

// BusinessStatus is the publication lifecycle of a listing.
type BusinessStatus string

const (
	BusinessStatusDraft     BusinessStatus = "draft"     // being edited by the supplier, not submitted
	BusinessStatusPending   BusinessStatus = "pending"   // submitted, waiting for admin approval
	BusinessStatusActive    BusinessStatus = "active"    // publicly visible
	BusinessStatusSuspended BusinessStatus = "suspended" // hidden by an admin, reversible
	BusinessStatusArchived  BusinessStatus = "archived"  // soft-deleted, terminal
)

// VerificationStatus is the ownership-verification dimension, independent of
// the publication status.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type Business struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"` // supplier who owns the listing
	User        User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	Name        string      `gorm:"not null" json:"name"`
	Slug        string      `gorm:"uniqueIndex" json:"slug"` // URL identifier, generated in BeforeCreate
	Description string      `gorm:"type:text" json:"description"`
	Category    string      `gorm:"index" json:"category"`
	Tags        StringArray `gorm:"type:text" json:"tags,omitempty"`
	City        string      `gorm:"index;not null" json:"city"`
	Suburb      string      `gorm:"index" json:"suburb"`
	Address     string      `gorm:"type:text" json:"address"`
	Latitude    *float64    `gorm:"type:decimal(10,8)" json:"latitude"`  // WGS84
	Longitude   *float64    `gorm:"type:decimal(11,8)" json:"longitude"` // WGS84
	PhoneNumber string      `gorm:"type:varchar(30)" json:"phone_number"`
	Website     string      `json:"website"`
	OpenTime    string      `gorm:"type:varchar(10)" json:"open_time"`  // e.g. "09:00"
	CloseTime   string      `gorm:"type:varchar(10)" json:"close_time"` // e.g. "17:30"

	Status          BusinessStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"` // set when approval is declined
	PublishedAt     *time.Time     `json:"published_at,omitempty"`                      // stamped on first activation
	ArchivedAt      *time.Time     `json:"archived_at,omitempty"`

	// Ownership verification. VerifiedAt is only ever set together with
	// VerificationStatus = approved.
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);default:'pending';index" json:"verification_status"`
	VerificationReason string             `gorm:"type:text" json:"verification_reason,omitempty"` // reviewer notes on rejection
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`

	Media                []MediaAsset          `gorm:"foreignKey:BusinessID" json:"media,omitempty"`
	VerificationRequests []VerificationRequest `gorm:"foreignKey:BusinessID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Business) TableName() string {
	return "businesses"
}

// HasLocation reports whether the listing carries usable coordinates.
func (b *Business) HasLocation() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// VisibleTo implements the visibility rule: only active listings are public,
// everything else is restricted to the owner and admins.
func (b *Business) VisibleTo(viewerID *uint, isAdmin bool) bool {
	if b.Status == BusinessStatusActive {
		return true
	}
	if isAdmin {
		return true
	}
	return viewerID != nil && *viewerID == b.UserID
}

// generateSlug builds the URL identifier from the city and business name.
func generateSlug(city, name string) string {
	slug := fmt.Sprintf("%s-%s", city, name)

	reg := regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slug = reg.ReplaceAllString(slug, "-")

	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	slug = strings.Trim(slug, "-")
	slug = strings.ToLower(slug)

	return slug
}

// BeforeCreate assigns a unique slug when none was provided.
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.Slug == "" {
		baseSlug := generateSlug(b.City, b.Name)
		slug := baseSlug

		counter := 1
		for {
			var count int64
			if err := tx.Model(&Business{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				break
			}

			counter++
			slug = fmt.Sprintf("%s-%d", baseSlug, counter)
		}

		b.Slug = slug
	}
	return nil
}
