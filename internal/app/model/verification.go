package model

import (
	"time"

	"gorm.io/gorm"
)

// DocumentType categorizes uploaded verification evidence.
type DocumentType string

const (
	DocumentTypeID                  DocumentType = "id_document"
	DocumentTypeProofOfAddress      DocumentType = "proof_of_address"
	DocumentTypeCompanyRegistration DocumentType = "company_registration"
	DocumentTypeOwnershipAffidavit  DocumentType = "ownership_affidavit"
	DocumentTypeOther               DocumentType = "other"
)

// VerificationRequest is one ownership-verification claim for a business.
// It is reviewed exactly once; a rejected business files a new request after
// remediation rather than reopening the old one.
type VerificationRequest struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	BusinessID uint     `gorm:"not null;index" json:"business_id"`
	Business   Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Status      VerificationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Notes       string             `gorm:"type:text" json:"notes,omitempty"`        // submitter's note to the reviewer
	ReviewNotes string             `gorm:"type:text" json:"review_notes,omitempty"` // reviewer's decision notes
	SubmittedAt time.Time          `json:"submitted_at"`
	ReviewedBy  *uint              `json:"reviewed_by,omitempty"` // admin user ID
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`

	Documents []VerificationDocument `gorm:"foreignKey:RequestID" json:"documents,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (VerificationRequest) TableName() string {
	return "verification_requests"
}

// IsReviewed reports whether the request has already been decided.
func (r *VerificationRequest) IsReviewed() bool {
	return r.Status != VerificationPending
}

// VerificationDocument is one evidence file attached to a request. Documents
// are mutable only while the owning request is pending.
type VerificationDocument struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	RequestID uint                `gorm:"not null;index" json:"request_id"`
	Request   VerificationRequest `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	DocumentType DocumentType `gorm:"type:varchar(30);not null" json:"document_type"`
	StoragePath  string       `gorm:"uniqueIndex;not null" json:"storage_path"`
	FileName     string       `gorm:"not null" json:"file_name"`
	ContentType  string       `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes    int64        `json:"size_bytes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (VerificationDocument) TableName() string {
	return "verification_documents"
}
