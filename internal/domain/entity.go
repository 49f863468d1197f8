package domain

import (
	"fmt"
	"time"
)

// EntityRecord is a row read from the structured store, before scoring.
type EntityRecord struct {
	ID               string
	Type             ResultType
	Title            string
	Description      string
	Region           string
	OrganizationID   string
	OrganizationName string
	Category         string
	Role             string
	EvidenceLevel    string
	ImageURL         string
	Tags             []string
	ElderApproved    bool
	CreatedAt        time.Time
}

// NewEntityRecord creates a new EntityRecord instance
func NewEntityRecord(id string, t ResultType, title, description string, createdAt time.Time) *EntityRecord {
	return &EntityRecord{
		ID:          id,
		Type:        t,
		Title:       title,
		Description: description,
		CreatedAt:   createdAt,
	}
}

// ValidateEntityRecord validates an EntityRecord instance
func ValidateEntityRecord(e *EntityRecord) error {
	if e == nil {
		return fmt.Errorf("entity record cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("entity record ID is required")
	}

	if e.Title == "" {
		return fmt.Errorf("entity record Title is required")
	}

	if !e.Type.Valid() {
		return fmt.Errorf("entity record Type is invalid: %s", e.Type)
	}

	return nil
}

// Metadata builds the metadata bag for the record.
func (e *EntityRecord) Metadata() Metadata {
	m := Metadata{}
	m.Set(MetaRegion, e.Region).
		Set(MetaOrganizationID, e.OrganizationID).
		Set(MetaOrganizationName, e.OrganizationName).
		Set(MetaCategory, e.Category).
		Set(MetaRole, e.Role).
		Set(MetaEvidenceLevel, e.EvidenceLevel).
		Set(MetaImageURL, e.ImageURL).
		Set(MetaTags, e.Tags).
		Set(MetaCreatedAt, e.CreatedAt)
	if e.ElderApproved {
		m[MetaElderApproved] = true
	}
	return m
}
