package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApplicationData is the contact information captured when a company applies
// through the public form.
type ApplicationData struct {
	ContactName string    `json:"contactName"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	AppliedAt   time.Time `json:"appliedAt"`
}

// Company is a brand that can be thanked. Unapproved companies are hidden
// from every public listing.
type Company struct {
	ID              uint                                 `gorm:"primaryKey" json:"id"`
	Name            string                               `gorm:"size:100;not null;index" json:"name"`
	Slug            string                               `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	LogoURL         string                               `json:"logoUrl"`
	Category        string                               `gorm:"size:50;not null" json:"category"`
	IsApproved      bool                                 `gorm:"default:false;not null;index" json:"isApproved"`
	ApplicationData *datatypes.JSONType[ApplicationData] `json:"applicationData,omitempty"`
	CreatedAt       time.Time                            `json:"createdAt"`
	UpdatedAt       time.Time                            `json:"updatedAt"`
}

// CompanySummary is embedded in feed items.
type CompanySummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	LogoURL string `json:"logoUrl"`
}

func (c *Company) Summary() *CompanySummary {
	if c == nil || c.ID == 0 {
		return nil
	}
	return &CompanySummary{ID: c.ID, Name: c.Name, Slug: c.Slug, LogoURL: c.LogoURL}
}

// CompanyStats are the aggregate numbers shown on a company page.
type CompanyStats struct {
	TotalThanks  int64 `json:"totalThanks"`
	RecentThanks int64 `json:"recentThanks"`
}

// CompanyDetail is a company with its stats.
type CompanyDetail struct {
	Company
	Stats CompanyStats `json:"stats"`
}
