// internal/models/job.go
package models

import (
	"time"
)

type Job struct {
	SoftDeleteModel
	ExternalID  string     `json:"external_id" gorm:"uniqueIndex;size:255;not null"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Company     string     `json:"company" gorm:"size:255;not null;index"`
	Location    string     `json:"location" gorm:"size:255;not null"`
	Type        string     `json:"type,omitempty" gorm:"size:50"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	URL         string     `json:"url,omitempty" gorm:"size:1000"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Source      string     `json:"source,omitempty" gorm:"size:50"`
	RawJSON     JSONB      `json:"raw_json,omitempty" gorm:"type:jsonb"`

	// Relationships
	Owner *JobOwner `json:"owner,omitempty" gorm:"foreignKey:JobID"`
}

// JobOwner binds a job to the single HR or Lead actor that created it.
type JobOwner struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	JobID     uint      `json:"job_id" gorm:"uniqueIndex;not null"`
	OwnerID   uint      `json:"owner_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}
