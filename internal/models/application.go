// internal/models/application.go
package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrHistoryImmutable is returned by the status history hooks when anything
// tries to rewrite or remove an audit entry.
var ErrHistoryImmutable = errors.New("status history entries are append-only")

type Application struct {
	BaseModel
	JobID           uint              `json:"job_id" gorm:"not null;uniqueIndex:idx_applications_job_candidate"`
	CandidateID     uint              `json:"candidate_id" gorm:"not null;uniqueIndex:idx_applications_job_candidate;index"`
	ApplicantUserID uint              `json:"applicant_user_id" gorm:"not null;index"`
	Status          ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:'APPLIED';index"`
	Reason          *string           `json:"reason,omitempty" gorm:"type:text"`
	AssigneeID      *uint             `json:"assignee_id,omitempty" gorm:"index"`

	// Relationships
	Job       *Job       `json:"job,omitempty" gorm:"foreignKey:JobID"`
	Candidate *Candidate `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
}

type StatusHistory struct {
	ID            uint               `json:"id" gorm:"primaryKey;autoIncrement"`
	ApplicationID uint               `json:"application_id" gorm:"not null;index"`
	FromStatus    *ApplicationStatus `json:"from_status" gorm:"type:varchar(20)"`
	ToStatus      ApplicationStatus  `json:"to_status" gorm:"type:varchar(20);not null"`
	ChangedByID   uint               `json:"changed_by_id" gorm:"not null;index"`
	Reason        *string            `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt     time.Time          `json:"created_at" gorm:"index"`

	Application *Application `json:"-" gorm:"foreignKey:ApplicationID;constraint:OnDelete:RESTRICT"`
}

func (h *StatusHistory) BeforeUpdate(tx *gorm.DB) error {
	return ErrHistoryImmutable
}

func (h *StatusHistory) BeforeDelete(tx *gorm.DB) error {
	return ErrHistoryImmutable
}

// ErrBrokenChain means an audit chain does not link from creation to its
// last entry.
var ErrBrokenChain = errors.New("status history chain is broken")

// ReplayStatus folds an ordered audit chain into the status it implies. The
// first entry must be the creation event and every later entry must start
// where the previous one ended.
func ReplayStatus(entries []StatusHistory) (ApplicationStatus, error) {
	var current ApplicationStatus
	for i, entry := range entries {
		switch {
		case i == 0 && entry.FromStatus != nil:
			return "", ErrBrokenChain
		case i > 0 && (entry.FromStatus == nil || *entry.FromStatus != current):
			return "", ErrBrokenChain
		}
		current = entry.ToStatus
	}
	if current == "" {
		return "", ErrBrokenChain
	}
	return current, nil
}
