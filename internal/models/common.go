// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SoftDeleteModel is used by records that may be withdrawn from listings while
// rows referencing them must survive.
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role string

const (
	RoleHR        Role = "HR"
	RoleLead      Role = "LEAD"
	RoleCandidate Role = "CANDIDATE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHR, RoleLead, RoleCandidate:
		return true
	}
	return false
}

// IsReviewer reports whether the role may move applications through the pipeline.
func (r Role) IsReviewer() bool {
	return r == RoleHR || r == RoleLead
}

type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "APPLIED"
	StatusScreening ApplicationStatus = "SCREENING"
	StatusInterview ApplicationStatus = "INTERVIEW"
	StatusOffer     ApplicationStatus = "OFFER"
	StatusRejected  ApplicationStatus = "REJECTED"
)

// AllStatuses lists the pipeline statuses in funnel order.
var AllStatuses = []ApplicationStatus{
	StatusApplied,
	StatusScreening,
	StatusInterview,
	StatusOffer,
	StatusRejected,
}

func (s ApplicationStatus) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) Ptr() *ApplicationStatus {
	return &s
}

// Actor is the authenticated caller as resolved from the inbound credential.
type Actor struct {
	ID   uint `json:"id"`
	Role Role `json:"role"`
}
