// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	Name         string `json:"name" gorm:"size:100"`
	Role         Role   `json:"role" gorm:"type:varchar(20);not null;index"`
	PhotoURL     string `json:"photo_url,omitempty" gorm:"size:500"`

	// Relationships
	Candidate *Candidate `json:"candidate,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Candidate is the applicant profile. Seeded profiles may exist without a
// login, so UserID is optional.
type Candidate struct {
	BaseModel
	UserID       *uint  `json:"user_id,omitempty" gorm:"uniqueIndex"`
	FullName     string `json:"full_name" gorm:"size:200;not null"`
	Email        string `json:"email" gorm:"size:255;index"`
	Phone        string `json:"phone,omitempty" gorm:"size:50"`
	ResumeURL    string `json:"resume_url,omitempty" gorm:"size:500"`
	LinkedinURL  string `json:"linkedin_url,omitempty" gorm:"size:500"`
	PortfolioURL string `json:"portfolio_url,omitempty" gorm:"size:500"`
	PhotoURL     string `json:"photo_url,omitempty" gorm:"size:500"`
}
