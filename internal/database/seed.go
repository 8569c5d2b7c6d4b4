// internal/database/seed.go
package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/models"
)

// SeedSummary reports what Seed created.
type SeedSummary struct {
	UsersCreated int
	JobsCreated  int
	Skipped      bool
}

type demoAccount struct {
	email    string
	password string
	name     string
	role     models.Role
	phone    string
}

var demoAccounts = []demoAccount{
	{email: "lichking@hirehub.local", password: "Frostmourne123!", name: "The Lich King (Arthas)", role: models.RoleLead},
	{email: "farseer@hirehub.local", password: "SpiritWolf123!", name: "Farseer", role: models.RoleHR},
	{email: "footman@hirehub.local", password: "ShieldHold123!", name: "Footman (Human)", role: models.RoleCandidate, phone: "+1-555-HUMAN"},
	{email: "grunt@hirehub.local", password: "ForTheHorde123!", name: "Grunt (Orc)", role: models.RoleCandidate, phone: "+1-555-ORCISH"},
}

var demoJobs = []models.Job{
	{Title: "Backend Engineer (Go)", Company: "Stormwind Labs", Location: "Chicago, US", Type: "FULLTIME", Source: "seed"},
	{Title: "Frontend Developer", Company: "Stormwind Labs", Location: "Remote", Type: "FULLTIME", Source: "seed"},
	{Title: "Site Reliability Engineer", Company: "Orgrimmar Systems", Location: "Chicago, US", Type: "FULLTIME", Source: "seed"},
	{Title: "Data Engineer", Company: "Ironforge Analytics", Location: "Austin, US", Type: "CONTRACTOR", Source: "seed"},
	{Title: "QA Automation Engineer", Company: "Gnomeregan Tech", Location: "Remote", Type: "PARTTIME", Source: "seed"},
}

// Seed creates the demo accounts and a handful of jobs owned by the demo HR
// user. It does nothing once any user exists.
func Seed(ctx context.Context, db *gorm.DB) (*SeedSummary, error) {
	summary := &SeedSummary{}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return nil, err
	}
	if users > 0 {
		summary.Skipped = true
		return summary, nil
	}

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		var hrID uint
		for _, account := range demoAccounts {
			user := &models.User{Email: account.email, Name: account.name, Role: account.role}
			if err := user.SetPassword(account.password); err != nil {
				return err
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			summary.UsersCreated++

			switch account.role {
			case models.RoleHR:
				hrID = user.ID
			case models.RoleCandidate:
				candidate := &models.Candidate{
					UserID:   &user.ID,
					FullName: account.name,
					Email:    account.email,
					Phone:    account.phone,
				}
				if err := tx.Create(candidate).Error; err != nil {
					return err
				}
			}
		}

		for _, tmpl := range demoJobs {
			job := tmpl
			job.ExternalID = "seed-" + uuid.NewString()
			if err := tx.Create(&job).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.JobOwner{JobID: job.ID, OwnerID: hrID}).Error; err != nil {
				return err
			}
			summary.JobsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
