// internal/services/transition_policy.go
package services

import (
	"github.com/hirehub/hirehub-backend/internal/models"
)

// transitionTable lists, per reviewer role and current status, the statuses
// that role may move an application to. Anything absent is denied.
var transitionTable = map[models.Role]map[models.ApplicationStatus][]models.ApplicationStatus{
	models.RoleHR: {
		models.StatusApplied:   {models.StatusScreening, models.StatusInterview, models.StatusRejected},
		models.StatusScreening: {models.StatusInterview, models.StatusRejected},
	},
	models.RoleLead: {
		models.StatusInterview: {models.StatusOffer, models.StatusRejected, models.StatusScreening},
	},
}

// IsTransitionAllowed reports whether role may move an application from one
// status to another. Same-status moves are always denied.
func IsTransitionAllowed(role models.Role, from, to models.ApplicationStatus) bool {
	if from == to {
		return false
	}
	for _, allowed := range transitionTable[role][from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses role may move an application at from
// into, in funnel order.
func AllowedTargets(role models.Role, from models.ApplicationStatus) []models.ApplicationStatus {
	var targets []models.ApplicationStatus
	for _, to := range models.AllStatuses {
		if IsTransitionAllowed(role, from, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

// ActionableStatuses returns the statuses from which role can make at least
// one move. It is the default review queue of that role.
func ActionableStatuses(role models.Role) []models.ApplicationStatus {
	var statuses []models.ApplicationStatus
	for _, from := range models.AllStatuses {
		if len(AllowedTargets(role, from)) > 0 {
			statuses = append(statuses, from)
		}
	}
	return statuses
}
