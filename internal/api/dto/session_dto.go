package dto

import "github.com/portal-qssma/portal-service/internal/domain"

// CollaboratorLoginRequest payload for badge-number login.
type CollaboratorLoginRequest struct {
	BadgeNumber string `json:"badge_number"`
}

// ManagerLoginRequest payload for credential login.
type ManagerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse is the resident profile as exposed to the UI layer.
type ProfileResponse struct {
	Role        string `json:"role"`
	BadgeNumber string `json:"badge_number,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	JobTitle    string `json:"job_title"`
	Department  string `json:"department"`
}

// FromProfile maps a domain profile into its response shape.
func FromProfile(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		Role:        string(p.Role),
		BadgeNumber: p.BadgeNumber,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		JobTitle:    p.JobTitle,
		Department:  p.Department,
	}
}
