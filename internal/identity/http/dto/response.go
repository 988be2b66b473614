package dto

import (
	"time"

	identityDomain "github.com/allisson/notehub/internal/identity/domain"
	identityUsecase "github.com/allisson/notehub/internal/identity/usecase"
)

// ProfileResponse describes the caller's own profile. The password hash and
// TOTP secret never leave the server.
type ProfileResponse struct {
	ID                  string     `json:"id"`
	Handle              string     `json:"handle"`
	Bio                 string     `json:"bio,omitempty"`
	Email               string     `json:"email,omitempty"`
	Theme               string     `json:"theme"`
	SecondFactorEnabled bool       `json:"second_factor_enabled"`
	CreatedAt           time.Time  `json:"created_at"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
}

// MapIdentityToProfileResponse converts an identity to its profile response.
func MapIdentityToProfileResponse(identity *identityDomain.Identity) ProfileResponse {
	return ProfileResponse{
		ID:                  identity.ID.String(),
		Handle:              identity.Handle,
		Bio:                 identity.Bio,
		Email:               identity.Email,
		Theme:               identity.Theme,
		SecondFactorEnabled: identity.SecondFactorEnrolled(),
		CreatedAt:           identity.CreatedAt,
		LastAuthenticatedAt: identity.LastAuthenticatedAt,
	}
}

// StatsResponse aggregates the caller's dashboard counters.
type StatsResponse struct {
	Notes        int64 `json:"notes"`
	Tasks        int64 `json:"tasks"`
	SharedWithMe int64 `json:"shared_with_me"`
}

// MapStatsToResponse converts profile stats to their response.
func MapStatsToResponse(stats *identityUsecase.ProfileStats) StatsResponse {
	return StatsResponse{
		Notes:        stats.Notes,
		Tasks:        stats.Tasks,
		SharedWithMe: stats.SharedWithMe,
	}
}

// SecondFactorSetupResponse carries the candidate secret and provisioning
// URI. Nothing is enrolled until the secret is confirmed with a valid code.
type SecondFactorSetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}
