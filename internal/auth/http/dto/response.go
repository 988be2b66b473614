package dto

import (
	"time"

	authDomain "github.com/allisson/notehub/internal/auth/domain"
	authUsecase "github.com/allisson/notehub/internal/auth/usecase"
	tokenDomain "github.com/allisson/notehub/internal/token/domain"
)

// LoginResponse is the result of a login, registration or second factor
// verification. The session token is the bearer plaintext, surfaced once.
type LoginResponse struct {
	Status       string     `json:"status"`
	SessionToken string     `json:"session_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// MapLoginOutputToResponse converts a login outcome to its response.
func MapLoginOutputToResponse(output *authDomain.LoginOutput) LoginResponse {
	response := LoginResponse{
		Status:       string(output.Status),
		SessionToken: output.SessionToken,
	}
	if output.Session != nil {
		expiresAt := output.Session.ExpiresAt
		response.ExpiresAt = &expiresAt
	}
	return response
}

// ResetRequestResponse is the result of a password reset request. The reset
// token itself is never exposed here; delivery happens out of band. The
// session token is only present when a second factor gate was issued.
type ResetRequestResponse struct {
	Status       string `json:"status"`
	SessionToken string `json:"session_token,omitempty"`
}

// MapResetRequestToResponse converts a reset request outcome to its
// response.
func MapResetRequestToResponse(output *authDomain.ResetRequestOutput) ResetRequestResponse {
	return ResetRequestResponse{
		Status:       string(output.Status),
		SessionToken: output.SessionToken,
	}
}

// CreateInvitationResponse carries the issued invitation with its plaintext
// token, surfaced exactly once for out-of-band delivery.
type CreateInvitationResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Message   string    `json:"message,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// MapInvitationToResponse converts an issued invitation to its response.
func MapInvitationToResponse(invitation *authUsecase.Invitation) CreateInvitationResponse {
	return CreateInvitationResponse{
		ID:        invitation.Token.ID.String(),
		Token:     invitation.PlainToken,
		Email:     invitation.Token.Email,
		Message:   invitation.Token.Message,
		ExpiresAt: invitation.Token.ExpiresAt,
		CreatedAt: invitation.Token.CreatedAt,
	}
}

// InvitationResponse describes a previously issued invitation. The token
// plaintext is not recoverable after issuance.
type InvitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Message   string    `json:"message,omitempty"`
	Used      bool      `json:"used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// MapTokenToInvitationResponse converts a stored invite token to its
// response.
func MapTokenToInvitationResponse(token *tokenDomain.VerificationToken) InvitationResponse {
	return InvitationResponse{
		ID:        token.ID.String(),
		Email:     token.Email,
		Message:   token.Message,
		Used:      token.Used,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
}

// ListInvitationsResponse wraps a page of invitations.
type ListInvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
	Offset      int                  `json:"offset"`
	Limit       int                  `json:"limit"`
}
