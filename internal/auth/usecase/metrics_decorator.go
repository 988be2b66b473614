package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/auth/domain"
	"github.com/allisson/notehub/internal/metrics"
	tokenDomain "github.com/allisson/notehub/internal/token/domain"
)

// authUseCaseWithMetrics decorates the auth use case with metrics
// instrumentation.
type authUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an auth use case with metrics recording.
func NewAuthUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *authUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", operation, status)
	a.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// Login records metrics for login attempts.
func (a *authUseCaseWithMetrics) Login(ctx context.Context, handle, password string) (*domain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, handle, password)
	a.record(ctx, "login", start, err)
	return output, err
}

// VerifySecondFactor records metrics for second factor verification.
func (a *authUseCaseWithMetrics) VerifySecondFactor(ctx context.Context, pendingToken, code string) (*domain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.VerifySecondFactor(ctx, pendingToken, code)
	a.record(ctx, "verify_second_factor", start, err)
	return output, err
}

// Logout records metrics for logout operations.
func (a *authUseCaseWithMetrics) Logout(ctx context.Context, plainToken string) error {
	start := time.Now()
	err := a.next.Logout(ctx, plainToken)
	a.record(ctx, "logout", start, err)
	return err
}

// RequestPasswordReset records metrics for reset requests.
func (a *authUseCaseWithMetrics) RequestPasswordReset(ctx context.Context, handle string) (*domain.ResetRequestOutput, error) {
	start := time.Now()
	output, err := a.next.RequestPasswordReset(ctx, handle)
	a.record(ctx, "request_password_reset", start, err)
	return output, err
}

// VerifyResetSecondFactor records metrics for reset second factor
// verification.
func (a *authUseCaseWithMetrics) VerifyResetSecondFactor(ctx context.Context, pendingToken, code string) (*domain.ResetRequestOutput, error) {
	start := time.Now()
	output, err := a.next.VerifyResetSecondFactor(ctx, pendingToken, code)
	a.record(ctx, "verify_reset_second_factor", start, err)
	return output, err
}

// ResetPassword records metrics for password resets.
func (a *authUseCaseWithMetrics) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	start := time.Now()
	err := a.next.ResetPassword(ctx, resetToken, newPassword)
	a.record(ctx, "reset_password", start, err)
	return err
}

// Register records metrics for registrations.
func (a *authUseCaseWithMetrics) Register(ctx context.Context, input RegisterInput) (*domain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.Register(ctx, input)
	a.record(ctx, "register", start, err)
	return output, err
}

// CreateInvitation records metrics for invitation creation.
func (a *authUseCaseWithMetrics) CreateInvitation(ctx context.Context, inviterID uuid.UUID, input InvitationInput) (*Invitation, error) {
	start := time.Now()
	invitation, err := a.next.CreateInvitation(ctx, inviterID, input)
	a.record(ctx, "create_invitation", start, err)
	return invitation, err
}

// ListInvitations records metrics for invitation listings.
func (a *authUseCaseWithMetrics) ListInvitations(ctx context.Context, inviterID uuid.UUID, offset, limit int) ([]*tokenDomain.VerificationToken, error) {
	start := time.Now()
	tokens, err := a.next.ListInvitations(ctx, inviterID, offset, limit)
	a.record(ctx, "list_invitations", start, err)
	return tokens, err
}
