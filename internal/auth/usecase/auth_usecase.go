// Package usecase implements the authentication state machine: login with an
// optional second factor, logout, password reset and invitations.
package usecase

import (
	"context"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/auth/domain"
	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	identityDomain "github.com/allisson/notehub/internal/identity/domain"
	"github.com/allisson/notehub/internal/identity/service"
	identityUsecase "github.com/allisson/notehub/internal/identity/usecase"
	sessionDomain "github.com/allisson/notehub/internal/session/domain"
	sessionUsecase "github.com/allisson/notehub/internal/session/usecase"
	tokenDomain "github.com/allisson/notehub/internal/token/domain"
	tokenUsecase "github.com/allisson/notehub/internal/token/usecase"
	appValidation "github.com/allisson/notehub/internal/validation"
)

// RegisterInput contains the input data for registration through the auth
// surface. InviteToken is optional; when present it is redeemed atomically
// with the identity creation.
type RegisterInput struct {
	Handle      string `json:"handle"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	InviteToken string `json:"invite_token"`
}

// InvitationInput contains the input data for creating an invitation.
type InvitationInput struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Invitation pairs an issued invite token with its plaintext for delivery.
type Invitation struct {
	Token      *tokenDomain.VerificationToken
	PlainToken string
}

// UseCase defines the interface for authentication business logic operations.
type UseCase interface {
	Login(ctx context.Context, handle, password string) (*domain.LoginOutput, error)
	VerifySecondFactor(ctx context.Context, pendingToken, code string) (*domain.LoginOutput, error)
	Logout(ctx context.Context, plainToken string) error
	RequestPasswordReset(ctx context.Context, handle string) (*domain.ResetRequestOutput, error)
	VerifyResetSecondFactor(ctx context.Context, pendingToken, code string) (*domain.ResetRequestOutput, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	Register(ctx context.Context, input RegisterInput) (*domain.LoginOutput, error)
	CreateInvitation(ctx context.Context, inviterID uuid.UUID, input InvitationInput) (*Invitation, error)
	ListInvitations(ctx context.Context, inviterID uuid.UUID, offset, limit int) ([]*tokenDomain.VerificationToken, error)
}

// AuthUseCase orchestrates identities, sessions and verification tokens.
type AuthUseCase struct {
	txManager     database.TxManager
	identityUC    identityUsecase.UseCase
	sessionUC     sessionUsecase.UseCase
	tokenUC       tokenUsecase.UseCase
	credentialSvc service.CredentialService
	totpSvc       service.TotpService
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(
	txManager database.TxManager,
	identityUC identityUsecase.UseCase,
	sessionUC sessionUsecase.UseCase,
	tokenUC tokenUsecase.UseCase,
	credentialSvc service.CredentialService,
	totpSvc service.TotpService,
) *AuthUseCase {
	return &AuthUseCase{
		txManager:     txManager,
		identityUC:    identityUC,
		sessionUC:     sessionUC,
		tokenUC:       tokenUC,
		credentialSvc: credentialSvc,
		totpSvc:       totpSvc,
	}
}

// Login authenticates a handle/password pair. With a second factor enrolled
// the caller gets a pending session and must verify a code; otherwise a
// fully authenticated session is issued directly. Unknown handle and wrong
// password produce the same error, and the unknown-handle path burns a dummy
// hash verification so the two are indistinguishable in timing.
func (uc *AuthUseCase) Login(ctx context.Context, handle, password string) (*domain.LoginOutput, error) {
	identity, err := uc.identityUC.GetByHandle(ctx, handle)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			uc.credentialSvc.DummyVerify()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.credentialSvc.VerifyPassword(password, identity.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if identity.SecondFactorEnrolled() {
		created, err := uc.sessionUC.Create(ctx, identity.ID, sessionDomain.StatePendingLogin)
		if err != nil {
			return nil, err
		}
		return &domain.LoginOutput{
			Status:       domain.StatusSecondFactorRequired,
			SessionToken: created.PlainToken,
			Session:      created.Session,
		}, nil
	}

	return uc.finishLogin(ctx, identity.ID)
}

// finishLogin issues an authenticated session and stamps the identity's
// last authentication instant.
func (uc *AuthUseCase) finishLogin(ctx context.Context, identityID uuid.UUID) (*domain.LoginOutput, error) {
	created, err := uc.sessionUC.Create(ctx, identityID, sessionDomain.StateAuthenticated)
	if err != nil {
		return nil, err
	}

	if err := uc.identityUC.RecordAuthentication(ctx, identityID); err != nil {
		return nil, err
	}

	return &domain.LoginOutput{
		Status:       domain.StatusOK,
		SessionToken: created.PlainToken,
		Session:      created.Session,
	}, nil
}

// VerifySecondFactor completes a pending login. Only sessions in the
// pending-login state are accepted; promotion rotates the session
// identifier so the pending token is dead afterwards.
func (uc *AuthUseCase) VerifySecondFactor(ctx context.Context, pendingToken, code string) (*domain.LoginOutput, error) {
	session, err := uc.sessionUC.GetWithState(ctx, pendingToken, sessionDomain.StatePendingLogin)
	if err != nil {
		return nil, domain.ErrNoPendingLogin
	}

	identity, err := uc.identityUC.GetByID(ctx, session.IdentityID)
	if err != nil {
		return nil, err
	}

	if !identity.SecondFactorEnrolled() || !uc.totpSvc.VerifyCode(identity.TotpSecret, code) {
		return nil, identityDomain.ErrInvalidSecondFactorCode
	}

	promoted, err := uc.sessionUC.Promote(ctx, pendingToken, sessionDomain.StatePendingLogin)
	if err != nil {
		return nil, err
	}

	if err := uc.identityUC.RecordAuthentication(ctx, identity.ID); err != nil {
		return nil, err
	}

	return &domain.LoginOutput{
		Status:       domain.StatusOK,
		SessionToken: promoted.PlainToken,
		Session:      promoted.Session,
	}, nil
}

// Logout destroys the session unconditionally. A missing or expired session
// is not an error: the desired end state already holds.
func (uc *AuthUseCase) Logout(ctx context.Context, plainToken string) error {
	session, err := uc.sessionUC.Get(ctx, plainToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			return nil
		}
		return err
	}
	return uc.sessionUC.Destroy(ctx, session.ID)
}

// RequestPasswordReset starts the reset flow. An unknown handle yields the
// same issued-shape result as a successful request so handles cannot be
// probed. With a second factor enrolled the token is withheld behind a
// pending-reset session.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, handle string) (*domain.ResetRequestOutput, error) {
	identity, err := uc.identityUC.GetByHandle(ctx, handle)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return &domain.ResetRequestOutput{Status: domain.StatusResetIssued}, nil
		}
		return nil, err
	}

	if identity.SecondFactorEnrolled() {
		created, err := uc.sessionUC.Create(ctx, identity.ID, sessionDomain.StatePendingReset)
		if err != nil {
			return nil, err
		}
		return &domain.ResetRequestOutput{
			Status:       domain.StatusSecondFactorRequired,
			SessionToken: created.PlainToken,
		}, nil
	}

	issued, err := uc.tokenUC.Issue(ctx, tokenDomain.PurposeReset, identity.ID, tokenUsecase.IssueInput{})
	if err != nil {
		return nil, err
	}

	return &domain.ResetRequestOutput{
		Status:     domain.StatusResetIssued,
		ResetToken: issued.PlainToken,
	}, nil
}

// VerifyResetSecondFactor completes the reset gate. Only sessions in the
// pending-reset state are accepted; success destroys the pending session
// and issues the reset token.
func (uc *AuthUseCase) VerifyResetSecondFactor(ctx context.Context, pendingToken, code string) (*domain.ResetRequestOutput, error) {
	session, err := uc.sessionUC.GetWithState(ctx, pendingToken, sessionDomain.StatePendingReset)
	if err != nil {
		return nil, domain.ErrNoPendingReset
	}

	identity, err := uc.identityUC.GetByID(ctx, session.IdentityID)
	if err != nil {
		return nil, err
	}

	if !identity.SecondFactorEnrolled() || !uc.totpSvc.VerifyCode(identity.TotpSecret, code) {
		return nil, identityDomain.ErrInvalidSecondFactorCode
	}

	if err := uc.sessionUC.Destroy(ctx, session.ID); err != nil {
		return nil, err
	}

	issued, err := uc.tokenUC.Issue(ctx, tokenDomain.PurposeReset, identity.ID, tokenUsecase.IssueInput{})
	if err != nil {
		return nil, err
	}

	return &domain.ResetRequestOutput{
		Status:     domain.StatusResetIssued,
		ResetToken: issued.PlainToken,
	}, nil
}

// ResetPassword redeems the reset token and replaces the password in one
// transaction. All outstanding sessions of the identity are revoked so a
// leaked session does not survive the reset.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if err := appValidation.WrapValidationError(
		validation.Validate(newPassword,
			validation.Required.Error("password is required"),
			appValidation.Password,
		),
	); err != nil {
		return err
	}

	token, err := uc.tokenUC.Validate(ctx, resetToken, tokenDomain.PurposeReset)
	if err != nil {
		return err
	}

	return uc.tokenUC.Redeem(ctx, resetToken, tokenDomain.PurposeReset, token.OwnerID,
		func(ctx context.Context, token *tokenDomain.VerificationToken) error {
			if err := uc.identityUC.SetPassword(ctx, token.OwnerID, newPassword); err != nil {
				return err
			}
			return uc.sessionUC.DestroyByIdentity(ctx, token.OwnerID)
		})
}

// Register creates a new identity, optionally redeeming an invite token in
// the same transaction. Handle uniqueness is left to the storage unique
// constraint so concurrent registrations resolve to exactly one winner.
// Success logs the new identity straight in.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*domain.LoginOutput, error) {
	registerInput := identityUsecase.RegisterInput{
		Handle:   input.Handle,
		Password: input.Password,
		Email:    input.Email,
	}

	var identity *identityDomain.Identity

	if input.InviteToken != "" {
		// The new identity's ID is minted up front so the invite can record
		// its redeemer inside the same transaction.
		registerInput.ID = uuid.Must(uuid.NewV7())
		err := uc.tokenUC.Redeem(ctx, input.InviteToken, tokenDomain.PurposeInvite, registerInput.ID,
			func(ctx context.Context, token *tokenDomain.VerificationToken) error {
				created, err := uc.identityUC.Register(ctx, registerInput)
				if err != nil {
					return err
				}
				identity = created
				return nil
			})
		if err != nil {
			return nil, err
		}
	} else {
		created, err := uc.identityUC.Register(ctx, registerInput)
		if err != nil {
			return nil, err
		}
		identity = created
	}

	return uc.finishLogin(ctx, identity.ID)
}

// CreateInvitation issues an invite token on behalf of the inviter. The
// plaintext is surfaced once for out-of-band delivery.
func (uc *AuthUseCase) CreateInvitation(
	ctx context.Context,
	inviterID uuid.UUID,
	input InvitationInput,
) (*Invitation, error) {
	err := appValidation.WrapValidationError(
		validation.Validate(input.Email,
			validation.Required.Error("email is required"),
			appValidation.Email,
		),
	)
	if err != nil {
		return nil, err
	}

	issued, err := uc.tokenUC.Issue(ctx, tokenDomain.PurposeInvite, inviterID, tokenUsecase.IssueInput{
		Email:   input.Email,
		Message: input.Message,
	})
	if err != nil {
		return nil, err
	}

	return &Invitation{Token: issued.Token, PlainToken: issued.PlainToken}, nil
}

// ListInvitations retrieves the inviter's invite tokens, newest first.
func (uc *AuthUseCase) ListInvitations(
	ctx context.Context,
	inviterID uuid.UUID,
	offset, limit int,
) ([]*tokenDomain.VerificationToken, error) {
	return uc.tokenUC.ListByOwner(ctx, inviterID, tokenDomain.PurposeInvite, offset, limit)
}
