// Package usecase implements the identity business logic: registration,
// profile management and the second factor lifecycle.
package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/identity/domain"
	"github.com/allisson/notehub/internal/identity/service"
	appValidation "github.com/allisson/notehub/internal/validation"
)

// RegisterInput contains the input data for identity registration. ID is
// optional: callers that need to know the identity's ID before the insert
// (invite redemption records its redeemer in the same transaction) mint it
// up front.
type RegisterInput struct {
	ID       uuid.UUID `json:"-"`
	Handle   string    `json:"handle"`
	Password string    `json:"password"`
	Email    string    `json:"email"`
}

// UpdateProfileInput contains the mutable profile fields. Handle is always
// carried: the profile form submits the current one when it is unchanged.
type UpdateProfileInput struct {
	Handle string `json:"handle"`
	Bio    string `json:"bio"`
	Email  string `json:"email"`
}

// SecondFactorSetup carries the candidate secret surfaced at setup time.
// The secret is not persisted until the owner confirms it with a valid code.
type SecondFactorSetup struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// ProfileStats aggregates dashboard counters for an identity.
type ProfileStats struct {
	Notes        int64 `json:"notes"`
	Tasks        int64 `json:"tasks"`
	SharedWithMe int64 `json:"shared_with_me"`
}

// UseCase defines the interface for identity business logic operations.
type UseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.Identity, error)
	ToggleTheme(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	SetupSecondFactor(ctx context.Context, id uuid.UUID) (*SecondFactorSetup, error)
	ConfirmSecondFactor(ctx context.Context, id uuid.UUID, secret, code string) error
	DisableSecondFactor(ctx context.Context, id uuid.UUID) error
	SetPassword(ctx context.Context, id uuid.UUID, newPassword string) error
	RecordAuthentication(ctx context.Context, id uuid.UUID) error
	GetStats(ctx context.Context, id uuid.UUID) (*ProfileStats, error)
	BootstrapAdmin(ctx context.Context, handle, password string) (bool, error)
}

// IdentityRepository interface defines identity repository operations.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Identity, error)
	Update(ctx context.Context, identity *domain.Identity) error
	Count(ctx context.Context) (int64, error)
}

// StatsRepository aggregates per-identity counters from other modules.
type StatsRepository interface {
	CountNotesByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountTasksByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountGrantsForGrantee(ctx context.Context, granteeID uuid.UUID) (int64, error)
}

// IdentityUseCase handles identity-related business logic.
type IdentityUseCase struct {
	txManager     database.TxManager
	identityRepo  IdentityRepository
	statsRepo     StatsRepository
	credentialSvc service.CredentialService
	totpSvc       service.TotpService
}

// NewIdentityUseCase creates a new IdentityUseCase.
func NewIdentityUseCase(
	txManager database.TxManager,
	identityRepo IdentityRepository,
	statsRepo StatsRepository,
	credentialSvc service.CredentialService,
	totpSvc service.TotpService,
) *IdentityUseCase {
	return &IdentityUseCase{
		txManager:     txManager,
		identityRepo:  identityRepo,
		statsRepo:     statsRepo,
		credentialSvc: credentialSvc,
		totpSvc:       totpSvc,
	}
}

func (uc *IdentityUseCase) validateRegisterInput(input RegisterInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Handle,
			validation.Required.Error("handle is required"),
			appValidation.NotBlank,
			appValidation.Handle,
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			appValidation.Password,
		),
		validation.Field(&input.Email,
			appValidation.Email,
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a new identity with a hashed password. Handle uniqueness
// is enforced by the storage unique constraint, so concurrent registrations
// of the same handle resolve to exactly one winner.
func (uc *IdentityUseCase) Register(ctx context.Context, input RegisterInput) (*domain.Identity, error) {
	if err := uc.validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.credentialSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	id := input.ID
	if id == uuid.Nil {
		id = uuid.Must(uuid.NewV7())
	}

	identity := &domain.Identity{
		ID:           id,
		Handle:       strings.TrimSpace(input.Handle),
		PasswordHash: hashedPassword,
		Email:        strings.TrimSpace(strings.ToLower(input.Email)),
		Theme:        domain.ThemeLight,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.identityRepo.Create(ctx, identity); err != nil {
		return nil, err
	}

	return identity, nil
}

// GetByID retrieves an identity by ID.
func (uc *IdentityUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	return uc.identityRepo.GetByID(ctx, id)
}

// GetByHandle retrieves an identity by handle.
func (uc *IdentityUseCase) GetByHandle(ctx context.Context, handle string) (*domain.Identity, error) {
	return uc.identityRepo.GetByHandle(ctx, handle)
}

func (uc *IdentityUseCase) validateUpdateProfileInput(input UpdateProfileInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Handle,
			validation.Required.Error("handle is required"),
			appValidation.NotBlank,
			appValidation.Handle,
		),
		validation.Field(&input.Bio,
			validation.Length(0, 500).Error("bio must be at most 500 characters"),
		),
		validation.Field(&input.Email,
			appValidation.Email,
		),
	)
	return appValidation.WrapValidationError(err)
}

// UpdateProfile modifies the identity's handle, bio and email. A handle
// change is arbitrated by the storage unique constraint, so stealing a taken
// handle surfaces as ErrHandleTaken.
func (uc *IdentityUseCase) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	input UpdateProfileInput,
) (*domain.Identity, error) {
	if err := uc.validateUpdateProfileInput(input); err != nil {
		return nil, err
	}

	identity, err := uc.identityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	identity.Handle = strings.TrimSpace(input.Handle)
	identity.Bio = strings.TrimSpace(input.Bio)
	identity.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if err := uc.identityRepo.Update(ctx, identity); err != nil {
		return nil, err
	}

	return identity, nil
}

// ToggleTheme flips the identity's theme preference.
func (uc *IdentityUseCase) ToggleTheme(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	identity, err := uc.identityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	identity.ToggleTheme()

	if err := uc.identityRepo.Update(ctx, identity); err != nil {
		return nil, err
	}

	return identity, nil
}

// SetupSecondFactor generates a candidate TOTP secret and its provisioning
// URI. Nothing is persisted here: the caller must confirm with a valid code
// before the factor is enabled.
func (uc *IdentityUseCase) SetupSecondFactor(ctx context.Context, id uuid.UUID) (*SecondFactorSetup, error) {
	identity, err := uc.identityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	secret, err := uc.totpSvc.GenerateSecret()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate second factor secret")
	}

	return &SecondFactorSetup{
		Secret:          secret,
		ProvisioningURI: uc.totpSvc.ProvisioningURI(secret, identity.Handle),
	}, nil
}

// ConfirmSecondFactor validates the code against the candidate secret and,
// on success, persists the secret so the factor is enrolled.
func (uc *IdentityUseCase) ConfirmSecondFactor(ctx context.Context, id uuid.UUID, secret, code string) error {
	if secret == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "second factor secret is required")
	}

	identity, err := uc.identityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !uc.totpSvc.VerifyCode(secret, code) {
		return domain.ErrInvalidSecondFactorCode
	}

	identity.TotpSecret = secret
	return uc.identityRepo.Update(ctx, identity)
}

// DisableSecondFactor removes the enrolled secret. Disabling an identity
// that has no second factor is a no-op.
func (uc *IdentityUseCase) DisableSecondFactor(ctx context.Context, id uuid.UUID) error {
	identity, err := uc.identityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !identity.SecondFactorEnrolled() {
		return nil
	}

	identity.TotpSecret = ""
	return uc.identityRepo.Update(ctx, identity)
}

// SetPassword replaces the identity's password hash after a policy check.
func (uc *IdentityUseCase) SetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hashedPassword, err := uc.credentialSvc.HashPassword(newPassword)
	if err != nil {
		return err
	}

	identity, err := uc.identityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	identity.PasswordHash = hashedPassword
	return uc.identityRepo.Update(ctx, identity)
}

// RecordAuthentication stamps the last successful authentication instant.
func (uc *IdentityUseCase) RecordAuthentication(ctx context.Context, id uuid.UUID) error {
	identity, err := uc.identityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	identity.LastAuthenticatedAt = &now
	return uc.identityRepo.Update(ctx, identity)
}

// GetStats aggregates dashboard counters for the identity.
func (uc *IdentityUseCase) GetStats(ctx context.Context, id uuid.UUID) (*ProfileStats, error) {
	notes, err := uc.statsRepo.CountNotesByOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := uc.statsRepo.CountTasksByOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	shared, err := uc.statsRepo.CountGrantsForGrantee(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ProfileStats{
		Notes:        notes,
		Tasks:        tasks,
		SharedWithMe: shared,
	}, nil
}

// BootstrapAdmin seeds the first identity when the store is empty. Returns
// true when an identity was created. The count check and the insert run in
// one transaction so concurrent bootstraps cannot double-seed.
func (uc *IdentityUseCase) BootstrapAdmin(ctx context.Context, handle, password string) (bool, error) {
	created := false

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		count, err := uc.identityRepo.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashedPassword, err := uc.credentialSvc.HashPassword(password)
		if err != nil {
			return err
		}

		identity := &domain.Identity{
			ID:           uuid.Must(uuid.NewV7()),
			Handle:       handle,
			PasswordHash: hashedPassword,
			Theme:        domain.ThemeLight,
			CreatedAt:    time.Now().UTC(),
		}

		if err := uc.identityRepo.Create(ctx, identity); err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}
