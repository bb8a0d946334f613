// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"commtrack/config"
	"commtrack/internal/domain/entity"
	domainerrors "commtrack/internal/domain/errors"
	"commtrack/internal/domain/repository"
	"commtrack/internal/domain/service"
	"commtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// identityService implements the IdentityUsecase interface.
type identityService struct {
	txManager     repository.TransactionManager
	principalRepo repository.PrincipalRepository
	hasher        service.PasswordHasher
	tokenService  service.TokenService
	storeTimeout  time.Duration
	logger        *slog.Logger
}

// NewIdentityService is the constructor for identityService. It receives all dependencies as interfaces.
func NewIdentityService(
	txManager repository.TransactionManager,
	principalRepo repository.PrincipalRepository,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.IdentityUsecase {
	storeTimeout := 5 * time.Second
	if cfg != nil && cfg.Auth != nil && cfg.Auth.StoreTimeout > 0 {
		storeTimeout = cfg.Auth.StoreTimeout
	}

	return &identityService{
		txManager:     txManager,
		principalRepo: principalRepo,
		hasher:        hasher,
		tokenService:  tokenService,
		storeTimeout:  storeTimeout,
		logger:        logger,
	}
}

// Register orchestrates the complete registration process for both roles.
func (srv *identityService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.logger.Info("Starting registration", "email", input.Email, "collection", input.Role.Collection())

	// Validation failures never touch the store.
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.logger.Error("Failed to hash password during registration", "error", err)

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	var registered *entity.Principal

	// The existence pre-check and the write run in one transaction. The
	// pre-check alone is racy under concurrent registrations for the same
	// email; the store's unique constraint closes that window and surfaces
	// as the same conflict error.
	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	err = srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		repo := repoFactory.PrincipalRepo()

		// 1. Check whether the email is already claimed in either collection.
		_, err := repo.FindAnyByEmail(storeCtx, input.Email)
		if err == nil {
			// If no error, a principal with this email was found.
			return domainerrors.ErrPrincipalAlreadyExists.WrapMessage("registration failed")
		}
		// We expect a 'not found' error. If it's a different error, something went wrong.
		if !errors.Is(err, repository.ErrPrincipalNotFound) {
			return errors.Wrap(err, "failed to check email across collections")
		}

		// 2. Create the principal in the collection selected by its role.
		newPrincipal := &entity.Principal{
			FullName:     input.FullName,
			Email:        input.Email,
			Mobile:       input.Mobile,
			PasswordHash: hashedPassword,
			Role:         input.Role,
		}
		if input.Role == entity.RoleAdmin {
			newPrincipal.PersonalEmail = input.PersonalEmail
		}

		if err := repo.Create(storeCtx, newPrincipal); err != nil {
			return errors.WithStack(err)
		}
		registered = newPrincipal

		return nil
	})

	if err != nil {
		srv.logger.Warn("Registration failed", "email", input.Email, "error", err.Error())

		return nil, srv.translateStoreError(err, "failed to execute registration transaction")
	}
	srv.logger.Debug("Principal registered successfully", "principalID", registered.ID, "collection", registered.Role.Collection())

	return &usecase.RegisterOutput{Principal: registered}, nil
}

// Login orchestrates the login process, branching on the declared role.
func (srv *identityService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.logger.Debug("Starting login", "email", input.Email, "role", input.Role.String())

	if err := validateLoginInput(input); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	// 1. Look up the principal in the collection for the declared role only.
	principal, err := srv.principalRepo.FindByEmail(storeCtx, input.Role, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			if input.Role == entity.RoleAdmin {
				return nil, domainerrors.ErrAdminNotFound.WrapMessage("login failed")
			}

			return nil, domainerrors.ErrUserNotFound.WrapMessage("login failed")
		}

		srv.logger.Error("Failed to look up principal during login", "email", input.Email, "error", err.Error())

		return nil, srv.translateStoreError(err, "failed to look up principal")
	}

	// 2. The admin identity-confirmation gate fires before password
	// verification: an exact, case-sensitive match of both fields.
	if principal.IsAdmin() {
		if principal.FullName != input.FullName || principal.PersonalEmail != input.PersonalEmail {
			srv.logger.Warn("Admin identity confirmation failed", "email", input.Email)

			return nil, domainerrors.ErrAdminIdentityMismatch.WrapMessage("login failed")
		}
	}

	// 3. Verify the password.
	if !srv.hasher.Check(input.Password, principal.PasswordHash) {
		srv.logger.Warn("Login failed", "email", input.Email, "role", input.Role.String())

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	// 4. Mint the session token.
	token, err := srv.tokenService.IssueToken(principal.ID, principal.Role)
	if err != nil {
		srv.logger.Error("Failed to issue token", "principalID", principal.ID, "error", err.Error())

		return nil, errors.Wrap(err, "failed to issue token")
	}

	srv.logger.Debug("Login successful", "principalID", principal.ID, "role", principal.Role.String())

	return &usecase.LoginOutput{
		Token:     token,
		ExpiresIn: srv.tokenService.TokenDuration(),
		Principal: principal,
	}, nil
}

// GetProfile returns the principal behind an authenticated session.
func (srv *identityService) GetProfile(ctx context.Context, principalID uuid.UUID) (*entity.Principal, error) {
	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	principal, err := srv.principalRepo.FindByID(storeCtx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("profile lookup failed")
		}

		return nil, srv.translateStoreError(err, "failed to look up profile")
	}

	return principal, nil
}

// translateStoreError maps store timeouts onto the unavailable error; other
// failures pass through with context attached.
func (srv *identityService) translateStoreError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.ErrStoreUnavailable.WrapMessage(msg)
	}

	return errors.Wrap(err, msg)
}

func validateRegisterInput(input *usecase.RegisterInput) error {
	if input.FullName == "" || input.Email == "" || input.Mobile == "" || input.Password == "" || input.Role == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("registration rejected")
	}
	if !input.Role.IsValid() {
		return domainerrors.ErrInvalidRole.WrapMessage("registration rejected")
	}
	if input.Role == entity.RoleAdmin && input.PersonalEmail == "" {
		return domainerrors.ErrAdminPersonalEmailRequired.WrapMessage("registration rejected")
	}

	return nil
}

func validateLoginInput(input *usecase.LoginInput) error {
	if input.Email == "" || input.Password == "" || input.Role == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("login rejected")
	}
	if !input.Role.IsValid() {
		return domainerrors.ErrInvalidRole.WrapMessage("login rejected")
	}
	if input.Role == entity.RoleAdmin && (input.FullName == "" || input.PersonalEmail == "") {
		return domainerrors.ErrAdminLoginFieldsRequired.WrapMessage("login rejected")
	}

	return nil
}
