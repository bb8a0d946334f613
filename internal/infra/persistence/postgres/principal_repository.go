// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"commtrack/internal/domain/entity"
	domainerrors "commtrack/internal/domain/errors"
	"commtrack/internal/domain/repository"
	"commtrack/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// principalRepository implements the domain's PrincipalRepository interface using GORM.
type principalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository is the constructor for principalRepository.
// It returns the repository as a repository.PrincipalRepository interface, adhering to dependency inversion.
func NewPrincipalRepository(db *gorm.DB) repository.PrincipalRepository {
	return &principalRepository{db: db}
}

// FindByID retrieves a single principal by its unique ID, regardless of role.
func (repo *principalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Principal, error) {
	var principalM model.PrincipalModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&principalM).Error
	if err != nil {
		return nil, repo.translateLookupError(err, "failed to find principal by id")
	}

	return toPrincipalDomain(&principalM), nil
}

// FindByEmail retrieves a principal by email from the collection selected by role.
func (repo *principalRepository) FindByEmail(ctx context.Context, role entity.Role, email string) (*entity.Principal, error) {
	var principalM model.PrincipalModel
	err := repo.db.WithContext(ctx).
		Where("role = ? AND email = ?", role.String(), email).
		First(&principalM).Error
	if err != nil {
		return nil, repo.translateLookupError(err, "failed to find principal by email")
	}

	return toPrincipalDomain(&principalM), nil
}

// FindAnyByEmail retrieves a principal by email from the union of both collections.
func (repo *principalRepository) FindAnyByEmail(ctx context.Context, email string) (*entity.Principal, error) {
	var principalM model.PrincipalModel
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&principalM).Error
	if err != nil {
		return nil, repo.translateLookupError(err, "failed to find principal by email across collections")
	}

	return toPrincipalDomain(&principalM), nil
}

// Create persists a new principal into the collection selected by its role.
// The UNIQUE constraint on email spans both collections, so a duplicate
// registration fails here regardless of any pre-check the caller performed.
func (repo *principalRepository) Create(ctx context.Context, principal *entity.Principal) error {
	principalM := fromPrincipalDomain(principal)

	if err := repo.db.WithContext(ctx).Create(principalM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrPrincipalAlreadyExists.WrapMessage("email already claimed")
		}
		if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("principal record rejected by store constraints")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return domainerrors.ErrStoreUnavailable.WrapMessage("principal write timed out")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create principal")
	}

	// Propagate the store-assigned id and timestamps back to the entity.
	principal.ID = principalM.ID
	principal.CreatedAt = principalM.CreatedAt
	principal.UpdatedAt = principalM.UpdatedAt

	return nil
}

// translateLookupError converts GORM lookup failures into domain errors.
func (repo *principalRepository) translateLookupError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrPrincipalNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.ErrStoreUnavailable.WrapMessage(msg)
	}

	return errors.Wrap(err, msg)
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toPrincipalDomain converts a GORM PrincipalModel to a domain Principal entity.
func toPrincipalDomain(data *model.PrincipalModel) *entity.Principal {
	if data == nil {
		return nil
	}

	return &entity.Principal{
		ID:            data.ID,
		FullName:      data.FullName,
		Email:         data.Email,
		Mobile:        data.Mobile,
		PasswordHash:  data.PasswordHash,
		Role:          entity.Role(data.Role),
		PersonalEmail: data.PersonalEmail,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromPrincipalDomain converts a domain Principal entity to a GORM PrincipalModel.
func fromPrincipalDomain(principal *entity.Principal) *model.PrincipalModel {
	if principal == nil {
		return nil
	}

	return &model.PrincipalModel{
		ID:            principal.ID,
		FullName:      principal.FullName,
		Email:         principal.Email,
		Mobile:        principal.Mobile,
		PasswordHash:  principal.PasswordHash,
		Role:          principal.Role.String(),
		PersonalEmail: principal.PersonalEmail,
	}
}
