package impl

import (
	"context"
	"sync"
	"testing"

	"commtrack/internal/domain/entity"
	domainerrors "commtrack/internal/domain/errors"
	"commtrack/internal/domain/service"
	"commtrack/internal/infra/auth"
	"commtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityFixtures holds the service under test together with the fake store
// and the real hasher/token implementations backing it.
type identityFixtures struct {
	service      usecase.IdentityUsecase
	store        *memoryPrincipalStore
	tokenService service.TokenService
}

func createTestIdentityService(t *testing.T) identityFixtures {
	t.Helper()

	cfg := newTestConfig()
	store := newMemoryPrincipalStore()
	hasher := auth.NewBcryptHasher(cfg)

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	svc := NewIdentityService(
		&memoryTransactionManager{store: store},
		store,
		hasher,
		tokenService,
		cfg,
		newDiscardLogger(),
	)

	return identityFixtures{
		service:      svc,
		store:        store,
		tokenService: tokenService,
	}
}

func registerUser(t *testing.T, fx identityFixtures, email string) *entity.Principal {
	t.Helper()

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		FullName: "Ann Example",
		Email:    email,
		Mobile:   "1",
		Password: "pw",
		Role:     entity.RoleUser,
	})
	require.NoError(t, err)

	return output.Principal
}

func registerAdmin(t *testing.T, fx identityFixtures, email string) *entity.Principal {
	t.Helper()

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		FullName:      "Root Admin",
		Email:         email,
		Mobile:        "2",
		Password:      "admin-pw",
		Role:          entity.RoleAdmin,
		PersonalEmail: "root@personal.example",
	})
	require.NoError(t, err)

	return output.Principal
}

func TestIdentityService_RegisterUser_Success(t *testing.T) {
	fx := createTestIdentityService(t)

	principal := registerUser(t, fx, "a@x.com")

	assert.NotEqual(t, uuid.Nil, principal.ID)
	assert.Equal(t, entity.RoleUser, principal.Role)
	assert.Empty(t, principal.PersonalEmail)
	// The stored form is a hash, never the plaintext.
	assert.NotEqual(t, "pw", principal.PasswordHash)
	assert.NotEmpty(t, principal.PasswordHash)
}

func TestIdentityService_RegisterAdmin_RequiresPersonalEmail(t *testing.T) {
	fx := createTestIdentityService(t)

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		FullName: "Root Admin",
		Email:    "admin@x.com",
		Mobile:   "2",
		Password: "admin-pw",
		Role:     entity.RoleAdmin,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrAdminPersonalEmailRequired))
	// Validation failures never touch the store.
	assert.Zero(t, fx.store.interactions())

	// With the personal email present, the same registration succeeds.
	registerAdmin(t, fx, "admin@x.com")
}

func TestIdentityService_Register_MissingFields(t *testing.T) {
	fx := createTestIdentityService(t)

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		FullName: "Ann Example",
		Email:    "a@x.com",
		Role:     entity.RoleUser,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Zero(t, fx.store.interactions())
}

func TestIdentityService_Register_RejectsUnknownRole(t *testing.T) {
	fx := createTestIdentityService(t)

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		FullName: "Ann Example",
		Email:    "a@x.com",
		Mobile:   "1",
		Password: "pw",
		Role:     entity.Role("superuser"),
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidRole))
}

func TestIdentityService_Register_EmailUniqueAcrossCollections(t *testing.T) {
	fx := createTestIdentityService(t)

	registerUser(t, fx, "shared@x.com")

	// The same email cannot be claimed by an admin registration either.
	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		FullName:      "Root Admin",
		Email:         "shared@x.com",
		Mobile:        "2",
		Password:      "admin-pw",
		Role:          entity.RoleAdmin,
		PersonalEmail: "root@personal.example",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrPrincipalAlreadyExists))
}

func TestIdentityService_Register_ConcurrentDuplicates(t *testing.T) {
	fx := createTestIdentityService(t)

	const attempts = 8

	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = fx.service.Register(context.Background(), &usecase.RegisterInput{
				FullName: "Ann Example",
				Email:    "race@x.com",
				Mobile:   "1",
				Password: "pw",
				Role:     entity.RoleUser,
			})
		}()
	}
	wg.Wait()

	// Exactly one registration wins; the store constraint rejects the rest
	// even when they all passed the pre-check.
	var successes int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, errors.Is(err, domainerrors.ErrPrincipalAlreadyExists))
	}
	assert.Equal(t, 1, successes)
}

func TestIdentityService_LoginUser_Roundtrip(t *testing.T) {
	fx := createTestIdentityService(t)
	registered := registerUser(t, fx, "a@x.com")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "a@x.com",
		Password: "pw",
		Role:     entity.RoleUser,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, output.Token)
	assert.Equal(t, fx.tokenService.TokenDuration(), output.ExpiresIn)

	claims, err := fx.tokenService.VerifyToken(output.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.PrincipalID)
	assert.Equal(t, entity.RoleUser, claims.Role)
}

func TestIdentityService_LoginUser_WrongPassword(t *testing.T) {
	fx := createTestIdentityService(t)
	registerUser(t, fx, "a@x.com")

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "a@x.com",
		Password: "wrong",
		Role:     entity.RoleUser,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestIdentityService_LoginUser_NotFound(t *testing.T) {
	fx := createTestIdentityService(t)

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@x.com",
		Password: "pw",
		Role:     entity.RoleUser,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestIdentityService_Login_RoleScopedLookup(t *testing.T) {
	fx := createTestIdentityService(t)
	registerUser(t, fx, "a@x.com")

	// A user record is invisible to the admin branch even with the correct
	// password and identity fields supplied.
	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:         "a@x.com",
		Password:      "pw",
		Role:          entity.RoleAdmin,
		FullName:      "Ann Example",
		PersonalEmail: "ann@personal.example",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrAdminNotFound))
}

func TestIdentityService_LoginAdmin_Success(t *testing.T) {
	fx := createTestIdentityService(t)
	registered := registerAdmin(t, fx, "admin@x.com")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:         "admin@x.com",
		Password:      "admin-pw",
		Role:          entity.RoleAdmin,
		FullName:      "Root Admin",
		PersonalEmail: "root@personal.example",
	})
	require.NoError(t, err)

	claims, err := fx.tokenService.VerifyToken(output.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.PrincipalID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestIdentityService_LoginAdmin_RequiresIdentityFields(t *testing.T) {
	fx := createTestIdentityService(t)
	registerAdmin(t, fx, "admin@x.com")

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "admin@x.com",
		Password: "admin-pw",
		Role:     entity.RoleAdmin,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrAdminLoginFieldsRequired))
}

func TestIdentityService_LoginAdmin_IdentityMismatch(t *testing.T) {
	fx := createTestIdentityService(t)
	registerAdmin(t, fx, "admin@x.com")

	// Correct password, wrong full name.
	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:         "admin@x.com",
		Password:      "admin-pw",
		Role:          entity.RoleAdmin,
		FullName:      "Somebody Else",
		PersonalEmail: "root@personal.example",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrAdminIdentityMismatch))

	// The identity gate is case-sensitive.
	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:         "admin@x.com",
		Password:      "admin-pw",
		Role:          entity.RoleAdmin,
		FullName:      "root admin",
		PersonalEmail: "root@personal.example",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrAdminIdentityMismatch))
}

func TestIdentityService_LoginAdmin_MismatchCheckedBeforePassword(t *testing.T) {
	fx := createTestIdentityService(t)
	registerAdmin(t, fx, "admin@x.com")

	// Both the identity fields and the password are wrong: the mismatch gate
	// fires first, so the caller never learns whether the password was valid.
	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:         "admin@x.com",
		Password:      "wrong",
		Role:          entity.RoleAdmin,
		FullName:      "Somebody Else",
		PersonalEmail: "other@personal.example",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrAdminIdentityMismatch))
	assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestIdentityService_GetProfile(t *testing.T) {
	fx := createTestIdentityService(t)
	registered := registerUser(t, fx, "a@x.com")

	principal, err := fx.service.GetProfile(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.Email, principal.Email)

	_, err = fx.service.GetProfile(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
