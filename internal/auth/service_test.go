package auth_test

import (
	"context"
	"testing"
	"time"

	"gatherly/internal/auth"
	"gatherly/internal/shared/config"
	"gatherly/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *users.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *mockUserRepo) UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error {
	return m.Called(ctx, userID, hashedPassword).Error(0)
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func existingUser(password string) *users.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &users.User{
		ID:        uuid.New(),
		FirstName: "Asha",
		LastName:  "Patel",
		Email:     "asha@example.com",
		Password:  string(hashed),
		Role:      users.RoleUser,
	}
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	repo := &mockUserRepo{}
	svc := auth.NewService(repo, testConfig())
	ctx := context.Background()

	repo.On("EmailExists", ctx, "asha@example.com").Return(true, nil)

	_, err := svc.Register(ctx, &auth.RegisterRequest{
		FirstName: "Asha",
		LastName:  "Patel",
		Email:     "asha@example.com",
		Password:  "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)

	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_SelfRegistrationNeverGrantsAdmin(t *testing.T) {
	repo := &mockUserRepo{}
	svc := auth.NewService(repo, testConfig())
	ctx := context.Background()

	repo.On("EmailExists", ctx, "asha@example.com").Return(false, nil)
	repo.On("CreateUser", ctx, mock.AnythingOfType("*users.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*users.User)
			user.ID = uuid.New()
		}).
		Return(nil)

	resp, err := svc.Register(ctx, &auth.RegisterRequest{
		FirstName: "Asha",
		LastName:  "Patel",
		Email:     "asha@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, string(users.RoleUser), resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := auth.NewService(repo, testConfig())
	ctx := context.Background()

	repo.On("GetUserByEmail", ctx, "asha@example.com").Return(existingUser("correct-password"), nil)

	_, err := svc.Login(ctx, &auth.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailHidesExistence(t *testing.T) {
	repo := &mockUserRepo{}
	svc := auth.NewService(repo, testConfig())
	ctx := context.Background()

	repo.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, auth.ErrUserNotFound)

	_, err := svc.Login(ctx, &auth.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	// Same error as a wrong password so the response does not leak
	// which emails are registered.
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	repo := &mockUserRepo{}
	svc := auth.NewService(repo, testConfig())
	ctx := context.Background()

	user := existingUser("secret123")
	repo.On("GetUserByEmail", ctx, user.Email).Return(user, nil)

	resp, err := svc.Login(ctx, &auth.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "gatherly", claims.Issuer)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	repo := &mockUserRepo{}
	svc := auth.NewService(repo, testConfig())
	ctx := context.Background()

	user := existingUser("secret123")
	repo.On("GetUserByEmail", ctx, user.Email).Return(user, nil)

	resp, err := svc.Login(ctx, &auth.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	// An access token must not mint a new pair
	_, err = svc.RefreshToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshToken_IssuesNewPair(t *testing.T) {
	repo := &mockUserRepo{}
	svc := auth.NewService(repo, testConfig())
	ctx := context.Background()

	user := existingUser("secret123")
	repo.On("GetUserByEmail", ctx, user.Email).Return(user, nil)
	repo.On("GetUserByID", ctx, user.ID.String()).Return(user, nil)

	resp, err := svc.Login(ctx, &auth.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	pair, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	svc := auth.NewService(&mockUserRepo{}, testConfig())

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
