package user

import (
	"context"
	"errors"
	"testing"

	"suitup-be/internal/apperr"
	"suitup-be/internal/auth"
	"suitup-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

type stubIssuer struct {
	token string
	err   error
	got   auth.Identity
}

func (s *stubIssuer) Issue(id auth.Identity) (string, error) {
	s.got = id
	return s.token, s.err
}

const testUserID = "2b6c0a3e-8f51-4d7e-9d8c-1a2b3c4d5e6f"

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	input := RegisterInput{Name: " John ", Email: "John@Example.com", Password: "password123"}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})

		expected := &User{ID: testUserID, Name: "John", Email: "john@example.com", Role: RoleCustomer}

		mockRepo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "john@example.com" &&
				u.Name == "John" &&
				u.Role == RoleCustomer &&
				u.Password != nil &&
				CheckPasswordHash("password123", *u.Password)
		})).Return(expected, nil)

		u, err := svc.Register(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, expected, u)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})

		mockRepo.On("Create", ctx, mock.Anything).Return(nil, ErrEmailExists)

		_, err := svc.Register(ctx, input)

		assert.True(t, apperr.Is(err, apperr.KindConflict))
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})

		mockRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db error"))

		_, err := svc.Register(ctx, input)

		assert.True(t, apperr.Is(err, apperr.KindInternal))
		assert.Equal(t, "Internal error", apperr.MessageOf(err))
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	password := "password123"
	hashedPassword, _ := HashPassword(password)

	stored := &User{
		ID:       testUserID,
		Email:    "test@example.com",
		Password: &hashedPassword,
		Role:     RoleCustomer,
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		issuer := &stubIssuer{token: "signed"}
		svc := NewService(mockRepo, issuer)

		mockRepo.On("FindByEmail", ctx, "test@example.com").Return(stored, nil)

		token, u, err := svc.Login(ctx, LoginInput{Email: "TEST@example.com", Password: password})

		require.NoError(t, err)
		assert.Equal(t, "signed", token)
		assert.Equal(t, stored, u)
		assert.Equal(t, auth.Identity{UserID: testUserID, Email: "test@example.com", Role: "customer"}, issuer.got)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})

		mockRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, ErrUserNotFound)

		_, _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: password})

		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
		assert.Equal(t, "invalid email or password", apperr.MessageOf(err))
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})

		mockRepo.On("FindByEmail", ctx, "test@example.com").Return(stored, nil)

		_, _, err := svc.Login(ctx, LoginInput{Email: "test@example.com", Password: "wrong"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("PasswordlessAccount", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})

		mockRepo.On("FindByEmail", ctx, "oauth@example.com").
			Return(&User{ID: testUserID, Email: "oauth@example.com", Role: RoleCustomer}, nil)

		_, _, err := svc.Login(ctx, LoginInput{Email: "oauth@example.com", Password: "anything"})

		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	})

	t.Run("IssuerError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{err: auth.ErrMissingSecret})

		mockRepo.On("FindByEmail", ctx, "test@example.com").Return(stored, nil)

		_, _, err := svc.Login(ctx, LoginInput{Email: "test@example.com", Password: password})

		assert.True(t, apperr.Is(err, apperr.KindInternal))
	})
}

func TestService_Current(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		svc := NewService(new(MockRepository), &stubIssuer{})

		_, err := svc.Current(context.Background())
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	})

	t.Run("Deleted user", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})
		ctx := utils.SetUserContext(context.Background(), testUserID, "", "customer")

		mockRepo.On("FindByID", ctx, testUserID).Return(nil, ErrUserNotFound)

		_, err := svc.Current(ctx)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("Malformed id is not found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})
		ctx := utils.SetUserContext(context.Background(), "not-a-uuid", "", "customer")

		_, err := svc.Current(ctx)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestService_RequireAdmin(t *testing.T) {
	t.Run("Stored role wins over claimed role", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})
		ctx := utils.SetUserContext(context.Background(), testUserID, "", "admin")

		mockRepo.On("FindByID", ctx, testUserID).Return(&User{ID: testUserID, Role: RoleCustomer}, nil)

		_, err := svc.RequireAdmin(ctx)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Admin", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})
		ctx := utils.SetUserContext(context.Background(), testUserID, "", "admin")

		mockRepo.On("FindByID", ctx, testUserID).Return(&User{ID: testUserID, Role: RoleAdmin}, nil)

		u, err := svc.RequireAdmin(ctx)
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})

	t.Run("Deleted user is forbidden", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, &stubIssuer{})
		ctx := utils.SetUserContext(context.Background(), testUserID, "", "admin")

		mockRepo.On("FindByID", ctx, testUserID).Return(nil, ErrUserNotFound)

		_, err := svc.RequireAdmin(ctx)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Anonymous", func(t *testing.T) {
		svc := NewService(new(MockRepository), &stubIssuer{})

		_, err := svc.RequireAdmin(context.Background())
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	})
}
