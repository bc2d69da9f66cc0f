package user

import (
	"context"
	"errors"
	"strings"

	"suitup-be/internal/apperr"
	"suitup-be/internal/auth"
	"suitup-be/internal/logger"
	"suitup-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (string, *User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Current resolves the caller's session into the stored user.
	Current(ctx context.Context) (*User, error)
	// RequireAdmin checks the stored role, not the role claimed by the token.
	RequireAdmin(ctx context.Context) (*User, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	u, err := s.repo.Create(ctx, &User{
		Name:     input.Name,
		Email:    input.Email,
		Password: &hashed,
		Role:     RoleCustomer,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, apperr.Wrap(apperr.KindConflict, "User already exists", err)
		}
		log.Error("failed to create user", zap.String("email", input.Email), zap.Error(err))
		return nil, apperr.Internal(err)
	}

	log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login with unknown email")
			return "", nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidCredentials.Error(), ErrInvalidCredentials)
		}
		log.Error("failed to find user", zap.Error(err))
		return "", nil, apperr.Internal(err)
	}

	if u.Password == nil || !CheckPasswordHash(input.Password, *u.Password) {
		log.Info("password mismatch", zap.String("user_id", u.ID))
		return "", nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidCredentials.Error(), ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
	if err != nil {
		log.Error("failed to issue token", zap.String("user_id", u.ID), zap.Error(err))
		return "", nil, apperr.Internal(err)
	}

	return token, u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "User not found", ErrUserNotFound)
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, "User not found", err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.FromCtx(ctx).Error("failed to find user",
			zap.String("layer", "service"),
			zap.String("method", "GetByID"),
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *service) Current(ctx context.Context) (*User, error) {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperr.Unauthenticated()
	}
	return s.GetByID(ctx, id)
}

func (s *service) RequireAdmin(ctx context.Context) (*User, error) {
	u, err := s.Current(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Forbidden()
		}
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, apperr.Forbidden()
	}
	return u, nil
}
