package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/model"
	"tireshop/internal/repository"
	"tireshop/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const passwordCost = 12

// TokenDenylist remembers revoked token ids.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// Logout revokes the access token of sess and, when given, the refresh token.
	Logout(ctx context.Context, sess *session.Session, refreshToken string) error
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	issuer   *session.Issuer
	denylist TokenDenylist
}

func NewAuthService(repo repository.UserRepository, issuer *session.Issuer, denylist TokenDenylist) AuthService {
	return &authService{repo: repo, issuer: issuer, denylist: denylist}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindActiveByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr(ctx, "auth.login", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	log.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user signed in")
	return s.issue(user)
}

// Refresh rotates the pair: the presented refresh token is revoked and a
// new pair is issued for the still-active user.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.issuer.Parse(refreshToken, session.TokenRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, &RemoteCallError{Op: "auth.refresh", Err: err}
		}
		if revoked {
			return nil, ErrInvalidCredentials
		}
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.FindByID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr(ctx, "auth.refresh", err)
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if s.denylist != nil && claims.ExpiresAt != nil {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return nil, &RemoteCallError{Op: "auth.refresh", Err: err}
		}
	}
	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, sess *session.Session, refreshToken string) error {
	if s.denylist == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, sess.TokenID(), sess.ExpiresAt()); err != nil {
		return &RemoteCallError{Op: "auth.logout", Err: err}
	}
	if refreshToken != "" {
		// an unparsable refresh token is already useless
		if claims, err := s.issuer.Parse(refreshToken, session.TokenRefresh); err == nil && claims.ExpiresAt != nil {
			if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				return &RemoteCallError{Op: "auth.logout", Err: err}
			}
		}
	}
	log.Ctx(ctx).Info().Str("user_id", sess.UserID().String()).Msg("user signed out")
	return nil
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storeErr(ctx, "users.create", err)
	}
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr(ctx, "users.list", err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	pair, err := s.issuer.Issue(session.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		User:         userToResponse(user),
	}, nil
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:     u.ID.String(),
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		Active: u.Active,
	}
}
