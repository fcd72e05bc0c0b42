package service

import (
	"context"
	"strings"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/utils"
)

// CredentialStore finds users by login identifier or id.
type CredentialStore interface {
	GetByEmployeeNumber(ctx context.Context, number string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// AuthService exchanges an employee number and password for an access
// token.
type AuthService struct {
	users CredentialStore
	cfg   config.AuthConfig
}

func NewAuthService(users CredentialStore, cfg config.AuthConfig) *AuthService {
	if users == nil {
		panic("nil store passed to NewAuthService")
	}
	return &AuthService{users: users, cfg: cfg}
}

// Login returns a signed token for a valid credential pair. An unknown
// employee number and a wrong password both yield ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, employeeNumber, password string) (utils.AccessToken, *model.User, error) {
	employeeNumber = strings.TrimSpace(employeeNumber)
	if employeeNumber == "" || password == "" {
		return utils.AccessToken{}, nil, ErrUnauthorized
	}
	u, err := s.users.GetByEmployeeNumber(ctx, employeeNumber)
	if err != nil {
		if isNotFound(err) {
			return utils.AccessToken{}, nil, ErrUnauthorized
		}
		return utils.AccessToken{}, nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.AccessToken{}, nil, ErrUnauthorized
	}
	tok, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role.String(), u.EmployeeNumber, s.cfg.AccessTTL())
	if err != nil {
		return utils.AccessToken{}, nil, err
	}
	return tok, u, nil
}

// Verify decodes a bearer token into the calling principal. The role is
// read from the user row rather than the token, so a demotion or a
// deleted account takes effect on the next request.
func (s *AuthService) Verify(ctx context.Context, raw string) (Principal, error) {
	c, err := utils.ParseAccessToken(s.cfg.JWTSecret, raw)
	if err != nil {
		return Principal{}, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, c.UserID)
	if err != nil {
		if isNotFound(err) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}
	if !u.Role.Valid() {
		return Principal{}, ErrUnauthorized
	}
	return Principal{UserID: u.ID, Role: u.Role}, nil
}
