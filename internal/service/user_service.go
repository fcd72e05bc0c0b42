package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/utils"
)

// ErrEmployeeNumberTaken is returned when creating or renaming a user onto
// an employee number that is already in use.
var ErrEmployeeNumberTaken = fmt.Errorf("employee number already exists: %w", repository.ErrDuplicate)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmployeeNumber(ctx context.Context, number string) (*model.User, error)
	List(ctx context.Context, p repository.Page) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

// UserService manages directory users and owns password hashing.
type UserService struct {
	users UserStore
	cost  int
	log   zerolog.Logger
}

func NewUserService(users UserStore, bcryptCost int, log zerolog.Logger) *UserService {
	if users == nil {
		panic("nil store passed to NewUserService")
	}
	return &UserService{users: users, cost: bcryptCost, log: log}
}

func (s *UserService) Create(ctx context.Context, in model.UserInput) (*model.User, error) {
	in.Normalize()
	if !in.Role.Valid() {
		return nil, invalid("role", "must be employee, executive or admin")
	}
	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyPassword) {
			return nil, invalid("password", "is required")
		}
		return nil, err
	}
	u := &model.User{
		Name:           in.Name,
		Email:          in.Email,
		Role:           in.Role,
		EmployeeNumber: in.EmployeeNumber,
		PasswordHash:   hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, dupErr(err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, p repository.Page) ([]model.User, error) {
	return s.users.List(ctx, p)
}

// Update applies the set fields of patch. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id uint64, patch model.UserPatch) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(u); err != nil {
		return nil, err
	}
	if patch.Password.Set {
		hash, err := utils.HashPassword(patch.Password.Value, s.cost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, dupErr(err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint64) error {
	return s.users.Delete(ctx, id)
}

// EnsureAdmin creates the configured administrator unless a user with that
// employee number already exists. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	_, err := s.users.GetByEmployeeNumber(ctx, cfg.EmployeeNumber)
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}
	u, err := s.Create(ctx, model.UserInput{
		Name:           cfg.Name,
		Role:           model.RoleAdministrator,
		EmployeeNumber: cfg.EmployeeNumber,
		Password:       cfg.Password,
	})
	if err != nil {
		return false, fmt.Errorf("seed administrator: %w", err)
	}
	s.log.Info().Uint64("user_id", u.ID).Str("employee_number", u.EmployeeNumber).Msg("administrator account created")
	return true, nil
}

func dupErr(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrEmployeeNumberTaken
	}
	return err
}
