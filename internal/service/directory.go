// Package service implements booking admission and the identity lookups and
// credential checks it relies on.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// UserLookup is the read side of the user store used by the directory.
type UserLookup interface {
	GetByEmployeeNumber(ctx context.Context, number string) (*model.User, error)
	FindByEmployeeNumbers(ctx context.Context, numbers []string) (map[string]*model.User, error)
}

type RoomLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// Directory translates employee numbers and room ids into stored records.
// It never writes.
type Directory struct {
	users UserLookup
	rooms RoomLookup
}

func NewDirectory(users UserLookup, rooms RoomLookup) *Directory {
	if users == nil || rooms == nil {
		panic("nil lookup passed to NewDirectory")
	}
	return &Directory{users: users, rooms: rooms}
}

// ResolveByEmployeeNumber finds the user with exactly this employee number,
// ignoring surrounding whitespace.
func (d *Directory) ResolveByEmployeeNumber(ctx context.Context, number string) (*model.User, error) {
	return d.users.GetByEmployeeNumber(ctx, strings.TrimSpace(number))
}

// ResolveMany looks numbers up in one query. The result maps each
// resolvable number to its user and lists the numbers that matched none,
// in input order.
func (d *Directory) ResolveMany(ctx context.Context, numbers []string) (map[string]*model.User, []string, error) {
	found, err := d.users.FindByEmployeeNumbers(ctx, numbers)
	if err != nil {
		return nil, nil, err
	}
	var missing []string
	for _, n := range numbers {
		if _, ok := found[n]; !ok {
			missing = append(missing, n)
		}
	}
	return found, missing, nil
}

// RoomByID loads a room.
func (d *Directory) RoomByID(ctx context.Context, id uint64) (*model.Room, error) {
	return d.rooms.GetByID(ctx, id)
}

// IsExecutive reports whether u holds the executive role. Administrators
// are not executives.
func IsExecutive(u *model.User) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case model.RoleExecutive:
		return true
	case model.RoleEmployee, model.RoleAdministrator:
		return false
	}
	return false
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }
