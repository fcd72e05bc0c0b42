// Package repository holds the gorm-backed data access layer. The sentinel
// values below let higher layers such as handlers distinguish failure
// scenarios with errors.Is. Entity-specific not-found errors all wrap
// ErrNotFound.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrRoomNotFound    = fmt.Errorf("room %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrGuestNotFound   = fmt.Errorf("guest user %w", ErrNotFound)
	ErrArticleNotFound = fmt.Errorf("article %w", ErrNotFound)
)

// ErrDuplicate is returned when a write violates a unique key, such as a
// second user with the same employee number.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is returned when a booking would overlap another booking of
// the same room. Only raised when the overlap check is requested.
var ErrConflict = errors.New("conflict")

// ErrNoSeats is returned when a guest would take a booking past the
// capacity of its room.
var ErrNoSeats = errors.New("no free seats")

const mysqlDuplicateEntry = 1062

// translate maps driver and gorm errors onto the package sentinels.
// notFound is returned for gorm.ErrRecordNotFound.
func translate(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if isDuplicate(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
