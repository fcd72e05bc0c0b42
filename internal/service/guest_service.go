package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// GuestStore persists guest rows. Writes that attach a guest to a booking
// take a seat on it and fail with repository.ErrNoSeats when the room is
// full.
type GuestStore interface {
	Create(ctx context.Context, g *model.GuestUser) error
	GetByID(ctx context.Context, id uint64) (*model.GuestUser, error)
	List(ctx context.Context, p repository.Page) ([]model.GuestUser, error)
	Update(ctx context.Context, g *model.GuestUser) error
	Delete(ctx context.Context, id uint64) error
}

// GuestService manages guest users. A guest tied to a booking counts as
// one of its attendees, so only the booking holder or an administrator
// may add, move or remove it.
type GuestService struct {
	guests   GuestStore
	bookings BookingStore
}

func NewGuestService(guests GuestStore, bookings BookingStore) *GuestService {
	if guests == nil || bookings == nil {
		panic("nil dependency passed to NewGuestService")
	}
	return &GuestService{guests: guests, bookings: bookings}
}

func (s *GuestService) Get(ctx context.Context, id uint64) (*model.GuestUser, error) {
	return s.guests.GetByID(ctx, id)
}

func (s *GuestService) List(ctx context.Context, p repository.Page) ([]model.GuestUser, error) {
	return s.guests.List(ctx, p)
}

func (s *GuestService) Create(ctx context.Context, in model.GuestInput, actor *Principal) (*model.GuestUser, error) {
	g := in.Guest()
	if err := s.authorize(ctx, g.BookingID, actor); err != nil {
		return nil, err
	}
	if err := s.guests.Create(ctx, &g); err != nil {
		return nil, seatErr(err, g.BookingID)
	}
	return &g, nil
}

// Update applies patch to guest id. Moving a guest checks the holder of
// both the booking it leaves and the one it joins.
func (s *GuestService) Update(ctx context.Context, id uint64, patch model.GuestPatch, actor *Principal) (*model.GuestUser, error) {
	g, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, g.BookingID, actor); err != nil {
		return nil, err
	}
	from := g.BookingID
	if err := patch.Apply(g); err != nil {
		return nil, err
	}
	if !sameBooking(from, g.BookingID) {
		if err := s.authorize(ctx, g.BookingID, actor); err != nil {
			return nil, err
		}
	}
	if err := s.guests.Update(ctx, g); err != nil {
		return nil, seatErr(err, g.BookingID)
	}
	return g, nil
}

func (s *GuestService) Delete(ctx context.Context, id uint64, actor *Principal) error {
	g, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, g.BookingID, actor); err != nil {
		return err
	}
	return s.guests.Delete(ctx, id)
}

// authorize checks actor against the holder of booking id. Guests that
// belong to no booking are open to every caller.
func (s *GuestService) authorize(ctx context.Context, id *uint64, actor *Principal) error {
	if id == nil {
		return nil
	}
	b, err := s.bookings.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	return authorizeHolder(actor, b)
}

func sameBooking(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func seatErr(err error, bookingID *uint64) error {
	if errors.Is(err, repository.ErrNoSeats) && bookingID != nil {
		return fmt.Errorf("%w: booking %d has no free seats", ErrCapacityExceeded, *bookingID)
	}
	return err
}
