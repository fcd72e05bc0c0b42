package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

type GuestUserRepo struct{ DB *gorm.DB }

func NewGuestUserRepo(db *gorm.DB) *GuestUserRepo { return &GuestUserRepo{DB: db} }

// Create inserts a guest. A guest attached to a booking takes one of its
// seats: ErrBookingNotFound when the booking is missing, ErrNoSeats when
// its room is full. Nothing is written on either error.
func (r *GuestUserRepo) Create(ctx context.Context, g *model.GuestUser) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := moveSeat(tx, nil, g.BookingID); err != nil {
			return err
		}
		return tx.Create(g).Error
	})
}

func (r *GuestUserRepo) GetByID(ctx context.Context, id uint64) (*model.GuestUser, error) {
	var g model.GuestUser
	if err := r.DB.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, translate(err, ErrGuestNotFound)
	}
	return &g, nil
}

func (r *GuestUserRepo) List(ctx context.Context, p Page) ([]model.GuestUser, error) {
	guests := []model.GuestUser{}
	err := r.DB.WithContext(ctx).Scopes(p.scope).Find(&guests).Error
	return guests, err
}

// Update writes every column of g. When the guest moves between bookings
// its seat moves with it, under the same rules as Create.
func (r *GuestUserRepo) Update(ctx context.Context, g *model.GuestUser) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.GuestUser
		if err := tx.Select("id", "booking_id").First(&current, g.ID).Error; err != nil {
			return translate(err, ErrGuestNotFound)
		}
		if err := moveSeat(tx, current.BookingID, g.BookingID); err != nil {
			return err
		}
		return tx.Model(g).Select("*").Updates(g).Error
	})
}

// Delete removes a guest and frees its seat on the booking.
func (r *GuestUserRepo) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.GuestUser
		if err := tx.Select("id", "booking_id").First(&current, id).Error; err != nil {
			return translate(err, ErrGuestNotFound)
		}
		if err := tx.Delete(&model.GuestUser{}, id).Error; err != nil {
			return err
		}
		return moveSeat(tx, current.BookingID, nil)
	})
}

// moveSeat gives back a seat on booking from and takes one on booking to.
// Taking a seat is a single conditional UPDATE so that concurrent writers
// cannot push booked_num past the room capacity. A booking whose room was
// deleted has no capacity to enforce.
func moveSeat(tx *gorm.DB, from, to *uint64) error {
	if from != nil && to != nil && *from == *to {
		return nil
	}
	if from != nil {
		err := tx.Model(&model.Booking{}).
			Where("id = ? AND booked_num > 0", *from).
			UpdateColumn("booked_num", gorm.Expr("booked_num - 1")).Error
		if err != nil {
			return err
		}
	}
	if to == nil {
		return nil
	}
	res := tx.Model(&model.Booking{}).
		Where("id = ?", *to).
		Where("booked_num < COALESCE((SELECT capacity FROM rooms WHERE rooms.id = bookings.room_id), booked_num + 1)").
		UpdateColumn("booked_num", gorm.Expr("booked_num + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var n int64
	if err := tx.Model(&model.Booking{}).Where("id = ?", *to).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return ErrNoSeats
}
