package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// BookingRepo persists bookings together with their member and guest rows.
// Every write runs in a single transaction: either the booking and all of
// its participants are stored, or nothing is.
type BookingRepo struct{ DB *gorm.DB }

func NewBookingRepo(db *gorm.DB) *BookingRepo { return &BookingRepo{DB: db} }

// WriteOptions tunes a booking write.
type WriteOptions struct {
	// RejectOverlap fails the write with ErrConflict when another booking of
	// the same room intersects [StartAt, EndAt).
	RejectOverlap bool
}

// BookingFilter narrows List.
type BookingFilter struct {
	Page
	RoomID uint64
	UserID uint64
}

// Create inserts b first to obtain its id, then one booking_users row per
// member and one guest_users row per guest. On success b carries the new
// ids.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking, opts WriteOptions) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.RejectOverlap {
			if err := checkOverlap(tx, b, 0); err != nil {
				return err
			}
		}
		members, guests := b.Members, b.Guests
		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return translate(err, ErrBookingNotFound)
		}
		if err := insertParticipants(tx, b.ID, members, guests); err != nil {
			return err
		}
		b.Members, b.Guests = members, guests
		return nil
	})
}

// Replace overwrites booking b.ID with the fields of b and swaps its
// participants for b.Members and b.Guests.
func (r *BookingRepo) Replace(ctx context.Context, b *model.Booking, opts WriteOptions) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Booking
		if err := tx.Select("id", "created_at").First(&existing, b.ID).Error; err != nil {
			return translate(err, ErrBookingNotFound)
		}
		if opts.RejectOverlap {
			if err := checkOverlap(tx, b, b.ID); err != nil {
				return err
			}
		}
		err := tx.Model(&model.Booking{}).Where("id = ?", b.ID).Updates(map[string]any{
			"user_id":        b.UserID,
			"room_id":        b.RoomID,
			"start_datetime": b.StartAt,
			"end_datetime":   b.EndAt,
			"booked_num":     b.BookedNum,
			"updated_at":     tx.NowFunc(),
		}).Error
		if err != nil {
			return err
		}
		if err := deleteParticipants(tx, b.ID); err != nil {
			return err
		}
		members, guests := b.Members, b.Guests
		if err := insertParticipants(tx, b.ID, members, guests); err != nil {
			return err
		}
		b.Members, b.Guests = members, guests
		b.CreatedAt = existing.CreatedAt
		return nil
	})
}

// GetByID loads a booking with its room, primary user, members and guests.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	if err := r.DB.WithContext(ctx).Scopes(preloadBooking).First(&b, id).Error; err != nil {
		return nil, translate(err, ErrBookingNotFound)
	}
	return &b, nil
}

func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	bookings := []model.Booking{}
	q := r.DB.WithContext(ctx).Scopes(f.Page.scope, preloadBooking)
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	err := q.Find(&bookings).Error
	return bookings, err
}

// Delete removes a booking and its participants.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteParticipants(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&model.Booking{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookingNotFound
		}
		return nil
	})
}

func preloadBooking(db *gorm.DB) *gorm.DB {
	return db.Preload("Room").
		Preload("User").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("user_id") }).
		Preload("Members.User").
		Preload("Guests", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func insertParticipants(tx *gorm.DB, bookingID uint64, members []model.BookingMember, guests []model.GuestUser) error {
	for i := range members {
		members[i].BookingID = bookingID
	}
	if len(members) > 0 {
		if err := tx.Omit(clause.Associations).Create(&members).Error; err != nil {
			return err
		}
	}
	for i := range guests {
		id := bookingID
		guests[i].ID = 0
		guests[i].BookingID = &id
	}
	if len(guests) > 0 {
		if err := tx.Create(&guests).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteParticipants(tx *gorm.DB, bookingID uint64) error {
	if err := tx.Where("booking_id = ?", bookingID).Delete(&model.BookingMember{}).Error; err != nil {
		return err
	}
	return tx.Where("booking_id = ?", bookingID).Delete(&model.GuestUser{}).Error
}

// checkOverlap counts same-room bookings whose window intersects b's,
// ignoring the booking with id exclude.
func checkOverlap(tx *gorm.DB, b *model.Booking, exclude uint64) error {
	if b.RoomID == nil {
		return nil
	}
	q := tx.Model(&model.Booking{}).
		Where("room_id = ? AND start_datetime < ? AND end_datetime > ?", *b.RoomID, b.EndAt, b.StartAt)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	return nil
}

// Overlaps reports whether [start, end) intersects an existing booking of
// roomID other than exclude.
func (r *BookingRepo) Overlaps(ctx context.Context, roomID uint64, start, end time.Time, exclude uint64) (bool, error) {
	err := checkOverlap(r.DB.WithContext(ctx), &model.Booking{RoomID: &roomID, StartAt: start, EndAt: end}, exclude)
	if err == ErrConflict {
		return true, nil
	}
	return false, err
}
