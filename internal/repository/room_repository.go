package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

type RoomRepo struct{ DB *gorm.DB }

func NewRoomRepo(db *gorm.DB) *RoomRepo { return &RoomRepo{DB: db} }

// Create inserts a room. Room names are unique; a clash yields ErrDuplicate.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	return translate(r.DB.WithContext(ctx).Create(room).Error, ErrRoomNotFound)
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	var room model.Room
	if err := r.DB.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err, ErrRoomNotFound)
	}
	return &room, nil
}

// List returns rooms ordered by id. executiveOnly restricts the result to
// rooms reserved for executives.
func (r *RoomRepo) List(ctx context.Context, p Page, executiveOnly bool) ([]model.Room, error) {
	rooms := []model.Room{}
	q := r.DB.WithContext(ctx).Scopes(p.scope)
	if executiveOnly {
		q = q.Where("executive = ?", true)
	}
	err := q.Find(&rooms).Error
	return rooms, err
}

// Update writes every column of room.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	res := r.DB.WithContext(ctx).Model(room).Select("*").Omit("created_at").Updates(room)
	return translate(res.Error, ErrRoomNotFound)
}

// Delete removes a room; its bookings are kept with room_id cleared.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Booking{}).Where("room_id = ?", id).
			Update("room_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Room{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
}
