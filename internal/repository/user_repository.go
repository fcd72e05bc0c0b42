package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

type UserRepo struct{ DB *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u and fills in its ID. A taken employee number yields
// ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error, ErrUserNotFound)
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &u, nil
}

// GetByEmployeeNumber fetches a user by exact employee number after
// trimming surrounding whitespace.
func (r *UserRepo) GetByEmployeeNumber(ctx context.Context, number string) (*model.User, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, ErrUserNotFound
	}
	var u model.User
	err := r.DB.WithContext(ctx).Where("employee_number = ?", number).First(&u).Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &u, nil
}

// FindByEmployeeNumbers returns the users matching any of numbers, keyed
// by employee number. Unknown numbers are simply absent from the map.
func (r *UserRepo) FindByEmployeeNumbers(ctx context.Context, numbers []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(numbers))
	if len(numbers) == 0 {
		return out, nil
	}
	var users []model.User
	if err := r.DB.WithContext(ctx).Where("employee_number IN ?", numbers).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].EmployeeNumber] = &users[i]
	}
	return out, nil
}

func (r *UserRepo) List(ctx context.Context, p Page) ([]model.User, error) {
	users := []model.User{}
	err := r.DB.WithContext(ctx).Scopes(p.scope).Find(&users).Error
	return users, err
}

// Update writes every column of u. Callers load the row first; MySQL
// reports zero affected rows for an unchanged row, so that is not an error.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res := r.DB.WithContext(ctx).Model(u).Select("*").Omit("created_at").Updates(u)
	return translate(res.Error, ErrUserNotFound)
}

// Delete removes a user. Bookings held by the user lose their primary
// user and the user's memberships are dropped, all in one transaction.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Booking{}).Where("user_id = ?", id).
			Update("user_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.BookingMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
