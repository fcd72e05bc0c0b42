package model

import "time"

// Booking reserves a room for a time window on behalf of a primary user.
// Members and guests are stored in their own tables and are written in the
// same transaction as the booking row.
//
// Fields:
//
//	UserID    – primary user; nulled when that user is deleted.
//	RoomID    – booked room; nulled when the room is deleted.
//	StartAt   – bookings.start_datetime.
//	EndAt     – bookings.end_datetime, strictly after StartAt.
//	BookedNum – attendee count at admission: primary + members + guests.
type Booking struct {
	ID        uint64          `gorm:"primaryKey" json:"id"`
	UserID    *uint64         `gorm:"index" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	RoomID    *uint64         `gorm:"index" json:"room_id"`
	Room      *Room           `gorm:"foreignKey:RoomID;constraint:OnDelete:SET NULL" json:"room,omitempty"`
	StartAt   time.Time       `gorm:"column:start_datetime;not null;index" json:"start_datetime"`
	EndAt     time.Time       `gorm:"column:end_datetime;not null" json:"end_datetime"`
	BookedNum int             `gorm:"not null;default:0" json:"booked_num"`
	Members   []BookingMember `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"members"`
	Guests    []GuestUser     `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"guests"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BookingMember links a registered user to a booking as a participant.
type BookingMember struct {
	BookingID uint64 `gorm:"primaryKey;autoIncrement:false" json:"booking_id"`
	UserID    uint64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (BookingMember) TableName() string { return "booking_users" }

// BookingInput is the wire form of an admission request.
type BookingInput struct {
	RoomID                uint64    `json:"room_id" validate:"required"`
	PrimaryEmployeeNumber string    `json:"primary_employee_number" validate:"required,max=32"`
	MemberEmployeeNumbers []string  `json:"member_employee_numbers"`
	GuestNames            []string  `json:"guest_names" validate:"dive,max=100"`
	StartAt               time.Time `json:"start_datetime" validate:"required"`
	EndAt                 time.Time `json:"end_datetime" validate:"required"`
}
