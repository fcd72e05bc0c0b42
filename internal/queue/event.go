// Package queue defines the booking events exchanged over RabbitMQ together
// with their publisher and the audit consumer.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// EventType names a booking lifecycle change.
type EventType string

const (
	EventBookingCreated EventType = "booking.created"
	EventBookingUpdated EventType = "booking.updated"
	EventBookingDeleted EventType = "booking.deleted"
)

// BookingEvent carries enough of a booking for downstream consumers to log
// or notify without querying the database.
type BookingEvent struct {
	EventID     string    `json:"event_id"`
	Type        EventType `json:"type"`
	BookingID   uint64    `json:"booking_id"`
	UserID      *uint64   `json:"user_id"`
	RoomID      *uint64   `json:"room_id"`
	RoomName    string    `json:"room_name,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	BookedNum   int       `json:"booked_num"`
	MemberCount int       `json:"member_count"`
	GuestCount  int       `json:"guest_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewBookingEvent snapshots b as an event of type t.
func NewBookingEvent(t EventType, b *model.Booking) BookingEvent {
	ev := BookingEvent{
		EventID:     uuid.NewString(),
		Type:        t,
		BookingID:   b.ID,
		UserID:      b.UserID,
		RoomID:      b.RoomID,
		Start:       b.StartAt,
		End:         b.EndAt,
		BookedNum:   b.BookedNum,
		MemberCount: len(b.Members),
		GuestCount:  len(b.Guests),
		OccurredAt:  time.Now().UTC(),
	}
	if b.Room != nil {
		ev.RoomName = b.Room.Name
	}
	return ev
}
