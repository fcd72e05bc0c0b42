package model

import (
	"strings"
	"unicode/utf8"
)

// GuestUser is a non-registered participant named on a booking.
type GuestUser struct {
	ID        uint64  `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"size:100;not null" json:"name"`
	Email     *string `gorm:"size:100" json:"email"`
	BookingID *uint64 `gorm:"index" json:"booking_id"`
}

type GuestInput struct {
	Name      string  `json:"name" form:"name" validate:"required,max=100"`
	Email     *string `json:"email" form:"email" validate:"omitempty,email,max=100"`
	BookingID *uint64 `json:"booking_id" form:"booking_id"`
}

func (in GuestInput) Guest() GuestUser {
	return GuestUser{Name: strings.TrimSpace(in.Name), Email: in.Email, BookingID: in.BookingID}
}

// GuestPatch updates a guest. BookingID may be cleared with an explicit null.
type GuestPatch struct {
	Name      Optional[string]  `json:"name"`
	Email     Optional[*string] `json:"email"`
	BookingID Optional[*uint64] `json:"booking_id"`
}

func (p GuestPatch) Apply(g *GuestUser) error {
	if p.Name.Set {
		name := strings.TrimSpace(p.Name.Value)
		if p.Name.Null || name == "" || utf8.RuneCountInString(name) > 100 {
			return invalid("name", "must be 1 to 100 characters")
		}
		g.Name = name
	}
	if p.Email.Set {
		g.Email = p.Email.Value
	}
	if p.BookingID.Set {
		g.BookingID = p.BookingID.Value
	}
	return nil
}
