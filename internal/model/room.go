package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Room is a bookable meeting room.
//
// Fields:
//
//	Name      – unique, stored as rooms.room_name.
//	Capacity  – maximum number of attendees including the primary user.
//	PhotoURL  – optional picture reference.
//	Executive – when true only executives may be the primary user.
type Room struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:room_name;size:50;not null;uniqueIndex" json:"room_name"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	PhotoURL  *string   `gorm:"column:photo_url;size:255" json:"photo_url"`
	Executive bool      `gorm:"not null;default:false" json:"executive"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoomInput struct {
	Name      string  `json:"room_name" form:"room_name" validate:"required,max=50"`
	Capacity  int     `json:"capacity" form:"capacity" validate:"gt=0"`
	PhotoURL  *string `json:"photo_url" form:"photo_url" validate:"omitempty,max=255"`
	Executive bool    `json:"executive" form:"executive"`
}

// Room converts the input into a new row.
func (in RoomInput) Room() Room {
	return Room{
		Name:      strings.TrimSpace(in.Name),
		Capacity:  in.Capacity,
		PhotoURL:  in.PhotoURL,
		Executive: in.Executive,
	}
}

type RoomPatch struct {
	Name      Optional[string]  `json:"room_name"`
	Capacity  Optional[int]     `json:"capacity"`
	PhotoURL  Optional[*string] `json:"photo_url"`
	Executive Optional[bool]    `json:"executive"`
}

func (p RoomPatch) Apply(r *Room) error {
	if p.Name.Set {
		name := strings.TrimSpace(p.Name.Value)
		if p.Name.Null || name == "" || utf8.RuneCountInString(name) > 50 {
			return invalid("room_name", "must be 1 to 50 characters")
		}
		r.Name = name
	}
	if p.Capacity.Set {
		if p.Capacity.Null || p.Capacity.Value <= 0 {
			return invalid("capacity", "must be greater than 0")
		}
		r.Capacity = p.Capacity.Value
	}
	if p.PhotoURL.Set {
		r.PhotoURL = p.PhotoURL.Value
	}
	if p.Executive.Set {
		if p.Executive.Null {
			return invalid("executive", "must be true or false")
		}
		r.Executive = p.Executive.Value
	}
	return nil
}
