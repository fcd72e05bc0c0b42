package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// memDirectory is an in-memory user and room store.
type memDirectory struct {
	users map[string]*model.User
	rooms map[uint64]*model.Room
}

func (m *memDirectory) GetByEmployeeNumber(_ context.Context, n string) (*model.User, error) {
	if u, ok := m.users[n]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memDirectory) FindByEmployeeNumbers(_ context.Context, ns []string) (map[string]*model.User, error) {
	out := map[string]*model.User{}
	for _, n := range ns {
		if u, ok := m.users[n]; ok {
			out[n] = u
		}
	}
	return out, nil
}

func (m *memDirectory) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, repository.ErrRoomNotFound
}

// memBookings counts rows the way the database would.
type memBookings struct {
	bookings, members, guests int
}

func (m *memBookings) Create(_ context.Context, b *model.Booking, _ repository.WriteOptions) error {
	m.bookings++
	b.ID = uint64(m.bookings)
	m.members += len(b.Members)
	m.guests += len(b.Guests)
	return nil
}

func (m *memBookings) Replace(context.Context, *model.Booking, repository.WriteOptions) error {
	return errors.New("not used")
}

func (m *memBookings) GetByID(context.Context, uint64) (*model.Booking, error) {
	return nil, repository.ErrBookingNotFound
}

func (m *memBookings) List(context.Context, repository.BookingFilter) ([]model.Booking, error) {
	return nil, nil
}

func (m *memBookings) Delete(context.Context, uint64) error { return nil }

type admissionCase struct {
	capacity       int
	executiveRoom  bool
	primaryRole    model.Role
	primaryExists  bool
	knownMembers   int
	unknownMembers int
	guests         int
}

func genAdmissionCase() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 12),
		gen.Bool(),
		gen.OneConstOf(model.RoleEmployee, model.RoleExecutive, model.RoleAdministrator),
		gen.Weighted([]gen.WeightedGen{{Weight: 9, Gen: gen.Const(true)}, {Weight: 1, Gen: gen.Const(false)}}),
		gen.IntRange(0, 8),
		gen.IntRange(0, 4),
		gen.IntRange(0, 8),
	).Map(func(v []interface{}) admissionCase {
		return admissionCase{
			capacity:       v[0].(int),
			executiveRoom:  v[1].(bool),
			primaryRole:    v[2].(model.Role),
			primaryExists:  v[3].(bool),
			knownMembers:   v[4].(int),
			unknownMembers: v[5].(int),
			guests:         v[6].(int),
		}
	})
}

// run builds a directory for c, admits one request and returns the
// outcome and the rows the store received.
func (c admissionCase) run() (*model.Booking, *memBookings, error) {
	dir := &memDirectory{users: map[string]*model.User{}, rooms: map[uint64]*model.Room{}}
	dir.rooms[1] = &model.Room{ID: 1, Name: "R", Capacity: c.capacity, Executive: c.executiveRoom}
	if c.primaryExists {
		dir.users["P"] = &model.User{ID: 1, EmployeeNumber: "P", Role: c.primaryRole}
	}
	var members []string
	for i := 0; i < c.knownMembers; i++ {
		n := fmt.Sprintf("M%d", i)
		dir.users[n] = &model.User{ID: uint64(100 + i), EmployeeNumber: n, Role: model.RoleEmployee}
		members = append(members, n)
	}
	for i := 0; i < c.unknownMembers; i++ {
		members = append(members, fmt.Sprintf("X%d", i))
	}
	var guests []string
	for i := 0; i < c.guests; i++ {
		guests = append(guests, fmt.Sprintf("Guest %d", i))
	}

	store := &memBookings{}
	a := NewAdmission(NewDirectory(dir, dir), store, nil, config.BookingPolicy{IgnoreUnresolvedMembers: true}, zerolog.Nop())
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	b, err := a.Admit(context.Background(), BookingRequest{
		RoomID:                1,
		PrimaryEmployeeNumber: "P",
		MemberEmployeeNumbers: members,
		GuestNames:            guests,
		Start:                 start,
		End:                   start.Add(time.Hour),
	})
	return b, store, err
}

func TestProperty_AdmissionRules(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("missing primary user is always PrimaryUserNotFound", prop.ForAll(
		func(c admissionCase) bool {
			c.primaryExists = false
			_, store, err := c.run()
			return errors.Is(err, ErrPrimaryUserNotFound) && store.bookings == 0
		},
		genAdmissionCase(),
	))

	properties.Property("non-executive primary never books an executive room", prop.ForAll(
		func(c admissionCase) bool {
			if !c.primaryExists || !c.executiveRoom || c.primaryRole == model.RoleExecutive {
				return true
			}
			_, store, err := c.run()
			return errors.Is(err, ErrAccessDenied) && store.bookings == 0 && store.members == 0 && store.guests == 0
		},
		genAdmissionCase(),
	))

	properties.Property("attendees over capacity are rejected", prop.ForAll(
		func(c admissionCase) bool {
			if !c.primaryExists || (c.executiveRoom && c.primaryRole != model.RoleExecutive) {
				return true
			}
			_, store, err := c.run()
			over := 1+c.knownMembers+c.guests > c.capacity
			if over {
				return errors.Is(err, ErrCapacityExceeded) && store.bookings == 0
			}
			return err == nil
		},
		genAdmissionCase(),
	))

	properties.Property("admitted bookings store exactly the resolved participants", prop.ForAll(
		func(c admissionCase) bool {
			b, store, err := c.run()
			if err != nil {
				return store.bookings == 0 && store.members == 0 && store.guests == 0
			}
			return store.bookings == 1 &&
				store.members == c.knownMembers &&
				store.guests == c.guests &&
				b.BookedNum == 1+c.knownMembers+c.guests
		},
		genAdmissionCase(),
	))

	properties.TestingRun(t)
}
