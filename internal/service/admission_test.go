package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/database"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	db        *gorm.DB
	users     *repository.UserRepo
	rooms     *repository.RoomRepo
	bookings  *repository.BookingRepo
	events    *recordingPublisher
	admission *Admission
}

func newFixture(t *testing.T, policy config.BookingPolicy) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:       db,
		users:    repository.NewUserRepo(db),
		rooms:    repository.NewRoomRepo(db),
		bookings: repository.NewBookingRepo(db),
		events:   &recordingPublisher{},
	}
	dir := NewDirectory(f.users, f.rooms)
	f.admission = NewAdmission(dir, f.bookings, f.events, policy, zerolog.Nop())
	return f
}

func lenient() config.BookingPolicy { return config.BookingPolicy{IgnoreUnresolvedMembers: true} }

func (f *fixture) user(t *testing.T, number string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "user " + number, Role: role, EmployeeNumber: number, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) room(t *testing.T, name string, capacity int, executive bool) *model.Room {
	t.Helper()
	r := &model.Room{Name: name, Capacity: capacity, Executive: executive}
	require.NoError(t, f.rooms.Create(context.Background(), r))
	return r
}

func (f *fixture) counts(t *testing.T) (bookings, members, guests int64) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.Booking{}).Count(&bookings).Error)
	require.NoError(t, f.db.Model(&model.BookingMember{}).Count(&members).Error)
	require.NoError(t, f.db.Model(&model.GuestUser{}).Count(&guests).Error)
	return
}

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func request(roomID uint64, primary string, members, guests []string) BookingRequest {
	return BookingRequest{
		RoomID:                roomID,
		PrimaryEmployeeNumber: primary,
		MemberEmployeeNumbers: members,
		GuestNames:            guests,
		Start:                 monday,
		End:                   monday.Add(time.Hour),
	}
}

func TestAdmitScenarioA_DropsUnknownMember(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	e2 := f.user(t, "E2", model.RoleEmployee)
	room := f.room(t, "Small", 3, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, "E1", []string{"E2", "E9"}, []string{"Guest A"}))
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.Equal(t, 3, b.BookedNum)
	require.Len(t, b.Members, 1)
	assert.Equal(t, e2.ID, b.Members[0].UserID)
	require.Len(t, b.Guests, 1)
	assert.Equal(t, "Guest A", b.Guests[0].Name)
	require.NotNil(t, b.Guests[0].BookingID)
	assert.Equal(t, b.ID, *b.Guests[0].BookingID)

	nb, nm, ng := f.counts(t)
	assert.Equal(t, []int64{1, 1, 1}, []int64{nb, nm, ng})

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, room.Name, stored.Room.Name)
	require.Len(t, stored.Members, 1)
	assert.Equal(t, "E2", stored.Members[0].User.EmployeeNumber)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, queue.EventBookingCreated, f.events.events[0].Type)
}

func TestAdmitScenarioB_ExecutiveRoomDenied(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Board", 2, true)

	// over capacity too; access is checked first
	_, err := f.admission.Admit(context.Background(), request(room.ID, "E1", nil, []string{"a", "b", "c"}))
	require.ErrorIs(t, err, ErrAccessDenied)

	nb, nm, ng := f.counts(t)
	assert.Equal(t, []int64{0, 0, 0}, []int64{nb, nm, ng})
	assert.Empty(t, f.events.events)
}

func TestAdmitExecutiveRoomAllowsExecutive(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "X1", model.RoleExecutive)
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Board", 2, true)

	// members are not role-checked
	b, err := f.admission.Admit(context.Background(), request(room.ID, "X1", []string{"E1"}, nil))
	require.NoError(t, err)
	assert.Len(t, b.Members, 1)
}

func TestAdmitAdministratorIsNotExecutive(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "A1", model.RoleAdministrator)
	room := f.room(t, "Board", 2, true)

	_, err := f.admission.Admit(context.Background(), request(room.ID, "A1", nil, nil))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAdmitScenarioC_CapacityExceeded(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Pair", 2, false)

	_, err := f.admission.Admit(context.Background(), request(room.ID, "E1", nil, []string{"G1", "G2"}))
	require.ErrorIs(t, err, ErrCapacityExceeded)

	nb, _, ng := f.counts(t)
	assert.Zero(t, nb)
	assert.Zero(t, ng)
}

func TestAdmitPrimaryNotFoundWins(t *testing.T) {
	f := newFixture(t, lenient())
	room := f.room(t, "Board", 1, true)

	_, err := f.admission.Admit(context.Background(), request(room.ID, "nobody", nil, []string{"a", "b"}))
	require.ErrorIs(t, err, ErrPrimaryUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.admission.Admit(context.Background(), request(999, "nobody", nil, nil))
	assert.ErrorIs(t, err, ErrPrimaryUserNotFound)
}

func TestAdmitRoomNotFound(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)

	_, err := f.admission.Admit(context.Background(), request(42, "E1", nil, nil))
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAdmitStrictMemberPolicy(t *testing.T) {
	f := newFixture(t, config.BookingPolicy{IgnoreUnresolvedMembers: false})
	f.user(t, "E1", model.RoleEmployee)
	f.user(t, "E2", model.RoleEmployee)
	room := f.room(t, "Small", 5, false)

	_, err := f.admission.Admit(context.Background(), request(room.ID, "E1", []string{"E2", "E9"}, nil))
	require.ErrorIs(t, err, ErrMemberNotFound)
	assert.Contains(t, err.Error(), "E9")

	nb, nm, _ := f.counts(t)
	assert.Zero(t, nb)
	assert.Zero(t, nm)
}

func TestAdmitDeduplicatesMembersAndSkipsPrimary(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	f.user(t, "E2", model.RoleEmployee)
	room := f.room(t, "Pair", 2, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, " E1 ", []string{"E2", "E2", "E1", " "}, nil))
	require.NoError(t, err)
	assert.Len(t, b.Members, 1)
	assert.Equal(t, 2, b.BookedNum)
}

func TestAdmitValidation(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Small", 3, false)

	cases := map[string]func(*BookingRequest){
		"end before start": func(r *BookingRequest) { r.End = r.Start.Add(-time.Minute) },
		"empty window":     func(r *BookingRequest) { r.End = r.Start },
		"missing start":    func(r *BookingRequest) { r.Start = time.Time{} },
		"blank guest":      func(r *BookingRequest) { r.GuestNames = []string{"  "} },
		"missing room":     func(r *BookingRequest) { r.RoomID = 0 },
		"missing primary":  func(r *BookingRequest) { r.PrimaryEmployeeNumber = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := request(room.ID, "E1", nil, nil)
			mutate(&req)
			_, err := f.admission.Admit(context.Background(), req)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}
}

func TestAdmitActorMustBePrimary(t *testing.T) {
	f := newFixture(t, lenient())
	e1 := f.user(t, "E1", model.RoleEmployee)
	e2 := f.user(t, "E2", model.RoleEmployee)
	admin := f.user(t, "A1", model.RoleAdministrator)
	room := f.room(t, "Small", 3, false)

	req := request(room.ID, "E1", nil, nil)
	req.Actor = &Principal{UserID: e2.ID, Role: model.RoleEmployee}
	_, err := f.admission.Admit(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)

	req.Actor = &Principal{UserID: e1.ID, Role: model.RoleEmployee}
	_, err = f.admission.Admit(context.Background(), req)
	assert.NoError(t, err)

	req.Actor = &Principal{UserID: admin.ID, Role: model.RoleAdministrator}
	_, err = f.admission.Admit(context.Background(), req)
	assert.NoError(t, err)
}

func TestOverlapIsOffByDefault(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Small", 3, false)

	_, err := f.admission.Admit(context.Background(), request(room.ID, "E1", nil, nil))
	require.NoError(t, err)
	_, err = f.admission.Admit(context.Background(), request(room.ID, "E1", nil, nil))
	require.NoError(t, err)
}

func TestOverlapExtensionRejects(t *testing.T) {
	f := newFixture(t, config.BookingPolicy{IgnoreUnresolvedMembers: true, RejectOverlapping: true})
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Small", 3, false)
	other := f.room(t, "Other", 3, false)

	first, err := f.admission.Admit(context.Background(), request(room.ID, "E1", nil, []string{"g"}))
	require.NoError(t, err)

	req := request(room.ID, "E1", nil, []string{"g2"})
	req.Start = monday.Add(30 * time.Minute)
	req.End = monday.Add(90 * time.Minute)
	_, err = f.admission.Admit(context.Background(), req)
	require.ErrorIs(t, err, ErrRoomUnavailable)
	_, _, ng := f.counts(t)
	assert.Equal(t, int64(1), ng)

	// back-to-back is fine
	req.Start, req.End = monday.Add(time.Hour), monday.Add(2*time.Hour)
	_, err = f.admission.Admit(context.Background(), req)
	require.NoError(t, err)

	// another room is fine
	_, err = f.admission.Admit(context.Background(), request(other.ID, "E1", nil, nil))
	require.NoError(t, err)

	// an update does not conflict with itself
	_, err = f.admission.Readmit(context.Background(), first.ID, request(room.ID, "E1", nil, nil))
	require.NoError(t, err)
}

func TestReadmitReplacesParticipants(t *testing.T) {
	f := newFixture(t, lenient())
	e1 := f.user(t, "E1", model.RoleEmployee)
	f.user(t, "E2", model.RoleEmployee)
	e3 := f.user(t, "E3", model.RoleEmployee)
	room := f.room(t, "Small", 4, false)
	big := f.room(t, "Big", 10, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, "E1", []string{"E2"}, []string{"G1", "G2"}))
	require.NoError(t, err)

	req := request(big.ID, "E1", []string{"E3"}, []string{"G3"})
	req.Actor = &Principal{UserID: e1.ID, Role: model.RoleEmployee}
	updated, err := f.admission.Readmit(context.Background(), b.ID, req)
	require.NoError(t, err)
	assert.Equal(t, b.ID, updated.ID)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, big.ID, *stored.RoomID)
	assert.Equal(t, 3, stored.BookedNum)
	require.Len(t, stored.Members, 1)
	assert.Equal(t, e3.ID, stored.Members[0].UserID)
	require.Len(t, stored.Guests, 1)
	assert.Equal(t, "G3", stored.Guests[0].Name)

	nb, nm, ng := f.counts(t)
	assert.Equal(t, []int64{1, 1, 1}, []int64{nb, nm, ng})
	assert.Equal(t, queue.EventBookingUpdated, f.events.events[len(f.events.events)-1].Type)
}

func TestReadmitRejectsCapacityWithoutChanges(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Small", 2, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, "E1", nil, []string{"G1"}))
	require.NoError(t, err)

	_, err = f.admission.Readmit(context.Background(), b.ID, request(room.ID, "E1", nil, []string{"G1", "G2", "G3"}))
	require.ErrorIs(t, err, ErrCapacityExceeded)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Guests, 1)
}

func TestReadmitAndCancelRequireHolder(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	e2 := f.user(t, "E2", model.RoleEmployee)
	room := f.room(t, "Small", 3, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, "E1", nil, nil))
	require.NoError(t, err)

	stranger := &Principal{UserID: e2.ID, Role: model.RoleEmployee}
	req := request(room.ID, "E1", nil, nil)
	req.Actor = stranger
	_, err = f.admission.Readmit(context.Background(), b.ID, req)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, f.admission.Cancel(context.Background(), b.ID, stranger), ErrAccessDenied)

	_, err = f.admission.Readmit(context.Background(), 999, request(room.ID, "E1", nil, nil))
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelRemovesParticipants(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	f.user(t, "E2", model.RoleEmployee)
	room := f.room(t, "Small", 4, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, "E1", []string{"E2"}, []string{"G"}))
	require.NoError(t, err)

	require.NoError(t, f.admission.Cancel(context.Background(), b.ID, &Principal{Role: model.RoleAdministrator}))
	nb, nm, ng := f.counts(t)
	assert.Equal(t, []int64{0, 0, 0}, []int64{nb, nm, ng})
	assert.Equal(t, queue.EventBookingDeleted, f.events.events[len(f.events.events)-1].Type)

	assert.ErrorIs(t, f.admission.Cancel(context.Background(), b.ID, nil), ErrBookingNotFound)
}

func TestListFiltersByRoom(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	a := f.room(t, "A", 3, false)
	b := f.room(t, "B", 3, false)
	for _, id := range []uint64{a.ID, a.ID, b.ID} {
		_, err := f.admission.Admit(context.Background(), request(id, "E1", nil, nil))
		require.NoError(t, err)
	}

	all, err := f.admission.List(context.Background(), repository.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := f.admission.List(context.Background(), repository.BookingFilter{RoomID: a.ID})
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	page, err := f.admission.List(context.Background(), repository.BookingFilter{Page: repository.Page{Skip: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)
}

func TestAdmitMeasuresGuestNamesInCharacters(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Small", 3, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, "E1", nil, []string{strings.Repeat("会", 100)}))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("会", 100), b.Guests[0].Name)

	_, err = f.admission.Admit(context.Background(), request(room.ID, "E1", nil, []string{strings.Repeat("会", 101)}))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve), "got %v", err)
}

// failGuestInserts makes every insert into guest_users fail, which happens
// after the booking row itself was written.
func failGuestInserts(t *testing.T, db *gorm.DB) error {
	t.Helper()
	failure := errors.New("guest insert failed")
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_guest_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "guest_users" {
			_ = tx.AddError(failure)
		}
	})
	require.NoError(t, err)
	return failure
}

func TestAdmitRollsBackWhenParticipantInsertFails(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	f.user(t, "E2", model.RoleEmployee)
	room := f.room(t, "Small", 4, false)
	failure := failGuestInserts(t, f.db)

	_, err := f.admission.Admit(context.Background(), request(room.ID, "E1", []string{"E2"}, []string{"G1"}))
	require.ErrorIs(t, err, failure)

	nb, nm, ng := f.counts(t)
	assert.Equal(t, []int64{0, 0, 0}, []int64{nb, nm, ng})
	assert.Empty(t, f.events.events)
}

func TestReadmitRollsBackWhenParticipantInsertFails(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	e2 := f.user(t, "E2", model.RoleEmployee)
	f.user(t, "E3", model.RoleEmployee)
	room := f.room(t, "Small", 4, false)
	big := f.room(t, "Big", 10, false)

	b, err := f.admission.Admit(context.Background(), request(room.ID, "E1", []string{"E2"}, []string{"G1"}))
	require.NoError(t, err)
	failure := failGuestInserts(t, f.db)

	_, err = f.admission.Readmit(context.Background(), b.ID, request(big.ID, "E1", []string{"E3"}, []string{"G2", "G3"}))
	require.ErrorIs(t, err, failure)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, *stored.RoomID)
	assert.Equal(t, 3, stored.BookedNum)
	require.Len(t, stored.Members, 1)
	assert.Equal(t, e2.ID, stored.Members[0].UserID)
	require.Len(t, stored.Guests, 1)
	assert.Equal(t, "G1", stored.Guests[0].Name)

	nb, nm, ng := f.counts(t)
	assert.Equal(t, []int64{1, 1, 1}, []int64{nb, nm, ng})
}

type downPublisher struct{}

func (downPublisher) Publish(context.Context, queue.BookingEvent) error {
	return errors.New("broker unreachable")
}

func TestAdmitSurvivesBrokerFailure(t *testing.T) {
	f := newFixture(t, lenient())
	f.user(t, "E1", model.RoleEmployee)
	room := f.room(t, "Small", 2, false)
	a := NewAdmission(NewDirectory(f.users, f.rooms), f.bookings, downPublisher{}, lenient(), zerolog.Nop())

	b, err := a.Admit(context.Background(), request(room.ID, "E1", nil, nil))
	require.NoError(t, err)
	require.NoError(t, a.Cancel(context.Background(), b.ID, nil))
}
