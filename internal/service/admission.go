package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/metrics"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// BookingStore persists composed bookings. Create and Replace must write the
// booking and all of its participants atomically.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking, opts repository.WriteOptions) error
	Replace(ctx context.Context, b *model.Booking, opts repository.WriteOptions) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher receives booking lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uint64
	Role   model.Role
}

func (p *Principal) isAdmin() bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case model.RoleAdministrator:
		return true
	case model.RoleEmployee, model.RoleExecutive:
		return false
	}
	return false
}

// BookingRequest is one admission attempt. Actor is optional; when set and
// not an administrator, the primary user must be the actor.
type BookingRequest struct {
	RoomID                uint64
	PrimaryEmployeeNumber string
	MemberEmployeeNumbers []string
	GuestNames            []string
	Start                 time.Time
	End                   time.Time
	Actor                 *Principal
}

// RequestFromInput converts the wire form of a booking.
func RequestFromInput(in model.BookingInput, actor *Principal) BookingRequest {
	return BookingRequest{
		RoomID:                in.RoomID,
		PrimaryEmployeeNumber: in.PrimaryEmployeeNumber,
		MemberEmployeeNumbers: in.MemberEmployeeNumbers,
		GuestNames:            in.GuestNames,
		Start:                 in.StartAt,
		End:                   in.EndAt,
		Actor:                 actor,
	}
}

// Admission decides whether a booking request may be stored and stores it.
type Admission struct {
	dir      *Directory
	bookings BookingStore
	events   EventPublisher
	policy   config.BookingPolicy
	log      zerolog.Logger
}

func NewAdmission(dir *Directory, bookings BookingStore, events EventPublisher, policy config.BookingPolicy, log zerolog.Logger) *Admission {
	if dir == nil || bookings == nil {
		panic("nil dependency passed to NewAdmission")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &Admission{dir: dir, bookings: bookings, events: events, policy: policy, log: log}
}

// Admit runs the admission rules and, when they pass, stores the booking
// with its members and guests in one transaction. Nothing is written when
// any rule fails.
func (a *Admission) Admit(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	b, err := a.compose(ctx, req)
	if err != nil {
		a.observe(err)
		return nil, err
	}
	if err := a.bookings.Create(ctx, b, a.writeOptions()); err != nil {
		err = storeErr(err)
		a.observe(err)
		return nil, err
	}
	metrics.BookingAdmissionsTotal.WithLabelValues("admitted").Inc()
	metrics.BookingAttendees.Observe(float64(b.BookedNum))
	a.log.Info().Uint64("booking_id", b.ID).Uint64("room_id", *b.RoomID).Int("attendees", b.BookedNum).Msg("booking admitted")
	a.publish(ctx, queue.EventBookingCreated, b)
	return b, nil
}

// Readmit overwrites booking id with the outcome of admitting req. The
// booking's participants are replaced as a whole.
func (a *Admission) Readmit(ctx context.Context, id uint64, req BookingRequest) (*model.Booking, error) {
	current, err := a.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeHolder(req.Actor, current); err != nil {
		return nil, err
	}
	b, err := a.compose(ctx, req)
	if err != nil {
		a.observe(err)
		return nil, err
	}
	b.ID = id
	if err := a.bookings.Replace(ctx, b, a.writeOptions()); err != nil {
		err = storeErr(err)
		a.observe(err)
		return nil, err
	}
	metrics.BookingAdmissionsTotal.WithLabelValues("updated").Inc()
	a.publish(ctx, queue.EventBookingUpdated, b)
	return b, nil
}

// Cancel deletes a booking and its participants.
func (a *Admission) Cancel(ctx context.Context, id uint64, actor *Principal) error {
	current, err := a.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeHolder(actor, current); err != nil {
		return err
	}
	if err := a.bookings.Delete(ctx, id); err != nil {
		return err
	}
	a.publish(ctx, queue.EventBookingDeleted, current)
	return nil
}

func (a *Admission) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	return a.bookings.GetByID(ctx, id)
}

func (a *Admission) List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error) {
	return a.bookings.List(ctx, f)
}

// compose validates req against the directory and builds the booking to
// store. The order of checks is fixed: request shape, primary user, actor,
// room, executive access, members, capacity.
func (a *Admission) compose(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	guests, err := validateRequest(&req)
	if err != nil {
		return nil, err
	}

	primary, err := a.dir.ResolveByEmployeeNumber(ctx, req.PrimaryEmployeeNumber)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPrimaryUserNotFound
		}
		return nil, fmt.Errorf("resolve primary user: %w", err)
	}
	if req.Actor != nil && !req.Actor.isAdmin() && req.Actor.UserID != primary.ID {
		return nil, fmt.Errorf("%w: bookings may only be made for yourself", ErrAccessDenied)
	}

	room, err := a.dir.RoomByID(ctx, req.RoomID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room.Executive && !IsExecutive(primary) {
		return nil, fmt.Errorf("%w: only executives may book executive-restricted rooms", ErrAccessDenied)
	}

	members, err := a.resolveMembers(ctx, primary, req.MemberEmployeeNumbers)
	if err != nil {
		return nil, err
	}

	attendees := 1 + len(members) + len(guests)
	if attendees > room.Capacity {
		return nil, fmt.Errorf("%w: %d attendees for %d seats", ErrCapacityExceeded, attendees, room.Capacity)
	}

	b := &model.Booking{
		UserID:    &primary.ID,
		User:      primary,
		RoomID:    &room.ID,
		Room:      room,
		StartAt:   req.Start,
		EndAt:     req.End,
		BookedNum: attendees,
		Members:   make([]model.BookingMember, 0, len(members)),
		Guests:    make([]model.GuestUser, 0, len(guests)),
	}
	for _, m := range members {
		b.Members = append(b.Members, model.BookingMember{UserID: m.ID, User: m})
	}
	for _, g := range guests {
		b.Guests = append(b.Guests, model.GuestUser{Name: g})
	}
	return b, nil
}

// resolveMembers returns the distinct members other than the primary user,
// in request order. Unresolvable numbers are dropped or rejected according
// to the policy.
func (a *Admission) resolveMembers(ctx context.Context, primary *model.User, numbers []string) ([]*model.User, error) {
	seen := map[string]bool{primary.EmployeeNumber: true}
	var wanted []string
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		wanted = append(wanted, n)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	found, missing, err := a.dir.ResolveMany(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("resolve members: %w", err)
	}
	if len(missing) > 0 {
		if !a.policy.IgnoreUnresolvedMembers {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, strings.Join(missing, ", "))
		}
		a.log.Debug().Strs("employee_numbers", missing).Msg("dropping unresolved booking members")
	}

	members := make([]*model.User, 0, len(found))
	for _, n := range wanted {
		if u, ok := found[n]; ok && u.ID != primary.ID {
			members = append(members, u)
		}
	}
	return members, nil
}

// validateRequest checks the shape of req, normalises its times to UTC
// seconds and returns the trimmed guest names.
func validateRequest(req *BookingRequest) ([]string, error) {
	if req.RoomID == 0 {
		return nil, invalid("room_id", "is required")
	}
	if strings.TrimSpace(req.PrimaryEmployeeNumber) == "" {
		return nil, invalid("primary_employee_number", "is required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, invalid("start_datetime", "start and end are required")
	}
	req.Start = req.Start.UTC().Truncate(time.Second)
	req.End = req.End.UTC().Truncate(time.Second)
	if !req.End.After(req.Start) {
		return nil, invalid("end_datetime", "must be after start_datetime")
	}
	guests := make([]string, 0, len(req.GuestNames))
	for _, g := range req.GuestNames {
		g = strings.TrimSpace(g)
		if g == "" {
			return nil, invalid("guest_names", "must not contain blank names")
		}
		if utf8.RuneCountInString(g) > 100 {
			return nil, invalid("guest_names", "names are limited to 100 characters")
		}
		guests = append(guests, g)
	}
	return guests, nil
}

// authorizeHolder lets administrators and the booking's primary user
// change a booking. A nil actor is an internal caller.
func authorizeHolder(actor *Principal, b *model.Booking) error {
	if actor == nil || actor.isAdmin() {
		return nil
	}
	if b.UserID != nil && *b.UserID == actor.UserID {
		return nil
	}
	return fmt.Errorf("%w: only the booking holder may change it", ErrAccessDenied)
}

func (a *Admission) writeOptions() repository.WriteOptions {
	return repository.WriteOptions{RejectOverlap: a.policy.RejectOverlapping}
}

func storeErr(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return ErrRoomUnavailable
	}
	return err
}

func (a *Admission) publish(ctx context.Context, t queue.EventType, b *model.Booking) {
	_ = a.events.Publish(ctx, queue.NewBookingEvent(t, b))
}

func (a *Admission) observe(err error) {
	metrics.BookingAdmissionsTotal.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrPrimaryUserNotFound):
		return "primary_not_found"
	case errors.Is(err, ErrMemberNotFound):
		return "member_not_found"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrRoomUnavailable):
		return "room_unavailable"
	case errors.As(err, &ve):
		return "invalid"
	}
	return "error"
}
