package service

import (
	"context"
	"errors"
	"testing"
	"time"

	messagingerrors "stayops/internal/messaging/errors"
	reservationserrors "stayops/internal/reservations/errors"
	"stayops/pkg/clock"
	"stayops/pkg/config"
	"stayops/pkg/logger"
	"stayops/pkg/model"
)

// Mock repositories and collaborators for testing

type mockTemplateRepository struct {
	findByIDFunc            func(ctx context.Context, id string) (*model.MessageTemplate, error)
	findActiveByTriggerFunc func(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error)
}

func (m *mockTemplateRepository) FindByID(ctx context.Context, id string) (*model.MessageTemplate, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, messagingerrors.ErrTemplateNotFound
}

func (m *mockTemplateRepository) FindActiveByTrigger(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
	if m.findActiveByTriggerFunc != nil {
		return m.findActiveByTriggerFunc(ctx, trigger)
	}
	return nil, nil
}

type mockScheduledMessageRepository struct {
	createFunc                    func(ctx context.Context, entry *model.ScheduledMessageEntry) error
	existsForTemplateAndGuestFunc func(ctx context.Context, templateID, guestID string) (bool, error)
	findByReservationFunc         func(ctx context.Context, reservationID string) ([]*model.ScheduledMessageEntry, error)
	findAllFunc                   func(ctx context.Context, limit int, offset int64) ([]*model.ScheduledMessageEntry, error)
	countFunc                     func(ctx context.Context) (int64, error)
	cancelForReservationFunc      func(ctx context.Context, reservationID string) (int64, error)
}

func (m *mockScheduledMessageRepository) Create(ctx context.Context, entry *model.ScheduledMessageEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	return nil
}

func (m *mockScheduledMessageRepository) ExistsForTemplateAndGuest(ctx context.Context, templateID, guestID string) (bool, error) {
	if m.existsForTemplateAndGuestFunc != nil {
		return m.existsForTemplateAndGuestFunc(ctx, templateID, guestID)
	}
	return false, nil
}

func (m *mockScheduledMessageRepository) FindByReservation(ctx context.Context, reservationID string) ([]*model.ScheduledMessageEntry, error) {
	if m.findByReservationFunc != nil {
		return m.findByReservationFunc(ctx, reservationID)
	}
	return nil, nil
}

func (m *mockScheduledMessageRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ScheduledMessageEntry, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockScheduledMessageRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockScheduledMessageRepository) CancelForReservation(ctx context.Context, reservationID string) (int64, error) {
	if m.cancelForReservationFunc != nil {
		return m.cancelForReservationFunc(ctx, reservationID)
	}
	return 0, nil
}

type mockGuestRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Guest, error)
}

func (m *mockGuestRepository) FindByID(ctx context.Context, id string) (*model.Guest, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationserrors.ErrGuestNotFound
}

type mockReservationRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Reservation, error)
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationserrors.ErrReservationNotFound
}

func (m *mockReservationRepository) FindUpcomingCheckIns(ctx context.Context, from, to time.Time) ([]*model.Reservation, error) {
	return nil, nil
}

type mockContractCreator struct {
	created    int
	err        error
	createFunc func(guestID, reservationID string) error
}

func (m *mockContractCreator) Create(guestID, reservationID string) error {
	m.created++
	if m.createFunc != nil {
		return m.createFunc(guestID, reservationID)
	}
	return m.err
}

type mockPublisher struct {
	events []string
}

func (m *mockPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	m.events = append(m.events, eventType)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func schedulerTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

const testNowRFC3339 = "2025-06-01T10:00:00Z"

func fixedClock(t *testing.T) clock.Clock {
	t.Helper()
	now, err := time.Parse(time.RFC3339, testNowRFC3339)
	if err != nil {
		t.Fatal(err)
	}
	return clock.NewFake(now)
}

func testGuest() *model.Guest {
	return &model.Guest{
		ID:            "665f1f77bcf86cd799439033",
		ReservationID: "665f1f77bcf86cd799439011",
		FullName:      "Dana Guest",
		Phone:         "+972501234567",
	}
}

func testReservation() *model.Reservation {
	return &model.Reservation{
		ID:         "665f1f77bcf86cd799439011",
		PropertyID: "665f1f77bcf86cd799439022",
		GuestID:    "665f1f77bcf86cd799439033",
		GuestName:  "Dana Guest",
		CheckIn:    time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC),
		Status:     model.ReservationConfirmed,
	}
}

func checkOutTemplate() *model.MessageTemplate {
	return &model.MessageTemplate{
		ID:           "665f1f77bcf86cd799439044",
		Name:         "Checkout reminder",
		Content:      "See you soon, {{guest_name}}!",
		Channels:     []string{"sms"},
		TriggerEvent: model.TriggerCheckOut,
		Offset: model.TriggerOffset{
			Value:     2,
			Unit:      model.UnitHours,
			Direction: model.DirectionBefore,
		},
		Active: true,
	}
}

func newTestScheduler(templates *mockTemplateRepository, scheduled *mockScheduledMessageRepository, guests *mockGuestRepository, reservations *mockReservationRepository, contracts *mockContractCreator, publisher *mockPublisher, t *testing.T) *messageScheduler {
	return &messageScheduler{
		templates:    templates,
		scheduled:    scheduled,
		guests:       guests,
		reservations: reservations,
		contracts:    contracts,
		publisher:    publisher,
		clk:          fixedClock(t),
		cfg:          schedulerTestConfig(),
	}
}

func TestSendTime_CheckOutOffsetBefore(t *testing.T) {
	got := sendTime(checkOutTemplate(), testReservation(), time.Now())

	want := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected scheduled_for %v, got %v", want, got)
	}
}

func TestSendTime_CheckInOffsetAfterDays(t *testing.T) {
	template := checkOutTemplate()
	template.TriggerEvent = model.TriggerCheckIn
	template.Offset = model.TriggerOffset{Value: 1, Unit: model.UnitDays, Direction: model.DirectionAfter}

	got := sendTime(template, testReservation(), time.Now())

	want := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected scheduled_for %v, got %v", want, got)
	}
}

func TestSendTime_VerificationIsNow(t *testing.T) {
	template := checkOutTemplate()
	template.TriggerEvent = model.TriggerVerification

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if got := sendTime(template, testReservation(), now); !got.Equal(now) {
		t.Errorf("expected now, got %v", got)
	}
}

func TestScheduleForEvent_PersistsEntry(t *testing.T) {
	var stored *model.ScheduledMessageEntry
	scheduled := &mockScheduledMessageRepository{
		createFunc: func(ctx context.Context, entry *model.ScheduledMessageEntry) error {
			entry.ID = "665f1f77bcf86cd799439055"
			stored = entry
			return nil
		},
	}
	templates := &mockTemplateRepository{
		findActiveByTriggerFunc: func(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
			if trigger != model.TriggerCheckOut {
				t.Errorf("expected check_out trigger, got %s", trigger)
			}
			template := checkOutTemplate()
			template.Channels = []string{" SMS ", "sms"}
			return []*model.MessageTemplate{template}, nil
		},
	}
	guests := &mockGuestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Guest, error) { return testGuest(), nil },
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) { return testReservation(), nil },
	}
	publisher := &mockPublisher{}
	svc := newTestScheduler(templates, scheduled, guests, reservations, &mockContractCreator{}, publisher, t)

	result, err := svc.ScheduleForEvent(context.Background(), testGuest().ID, model.TriggerCheckOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("expected one scheduled entry, got %d", len(result.Scheduled))
	}
	if stored == nil {
		t.Fatal("expected an entry to be persisted")
	}
	if want := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC); !stored.ScheduledFor.Equal(want) {
		t.Errorf("expected scheduled_for %v, got %v", want, stored.ScheduledFor)
	}
	if stored.Status != model.MessageScheduled {
		t.Errorf("expected scheduled status, got %s", stored.Status)
	}
	if len(stored.Channels) != 1 || stored.Channels[0] != "sms" {
		t.Errorf("expected channels normalized and deduplicated, got %v", stored.Channels)
	}
	if len(publisher.events) != 1 || publisher.events[0] != "messages.scheduled" {
		t.Errorf("expected a messages.scheduled event, got %v", publisher.events)
	}
}

func TestScheduleForEvent_SkipsPastSendTime(t *testing.T) {
	created := 0
	scheduled := &mockScheduledMessageRepository{
		createFunc: func(ctx context.Context, entry *model.ScheduledMessageEntry) error {
			created++
			return nil
		},
	}
	template := checkOutTemplate()
	// Anchored to check-in minus 12h, long past the fixed test clock.
	template.TriggerEvent = model.TriggerCheckIn
	template.Offset = model.TriggerOffset{Value: 12, Unit: model.UnitHours, Direction: model.DirectionBefore}
	templates := &mockTemplateRepository{
		findActiveByTriggerFunc: func(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
			return []*model.MessageTemplate{template}, nil
		},
	}
	guests := &mockGuestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Guest, error) { return testGuest(), nil },
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) { return testReservation(), nil },
	}
	svc := newTestScheduler(templates, scheduled, guests, reservations, &mockContractCreator{}, &mockPublisher{}, t)

	result, err := svc.ScheduleForEvent(context.Background(), testGuest().ID, model.TriggerCheckIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 0 {
		t.Errorf("expected nothing persisted for a past send time, got %d", created)
	}
	if result.Skipped != 1 {
		t.Errorf("expected one skip, got %d", result.Skipped)
	}
}

func TestScheduleForEvent_SkipsDuplicate(t *testing.T) {
	created := 0
	scheduled := &mockScheduledMessageRepository{
		existsForTemplateAndGuestFunc: func(ctx context.Context, templateID, guestID string) (bool, error) {
			return true, nil
		},
		createFunc: func(ctx context.Context, entry *model.ScheduledMessageEntry) error {
			created++
			return nil
		},
	}
	templates := &mockTemplateRepository{
		findActiveByTriggerFunc: func(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
			return []*model.MessageTemplate{checkOutTemplate()}, nil
		},
	}
	guests := &mockGuestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Guest, error) { return testGuest(), nil },
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) { return testReservation(), nil },
	}
	svc := newTestScheduler(templates, scheduled, guests, reservations, &mockContractCreator{}, &mockPublisher{}, t)

	result, err := svc.ScheduleForEvent(context.Background(), testGuest().ID, model.TriggerCheckOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 0 {
		t.Errorf("expected no duplicate entry, got %d creates", created)
	}
	if result.Skipped != 1 {
		t.Errorf("expected one skip, got %d", result.Skipped)
	}
}

func TestScheduleForEvent_DuplicateIndexRaceIsSkip(t *testing.T) {
	scheduled := &mockScheduledMessageRepository{
		createFunc: func(ctx context.Context, entry *model.ScheduledMessageEntry) error {
			return messagingerrors.ErrDuplicateSchedule
		},
	}
	templates := &mockTemplateRepository{
		findActiveByTriggerFunc: func(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
			return []*model.MessageTemplate{checkOutTemplate()}, nil
		},
	}
	guests := &mockGuestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Guest, error) { return testGuest(), nil },
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) { return testReservation(), nil },
	}
	svc := newTestScheduler(templates, scheduled, guests, reservations, &mockContractCreator{}, &mockPublisher{}, t)

	result, err := svc.ScheduleForEvent(context.Background(), testGuest().ID, model.TriggerCheckOut)
	if err != nil {
		t.Fatalf("expected the index race to be treated as a skip, got %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("expected one skip, got %d", result.Skipped)
	}
}

func TestScheduleForEvent_UnknownTrigger(t *testing.T) {
	svc := newTestScheduler(&mockTemplateRepository{}, &mockScheduledMessageRepository{}, &mockGuestRepository{}, &mockReservationRepository{}, &mockContractCreator{}, &mockPublisher{}, t)

	_, err := svc.ScheduleForEvent(context.Background(), testGuest().ID, model.TriggerEvent("checkout_party"))
	if err == nil {
		t.Fatal("expected unknown trigger to fail validation")
	}
}

func TestScheduleForGuest_ContractFailureIsNonFatal(t *testing.T) {
	templates := &mockTemplateRepository{
		findActiveByTriggerFunc: func(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
			if trigger == model.TriggerCheckOut {
				return []*model.MessageTemplate{checkOutTemplate()}, nil
			}
			return nil, nil
		},
	}
	scheduled := &mockScheduledMessageRepository{}
	guests := &mockGuestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Guest, error) { return testGuest(), nil },
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) { return testReservation(), nil },
	}
	contracts := &mockContractCreator{err: errors.New("contract service down")}
	svc := newTestScheduler(templates, scheduled, guests, reservations, contracts, &mockPublisher{}, t)

	result, err := svc.ScheduleForGuest(context.Background(), testGuest().ID)
	if err != nil {
		t.Fatalf("expected scheduling to proceed despite contract failure, got %v", err)
	}
	if contracts.created != 1 {
		t.Errorf("expected one contract attempt, got %d", contracts.created)
	}
	if len(result.Scheduled) != 1 {
		t.Errorf("expected one scheduled entry, got %d", len(result.Scheduled))
	}
}

func TestScheduleForGuest_SchedulesBeforeContract(t *testing.T) {
	persisted := 0
	scheduled := &mockScheduledMessageRepository{
		createFunc: func(ctx context.Context, entry *model.ScheduledMessageEntry) error {
			persisted++
			return nil
		},
	}
	templates := &mockTemplateRepository{
		findActiveByTriggerFunc: func(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
			if trigger == model.TriggerCheckOut {
				return []*model.MessageTemplate{checkOutTemplate()}, nil
			}
			return nil, nil
		},
	}
	guests := &mockGuestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Guest, error) { return testGuest(), nil },
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) { return testReservation(), nil },
	}
	contracts := &mockContractCreator{
		createFunc: func(guestID, reservationID string) error {
			if persisted != 1 {
				t.Errorf("expected scheduling before contract creation, %d entries persisted", persisted)
			}
			return nil
		},
	}
	svc := newTestScheduler(templates, scheduled, guests, reservations, contracts, &mockPublisher{}, t)

	if _, err := svc.ScheduleForGuest(context.Background(), testGuest().ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contracts.created != 1 {
		t.Errorf("expected one contract attempt, got %d", contracts.created)
	}
}

func TestCancelForReservation(t *testing.T) {
	scheduled := &mockScheduledMessageRepository{
		cancelForReservationFunc: func(ctx context.Context, reservationID string) (int64, error) {
			return 4, nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestScheduler(&mockTemplateRepository{}, scheduled, &mockGuestRepository{}, &mockReservationRepository{}, &mockContractCreator{}, publisher, t)

	count, err := svc.CancelForReservation(context.Background(), "665f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 cancelled, got %d", count)
	}
	if len(publisher.events) != 1 || publisher.events[0] != "messages.cancelled" {
		t.Errorf("expected a messages.cancelled event, got %v", publisher.events)
	}
}
