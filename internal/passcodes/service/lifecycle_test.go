package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stayops/internal/events"
	"stayops/internal/lockvendor"
	"stayops/internal/notify"
	passcodeserrors "stayops/internal/passcodes/errors"
	reservationserrors "stayops/internal/reservations/errors"
	"stayops/pkg/config"
	apperrors "stayops/pkg/errors"
	"stayops/pkg/logger"
	"stayops/pkg/model"
)

// Mock repositories and collaborators for testing

type mockPasscodeRepository struct {
	createFunc                   func(ctx context.Context, entry *model.PasscodeEntry) error
	findByIDFunc                 func(ctx context.Context, id string) (*model.PasscodeEntry, error)
	findCurrentByReservationFunc func(ctx context.Context, reservationID string) (*model.PasscodeEntry, error)
	setCodeFunc                  func(ctx context.Context, id string, code string) (*model.PasscodeEntry, error)
	setStatusFunc                func(ctx context.Context, id string, status model.PasscodeStatus) error
	setHostNotifiedFunc          func(ctx context.Context, id string, at time.Time) error
	expireDueFunc                func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockPasscodeRepository) Create(ctx context.Context, entry *model.PasscodeEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	return nil
}

func (m *mockPasscodeRepository) FindByID(ctx context.Context, id string) (*model.PasscodeEntry, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, passcodeserrors.ErrNotFound
}

func (m *mockPasscodeRepository) FindCurrentByReservation(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
	if m.findCurrentByReservationFunc != nil {
		return m.findCurrentByReservationFunc(ctx, reservationID)
	}
	return nil, passcodeserrors.ErrNotFound
}

func (m *mockPasscodeRepository) SetCode(ctx context.Context, id string, code string) (*model.PasscodeEntry, error) {
	if m.setCodeFunc != nil {
		return m.setCodeFunc(ctx, id, code)
	}
	return nil, passcodeserrors.ErrNotFound
}

func (m *mockPasscodeRepository) SetStatus(ctx context.Context, id string, status model.PasscodeStatus) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockPasscodeRepository) SetHostNotified(ctx context.Context, id string, at time.Time) error {
	if m.setHostNotifiedFunc != nil {
		return m.setHostNotifiedFunc(ctx, id, at)
	}
	return nil
}

func (m *mockPasscodeRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	if m.expireDueFunc != nil {
		return m.expireDueFunc(ctx, now)
	}
	return 0, nil
}

type mockReservationRepository struct {
	findByIDFunc             func(ctx context.Context, id string) (*model.Reservation, error)
	findUpcomingCheckInsFunc func(ctx context.Context, from, to time.Time) ([]*model.Reservation, error)
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationserrors.ErrReservationNotFound
}

func (m *mockReservationRepository) FindUpcomingCheckIns(ctx context.Context, from, to time.Time) ([]*model.Reservation, error) {
	if m.findUpcomingCheckInsFunc != nil {
		return m.findUpcomingCheckInsFunc(ctx, from, to)
	}
	return nil, nil
}

type mockPropertyRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Property, error)
}

func (m *mockPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationserrors.ErrPropertyNotFound
}

type mockLockVendor struct {
	createTemporaryCodeFunc func(ctx context.Context, deviceID string, validFrom, validUntil time.Time) (*lockvendor.TemporaryCode, error)
	deleteCodeFunc          func(ctx context.Context, deviceID, codeID string) error
	deletedCodes            []string
}

func (m *mockLockVendor) CreateTemporaryCode(ctx context.Context, deviceID string, validFrom, validUntil time.Time) (*lockvendor.TemporaryCode, error) {
	if m.createTemporaryCodeFunc != nil {
		return m.createTemporaryCodeFunc(ctx, deviceID, validFrom, validUntil)
	}
	return &lockvendor.TemporaryCode{Code: "123456", CodeID: "vc-1"}, nil
}

func (m *mockLockVendor) DeleteCode(ctx context.Context, deviceID, codeID string) error {
	m.deletedCodes = append(m.deletedCodes, codeID)
	if m.deleteCodeFunc != nil {
		return m.deleteCodeFunc(ctx, deviceID, codeID)
	}
	return nil
}

type mockNotifier struct {
	manualRequested int
	ready           int
	failed          int
	result          notify.SendResult
}

func (m *mockNotifier) ManualEntryRequested(ctx context.Context, reservation *model.Reservation, property *model.Property, entry *model.PasscodeEntry) notify.SendResult {
	m.manualRequested++
	return m.result
}

func (m *mockNotifier) PasscodeReady(ctx context.Context, reservation *model.Reservation, property *model.Property, entry *model.PasscodeEntry) notify.SendResult {
	m.ready++
	return m.result
}

func (m *mockNotifier) GenerationFailed(ctx context.Context, reservation *model.Reservation, property *model.Property, cause error) notify.SendResult {
	m.failed++
	return m.result
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		PasscodeLeadTime:       3 * time.Hour,
		PasscodeValidityBuffer: time.Hour,
	}
}

func newTestLifecycle(repo *mockPasscodeRepository, reservations *mockReservationRepository, properties *mockPropertyRepository, vendor *mockLockVendor, notifier *mockNotifier) *passcodeLifecycle {
	return &passcodeLifecycle{
		repo:            repo,
		reservationRepo: reservations,
		propertyRepo:    properties,
		vendor:          vendor,
		notifier:        notifier,
		publisher:       events.NewNop(),
		cfg:             testConfig(),
	}
}

func confirmedReservation() *model.Reservation {
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

func vendorProperty() *model.Property {
	return &model.Property{
		ID:        "665f1f77bcf86cd799439022",
		Name:      "Seaside Loft",
		Address:   "1 Beach Rd",
		HostName:  "Avi Host",
		HostPhone: "+972501234567",
		Access: model.AccessConfig{
			Mode:      model.AccessVendorLock,
			DeviceIDs: []string{"lock-front-door"},
		},
	}
}

func appErrorCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestComputeValidityWindow(t *testing.T) {
	svc := newTestLifecycle(&mockPasscodeRepository{}, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})

	checkIn := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC)

	validFrom, validUntil := svc.ComputeValidityWindow(checkIn, checkOut)

	if want := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC); !validFrom.Equal(want) {
		t.Errorf("expected valid_from %v, got %v", want, validFrom)
	}
	if want := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC); !validUntil.Equal(want) {
		t.Errorf("expected valid_until %v, got %v", want, validUntil)
	}
}

func TestShouldGenerate_WindowBoundary(t *testing.T) {
	svc := newTestLifecycle(&mockPasscodeRepository{}, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})
	reservation := confirmedReservation()

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before window", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), false},
		{"five minutes before window", time.Date(2025, 6, 1, 10, 55, 0, 0, time.UTC), false},
		{"window boundary instant", time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), true},
		{"inside window", time.Date(2025, 6, 1, 11, 5, 0, 0, time.UTC), true},
		{"after check-in", time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range cases {
		got, err := svc.ShouldGenerate(context.Background(), reservation, tc.now)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestShouldGenerate_IneligibleStatus(t *testing.T) {
	svc := newTestLifecycle(&mockPasscodeRepository{}, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, status := range []model.ReservationStatus{model.ReservationCancelled, model.ReservationBlocked} {
		reservation := confirmedReservation()
		reservation.Status = status

		got, err := svc.ShouldGenerate(context.Background(), reservation, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Errorf("status %s: expected ShouldGenerate to be false", status)
		}
	}
}

func TestShouldGenerate_ExistingEntryBlocks(t *testing.T) {
	repo := &mockPasscodeRepository{
		findCurrentByReservationFunc: func(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
			return &model.PasscodeEntry{ID: "entry-1", Status: model.PasscodeActive}, nil
		},
	}
	svc := newTestLifecycle(repo, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})

	got, err := svc.ShouldGenerate(context.Background(), confirmedReservation(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected ShouldGenerate to be false when an entry exists")
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	created := 0
	var stored *model.PasscodeEntry
	repo := &mockPasscodeRepository{
		createFunc: func(ctx context.Context, entry *model.PasscodeEntry) error {
			created++
			entry.ID = "665f1f77bcf86cd799439099"
			stored = entry
			return nil
		},
		findCurrentByReservationFunc: func(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
			if stored != nil {
				return stored, nil
			}
			return nil, passcodeserrors.ErrNotFound
		},
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return vendorProperty(), nil
		},
	}
	svc := newTestLifecycle(repo, reservations, properties, &mockLockVendor{}, &mockNotifier{})

	first, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	if first.Entry == nil || first.Entry.Status != model.PasscodeActive {
		t.Fatalf("expected an active entry, got %+v", first.Entry)
	}

	_, err = svc.Generate(context.Background(), confirmedReservation().ID)
	if err == nil {
		t.Fatal("expected second generate to fail")
	}
	if code := appErrorCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected conflict code, got %s", code)
	}
	if !errors.Is(err, passcodeserrors.ErrAlreadyExists) {
		t.Error("expected ErrAlreadyExists in the chain")
	}
	if created != 1 {
		t.Errorf("expected exactly one persisted entry, got %d", created)
	}
}

func TestGenerate_Traditional(t *testing.T) {
	created := 0
	repo := &mockPasscodeRepository{
		createFunc: func(ctx context.Context, entry *model.PasscodeEntry) error {
			created++
			return nil
		},
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			property := vendorProperty()
			property.Access = model.AccessConfig{Mode: model.AccessTraditional}
			return property, nil
		},
	}
	notifier := &mockNotifier{result: notify.SendResult{Delivered: true}}
	svc := newTestLifecycle(repo, reservations, properties, &mockLockVendor{}, notifier)

	result, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mode != model.AccessTraditional {
		t.Errorf("expected traditional mode, got %s", result.Mode)
	}
	if result.Entry != nil {
		t.Error("expected no entry for traditional access")
	}
	if created != 0 {
		t.Errorf("expected nothing persisted, got %d creates", created)
	}
	if notifier.manualRequested+notifier.ready+notifier.failed != 0 {
		t.Error("expected no notifications for traditional access")
	}
}

func TestGenerate_Manual(t *testing.T) {
	var stored *model.PasscodeEntry
	repo := &mockPasscodeRepository{
		createFunc: func(ctx context.Context, entry *model.PasscodeEntry) error {
			entry.ID = "665f1f77bcf86cd799439099"
			stored = entry
			return nil
		},
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			property := vendorProperty()
			property.Access = model.AccessConfig{Mode: model.AccessManual, Instructions: "Lockbox by the gate"}
			return property, nil
		},
	}
	notifier := &mockNotifier{result: notify.SendResult{Delivered: true}}
	svc := newTestLifecycle(repo, reservations, properties, &mockLockVendor{}, notifier)

	result, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.RequiresManualEntry {
		t.Error("expected requires_manual_entry")
	}
	if stored == nil {
		t.Fatal("expected an entry to be persisted")
	}
	if stored.Status != model.PasscodePending {
		t.Errorf("expected pending status, got %s", stored.Status)
	}
	if stored.Code != nil {
		t.Errorf("expected nil code, got %v", *stored.Code)
	}
	if stored.Method != model.MethodManual {
		t.Errorf("expected manual method, got %s", stored.Method)
	}
	if notifier.manualRequested != 1 {
		t.Errorf("expected one manual-entry notification, got %d", notifier.manualRequested)
	}
}

func TestGenerate_VendorSuccess(t *testing.T) {
	var stored *model.PasscodeEntry
	repo := &mockPasscodeRepository{
		createFunc: func(ctx context.Context, entry *model.PasscodeEntry) error {
			entry.ID = "665f1f77bcf86cd799439099"
			stored = entry
			return nil
		},
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return vendorProperty(), nil
		},
	}
	vendor := &mockLockVendor{
		createTemporaryCodeFunc: func(ctx context.Context, deviceID string, validFrom, validUntil time.Time) (*lockvendor.TemporaryCode, error) {
			if deviceID != "lock-front-door" {
				t.Errorf("expected primary device, got %s", deviceID)
			}
			if want := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC); !validFrom.Equal(want) {
				t.Errorf("expected valid_from %v, got %v", want, validFrom)
			}
			return &lockvendor.TemporaryCode{Code: "948271", CodeID: "vc-42"}, nil
		},
	}
	notifier := &mockNotifier{result: notify.SendResult{Delivered: true}}
	svc := newTestLifecycle(repo, reservations, properties, vendor, notifier)

	result, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mode != model.AccessVendorLock {
		t.Errorf("expected vendor_lock mode, got %s", result.Mode)
	}
	if stored == nil || stored.Code == nil || *stored.Code != "948271" {
		t.Fatalf("expected stored active entry with vendor code, got %+v", stored)
	}
	if stored.Status != model.PasscodeActive {
		t.Errorf("expected active status, got %s", stored.Status)
	}
	if stored.Vendor == nil || stored.Vendor.CodeID != "vc-42" {
		t.Errorf("expected vendor metadata with code id, got %+v", stored.Vendor)
	}
	if notifier.ready != 1 {
		t.Errorf("expected one ready notification, got %d", notifier.ready)
	}
}

func TestGenerate_VendorDeviceIDsSanitized(t *testing.T) {
	repo := &mockPasscodeRepository{
		createFunc: func(ctx context.Context, entry *model.PasscodeEntry) error { return nil },
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			property := vendorProperty()
			property.Access.DeviceIDs = []string{"  ", " lock-front-door ", "lock-front-door"}
			return property, nil
		},
	}
	vendor := &mockLockVendor{
		createTemporaryCodeFunc: func(ctx context.Context, deviceID string, validFrom, validUntil time.Time) (*lockvendor.TemporaryCode, error) {
			if deviceID != "lock-front-door" {
				t.Errorf("expected trimmed primary device, got %q", deviceID)
			}
			return &lockvendor.TemporaryCode{Code: "948271", CodeID: "vc-42"}, nil
		},
	}
	svc := newTestLifecycle(repo, reservations, properties, vendor, &mockNotifier{result: notify.SendResult{Delivered: true}})

	if _, err := svc.Generate(context.Background(), confirmedReservation().ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Blank-only device lists read as unconfigured.
	properties.findByIDFunc = func(ctx context.Context, id string) (*model.Property, error) {
		property := vendorProperty()
		property.Access.DeviceIDs = []string{"   ", ""}
		return property, nil
	}
	_, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err == nil {
		t.Fatal("expected generate to fail with only blank device ids")
	}
	if code := appErrorCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected validation code, got %s", code)
	}
}

func TestGenerate_VendorFailurePersistsNothing(t *testing.T) {
	created := 0
	repo := &mockPasscodeRepository{
		createFunc: func(ctx context.Context, entry *model.PasscodeEntry) error {
			created++
			return nil
		},
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return vendorProperty(), nil
		},
	}
	vendor := &mockLockVendor{
		createTemporaryCodeFunc: func(ctx context.Context, deviceID string, validFrom, validUntil time.Time) (*lockvendor.TemporaryCode, error) {
			return nil, errors.New("vendor 503")
		},
	}
	notifier := &mockNotifier{result: notify.SendResult{Delivered: true}}
	svc := newTestLifecycle(repo, reservations, properties, vendor, notifier)

	_, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err == nil {
		t.Fatal("expected generate to fail")
	}
	if code := appErrorCode(t, err); code != apperrors.CodeVendorFailure {
		t.Errorf("expected vendor failure code, got %s", code)
	}
	if created != 0 {
		t.Errorf("expected nothing persisted, got %d creates", created)
	}
	if notifier.failed != 1 {
		t.Errorf("expected one generation-failed notification, got %d", notifier.failed)
	}

	// The slot stays free: the next sweep tick may retry.
	ok, err := svc.ShouldGenerate(context.Background(), confirmedReservation(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected ShouldGenerate to stay true after a vendor failure")
	}
}

func TestGenerate_VendorNoDevices(t *testing.T) {
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			property := vendorProperty()
			property.Access.DeviceIDs = nil
			return property, nil
		},
	}
	svc := newTestLifecycle(&mockPasscodeRepository{}, reservations, properties, &mockLockVendor{}, &mockNotifier{})

	_, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err == nil {
		t.Fatal("expected generate to fail without devices")
	}
	if code := appErrorCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected validation code, got %s", code)
	}
}

func TestGenerate_DuplicateRaceCleansVendorCode(t *testing.T) {
	repo := &mockPasscodeRepository{
		createFunc: func(ctx context.Context, entry *model.PasscodeEntry) error {
			return passcodeserrors.ErrAlreadyExists
		},
	}
	reservations := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return confirmedReservation(), nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return vendorProperty(), nil
		},
	}
	vendor := &mockLockVendor{}
	svc := newTestLifecycle(repo, reservations, properties, vendor, &mockNotifier{result: notify.SendResult{Delivered: true}})

	_, err := svc.Generate(context.Background(), confirmedReservation().ID)
	if err == nil {
		t.Fatal("expected conflict")
	}
	if code := appErrorCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected conflict code, got %s", code)
	}
	if len(vendor.deletedCodes) != 1 || vendor.deletedCodes[0] != "vc-1" {
		t.Errorf("expected the orphaned vendor code to be deleted, got %v", vendor.deletedCodes)
	}
}

func TestRecordManualCode(t *testing.T) {
	code := "4821"
	entry := &model.PasscodeEntry{
		ID:            "665f1f77bcf86cd799439099",
		ReservationID: "665f1f77bcf86cd799439011",
		Method:        model.MethodManual,
		Status:        model.PasscodePending,
	}
	repo := &mockPasscodeRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.PasscodeEntry, error) {
			return entry, nil
		},
		setCodeFunc: func(ctx context.Context, id string, c string) (*model.PasscodeEntry, error) {
			updated := *entry
			updated.Code = &c
			updated.Status = model.PasscodeActive
			return &updated, nil
		},
	}
	svc := newTestLifecycle(repo, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})

	updated, err := svc.RecordManualCode(context.Background(), entry.ID, code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.PasscodeActive {
		t.Errorf("expected active status, got %s", updated.Status)
	}
	if updated.Code == nil || *updated.Code != code {
		t.Errorf("expected code %q, got %v", code, updated.Code)
	}
}

func TestRecordManualCode_NotManual(t *testing.T) {
	repo := &mockPasscodeRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.PasscodeEntry, error) {
			return &model.PasscodeEntry{ID: id, Method: model.MethodAuto, Status: model.PasscodeActive}, nil
		},
	}
	svc := newTestLifecycle(repo, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})

	_, err := svc.RecordManualCode(context.Background(), "665f1f77bcf86cd799439099", "4821")
	if err == nil {
		t.Fatal("expected failure on a vendor entry")
	}
	if code := appErrorCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected conflict code, got %s", code)
	}
	if !errors.Is(err, passcodeserrors.ErrNotManual) {
		t.Error("expected ErrNotManual in the chain")
	}
}

func TestRecordManualCode_TerminalEntryStaysDown(t *testing.T) {
	for _, status := range []model.PasscodeStatus{model.PasscodeRevoked, model.PasscodeExpired, model.PasscodeActive} {
		setCodeCalls := 0
		repo := &mockPasscodeRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.PasscodeEntry, error) {
				return &model.PasscodeEntry{
					ID:            id,
					ReservationID: "665f1f77bcf86cd799439011",
					Method:        model.MethodManual,
					Status:        status,
				}, nil
			},
			setCodeFunc: func(ctx context.Context, id string, c string) (*model.PasscodeEntry, error) {
				setCodeCalls++
				return &model.PasscodeEntry{ID: id, Status: model.PasscodeActive, Code: &c}, nil
			},
		}
		svc := newTestLifecycle(repo, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})

		_, err := svc.RecordManualCode(context.Background(), "665f1f77bcf86cd799439099", "4821")
		if err == nil {
			t.Fatalf("status %s: expected recording to be rejected", status)
		}
		if code := appErrorCode(t, err); code != apperrors.CodeConflict {
			t.Errorf("status %s: expected conflict code, got %s", status, code)
		}
		if !errors.Is(err, passcodeserrors.ErrNotPending) {
			t.Errorf("status %s: expected ErrNotPending in the chain", status)
		}
		if setCodeCalls != 0 {
			t.Errorf("status %s: expected no write, got %d", status, setCodeCalls)
		}
	}
}

func TestRevoke_VendorDeleteBestEffort(t *testing.T) {
	var revoked string
	repo := &mockPasscodeRepository{
		findCurrentByReservationFunc: func(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
			return &model.PasscodeEntry{
				ID:            "665f1f77bcf86cd799439099",
				ReservationID: reservationID,
				Method:        model.MethodAuto,
				Status:        model.PasscodeActive,
				Vendor:        &model.VendorMetadata{DeviceID: "lock-front-door", CodeID: "vc-42"},
			}, nil
		},
		setStatusFunc: func(ctx context.Context, id string, status model.PasscodeStatus) error {
			if status == model.PasscodeRevoked {
				revoked = id
			}
			return nil
		},
	}
	vendor := &mockLockVendor{
		deleteCodeFunc: func(ctx context.Context, deviceID, codeID string) error {
			return errors.New("vendor unreachable")
		},
	}
	svc := newTestLifecycle(repo, &mockReservationRepository{}, &mockPropertyRepository{}, vendor, &mockNotifier{})

	if err := svc.Revoke(context.Background(), "665f1f77bcf86cd799439011"); err != nil {
		t.Fatalf("expected revoke to succeed despite vendor failure, got %v", err)
	}
	if revoked != "665f1f77bcf86cd799439099" {
		t.Errorf("expected the entry to be revoked, got %q", revoked)
	}
	if len(vendor.deletedCodes) != 1 {
		t.Errorf("expected a vendor delete attempt, got %d", len(vendor.deletedCodes))
	}
}

func TestExpireDue(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockPasscodeRepository{
		expireDueFunc: func(ctx context.Context, got time.Time) (int64, error) {
			if !got.Equal(now) {
				t.Errorf("expected cutoff %v, got %v", now, got)
			}
			return 3, nil
		},
	}
	svc := newTestLifecycle(repo, &mockReservationRepository{}, &mockPropertyRepository{}, &mockLockVendor{}, &mockNotifier{})

	count, err := svc.ExpireDue(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 expired, got %d", count)
	}
}
