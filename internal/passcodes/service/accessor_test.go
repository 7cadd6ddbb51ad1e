package service

import (
	"context"
	"errors"
	"testing"
	"time"

	passcodeserrors "stayops/internal/passcodes/errors"
	"stayops/pkg/model"
)

func newTestAccessor(repo *mockPasscodeRepository, properties *mockPropertyRepository) *passcodeAccessor {
	return &passcodeAccessor{
		repo:         repo,
		propertyRepo: properties,
		cfg:          testConfig(),
	}
}

func TestResolveVariables_NilReservation(t *testing.T) {
	accessor := newTestAccessor(&mockPasscodeRepository{}, &mockPropertyRepository{})

	vars := accessor.ResolveVariables(context.Background(), nil)

	if vars[VarDoorCode] != "" {
		t.Errorf("expected empty door code, got %q", vars[VarDoorCode])
	}
	if vars[VarDoorInstr] != pendingPhrase {
		t.Errorf("expected pending phrase, got %q", vars[VarDoorInstr])
	}
}

func TestResolveVariables_PropertyLookupFails(t *testing.T) {
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return nil, errors.New("mongo down")
		},
	}
	accessor := newTestAccessor(&mockPasscodeRepository{}, properties)

	vars := accessor.ResolveVariables(context.Background(), confirmedReservation())

	if vars[VarDoorInstr] != pendingPhrase {
		t.Errorf("expected pending phrase on lookup failure, got %q", vars[VarDoorInstr])
	}
}

func TestResolveVariables_Traditional(t *testing.T) {
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			property := vendorProperty()
			property.Access = model.AccessConfig{Mode: model.AccessTraditional, Instructions: "Ring the bell twice."}
			return property, nil
		},
	}
	accessor := newTestAccessor(&mockPasscodeRepository{}, properties)

	vars := accessor.ResolveVariables(context.Background(), confirmedReservation())

	if vars[VarDoorCode] != "" {
		t.Errorf("expected empty door code, got %q", vars[VarDoorCode])
	}
	want := traditionalPhrase + " Ring the bell twice."
	if vars[VarDoorInstr] != want {
		t.Errorf("expected %q, got %q", want, vars[VarDoorInstr])
	}
}

func TestResolveVariables_PendingEntry(t *testing.T) {
	repo := &mockPasscodeRepository{
		findCurrentByReservationFunc: func(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
			return &model.PasscodeEntry{Status: model.PasscodePending, Method: model.MethodManual}, nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			property := vendorProperty()
			property.Access.Mode = model.AccessManual
			return property, nil
		},
	}
	accessor := newTestAccessor(repo, properties)

	vars := accessor.ResolveVariables(context.Background(), confirmedReservation())

	if vars[VarDoorCode] != "" {
		t.Errorf("expected empty code for pending entry, got %q", vars[VarDoorCode])
	}
	if vars[VarDoorInstr] != pendingPhrase {
		t.Errorf("expected pending phrase, got %q", vars[VarDoorInstr])
	}
}

func TestResolveVariables_NoEntry(t *testing.T) {
	repo := &mockPasscodeRepository{
		findCurrentByReservationFunc: func(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
			return nil, passcodeserrors.ErrNotFound
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return vendorProperty(), nil
		},
	}
	accessor := newTestAccessor(repo, properties)

	vars := accessor.ResolveVariables(context.Background(), confirmedReservation())

	if vars[VarDoorInstr] != pendingPhrase {
		t.Errorf("expected pending phrase when no entry exists, got %q", vars[VarDoorInstr])
	}
}

func TestResolveVariables_ActiveEntry(t *testing.T) {
	code := "948271"
	repo := &mockPasscodeRepository{
		findCurrentByReservationFunc: func(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
			return &model.PasscodeEntry{
				Status:     model.PasscodeActive,
				Method:     model.MethodAuto,
				Code:       &code,
				ValidFrom:  time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
				ValidUntil: time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	properties := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			property := vendorProperty()
			property.TimeZone = "UTC"
			property.Access.Instructions = "Side entrance."
			return property, nil
		},
	}
	accessor := newTestAccessor(repo, properties)

	vars := accessor.ResolveVariables(context.Background(), confirmedReservation())

	if vars[VarDoorCode] != code {
		t.Errorf("expected code %q, got %q", code, vars[VarDoorCode])
	}
	if vars[VarDoorValidFrom] != "Jun 1, 13:00" {
		t.Errorf("expected formatted valid_from, got %q", vars[VarDoorValidFrom])
	}
	if vars[VarDoorValidUntil] != "Jun 3, 12:00" {
		t.Errorf("expected formatted valid_until, got %q", vars[VarDoorValidUntil])
	}
	want := "Your door code is 948271, valid from Jun 1, 13:00 until Jun 3, 12:00. Side entrance."
	if vars[VarDoorInstr] != want {
		t.Errorf("expected %q, got %q", want, vars[VarDoorInstr])
	}
}
