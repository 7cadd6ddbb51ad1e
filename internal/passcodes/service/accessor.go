package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	passcodeserrors "stayops/internal/passcodes/errors"
	"stayops/internal/passcodes/repository"
	reservationsrepo "stayops/internal/reservations/repository"
	"stayops/pkg/config"
	"stayops/pkg/locale"
	"stayops/pkg/model"
	"stayops/pkg/sanitizer"
)

const (
	accessTimeFormat = "Jan 2, 15:04"

	pendingPhrase     = "Your door code will be provided before check-in."
	traditionalPhrase = "Check-in is in person; our team will hand over the keys at arrival."
)

// Variable keys the accessor contributes to message rendering.
const (
	VarDoorCode       = "door_code"
	VarDoorValidFrom  = "door_code_valid_from"
	VarDoorValidUntil = "door_code_valid_until"
	VarDoorInstr      = "door_instructions"
)

// PasscodeAccessor is the guest-facing read side of the code lifecycle. It
// never fails: any miss or repository error degrades to pending phrasing so
// rendering can always proceed.
type PasscodeAccessor interface {
	ResolveVariables(ctx context.Context, reservation *model.Reservation) map[string]string
}

type passcodeAccessor struct {
	repo         repository.PasscodeRepository
	propertyRepo reservationsrepo.PropertyRepository
	cfg          *config.Config
}

func NewPasscodeAccessor(
	repo repository.PasscodeRepository,
	propertyRepo reservationsrepo.PropertyRepository,
	cfg *config.Config,
) PasscodeAccessor {
	return &passcodeAccessor{
		repo:         repo,
		propertyRepo: propertyRepo,
		cfg:          cfg,
	}
}

func (a *passcodeAccessor) ResolveVariables(ctx context.Context, reservation *model.Reservation) map[string]string {
	vars := map[string]string{
		VarDoorCode:       "",
		VarDoorValidFrom:  "",
		VarDoorValidUntil: "",
		VarDoorInstr:      pendingPhrase,
	}

	if reservation == nil {
		return vars
	}

	property, err := a.propertyRepo.FindByID(ctx, reservation.PropertyID)
	if err != nil {
		a.cfg.Log.Warn("Passcode accessor could not load property, degrading to pending phrasing",
			"reservation_id", reservation.ID,
			"property_id", reservation.PropertyID,
			"error", err,
		)
		return vars
	}

	switch property.Access.Mode {
	case model.AccessTraditional:
		vars[VarDoorInstr] = composeInstructions(traditionalPhrase, property.Access.Instructions)
		return vars

	case model.AccessManual, model.AccessVendorLock:
		entry, err := a.repo.FindCurrentByReservation(ctx, reservation.ID)
		if err != nil {
			if !errors.Is(err, passcodeserrors.ErrNotFound) {
				a.cfg.Log.Warn("Passcode accessor could not load entry, degrading to pending phrasing",
					"reservation_id", reservation.ID,
					"error", err,
				)
			}
			return vars
		}

		if entry.Status != model.PasscodeActive || entry.Code == nil {
			return vars
		}

		loc := locale.ResolveLocation(property.TimeZone, property.HostPhone)
		vars[VarDoorCode] = *entry.Code
		vars[VarDoorValidFrom] = formatAccessTime(entry.ValidFrom, loc)
		vars[VarDoorValidUntil] = formatAccessTime(entry.ValidUntil, loc)
		vars[VarDoorInstr] = composeInstructions(
			fmt.Sprintf("Your door code is %s, valid from %s until %s.",
				*entry.Code,
				formatAccessTime(entry.ValidFrom, loc),
				formatAccessTime(entry.ValidUntil, loc),
			),
			property.Access.Instructions,
		)
		return vars

	default:
		a.cfg.Log.Warn("Passcode accessor saw an unknown access mode",
			"property_id", property.ID,
			"mode", property.Access.Mode,
		)
		return vars
	}
}

func formatAccessTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(accessTimeFormat)
}

func composeInstructions(lead, propertyText string) string {
	propertyText = sanitizer.NormalizeFreeText(propertyText)
	if propertyText == "" {
		return lead
	}
	return strings.TrimSpace(lead + " " + propertyText)
}
