package service

import (
	"context"
	"strings"

	passcodesvc "stayops/internal/passcodes/service"
	reservationsrepo "stayops/internal/reservations/repository"
	"stayops/pkg/config"
	"stayops/pkg/locale"
	"stayops/pkg/model"
	"stayops/pkg/sanitizer"
)

const (
	dateFormat = "January 2, 2006"
	timeFormat = "15:04"
)

// Baseline variable keys every rendered message can rely on. Values default
// to empty strings so user-authored content never renders "null".
const (
	VarGuestName       = "guest_name"
	VarPropertyName    = "property_name"
	VarPropertyAddress = "property_address"
	VarCheckInDate     = "check_in_date"
	VarCheckInTime     = "check_in_time"
	VarCheckOutDate    = "check_out_date"
	VarCheckOutTime    = "check_out_time"
	VarHostName        = "host_name"
	VarHostPhone       = "host_phone"
)

// VariableResolver builds the substitution dictionary for a reservation's
// messages. Resolve is total: missing entities degrade to empty values.
type VariableResolver interface {
	Resolve(ctx context.Context, reservationID string) map[string]string
	Render(content string, vars map[string]string) string
}

type variableResolver struct {
	reservations reservationsrepo.ReservationRepository
	properties   reservationsrepo.PropertyRepository
	accessor     passcodesvc.PasscodeAccessor
	cfg          *config.Config
}

func NewVariableResolver(
	reservations reservationsrepo.ReservationRepository,
	properties reservationsrepo.PropertyRepository,
	accessor passcodesvc.PasscodeAccessor,
	cfg *config.Config,
) VariableResolver {
	return &variableResolver{
		reservations: reservations,
		properties:   properties,
		accessor:     accessor,
		cfg:          cfg,
	}
}

func baselineVariables() map[string]string {
	return map[string]string{
		VarGuestName:       "",
		VarPropertyName:    "",
		VarPropertyAddress: "",
		VarCheckInDate:     "",
		VarCheckInTime:     "",
		VarCheckOutDate:    "",
		VarCheckOutTime:    "",
		VarHostName:        "",
		VarHostPhone:       "",
	}
}

func (r *variableResolver) Resolve(ctx context.Context, reservationID string) map[string]string {
	vars := baselineVariables()

	reservation, err := r.reservations.FindByID(ctx, reservationID)
	if err != nil {
		r.cfg.Log.Warn("Variable resolver could not load reservation, returning defaults",
			"reservation_id", reservationID, "error", err)
		for key, value := range r.accessor.ResolveVariables(ctx, nil) {
			vars[key] = value
		}
		return vars
	}

	// Guest names arrive from upstream booking feeds with stray whitespace.
	vars[VarGuestName] = sanitizer.NormalizeName(reservation.GuestName)

	var property *model.Property
	property, err = r.properties.FindByID(ctx, reservation.PropertyID)
	if err != nil {
		r.cfg.Log.Warn("Variable resolver could not load property",
			"reservation_id", reservationID,
			"property_id", reservation.PropertyID,
			"error", err)
		property = nil
	}

	loc := locale.ResolveLocation("", "")
	if property != nil {
		vars[VarPropertyName] = property.Name
		vars[VarPropertyAddress] = property.Address
		vars[VarHostName] = property.HostName
		vars[VarHostPhone] = property.HostPhone
		loc = locale.ResolveLocation(property.TimeZone, property.HostPhone)
	}

	checkIn := reservation.CheckIn.In(loc)
	checkOut := reservation.CheckOut.In(loc)
	vars[VarCheckInDate] = checkIn.Format(dateFormat)
	vars[VarCheckInTime] = checkIn.Format(timeFormat)
	vars[VarCheckOutDate] = checkOut.Format(dateFormat)
	vars[VarCheckOutTime] = checkOut.Format(timeFormat)

	for key, value := range r.accessor.ResolveVariables(ctx, reservation) {
		vars[key] = value
	}

	return vars
}

// Render substitutes {{key}} and {key} spellings. Placeholders without a
// dictionary entry stay verbatim: content is user-authored and may name
// variables this system does not know.
func (r *variableResolver) Render(content string, vars map[string]string) string {
	if content == "" || len(vars) == 0 {
		return content
	}

	pairs := make([]string, 0, len(vars)*4)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value, "{"+key+"}", value)
	}

	return strings.NewReplacer(pairs...).Replace(content)
}
