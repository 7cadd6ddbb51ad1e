package notify

import (
	"context"
	"fmt"
	"time"

	"stayops/pkg/clock"
	"stayops/pkg/config"
	"stayops/pkg/locale"
	"stayops/pkg/model"
	"stayops/pkg/sanitizer"
)

const (
	stayDateFormat = "Jan 2 15:04"
)

// SendResult reports whether an operator notification went out. The
// dispatcher never returns an error: a failed send must not roll back the
// lifecycle transition that triggered it.
type SendResult struct {
	Delivered  bool
	ProviderID string
	Err        error
}

// SMSGateway is the outbound SMS surface.
type SMSGateway interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// EntryRecorder persists the host-notified timestamp after delivered sends.
type EntryRecorder interface {
	SetHostNotified(ctx context.Context, id string, at time.Time) error
}

type Dispatcher struct {
	gateway SMSGateway
	entries EntryRecorder
	clk     clock.Clock
	cfg     *config.Config
}

func NewDispatcher(gateway SMSGateway, entries EntryRecorder, clk clock.Clock, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		entries: entries,
		clk:     clk,
		cfg:     cfg,
	}
}

// ManualEntryRequested asks the host to set a door code for the stay.
func (d *Dispatcher) ManualEntryRequested(ctx context.Context, reservation *model.Reservation, property *model.Property, entry *model.PasscodeEntry) SendResult {
	body := fmt.Sprintf(
		"Action needed: set a door code for %s's stay at %s (%s - %s). Record it in the dashboard once programmed.",
		reservation.GuestName,
		property.Name,
		d.formatStayTime(reservation.CheckIn, property),
		d.formatStayTime(reservation.CheckOut, property),
	)

	return d.send(ctx, property, entry, body)
}

// PasscodeReady tells the host the vendor code is live on the lock.
func (d *Dispatcher) PasscodeReady(ctx context.Context, reservation *model.Reservation, property *model.Property, entry *model.PasscodeEntry) SendResult {
	code := ""
	if entry.Code != nil {
		code = *entry.Code
	}

	body := fmt.Sprintf(
		"Door code %s is ready for %s's stay at %s. Valid %s - %s.",
		code,
		reservation.GuestName,
		property.Name,
		d.formatStayTime(entry.ValidFrom, property),
		d.formatStayTime(entry.ValidUntil, property),
	)

	return d.send(ctx, property, entry, body)
}

// GenerationFailed warns the host the lock vendor rejected code creation.
// No entry exists on this path, so nothing is recorded.
func (d *Dispatcher) GenerationFailed(ctx context.Context, reservation *model.Reservation, property *model.Property, cause error) SendResult {
	body := fmt.Sprintf(
		"Door code generation failed for %s's stay at %s (check-in %s). The system keeps retrying; check the lock if this persists. Reason: %v",
		reservation.GuestName,
		property.Name,
		d.formatStayTime(reservation.CheckIn, property),
		cause,
	)

	return d.send(ctx, property, nil, body)
}

func (d *Dispatcher) send(ctx context.Context, property *model.Property, entry *model.PasscodeEntry, body string) SendResult {
	to := sanitizer.NormalizePhone(property.HostPhone)
	if to == "" {
		err := fmt.Errorf("host phone %q cannot be normalized to E.164", property.HostPhone)
		d.cfg.Log.Warn("Skipping operator notification, unusable host phone",
			"property_id", property.ID,
			"error", err,
		)
		return SendResult{Err: err}
	}

	providerID, err := d.gateway.Send(ctx, to, body)
	if err != nil {
		d.cfg.Log.Error("Operator notification failed",
			"property_id", property.ID,
			"to", to,
			"error", err,
		)
		return SendResult{Err: err}
	}

	if entry != nil && entry.ID != "" {
		if err := d.entries.SetHostNotified(ctx, entry.ID, d.clk.Now()); err != nil {
			d.cfg.Log.Warn("Failed to record host notification timestamp",
				"entry_id", entry.ID,
				"error", err,
			)
		}
	}

	return SendResult{Delivered: true, ProviderID: providerID}
}

func (d *Dispatcher) formatStayTime(t time.Time, property *model.Property) string {
	loc := locale.ResolveLocation(property.TimeZone, property.HostPhone)
	return t.In(loc).Format(stayDateFormat)
}
