package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	passcodeservice "stayops/internal/passcodes/service"
	reservationsrepo "stayops/internal/reservations/repository"
	"stayops/pkg/clock"
	"stayops/pkg/config"
	apperrors "stayops/pkg/errors"
	"stayops/pkg/model"
)

// Status is a point-in-time snapshot of the sweep loop, served over the
// status endpoint.
type Status struct {
	Running          bool       `json:"running"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	LastTickAt       *time.Time `json:"last_tick_at,omitempty"`
	LastTickDuration string     `json:"last_tick_duration,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
	Ticks            int64      `json:"ticks"`
	GeneratedCodes   int64      `json:"generated_codes"`
	ExpiredCodes     int64      `json:"expired_codes"`
	ItemFailures     int64      `json:"item_failures"`
}

// Sweeper is the periodic scheduler driving passcode generation and expiry
// outside the request cycle. One instance per deployment; correctness under
// replays comes from Generate's idempotency guard, not from the loop.
type Sweeper struct {
	reservations reservationsrepo.ReservationRepository
	lifecycle    passcodeservice.PasscodeLifecycle
	clk          clock.Clock
	cfg          *config.Config

	mu     sync.Mutex
	status Status

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(
	reservations reservationsrepo.ReservationRepository,
	lifecycle passcodeservice.PasscodeLifecycle,
	clk clock.Clock,
	cfg *config.Config,
) *Sweeper {
	return &Sweeper{
		reservations: reservations,
		lifecycle:    lifecycle,
		clk:          clk,
		cfg:          cfg,
		stopCh:       make(chan struct{}),
	}
}

func (s *Sweeper) Name() string {
	return "passcode-sweeper"
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called. A panicking tick is recovered and the loop resumes after a
// backoff.
func (s *Sweeper) Start(ctx context.Context) error {
	startedAt := s.clk.Now()
	s.mu.Lock()
	s.status.Running = true
	s.status.StartedAt = &startedAt
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.status.Running = false
		s.mu.Unlock()
	}()

	s.cfg.Log.Info("Sweep scheduler started",
		"interval", s.cfg.SweepInterval,
		"lookahead", s.cfg.SweepLookahead,
	)

	ticker := s.clk.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	// First sweep runs immediately so a restart never waits a full
	// interval with codes due.
	s.safeTick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.cfg.Log.Info("Sweep scheduler stopping, context done")
			return ctx.Err()
		case <-s.stopCh:
			s.cfg.Log.Info("Sweep scheduler stopped")
			return nil
		case <-ticker.C():
			s.safeTick(ctx)
		}
	}
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Sweeper) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// safeTick shields the loop from a panicking tick.
func (s *Sweeper) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Log.Error("Sweep tick panicked, backing off",
				"panic", r,
				"backoff", s.cfg.SweepFailureBackoff,
			)
			s.recordError(fmt.Errorf("tick panic: %v", r))
			s.clk.Sleep(s.cfg.SweepFailureBackoff)
		}
	}()

	s.tick(ctx)
}

func (s *Sweeper) tick(ctx context.Context) {
	now := s.clk.Now()
	tickStart := now

	generated, failures := s.generateDueCodes(ctx, now)
	expired := s.expireDueCodes(ctx, now)

	duration := s.clk.Now().Sub(tickStart)

	s.mu.Lock()
	s.status.Ticks++
	s.status.LastTickAt = &tickStart
	s.status.LastTickDuration = duration.String()
	s.status.GeneratedCodes += generated
	s.status.ExpiredCodes += expired
	s.status.ItemFailures += failures
	s.mu.Unlock()

	s.cfg.Log.Debug("Sweep tick completed",
		"generated", generated,
		"expired", expired,
		"failures", failures,
		"duration", duration,
	)
}

func (s *Sweeper) generateDueCodes(ctx context.Context, now time.Time) (generated, failures int64) {
	candidates, err := s.reservations.FindUpcomingCheckIns(ctx, now, now.Add(s.cfg.SweepLookahead))
	if err != nil {
		s.cfg.Log.Error("Sweep could not load candidate reservations", "error", err)
		s.recordError(err)
		return 0, 0
	}

	for _, reservation := range candidates {
		created, failed := s.processReservation(ctx, reservation, now)
		if created {
			generated++
		}
		if failed {
			failures++
		}
	}

	return generated, failures
}

// processReservation handles one candidate in isolation: a panic or error
// here never aborts the rest of the batch. Skips are neither created nor
// failed.
func (s *Sweeper) processReservation(ctx context.Context, reservation *model.Reservation, now time.Time) (created, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Log.Error("Sweep item panicked",
				"reservation_id", reservation.ID,
				"panic", r,
			)
			created, failed = false, true
		}
	}()

	should, err := s.lifecycle.ShouldGenerate(ctx, reservation, now)
	if err != nil {
		s.cfg.Log.Error("Sweep could not evaluate reservation",
			"reservation_id", reservation.ID,
			"error", err,
		)
		return false, true
	}
	if !should {
		return false, false
	}

	if _, err := s.lifecycle.Generate(ctx, reservation.ID); err != nil {
		// A concurrent writer beat us to it; that is the guard working.
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeConflict {
			s.cfg.Log.Debug("Sweep lost generation race, entry already exists",
				"reservation_id", reservation.ID,
			)
			return false, false
		}
		s.cfg.Log.Error("Sweep failed to generate passcode",
			"reservation_id", reservation.ID,
			"check_in", reservation.CheckIn,
			"error", err,
		)
		return false, true
	}

	return true, false
}

func (s *Sweeper) expireDueCodes(ctx context.Context, now time.Time) int64 {
	count, err := s.lifecycle.ExpireDue(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Sweep failed to expire passcodes", "error", err)
		s.recordError(err)
		return 0
	}
	return count
}

func (s *Sweeper) recordError(err error) {
	s.mu.Lock()
	s.status.LastError = err.Error()
	s.mu.Unlock()
}
