package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"insurance-ledger/internal/ledger"
	"insurance-ledger/internal/oracle"
	"insurance-ledger/internal/services"

	"github.com/robfig/cron/v3"
)

// Scheduler is the periodic-wake collaborator: on every tick it finds the
// policies whose stored next-evaluation instant has passed and runs the
// automatic-claim path for each. A policy with a transient oracle failure
// keeps its evaluation instant and is simply retried on a later tick.
type Scheduler struct {
	cron       *cron.Cron
	store      *ledger.Store
	autoClaims *services.AutoClaimService
	spec       string
}

func New(store *ledger.Store, autoClaims *services.AutoClaimService, spec string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		store:      store,
		autoClaims: autoClaims,
		spec:       spec,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.evaluateDuePolicies); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("claim scheduler started", "spec", s.spec)
	return nil
}

// Stop stops the cron loop and waits for running evaluations to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("claim scheduler stopped")
}

func (s *Scheduler) evaluateDuePolicies() {
	due := s.store.DuePolicies(time.Now())
	if len(due) == 0 {
		return
	}
	slog.Info("evaluating due policies", "count", len(due))

	for _, policy := range due {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := s.autoClaims.RunAutoClaim(ctx, policy.PolicyID)
		cancel()
		if err == nil {
			continue
		}

		var unavailable *oracle.UnavailableError
		switch {
		case errors.As(err, &unavailable):
			slog.Warn("oracle unavailable, will retry on next tick", "policy_id", policy.PolicyID, "error", err)
		case ledger.IsConsumed(err):
			slog.Warn("policy version raced with another transition", "policy_id", policy.PolicyID)
		default:
			slog.Error("automatic claim evaluation failed", "policy_id", policy.PolicyID, "error", err)
		}
	}
}
