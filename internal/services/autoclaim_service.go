package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"insurance-ledger/internal/claims"
	"insurance-ledger/internal/config"
	"insurance-ledger/internal/contract"
	"insurance-ledger/internal/event"
	"insurance-ledger/internal/ledger"
	"insurance-ledger/internal/models"
	"insurance-ledger/internal/oracle"
	"insurance-ledger/internal/repository"
)

// AutoClaimService runs one automatic evaluation of a policy: fetch the
// oracle's run counters, build the candidate next version, have the oracle
// re-verify the counters it is asked to co-sign, validate, and commit.
type AutoClaimService struct {
	store      *ledger.Store
	validator  *contract.Validator
	engine     *claims.Engine
	oracle     *oracle.Client
	policyRepo *repository.PolicyRepository
	publisher  *event.Publisher
	parties    config.PartyConfig
}

func NewAutoClaimService(
	store *ledger.Store,
	validator *contract.Validator,
	engine *claims.Engine,
	oracleClient *oracle.Client,
	policyRepo *repository.PolicyRepository,
	publisher *event.Publisher,
	parties config.PartyConfig,
) *AutoClaimService {
	return &AutoClaimService{
		store:      store,
		validator:  validator,
		engine:     engine,
		oracle:     oracleClient,
		policyRepo: policyRepo,
		publisher:  publisher,
		parties:    parties,
	}
}

// RunAutoClaim evaluates one policy. A transient oracle failure is returned
// as-is so the scheduler retries on a later tick; the policy's next
// evaluation instant is left unchanged in that case.
func (s *AutoClaimService) RunAutoClaim(ctx context.Context, policyID string) error {
	policy, version, err := s.store.LatestPolicy(policyID)
	if err != nil {
		return err
	}

	now := time.Now()
	if now.After(policy.ExpiryDate) {
		return s.expire(ctx, policy, version, now)
	}

	product, err := s.store.Product(policy.ProductID)
	if err != nil {
		return err
	}

	report, err := s.oracle.FetchRuns(ctx, policy.Latitude, policy.Longitude, policy.StartDate, policy.ExpiryDate)
	if err != nil {
		return fmt.Errorf("auto claim for policy %s: %w", policyID, err)
	}

	candidate := s.engine.AutomaticClaim(policy, product, report.RainDays, report.DroughtDays, now)

	// The oracle only co-signs counters it can re-derive itself.
	verified, err := s.oracle.Verify(ctx, policy.Latitude, policy.Longitude, policy.StartDate, policy.ExpiryDate, report)
	if err != nil {
		return fmt.Errorf("auto claim for policy %s: %w", policyID, err)
	}
	if !verified {
		return fmt.Errorf("auto claim for policy %s: %w", policyID, ErrOracleMismatch)
	}

	tx := contract.Transaction{
		ReferencedProducts: []models.Product{product},
		InputPolicies:      []models.Policy{policy},
		OutputPolicies:     []models.Policy{candidate},
		Command: contract.AutoClaim{
			Latitude:    policy.Latitude,
			Longitude:   policy.Longitude,
			StartDate:   policy.StartDate,
			EndDate:     policy.ExpiryDate,
			RainDays:    report.RainDays,
			DroughtDays: report.DroughtDays,
		},
		Signers: append(append(models.Parties{}, candidate.Participants...), s.parties.OracleName),
	}
	if err := s.validator.Validate(tx); err != nil {
		return fmt.Errorf("auto claim for policy %s rejected: %w", policyID, err)
	}

	newVersion, err := s.commit(ctx, policyID, version, candidate)
	if err != nil {
		return err
	}

	awarded := candidate.AutoClaims[len(candidate.AutoClaims)-1]
	if awarded.Percentage > 0 {
		s.publisher.Publish(ctx, event.LedgerEvent{
			Kind:       event.PolicyClaimed,
			RecordID:   policyID,
			Version:    newVersion,
			OccurredAt: now,
			Payload:    awarded,
		})
	}

	slog.Info("automatic claim evaluated",
		"policy_id", policyID,
		"version", newVersion,
		"rain_days", report.RainDays,
		"drought_days", report.DroughtDays,
		"percentage", awarded.Percentage,
		"total_percentage", candidate.TotalPercentage,
		"next_evaluation_at", candidate.NextEvaluationAt)
	return nil
}

func (s *AutoClaimService) expire(ctx context.Context, policy models.Policy, version int, now time.Time) error {
	candidate := s.engine.Expire(policy)

	tx := contract.Transaction{
		InputPolicies:  []models.Policy{policy},
		OutputPolicies: []models.Policy{candidate},
		Command:        contract.ExpirePolicy{},
		Signers:        append(models.Parties{}, candidate.Participants...),
	}
	if err := s.validator.Validate(tx); err != nil {
		return fmt.Errorf("expiry of policy %s rejected: %w", policy.PolicyID, err)
	}

	newVersion, err := s.commit(ctx, policy.PolicyID, version, candidate)
	if err != nil {
		return err
	}

	s.publisher.Publish(ctx, event.LedgerEvent{
		Kind:       event.PolicyExpired,
		RecordID:   policy.PolicyID,
		Version:    newVersion,
		OccurredAt: now,
	})

	slog.Info("policy expired", "policy_id", policy.PolicyID, "version", newVersion)
	return nil
}

func (s *AutoClaimService) commit(ctx context.Context, policyID string, version int, next models.Policy) (int, error) {
	newVersion, err := s.store.TransitionPolicy(policyID, version, next)
	if err != nil {
		return 0, err
	}
	if err := s.policyRepo.MarkConsumed(ctx, policyID, version); err != nil {
		return 0, fmt.Errorf("failed to persist version consumption: %w", err)
	}
	if err := s.policyRepo.InsertVersion(ctx, &next, newVersion); err != nil {
		return 0, fmt.Errorf("failed to persist policy version: %w", err)
	}
	return newVersion, nil
}
