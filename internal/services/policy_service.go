package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"insurance-ledger/internal/claims"
	"insurance-ledger/internal/contract"
	"insurance-ledger/internal/event"
	"insurance-ledger/internal/ledger"
	"insurance-ledger/internal/models"
	"insurance-ledger/internal/repository"

	"github.com/google/uuid"
)

type PolicyService struct {
	store      *ledger.Store
	validator  *contract.Validator
	engine     *claims.Engine
	policyRepo *repository.PolicyRepository
	publisher  *event.Publisher
}

func NewPolicyService(
	store *ledger.Store,
	validator *contract.Validator,
	engine *claims.Engine,
	policyRepo *repository.PolicyRepository,
	publisher *event.Publisher,
) *PolicyService {
	return &PolicyService{
		store:      store,
		validator:  validator,
		engine:     engine,
		policyRepo: policyRepo,
		publisher:  publisher,
	}
}

// CreatePolicy sells a policy under an active product.
func (s *PolicyService) CreatePolicy(ctx context.Context, req models.CreatePolicyRequest) (*models.Policy, error) {
	product, err := s.store.Product(req.ProductID)
	if err != nil {
		return nil, err
	}

	policy := s.engine.NewPolicy(uuid.NewString(), req, product, time.Now())

	tx := contract.Transaction{
		ReferencedProducts: []models.Product{product},
		OutputPolicies:     []models.Policy{policy},
		Command:            contract.CreatePolicy{},
		Signers:            append(models.Parties{}, policy.Participants...),
	}
	if err := s.validator.Validate(tx); err != nil {
		return nil, err
	}

	if err := s.store.AddPolicy(policy); err != nil {
		return nil, err
	}
	if err := s.policyRepo.InsertVersion(ctx, &policy, 0); err != nil {
		return nil, fmt.Errorf("failed to persist policy: %w", err)
	}

	s.publisher.Publish(ctx, event.LedgerEvent{
		Kind:       event.PolicyCreated,
		RecordID:   policy.PolicyID,
		OccurredAt: time.Now(),
		Payload:    policy,
	})

	slog.Info("policy created",
		"policy_id", policy.PolicyID,
		"product_id", product.ProductID,
		"farmer_id", policy.FarmerID,
		"total_premium", policy.TotalPremium,
		"insured_amount", policy.InsuredAmount)
	return &policy, nil
}

// FileManualClaim applies a human-filed damage claim to the latest policy
// version. Only the most recent manual claim is retained on the policy.
func (s *PolicyService) FileManualClaim(ctx context.Context, policyID string, req models.ManualClaimRequest) (*models.Policy, error) {
	policy, version, err := s.store.LatestPolicy(policyID)
	if err != nil {
		return nil, err
	}
	product, err := s.store.Product(policy.ProductID)
	if err != nil {
		return nil, err
	}

	candidate := s.engine.ManualClaim(policy, req.CropDamagePercentage, req.ReasonOfDamage, time.Now())

	tx := contract.Transaction{
		ReferencedProducts: []models.Product{product},
		InputPolicies:      []models.Policy{policy},
		OutputPolicies:     []models.Policy{candidate},
		Command:            contract.ManualClaim{},
		Signers:            append(models.Parties{}, candidate.Participants...),
	}
	if err := s.validator.Validate(tx); err != nil {
		return nil, err
	}

	newVersion, err := s.commitTransition(ctx, policyID, version, candidate)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, event.LedgerEvent{
		Kind:       event.PolicyClaimed,
		RecordID:   policyID,
		Version:    newVersion,
		OccurredAt: time.Now(),
		Payload:    candidate.ManualClaim,
	})

	slog.Info("manual claim settled",
		"policy_id", policyID,
		"version", newVersion,
		"damage_percentage", req.CropDamagePercentage,
		"total_percentage", candidate.TotalPercentage,
		"settlement_paid_total", candidate.SettlementPaidTotal)
	return &candidate, nil
}

// commitTransition consumes the prior version on the ledger and persists the
// next one in the read model.
func (s *PolicyService) commitTransition(ctx context.Context, policyID string, version int, next models.Policy) (int, error) {
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

// GetPolicy retrieves the latest version of a policy.
func (s *PolicyService) GetPolicy(ctx context.Context, policyID string) (*repository.PolicyVersionRow, error) {
	if _, _, err := s.store.LatestPolicy(policyID); err != nil && !ledger.IsConsumed(err) {
		return nil, err
	}
	return s.policyRepo.GetLatest(ctx, policyID)
}

// GetPolicyHistory retrieves every version of a policy, oldest first.
func (s *PolicyService) GetPolicyHistory(ctx context.Context, policyID string) ([]repository.PolicyVersionRow, error) {
	return s.policyRepo.GetHistory(ctx, policyID)
}

// ListPolicies retrieves the latest version of every policy.
func (s *PolicyService) ListPolicies(ctx context.Context) ([]repository.PolicyVersionRow, error) {
	return s.policyRepo.GetAllLatest(ctx)
}

// ListPoliciesByFarmer retrieves a farmer's policies.
func (s *PolicyService) ListPoliciesByFarmer(ctx context.Context, farmerID string) ([]repository.PolicyVersionRow, error) {
	return s.policyRepo.GetByFarmerID(ctx, farmerID)
}
