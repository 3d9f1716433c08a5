package ledger

import (
	"testing"
	"time"

	"insurance-ledger/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestProposal_ConsumeOnce(t *testing.T) {
	store := NewStore()

	proposal := models.ProductProposal{ProposalID: "proposal-1", ProviderName: "InsureCo"}
	assert.NoError(t, store.AddProposal(proposal))
	assert.ErrorIs(t, store.AddProposal(proposal), ErrDuplicate)

	product := models.Product{ProductID: "product-1", ProviderName: "InsureCo"}
	assert.NoError(t, store.ConsumeProposal("proposal-1", product))

	// A spent proposal can never be spent again.
	err := store.ConsumeProposal("proposal-1", models.Product{ProductID: "product-2"})
	assert.True(t, IsConsumed(err))

	_, err = store.Proposal("proposal-1")
	assert.True(t, IsConsumed(err))

	got, err := store.Product("product-1")
	assert.NoError(t, err)
	assert.Equal(t, product, got)
}

func TestProposal_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Proposal("missing")
	assert.True(t, IsNotFound(err))

	err = store.ConsumeProposal("missing", models.Product{ProductID: "product-1"})
	assert.True(t, IsNotFound(err))
}

func TestConsumeProposal_DuplicateProduct(t *testing.T) {
	store := NewStore()

	assert.NoError(t, store.AddProposal(models.ProductProposal{ProposalID: "proposal-1"}))
	assert.NoError(t, store.AddProposal(models.ProductProposal{ProposalID: "proposal-2"}))
	assert.NoError(t, store.ConsumeProposal("proposal-1", models.Product{ProductID: "product-1"}))

	err := store.ConsumeProposal("proposal-2", models.Product{ProductID: "product-1"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// The failed transition must not have spent the proposal.
	_, err = store.Proposal("proposal-2")
	assert.NoError(t, err)
}

func TestTransitionPolicy_AppendsVersions(t *testing.T) {
	store := NewStore()

	v0 := models.Policy{PolicyID: "policy-1", TotalPercentage: 0}
	assert.NoError(t, store.AddPolicy(v0))

	policy, version, err := store.LatestPolicy("policy-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, version)
	assert.Equal(t, v0, policy)

	v1 := v0
	v1.TotalPercentage = 20
	newVersion, err := store.TransitionPolicy("policy-1", 0, v1)
	assert.NoError(t, err)
	assert.Equal(t, 1, newVersion)

	policy, version, err = store.LatestPolicy("policy-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, float64(20), policy.TotalPercentage)

	// Every historical version stays readable.
	historical, err := store.PolicyVersion("policy-1", 0)
	assert.NoError(t, err)
	assert.Equal(t, float64(0), historical.TotalPercentage)
}

func TestTransitionPolicy_StaleVersionCannotCommit(t *testing.T) {
	store := NewStore()

	v0 := models.Policy{PolicyID: "policy-1"}
	assert.NoError(t, store.AddPolicy(v0))

	v1 := v0
	v1.TotalPercentage = 20
	_, err := store.TransitionPolicy("policy-1", 0, v1)
	assert.NoError(t, err)

	// A second transition racing over the consumed version 0 must lose.
	v1b := v0
	v1b.TotalPercentage = 30
	_, err = store.TransitionPolicy("policy-1", 0, v1b)
	assert.True(t, IsConsumed(err))

	policy, _, err := store.LatestPolicy("policy-1")
	assert.NoError(t, err)
	assert.Equal(t, float64(20), policy.TotalPercentage, "The losing transition left no trace")
}

func TestDuePolicies(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	due := models.Policy{PolicyID: "due", NextEvaluationAt: now.Add(-time.Hour)}
	notYet := models.Policy{PolicyID: "not-yet", NextEvaluationAt: now.Add(time.Hour)}
	expired := models.Policy{PolicyID: "expired", Status: models.PolicyExpired, NextEvaluationAt: now.Add(-time.Hour)}

	assert.NoError(t, store.AddPolicy(due))
	assert.NoError(t, store.AddPolicy(notYet))
	assert.NoError(t, store.AddPolicy(expired))

	got := store.DuePolicies(now)

	assert.Len(t, got, 1)
	assert.Equal(t, "due", got[0].PolicyID)
}

func TestDuePolicies_BoundaryInstant(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, store.AddPolicy(models.Policy{PolicyID: "exact", NextEvaluationAt: now}))

	got := store.DuePolicies(now)
	assert.Len(t, got, 1, "A policy due exactly now is due")
}
