package claims

import (
	"testing"
	"time"

	"insurance-ledger/internal/models"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testProduct() models.Product {
	return models.Product{
		ProductID:               "product-1",
		ProviderName:            "InsureCo",
		ForCrop:                 "rice",
		PremiumAmountPerHectare: 500,
		InsuredAmountPerHectare: 2000,
		ExpiryDate:              time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		WeatherCriteria: models.WeatherCriteria{
			RainDayConditions:    map[int]int{5: 20, 10: 50},
			DroughtDayConditions: map[int]int{5: 30, 10: 60},
		},
		IsActive:     true,
		Participants: models.Parties{"InsureCo", "GovtRegulator"},
	}
}

func TestNewPolicy_DerivesAmountsFromArea(t *testing.T) {
	engine := NewEngine(24 * time.Hour)
	product := testProduct()

	req := models.CreatePolicyRequest{
		FarmerID:      "farmer-1",
		ProductID:     product.ProductID,
		Latitude:      10.5,
		Longitude:     106.25,
		AreaInHectare: 2,
	}

	policy := engine.NewPolicy("policy-1", req, product, testNow)

	assert.Equal(t, float64(1000), policy.TotalPremium, "2 ha at 500 per hectare")
	assert.Equal(t, float64(4000), policy.InsuredAmount, "2 ha at 2000 per hectare")
	assert.Equal(t, models.PolicyCreated, policy.Status)
	assert.Equal(t, float64(0), policy.SettlementPaidTotal)
	assert.Equal(t, float64(0), policy.TotalPercentage)
	assert.Empty(t, policy.AutoClaims)
	assert.Nil(t, policy.ManualClaim)
	assert.Equal(t, testNow.Add(24*time.Hour), policy.NextEvaluationAt)
	assert.Equal(t, product.ExpiryDate, policy.ExpiryDate)
	assert.Equal(t, models.Parties{"InsureCo", "GovtRegulator"}, policy.Participants)
}

func TestAutomaticClaim_AwardsAndRecomputesSettlement(t *testing.T) {
	engine := NewEngine(24 * time.Hour)
	product := testProduct()
	policy := engine.NewPolicy("policy-1", models.CreatePolicyRequest{
		FarmerID: "farmer-1", ProductID: product.ProductID, AreaInHectare: 2,
	}, product, testNow)

	// 6 consecutive rain days resolve to the 5-day threshold's 20%.
	next := engine.AutomaticClaim(policy, product, 6, 0, testNow.Add(48*time.Hour))

	assert.Len(t, next.AutoClaims, 1)
	event := next.AutoClaims[0]
	assert.Equal(t, 20, event.Percentage)
	assert.Equal(t, float64(800), event.PaidAmount, "4000 insured at 20%")
	assert.Equal(t, float64(20), next.TotalPercentage)
	assert.Equal(t, float64(800), next.SettlementPaidTotal)
	assert.Equal(t, models.PolicyAutoClaim, next.Status)
	assert.Equal(t, testNow.Add(48*time.Hour), next.LastSettlementDate)

	// A later drought run of 5 days adds 30%. The running settlement is
	// recomputed from the cumulative percentage, not summed event by event.
	later := engine.AutomaticClaim(next, product, 0, 5, testNow.Add(96*time.Hour))

	assert.Len(t, later.AutoClaims, 2)
	assert.Equal(t, float64(50), later.TotalPercentage)
	assert.Equal(t, float64(2000), later.SettlementPaidTotal)
}

func TestAutomaticClaim_ZeroAwardStillRecordsAndReschedules(t *testing.T) {
	engine := NewEngine(24 * time.Hour)
	product := testProduct()
	policy := engine.NewPolicy("policy-1", models.CreatePolicyRequest{
		FarmerID: "farmer-1", ProductID: product.ProductID, AreaInHectare: 2,
	}, product, testNow)

	evalAt := testNow.Add(48 * time.Hour)
	next := engine.AutomaticClaim(policy, product, 3, 2, evalAt)

	assert.Len(t, next.AutoClaims, 1, "Every evaluation leaves an event, awarded or not")
	assert.Equal(t, 0, next.AutoClaims[0].Percentage)
	assert.Equal(t, float64(0), next.AutoClaims[0].PaidAmount)
	assert.Equal(t, float64(0), next.TotalPercentage)
	assert.Equal(t, policy.Status, next.Status, "No award leaves the status alone")
	assert.Equal(t, policy.LastSettlementDate, next.LastSettlementDate)
	assert.Equal(t, evalAt.Add(24*time.Hour), next.NextEvaluationAt, "Rescheduling never depends on the award")
}

func TestAutomaticClaim_DoesNotMutateInput(t *testing.T) {
	engine := NewEngine(24 * time.Hour)
	product := testProduct()
	policy := engine.NewPolicy("policy-1", models.CreatePolicyRequest{
		FarmerID: "farmer-1", ProductID: product.ProductID, AreaInHectare: 2,
	}, product, testNow)

	_ = engine.AutomaticClaim(policy, product, 6, 0, testNow.Add(time.Hour))

	assert.Empty(t, policy.AutoClaims)
	assert.Equal(t, float64(0), policy.TotalPercentage)
	assert.Equal(t, models.PolicyCreated, policy.Status)
}

func TestManualClaim_LatestClaimWins(t *testing.T) {
	engine := NewEngine(24 * time.Hour)
	product := testProduct()
	policy := engine.NewPolicy("policy-1", models.CreatePolicyRequest{
		FarmerID: "farmer-1", ProductID: product.ProductID, AreaInHectare: 2,
	}, product, testNow)

	first := engine.ManualClaim(policy, 10, "hailstorm", testNow.Add(time.Hour))

	assert.NotNil(t, first.ManualClaim)
	assert.Equal(t, float64(10), first.ManualClaim.DamagePercentage)
	assert.Equal(t, float64(400), first.ManualClaim.PaidAmount)
	assert.Equal(t, float64(400), first.SettlementPaidTotal)
	assert.Equal(t, models.PolicyManualClaim, first.Status)

	// Filing again replaces the recorded claim; only the latest survives.
	second := engine.ManualClaim(first, 25, "flooding", testNow.Add(2*time.Hour))

	assert.Equal(t, float64(25), second.ManualClaim.DamagePercentage)
	assert.Equal(t, "flooding", second.ManualClaim.ReasonOfDamage)
	assert.Equal(t, float64(35), second.TotalPercentage)
	assert.Equal(t, float64(1400), second.SettlementPaidTotal)

	// The earlier version still holds its own record.
	assert.Equal(t, "hailstorm", first.ManualClaim.ReasonOfDamage)
}

func TestExpire_FreezesTotals(t *testing.T) {
	engine := NewEngine(24 * time.Hour)
	product := testProduct()
	policy := engine.NewPolicy("policy-1", models.CreatePolicyRequest{
		FarmerID: "farmer-1", ProductID: product.ProductID, AreaInHectare: 2,
	}, product, testNow)
	claimed := engine.AutomaticClaim(policy, product, 6, 0, testNow.Add(time.Hour))

	expired := engine.Expire(claimed)

	assert.Equal(t, models.PolicyExpired, expired.Status)
	assert.Equal(t, claimed.TotalPercentage, expired.TotalPercentage)
	assert.Equal(t, claimed.SettlementPaidTotal, expired.SettlementPaidTotal)
	assert.Equal(t, claimed.AutoClaims, expired.AutoClaims)
}
