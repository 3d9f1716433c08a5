package claims

import (
	"time"

	"insurance-ledger/internal/models"
)

// Engine builds candidate next-version policies. It is pure: it never does
// I/O, never rejects, and never mutates its inputs; accepting or refusing a
// candidate is solely the contract validator's job. The caller supplies the
// clock so every test and replay derives identical candidates.
type Engine struct {
	// RecheckInterval is how far ahead the next automatic evaluation is
	// scheduled, awarded percentage or not, until expiry or 100%.
	RecheckInterval time.Duration
}

func NewEngine(recheckInterval time.Duration) *Engine {
	return &Engine{RecheckInterval: recheckInterval}
}

// NewPolicy builds the candidate initial policy version sold under product.
// Premium and insured amounts are derived from the product's per-hectare
// rates; the validator re-derives and checks the same arithmetic.
func (e *Engine) NewPolicy(policyID string, req models.CreatePolicyRequest, product models.Product, now time.Time) models.Policy {
	return models.Policy{
		PolicyID:            policyID,
		FarmerID:            req.FarmerID,
		ProductID:           product.ProductID,
		ProviderName:        product.ProviderName,
		ForCrop:             product.ForCrop,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		AreaInHectare:       req.AreaInHectare,
		TotalPremium:        req.AreaInHectare * float64(product.PremiumAmountPerHectare),
		InsuredAmount:       req.AreaInHectare * float64(product.InsuredAmountPerHectare),
		StartDate:           now,
		ExpiryDate:          product.ExpiryDate,
		SettlementPaidTotal: 0,
		LastSettlementDate:  now,
		TotalPercentage:     0,
		Status:              models.PolicyCreated,
		AutoClaims:          models.AutoClaimEvents{},
		ManualClaim:         nil,
		NextEvaluationAt:    now.Add(e.RecheckInterval),
		Participants:        append(models.Parties{}, product.Participants...),
	}
}

// AutomaticClaim builds the candidate policy version for one automatic
// evaluation. An event is appended whether or not a percentage was awarded,
// and the next evaluation is always scheduled; settlement moves only when
// the looked-up percentage is positive. Settlement is recomputed from the
// cumulative percentage, never accumulated event by event.
func (e *Engine) AutomaticClaim(policy models.Policy, product models.Product, rainDays, droughtDays int, now time.Time) models.Policy {
	out := clone(policy)

	percentage := product.WeatherCriteria.Percentage(rainDays, droughtDays)
	event := models.AutoClaimEvent{
		At:          now,
		RainDays:    rainDays,
		DroughtDays: droughtDays,
		Percentage:  percentage,
	}

	if percentage > 0 {
		event.PaidAmount = policy.InsuredAmount * float64(percentage) / 100
		out.TotalPercentage = policy.TotalPercentage + float64(percentage)
		out.SettlementPaidTotal = policy.InsuredAmount * out.TotalPercentage / 100
		out.LastSettlementDate = now
		out.Status = models.PolicyAutoClaim
	}

	out.AutoClaims = append(out.AutoClaims, event)
	out.NextEvaluationAt = now.Add(e.RecheckInterval)
	return out
}

// ManualClaim builds the candidate policy version for a human-filed damage
// claim. The policy carries only the latest manual claim; a new claim
// replaces the previous record.
func (e *Engine) ManualClaim(policy models.Policy, damagePercentage float64, reason string, now time.Time) models.Policy {
	out := clone(policy)

	out.ManualClaim = &models.ManualClaimEvent{
		At:               now,
		DamagePercentage: damagePercentage,
		PaidAmount:       policy.InsuredAmount * damagePercentage / 100,
		ReasonOfDamage:   reason,
	}
	out.TotalPercentage = policy.TotalPercentage + damagePercentage
	out.SettlementPaidTotal = policy.InsuredAmount * out.TotalPercentage / 100
	out.LastSettlementDate = now
	out.Status = models.PolicyManualClaim
	return out
}

// Expire builds the candidate terminal version of a policy whose term has
// ended. Claim totals are untouched.
func (e *Engine) Expire(policy models.Policy) models.Policy {
	out := clone(policy)
	out.Status = models.PolicyExpired
	return out
}

// clone copies a policy deeply enough that appending events or replacing the
// manual claim never aliases the input version.
func clone(policy models.Policy) models.Policy {
	out := policy
	out.AutoClaims = append(models.AutoClaimEvents{}, policy.AutoClaims...)
	if policy.ManualClaim != nil {
		claim := *policy.ManualClaim
		out.ManualClaim = &claim
	}
	out.Participants = append(models.Parties{}, policy.Participants...)
	return out
}
