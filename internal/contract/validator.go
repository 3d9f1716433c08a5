package contract

import (
	"fmt"

	"insurance-ledger/internal/models"
)

// Validator applies the transition rules every party must run to accept or
// reject a candidate transaction. It is a pure function of the transaction:
// no I/O, no shared state, safe for concurrent use. A business rejection is
// always a *RuleViolation, never a panic or a generic error.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns nil when the candidate transition is acceptable, or a
// *RuleViolation naming the first violated rule.
func (v *Validator) Validate(tx Transaction) error {
	switch cmd := tx.Command.(type) {
	case ProposeProduct:
		return v.validateProposeProduct(tx)
	case CreateProduct:
		return v.validateCreateProduct(tx)
	case CreatePolicy:
		return v.validateCreatePolicy(tx)
	case AutoClaim:
		return v.validateAutoClaim(tx, cmd)
	case ManualClaim:
		return v.validateManualClaim(tx)
	case ExpirePolicy:
		return v.validateExpirePolicy(tx)
	case nil:
		return reject("Transaction must contain a command")
	default:
		return fmt.Errorf("unknown command: %s", cmd.Name())
	}
}

func (v *Validator) validateProposeProduct(tx Transaction) error {
	if tx.inputCount() != 0 {
		return reject("Proposal transaction must not consume any input state")
	}
	if tx.outputCount() != 1 || len(tx.OutputProposals) != 1 {
		return reject("Proposal transaction must have a single proposal output state")
	}

	proposal := tx.OutputProposals[0]

	if proposal.InsuredAmountPerHectare <= proposal.PremiumAmountPerHectare {
		return reject("Insured amount per hectare must be greater than premium amount")
	}
	if !tx.Signers.Contains(proposal.ProviderName) {
		return reject("Insurance provider must be a required signer in proposal creation")
	}
	if !proposal.Participants.ContainsAll(tx.Signers) {
		return reject("Proposal signers must be drawn from the participant set")
	}
	return nil
}

func (v *Validator) validateCreateProduct(tx Transaction) error {
	if tx.inputCount() != 1 || len(tx.InputProposals) != 1 {
		return reject("Create product must consume a single product proposal")
	}
	if tx.outputCount() != 1 || len(tx.OutputProducts) != 1 {
		return reject("Create product must have a single product output state")
	}

	product := tx.OutputProducts[0]

	if !product.IsActive {
		return reject("Created product must be active")
	}
	if product.InsuredAmountPerHectare <= product.PremiumAmountPerHectare {
		return reject("Insured amount per hectare must be greater than premium amount")
	}
	if !product.ExpiryDate.After(product.CreatedDate) {
		return reject("Product expiry date must be greater than created date")
	}
	if !tx.Signers.ContainsAll(product.Participants) {
		return reject("Govt regulator and insurance provider must be required signers in product creation")
	}
	return nil
}

func (v *Validator) validateCreatePolicy(tx Transaction) error {
	if len(tx.ReferencedProducts) != 1 {
		return reject("Create policy must have a single referenced product")
	}
	if tx.inputCount() != 0 {
		return reject("Create policy must not consume any input state")
	}
	if tx.outputCount() != 1 || len(tx.OutputPolicies) != 1 {
		return reject("Create policy must have a single policy output state")
	}

	product := tx.ReferencedProducts[0]
	policy := tx.OutputPolicies[0]

	if !product.IsActive {
		return reject("Referenced product must be active")
	}
	if policy.TotalPremium != policy.AreaInHectare*float64(product.PremiumAmountPerHectare) {
		return reject("Policy total premium amount must be correct")
	}
	if policy.InsuredAmount != policy.AreaInHectare*float64(product.InsuredAmountPerHectare) {
		return reject("Policy insured amount must be correct")
	}
	if policy.InsuredAmount <= policy.TotalPremium {
		return reject("Insured amount must be greater than total premium paid")
	}
	if policy.SettlementPaidTotal != 0 {
		return reject("Settlement paid amount must be 0 while creating a new policy")
	}
	if policy.TotalPercentage != 0 {
		return reject("Total percentage must be 0 while creating a new policy")
	}
	if policy.Status != models.PolicyCreated {
		return reject("New policy must have CREATED status")
	}
	if !tx.Signers.ContainsAll(policy.Participants) {
		return reject("Govt regulator and insurance provider must be required signers in policy creation")
	}
	return nil
}

func (v *Validator) validateAutoClaim(tx Transaction, cmd AutoClaim) error {
	if err := v.validateClaimShape(tx); err != nil {
		return err
	}

	product := tx.ReferencedProducts[0]
	inputPolicy := tx.InputPolicies[0]
	policy := tx.OutputPolicies[0]

	if err := v.validateClaimReferences(product, policy); err != nil {
		return err
	}

	if len(policy.AutoClaims) == 0 {
		return reject("Auto claim output policy must record a claim event")
	}

	// Every party re-derives the increment from the command's run lengths;
	// the engine's recorded percentage must match exactly.
	percentage := product.WeatherCriteria.Percentage(cmd.RainDays, cmd.DroughtDays)
	lastEvent := policy.AutoClaims[len(policy.AutoClaims)-1]
	if lastEvent.Percentage != percentage {
		return reject("Calculated percentage and transaction percentage must be the same")
	}

	if policy.TotalPercentage != inputPolicy.TotalPercentage+float64(percentage) {
		return reject("Output policy total percentage must equal last percentage plus current percentage")
	}
	if policy.TotalPercentage > 100 {
		return reject("Total percentage must be less than or equal to 100")
	}
	if policy.SettlementPaidTotal != inputPolicy.InsuredAmount*policy.TotalPercentage/100 {
		return reject("Settlement amount must be correct")
	}
	if tx.distinctSigners() != 3 {
		return reject("There must be exactly three distinct signers")
	}
	return nil
}

func (v *Validator) validateManualClaim(tx Transaction) error {
	if err := v.validateClaimShape(tx); err != nil {
		return err
	}

	product := tx.ReferencedProducts[0]
	inputPolicy := tx.InputPolicies[0]
	policy := tx.OutputPolicies[0]

	if err := v.validateClaimReferences(product, policy); err != nil {
		return err
	}

	if policy.ManualClaim == nil {
		return reject("Manual claim output policy must record the claim details")
	}
	if policy.TotalPercentage != inputPolicy.TotalPercentage+policy.ManualClaim.DamagePercentage {
		return reject("Output policy total percentage must equal last percentage plus manual claim percentage")
	}
	if policy.TotalPercentage > 100 {
		return reject("Total percentage must be less than or equal to 100")
	}
	if policy.SettlementPaidTotal != inputPolicy.InsuredAmount*policy.TotalPercentage/100 {
		return reject("Settlement amount must be correct")
	}
	if !tx.Signers.ContainsAll(policy.Participants) {
		return reject("Govt regulator and insurance provider must be required signers in manual claim")
	}
	return nil
}

func (v *Validator) validateExpirePolicy(tx Transaction) error {
	if tx.inputCount() != 1 || len(tx.InputPolicies) != 1 {
		return reject("Expire policy must consume a single input policy")
	}
	if tx.outputCount() != 1 || len(tx.OutputPolicies) != 1 {
		return reject("Expire policy must have a single policy output state")
	}

	inputPolicy := tx.InputPolicies[0]
	policy := tx.OutputPolicies[0]

	if policy.PolicyID != inputPolicy.PolicyID {
		return reject("Expired policy must be the same policy as the input")
	}
	if policy.Status != models.PolicyExpired {
		return reject("Expired policy must have EXPIRED status")
	}
	if policy.TotalPercentage != inputPolicy.TotalPercentage ||
		policy.SettlementPaidTotal != inputPolicy.SettlementPaidTotal {
		return reject("Expiry must not change settlement or claim totals")
	}
	if !tx.Signers.ContainsAll(policy.Participants) {
		return reject("Govt regulator and insurance provider must be required signers in policy expiry")
	}
	return nil
}

// validateClaimShape checks the one-reference / one-input / one-output
// cardinality shared by both claim transitions.
func (v *Validator) validateClaimShape(tx Transaction) error {
	if len(tx.ReferencedProducts) != 1 {
		return reject("Claim must have a single referenced product")
	}
	if tx.inputCount() != 1 || len(tx.InputPolicies) != 1 {
		return reject("Claim must consume a single input policy")
	}
	if tx.outputCount() != 1 || len(tx.OutputPolicies) != 1 {
		return reject("Claim must have a single policy output state")
	}
	return nil
}

func (v *Validator) validateClaimReferences(product models.Product, policy models.Policy) error {
	if product.ProductID != policy.ProductID {
		return reject("Referenced product and policy product must be the same")
	}
	if product.ProviderName != policy.ProviderName {
		return reject("Provider of referenced product and policy must be the same")
	}
	return nil
}
