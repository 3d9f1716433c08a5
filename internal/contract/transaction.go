package contract

import (
	"time"

	"insurance-ledger/internal/models"
)

// Command describes the intended operation of a proposed transition.
type Command interface {
	Name() string
}

type ProposeProduct struct{}

func (ProposeProduct) Name() string { return "ProposeProduct" }

type CreateProduct struct{}

func (CreateProduct) Name() string { return "CreateProduct" }

type CreatePolicy struct{}

func (CreatePolicy) Name() string { return "CreatePolicy" }

// AutoClaim carries the oracle-attested observation window and run lengths
// so every validating party can recompute the claimed percentage itself.
type AutoClaim struct {
	Latitude    float64
	Longitude   float64
	StartDate   time.Time
	EndDate     time.Time
	RainDays    int
	DroughtDays int
}

func (AutoClaim) Name() string { return "AutoClaim" }

type ManualClaim struct{}

func (ManualClaim) Name() string { return "ManualClaim" }

type ExpirePolicy struct{}

func (ExpirePolicy) Name() string { return "ExpirePolicy" }

// Transaction is a candidate state transition: consumed inputs, produced
// outputs, read-only referenced states, the command, and the signer set the
// transport has collected (or intends to collect).
type Transaction struct {
	InputProposals     []models.ProductProposal
	InputPolicies      []models.Policy
	OutputProposals    []models.ProductProposal
	OutputProducts     []models.Product
	OutputPolicies     []models.Policy
	ReferencedProducts []models.Product
	Command            Command
	Signers            models.Parties
}

func (tx Transaction) inputCount() int {
	return len(tx.InputProposals) + len(tx.InputPolicies)
}

func (tx Transaction) outputCount() int {
	return len(tx.OutputProposals) + len(tx.OutputProducts) + len(tx.OutputPolicies)
}

func (tx Transaction) distinctSigners() int {
	seen := make(map[string]struct{}, len(tx.Signers))
	for _, signer := range tx.Signers {
		seen[signer] = struct{}{}
	}
	return len(seen)
}
