package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// LEDGER STATES
// Each record is immutable; a transition consumes one version and produces
// the next. Versioning itself lives in the ledger store.
// ============================================================================

// ProductProposal is an unapproved product offer submitted by a provider.
// It is consumed exactly once when the regulator turns it into a Product.
type ProductProposal struct {
	ProposalID              string          `json:"proposal_id" db:"proposal_id"`
	ProviderID              int             `json:"provider_id" db:"provider_id"`
	ProviderName            string          `json:"provider_name" db:"provider_name"`
	ForCrop                 string          `json:"for_crop" db:"for_crop"`
	PremiumAmountPerHectare int             `json:"premium_amount_per_hectare" db:"premium_amount_per_hectare"`
	InsuredAmountPerHectare int             `json:"insured_amount_per_hectare" db:"insured_amount_per_hectare"`
	ProductDocHash          string          `json:"product_doc_hash" db:"product_doc_hash"`
	ExpiryDate              time.Time       `json:"expiry_date" db:"expiry_date"`
	WeatherCriteria         WeatherCriteria `json:"weather_criteria" db:"weather_criteria"`
	Participants            Parties         `json:"participants" db:"participants"`
}

// Product is an approved, sellable product. Policies reference it read-only.
type Product struct {
	ProductID               string          `json:"product_id" db:"product_id"`
	ProviderID              int             `json:"provider_id" db:"provider_id"`
	ProviderName            string          `json:"provider_name" db:"provider_name"`
	ForCrop                 string          `json:"for_crop" db:"for_crop"`
	PremiumAmountPerHectare int             `json:"premium_amount_per_hectare" db:"premium_amount_per_hectare"`
	InsuredAmountPerHectare int             `json:"insured_amount_per_hectare" db:"insured_amount_per_hectare"`
	ProductDocHash          string          `json:"product_doc_hash" db:"product_doc_hash"`
	CreatedDate             time.Time       `json:"created_date" db:"created_date"`
	ExpiryDate              time.Time       `json:"expiry_date" db:"expiry_date"`
	WeatherCriteria         WeatherCriteria `json:"weather_criteria" db:"weather_criteria"`
	IsActive                bool            `json:"is_active" db:"is_active"`
	Participants            Parties         `json:"participants" db:"participants"`
}

// Policy is a farmer's purchased coverage under a Product.
type Policy struct {
	PolicyID            string            `json:"policy_id" db:"policy_id"`
	FarmerID            string            `json:"farmer_id" db:"farmer_id"`
	ProductID           string            `json:"product_id" db:"product_id"`
	ProviderName        string            `json:"provider_name" db:"provider_name"`
	ForCrop             string            `json:"for_crop" db:"for_crop"`
	Latitude            float64           `json:"latitude" db:"latitude"`
	Longitude           float64           `json:"longitude" db:"longitude"`
	AreaInHectare       float64           `json:"area_in_hectare" db:"area_in_hectare"`
	TotalPremium        float64           `json:"total_premium" db:"total_premium"`
	InsuredAmount       float64           `json:"insured_amount" db:"insured_amount"`
	StartDate           time.Time         `json:"start_date" db:"start_date"`
	ExpiryDate          time.Time         `json:"expiry_date" db:"expiry_date"`
	SettlementPaidTotal float64           `json:"settlement_paid_total" db:"settlement_paid_total"`
	LastSettlementDate  time.Time         `json:"last_settlement_date" db:"last_settlement_date"`
	TotalPercentage     float64           `json:"total_percentage" db:"total_percentage"`
	Status              PolicyStatus      `json:"status" db:"status"`
	AutoClaims          AutoClaimEvents   `json:"auto_claims" db:"auto_claims"`
	ManualClaim         *ManualClaimEvent `json:"manual_claim,omitempty" db:"manual_claim"`
	NextEvaluationAt    time.Time         `json:"next_evaluation_at" db:"next_evaluation_at"`
	Participants        Parties           `json:"participants" db:"participants"`
}

// AutoClaimEvent records one weather-triggered claim evaluation.
type AutoClaimEvent struct {
	At          time.Time `json:"at"`
	RainDays    int       `json:"rain_days"`
	DroughtDays int       `json:"drought_days"`
	Percentage  int       `json:"percentage"`
	PaidAmount  float64   `json:"paid_amount"`
}

// ManualClaimEvent records the latest human-filed damage claim. A policy
// holds at most one; a new manual claim replaces it.
type ManualClaimEvent struct {
	At               time.Time `json:"at"`
	DamagePercentage float64   `json:"damage_percentage"`
	PaidAmount       float64   `json:"paid_amount"`
	ReasonOfDamage   string    `json:"reason_of_damage"`
}

// Parties is a participant or signer set, stored as JSONB.
type Parties []string

// Contains reports whether name is in the set.
func (p Parties) Contains(name string) bool {
	for _, party := range p {
		if party == name {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every name in others is in the set.
func (p Parties) ContainsAll(others Parties) bool {
	for _, other := range others {
		if !p.Contains(other) {
			return false
		}
	}
	return true
}

// ============================================================================
// JSONB MAPPING
// ============================================================================

func (p Parties) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *Parties) Scan(value any) error {
	return scanJSON(value, p, "Parties")
}

type AutoClaimEvents []AutoClaimEvent

func (e AutoClaimEvents) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

func (e *AutoClaimEvents) Scan(value any) error {
	return scanJSON(value, e, "AutoClaimEvents")
}

func (m ManualClaimEvent) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *ManualClaimEvent) Scan(value any) error {
	return scanJSON(value, m, "ManualClaimEvent")
}

func scanJSON(value, dest any, typeName string) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("%s: Scan failed, expected []byte but got %T", typeName, value)
	}
	return json.Unmarshal(b, dest)
}
