package repository

import (
	"context"
	"fmt"

	"insurance-ledger/internal/models"

	"github.com/jmoiron/sqlx"
)

// PolicyVersionRow is a persisted policy version. Rows are append-only: a
// transition marks the prior version consumed and inserts the next one.
type PolicyVersionRow struct {
	models.Policy
	Version  int  `db:"version" json:"version"`
	Consumed bool `db:"consumed" json:"consumed"`
}

type PolicyRepository struct {
	db *sqlx.DB
}

func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

const policyColumns = `policy_id, version, farmer_id, product_id, provider_name, for_crop,
	       latitude, longitude, area_in_hectare, total_premium, insured_amount,
	       start_date, expiry_date, settlement_paid_total, last_settlement_date,
	       total_percentage, status, auto_claims, manual_claim, next_evaluation_at,
	       participants, consumed`

// InsertVersion appends one accepted policy version.
func (r *PolicyRepository) InsertVersion(ctx context.Context, policy *models.Policy, version int) error {
	row := PolicyVersionRow{Policy: *policy, Version: version}
	query := `
		INSERT INTO policy (policy_id, version, farmer_id, product_id, provider_name, for_crop,
		       latitude, longitude, area_in_hectare, total_premium, insured_amount,
		       start_date, expiry_date, settlement_paid_total, last_settlement_date,
		       total_percentage, status, auto_claims, manual_claim, next_evaluation_at,
		       participants, consumed)
		VALUES (:policy_id, :version, :farmer_id, :product_id, :provider_name, :for_crop,
		       :latitude, :longitude, :area_in_hectare, :total_premium, :insured_amount,
		       :start_date, :expiry_date, :settlement_paid_total, :last_settlement_date,
		       :total_percentage, :status, :auto_claims, :manual_claim, :next_evaluation_at,
		       :participants, false)
	`

	if _, err := r.db.NamedExecContext(ctx, query, &row); err != nil {
		return fmt.Errorf("failed to insert policy version: %w", err)
	}
	return nil
}

// MarkConsumed marks one policy version as spent.
func (r *PolicyRepository) MarkConsumed(ctx context.Context, policyID string, version int) error {
	query := `UPDATE policy SET consumed = true WHERE policy_id = $1 AND version = $2 AND consumed = false`

	result, err := r.db.ExecContext(ctx, query, policyID, version)
	if err != nil {
		return fmt.Errorf("failed to mark policy version consumed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("policy %s version %d not found or already consumed", policyID, version)
	}
	return nil
}

// GetLatest retrieves the newest version of a policy.
func (r *PolicyRepository) GetLatest(ctx context.Context, policyID string) (*PolicyVersionRow, error) {
	var row PolicyVersionRow
	query := `
		SELECT ` + policyColumns + `
		FROM policy
		WHERE policy_id = $1
		ORDER BY version DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &row, query, policyID); err != nil {
		return nil, fmt.Errorf("failed to get latest policy version: %w", err)
	}
	return &row, nil
}

// GetHistory retrieves every version of a policy, oldest first.
func (r *PolicyRepository) GetHistory(ctx context.Context, policyID string) ([]PolicyVersionRow, error) {
	var rows []PolicyVersionRow
	query := `
		SELECT ` + policyColumns + `
		FROM policy
		WHERE policy_id = $1
		ORDER BY version ASC
	`

	if err := r.db.SelectContext(ctx, &rows, query, policyID); err != nil {
		return nil, fmt.Errorf("failed to get policy history: %w", err)
	}
	return rows, nil
}

// GetAllLatest retrieves the newest version of every policy.
func (r *PolicyRepository) GetAllLatest(ctx context.Context) ([]PolicyVersionRow, error) {
	var rows []PolicyVersionRow
	query := `
		SELECT DISTINCT ON (policy_id) ` + policyColumns + `
		FROM policy
		ORDER BY policy_id, version DESC
	`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get policies: %w", err)
	}
	return rows, nil
}

// GetByFarmerID retrieves the newest version of every policy held by a farmer.
func (r *PolicyRepository) GetByFarmerID(ctx context.Context, farmerID string) ([]PolicyVersionRow, error) {
	var rows []PolicyVersionRow
	query := `
		SELECT DISTINCT ON (policy_id) ` + policyColumns + `
		FROM policy
		WHERE farmer_id = $1
		ORDER BY policy_id, version DESC
	`

	if err := r.db.SelectContext(ctx, &rows, query, farmerID); err != nil {
		return nil, fmt.Errorf("failed to get policies by farmer id: %w", err)
	}
	return rows, nil
}
