package repository

import (
	"context"
	"fmt"

	"insurance-ledger/internal/models"

	"github.com/jmoiron/sqlx"
)

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Insert records a newly accepted proposal.
func (r *ProposalRepository) Insert(ctx context.Context, proposal *models.ProductProposal) error {
	query := `
		INSERT INTO product_proposal (proposal_id, provider_id, provider_name, for_crop,
		       premium_amount_per_hectare, insured_amount_per_hectare, product_doc_hash,
		       expiry_date, weather_criteria, participants, status)
		VALUES (:proposal_id, :provider_id, :provider_name, :for_crop,
		       :premium_amount_per_hectare, :insured_amount_per_hectare, :product_doc_hash,
		       :expiry_date, :weather_criteria, :participants, 'open')
	`

	_, err := r.db.NamedExecContext(ctx, query, proposal)
	if err != nil {
		return fmt.Errorf("failed to insert proposal: %w", err)
	}
	return nil
}

// MarkConsumed flips a proposal to consumed when a product is created from it.
func (r *ProposalRepository) MarkConsumed(ctx context.Context, proposalID string) error {
	query := `UPDATE product_proposal SET status = 'consumed' WHERE proposal_id = $1 AND status = 'open'`

	result, err := r.db.ExecContext(ctx, query, proposalID)
	if err != nil {
		return fmt.Errorf("failed to mark proposal consumed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("proposal %s not found or already consumed", proposalID)
	}
	return nil
}

// GetByID retrieves a proposal by its id.
func (r *ProposalRepository) GetByID(ctx context.Context, proposalID string) (*models.ProductProposal, error) {
	var proposal models.ProductProposal
	query := `
		SELECT proposal_id, provider_id, provider_name, for_crop,
		       premium_amount_per_hectare, insured_amount_per_hectare, product_doc_hash,
		       expiry_date, weather_criteria, participants
		FROM product_proposal
		WHERE proposal_id = $1
	`

	if err := r.db.GetContext(ctx, &proposal, query, proposalID); err != nil {
		return nil, fmt.Errorf("failed to get proposal by id: %w", err)
	}
	return &proposal, nil
}

// GetAll retrieves proposals, optionally filtered by status.
func (r *ProposalRepository) GetAll(ctx context.Context, status models.ProposalStatus) ([]models.ProductProposal, error) {
	var proposals []models.ProductProposal
	query := `
		SELECT proposal_id, provider_id, provider_name, for_crop,
		       premium_amount_per_hectare, insured_amount_per_hectare, product_doc_hash,
		       expiry_date, weather_criteria, participants
		FROM product_proposal
	`

	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}
	return proposals, nil
}
