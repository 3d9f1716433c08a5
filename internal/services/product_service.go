package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"insurance-ledger/internal/config"
	"insurance-ledger/internal/contract"
	"insurance-ledger/internal/event"
	"insurance-ledger/internal/ledger"
	"insurance-ledger/internal/models"
	"insurance-ledger/internal/repository"

	"github.com/google/uuid"
)

type ProductService struct {
	store        *ledger.Store
	validator    *contract.Validator
	proposalRepo *repository.ProposalRepository
	productRepo  *repository.ProductRepository
	publisher    *event.Publisher
	parties      config.PartyConfig
}

func NewProductService(
	store *ledger.Store,
	validator *contract.Validator,
	proposalRepo *repository.ProposalRepository,
	productRepo *repository.ProductRepository,
	publisher *event.Publisher,
	parties config.PartyConfig,
) *ProductService {
	return &ProductService{
		store:        store,
		validator:    validator,
		proposalRepo: proposalRepo,
		productRepo:  productRepo,
		publisher:    publisher,
		parties:      parties,
	}
}

// ProposeProduct records a provider's unapproved product offer.
func (s *ProductService) ProposeProduct(ctx context.Context, req models.ProposeProductRequest) (*models.ProductProposal, error) {
	expiryDate, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry_date %q: %w", req.ExpiryDate, err)
	}

	proposal := models.ProductProposal{
		ProposalID:              uuid.NewString(),
		ProviderID:              req.ProviderID,
		ProviderName:            req.ProviderName,
		ForCrop:                 req.ForCrop,
		PremiumAmountPerHectare: req.PremiumAmountPerHectare,
		InsuredAmountPerHectare: req.InsuredAmountPerHectare,
		ProductDocHash:          req.ProductDocHash,
		ExpiryDate:              expiryDate,
		WeatherCriteria:         req.WeatherCriteria,
		Participants:            models.Parties{req.ProviderName, s.parties.RegulatorName},
	}

	tx := contract.Transaction{
		OutputProposals: []models.ProductProposal{proposal},
		Command:         contract.ProposeProduct{},
		Signers:         models.Parties{req.ProviderName},
	}
	if err := s.validator.Validate(tx); err != nil {
		return nil, err
	}

	if err := s.store.AddProposal(proposal); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.Insert(ctx, &proposal); err != nil {
		return nil, fmt.Errorf("failed to persist proposal: %w", err)
	}

	s.publisher.Publish(ctx, event.LedgerEvent{
		Kind:       event.ProductProposed,
		RecordID:   proposal.ProposalID,
		OccurredAt: time.Now(),
		Payload:    proposal,
	})

	slog.Info("product proposed", "proposal_id", proposal.ProposalID, "provider", proposal.ProviderName, "crop", proposal.ForCrop)
	return &proposal, nil
}

// ApproveProduct consumes a proposal and issues the product, signed by both
// the provider and the regulator.
func (s *ProductService) ApproveProduct(ctx context.Context, proposalID string) (*models.Product, error) {
	proposal, err := s.store.Proposal(proposalID)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		ProductID:               uuid.NewString(),
		ProviderID:              proposal.ProviderID,
		ProviderName:            proposal.ProviderName,
		ForCrop:                 proposal.ForCrop,
		PremiumAmountPerHectare: proposal.PremiumAmountPerHectare,
		InsuredAmountPerHectare: proposal.InsuredAmountPerHectare,
		ProductDocHash:          proposal.ProductDocHash,
		CreatedDate:             time.Now(),
		ExpiryDate:              proposal.ExpiryDate,
		WeatherCriteria:         proposal.WeatherCriteria,
		IsActive:                true,
		Participants:            append(models.Parties{}, proposal.Participants...),
	}

	tx := contract.Transaction{
		InputProposals: []models.ProductProposal{proposal},
		OutputProducts: []models.Product{product},
		Command:        contract.CreateProduct{},
		Signers:        append(models.Parties{}, product.Participants...),
	}
	if err := s.validator.Validate(tx); err != nil {
		return nil, err
	}

	if err := s.store.ConsumeProposal(proposalID, product); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.MarkConsumed(ctx, proposalID); err != nil {
		return nil, fmt.Errorf("failed to persist proposal consumption: %w", err)
	}
	if err := s.productRepo.Insert(ctx, &product); err != nil {
		return nil, fmt.Errorf("failed to persist product: %w", err)
	}

	s.publisher.Publish(ctx, event.LedgerEvent{
		Kind:       event.ProductCreated,
		RecordID:   product.ProductID,
		OccurredAt: time.Now(),
		Payload:    product,
	})

	slog.Info("product created", "product_id", product.ProductID, "proposal_id", proposalID)
	return &product, nil
}

// GetProduct retrieves one product from the read model.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	if _, err := s.store.Product(productID); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, productID)
}

// ListProducts retrieves all products from the read model.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.GetAll(ctx)
}

// ListProposals retrieves proposals, optionally filtered by status.
func (s *ProductService) ListProposals(ctx context.Context, status models.ProposalStatus) ([]models.ProductProposal, error) {
	return s.proposalRepo.GetAll(ctx, status)
}
