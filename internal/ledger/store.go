package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"insurance-ledger/internal/models"
)

var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConsumed means the record version was already spent by an accepted
	// transition; at most one transition may consume a given version.
	ErrConsumed = errors.New("record version already consumed")
	// ErrDuplicate means a record with the same id already exists.
	ErrDuplicate = errors.New("record already exists")
)

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConsumed reports whether err is a spent-version error.
func IsConsumed(err error) bool {
	return errors.Is(err, ErrConsumed)
}

type proposalEntry struct {
	proposal models.ProductProposal
	consumed bool
}

type policyVersion struct {
	policy   models.Policy
	consumed bool
}

// Store is the versioned-record ledger: an append-log per entity keyed by
// (id, version). Transitions consume exactly one prior version and append
// exactly one new one; records are never mutated in place. The store is the
// single serialization point standing in for the external transport's
// single-writer-per-version guarantee.
type Store struct {
	mu        sync.RWMutex
	proposals map[string]*proposalEntry
	products  map[string]models.Product
	policies  map[string][]policyVersion
}

func NewStore() *Store {
	return &Store{
		proposals: make(map[string]*proposalEntry),
		products:  make(map[string]models.Product),
		policies:  make(map[string][]policyVersion),
	}
}

// AddProposal records a new, unconsumed product proposal.
func (s *Store) AddProposal(proposal models.ProductProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[proposal.ProposalID]; ok {
		return fmt.Errorf("proposal %s: %w", proposal.ProposalID, ErrDuplicate)
	}
	s.proposals[proposal.ProposalID] = &proposalEntry{proposal: proposal}
	return nil
}

// Proposal returns an unconsumed proposal by id.
func (s *Store) Proposal(proposalID string) (models.ProductProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.proposals[proposalID]
	if !ok {
		return models.ProductProposal{}, fmt.Errorf("proposal %s: %w", proposalID, ErrNotFound)
	}
	if entry.consumed {
		return models.ProductProposal{}, fmt.Errorf("proposal %s: %w", proposalID, ErrConsumed)
	}
	return entry.proposal, nil
}

// ConsumeProposal spends a proposal exactly once and records the product
// produced from it.
func (s *Store) ConsumeProposal(proposalID string, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.proposals[proposalID]
	if !ok {
		return fmt.Errorf("proposal %s: %w", proposalID, ErrNotFound)
	}
	if entry.consumed {
		return fmt.Errorf("proposal %s: %w", proposalID, ErrConsumed)
	}
	if _, ok := s.products[product.ProductID]; ok {
		return fmt.Errorf("product %s: %w", product.ProductID, ErrDuplicate)
	}

	entry.consumed = true
	s.products[product.ProductID] = product
	return nil
}

// Product returns a product by id. Products are reference data: they are
// read, never consumed.
func (s *Store) Product(productID string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return models.Product{}, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return product, nil
}

// AddPolicy records version 0 of a new policy.
func (s *Store) AddPolicy(policy models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[policy.PolicyID]; ok {
		return fmt.Errorf("policy %s: %w", policy.PolicyID, ErrDuplicate)
	}
	s.policies[policy.PolicyID] = []policyVersion{{policy: policy}}
	return nil
}

// LatestPolicy returns the newest unconsumed version of a policy and its
// version number.
func (s *Store) LatestPolicy(policyID string) (models.Policy, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, ok := s.policies[policyID]
	if !ok {
		return models.Policy{}, 0, fmt.Errorf("policy %s: %w", policyID, ErrNotFound)
	}
	latest := len(versions) - 1
	if versions[latest].consumed {
		return models.Policy{}, 0, fmt.Errorf("policy %s version %d: %w", policyID, latest, ErrConsumed)
	}
	return versions[latest].policy, latest, nil
}

// TransitionPolicy consumes the given version and appends the next one. It
// fails if that version is not the latest or was already consumed, so two
// racing transitions over the same version cannot both commit.
func (s *Store) TransitionPolicy(policyID string, version int, next models.Policy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, ok := s.policies[policyID]
	if !ok {
		return 0, fmt.Errorf("policy %s: %w", policyID, ErrNotFound)
	}
	if version != len(versions)-1 || versions[version].consumed {
		return 0, fmt.Errorf("policy %s version %d: %w", policyID, version, ErrConsumed)
	}

	versions[version].consumed = true
	s.policies[policyID] = append(versions, policyVersion{policy: next})
	return len(versions), nil
}

// PolicyVersion returns a specific historical version.
func (s *Store) PolicyVersion(policyID string, version int) (models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, ok := s.policies[policyID]
	if !ok || version < 0 || version >= len(versions) {
		return models.Policy{}, fmt.Errorf("policy %s version %d: %w", policyID, version, ErrNotFound)
	}
	return versions[version].policy, nil
}

// DuePolicies returns the latest unconsumed versions whose next evaluation
// instant has passed, for the scheduler to re-evaluate.
func (s *Store) DuePolicies(now time.Time) []models.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []models.Policy
	for _, versions := range s.policies {
		latest := versions[len(versions)-1]
		if latest.consumed {
			continue
		}
		policy := latest.policy
		if policy.Status == models.PolicyExpired {
			continue
		}
		if !policy.NextEvaluationAt.After(now) {
			due = append(due, policy)
		}
	}
	return due
}
