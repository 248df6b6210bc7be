package service

import (
	"fmt"
	"regexp"
	"time"

	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/store"
)

var (
	participantIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	symbolRegex        = regexp.MustCompile(`^[A-Z]{1,10}$`)
)

// AccountService handles broker and shareholder registration and lookup.
type AccountService struct {
	brokers      *store.BrokerStore
	shareholders *store.ShareholderStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(brokers *store.BrokerStore, shareholders *store.ShareholderStore) *AccountService {
	return &AccountService{brokers: brokers, shareholders: shareholders}
}

// RegisterBroker validates and creates a broker with its initial credit.
func (s *AccountService) RegisterBroker(brokerID string, credit int64) (*domain.Broker, error) {
	if !participantIDRegex.MatchString(brokerID) {
		return nil, &domain.ValidationError{
			Message: "broker_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if credit < 0 {
		return nil, &domain.ValidationError{
			Message: "credit must be non-negative",
		}
	}

	b := &domain.Broker{
		BrokerID:  brokerID,
		Credit:    credit,
		CreatedAt: time.Now(),
	}
	if err := s.brokers.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBroker retrieves a broker by ID.
func (s *AccountService) GetBroker(brokerID string) (*domain.Broker, error) {
	return s.brokers.Get(brokerID)
}

// RegisterShareholder validates and creates a shareholder with its
// initial per-symbol positions.
func (s *AccountService) RegisterShareholder(shareholderID string, positions map[string]int) (*domain.Shareholder, error) {
	if !participantIDRegex.MatchString(shareholderID) {
		return nil, &domain.ValidationError{
			Message: "shareholder_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	for symbol, qty := range positions {
		if !symbolRegex.MatchString(symbol) {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("invalid symbol in positions: %q", symbol),
			}
		}
		if qty < 0 {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("position for %s must be non-negative", symbol),
			}
		}
	}

	if positions == nil {
		positions = make(map[string]int)
	}
	sh := &domain.Shareholder{
		ShareholderID: shareholderID,
		Positions:     positions,
		CreatedAt:     time.Now(),
	}
	if err := s.shareholders.Create(sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// GetShareholder retrieves a shareholder by ID.
func (s *AccountService) GetShareholder(shareholderID string) (*domain.Shareholder, error) {
	return s.shareholders.Get(shareholderID)
}
