package accounts

import (
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// Service provides in-memory lookup over the user's accounts.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Name returns the display name of an account, or "" if unknown.
func (s *Service) Name(id string) string {
	return s.byID[id].Name
}

// Find resolves an account by id or, failing that, by case-insensitive name.
func (s *Service) Find(ref string) (model.Account, bool) {
	if a, ok := s.byID[ref]; ok {
		return a, true
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.Name, ref) {
			return a, true
		}
	}
	return model.Account{}, false
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}
