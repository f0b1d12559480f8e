package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"adpulse/internal/amazon"
	"adpulse/internal/models"

	yaml "gopkg.in/yaml.v2"
)

// CredentialStore keeps per-account OAuth material in memory, seeded from
// the accounts file at startup. Missing or expired credentials surface as
// authentication errors so only that account's run fails.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]*models.Credentials
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: make(map[string]*models.Credentials)}
}

func (s *CredentialStore) GetCredentials(_ context.Context, accountID string) (*models.Credentials, error) {
	s.mu.RLock()
	c, ok := s.creds[accountID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no credentials for account %s: %w", accountID, amazon.ErrAuthentication)
	}
	if c.Expired(time.Now()) {
		return nil, fmt.Errorf("credentials expired for account %s: %w", accountID, amazon.ErrAuthentication)
	}
	cp := *c
	return &cp, nil
}

func (s *CredentialStore) Put(c *models.Credentials) {
	s.mu.Lock()
	s.creds[c.AccountID] = c
	s.mu.Unlock()
}

// accountSeed is one entry of the accounts file: account metadata plus its
// refresh token in a single record.
type accountSeed struct {
	ID           string     `yaml:"id"`
	Name         string     `yaml:"name"`
	Region       string     `yaml:"region"`
	ProfileID    string     `yaml:"profile_id"`
	IsActive     bool       `yaml:"is_active"`
	RefreshToken string     `yaml:"refresh_token"`
	ExpiresAt    *time.Time `yaml:"expires_at"`
}

type seedFile struct {
	Accounts []accountSeed `yaml:"accounts"`
}

// LoadSeedFile читает файл аккаунтов и возвращает аккаунты и их креды
func LoadSeedFile(path string) ([]*models.Account, []*models.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	accounts := make([]*models.Account, 0, len(seed.Accounts))
	creds := make([]*models.Credentials, 0, len(seed.Accounts))
	for _, entry := range seed.Accounts {
		accounts = append(accounts, &models.Account{
			ID:        entry.ID,
			Name:      entry.Name,
			Region:    entry.Region,
			ProfileID: entry.ProfileID,
			IsActive:  entry.IsActive,
		})
		creds = append(creds, &models.Credentials{
			AccountID:    entry.ID,
			RefreshToken: entry.RefreshToken,
			ExpiresAt:    entry.ExpiresAt,
		})
	}
	return accounts, creds, nil
}
