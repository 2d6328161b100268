// Package auth stores and retrieves Instagram session credentials.
// Credentials are always injected at runtime, never compiled in: the
// system keychain is tried first, then an encrypted file, then plain
// environment variables.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sentinel errors for credential operations.
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Account represents one Instagram login's session credentials.
type Account struct {
	Username     string    `json:"username"`
	SessionID    string    `json:"session_id"`
	CSRFToken    string    `json:"csrf_token"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving
// credentials.
type CredentialStore interface {
	// Store saves credentials for a given account.
	Store(account *Account) error

	// Retrieve gets credentials for a specific username.
	Retrieve(username string) (*Account, error)

	// List returns all stored accounts.
	List() ([]*Account, error)

	// Delete removes credentials for a specific username.
	Delete(username string) error

	// Exists checks if credentials exist for a username.
	Exists(username string) bool
}

// Manager chains credential stores with fallback: writes go to the
// first store that accepts them, reads try each store in order.
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager with the available storage
// backends.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit store chain.
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the account in the first store that accepts it.
func (m *Manager) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}
	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(account); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = ErrStoreUnavailable
	}
	return fmt.Errorf("no store accepted the credentials: %w", lastErr)
}

// Retrieve returns the account from the first store that has it.
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, store := range m.stores {
		account, err := store.Retrieve(username)
		if err == nil {
			return account, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// List merges the accounts from every store, first occurrence of a
// username wins.
func (m *Manager) List() ([]*Account, error) {
	seen := make(map[string]bool)
	var accounts []*Account
	for _, store := range m.stores {
		stored, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range stored {
			if !seen[account.Username] {
				seen[account.Username] = true
				accounts = append(accounts, account)
			}
		}
	}
	return accounts, nil
}

// Delete removes the account from every store that has it.
func (m *Manager) Delete(username string) error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists(username) {
			if err := store.Delete(username); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists checks if any store has credentials for the username.
func (m *Manager) Exists(username string) bool {
	for _, store := range m.stores {
		if store.Exists(username) {
			return true
		}
	}
	return false
}

func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "mediasync")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
