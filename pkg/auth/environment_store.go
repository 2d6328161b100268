package auth

import (
	"os"
	"time"
)

// Environment variable names, shared with the config layer's
// LoadFromEnv. The store only adds the CredentialStore shape on top.
const (
	envSessionID = "MEDIASYNC_SESSION_ID"
	envCSRFToken = "MEDIASYNC_CSRF_TOKEN"
	envUserAgent = "MEDIASYNC_USER_AGENT"
)

// EnvironmentStore adapts process environment variables to the
// CredentialStore interface. It is read-only and holds at most one
// session, which is enough for the daemon running in a container
// without a keychain or vault file.
type EnvironmentStore struct {
	lookup func(string) string
}

// NewEnvironmentStore creates an environment-backed credential store.
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{lookup: os.Getenv}
}

// session builds the one account the environment can describe, or
// reports that the required variables are not set.
func (e *EnvironmentStore) session() (*Account, bool) {
	sessionID := e.lookup(envSessionID)
	csrfToken := e.lookup(envCSRFToken)
	if sessionID == "" || csrfToken == "" {
		return nil, false
	}
	return &Account{
		Username:     "default",
		SessionID:    sessionID,
		CSRFToken:    csrfToken,
		UserAgent:    e.lookup(envUserAgent),
		LastModified: time.Now(),
	}, true
}

// Retrieve returns the environment session under the requested
// username; the environment cannot distinguish accounts.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	account, ok := e.session()
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	if username != "" {
		account.Username = username
	}
	return account, nil
}

// List returns the single environment session when present.
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, ok := e.session()
	if !ok {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Store is rejected; the environment is read-only.
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Delete is rejected; the environment is read-only.
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists reports whether the environment carries a session.
func (e *EnvironmentStore) Exists(username string) bool {
	_, ok := e.session()
	return ok
}
