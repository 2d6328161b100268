package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory CredentialStore for manager tests.
type memStore struct {
	accounts map[string]*Account
	storeErr error
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]*Account)}
}

func (m *memStore) Store(account *Account) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.accounts[account.Username] = account
	return nil
}

func (m *memStore) Retrieve(username string) (*Account, error) {
	if account, ok := m.accounts[username]; ok {
		return account, nil
	}
	return nil, ErrCredentialsNotFound
}

func (m *memStore) List() ([]*Account, error) {
	var accounts []*Account
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (m *memStore) Delete(username string) error {
	if _, ok := m.accounts[username]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.accounts, username)
	return nil
}

func (m *memStore) Exists(username string) bool {
	_, ok := m.accounts[username]
	return ok
}

func testAccount(username string) *Account {
	return &Account{
		Username:     username,
		SessionID:    "session-" + username,
		CSRFToken:    "csrf-" + username,
		LastModified: time.Now(),
	}
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	store := newMemStore()
	m := NewManagerWithStores(store)

	require.NoError(t, m.Store(testAccount("alice")))

	account, err := m.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "session-alice", account.SessionID)
}

func TestManagerFallsBackOnStoreError(t *testing.T) {
	broken := newMemStore()
	broken.storeErr = ErrStoreUnavailable
	working := newMemStore()
	m := NewManagerWithStores(broken, working)

	require.NoError(t, m.Store(testAccount("alice")))
	assert.True(t, working.Exists("alice"))
	assert.False(t, broken.Exists("alice"))
}

func TestManagerRejectsInvalidAccount(t *testing.T) {
	m := NewManagerWithStores(newMemStore())

	assert.ErrorIs(t, m.Store(nil), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Account{}), ErrInvalidCredentials)
}

func TestManagerDelete(t *testing.T) {
	first := newMemStore()
	second := newMemStore()
	m := NewManagerWithStores(first, second)

	require.NoError(t, first.Store(testAccount("alice")))
	require.NoError(t, second.Store(testAccount("alice")))

	require.NoError(t, m.Delete("alice"))
	assert.False(t, m.Exists("alice"))

	assert.ErrorIs(t, m.Delete("ghost"), ErrCredentialsNotFound)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("alice")))
	require.NoError(t, store.Store(testAccount("bob")))

	account, err := store.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "csrf-alice", account.CSRFToken)

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	// A fresh store over the same file must decrypt with the sidecar key.
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	account, err = reopened.Retrieve("bob")
	require.NoError(t, err)
	assert.Equal(t, "session-bob", account.SessionID)
}

func TestEncryptedFileStoreDelete(t *testing.T) {
	store, err := NewEncryptedFileStore(filepath.Join(t.TempDir(), "credentials.enc"))
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("alice")))
	require.NoError(t, store.Delete("alice"))

	_, err = store.Retrieve("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("MEDIASYNC_SESSION_ID", "env-session")
	t.Setenv("MEDIASYNC_CSRF_TOKEN", "env-csrf")

	store := NewEnvironmentStore()
	account, err := store.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "env-session", account.SessionID)
	assert.Equal(t, "alice", account.Username)

	assert.ErrorIs(t, store.Store(account), ErrStoreUnavailable)
}

func TestEnvironmentStoreMissingCredentials(t *testing.T) {
	t.Setenv("MEDIASYNC_SESSION_ID", "")
	t.Setenv("MEDIASYNC_CSRF_TOKEN", "")

	store := NewEnvironmentStore()
	_, err := store.Retrieve("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEnvironmentStoreSingleSession(t *testing.T) {
	env := map[string]string{envSessionID: "s", envCSRFToken: "c"}
	store := &EnvironmentStore{lookup: func(key string) string { return env[key] }}

	account, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "default", account.Username)

	accounts, err := store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	assert.True(t, store.Exists("anyone"))
	assert.ErrorIs(t, store.Delete("anyone"), ErrStoreUnavailable)
}
