package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"genuverity-backend/models"
	"genuverity-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryKeyStore struct {
	mu      sync.Mutex
	keys    map[string]*models.APIKey
	lookups int
}

func newMemoryKeyStore() *memoryKeyStore {
	return &memoryKeyStore{keys: make(map[string]*models.APIKey)}
}

func (s *memoryKeyStore) Create(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key.ID = uuid.New()
	key.CreatedAt = time.Now()
	cp := *key
	s.keys[key.Prefix] = &cp
	return nil
}

func (s *memoryKeyStore) GetByPrefix(_ context.Context, prefix string) (*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	k, ok := s.keys[prefix]
	if !ok {
		return nil, repository.ErrAPIKeyNotFound
	}
	cp := *k
	return &cp, nil
}

func (s *memoryKeyStore) revoke(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.keys[prefix].RevokedAt = &now
}

func TestIssueAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryKeyStore()
	svc := NewAPIKeyService(store)

	raw, key, err := svc.Issue(ctx, models.TierAuthenticated, "newsroom")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "gv_"+key.Prefix+"_"))
	assert.Len(t, raw, len("gv_")+apiKeyPrefixLength+1+apiKeySecretLength)
	assert.NotContains(t, key.KeyHash, raw)

	got, err := svc.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, models.TierAuthenticated, got.Tier)
	assert.Equal(t, "newsroom", got.Owner)

	// verified keys skip the store
	_, err = svc.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 1, store.lookups)
}

func TestAuthenticateRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	store := newMemoryKeyStore()
	svc := NewAPIKeyService(store)

	raw, key, err := svc.Issue(ctx, models.TierEnterprise, "partner")
	require.NoError(t, err)

	for _, bad := range []string{"", "nope", "gv_short_secret", "xx_" + key.Prefix + "_secret", "gv_" + key.Prefix + "_wrongsecret", "gv_abcdefgh_" + strings.Repeat("a", 32)} {
		_, err := svc.Authenticate(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidAPIKey, bad)
	}

	store.revoke(key.Prefix)
	_, err = NewAPIKeyService(store).Authenticate(ctx, raw)
	assert.ErrorIs(t, err, ErrRevokedAPIKey)
}

func TestIssueRejectsAnonymousTier(t *testing.T) {
	svc := NewAPIKeyService(newMemoryKeyStore())
	_, _, err := svc.Issue(context.Background(), models.TierAnonymous, "x")
	assert.Error(t, err)
	_, _, err = svc.Issue(context.Background(), models.Tier("gold"), "x")
	assert.Error(t, err)
}
