package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"genuverity-backend/models"
	"genuverity-backend/repository"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiKeyPrefix       = "gv"
	apiKeyPrefixLength = 8
	apiKeySecretLength = 32
	verifiedKeyTTL     = 10 * time.Minute
)

var (
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrRevokedAPIKey = errors.New("API key has been revoked")
)

// APIKeyStore persists issued keys
type APIKeyStore interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByPrefix(ctx context.Context, prefix string) (*models.APIKey, error)
}

// APIKeyService issues keys of the form gv_<prefix>_<secret> and resolves
// presented keys to their tier. Only bcrypt hashes are stored.
type APIKeyService struct {
	store    APIKeyStore
	verified *gocache.Cache
}

func NewAPIKeyService(store APIKeyStore) *APIKeyService {
	return &APIKeyService{
		store:    store,
		verified: gocache.New(verifiedKeyTTL, 2*verifiedKeyTTL),
	}
}

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Issue creates a key and returns its plaintext once
func (s *APIKeyService) Issue(ctx context.Context, tier models.Tier, owner string) (string, *models.APIKey, error) {
	if !tier.Valid() || tier == models.TierAnonymous {
		return "", nil, fmt.Errorf("cannot issue a key for tier %q", tier)
	}

	buf := make([]byte, 40)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("failed to generate key: %w", err)
	}
	encoded := strings.ToLower(keyEncoding.EncodeToString(buf))
	prefix := encoded[:apiKeyPrefixLength]
	secret := encoded[apiKeyPrefixLength : apiKeyPrefixLength+apiKeySecretLength]

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash key: %w", err)
	}

	key := &models.APIKey{
		Prefix:  prefix,
		KeyHash: string(hash),
		Tier:    tier,
		Owner:   owner,
	}
	if err := s.store.Create(ctx, key); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s_%s_%s", apiKeyPrefix, prefix, secret), key, nil
}

// Authenticate resolves a presented key. Verified keys are remembered for
// ten minutes so bcrypt runs once per key per window.
func (s *APIKeyService) Authenticate(ctx context.Context, raw string) (*models.APIKey, error) {
	prefix, secret, ok := splitAPIKey(raw)
	if !ok {
		return nil, ErrInvalidAPIKey
	}

	sum := sha256.Sum256([]byte(raw))
	cacheKey := hex.EncodeToString(sum[:])
	if v, found := s.verified.Get(cacheKey); found {
		return v.(*models.APIKey), nil
	}

	key, err := s.store.GetByPrefix(ctx, prefix)
	if errors.Is(err, repository.ErrAPIKeyNotFound) {
		return nil, ErrInvalidAPIKey
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(secret)); err != nil {
		return nil, ErrInvalidAPIKey
	}
	if !key.Active() {
		return nil, ErrRevokedAPIKey
	}

	s.verified.SetDefault(cacheKey, key)
	return key, nil
}

func splitAPIKey(raw string) (prefix, secret string, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	if len(parts) != 3 || parts[0] != apiKeyPrefix || len(parts[1]) != apiKeyPrefixLength || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
