package tokenstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
	keyInfo   = "koppeltaal token store"
)

var errSealedTooShort = errors.New("sealed value shorter than nonce")

// RedisTokenStore keeps token details per launch session in redis, sealed
// with a key derived from the configured secret.
type RedisTokenStore struct {
	redisRepo contracts.RedisRepository
	key       [keySize]byte
	Log       *zap.Logger
}

var _ contracts.TokenStore = (*RedisTokenStore)(nil)

func NewRedisTokenStore(repo contracts.RedisRepository, secret string, logger *zap.Logger) (*RedisTokenStore, error) {
	if secret == "" {
		return nil, exceptions.ErrTokenStoreSeal(errors.New("empty token store secret"))
	}
	s := &RedisTokenStore{redisRepo: repo, Log: logger}
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), s.key[:]); err != nil {
		return nil, exceptions.ErrTokenStoreSeal(err)
	}
	return s, nil
}

func sessionKey(sessionID string) string {
	return constvars.RedisKeySessionPrefix + sessionID
}

func (s *RedisTokenStore) Save(ctx context.Context, sessionID string, token *models.TokenDetails, ttl time.Duration) error {
	requestID := utils.GetRequestID(ctx)

	plain, err := json.Marshal(token)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return exceptions.ErrTokenStoreSeal(err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	if err := s.redisRepo.Set(ctx, sessionKey(sessionID), sealed, ttl); err != nil {
		s.Log.Error("redisTokenStore.Save error storing session",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, sessionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Load returns ErrSessionNotFound for unknown or expired sessions.
func (s *RedisTokenStore) Load(ctx context.Context, sessionID string) (*models.TokenDetails, error) {
	requestID := utils.GetRequestID(ctx)

	stored, err := s.redisRepo.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, exceptions.ErrSessionNotFound(nil)
	}

	var sealed []byte
	if err := json.Unmarshal([]byte(stored), &sealed); err != nil {
		return nil, exceptions.ErrTokenStoreOpen(err)
	}
	if len(sealed) < nonceSize {
		return nil, exceptions.ErrTokenStoreOpen(errSealedTooShort)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		s.Log.Error("redisTokenStore.Load cannot open sealed session",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, sessionID),
		)
		return nil, exceptions.ErrTokenStoreOpen(errors.New("authentication failed"))
	}

	token := new(models.TokenDetails)
	if err := json.Unmarshal(plain, token); err != nil {
		return nil, exceptions.ErrTokenStoreOpen(err)
	}
	return token, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, sessionID string) error {
	return s.redisRepo.Delete(ctx, sessionKey(sessionID))
}
