package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"ssemi/internal/common"
	"ssemi/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

const (
	challengeKeyPrefix = "2fa:code:"
	resetKeyPrefix     = "reset:token:"
)

// ChallengeStore keeps the ephemeral authentication state in Redis: pending
// two-factor codes keyed by email and single-use password-reset tokens.
// TTLs come from config; Redis expiry is the only cleanup.
type ChallengeStore struct {
	rdb *redis.Client
}

func NewChallengeStore(rdb *redis.Client) *ChallengeStore {
	return &ChallengeStore{rdb: rdb}
}

// IssueCode generates a fresh 6-digit code for the email, replacing any
// pending one.
func (s *ChallengeStore) IssueCode(ctx context.Context, correo string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("ChallengeStore.IssueCode: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	key := challengeKeyPrefix + correo
	if err := s.rdb.Set(ctx, key, code, config.AppConfig.TwoFactorTTL).Err(); err != nil {
		return "", fmt.Errorf("ChallengeStore.IssueCode: %w", err)
	}
	return code, nil
}

// VerifyCode checks the submitted code against the pending challenge. A
// match consumes the code; a mismatch leaves it pending, so failed attempts
// do not burn the challenge.
func (s *ChallengeStore) VerifyCode(ctx context.Context, correo, codigo string) error {
	key := challengeKeyPrefix + correo
	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return common.ErrChallengeExpired
	}
	if err != nil {
		return fmt.Errorf("ChallengeStore.VerifyCode: %w", err)
	}
	if stored != codigo {
		return common.ErrInvalidChallengeCode
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("ChallengeStore.VerifyCode: %w", err)
	}
	return nil
}

// IssueResetToken stores a single-use password-reset token for the user.
func (s *ChallengeStore) IssueResetToken(ctx context.Context, token string, usuarioID int) error {
	key := resetKeyPrefix + token
	if err := s.rdb.Set(ctx, key, usuarioID, config.AppConfig.ResetTokenTTL).Err(); err != nil {
		return fmt.Errorf("ChallengeStore.IssueResetToken: %w", err)
	}
	return nil
}

// ConsumeResetToken resolves a reset token to its user and invalidates it.
func (s *ChallengeStore) ConsumeResetToken(ctx context.Context, token string) (int, error) {
	key := resetKeyPrefix + token
	usuarioID, err := s.rdb.GetDel(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, common.ErrResetTokenInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("ChallengeStore.ConsumeResetToken: %w", err)
	}
	return usuarioID, nil
}
