package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vogiaan1904/calorieclash/config"
	"github.com/vogiaan1904/calorieclash/pkg/logger"
)

const roleLeader = "leader"

// LeaderClaims identifies the leader of one game session.
type LeaderClaims struct {
	LeaderID string
	GameID   string
}

// TokenService issues and verifies the signed credential that guards
// leader-only operations (start, rematch).
type TokenService interface {
	IssueLeaderToken(ctx context.Context, leaderID, gameID string) (string, error)
	VerifyLeaderToken(ctx context.Context, token string) (*LeaderClaims, error)
}

type tokenService struct {
	conf config.JWTConfig
	l    logger.Logger
}

func NewTokenService(conf config.JWTConfig, l logger.Logger) TokenService {
	return &tokenService{
		conf: conf,
		l:    l,
	}
}

func (s *tokenService) IssueLeaderToken(ctx context.Context, leaderID, gameID string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"leader_id": leaderID,
		"game_id":   gameID,
		"role":      roleLeader,
		"exp":       now.Add(s.conf.Expiry).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.conf.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign leader token: %w", err)
	}

	return tokenStr, nil
}

func (s *tokenService) VerifyLeaderToken(ctx context.Context, token string) (*LeaderClaims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.conf.Secret), nil
	})
	if err != nil {
		s.l.Warnf(ctx, "tokenService.VerifyLeaderToken: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	role, _ := claims["role"].(string)
	if role != roleLeader {
		return nil, ErrNotLeader
	}

	leaderID, _ := claims["leader_id"].(string)
	gameID, _ := claims["game_id"].(string)
	if leaderID == "" || gameID == "" {
		return nil, ErrTokenInvalid
	}

	return &LeaderClaims{
		LeaderID: leaderID,
		GameID:   gameID,
	}, nil
}
