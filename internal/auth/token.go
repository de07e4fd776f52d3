package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid seat token")
	ErrEmptySecret  = errors.New("seat token secret must not be empty")
)

// SeatClaims 座位令牌：sub = playerID, match = matchID
type SeatClaims struct {
	MatchID string `json:"match"`
	jwt.RegisteredClaims
}

// Seat 令牌解析结果
type Seat struct {
	MatchID  string
	PlayerID string
}

// Issuer 签发/校验 HS256 座位令牌
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer ttl <= 0 表示不过期
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) Issue(matchID, playerID string) (string, error) {
	now := i.now()
	claims := SeatClaims{
		MatchID: matchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  playerID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign seat token: %w", err)
	}
	return s, nil
}

func (i *Issuer) Parse(raw string) (Seat, error) {
	claims := &SeatClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Seat{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.MatchID == "" {
		return Seat{}, fmt.Errorf("%w: missing seat claims", ErrInvalidToken)
	}
	return Seat{MatchID: claims.MatchID, PlayerID: claims.Subject}, nil
}
