// Package token выпускает и проверяет подписанные токены сессии.
// Access и refresh токены структурно одинаковы (JWT, HS256), различаются
// временем жизни и claim-ом kind: refresh токен нельзя предъявить как
// access и наоборот.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/authd/internal/models"
)

// Kind различает назначение токена
type Kind string

const (
	// KindAccess короткоживущий access token
	KindAccess Kind = "access"
	// KindRefresh долгоживущий refresh token
	KindRefresh Kind = "refresh"
)

const issuer = "authd"

var (
	// ErrInvalidToken токен не прошел проверку подписи, формата или срока
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongKind валидный токен предъявлен не по назначению
	ErrWrongKind = errors.New("unexpected token kind")
)

// Claims представляет JWT claims сервиса
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	Kind   Kind        `json:"kind"`
	jwt.RegisteredClaims
}

// Service выпускает и проверяет токены
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService создает новый сервис токенов
// secret должен быть криптографически стойкой случайной строкой;
// смена секрета инвалидирует все выпущенные токены
func NewService(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// SignAccess создает новый access token
// Возвращает токен и время жизни в секундах
func (s *Service) SignAccess(userID string, role models.Role) (string, int64, error) {
	tokenString, _, err := s.sign(userID, role, KindAccess, s.accessTTL)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, int64(s.accessTTL.Seconds()), nil
}

// SignRefresh создает новый refresh token
// Возвращает токен и момент истечения
func (s *Service) SignRefresh(userID string, role models.Role) (string, time.Time, error) {
	tokenString, expiresAt, err := s.sign(userID, role, KindRefresh, s.refreshTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// sign создает подписанный токен с указанным kind и временем жизни
// jti генерируется для каждого токена: по нему refresh токены
// отзываются через denylist
func (s *Service) sign(userID string, role models.Role, kind Kind, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Verify валидирует и парсит токен
// Ошибка, если подпись неверна, токен искажен, срок истек
// или kind не совпадает с ожидаемым
func (s *Service) Verify(tokenString string, expected Kind) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != expected {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongKind, claims.Kind, expected)
	}

	return claims, nil
}
