package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Значения по умолчанию для токенов.
const (
	DefaultTokenTTL    = 2 * time.Hour
	DefaultTokenIssuer = "booksearch-server"
)

// Ошибки проверки токена.
var (
	ErrInvalidToken = errors.New("невалидный токен")
	ErrTokenExpired = errors.New("срок действия токена истёк")
	ErrEmptySecret  = errors.New("секретный ключ JWT не задан")
)

// Структура для пользовательских данных в JWT (claims).
type jwtClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer выпускает и проверяет подписанные HS256 токены.
// Создается один раз при старте и после этого только читается.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer создает TokenIssuer. Пустой секрет недопустим.
func NewTokenIssuer(secret string, ttl time.Duration, issuer string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if issuer == "" {
		issuer = DefaultTokenIssuer
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// TTL возвращает время жизни выпускаемых токенов.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue создает подписанный токен для пользователя.
func (i *TokenIssuer) Issue(id Identity) (string, error) {
	if id.IsAnonymous() {
		return "", fmt.Errorf("%w: не указан ID пользователя", ErrInvalidToken)
	}

	now := i.now()
	claims := jwtClaims{
		UserID:   id.UserID,
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)), // Время истечения
			IssuedAt:  jwt.NewNumericDate(now),            // Время выдачи
			NotBefore: jwt.NewNumericDate(now),            // Время, с которого токен валиден
			Issuer:    i.issuer,                           // Источник токена
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, срок действия и издателя токена и возвращает идентичность.
// Просроченный токен возвращает ErrTokenExpired, любой другой дефект ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Anonymous, ErrInvalidToken
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Убеждаемся, что метод подписи HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Anonymous, ErrTokenExpired
		}
		return Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return Anonymous, ErrInvalidToken
	}

	return Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}
