package providers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tvd/internal/structures"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

type AuthProviderInterface interface {
	Login(username, password string) (string, error)
	Verify(token string) (string, error)
}

// AuthProvider issues and verifies the signed session tokens backing the
// session gate. Credentials come from the static user table in config.
type AuthProvider struct {
	secret []byte
	ttl    time.Duration
	users  map[string]string
	now    func() time.Time
}

func NewAuthProvider(conf *structures.Config) AuthProviderInterface {
	return &AuthProvider{
		secret: []byte(conf.Auth.Secret),
		ttl:    conf.Auth.TokenTTL,
		users:  conf.Auth.Users,
		now:    time.Now,
	}
}

func (a *AuthProvider) Login(username, password string) (string, error) {
	stored, ok := a.users[username]
	if !ok || stored != password {
		return "", ErrBadCredentials
	}
	return a.issue(username)
}

func (a *AuthProvider) issue(username string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(a.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and then compares expiry against the current
// time again. The library already rejects expired tokens; the second check
// stays in on purpose.
func (a *AuthProvider) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return "", ErrInvalidToken
	}
	if exp != nil && exp.Time.Before(a.now()) {
		return "", ErrTokenExpired
	}

	username, _ := claims["username"].(string)
	return username, nil
}
