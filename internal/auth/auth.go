package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-arena/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
)

// Principal identifies an authenticated operator or viewer session.
type Principal struct {
	UserID string
	Email  string
}

type Service struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
}

func NewService(st *store.Store, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{store: st, secret: []byte(secret), ttl: ttl}
}

func (s *Service) Register(ctx context.Context, email, password, fullName string) (*store.User, error) {
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateUser(ctx, email, hash, fullName)
}

// Login checks credentials and mints an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, err
	}
	if !u.IsActive || !CheckPassword(u.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.mintToken(u)
}

func (s *Service) mintToken(u *store.User) (string, time.Time, error) {
	exp := time.Now().UTC().Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Authenticate parses and verifies a bearer token.
func (s *Service) Authenticate(token string) (Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return Principal{UserID: sub, Email: email}, nil
}

// Authorize reports whether the principal may operate on the project.
// Ownership is the only grant in this system.
func (s *Service) Authorize(ctx context.Context, principal Principal, projectID string) (bool, error) {
	return s.store.ProjectOwnedBy(ctx, projectID, principal.UserID)
}
