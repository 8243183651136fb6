package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"streamaccts/internal/model"
)

// DevClaims is the payload of tokens issued without Firebase.
type DevClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// DevTokenClient issues and verifies HS256 tokens for local development and
// tests. Claims granted through SetCustomClaims override the token's own
// isAdmin flag, mirroring how Firebase reads claims from the user record.
type DevTokenClient struct {
	secret []byte

	mu     sync.RWMutex
	admins map[string]bool
	emails map[string]string
}

func NewDevTokenClient(secret string) *DevTokenClient {
	return &DevTokenClient{
		secret: []byte(secret),
		admins: make(map[string]bool),
		emails: make(map[string]string),
	}
}

func (c *DevTokenClient) Issue(identity model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := DevClaims{
		Email:   identity.Email,
		Name:    identity.Name,
		IsAdmin: identity.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign dev token: %w", err)
	}
	return token, nil
}

func (c *DevTokenClient) Verify(ctx context.Context, tokenString string) (*model.Identity, error) {
	var claims DevClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("verify dev token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("verify dev token: missing subject")
	}

	c.mu.Lock()
	c.emails[claims.Email] = claims.Subject
	isAdmin, overridden := c.admins[claims.Subject]
	c.mu.Unlock()
	if !overridden {
		isAdmin = claims.IsAdmin
	}

	return &model.Identity{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		IsAdmin: isAdmin,
	}, nil
}

func (c *DevTokenClient) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.admins[uid] = isAdminClaim(claims)
	return nil
}

// UserByEmail only knows users that presented a token since startup.
func (c *DevTokenClient) UserByEmail(ctx context.Context, email string) (*model.Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	uid, ok := c.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &model.Identity{
		UID:     uid,
		Email:   email,
		IsAdmin: c.admins[uid],
	}, nil
}
