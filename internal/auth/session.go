// server/internal/auth/session.go
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a login.
const DefaultSessionTTL = 7 * 24 * time.Hour

var ErrInvalidSession = errors.New("invalid session token")

// Session is the identity carried inside the cookie. It is for display only;
// no authorization decision beyond role checks on admin routes reads it.
type Session struct {
	Name     string `json:"Name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionClaims defines the payload for the JWT. Data holds the JSON encoded Session.
type SessionClaims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

// SessionCodec issues and opens session tokens: an HS256 JWT sealed with
// AES-256-GCM under a key held only by the server.
type SessionCodec struct {
	signKey []byte
	aead    cipher.AEAD
	ttl     time.Duration
	now     func() time.Time
}

func NewSessionCodec(secret string, ttl time.Duration) (*SessionCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	sealKey := deriveKey("seal", secret)
	block, err := aes.NewCipher(sealKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &SessionCodec{
		signKey: deriveKey("sign", secret),
		aead:    gcm,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// WithClock swaps the time source. Used by tests to move across expiry.
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	cp := *c
	cp.now = now
	return &cp
}

// TTL is also the cookie max-age.
func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

// Issue returns the sealed token and its expiry.
func (c *SessionCodec) Issue(s Session) (string, time.Time, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", time.Time{}, err
	}
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)
	claims := &SessionClaims{
		Data: string(data),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", time.Time{}, err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(signed), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), expiresAt, nil
}

// Open decrypts the token and validates signature and expiry.
func (c *SessionCodec) Open(token string) (*Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return nil, fmt.Errorf("%w: short payload", ErrInvalidSession)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(string(plain), claims, func(t *jwt.Token) (interface{}, error) {
		return c.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	var s Session
	if err := json.Unmarshal([]byte(claims.Data), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return &s, nil
}

func deriveKey(label, secret string) []byte {
	sum := sha256.Sum256([]byte(label + ":" + secret))
	return sum[:]
}
