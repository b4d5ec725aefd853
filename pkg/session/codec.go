package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default expiry windows, used when Config leaves the TTLs zero.
const (
	DefaultAccessTTL  = 6 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrTokenInvalid is the single verification failure returned by the codec.
// Malformed input, a bad signature and an expired token are deliberately
// indistinguishable to the caller.
var ErrTokenInvalid = errors.New("token invalid")

// Config carries the signing material and expiry windows for the token codec.
// It is injected at construction; the codec never reads ambient state.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// RefreshClaims is the payload embedded in a signed refresh token.
type RefreshClaims struct {
	UserID  string
	TokenID string
}

// Codec signs and verifies the two token variants. Access tokens carry the
// user id only; refresh tokens additionally carry the server-side record id.
// The variants use separate secrets, so a token signed for one role never
// verifies in the other.
type Codec struct {
	cfg Config
}

func NewCodec(cfg Config) *Codec {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Codec{cfg: cfg}
}

// IssueAccessToken signs a short-lived token embedding the user id.
func (c *Codec) IssueAccessToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(c.cfg.AccessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.AccessSecret)
}

// IssueRefreshToken signs a long-lived token embedding the user id and the id
// of the persisted token record.
func (c *Codec) IssueRefreshToken(userID, tokenID string) (string, error) {
	claims := jwt.MapClaims{
		"userId":  userID,
		"tokenId": tokenID,
		"exp":     time.Now().Add(c.cfg.RefreshTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.RefreshSecret)
}

// VerifyAccessToken checks signature and expiry and returns the embedded user id.
func (c *Codec) VerifyAccessToken(signed string) (string, error) {
	claims, err := c.verify(signed, c.cfg.AccessSecret)
	if err != nil {
		return "", err
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", ErrTokenInvalid
	}
	return userID, nil
}

// VerifyRefreshToken checks signature and expiry and returns the typed payload.
func (c *Codec) VerifyRefreshToken(signed string) (RefreshClaims, error) {
	claims, err := c.verify(signed, c.cfg.RefreshSecret)
	if err != nil {
		return RefreshClaims{}, err
	}
	userID, _ := claims["userId"].(string)
	tokenID, _ := claims["tokenId"].(string)
	if userID == "" || tokenID == "" {
		return RefreshClaims{}, ErrTokenInvalid
	}
	return RefreshClaims{UserID: userID, TokenID: tokenID}, nil
}

func (c *Codec) verify(signed string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
