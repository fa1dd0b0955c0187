package user

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	tokenTTL   = 72 * time.Hour
	contextKey = "user"
)

// Tokens issues and verifies the HS256 session cookie.
type Tokens struct {
	secret []byte
	cookie string
}

func NewTokens(secret, cookie string) *Tokens {
	return &Tokens{secret: []byte(secret), cookie: cookie}
}

func (t *Tokens) CookieName() string {
	return t.cookie
}

// Issue signs a token for user and returns it with its expiry.
func (t *Tokens) Issue(user User) (string, time.Time, error) {
	expires := time.Now().Add(tokenTTL)
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"handle":  user.SolvedHandle(),
		"jti":     uuid.NewString(),
		"exp":     expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (t *Tokens) Parse(raw string) (*jwt.Token, error) {
	return jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
}

// Optional stores a valid session token in locals and lets every request
// through, so public routes can tell logged-in visitors apart.
func (t *Tokens) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Cookies(t.cookie); raw != "" {
			if tok, err := t.Parse(raw); err == nil && tok.Valid {
				c.Locals(contextKey, tok)
			}
		}
		return c.Next()
	}
}

// Required rejects requests without a valid session cookie.
func (t *Tokens) Required() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  t.secret,
		TokenLookup: "cookie:" + t.cookie,
		ContextKey:  contextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	})
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals(contextKey).(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// GetUserIDFromCtx extracts the user_id claim of the session token.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", fiber.ErrUnauthorized
	}
	return id, nil
}

// HandleFromCtx returns the solved.ac handle of the logged-in visitor.
func HandleFromCtx(c *fiber.Ctx) (string, bool) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return "", false
	}
	if handle, ok := claims["handle"].(string); ok && handle != "" {
		return handle, true
	}
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id, true
	}
	return "", false
}
