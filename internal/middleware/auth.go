package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pkgConfig "github.com/kerimovok/go-pkg-utils/config"
	"github.com/kerimovok/go-pkg-utils/httpx"
)

// Session roles
const (
	RolePatient  = "patient"
	RoleProvider = "provider"
)

// Locals keys set by Protected for downstream handlers
const (
	LocalAccountID = "accountID"
	LocalRole      = "role"
	LocalAddress   = "address"
)

// SessionClaims is the JWT payload for a patient or provider session. Address
// carries the account's ledger address so handlers never need a lookup for it.
type SessionClaims struct {
	Role    string `json:"role"`
	Address string `json:"addr,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for an account
func IssueToken(accountID uuid.UUID, role, address string) (string, error) {
	claims := SessionClaims{
		Role:    role,
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(pkgConfig.GetEnv("JWT_SECRET")))
}

// Protected authenticates the session token and, when role is non-empty,
// requires that exact role. Cross-role calls come back 403.
func Protected(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseToken(c.Get("Authorization"))
		if err != nil {
			response := httpx.Unauthorized("Invalid or missing session token")
			return httpx.SendResponse(c, response)
		}

		if role != "" && claims.Role != role {
			response := httpx.Forbidden("Session role not permitted for this operation")
			return httpx.SendResponse(c, response)
		}

		accountID, err := uuid.Parse(claims.Subject)
		if err != nil {
			response := httpx.Unauthorized("Invalid session subject")
			return httpx.SendResponse(c, response)
		}

		c.Locals(LocalAccountID, accountID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalAddress, claims.Address)
		return c.Next()
	}
}

func parseToken(header string) (*SessionClaims, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(pkgConfig.GetEnv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// AccountID returns the authenticated account id set by Protected
func AccountID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(LocalAccountID).(uuid.UUID)
	return id
}

// Address returns the authenticated account's ledger address
func Address(c *fiber.Ctx) string {
	addr, _ := c.Locals(LocalAddress).(string)
	return addr
}
