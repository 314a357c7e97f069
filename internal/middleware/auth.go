package middleware

import (
	"errors"
	"fmt"
	"strings"

	"dataroom-service/internal/models"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const identityKey = "identity"

var ErrInvalidToken = errors.New("invalid token")

type JWTVerifier struct {
	secretKey []byte
}

func NewJWTVerifier(jwtSecret string) *JWTVerifier {
	return &JWTVerifier{
		secretKey: []byte(jwtSecret),
	}
}

func (v *JWTVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&models.Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	return claims, nil
}

// Authenticator attaches the caller's identity to the request. Requests
// without credentials pass through anonymously; the services decide what
// anonymous callers may do.
type Authenticator struct {
	verifier     *JWTVerifier
	trustGateway bool
	logger       *zap.Logger
}

// NewAuthenticator builds the identity middleware. With trustGateway set,
// identity headers injected by the API gateway are accepted when no bearer
// token is present.
func NewAuthenticator(verifier *JWTVerifier, trustGateway bool, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		verifier:     verifier,
		trustGateway: trustGateway,
		logger:       logger,
	}
}

func (a *Authenticator) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := a.verifier.VerifyToken(tokenString)
			if err != nil {
				a.logger.Debug("Token validation failed", zap.String("path", c.Path()), zap.Error(err))
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token",
					"code":  "unauthenticated",
				})
			}
			identity := claims.Identity()
			if identity.UserID == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Token carries no user id",
					"code":  "unauthenticated",
				})
			}
			c.Locals(identityKey, identity)
			return c.Next()
		}

		if a.trustGateway {
			if identity := gatewayIdentity(c); identity != nil {
				c.Locals(identityKey, identity)
			}
		}
		return c.Next()
	}
}

// gatewayIdentity reads the headers the gateway sets after validating a token.
func gatewayIdentity(c fiber.Ctx) *models.Identity {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return nil
	}

	identity := &models.Identity{
		UserID:   userID,
		Email:    c.Get("X-User-Email"),
		Username: c.Get("X-User-Name"),
		Role:     c.Get("X-User-Role"),
	}
	if perms := c.Get("X-User-Permissions"); perms != "" {
		for _, perm := range strings.Split(perms, ",") {
			if perm = strings.TrimSpace(perm); perm != "" {
				identity.Permissions = append(identity.Permissions, perm)
			}
		}
	}
	return identity
}

// IdentityFrom returns the authenticated caller, or nil for anonymous requests.
func IdentityFrom(c fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(identityKey).(*models.Identity)
	return identity
}
