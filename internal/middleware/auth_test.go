package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dataroom-service/internal/models"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const secret = "unit-test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims *models.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func validClaims() *models.Claims {
	return &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:       "bob@x.com",
		Role:        "investor",
		Permissions: []string{"read:documents"},
	}
}

func TestVerifyToken(t *testing.T) {
	verifier := NewJWTVerifier(secret)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	testCases := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", signToken(t, jwt.SigningMethodHS256, []byte(secret), validClaims()), false},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()), true},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(secret), expired), true},
		{"unsigned", signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims()), true},
		{"garbage", "abc.def.ghi", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tc.token)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("Expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if identity := claims.Identity(); identity.UserID != "subject-id" || identity.Email != "bob@x.com" {
				t.Errorf("Unexpected identity %+v", identity)
			}
		})
	}
}

func newEchoApp(trustGateway bool) *fiber.App {
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop()))
	app.Use(NewAuthenticator(NewJWTVerifier(secret), trustGateway, zap.NewNop()).Handler())
	app.Get("/whoami", func(c fiber.Ctx) error {
		identity := IdentityFrom(c)
		if identity == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(identity.UserID + "|" + identity.Role)
	})
	return app
}

func whoami(t *testing.T, app *fiber.App, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthenticator(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(secret), validClaims())

	testCases := []struct {
		name         string
		trustGateway bool
		headers      map[string]string
		expectedCode int
		expectedBody string
	}{
		{"anonymous", false, nil, fiber.StatusOK, "anonymous"},
		{"bearer token", false, map[string]string{"Authorization": "Bearer " + token}, fiber.StatusOK, "subject-id|investor"},
		{"raw token", false, map[string]string{"Authorization": token}, fiber.StatusOK, "subject-id|investor"},
		{"bad token", false, map[string]string{"Authorization": "Bearer nope"}, fiber.StatusUnauthorized, ""},
		{"gateway headers ignored", false, map[string]string{"X-User-ID": "gw", "X-User-Role": "admin"}, fiber.StatusOK, "anonymous"},
		{"gateway headers trusted", true, map[string]string{"X-User-ID": "gw", "X-User-Role": "admin"}, fiber.StatusOK, "gw|admin"},
		{"token wins over headers", true, map[string]string{"Authorization": "Bearer " + token, "X-User-ID": "gw"}, fiber.StatusOK, "subject-id|investor"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := whoami(t, newEchoApp(tc.trustGateway), tc.headers)
			if status != tc.expectedCode {
				t.Fatalf("Expected %d, got %d", tc.expectedCode, status)
			}
			if tc.expectedBody != "" && body != tc.expectedBody {
				t.Errorf("Expected body %q, got %q", tc.expectedBody, body)
			}
		})
	}
}
