package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "1",
		"role": role,
	})
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runChain(e *echo.Echo, auth string, mws ...echo.MiddlewareFunc) int {
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	h := echo.HandlerFunc(handler)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	e := echo.New()
	if code := runChain(e, "", JWTAuth(testSecret)); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	e := echo.New()
	tok := signToken(t, "other-secret", "admin")
	if code := runChain(e, "Bearer "+tok, JWTAuth(testSecret)); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	e := echo.New()
	tok := signToken(t, testSecret, "admin")
	if code := runChain(e, "Bearer "+tok, JWTAuth(testSecret)); code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestRequireRoleBlocksNonAdmins(t *testing.T) {
	e := echo.New()
	tok := signToken(t, testSecret, "customer")
	code := runChain(e, "Bearer "+tok, JWTAuth(testSecret), RequireRole("admin"))
	if code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	e := echo.New()
	tok := signToken(t, testSecret, "admin")
	code := runChain(e, "Bearer "+tok, JWTAuth(testSecret), RequireRole("admin"))
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}
