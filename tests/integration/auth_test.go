package integration

import (
	"net/http"
	"testing"
)

func TestAdminSignup_WrongPasscode(t *testing.T) {
	app := setupTestApp(t)

	w := doRequest(app, http.MethodPost, "/auth/signup-request", map[string]any{
		"name": "Mallory", "email": "mallory@example.com", "password": "password123", "passcode": "WRONG",
	}, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminSignup_WrongOTP(t *testing.T) {
	app := setupTestApp(t)

	w := doRequest(app, http.MethodPost, "/auth/signup-request", map[string]any{
		"name": "Asha", "email": "asha@example.com", "password": "password123", "passcode": "GAS",
	}, "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(app, http.MethodPost, "/auth/complete-signup", map[string]any{
		"email": "asha@example.com", "otp": "000000",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong otp, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminSignupAndLogin(t *testing.T) {
	app := setupTestApp(t)

	token, _ := signupAdmin(t, app, "owner@example.com")
	if token == "" {
		t.Fatal("expected a token from signup")
	}

	// The created account can log in with its password.
	w := doRequest(app, http.MethodPost, "/auth/login", map[string]any{
		"email": "owner@example.com", "password": "password123",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// And a wrong password is rejected without leaking which part failed.
	w = doRequest(app, http.MethodPost, "/auth/login", map[string]any{
		"email": "owner@example.com", "password": "not-the-password",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminPasswordReset(t *testing.T) {
	app := setupTestApp(t)
	signupAdmin(t, app, "owner@example.com")

	w := doRequest(app, http.MethodPost, "/auth/send-otp", map[string]any{
		"email": "owner@example.com",
	}, "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var otp string
	if err := app.DB.Get(&otp, `SELECT otp FROM pending_otps WHERE email = $1 AND purpose = 'RESET'`, "owner@example.com"); err != nil {
		t.Fatalf("read reset otp: %v", err)
	}

	w = doRequest(app, http.MethodPost, "/auth/reset-password", map[string]any{
		"email": "owner@example.com", "otp": otp, "new_password": "rotated-pass-1",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Old password out, new password in.
	w = doRequest(app, http.MethodPost, "/auth/login", map[string]any{
		"email": "owner@example.com", "password": "password123",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with old password, got %d", w.Code)
	}
	w = doRequest(app, http.MethodPost, "/auth/login", map[string]any{
		"email": "owner@example.com", "password": "rotated-pass-1",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with new password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProtectedRoutes_RequireRole(t *testing.T) {
	app := setupTestApp(t)
	adminToken, _ := signupAdmin(t, app, "owner@example.com")
	createDriver(t, app, adminToken, "9876543210", nil)
	driverToken := loginDriver(t, app, "9876543210")

	// A driver token cannot reach admin routes.
	w := doRequest(app, http.MethodGet, "/admin/dashboard", nil, driverToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// An admin token cannot reach driver routes.
	w = doRequest(app, http.MethodGet, "/driver/orders", nil, adminToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// No token at all is unauthorized.
	w = doRequest(app, http.MethodGet, "/admin/dashboard", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}
