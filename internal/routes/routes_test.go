package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/apperr"
	"github.com/raksha-app/raksha/internal/config"
	"github.com/raksha-app/raksha/internal/idverify"
	"github.com/raksha-app/raksha/internal/logging"
	"github.com/raksha-app/raksha/internal/notification"
)

type testClient struct {
	t        *testing.T
	app      *fiber.App
	notifier *notification.Recorder
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	cfg := config.Config{
		AppEnv:           "test",
		JWTSecret:        "test-secret",
		AccessTokenTTL:   time.Hour,
		IdempotencyTTL:   time.Hour,
		OTPExpiry:        5 * time.Minute,
		IDVerifySentinel: idverify.DefaultSentinel,
		IDVerifyPassRate: 0,
	}
	logger := logging.Discard()
	notifier := &notification.Recorder{}
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(logger)})
	if err := Setup(app, Deps{Cfg: cfg, Logger: logger, Notifier: notifier}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return &testClient{t: t, app: app, notifier: notifier}
}

func (tc *testClient) do(method, path, token string, body any) (int, map[string]any) {
	tc.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			tc.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := tc.app.Test(req)
	if err != nil {
		tc.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(payload) > 0 && payload[0] == '{' {
		if err := json.Unmarshal(payload, &out); err != nil {
			tc.t.Fatalf("%s %s: decode %q: %v", method, path, payload, err)
		}
	}
	return resp.StatusCode, out
}

func (tc *testClient) register(username string) string {
	tc.t.Helper()
	status, body := tc.do(http.MethodPost, "/register/", "", map[string]string{"username": username, "password": "pw123"})
	if status != http.StatusCreated {
		tc.t.Fatalf("register %s: expected 201 got %d %v", username, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		tc.t.Fatalf("register %s: missing token in %v", username, body)
	}
	return token
}

func (tc *testClient) lastOTP() string {
	tc.t.Helper()
	msg, ok := tc.notifier.Last(notification.KindOTP)
	if !ok {
		tc.t.Fatal("no otp dispatched")
	}
	for _, field := range strings.Fields(msg.Body) {
		field = strings.TrimSuffix(field, ".")
		if len(field) == 6 && strings.Trim(field, "0123456789") == "" {
			return field
		}
	}
	tc.t.Fatalf("no code in %q", msg.Body)
	return ""
}

func TestOnboardingFlow(t *testing.T) {
	tc := newTestClient(t)
	token := tc.register("alice")

	status, body := tc.do(http.MethodPost, "/request-otp/", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("request-otp before phone: expected 400 got %d %v", status, body)
	}

	status, body = tc.do(http.MethodPost, "/update-phone/", token, map[string]string{"phone_number": "+15550001"})
	if status != http.StatusOK || body["phone_number"] != "+15550001" {
		t.Fatalf("update-phone: %d %v", status, body)
	}

	status, body = tc.do(http.MethodPost, "/request-otp/", token, nil)
	if status != http.StatusOK {
		t.Fatalf("request-otp: %d %v", status, body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "+15550001") {
		t.Fatalf("unexpected message %q", msg)
	}
	code := tc.lastOTP()

	status, body = tc.do(http.MethodPost, "/aadhar-verify/", token, map[string]string{"aadhar_number": idverify.DefaultSentinel, "otp": "000000"})
	if status != http.StatusBadRequest || body["error"] != apperr.ErrInvalidOrExpiredOTP.Error() {
		t.Fatalf("wrong otp: %d %v", status, body)
	}

	status, body = tc.do(http.MethodPost, "/aadhar-verify/", token, map[string]string{"aadhar_number": idverify.DefaultSentinel, "otp": code})
	if status != http.StatusOK {
		t.Fatalf("aadhar-verify: %d %v", status, body)
	}
	kyc, _ := body["kyc_status"].(map[string]any)
	if kyc["is_verified"] != true || kyc["id_number"] != idverify.DefaultSentinel {
		t.Fatalf("unexpected kyc status %v", kyc)
	}

	status, _ = tc.do(http.MethodPost, "/aadhar-verify/", token, map[string]string{"aadhar_number": idverify.DefaultSentinel, "otp": code})
	if status != http.StatusOK {
		t.Fatalf("reusing an unexpired code: expected 200 got %d", status)
	}

	status, body = tc.do(http.MethodGet, "/me/", token, nil)
	if status != http.StatusOK || body["username"] != "alice" {
		t.Fatalf("me: %d %v", status, body)
	}
}

func TestVerifyDeclinedByVerifier(t *testing.T) {
	tc := newTestClient(t)
	token := tc.register("carol")
	tc.do(http.MethodPost, "/update-phone/", token, map[string]string{"phone_number": "+15550004"})
	tc.do(http.MethodPost, "/request-otp/", token, nil)

	// Pass rate is zero, so only the sentinel verifies.
	status, body := tc.do(http.MethodPost, "/aadhar-verify/", token, map[string]string{"aadhar_number": "999999999999", "otp": tc.lastOTP()})
	if status != http.StatusBadRequest || body["error"] != apperr.ErrVerificationFailed.Error() {
		t.Fatalf("expected verification failure, got %d %v", status, body)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	tc := newTestClient(t)
	tc.register("alice")

	status, body := tc.do(http.MethodPost, "/register/", "", map[string]string{"username": "alice", "password": "x"})
	if status != http.StatusBadRequest || body["error"] != apperr.ErrDuplicateAccount.Error() {
		t.Fatalf("duplicate: %d %v", status, body)
	}

	status, body = tc.do(http.MethodPost, "/register/", "", map[string]string{})
	if status != http.StatusBadRequest || body["fields"] == nil {
		t.Fatalf("empty register: %d %v", status, body)
	}

	status, body = tc.do(http.MethodPost, "/login/", "", map[string]string{"username": "alice", "password": "wrong"})
	if status != http.StatusBadRequest {
		t.Fatalf("bad login: %d %v", status, body)
	}

	status, body = tc.do(http.MethodPost, "/login/", "", map[string]string{"username": "alice", "password": "pw123"})
	if status != http.StatusOK || body["token"] == nil {
		t.Fatalf("login: %d %v", status, body)
	}
	token := body["token"].(string)

	status, _ = tc.do(http.MethodPost, "/logout/", token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	status, _ = tc.do(http.MethodGet, "/dashboard/", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("token after logout: expected 401 got %d", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	tc := newTestClient(t)
	for _, path := range []string{"/dashboard/", "/emergency-contacts/", "/me/"} {
		if status, _ := tc.do(http.MethodGet, path, "", nil); status != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, status)
		}
	}
}

func TestContactsDashboardAndSOS(t *testing.T) {
	tc := newTestClient(t)
	alice := tc.register("alice")
	bob := tc.register("bob")

	status, body := tc.do(http.MethodPost, "/sos-alert/", alice, nil)
	if status != http.StatusBadRequest || body["error"] != apperr.ErrNoContacts.Error() {
		t.Fatalf("sos without contacts: %d %v", status, body)
	}
	if len(tc.notifier.Sent()) != 0 {
		t.Fatal("sos without contacts must not dispatch")
	}

	status, body = tc.do(http.MethodPost, "/emergency-contacts/", alice, map[string]string{"name": "Mom", "phone_number": "+15550002"})
	if status != http.StatusCreated {
		t.Fatalf("create contact: %d %v", status, body)
	}
	contactID := body["id"].(string)

	if status, _ := tc.do(http.MethodGet, "/emergency-contacts/"+contactID+"/", bob, nil); status != http.StatusNotFound {
		t.Fatalf("foreign contact: expected 404 got %d", status)
	}
	status, body = tc.do(http.MethodGet, "/emergency-contacts/not-a-uuid/", alice, nil)
	if status != http.StatusBadRequest || body["error"] != "invalid contact id" {
		t.Fatalf("bad id: %d %v", status, body)
	}

	status, body = tc.do(http.MethodPut, "/emergency-contacts/"+contactID+"/", alice, map[string]string{"name": "Mother"})
	if status != http.StatusOK || body["name"] != "Mother" || body["phone_number"] != "+15550002" {
		t.Fatalf("update contact: %d %v", status, body)
	}

	status, body = tc.do(http.MethodPost, "/sos-alert/", alice, nil)
	if status != http.StatusOK {
		t.Fatalf("sos: %d %v", status, body)
	}
	msg, ok := tc.notifier.Last(notification.KindSOS)
	if !ok || msg.Body != "Emergency Alert from Mother: SOS Alert! alice needs help. Please contact them immediately." {
		t.Fatalf("unexpected sos message %+v", msg)
	}

	status, body = tc.do(http.MethodGet, "/dashboard/", alice, nil)
	if status != http.StatusOK || body["welcome_message"] != "Welcome to your dashboard!" {
		t.Fatalf("dashboard: %d %v", status, body)
	}
	status, body = tc.do(http.MethodPut, "/dashboard/", alice, map[string]string{"welcome_message": "Hi alice"})
	if status != http.StatusOK || body["welcome_message"] != "Hi alice" {
		t.Fatalf("update dashboard: %d %v", status, body)
	}

	if status, _ := tc.do(http.MethodDelete, "/emergency-contacts/"+contactID+"/", alice, nil); status != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d", status)
	}
}

func TestSendMessage(t *testing.T) {
	tc := newTestClient(t)
	token := tc.register("alice")

	if status, _ := tc.do(http.MethodPost, "/send-message/", token, map[string]string{"message": "hi"}); status != http.StatusBadRequest {
		t.Fatalf("without phone: expected 400 got %d", status)
	}
	tc.do(http.MethodPost, "/update-phone/", token, map[string]string{"phone_number": "+15550001"})

	status, body := tc.do(http.MethodPost, "/send-message/", token, map[string]string{"message": "hi"})
	if status != http.StatusOK {
		t.Fatalf("send-message: %d %v", status, body)
	}

	tc.notifier.Fail = func(notification.Message) error { return io.ErrClosedPipe }
	status, _ = tc.do(http.MethodPost, "/send-message/", token, map[string]string{"message": "hi"})
	if status != http.StatusInternalServerError {
		t.Fatalf("dispatch failure: expected 500 got %d", status)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	tc := newTestClient(t)
	if status, _ := tc.do(http.MethodGet, "/healthz", "", nil); status != http.StatusOK {
		t.Fatalf("healthz: expected 200 got %d", status)
	}
	tc.register("alice")

	resp, err := tc.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "raksha_users_registered_total 1") {
		t.Fatalf("expected registration counter in metrics output")
	}
}
