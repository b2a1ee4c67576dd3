package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/skostadinov0141/soulforger-sr6-backend-api/auth"
)

type testServer struct {
	app      *fiber.App
	accounts *auth.Accounts
	store    *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	accounts, store, _ := newTestAccounts(t)

	app := fiber.New()
	auth.RegisterRoutes(app, auth.NewController(accounts))

	return &testServer{app: app, accounts: accounts, store: store}
}

func (s *testServer) request(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

// seedActiveAccount pushes an application through approval and returns a
// fresh bearer token for it.
func (s *testServer) seedActiveAccount(t *testing.T, username string, role auth.Role) string {
	t.Helper()
	ctx := context.Background()

	in := validApplication()
	in.Username = username
	in.Email = username + "@x.com"

	applyRole := role
	if applyRole == auth.RoleStandard {
		applyRole = auth.RoleTester
	}
	_, err := s.accounts.Apply(ctx, applyRole, in)
	require.NoError(t, err)

	pending, err := s.store.FindByUsername(ctx, auth.PendingPartitionFor(applyRole), username)
	require.NoError(t, err)
	require.NotNil(t, pending)
	require.NoError(t, s.accounts.Decide(ctx, adminClaims(), pending.ID, true, ""))

	if role == auth.RoleStandard {
		s.store.mu.Lock()
		for _, account := range s.store.records[auth.PartitionActive] {
			if account.Username == username {
				account.AccountType = auth.AccountType{PrivilegeLevel: auth.PrivilegeStandard, Role: auth.RoleStandard}
			}
		}
		s.store.mu.Unlock()
	}

	token, err := s.accounts.Authenticate(ctx, username, "Abcdef1!gh")
	require.NoError(t, err)
	return token
}

func TestController_Token(t *testing.T) {
	t.Run("successful login returns a bearer token", func(t *testing.T) {
		server := newTestServer(t)
		server.seedActiveAccount(t, "alice123_", auth.RoleTester)

		res := server.request(t, fiber.MethodPost, "/token",
			map[string]string{"username": "alice123_", "password": "Abcdef1!gh"}, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.NotEmpty(t, body["access_token"])
		assert.Equal(t, "bearer", body["token_type"])
	})

	t.Run("unknown username is 404", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPost, "/token",
			map[string]string{"username": "nobody_here", "password": "Abcdef1!gh"}, nil)

		require.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, auth.TextCodeAccountNotFound, decodeBody(t, res)["text_code"])
	})

	t.Run("wrong password is 400", func(t *testing.T) {
		server := newTestServer(t)
		server.seedActiveAccount(t, "alice123_", auth.RoleTester)

		res := server.request(t, fiber.MethodPost, "/token",
			map[string]string{"username": "alice123_", "password": "Wrong1!pass"}, nil)

		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, auth.TextCodeInvalidCreds, decodeBody(t, res)["text_code"])
	})

	t.Run("missing credentials are 400", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPost, "/token",
			map[string]string{"username": "alice123_"}, nil)

		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, auth.TextCodeEmptyValue, decodeBody(t, res)["text_code"])
	})
}

func TestController_GetUserViaToken(t *testing.T) {
	t.Run("resolves the stored identity", func(t *testing.T) {
		server := newTestServer(t)
		token := server.seedActiveAccount(t, "alice123_", auth.RoleTester)

		res := server.request(t, fiber.MethodGet, "/get_user_via_token", nil,
			map[string]string{fiber.HeaderAuthorization: "Bearer " + token})

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, "alice123_", body["username"])
		assert.EqualValues(t, auth.PrivilegeTester, body["privilege_level"])
	})

	t.Run("missing header is 400 malformed", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodGet, "/get_user_via_token", nil, nil)

		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, auth.TextCodeTokenMalformed, decodeBody(t, res)["text_code"])
	})

	t.Run("expired token is 403", func(t *testing.T) {
		server := newTestServer(t)
		server.seedActiveAccount(t, "alice123_", auth.RoleTester)

		past := time.Now().Add(-3 * time.Hour)
		stale := auth.NewTokenService(newTestSecrets(t, time.Hour)).
			WithClock(func() time.Time { return past })
		token, err := stale.Issue(primitive.NewObjectID(), auth.PrivilegeTester)
		require.NoError(t, err)

		res := server.request(t, fiber.MethodGet, "/get_user_via_token", nil,
			map[string]string{fiber.HeaderAuthorization: "Bearer " + token})

		require.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Equal(t, auth.TextCodeTokenExpired, decodeBody(t, res)["text_code"])
	})

	t.Run("deleted account is 404", func(t *testing.T) {
		server := newTestServer(t)
		token := server.seedActiveAccount(t, "alice123_", auth.RoleTester)

		ctx := context.Background()
		active, err := server.store.FindByUsername(ctx, auth.PartitionActive, "alice123_")
		require.NoError(t, err)
		require.NoError(t, server.store.Delete(ctx, auth.PartitionActive, active.ID))

		res := server.request(t, fiber.MethodGet, "/get_user_via_token", nil,
			map[string]string{fiber.HeaderAuthorization: "Bearer " + token})

		require.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, auth.TextCodeNoSuchAccount, decodeBody(t, res)["text_code"])
	})
}

func TestController_AvailabilityEndpoints(t *testing.T) {
	server := newTestServer(t)
	server.seedActiveAccount(t, "alice123_", auth.RoleTester)

	t.Run("taken username", func(t *testing.T) {
		res := server.request(t, fiber.MethodGet, "/check_username_availability/alice123_", nil, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, false, body["result"])
		assert.Contains(t, body["details"], float64(auth.ViolationTaken))
	})

	t.Run("free username", func(t *testing.T) {
		res := server.request(t, fiber.MethodGet, "/check_username_availability/someone_else", nil, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, true, body["result"])
		assert.Empty(t, body["details"])
	})

	t.Run("bad format short-circuits the lookup", func(t *testing.T) {
		res := server.request(t, fiber.MethodGet, "/check_username_availability/ab", nil, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, false, body["result"])
		assert.Contains(t, body["details"], float64(auth.ViolationTooShort))
	})

	t.Run("taken email", func(t *testing.T) {
		res := server.request(t, fiber.MethodGet, "/check_email_availability/alice123_@x.com", nil, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, false, body["result"])
		assert.Contains(t, body["details"], float64(auth.ViolationTaken))
	})

	t.Run("empty value is 400, not a router miss", func(t *testing.T) {
		for _, path := range []string{
			"/check_username_availability",
			"/check_username_availability/",
			"/check_email_availability",
			"/confirm_password_validity",
		} {
			res := server.request(t, fiber.MethodGet, path, nil, nil)

			require.Equal(t, http.StatusBadRequest, res.StatusCode, path)
			assert.Equal(t, auth.TextCodeEmptyValue, decodeBody(t, res)["text_code"], path)
		}
	})

	t.Run("password validity", func(t *testing.T) {
		res := server.request(t, fiber.MethodGet, "/confirm_password_validity/abcdefgh12", nil, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, false, body["result"])
		assert.Contains(t, body["details"], float64(auth.ViolationMissingUppercase))
		assert.Contains(t, body["details"], float64(auth.ViolationMissingSpecialCharacter))
	})
}

func TestController_Applications(t *testing.T) {
	t.Run("tester application succeeds", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPost, "/account_application_tester", map[string]string{
			"username":            "alice123_",
			"email":               "a@x.com",
			"password":            "Abcdef1!gh",
			"application_content": "let me in",
		}, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, true, decodeBody(t, res)["result"])
		assert.Equal(t, 1, server.store.count(auth.PartitionPendingTesters))
	})

	t.Run("admin application lands in the admin partition", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPost, "/account_application_admin", map[string]string{
			"username": "alice123_",
			"email":    "a@x.com",
			"password": "Abcdef1!gh",
		}, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, 1, server.store.count(auth.PartitionPendingAdmins))
	})

	t.Run("validation failure returns per-field details", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPost, "/account_application_tester", map[string]string{
			"username": "ab",
			"email":    "nope",
			"password": "weak",
		}, nil)

		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, auth.TextCodeValidationFailed, body["text_code"])

		details, ok := body["details"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details, "username")
		assert.Contains(t, details, "email")
		assert.Contains(t, details, "password")
	})

	t.Run("duplicate identifier is 400 with the taken code", func(t *testing.T) {
		server := newTestServer(t)
		server.seedActiveAccount(t, "alice123_", auth.RoleTester)

		res := server.request(t, fiber.MethodPost, "/account_application_tester", map[string]string{
			"username": "alice123_",
			"email":    "other@x.com",
			"password": "Abcdef1!gh",
		}, nil)

		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, auth.TextCodeIdentifierTaken, decodeBody(t, res)["text_code"])
	})
}

func TestController_UpdateAccountStatus(t *testing.T) {
	seedPending := func(t *testing.T, server *testServer) primitive.ObjectID {
		t.Helper()
		ctx := context.Background()

		in := validApplication()
		in.Username = "applicant42"
		in.Email = "applicant42@x.com"
		_, err := server.accounts.Apply(ctx, auth.RoleTester, in)
		require.NoError(t, err)

		pending, err := server.store.FindByUsername(ctx, auth.PartitionPendingTesters, "applicant42")
		require.NoError(t, err)
		require.NotNil(t, pending)
		return pending.ID
	}

	t.Run("admin approves over HTTP", func(t *testing.T) {
		server := newTestServer(t)
		adminToken := server.seedActiveAccount(t, "reviewer99", auth.RoleAdmin)
		id := seedPending(t, server)

		res := server.request(t, fiber.MethodPatch, "/update_account_status", map[string]any{
			"id":       id.Hex(),
			"approved": true,
			"reason":   "solid application",
		}, map[string]string{fiber.HeaderAuthorization: "Bearer " + adminToken})

		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, true, decodeBody(t, res)["result"])
		assert.Equal(t, 0, server.store.count(auth.PartitionPendingTesters))
	})

	t.Run("tester token is 403", func(t *testing.T) {
		server := newTestServer(t)
		testerToken := server.seedActiveAccount(t, "tester_one", auth.RoleTester)
		id := seedPending(t, server)

		res := server.request(t, fiber.MethodPatch, "/update_account_status", map[string]any{
			"id":       id.Hex(),
			"approved": true,
		}, map[string]string{fiber.HeaderAuthorization: "Bearer " + testerToken})

		require.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Equal(t, auth.TextCodeInsufficientPrivilege, decodeBody(t, res)["text_code"])
		assert.Equal(t, 1, server.store.count(auth.PartitionPendingTesters))
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		server := newTestServer(t)
		adminToken := server.seedActiveAccount(t, "reviewer99", auth.RoleAdmin)

		res := server.request(t, fiber.MethodPatch, "/update_account_status", map[string]any{
			"id":       "not-hex",
			"approved": true,
		}, map[string]string{fiber.HeaderAuthorization: "Bearer " + adminToken})

		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, auth.TextCodeMalformedID, decodeBody(t, res)["text_code"])
	})

	t.Run("unknown target is 404", func(t *testing.T) {
		server := newTestServer(t)
		adminToken := server.seedActiveAccount(t, "reviewer99", auth.RoleAdmin)

		res := server.request(t, fiber.MethodPatch, "/update_account_status", map[string]any{
			"id":       primitive.NewObjectID().Hex(),
			"approved": false,
		}, map[string]string{fiber.HeaderAuthorization: "Bearer " + adminToken})

		require.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, auth.TextCodeApplicationNotFound, decodeBody(t, res)["text_code"])
	})

	t.Run("no token is 400", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPatch, "/update_account_status", map[string]any{
			"id":       primitive.NewObjectID().Hex(),
			"approved": true,
		}, nil)

		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, auth.TextCodeTokenMalformed, decodeBody(t, res)["text_code"])
	})
}

func TestController_SignUp(t *testing.T) {
	t.Run("returns the public profile", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPost, "/sign_up", map[string]string{
			"username":     "legacy_player1",
			"password":     "Abcdef1!gh",
			"display_name": "Legacy Player",
		}, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, "legacy_player1", body["username"])
		assert.Equal(t, "Legacy Player", body["display_name"])
		assert.EqualValues(t, auth.PrivilegeStandard, body["privilege_level"])
		assert.NotContains(t, body, "password_hash")
	})

	t.Run("admission key elevates to tester", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodPost, "/sign_up", map[string]string{
			"username":  "legacy_player1",
			"password":  "Abcdef1!gh",
			"admin_key": "bootstrap-admission-key",
		}, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.EqualValues(t, auth.PrivilegeTester, decodeBody(t, res)["privilege_level"])
	})
}

func TestController_Health(t *testing.T) {
	t.Run("reachable store is 200", func(t *testing.T) {
		server := newTestServer(t)

		res := server.request(t, fiber.MethodGet, "/health", nil, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "ok", decodeBody(t, res)["status"])
	})

	t.Run("unreachable store is 503", func(t *testing.T) {
		server := newTestServer(t)
		server.store.pingErr = errors.New("connection refused")

		res := server.request(t, fiber.MethodGet, "/health", nil, nil)

		require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
		assert.Equal(t, "unavailable", decodeBody(t, res)["status"])
	})
}
