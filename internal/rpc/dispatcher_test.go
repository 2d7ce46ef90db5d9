package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/auth"
	"github.com/sakif/gaia-lore/internal/model"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

type echoParams struct {
	Text string `json:"text"`
}

func newTestDispatcher(t *testing.T, storageUp bool) *Dispatcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := NewDispatcher(logger, WithStorageStatus(func() bool { return storageUp }))

	d.Register("echo", Public, Method(func(_ context.Context, p echoParams) (string, error) {
		return p.Text, nil
	}))
	d.Register("nothing", Public, NoParams(func(context.Context) (*model.Character, error) {
		return nil, nil
	}))
	d.Register("whoami", Protected, NoParams(func(ctx context.Context) (string, error) {
		u, _ := auth.UserFromContext(ctx)
		return u.OpenID, nil
	}))
	d.Register("admin.only", Admin, NoParams(func(context.Context) (bool, error) {
		return true, nil
	}))
	d.Register("fails.notfound", Public, NoParams(func(context.Context) (any, error) {
		return nil, fmt.Errorf("getting thing: %w", apperror.NotFound("character", 9))
	}))
	d.Register("fails.raw", Public, NoParams(func(context.Context) (any, error) {
		return nil, errors.New("sqlite: database is locked at /var/data/gaia.db")
	}))
	d.Register("fails.unavailable", Public, NoParams(func(context.Context) (any, error) {
		return nil, apperror.Unavailable("creating character")
	}))
	d.Register("cookie", Public, NoParams(func(ctx context.Context) (bool, error) {
		SetCookie(ctx, &http.Cookie{Name: "app_session_id", Value: "", MaxAge: -1, Path: "/"})
		return true, nil
	}))
	return d
}

// post sends body to the dispatcher, optionally as user.
func post(t *testing.T, d *Dispatcher, body string, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func errorOf(t *testing.T, resp map[string]any) (code float64, message, kind string) {
	t.Helper()
	e, ok := resp["error"].(map[string]any)
	require.True(t, ok, "expected error object, got %v", resp)
	data := e["data"].(map[string]any)
	return e["code"].(float64), e["message"].(string), data["code"].(string)
}

// =========================================================================
// SINGLE CALLS
// =========================================================================

func TestDispatcher_Success(t *testing.T) {
	d := newTestDispatcher(t, true)

	rr := post(t, d, `{"jsonrpc":"2.0","method":"echo","params":{"text":"gaia"},"id":"abc"}`, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "available", rr.Header().Get(StorageStatusHeader))

	resp := decodeResponse(t, rr)
	assert.Equal(t, "2.0", resp["jsonrpc"])
	assert.Equal(t, "gaia", resp["result"])
	assert.Equal(t, "abc", resp["id"])
	assert.NotContains(t, resp, "error")
}

func TestDispatcher_NullResultIsPresent(t *testing.T) {
	d := newTestDispatcher(t, false)

	rr := post(t, d, `{"jsonrpc":"2.0","method":"nothing","id":1}`, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "unavailable", rr.Header().Get(StorageStatusHeader))
	assert.Contains(t, rr.Body.String(), `"result":null`)
}

func TestDispatcher_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		user       *model.User
		wantStatus int
		wantCode   float64
		wantKind   string
		wantMsg    string
	}{
		{
			name:       "parse error",
			body:       `{"jsonrpc":`,
			wantStatus: http.StatusBadRequest, wantCode: CodeParse, wantKind: KindParse,
		},
		{
			name:       "wrong version",
			body:       `{"jsonrpc":"1.0","method":"echo","id":1}`,
			wantStatus: http.StatusBadRequest, wantCode: CodeInvalidRequest, wantKind: KindBadRequest,
		},
		{
			name:       "unknown method",
			body:       `{"jsonrpc":"2.0","method":"nope","id":1}`,
			wantStatus: http.StatusNotFound, wantCode: CodeMethodNotFound, wantKind: KindNotFound,
		},
		{
			name:       "bad params",
			body:       `{"jsonrpc":"2.0","method":"echo","params":{"text":5},"id":1}`,
			wantStatus: http.StatusBadRequest, wantCode: CodeInvalidParams, wantKind: KindBadRequest,
		},
		{
			name:       "unknown param field",
			body:       `{"jsonrpc":"2.0","method":"echo","params":{"txt":"x"},"id":1}`,
			wantStatus: http.StatusBadRequest, wantCode: CodeInvalidParams, wantKind: KindBadRequest,
		},
		{
			name:       "not found",
			body:       `{"jsonrpc":"2.0","method":"fails.notfound","id":1}`,
			wantStatus: http.StatusNotFound, wantCode: CodeNotFound, wantKind: KindNotFound,
			wantMsg: "character not found with id 9",
		},
		{
			name:       "unavailable",
			body:       `{"jsonrpc":"2.0","method":"fails.unavailable","id":1}`,
			wantStatus: http.StatusServiceUnavailable, wantCode: CodeUnavailable, wantKind: KindUnavailable,
		},
		{
			name:       "raw error is hidden",
			body:       `{"jsonrpc":"2.0","method":"fails.raw","id":1}`,
			wantStatus: http.StatusInternalServerError, wantCode: CodeInternal, wantKind: KindInternal,
			wantMsg: InternalMessage,
		},
	}

	d := newTestDispatcher(t, true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, d, tt.body, tt.user)
			assert.Equal(t, tt.wantStatus, rr.Code)

			code, msg, kind := errorOf(t, decodeResponse(t, rr))
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantKind, kind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, msg)
			}
			assert.NotContains(t, rr.Body.String(), "/var/data")
		})
	}
}

// =========================================================================
// ACCESS TIERS
// =========================================================================

func TestDispatcher_Tiers(t *testing.T) {
	d := newTestDispatcher(t, true)
	member := &model.User{ID: 1, OpenID: "member", Role: model.RoleUser}
	admin := &model.User{ID: 2, OpenID: "owner", Role: model.RoleAdmin}

	rr := post(t, d, `{"jsonrpc":"2.0","method":"whoami","id":1}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	code, msg, _ := errorOf(t, decodeResponse(t, rr))
	assert.Equal(t, float64(CodeUnauthorized), code)
	assert.Equal(t, apperror.UnauthenticatedMessage, msg)

	rr = post(t, d, `{"jsonrpc":"2.0","method":"whoami","id":1}`, member)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "member", decodeResponse(t, rr)["result"])

	rr = post(t, d, `{"jsonrpc":"2.0","method":"admin.only","id":1}`, member)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	code, msg, _ = errorOf(t, decodeResponse(t, rr))
	assert.Equal(t, float64(CodeForbidden), code)
	assert.Equal(t, apperror.NotAdminMessage, msg)

	rr = post(t, d, `{"jsonrpc":"2.0","method":"admin.only","id":1}`, admin)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeResponse(t, rr)["result"])
}

// =========================================================================
// BATCH AND NOTIFICATIONS
// =========================================================================

func TestDispatcher_Batch(t *testing.T) {
	d := newTestDispatcher(t, true)

	rr := post(t, d, `[
		{"jsonrpc":"2.0","method":"echo","params":{"text":"one"},"id":1},
		{"jsonrpc":"2.0","method":"fails.notfound","id":2},
		{"jsonrpc":"2.0","method":"echo","params":{"text":"ignored"}},
		{"jsonrpc":"2.0","method":"admin.only","id":3}
	]`, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "batch responses are always 200")

	var resps []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resps))
	require.Len(t, resps, 3, "the notification gets no response")

	assert.Equal(t, "one", resps[0]["result"])
	code, _, _ := errorOf(t, resps[1])
	assert.Equal(t, float64(CodeNotFound), code)
	code, _, _ = errorOf(t, resps[2])
	assert.Equal(t, float64(CodeUnauthorized), code)
}

func TestDispatcher_EmptyBatch(t *testing.T) {
	d := newTestDispatcher(t, true)

	rr := post(t, d, `[]`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDispatcher_Notification(t *testing.T) {
	d := newTestDispatcher(t, true)

	rr := post(t, d, `{"jsonrpc":"2.0","method":"echo","params":{"text":"x"}}`, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

// =========================================================================
// TRANSPORT
// =========================================================================

func TestDispatcher_RejectsGet(t *testing.T) {
	d := newTestDispatcher(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/rpc", nil)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestDispatcher_SetCookie(t *testing.T) {
	d := newTestDispatcher(t, true)

	rr := post(t, d, `{"jsonrpc":"2.0","method":"cookie","id":1}`, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "app_session_id", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestDispatcher_Methods(t *testing.T) {
	d := newTestDispatcher(t, true)

	names := d.Methods()
	assert.Contains(t, names, "echo")
	assert.IsIncreasing(t, names)

	tier, ok := d.Tier("admin.only")
	require.True(t, ok)
	assert.Equal(t, Admin, tier)
}

func TestFromError_KeepsRPCErrors(t *testing.T) {
	in := errInvalidParams("bad")
	out, known := FromError(fmt.Errorf("wrapped: %w", in))
	assert.True(t, known)
	assert.Same(t, in, out)
}

func TestFromError_ValidationField(t *testing.T) {
	out, known := FromError(apperror.ValidationFailed("name", "name is required"))
	require.True(t, known)
	assert.Equal(t, CodeInvalidParams, out.Code)
	assert.Equal(t, "name", out.Data.Field)
	assert.Equal(t, http.StatusBadRequest, out.HTTPStatus())
}
