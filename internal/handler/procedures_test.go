package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/auth"
	"github.com/sakif/gaia-lore/internal/handler"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
	"github.com/sakif/gaia-lore/internal/repository/sqldb"
	"github.com/sakif/gaia-lore/internal/rpc"
	"github.com/sakif/gaia-lore/internal/service"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

type fakeNotifier struct {
	title, content string
	delivered      bool
	err            error
}

func (f *fakeNotifier) NotifyOwner(_ context.Context, title, content string) (bool, error) {
	f.title, f.content = title, content
	return f.delivered, f.err
}

func newProcedures(t *testing.T, store repository.Store, notifier handler.OwnerNotifier) (*handler.Procedures, *rpc.Dispatcher) {
	t.Helper()
	logger := testLogger()
	p := &handler.Procedures{
		Characters:       service.NewCharacterService(store, logger),
		Factions:         service.NewFactionService(store, logger),
		Locations:        service.NewLocationService(store, logger),
		Events:           service.NewEventService(store, logger),
		Concepts:         service.NewConceptService(store, logger),
		Glitches:         service.NewGlitchService(store, logger),
		Search:           service.NewSearchService(store, logger),
		Notifier:         notifier,
		StorageAvailable: store.Available,
	}
	d := rpc.NewDispatcher(logger, rpc.WithStorageStatus(store.Available))
	p.Register(d)
	return p, d
}

func newTestStore(t *testing.T) *sqldb.DB {
	t.Helper()
	db, err := sqldb.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func adminCtx() context.Context {
	return auth.WithUser(context.Background(), &model.User{ID: 7, OpenID: "admin", Role: model.RoleAdmin})
}

func post(t *testing.T, d *rpc.Dispatcher, ctx context.Context, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/rpc", bytes.NewBufferString(body)).WithContext(ctx)
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)
	return rr
}

// =========================================================================
// REGISTRATION
// =========================================================================

func TestProcedures_RegisterTiers(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})

	public := []string{
		"characters.list", "characters.get", "events.timeline", "glitches.unresolved",
		"search.all", "auth.me", "auth.logout", "system.health",
	}
	for _, name := range public {
		tier, ok := d.Tier(name)
		require.True(t, ok, name)
		assert.Equal(t, rpc.Public, tier, name)
	}

	admin := []string{
		"characters.create", "factions.update", "locations.delete", "events.create",
		"concepts.update", "glitches.resolve", "system.notifyOwner",
	}
	for _, name := range admin {
		tier, ok := d.Tier(name)
		require.True(t, ok, name)
		assert.Equal(t, rpc.Admin, tier, name)
	}

	assert.Len(t, d.Methods(), 38)
}

// =========================================================================
// LORE
// =========================================================================

func TestProcedures_DeleteReturnsSuccess(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})
	ctx := adminCtx()

	res, err := d.Call(ctx, "factions.create", json.RawMessage(`{"name":"Confederación Draco","type":"government"}`))
	require.NoError(t, err)
	f := res.(*model.Faction)

	res, err = d.Call(ctx, "factions.delete", json.RawMessage(`{"id":`+jsonInt(f.ID)+`}`))
	require.NoError(t, err)
	assert.Equal(t, handler.SuccessResult{Success: true}, res)

	// deleting again is still a success
	_, err = d.Call(ctx, "factions.delete", json.RawMessage(`{"id":`+jsonInt(f.ID)+`}`))
	assert.NoError(t, err)
}

func TestProcedures_GetMissingIsNotFound(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})

	rr := post(t, d, context.Background(), `{"jsonrpc":"2.0","id":1,"method":"characters.get","params":{"id":999}}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":-32004`)
}

func TestProcedures_OfflineReadsDegrade(t *testing.T) {
	_, d := newProcedures(t, repository.Offline(), &fakeNotifier{})

	rr := post(t, d, context.Background(), `{"jsonrpc":"2.0","id":1,"method":"characters.get","params":{"id":1}}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "unavailable", rr.Header().Get(rpc.StorageStatusHeader))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":null}`, rr.Body.String())

	rr = post(t, d, adminCtx(), `{"jsonrpc":"2.0","id":2,"method":"concepts.create","params":{"name":"Chaitz"}}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "SERVICE_UNAVAILABLE")
}

func TestProcedures_ResolveGlitchUsesCaller(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})
	ctx := adminCtx()

	res, err := d.Call(ctx, "glitches.create", json.RawMessage(`{"title":"Two birthdays"}`))
	require.NoError(t, err)
	g := res.(*model.Glitch)

	res, err = d.Call(ctx, "glitches.resolve", json.RawMessage(`{"id":`+jsonInt(g.ID)+`,"resolution":"1960"}`))
	require.NoError(t, err)
	resolved := res.(*model.Glitch)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, int64(7), *resolved.ResolvedBy)
}

func TestProcedures_SearchAll(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})

	_, err := d.Call(adminCtx(), "concepts.create", json.RawMessage(`{"name":"Chaitz","category":"energy"}`))
	require.NoError(t, err)

	res, err := d.Call(context.Background(), "search.all", json.RawMessage(`{"query":"chai"}`))
	require.NoError(t, err)
	results := res.(*model.SearchResults)
	require.Len(t, results.Concepts, 1)
	assert.Empty(t, results.Characters)
}

// =========================================================================
// SESSION
// =========================================================================

func TestProcedures_Logout(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})

	rr := post(t, d, context.Background(), `{"jsonrpc":"2.0","id":1,"method":"auth.logout"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"success":true}}`, rr.Body.String())

	c := findCookie(rr, auth.CookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestProcedures_MeAnonymousIsNull(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})

	rr := post(t, d, context.Background(), `{"jsonrpc":"2.0","id":1,"method":"auth.me"}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":null}`, rr.Body.String())
}

// =========================================================================
// SYSTEM
// =========================================================================

func TestProcedures_SystemHealth(t *testing.T) {
	tests := []struct {
		name    string
		params  string
		wantErr bool
		want    handler.HealthResult
	}{
		{"valid", `{"timestamp":1700000000000}`, false, handler.HealthResult{OK: true, Storage: "available"}},
		{"zero", `{"timestamp":0}`, false, handler.HealthResult{OK: true, Storage: "available"}},
		{"negative", `{"timestamp":-1}`, true, handler.HealthResult{}},
		{"missing", `{}`, true, handler.HealthResult{}},
	}

	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.Call(context.Background(), "system.health", json.RawMessage(tt.params))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestProcedures_NotifyOwner(t *testing.T) {
	notifier := &fakeNotifier{delivered: true}
	_, d := newProcedures(t, newTestStore(t), notifier)

	res, err := d.Call(adminCtx(), "system.notifyOwner", json.RawMessage(`{"title":"New glitch","content":"Check it"}`))
	require.NoError(t, err)
	assert.Equal(t, handler.SuccessResult{Success: true}, res)
	assert.Equal(t, "New glitch", notifier.title)

	notifier.delivered = false
	res, err = d.Call(adminCtx(), "system.notifyOwner", json.RawMessage(`{"title":"x","content":"y"}`))
	require.NoError(t, err)
	assert.Equal(t, handler.SuccessResult{Success: false}, res)

	notifier.err = apperror.ValidationFailed("title", "Notification title is required.")
	_, err = d.Call(adminCtx(), "system.notifyOwner", json.RawMessage(`{"title":"","content":"y"}`))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestProcedures_NotifyOwnerRequiresAdmin(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), &fakeNotifier{})

	_, err := d.Call(context.Background(), "system.notifyOwner", json.RawMessage(`{"title":"x","content":"y"}`))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestProcedures_NotifyOwnerUnconfigured(t *testing.T) {
	_, d := newProcedures(t, newTestStore(t), nil)

	_, err := d.Call(adminCtx(), "system.notifyOwner", json.RawMessage(`{"title":"x","content":"y"}`))
	assert.True(t, errors.Is(err, apperror.ErrInternal))
}

func jsonInt(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
