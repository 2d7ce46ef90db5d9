package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/auth"
)

const (
	// MaxBodyBytes bounds a request body, batch included.
	MaxBodyBytes = 1 << 20
	// MaxBatchSize bounds the number of calls in one batch.
	MaxBatchSize = 50

	// StorageStatusHeader tells the browser whether empty results mean
	// "no data" or "storage unavailable".
	StorageStatusHeader = "X-Storage-Status"
)

// Tier is the access level a method requires.
type Tier int

const (
	// Public methods run for anyone.
	Public Tier = iota
	// Protected methods need a signed-in user.
	Protected
	// Admin methods need a signed-in user with the admin role.
	Admin
)

func (t Tier) String() string {
	switch t {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

type method struct {
	tier Tier
	fn   MethodFunc
}

// Dispatcher routes JSON-RPC calls to registered methods.
type Dispatcher struct {
	methods map[string]method
	mu      sync.RWMutex
	logger  *slog.Logger
	storage func() bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStorageStatus sets the probe behind the X-Storage-Status header.
func WithStorageStatus(available func() bool) Option {
	return func(d *Dispatcher) { d.storage = available }
}

func NewDispatcher(logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		methods: make(map[string]method),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a method. Registering the same name twice replaces it.
func (d *Dispatcher) Register(name string, tier Tier, fn MethodFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.methods[name] = method{tier: tier, fn: fn}
	d.logger.Debug("registered rpc method",
		slog.String("method", name),
		slog.String("tier", tier.String()),
	)
}

// Methods returns the registered method names, sorted.
func (d *Dispatcher) Methods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tier reports the access tier of a registered method.
func (d *Dispatcher) Tier(name string) (Tier, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.methods[name]
	return m.tier, ok
}

// Call runs one method with access checks, outside of any HTTP exchange.
func (d *Dispatcher) Call(ctx context.Context, name string, params json.RawMessage) (any, error) {
	d.mu.RLock()
	m, ok := d.methods[name]
	d.mu.RUnlock()
	if !ok {
		return nil, errMethodNotFound(name)
	}
	if err := authorize(ctx, m.tier); err != nil {
		return nil, err
	}
	return m.fn(ctx, params)
}

// authorize enforces the tier against the user the auth middleware put in
// the context.
func authorize(ctx context.Context, tier Tier) error {
	if tier == Public {
		return nil
	}
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return apperror.Unauthorized(apperror.UnauthenticatedMessage)
	}
	if tier == Admin && !user.IsAdmin() {
		return apperror.Forbidden(apperror.NotAdminMessage)
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if d.storage != nil {
		status := "available"
		if !d.storage() {
			status = "unavailable"
		}
		w.Header().Set(StorageStatusHeader, status)
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		d.writeSingle(w, nil, nil, errInvalidRequest("only POST is allowed"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			d.writeSingle(w, nil, nil, errInvalidRequest("request body too large"))
			return
		}
		d.logger.Warn("failed to read rpc body", slog.String("error", err.Error()))
		d.writeSingle(w, nil, nil, errInvalidRequest("failed to read request body"))
		return
	}

	ctx := withCall(r.Context(), r, w.Header())

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		d.handleBatch(ctx, w, body)
		return
	}
	d.handleSingle(ctx, w, body)
}

func (d *Dispatcher) handleSingle(ctx context.Context, w http.ResponseWriter, body []byte) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		d.writeSingle(w, nil, nil, errParse())
		return
	}

	result, rpcErr := d.execute(ctx, &req)
	if req.IsNotification() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	d.writeSingle(w, req.ID, result, rpcErr)
}

func (d *Dispatcher) handleBatch(ctx context.Context, w http.ResponseWriter, body []byte) {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		d.writeSingle(w, nil, nil, errParse())
		return
	}
	if len(raws) == 0 {
		d.writeSingle(w, nil, nil, errInvalidRequest("batch must not be empty"))
		return
	}
	if len(raws) > MaxBatchSize {
		d.writeSingle(w, nil, nil, errInvalidRequest("batch too large"))
		return
	}

	responses := make([]Response, 0, len(raws))
	for _, raw := range raws {
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			responses = append(responses, errorResponse(nil, errInvalidRequest("invalid request object")))
			continue
		}
		result, rpcErr := d.execute(ctx, &req)
		if req.IsNotification() {
			continue
		}
		if rpcErr != nil {
			responses = append(responses, errorResponse(req.ID, rpcErr))
			continue
		}
		responses = append(responses, Response{JSONRPC: Version, Result: &result, ID: req.ID})
	}

	if len(responses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	d.writeJSON(w, http.StatusOK, responses)
}

// execute validates the envelope, runs the method and encodes its result.
func (d *Dispatcher) execute(ctx context.Context, req *Request) (json.RawMessage, *Error) {
	start := time.Now()

	if req.JSONRPC != Version {
		return nil, errInvalidRequest(`jsonrpc must be "2.0"`)
	}
	if strings.TrimSpace(req.Method) == "" {
		return nil, errInvalidRequest("method is required")
	}

	_, known := d.Tier(req.Method)
	label := req.Method
	if !known {
		label = "unknown"
	}

	result, err := d.Call(ctx, req.Method, req.Params)
	if err != nil {
		rpcErr, known := FromError(err)
		if !known || rpcErr.Code == CodeInternal {
			d.logger.Error("rpc method failed",
				slog.String("method", req.Method),
				slog.String("error", err.Error()),
			)
		} else {
			d.logger.Debug("rpc method returned error",
				slog.String("method", req.Method),
				slog.Int("code", rpcErr.Code),
				slog.String("message", rpcErr.Message),
			)
		}
		observeCall(label, outcome(rpcErr), time.Since(start))
		return nil, rpcErr
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		d.logger.Error("failed to encode rpc result",
			slog.String("method", req.Method),
			slog.String("error", err.Error()),
		)
		rpcErr, _ := FromError(err)
		observeCall(label, outcome(rpcErr), time.Since(start))
		return nil, rpcErr
	}

	observeCall(label, "ok", time.Since(start))
	return encoded, nil
}

func errorResponse(id json.RawMessage, rpcErr *Error) Response {
	return Response{JSONRPC: Version, Error: rpcErr, ID: id}
}

func (d *Dispatcher) writeSingle(w http.ResponseWriter, id json.RawMessage, result json.RawMessage, rpcErr *Error) {
	if rpcErr != nil {
		d.writeJSON(w, rpcErr.HTTPStatus(), errorResponse(id, rpcErr))
		return
	}
	d.writeJSON(w, http.StatusOK, Response{JSONRPC: Version, Result: &result, ID: id})
}

func (d *Dispatcher) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.logger.Error("failed to encode rpc response", slog.String("error", err.Error()))
	}
}
