package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// MethodFunc handles one call. Params are the raw "params" member, possibly
// empty. The returned value is JSON-encoded as the result.
type MethodFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Method adapts a typed function to a MethodFunc. Missing or null params
// decode to the zero P; unknown fields are rejected.
func Method[P, R any](fn func(ctx context.Context, params P) (R, error)) MethodFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&p); err != nil {
				return nil, errInvalidParams(fmt.Sprintf("invalid params: %v", err))
			}
		}
		return fn(ctx, p)
	}
}

// NoParams adapts a function that takes no input. Any params are ignored.
func NoParams[R any](fn func(ctx context.Context) (R, error)) MethodFunc {
	return func(ctx context.Context, _ json.RawMessage) (any, error) {
		return fn(ctx)
	}
}

// call is the HTTP exchange a method runs in.
type call struct {
	request *http.Request
	header  http.Header
}

type callKey struct{}

func withCall(ctx context.Context, r *http.Request, header http.Header) context.Context {
	return context.WithValue(ctx, callKey{}, &call{request: r, header: header})
}

// HTTPRequest returns the request a method was called through, or nil
// outside of ServeHTTP.
func HTTPRequest(ctx context.Context) *http.Request {
	if c, ok := ctx.Value(callKey{}).(*call); ok {
		return c.request
	}
	return nil
}

// SetCookie adds a Set-Cookie header to the response carrying the call.
// It is a no-op outside of ServeHTTP.
func SetCookie(ctx context.Context, cookie *http.Cookie) {
	c, ok := ctx.Value(callKey{}).(*call)
	if !ok {
		return
	}
	if v := cookie.String(); v != "" {
		c.header.Add("Set-Cookie", v)
	}
}
