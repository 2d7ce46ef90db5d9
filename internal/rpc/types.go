// Package rpc is the JSON-RPC 2.0 transport for the lore API.
//
// Every procedure is a named method ("characters.list", "glitches.resolve")
// registered with an access tier. One POST endpoint accepts a single call or
// a batch:
//
//	POST /api/rpc  {"jsonrpc":"2.0","method":"characters.get","params":{"id":1},"id":1}
//
// Service errors are translated to JSON-RPC error objects by FromError; for a
// single call the HTTP status mirrors the error kind so plain HTTP clients
// and proxies see 401/403/404 as well.
package rpc

import "encoding/json"

const Version = "2.0"

// Request is a JSON-RPC 2.0 request. ID is kept raw so numeric and string
// ids are echoed back unchanged; a request without an id is a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// IsNotification reports whether the caller expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is
// set; Result is raw so a null result still encodes as "result":null.
type Response struct {
	JSONRPC string           `json:"jsonrpc"`
	Result  *json.RawMessage `json:"result,omitempty"`
	Error   *Error           `json:"error,omitempty"`
	ID      json.RawMessage  `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// ErrorData carries the application-level error kind.
type ErrorData struct {
	Code       string `json:"code"`
	HTTPStatus int    `json:"httpStatus"`
	Field      string `json:"field,omitempty"`
	Method     string `json:"method,omitempty"`
}

// Standard JSON-RPC 2.0 error codes
const (
	CodeParse          = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
)

// Application error codes (-32000 to -32099)
const (
	CodeUnauthorized = -32001
	CodeForbidden    = -32003
	CodeNotFound     = -32004
	CodeConflict     = -32009
	CodeUnavailable  = -32010
)

// Error kinds reported in ErrorData.Code
const (
	KindParse        = "PARSE_ERROR"
	KindBadRequest   = "BAD_REQUEST"
	KindUnauthorized = "UNAUTHORIZED"
	KindForbidden    = "FORBIDDEN"
	KindNotFound     = "NOT_FOUND"
	KindConflict     = "CONFLICT"
	KindUnavailable  = "SERVICE_UNAVAILABLE"
	KindInternal     = "INTERNAL_SERVER_ERROR"
)
