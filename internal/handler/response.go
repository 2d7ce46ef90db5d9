package handler

// Plain-HTTP routes (OAuth, health, static) answer errors in one shape:
//
//	{"error": "BAD_REQUEST", "message": "code and state are required"}
//
// The error kinds and statuses are the same ones the RPC endpoint reports in
// error.data, so the browser handles both the same way.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/gaia-lore/internal/rpc"
)

// ErrorResponse is the JSON body of a plain-HTTP error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends v as JSON with the given status. Headers go out before
// the body, so they must be set before calling.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps err to a status and kind through the RPC error table.
// Errors that are not application errors are reported with a generic message.
func writeError(w http.ResponseWriter, err error) {
	rpcErr, _ := rpc.FromError(err)
	kind := rpc.KindInternal
	if rpcErr.Data != nil {
		kind = rpcErr.Data.Code
	}
	writeJSON(w, rpcErr.HTTPStatus(), ErrorResponse{Error: kind, Message: rpcErr.Message})
}
