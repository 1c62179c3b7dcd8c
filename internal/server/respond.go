package server

import (
	"encoding/json"
	"net/http"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    domain.ErrorType `json:"type"`
	Code    domain.ErrorCode `json:"code,omitempty"`
	Message string           `json:"message"`
	Param   string           `json:"param,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as {"error":{...}} with the status its type maps to.
// Errors that are not API errors are logged and reported as a generic server error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	AddError(r.Context(), err)

	apiErr := domain.AsAPIError(err)
	if apiErr.Type == domain.ErrorTypeServer {
		apiErr = domain.ErrServer("internal server error")
	}
	if apiErr.Type == domain.ErrorTypeAuthentication {
		w.Header().Set("WWW-Authenticate", `Bearer realm="innkeeper"`)
	}

	WriteJSON(w, apiErr.HTTPStatusCode(), errorBody{Error: errorDetail{
		Type:    apiErr.Type,
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Param:   apiErr.Param,
	}})
}
