package main

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"fertadvisor/logging"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// apiError is the body of every error response:
//
//	{"success":false,"error":{"code":"VALIDATION_ERROR","message":"...","request_id":"..."}}
type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type errorEnvelope struct {
	Success bool     `json:"success"`
	Error   apiError `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	respondJSON(w, status, errorEnvelope{
		Error: apiError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// decodeBody reads at most maxBodyBytes of JSON into v. It writes the error
// response itself when it returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large",
				map[string]int64{"limit": tooBig.Limit})
			return false
		}
		respondError(w, r, http.StatusBadRequest, "BAD_JSON", "bad json", nil)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		respondError(w, r, http.StatusBadRequest, "BAD_JSON", "bad json", nil)
		return false
	}
	return true
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

// jsonFieldName makes validation errors report JSON names, e.g. soilData.ph.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// validateRequest returns the failing fields, or nil when v is valid.
func validateRequest(v any) []fieldError {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Field: "", Rule: err.Error()}}
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		out = append(out, fieldError{Field: ns, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
