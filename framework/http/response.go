package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-page/framework/catalog"
	"github.com/km-arc/go-page/framework/design"
	"github.com/km-arc/go-page/framework/page"
	"github.com/km-arc/go-page/framework/view"
)

// Response writes the JSON envelopes of the inspection API:
//
//	{"data": ...}                          on success
//	{"message": "...", "code": "..."}      on failure
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// ── Success ──────────────────────────────────────────────────────────────────

// JSON sends v as is with status.
func (res *Response) JSON(status int, v any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(v)
}

// Success sends 200 {"data": v}.
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// ── Failure ──────────────────────────────────────────────────────────────────

// Error codes carried next to the message.
const (
	CodeBadRequest    = "bad_request"
	CodeNotFound      = "not_found"
	CodeCreateFailed  = "create_failed"
	CodeInvalidDesign = "invalid_design"
	CodeInternal      = "internal"
)

// Error sends {"message": message, "code": ...} with status; the code is
// derived from the status.
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message, "code": codeFor(status)})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// Fail sends err with the status StatusOf picks for it.
//
//	if _, err := p.Awake(); err != nil {
//	    res.Fail(err)
//	    return
//	}
func (res *Response) Fail(err error) {
	status := StatusOf(err)
	res.JSON(status, envelope{"message": err.Error(), "code": codeOf(err, status)})
}

// StatusOf maps an error from the page layer to an HTTP status. Anything it
// does not recognize is a creation function failure: 422.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownPage):
		return http.StatusNotFound
	case errors.Is(err, page.ErrUnexpectedType):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func codeOf(err error, status int) string {
	switch {
	case errors.Is(err, design.ErrInvalidDocument), errors.Is(err, view.ErrUnknownKind):
		return CodeInvalidDesign
	case status == http.StatusUnprocessableEntity:
		return CodeCreateFailed
	default:
		return codeFor(status)
	}
}

func codeFor(status int) string {
	switch {
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusUnprocessableEntity:
		return CodeCreateFailed
	case status >= 500:
		return CodeInternal
	default:
		return CodeBadRequest
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
