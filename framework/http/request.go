package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxBody = 1 << 20 // 1 MB

// ErrEmptyBody is returned by Bind when the request has no body.
var ErrEmptyBody = errors.New("http: empty request body")

var validate = validator.New()

// Request wraps an inspection API request.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes a JSON body of at most 1 MB into v.
func (req *Request) Bind(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}

// LocTable is a localization body: slot → attribute → text.
type LocTable map[string]map[string]string

// BindLoc decodes and checks a localization body. The table must name at
// least one slot, and every slot at least one attribute.
//
//	{"saveButton": {"title": "Sichern"}}
func (req *Request) BindLoc() (LocTable, error) {
	var table LocTable
	if err := req.Bind(&table); err != nil {
		return nil, err
	}
	if err := validate.Var(table, "min=1,dive,keys,required,endkeys,min=1"); err != nil {
		return nil, fmt.Errorf("invalid localization table: %w", err)
	}
	return table, nil
}

// Payloads converts the table to the shape page.Loc expects.
func (t LocTable) Payloads() map[string]any {
	out := make(map[string]any, len(t))
	for slot, attrs := range t {
		out[slot] = attrs
	}
	return out
}

// ── Route params ─────────────────────────────────────────────────────────────

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// PageName is the {page} route parameter.
func (req *Request) PageName() string { return req.RouteParam("page") }

// SlotName is the {slot} route parameter.
func (req *Request) SlotName() string { return req.RouteParam("slot") }

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}
