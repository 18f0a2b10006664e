// Package testutil helpers shared by HTTP and redis-backed tests
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// RequestBuilder builds and runs an in-process HTTP request
type RequestBuilder struct {
	method  string
	target  string
	body    interface{}
	headers map[string]string
	query   url.Values
}

// NewRequest target may already carry a query string
func NewRequest(method, target string) *RequestBuilder {
	return &RequestBuilder{
		method:  method,
		target:  target,
		headers: make(map[string]string),
		query:   url.Values{},
	}
}

// GET shorthand
func GET(target string) *RequestBuilder {
	return NewRequest(http.MethodGet, target)
}

// POST shorthand
func POST(target string) *RequestBuilder {
	return NewRequest(http.MethodPost, target)
}

// DELETE shorthand
func DELETE(target string) *RequestBuilder {
	return NewRequest(http.MethodDelete, target)
}

// WithJSON sets a JSON body
func (rb *RequestBuilder) WithJSON(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

// WithHeader sets a header; empty values are skipped
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	if value != "" {
		rb.headers[key] = value
	}
	return rb
}

// WithQuery adds a query parameter
func (rb *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	rb.query.Add(key, value)
	return rb
}

// WithTraceID sets the X-Trace-ID header
func (rb *RequestBuilder) WithTraceID(traceID string) *RequestBuilder {
	return rb.WithHeader("X-Trace-ID", traceID)
}

// Do serves the request on handler
func (rb *RequestBuilder) Do(handler http.Handler) *ResponseHelper {
	target := rb.target
	if len(rb.query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + rb.query.Encode()
	}

	body := &bytes.Buffer{}
	if rb.body != nil {
		_ = json.NewEncoder(body).Encode(rb.body)
	}

	req := httptest.NewRequest(rb.method, target, body)
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	if rb.body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return &ResponseHelper{Recorder: w}
}

// ResponseHelper wraps the recorder
type ResponseHelper struct {
	Recorder *httptest.ResponseRecorder
}

// Status code
func (rh *ResponseHelper) Status() int {
	return rh.Recorder.Code
}

// Body as string
func (rh *ResponseHelper) Body() string {
	return rh.Recorder.Body.String()
}

// JSON decodes the body into v
func (rh *ResponseHelper) JSON(v interface{}) error {
	return json.Unmarshal(rh.Recorder.Body.Bytes(), v)
}

// Header response header value
func (rh *ResponseHelper) Header(key string) string {
	return rh.Recorder.Header().Get(key)
}
