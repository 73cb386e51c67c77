package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Response is a recorded handler response.
type Response struct {
	Code   int
	Header http.Header
	Body   []byte
}

// Call runs one request through h. body is sent as is when it is a string
// or []byte and JSON-encoded otherwise; nil sends no body. headers are
// key, value pairs.
func Call(t testing.TB, h http.Handler, method, path string, body any, headers ...string) *Response {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return &Response{Code: rec.Code, Header: rec.Header(), Body: rec.Body.Bytes()}
}

// Bearer returns the header pair for an Authorization bearer token.
func Bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}

// Envelope is the decoded response envelope.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

// Envelope decodes the body as a response envelope.
func (r *Response) Envelope(t testing.TB) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(r.Body, &env), "body: %s", r.Body)
	return env
}

// Data decodes the envelope's data into dest.
func (r *Response) Data(t testing.TB, dest any) {
	t.Helper()
	env := r.Envelope(t)
	require.NoError(t, json.Unmarshal(env.Data, dest), "data: %s", env.Data)
}

// Decode decodes the whole body into dest.
func (r *Response) Decode(t testing.TB, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dest), "body: %s", r.Body)
}

// AssertStatus fails with the body in the message when the code differs.
func (r *Response) AssertStatus(t testing.TB, want int) bool {
	t.Helper()
	return assert.Equal(t, want, r.Code, "body: %s", r.Body)
}

// AssertJSON compares the body with expected after decoding both, so key
// order and whitespace do not matter.
func (r *Response) AssertJSON(t testing.TB, expected string) {
	t.Helper()
	var want, got any
	require.NoError(t, json.Unmarshal([]byte(expected), &want), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal(r.Body, &got), "body: %s", r.Body)
	assert.Equal(t, want, got)
}
