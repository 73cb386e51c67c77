package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	bhttp "github.com/shashiranjanraj/bodega/pkg/http"
)

// Stub answers outgoing requests whose URL starts with Prefix.
type Stub struct {
	Prefix string
	Status int
	Body   string
}

// Captured is one intercepted outgoing request.
type Captured struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockTransport is an http.RoundTripper that records every request and
// answers from its stubs. Unmatched requests get a 404.
type MockTransport struct {
	mu    sync.Mutex
	stubs []Stub
	calls []Captured
}

// MockHTTP installs a MockTransport on the pkg/http client for the duration
// of the test.
func MockHTTP(t testing.TB, stubs ...Stub) *MockTransport {
	t.Helper()
	mt := &MockTransport{stubs: stubs}
	previous := bhttp.Default.HTTP.Transport
	bhttp.Default.HTTP.Transport = mt
	t.Cleanup(func() { bhttp.Default.HTTP.Transport = previous })
	return mt
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	mt.mu.Lock()
	mt.calls = append(mt.calls, Captured{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	stub, found := mt.match(req.URL.String())
	mt.mu.Unlock()

	if !found {
		stub = Stub{Status: http.StatusNotFound, Body: `{"error":"no stub"}`}
	}
	code := stub.Status
	if code == 0 {
		code = http.StatusOK
	}
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(stub.Body)),
		Request:    req,
	}, nil
}

func (mt *MockTransport) match(url string) (Stub, bool) {
	for _, s := range mt.stubs {
		if strings.HasPrefix(url, s.Prefix) {
			return s, true
		}
	}
	return Stub{}, false
}

// Calls returns the captured requests in order.
func (mt *MockTransport) Calls() []Captured {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	out := make([]Captured, len(mt.calls))
	copy(out, mt.calls)
	return out
}

// CallsTo returns the captured requests whose URL starts with prefix.
func (mt *MockTransport) CallsTo(prefix string) []Captured {
	var out []Captured
	for _, c := range mt.Calls() {
		if strings.HasPrefix(c.URL, prefix) {
			out = append(out, c)
		}
	}
	return out
}
