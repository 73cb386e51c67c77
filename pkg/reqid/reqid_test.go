package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/pkg/reqid"
	"github.com/stretchr/testify/assert"
)

func serve(header string) (seen string, echoed string) {
	h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/brands", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get(reqid.Header)
}

func TestGeneratesID(t *testing.T) {
	seen, echoed := serve("")
	assert.Equal(t, seen, echoed)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestReusesUpstreamID(t *testing.T) {
	seen, echoed := serve("gateway-42")
	assert.Equal(t, "gateway-42", seen)
	assert.Equal(t, "gateway-42", echoed)
}

func TestRejectsMalformedUpstreamID(t *testing.T) {
	seen, _ := serve("bad id\nwith newline")
	assert.NotEqual(t, "bad id\nwith newline", seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}
