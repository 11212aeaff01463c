package response // import "github.com/shelfdesk/shelfdesk/internal/http/response"

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseHasCommonHeaders(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	r.Header.Set("X-Request-Id", "req-1")

	w := httptest.NewRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		New(w, r).Write()
	})

	handler.ServeHTTP(w, r)
	resp := w.Result()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-Request-Id":           "req-1",
	}

	for header, expected := range headers {
		assert.Equal(t, expected, resp.Header.Get(header), header)
	}
}

func TestSmallBodyIsNotCompressed(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()

	New(w, r).WithBody("short").Write()
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "short", w.Body.String())
}

func TestLargeBodyCompression(t *testing.T) {
	body := strings.Repeat("shelf ", 500)

	for _, tc := range []struct {
		accept string
		read   func(io.Reader) (io.Reader, error)
	}{
		{"br", func(r io.Reader) (io.Reader, error) { return brotli.NewReader(r), nil }},
		{"gzip", func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }},
	} {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Accept-Encoding", tc.accept)
		w := httptest.NewRecorder()

		New(w, r).WithBody(body).Write()
		require.Equal(t, tc.accept, w.Header().Get("Content-Encoding"))

		reader, err := tc.read(w.Body)
		require.NoError(t, err)
		got, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
	}
}

func TestWithoutCompression(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	New(w, r).WithoutCompression().WithBody(strings.Repeat("x", 2048)).Write()
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, 2048, w.Body.Len())
}

func TestJSONResponses(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	w := httptest.NewRecorder()
	Created(w, r, map[string]int{"bid": 7})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, contentTypeHeader, w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"bid":7}`, w.Body.String())

	w = httptest.NewRecorder()
	Conflict(w, r, errors.New("copy is not checked out"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error_message":"copy is not checked out"}`, w.Body.String())

	w = httptest.NewRecorder()
	ServiceUnavailable(w, r, errors.New("disk I/O error"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error_message":"storage unavailable"}`, w.Body.String())

	w = httptest.NewRecorder()
	NotFound(w, r, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error_message":"resource not found"}`, w.Body.String())
}
