package v1

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/config"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/store/db"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

var today = time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

type testAPI struct {
	router  *mux.Router
	service *circulation.Service
}

func newTestAPI(t *testing.T, burst int, tweaks ...func(*config.Options)) *testAPI {
	t.Helper()
	d, err := db.NewDB(filepath.Join(t.TempDir(), "shelfdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))

	st := store.NewStore(d.DB)
	service := circulation.NewService(st,
		circulation.WithClock(util.FixedClock(today)),
		circulation.WithPasswordCost(bcrypt.MinCost))
	_, err = service.AddBorrowerType(context.Background(), &model.BorrowerType{Type: "student", BookTimeLimit: 14})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("desk-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	opts := config.GetDefaultOptions()
	opts.JWTSecret = "test-secret"
	opts.SigninBurst = burst
	opts.Staff = []config.StaffAccount{
		{Username: "clerk1", Role: "clerk", PasswordHash: string(hash)},
		{Username: "lib1", Role: "librarian", PasswordHash: string(hash)},
	}
	for _, tweak := range tweaks {
		tweak(opts)
	}

	router := mux.NewRouter()
	Server(router, NewHandler(service, opts))
	return &testAPI{router: router, service: service}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func (a *testAPI) signin(t *testing.T, req SigninRequest) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/signin", "", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SigninResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "shelfdesk.access-token=")
	return resp.AccessToken
}

func TestCirculationOverHTTP(t *testing.T) {
	api := newTestAPI(t, 50)
	clerk := api.signin(t, SigninRequest{Username: "clerk1", Password: "desk-pass"})
	librarian := api.signin(t, SigninRequest{Username: "lib1", Password: "desk-pass"})

	w := api.do(t, http.MethodPost, "/api/v1/borrowers", clerk, map[string]any{
		"password": "secret1", "name": "Ada", "sin_or_st_no": "S-1",
		"expiry_date": "2025-03-01", "type": "student",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var borrower model.Borrower
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &borrower))
	assert.NotContains(t, w.Body.String(), "secret1")

	w = api.do(t, http.MethodPost, "/api/v1/books", librarian, model.CreateBook{
		ISBN: "978-0201", Title: "TAOCP", MainAuthor: "Knuth", Year: 1968, Subjects: []string{"Algorithms"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added circulation.NewBookResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))

	w = api.do(t, http.MethodPost, "/api/v1/checkouts", clerk, CheckoutRequest{BID: borrower.BID, CallNumbers: []int64{added.Book.CallNumber}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"due_date":"2024-03-15"`)

	reader := api.signin(t, SigninRequest{BID: borrower.BID, Password: "secret1"})
	w = api.do(t, http.MethodGet, "/api/v1/account", reader, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var account circulation.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Len(t, account.Borrowings, 1)

	w = api.do(t, http.MethodGet, "/api/v1/books/search?q=algo", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"copies_out":1`)

	w = api.do(t, http.MethodPost, "/api/v1/holds", reader, HoldRequest{CallNumber: added.Book.CallNumber})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.do(t, http.MethodPost, "/api/v1/holds", reader, HoldRequest{CallNumber: added.Book.CallNumber})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/returns", clerk, ReturnRequest{CallNumber: added.Book.CallNumber, CopyNo: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"on-hold"`)

	w = api.do(t, http.MethodPost, "/api/v1/returns", clerk, ReturnRequest{CallNumber: added.Book.CallNumber, CopyNo: 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/popular?year=2024", librarian, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"borrowings":1`)
}

func TestAccessControl(t *testing.T) {
	api := newTestAPI(t, 50)
	clerk := api.signin(t, SigninRequest{Username: "clerk1", Password: "desk-pass"})

	w := api.do(t, http.MethodGet, "/api/v1/overdue", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/overdue", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/overdue", clerk, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/checked-out", clerk, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/account", clerk, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/signin", "", SigninRequest{Username: "clerk1", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(t, http.MethodPost, "/api/v1/signin", "", SigninRequest{BID: 99, Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorStatusCodes(t *testing.T) {
	api := newTestAPI(t, 50)
	clerk := api.signin(t, SigninRequest{Username: "clerk1", Password: "desk-pass"})

	w := api.do(t, http.MethodPost, "/api/v1/borrowers", clerk, map[string]any{
		"password": "secret1", "name": "Ada", "sin_or_st_no": "S-1",
		"expiry_date": "03/01/2025", "type": "student",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/borrowers", clerk, map[string]any{
		"password": strings.Repeat("p", 80), "name": "Ada", "sin_or_st_no": "S-1",
		"expiry_date": "2025-03-01", "type": "student",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/v1/returns", clerk, ReturnRequest{CallNumber: 5, CopyNo: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/checkouts", clerk, CheckoutRequest{BID: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/borrowers/42/account", clerk, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSigninIsRateLimited(t *testing.T) {
	api := newTestAPI(t, 2)
	for i := 0; i < 2; i++ {
		w := api.do(t, http.MethodPost, "/api/v1/signin", "", SigninRequest{Username: "clerk1", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := api.do(t, http.MethodPost, "/api/v1/signin", "", SigninRequest{Username: "clerk1", Password: "desk-pass"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func (a *testAPI) signinFrom(t *testing.T, remoteAddr, forwardedFor string) int {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(SigninRequest{Username: "clerk1", Password: "wrong"}))
	r := httptest.NewRequest(http.MethodPost, "/api/v1/signin", &buf)
	r.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		r.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w.Code
}

func TestSigninLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	api := newTestAPI(t, 1, func(opts *config.Options) {
		opts.SigninRate = 0.001
	})

	throttled := 0
	for i := 0; i < 20; i++ {
		if api.signinFrom(t, "198.51.100.9:5000", fmt.Sprintf("10.0.0.%d", i)) == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.Equal(t, 19, throttled)
}

func TestSigninLimitTrustsConfiguredProxy(t *testing.T) {
	api := newTestAPI(t, 1, func(opts *config.Options) {
		opts.SigninRate = 0.001
		opts.TrustedProxies = []string{"192.0.2.10"}
	})

	assert.Equal(t, http.StatusUnauthorized, api.signinFrom(t, "192.0.2.10:5000", "203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, api.signinFrom(t, "192.0.2.10:5000", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, api.signinFrom(t, "192.0.2.10:5000", "203.0.113.1"))
}

func TestSigninLimiterDropsIdleClients(t *testing.T) {
	now := today
	l := newSigninLimiter(1, 1)
	l.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		assert.True(t, l.allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, 10, l.size())
	assert.False(t, l.allow("10.0.0.1"))

	now = now.Add(limiterIdleTTL + limiterSweepEvery)
	assert.True(t, l.allow("10.0.0.1"))
	assert.Equal(t, 1, l.size())
}
