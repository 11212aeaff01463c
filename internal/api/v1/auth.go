package v1

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/shelfdesk/shelfdesk/internal/api/auth"
	"github.com/shelfdesk/shelfdesk/internal/http/request"
	"github.com/shelfdesk/shelfdesk/internal/http/response"
	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
)

// SigninRequest signs in a borrower by bid, or a staff member by username.
type SigninRequest struct {
	BID      int64  `json:"bid"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type SigninResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Role        model.Role `json:"role"`
	Name        string     `json:"name"`
	BID         int64      `json:"bid,omitempty"`
}

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

// signinLimiter throttles sign in attempts per source IP. Limiters idle for
// longer than limiterIdleTTL are dropped.
type signinLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limiters  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newSigninLimiter(perSecond float64, burst int) *signinLimiter {
	if burst < 1 {
		burst = 1
	}
	return &signinLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *signinLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		for key, v := range l.limiters {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *signinLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.allow(request.SourceIP(r, h.opts.TrustedProxies)) {
		response.TooManyRequests(w, r)
		return
	}

	var signin SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&signin); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if len(h.secret) == 0 {
		log.Error("JWT secret is not set")
		response.ServerError(w, r, errors.New("JWT secret is not set"))
		return
	}

	var (
		subject string
		resp    SigninResponse
	)
	if username := strings.TrimSpace(signin.Username); username != "" {
		account, ok := h.opts.FindStaff(username)
		if !ok || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(signin.Password)) != nil {
			log.Warn("Staff sign in failed", zap.String("username", username))
			response.Unauthorized(w, r)
			return
		}
		subject = username
		resp.Role, resp.Name = model.Role(account.Role), username
	} else {
		borrower, err := h.service.Authenticate(r.Context(), signin.BID, signin.Password)
		if err != nil {
			h.failure(w, r, err)
			return
		}
		subject = auth.BorrowerSubject(borrower.BID)
		resp.Role, resp.Name, resp.BID = model.RoleBorrower, borrower.Name, borrower.BID
	}

	resp.ExpiresAt = time.Now().Add(h.tokenTTL)
	accessToken, err := auth.GenerateAccessToken(subject, resp.Name, resp.Role, resp.ExpiresAt, h.secret)
	if err != nil {
		log.Error("Failed to generate access token", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	resp.AccessToken = accessToken

	w.Header().Set("Set-Cookie", buildAccessTokenCookie(accessToken, resp.ExpiresAt, r.Header.Get("Origin")))
	response.OK(w, r, resp)
}

func buildAccessTokenCookie(accessToken string, expireTime time.Time, origin string) string {
	attrs := []string{
		auth.AccessTokenCookieName + "=" + accessToken,
		"Path=/",
		"HttpOnly",
	}
	if expireTime.IsZero() {
		attrs = append(attrs, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	} else {
		attrs = append(attrs, "Expires="+expireTime.UTC().Format(http.TimeFormat))
	}

	if strings.HasPrefix(origin, "https://") {
		attrs = append(attrs, "Secure")
		attrs = append(attrs, "SameSite=None")
	} else {
		attrs = append(attrs, "SameSite=Lax")
	}
	return strings.Join(attrs, "; ")
}

