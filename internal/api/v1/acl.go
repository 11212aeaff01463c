package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/api/auth"
	"github.com/shelfdesk/shelfdesk/internal/http/request"
	"github.com/shelfdesk/shelfdesk/internal/http/response"
	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

type AuthInterceptor struct {
	secret []byte
}

func NewAuthInterceptor(secret []byte) *AuthInterceptor {
	return &AuthInterceptor{secret: secret}
}

func (m *AuthInterceptor) AuthenticationInterceptor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeName := ""
		if route := mux.CurrentRoute(r); route != nil {
			routeName = route.GetName()
		}
		if isUnauthorizeAllowed(routeName) {
			next.ServeHTTP(w, r)
			return
		}
		clientIP := request.ClientIP(r)

		claims, err := auth.ParseAccessToken(getAccessToken(r), m.secret)
		if err != nil {
			log.Debug("Failed to authenticate user",
				zap.String("client_ip", clientIP),
				zap.String("user_agent", r.UserAgent()),
				zap.Error(err),
			)
			response.Unauthorized(w, r)
			return
		}

		ctx := r.Context()
		if claims.Role == model.RoleBorrower {
			bid, err := util.ConvertStringToInt64(claims.Subject)
			if err != nil || bid <= 0 {
				log.Debug("Malformed borrower id in the token",
					zap.String("client_ip", clientIP),
					zap.String("subject", claims.Subject),
				)
				response.Unauthorized(w, r)
				return
			}
			ctx = context.WithValue(ctx, request.BorrowerIDContextKey, bid)
		}

		if !isRoleAllowed(routeName, claims.Role) {
			log.Debug("Role not allowed on route",
				zap.String("client_ip", clientIP),
				zap.String("route", routeName),
				zap.String("role", claims.Role.String()),
			)
			response.Forbidden(w, r)
			return
		}

		ctx = context.WithValue(ctx, request.UserNameContextKey, claims.Name)
		ctx = context.WithValue(ctx, request.UserRoleContextKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getAccessToken(r *http.Request) string {
	// Check the HTTP Authorization header first
	authorizationHeaders := r.Header.Get("Authorization")
	// Check bearer token
	if authorizationHeaders != "" {
		splitToken := strings.Split(authorizationHeaders, "Bearer ")
		if len(splitToken) == 2 {
			return splitToken[1]
		}
	}

	// Check the cookie header
	if cookie, err := r.Cookie(auth.AccessTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

var errNoBorrower = errors.New("no borrower in the access token")

// currentBorrower is the bid of the signed in borrower.
func currentBorrower(r *http.Request) (int64, error) {
	bid := request.GetBorrowerID(r)
	if bid == 0 {
		return 0, errNoBorrower
	}
	return bid, nil
}
