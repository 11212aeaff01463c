package request // import "github.com/shelfdesk/shelfdesk/internal/http/request"

import (
	"net/http"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

type ContextKey int

const (
	ClientIPContextKey ContextKey = iota
	RequestIDContextKey
	// BorrowerIDContextKey holds the bid of a signed in borrower. Staff have none.
	BorrowerIDContextKey
	UserNameContextKey
	UserRoleContextKey
)

func getContextStringValue(r *http.Request, key ContextKey) string {
	if v := r.Context().Value(key); v != nil {
		if value, valid := v.(string); valid {
			return value
		}
	}
	return ""
}

func getContextInt64Value(r *http.Request, key ContextKey) int64 {
	if v := r.Context().Value(key); v != nil {
		if value, valid := v.(int64); valid {
			return value
		}
	}
	return 0
}

// ClientIP returns the client IP address stored in the context.
func ClientIP(r *http.Request) string {
	return getContextStringValue(r, ClientIPContextKey)
}

func RequestID(r *http.Request) string {
	return getContextStringValue(r, RequestIDContextKey)
}

func GetBorrowerID(r *http.Request) int64 {
	return getContextInt64Value(r, BorrowerIDContextKey)
}

func GetUsername(r *http.Request) string {
	return getContextStringValue(r, UserNameContextKey)
}

func GetUserRole(r *http.Request) model.Role {
	if v := r.Context().Value(UserRoleContextKey); v != nil {
		if role, valid := v.(model.Role); valid {
			return role
		}
	}
	return ""
}
