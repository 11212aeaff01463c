package response

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/http/request"
	"github.com/shelfdesk/shelfdesk/internal/log"
)

const contentTypeHeader = `application/json`

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OK creates a new JSON response with a 200 status code.
func OK(w http.ResponseWriter, r *http.Request, body interface{}) {
	builder := New(w, r)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSON(body))
	builder.Write()
}

// Created sends a created response to the client.
func Created(w http.ResponseWriter, r *http.Request, body interface{}) {
	builder := New(w, r)
	builder.WithStatus(http.StatusCreated)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSON(body))
	builder.Write()
}

// NoContent sends a no content response to the client.
func NoContent(w http.ResponseWriter, r *http.Request) {
	builder := New(w, r)
	builder.WithStatus(http.StatusNoContent)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.Write()
}

// ServerError sends an internal error to the client.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error(http.StatusText(http.StatusInternalServerError),
		requestFields(r, http.StatusInternalServerError, zap.Error(err))...,
	)

	writeError(w, r, http.StatusInternalServerError, err)
}

// ServiceUnavailable tells the client the database cannot be reached.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	log.Error(http.StatusText(http.StatusServiceUnavailable),
		requestFields(r, http.StatusServiceUnavailable, zap.Error(err))...,
	)

	builder := New(w, r)
	builder.WithHeader("Retry-After", "5")
	builder.WithStatus(http.StatusServiceUnavailable)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSONError(errors.New("storage unavailable")))
	builder.Write()
}

// BadRequest sends a bad request error to the client.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	log.Warn(http.StatusText(http.StatusBadRequest),
		requestFields(r, http.StatusBadRequest, zap.Any("error", err))...,
	)

	writeError(w, r, http.StatusBadRequest, err)
}

// Conflict sends a refused business rule to the client.
func Conflict(w http.ResponseWriter, r *http.Request, err error) {
	log.Info(http.StatusText(http.StatusConflict),
		requestFields(r, http.StatusConflict, zap.Any("error", err))...,
	)

	writeError(w, r, http.StatusConflict, err)
}

// Unauthorized sends a not authorized error to the client.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	log.Warn(http.StatusText(http.StatusUnauthorized),
		requestFields(r, http.StatusUnauthorized)...,
	)

	writeError(w, r, http.StatusUnauthorized, errors.New("access unauthorized"))
}

// Forbidden sends a forbidden error to the client.
func Forbidden(w http.ResponseWriter, r *http.Request) {
	log.Warn(http.StatusText(http.StatusForbidden),
		requestFields(r, http.StatusForbidden)...,
	)

	writeError(w, r, http.StatusForbidden, errors.New("access forbidden"))
}

// TooManyRequests sends a throttled response to the client.
func TooManyRequests(w http.ResponseWriter, r *http.Request) {
	log.Warn(http.StatusText(http.StatusTooManyRequests),
		requestFields(r, http.StatusTooManyRequests)...,
	)

	builder := New(w, r)
	builder.WithHeader("Retry-After", "1")
	builder.WithStatus(http.StatusTooManyRequests)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSONError(errors.New("too many requests")))
	builder.Write()
}

// NotFound sends a page not found error to the client. A nil err reports
// the generic message.
func NotFound(w http.ResponseWriter, r *http.Request, err error) {
	log.Warn(http.StatusText(http.StatusNotFound),
		requestFields(r, http.StatusNotFound)...,
	)

	if err == nil {
		err = errors.New("resource not found")
	}
	writeError(w, r, http.StatusNotFound, err)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	builder := New(w, r)
	builder.WithStatus(statusCode)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSONError(err))
	builder.Write()
}

func requestFields(r *http.Request, statusCode int, extra ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("client_ip", request.FindClientIP(r)),
		zap.String("request_id", request.RequestID(r)),
		zap.String("request.method", r.Method),
		zap.String("request.uri", r.RequestURI),
		zap.String("request.user_agent", r.UserAgent()),
		zap.Int("response.status_code", statusCode),
	}, extra...)
}

func toJSONError(err error) []byte {
	type errorMsg struct {
		ErrorMessage string `json:"error_message"`
	}

	return toJSON(errorMsg{ErrorMessage: err.Error()})
}

func toJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error("Unable to marshal JSON response", zap.Any("error", err))
		return []byte("")
	}

	return b
}
