package v1

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/config"
	"github.com/shelfdesk/shelfdesk/internal/middleware"
)

type Handler struct {
	service *circulation.Service
	opts    *config.Options
	// For JWT
	secret   []byte
	tokenTTL time.Duration
	limiter  *signinLimiter
}

// NewHandler is a constructor for the v1.Handler
func NewHandler(service *circulation.Service, opts *config.Options) *Handler {
	return &Handler{
		service:  service,
		opts:     opts,
		secret:   []byte(opts.JWTSecret),
		tokenTTL: opts.AccessTokenTTL,
		limiter:  newSigninLimiter(opts.SigninRate, opts.SigninBurst),
	}
}

func Server(router *mux.Router, handler *Handler) {
	sr := router.PathPrefix("/api/v1").Subrouter()
	sr.Use(middleware.HandleCORS)
	sr.Use(middleware.LoggingRequest)
	// Add authentication middleware
	sr.Use(NewAuthInterceptor(handler.secret).AuthenticationInterceptor)
	sr.Methods(http.MethodOptions)

	sr.HandleFunc("/signin", handler.signIn).Methods(http.MethodPost).Name(routeSignin)

	// Borrower
	sr.HandleFunc("/books/search", handler.searchBooks).Methods(http.MethodGet).Name(routeSearch)
	sr.HandleFunc("/account", handler.getAccount).Methods(http.MethodGet).Name(routeAccount)
	sr.HandleFunc("/holds", handler.placeHold).Methods(http.MethodPost).Name(routePlaceHold)
	sr.HandleFunc("/holds/{hid:[0-9]+}", handler.cancelHold).Methods(http.MethodDelete).Name(routeCancelHold)
	sr.HandleFunc("/fines/{fid:[0-9]+}/pay", handler.payFine).Methods(http.MethodPost).Name(routePayFine)

	// Clerk
	sr.HandleFunc("/checkouts", handler.checkout).Methods(http.MethodPost).Name(routeCheckout)
	sr.HandleFunc("/returns", handler.returnCopy).Methods(http.MethodPost).Name(routeReturn)
	sr.HandleFunc("/borrowers", handler.createBorrower).Methods(http.MethodPost).Name(routeCreateBorrower)
	sr.HandleFunc("/borrowers/{bid:[0-9]+}/account", handler.getBorrowerAccount).Methods(http.MethodGet).Name(routeBorrowerAccount)
	sr.HandleFunc("/overdue", handler.listOverdue).Methods(http.MethodGet).Name(routeOverdue)
	sr.HandleFunc("/borrower-types", handler.listBorrowerTypes).Methods(http.MethodGet).Name(routeListBorrowerTypes)

	// Librarian
	sr.HandleFunc("/books", handler.addBook).Methods(http.MethodPost).Name(routeAddBook)
	sr.HandleFunc("/books/{callNumber:[0-9]+}/copies", handler.addCopy).Methods(http.MethodPost).Name(routeAddCopy)
	sr.HandleFunc("/checked-out", handler.listCheckedOut).Methods(http.MethodGet).Name(routeCheckedOut)
	sr.HandleFunc("/popular", handler.listPopular).Methods(http.MethodGet).Name(routePopular)
	sr.HandleFunc("/borrower-types", handler.addBorrowerType).Methods(http.MethodPost).Name(routeAddBorrowerType)
}
