package v1

import (
	"net/http"

	"github.com/shelfdesk/shelfdesk/internal/http/request"
	"github.com/shelfdesk/shelfdesk/internal/http/response"
	"github.com/shelfdesk/shelfdesk/internal/model"
)

const defaultPopularLimit = 10

func (h *Handler) addBook(w http.ResponseWriter, r *http.Request) {
	var create model.CreateBook
	if err := decode(r, &create); err != nil {
		h.failure(w, r, err)
		return
	}

	result, err := h.service.AddBook(r.Context(), &create)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	if result.Created {
		response.Created(w, r, result)
		return
	}
	response.OK(w, r, result)
}

func (h *Handler) addCopy(w http.ResponseWriter, r *http.Request) {
	bc, err := h.service.AddCopy(r.Context(), request.RouteInt64Param(r, "callNumber"))
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.Created(w, r, bc)
}

func (h *Handler) listCheckedOut(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.CheckedOut(r.Context())
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, items)
}

// listPopular ranks the current year unless ?year= is given.
func (h *Handler) listPopular(w http.ResponseWriter, r *http.Request) {
	year := request.QueryIntParam(r, "year", h.service.Today().Year())
	limit := request.QueryIntParam(r, "limit", defaultPopularLimit)
	books, err := h.service.Popular(r.Context(), year, limit)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, books)
}

func (h *Handler) addBorrowerType(w http.ResponseWriter, r *http.Request) {
	var bt model.BorrowerType
	if err := decode(r, &bt); err != nil {
		h.failure(w, r, err)
		return
	}
	created, err := h.service.AddBorrowerType(r.Context(), &bt)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.Created(w, r, created)
}
