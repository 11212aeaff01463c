package v1

import (
	"net/http"

	"github.com/shelfdesk/shelfdesk/internal/http/request"
	"github.com/shelfdesk/shelfdesk/internal/http/response"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

type HoldRequest struct {
	CallNumber int64 `json:"call_number"`
}

func (h *Handler) searchBooks(w http.ResponseWriter, r *http.Request) {
	hits, err := h.service.Search(r.Context(), request.QueryStringParam(r, "q", ""))
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, hits)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	bid, err := currentBorrower(r)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	account, err := h.service.Account(r.Context(), bid)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, account)
}

func (h *Handler) placeHold(w http.ResponseWriter, r *http.Request) {
	bid, err := currentBorrower(r)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	var req HoldRequest
	if err := decode(r, &req); err != nil {
		h.failure(w, r, err)
		return
	}
	if req.CallNumber <= 0 {
		h.failure(w, r, &validator.InvalidInputError{Field: "call_number", Reason: "must be positive"})
		return
	}

	hold, err := h.service.PlaceHold(r.Context(), bid, req.CallNumber)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.Created(w, r, hold)
}

// cancelHold lets a borrower withdraw one of their own holds.
func (h *Handler) cancelHold(w http.ResponseWriter, r *http.Request) {
	bid, err := currentBorrower(r)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	hid := request.RouteInt64Param(r, "hid")
	hold, err := h.service.Hold(r.Context(), hid)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	if hold.BID != bid {
		response.NotFound(w, r, nil)
		return
	}
	if err := h.service.CancelHold(r.Context(), hid); err != nil {
		h.failure(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *Handler) payFine(w http.ResponseWriter, r *http.Request) {
	bid, err := currentBorrower(r)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	fine, err := h.service.PayFine(r.Context(), bid, request.RouteInt64Param(r, "fid"))
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, fine)
}
