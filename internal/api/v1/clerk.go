package v1

import (
	"net/http"

	"github.com/shelfdesk/shelfdesk/internal/http/request"
	"github.com/shelfdesk/shelfdesk/internal/http/response"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

type CheckoutRequest struct {
	BID         int64   `json:"bid"`
	CallNumbers []int64 `json:"call_numbers"`
}

type ReturnRequest struct {
	CallNumber int64 `json:"call_number"`
	CopyNo     int64 `json:"copy_no"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decode(r, &req); err != nil {
		h.failure(w, r, err)
		return
	}
	if req.BID <= 0 {
		h.failure(w, r, &validator.InvalidInputError{Field: "bid", Reason: "must be positive"})
		return
	}
	if len(req.CallNumbers) == 0 {
		h.failure(w, r, &validator.InvalidInputError{Field: "call_numbers", Reason: "at least one book is required"})
		return
	}

	receipt, err := h.service.CheckoutBooks(r.Context(), req.BID, req.CallNumbers...)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, receipt)
}

func (h *Handler) returnCopy(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if err := decode(r, &req); err != nil {
		h.failure(w, r, err)
		return
	}
	if req.CallNumber <= 0 || req.CopyNo <= 0 {
		h.failure(w, r, &validator.InvalidInputError{Field: "call_number", Reason: "call number and copy number are required"})
		return
	}

	result, err := h.service.Return(r.Context(), req.CallNumber, req.CopyNo)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, result)
}

func (h *Handler) createBorrower(w http.ResponseWriter, r *http.Request) {
	var create model.CreateBorrower
	if err := decode(r, &create); err != nil {
		h.failure(w, r, err)
		return
	}

	borrower, err := h.service.RegisterBorrower(r.Context(), &create)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.Created(w, r, borrower)
}

func (h *Handler) getBorrowerAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Account(r.Context(), request.RouteInt64Param(r, "bid"))
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, account)
}

func (h *Handler) listOverdue(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Overdue(r.Context())
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, items)
}

func (h *Handler) listBorrowerTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListBorrowerTypes(r.Context())
	if err != nil {
		h.failure(w, r, err)
		return
	}
	response.OK(w, r, types)
}
