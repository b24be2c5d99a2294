package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tabin-ltd/kiosk/internal/checkout"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
}

func NewCheckoutHandler(o *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: o}
}

type amountRequest struct {
	AmountCents int `json:"amountCents"`
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) ConfirmEftpos(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orchestrator.ConfirmOrRetryEftpos(r.Context(), req.AmountCents); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) ConfirmCash(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orchestrator.ConfirmCash(r.Context(), req.AmountCents); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) ConfirmThirdParty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        domain.PaymentType `json:"type"`
		AmountCents int                `json:"amountCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orchestrator.ConfirmThirdParty(r.Context(), req.Type, req.AmountCents); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) PayLater(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.PayLater(r.Context()); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) ParkOrder(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.ParkOrder(r.Context())
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) ContinueToNextOrder(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.ContinueToNextOrder()
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) ContinueToNextPayment(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.ContinueToNextPayment()
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.CancelPayment()
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.CancelOrder()
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Restart()
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrInvalidAmount),
		errors.Is(err, checkout.ErrAmountExceedsRemaining),
		errors.Is(err, checkout.ErrNothingToPay):
		respondError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, checkout.ErrPaymentTypeDisabled):
		respondError(w, http.StatusForbidden, "payment_type_disabled", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
