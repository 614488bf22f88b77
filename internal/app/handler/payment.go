package handler

import (
	"errors"
	"net/http"

	"artgen/internal/app/apperr"
	"artgen/internal/app/logger"
	"artgen/internal/app/service/payment"
	"artgen/pkg/razorpay"
)

type PaymentHandler struct {
	payments *payment.Service
}

func NewPaymentHandler(payments *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Pay opens a purchase: ledger row plus gateway order. The order
// descriptor goes back verbatim so the checkout widget can run it.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Payment.Pay")

	userID, err := ReadContextUserID(r.Context())
	if err != nil {
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	in := struct {
		PlanID string `json:"planId" validate:"required"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	order, err := h.payments.Initiate(r.Context(), userID, in.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			log.Debug().Err(err).Send()
			WriteError(w, errors.New("invalid plan selected"), http.StatusBadRequest)
		case errors.Is(err, apperr.ErrNotFound):
			WriteError(w, errors.New("user not found"), http.StatusNotFound)
		case errors.Is(err, apperr.ErrUpstream):
			log.Error().Err(err).Send()
			WriteError(w, errors.New("payment gateway unavailable"), http.StatusBadGateway)
		default:
			log.Error().Err(err).Send()
			WriteError(w, err, http.StatusInternalServerError)
		}
		return
	}

	out := struct {
		Success bool            `json:"success"`
		Order   *razorpay.Order `json:"order"`
	}{
		Success: true,
		Order:   order,
	}

	WriteResponse(w, out, http.StatusOK)
}

// Verify reconciles a gateway callback. Duplicate callbacks are normal
// (webhook plus client poll) and answer success without a second credit.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Payment.Verify")

	if _, err := ReadContextUserID(r.Context()); err != nil {
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	in := struct {
		OrderID   string `json:"razorpay_order_id" validate:"required"`
		PaymentID string `json:"razorpay_payment_id" validate:"required"`
		Signature string `json:"razorpay_signature" validate:"required"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	msg := "Credits Added Successfully"

	if err := h.payments.Reconcile(r.Context(), in.OrderID); err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadySettled):
			// Lost the settle race to an earlier callback. The credits are
			// already applied, so this is a success for the caller.
			log.Debug().Err(err).Send()
			msg = "Payment already processed"
		case errors.Is(err, apperr.ErrPaymentNotConfirmed):
			log.Debug().Err(err).Send()
			WriteError(w, errors.New("payment verification failed"), http.StatusBadRequest)
			return
		case errors.Is(err, apperr.ErrNotFound):
			WriteError(w, errors.New("transaction not found"), http.StatusNotFound)
			return
		case errors.Is(err, apperr.ErrUpstream):
			log.Error().Err(err).Send()
			WriteError(w, errors.New("payment gateway unavailable"), http.StatusBadGateway)
			return
		default:
			log.Error().Err(err).Send()
			WriteError(w, err, http.StatusInternalServerError)
			return
		}
	}

	out := struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{
		Success: true,
		Message: msg,
	}

	WriteResponse(w, out, http.StatusOK)
}
