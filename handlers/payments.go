// Package handlers provides the HTTP handlers for the payment submission API.
//
// POST /api/payments validates the submitted payment and, only if it passes,
// hands it to the store. A rejected submission never reaches the store, so it
// consumes no identifier.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/arkantrust/payment-api/backend/models"
	"github.com/arkantrust/payment-api/backend/store"
	"github.com/arkantrust/payment-api/backend/validation"
)

// maxBodyBytes caps the size of a submission body.
const maxBodyBytes = 1 << 20

// Creator persists a validated payment. store.Store satisfies it.
type Creator interface {
	Create(ctx context.Context, p models.Payment) (models.Payment, error)
}

// Handler holds the dependencies for the payment HTTP handlers.
type Handler struct {
	store Creator
	log   logrus.FieldLogger
}

// New creates a new Handler with the given store and logger.
func New(s Creator, log logrus.FieldLogger) *Handler {
	return &Handler{store: s, log: log}
}

// validationResponse is the body returned when a submission is rejected.
type validationResponse struct {
	Error      string                 `json:"error"`
	Violations validation.Violations `json:"violations"`
}

// writeJSON serialises v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ServeHTTP routes requests on /api/payments by method.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	default:
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// create handles POST /api/payments.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("request_id", RequestID(r.Context()))

	var body models.PaymentInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		log.WithError(err).Debug("rejecting malformed payment body")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	payment, err := validation.Validate(body)
	if err != nil {
		var vs validation.Violations
		if !errors.As(err, &vs) {
			log.WithError(err).Error("unexpected validation error")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		log.WithField("fields", vs.Fields()).Info("payment rejected")
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Violations: vs})
		return
	}

	saved, err := h.store.Create(r.Context(), payment)
	if err != nil {
		log.WithError(err).WithField("kind", store.Kind(err)).Error("failed to store payment")
		writeError(w, http.StatusInternalServerError, "failed to store payment")
		return
	}

	log.WithFields(logrus.Fields{
		"payment_id": saved.ID,
		"card":       saved.MaskedCard(),
		"amount":     saved.Amount,
	}).Info("payment stored")
	writeJSON(w, http.StatusOK, saved)
}
