package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tabin-ltd/kiosk/internal/catalog"
	"github.com/tabin-ltd/kiosk/internal/localstore"
)

type RegisterHandler struct {
	catalog *catalog.Service
	store   *localstore.Store
}

func NewRegisterHandler(catalogSvc *catalog.Service, store *localstore.Store) *RegisterHandler {
	return &RegisterHandler{catalog: catalogSvc, store: store}
}

// GetRegister returns the register configuration selected by the persisted
// device key.
func (h *RegisterHandler) GetRegister(w http.ResponseWriter, r *http.Request) {
	key, err := h.store.RegisterKey(r.Context())
	if errors.Is(err, localstore.ErrNotFound) {
		respondError(w, http.StatusNotFound, "register_not_configured", "no register key stored on this device")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	register, err := h.catalog.RegisterByKey(r.Context(), key)
	if errors.Is(err, catalog.ErrRegisterNotFound) {
		respondError(w, http.StatusNotFound, "register_not_found", "stored key does not match a register")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, register)
}

// SetRegisterKey validates the key against the backend before persisting it.
func (h *RegisterHandler) SetRegisterKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Key == "" {
		respondError(w, http.StatusBadRequest, "invalid_key", "key is required")
		return
	}

	register, err := h.catalog.RegisterByKey(r.Context(), req.Key)
	if errors.Is(err, catalog.ErrRegisterNotFound) {
		respondError(w, http.StatusNotFound, "register_not_found", "key does not match a register")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	if err := h.store.SetRegisterKey(r.Context(), req.Key); err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, register)
}

func (h *RegisterHandler) ClearRegisterKey(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearRegisterKey(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
